package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	DataEncryptionKey  string
	Environment        string
	SeedCompanyName    string
	SeedAdminEmail     string
	SeedAdminPassword  string
	RunMigrations      bool
	RunSeed            bool
	MaxBodyBytes       int64
	MaxUploadBytes     int64
	RateLimitPerMinute int
	MetricsEnabled     bool
	Storage            StorageConfig
}

type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	SignedURLTTL time.Duration
	ListLimit    int
}

// Load reads settings from the environment, optionally overlaid on a config file.
// Environment variables always win over file values. A named file that cannot be read is an error.
func Load() (Config, error) {
	v := newViper()
	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config %s: %w", file, err)
		}
	}
	return fromViper(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 12*time.Hour)
	v.SetDefault("DATA_ENCRYPTION_KEY", "")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SEED_COMPANY_NAME", "Default Company")
	v.SetDefault("SEED_ADMIN_EMAIL", "")
	v.SetDefault("SEED_ADMIN_PASSWORD", "")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("RUN_SEED", true)
	v.SetDefault("MAX_BODY_BYTES", 1048576)
	v.SetDefault("MAX_UPLOAD_BYTES", 10*1048576)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("S3_BUCKET", "certificates")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_USE_PATH_STYLE", true)
	v.SetDefault("SIGNED_URL_TTL", 600*time.Second)
	v.SetDefault("LIST_LIMIT", 100)
	return v
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Addr:               v.GetString("APP_ADDR"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		DataEncryptionKey:  v.GetString("DATA_ENCRYPTION_KEY"),
		Environment:        v.GetString("APP_ENV"),
		SeedCompanyName:    v.GetString("SEED_COMPANY_NAME"),
		SeedAdminEmail:     v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword:  v.GetString("SEED_ADMIN_PASSWORD"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		RunSeed:            v.GetBool("RUN_SEED"),
		MaxBodyBytes:       v.GetInt64("MAX_BODY_BYTES"),
		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_BYTES"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
		Storage: StorageConfig{
			Bucket:       v.GetString("S3_BUCKET"),
			Region:       v.GetString("S3_REGION"),
			Endpoint:     v.GetString("S3_ENDPOINT"),
			AccessKey:    v.GetString("S3_ACCESS_KEY"),
			SecretKey:    v.GetString("S3_SECRET_KEY"),
			UsePathStyle: v.GetBool("S3_USE_PATH_STYLE"),
			SignedURLTTL: v.GetDuration("SIGNED_URL_TTL"),
			ListLimit:    v.GetInt("LIST_LIMIT"),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be smaller than MAX_BODY_BYTES")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	if c.Storage.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL must be positive")
	}
	if c.Storage.ListLimit <= 0 || c.Storage.ListLimit > 1000 {
		return fmt.Errorf("LIST_LIMIT must be between 1 and 1000")
	}
	return nil
}
