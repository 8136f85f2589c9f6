package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"plenum/internal/domain/audit"
	"plenum/internal/domain/auth"
	"plenum/internal/domain/certificates"
	"plenum/internal/domain/compliance"
	"plenum/internal/domain/core"
	"plenum/internal/domain/passport"
	"plenum/internal/platform/config"
	cryptoutil "plenum/internal/platform/crypto"
	"plenum/internal/platform/db"
	"plenum/internal/platform/health"
	"plenum/internal/platform/logging"
	"plenum/internal/platform/metrics"
	"plenum/internal/platform/storage"
	"plenum/internal/transport/http/api"
	audithandler "plenum/internal/transport/http/handlers/audit"
	authhandler "plenum/internal/transport/http/handlers/auth"
	certhandler "plenum/internal/transport/http/handlers/certificates"
	compliancehandler "plenum/internal/transport/http/handlers/compliance"
	corehandler "plenum/internal/transport/http/handlers/core"
	passporthandler "plenum/internal/transport/http/handlers/passport"
	"plenum/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Objects *storage.S3
	Metrics *metrics.Collector
	Router  http.Handler
	Logger  *slog.Logger

	sqlDB *sql.DB
}

// New connects every process-wide client once and builds the router around them.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.Init(cfg.Environment)

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cipher, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	objects, err := storage.NewS3(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("object storage: %w", err)
	}

	app := &App{
		Config:  cfg,
		DB:      pool,
		Objects: objects,
		Metrics: metrics.New(),
		Logger:  logger,
		sqlDB:   stdlib.OpenDBFromPool(pool),
	}
	app.Router = app.routes(cipher)
	return app, nil
}

func (a *App) routes(cipher *cryptoutil.Cipher) http.Handler {
	cfg := a.Config
	pool := a.DB

	auditSvc := audit.New(pool)
	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	coreSvc := core.NewService(core.NewStore(pool, cipher))
	passportSvc := passport.NewService(passport.NewStore(pool))
	complianceSvc := compliance.NewService(compliance.NewStore(pool))
	issuer := certificates.NewIssuer(
		passportSvc,
		certificates.NewStore(pool),
		a.Objects,
		certificates.WithTTL(cfg.Storage.SignedURLTTL),
		certificates.WithListLimit(cfg.Storage.ListLimit),
		certificates.WithMetrics(a.Metrics),
		certificates.WithLogger(a.Logger),
	)

	authHandler := authhandler.NewHandler(authSvc)
	coreHandler := corehandler.NewHandler(coreSvc, auditSvc)
	certHandler := certhandler.NewHandler(issuer, auditSvc)
	passportHandler := passporthandler.NewHandler(issuer, passportSvc, complianceSvc, coreSvc, auditSvc)
	complianceHandler := compliancehandler.NewHandler(complianceSvc)
	auditHandler := audithandler.NewHandler(auditSvc)

	probe := health.NewProbe(2 * time.Second).
		Add("database", health.SQL(a.sqlDB)).
		Add("storage", a.Objects)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if cfg.MetricsEnabled {
		router.Use(middleware.Instrument(a.Metrics))
	}
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", readinessHandler(probe))
	if cfg.MetricsEnabled {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
			r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

			r.With(middleware.BodyLimit(cfg.MaxBodyBytes)).Post("/auth/login", authHandler.HandleLogin)
			passportHandler.RegisterPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(middleware.BodyLimit(cfg.MaxUploadBytes))
				certHandler.RegisterPublicRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
			r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
			r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
			r.Use(middleware.Idempotent(middleware.NewIdempotencyStore(pool)))

			r.Get("/auth/me", authHandler.HandleMe)
			coreHandler.RegisterRoutes(r)
			certHandler.RegisterRoutes(r)
			passportHandler.RegisterRoutes(r)
			complianceHandler.RegisterRoutes(r)
			auditHandler.RegisterRoutes(r)
		})
	})

	return router
}

// readinessHandler keeps dependency errors in the log; callers only see that the service is not ready.
func readinessHandler(probe *health.Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := probe.Check(r.Context()); err != nil {
			logging.From(r.Context()).Warn("readiness check failed", "err", err)
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "dependencies unavailable", middleware.GetRequestID(r.Context()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

func (a *App) Close() {
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until ctx is cancelled or the process receives SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.Logger.Info("server stopped")
	return nil
}
