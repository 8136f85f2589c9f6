package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsTable = "schema_migrations"

// gooseRun is a seam for tests.
var gooseRun = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
	return goose.RunContext(ctx, command, db, dir, args...)
}

// Migrate applies all pending embedded migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return MigrateCommand(ctx, pool, "up")
}

// MigrateCommand runs a goose command (up, down, status, redo, version) against the embedded migrations.
func MigrateCommand(ctx context.Context, pool *pgxpool.Pool, command string, args ...string) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	goose.SetTableName(migrationsTable)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseRun(ctx, command, sqlDB, "migrations", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
