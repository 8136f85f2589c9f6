package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"plenum/internal/domain/auth"
	"plenum/internal/platform/config"
	"plenum/internal/platform/querier"
)

// Seed creates the configured company and its admin user when they are missing.
func Seed(ctx context.Context, q querier.Querier, cfg config.Config) error {
	companyID, err := ensureCompany(ctx, q, cfg.SeedCompanyName)
	if err != nil {
		return err
	}
	return ensureAdminUser(ctx, q, companyID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureCompany(ctx context.Context, q querier.Querier, name string) (string, error) {
	var id string
	err := q.QueryRow(ctx, "SELECT id FROM companies WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = q.QueryRow(ctx, "INSERT INTO companies (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, q querier.Querier, companyID, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := q.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		if err := q.QueryRow(ctx, "INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id", email, hash).Scan(&id); err != nil {
			return err
		}
	}

	_, err = q.Exec(ctx, `
    INSERT INTO memberships (user_id, company_id, role)
    VALUES ($1, $2, $3)
    ON CONFLICT (user_id, company_id) DO NOTHING
  `, id, companyID, auth.RoleAdmin)
	return err
}
