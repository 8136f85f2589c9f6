package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"plenum/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// FindActiveUserByEmail returns the user with its oldest company membership.
func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id::text, u.email, u.password_hash, COALESCE(m.company_id::text, ''), COALESCE(m.role, '')
    FROM users u
    LEFT JOIN LATERAL (
      SELECT company_id, role FROM memberships WHERE user_id = u.id ORDER BY created_at LIMIT 1
    ) m ON true
    WHERE lower(u.email) = lower($1) AND u.status = $2
  `, email, UserStatusActive).Scan(&out.ID, &out.Email, &out.PasswordHash, &out.CompanyID, &out.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) CurrentUser(ctx context.Context, userID, companyID string) (CurrentUser, error) {
	var out CurrentUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id::text, u.email, c.id::text, c.name, m.role, u.last_login
    FROM users u
    JOIN memberships m ON m.user_id = u.id
    JOIN companies c ON c.id = m.company_id
    WHERE u.id = $1 AND c.id = $2 AND u.status = $3
  `, userID, companyID, UserStatusActive).Scan(&out.ID, &out.Email, &out.CompanyID, &out.CompanyName, &out.Role, &out.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return CurrentUser{}, ErrUserNotFound
	}
	return out, err
}
