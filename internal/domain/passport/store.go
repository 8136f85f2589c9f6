package passport

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"plenum/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (Passport, error) {
	var p Passport
	err := s.DB.QueryRow(ctx, `
    SELECT slug, employee_id::text, enabled, created_at
    FROM public_passports
    WHERE slug = $1
  `, slug).Scan(&p.Slug, &p.EmployeeID, &p.Enabled, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Passport{}, ErrPassportNotFound
	}
	return p, err
}

func (s *Store) Create(ctx context.Context, p Passport) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO public_passports (slug, employee_id, enabled)
    VALUES ($1, $2, $3)
  `, p.Slug, p.EmployeeID, p.Enabled)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

func (s *Store) SetEnabled(ctx context.Context, companyID, slug string, enabled bool) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE public_passports p
    SET enabled = $1
    FROM employees e
    WHERE p.employee_id = e.id AND e.company_id = $2 AND p.slug = $3
  `, enabled, companyID, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPassportNotFound
	}
	return nil
}

func (s *Store) ListForCompany(ctx context.Context, companyID string) ([]Passport, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.slug, p.employee_id::text, p.enabled, p.created_at
    FROM public_passports p
    JOIN employees e ON e.id = p.employee_id
    WHERE e.company_id = $1
    ORDER BY p.created_at DESC
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Passport
	for rows.Next() {
		var p Passport
		if err := rows.Scan(&p.Slug, &p.EmployeeID, &p.Enabled, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeName(ctx context.Context, employeeID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT full_name FROM employees WHERE id = $1", employeeID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrPassportNotFound
	}
	return name, err
}
