package certificates

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

func (s *Store) EmployeeCompany(ctx context.Context, employeeID string) (string, error) {
	var companyID string
	err := s.DB.QueryRow(ctx, "SELECT company_id::text FROM employees WHERE id = $1", employeeID).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	return companyID, err
}

func (s *Store) RecordCertificate(ctx context.Context, rec Record) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_certificates (id, employee_id, label, file_path, due_date)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (employee_id, file_path)
    DO UPDATE SET label = EXCLUDED.label, due_date = EXCLUDED.due_date
  `, rec.ID, rec.EmployeeID, rec.Label, rec.FilePath, rec.DueDate)
	return err
}

func (s *Store) ListRecords(ctx context.Context, employeeID string) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id::text, label, file_path, due_date, created_at
    FROM employee_certificates
    WHERE employee_id = $1
    ORDER BY id DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Label, &rec.FilePath, &rec.DueDate, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
