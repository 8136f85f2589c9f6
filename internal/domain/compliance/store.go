package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"plenum/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const sourcesQuery = `
    SELECT 'course', en.id::text, e.id::text, e.full_name, c.title, COALESCE(c.course_code, ''), en.completion_date, c.validity_days
    FROM enrollments en
    JOIN employees e ON e.id = en.employee_id
    JOIN courses c ON c.id = en.course_id
    WHERE %s
    UNION ALL
    SELECT 'exam', ee.id::text, e.id::text, e.full_name, x.title, COALESCE(x.code, ''), ee.exam_date, x.validity_days
    FROM employee_exams ee
    JOIN employees e ON e.id = ee.employee_id
    JOIN exams x ON x.id = ee.exam_id
    WHERE %s
    ORDER BY 4, 5
  `

func (s *Store) ListSources(ctx context.Context, companyID string) ([]Source, error) {
	rows, err := s.DB.Query(ctx, sprintfWhere("en.company_id = $1", "ee.company_id = $1"), companyID)
	if err != nil {
		return nil, err
	}
	return scanSources(rows)
}

func (s *Store) ListEmployeeSources(ctx context.Context, employeeID string) ([]Source, error) {
	rows, err := s.DB.Query(ctx, sprintfWhere("en.employee_id = $1", "ee.employee_id = $1"), employeeID)
	if err != nil {
		return nil, err
	}
	return scanSources(rows)
}

func (s *Store) CompanyName(ctx context.Context, companyID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM companies WHERE id = $1", companyID).Scan(&name)
	return name, err
}

func sprintfWhere(enrollmentWhere, examWhere string) string {
	return fmt.Sprintf(sourcesQuery, enrollmentWhere, examWhere)
}

func scanSources(rows pgx.Rows) ([]Source, error) {
	defer rows.Close()
	var out []Source
	for rows.Next() {
		var src Source
		var ref *time.Time
		var validity *int32
		if err := rows.Scan(&src.Kind, &src.ID, &src.EmployeeID, &src.EmployeeName, &src.Title, &src.Code, &ref, &validity); err != nil {
			return nil, err
		}
		if ref != nil {
			d := NewDate(*ref)
			src.ReferenceDate = &d
		}
		if validity != nil {
			v := int(*validity)
			src.ValidityDays = &v
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
