package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	cryptoutil "plenum/internal/platform/crypto"
	"plenum/internal/platform/logging"
	"plenum/internal/platform/querier"
)

type Store struct {
	DB     querier.Querier
	Crypto *cryptoutil.Cipher
}

func NewStore(db querier.Querier, crypto *cryptoutil.Cipher) *Store {
	return &Store{DB: db, Crypto: crypto}
}

func (s *Store) ListEmployees(ctx context.Context, companyID string, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, company_id::text, full_name, COALESCE(email, ''), cpf_enc, created_at
    FROM employees
    WHERE company_id = $1
    ORDER BY full_name
    LIMIT $2 OFFSET $3
  `, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var emp Employee
		var cpfEnc []byte
		if err := rows.Scan(&emp.ID, &emp.CompanyID, &emp.FullName, &emp.Email, &cpfEnc, &emp.CreatedAt); err != nil {
			return nil, err
		}
		emp.CPF = s.openCPF(ctx, cpfEnc, emp.ID)
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, companyID, employeeID string) (Employee, error) {
	var emp Employee
	var cpfEnc []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, company_id::text, full_name, COALESCE(email, ''), cpf_enc, created_at
    FROM employees
    WHERE company_id = $1 AND id = $2
  `, companyID, employeeID).Scan(&emp.ID, &emp.CompanyID, &emp.FullName, &emp.Email, &cpfEnc, &emp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	emp.CPF = s.openCPF(ctx, cpfEnc, emp.ID)
	return emp, nil
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	id := uuid.NewString()
	cpfEnc, err := s.Crypto.SealString(emp.CPF, id)
	if err != nil {
		return "", fmt.Errorf("seal cpf: %w", err)
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO employees (id, company_id, full_name, email, cpf_enc)
    VALUES ($1, $2, $3, $4, $5)
  `, id, emp.CompanyID, emp.FullName, nullIfEmpty(emp.Email), cpfEnc)
	if err != nil {
		return "", mapWriteError(err)
	}
	return id, nil
}

func (s *Store) ListCourses(ctx context.Context, companyID string) ([]Course, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, company_id::text, title, COALESCE(course_code, ''), validity_days, created_at
    FROM courses
    WHERE company_id = $1
    ORDER BY title
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Title, &c.Code, &c.ValidityDays, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCourse(ctx context.Context, course Course) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO courses (company_id, title, course_code, validity_days)
    VALUES ($1, $2, $3, $4)
    RETURNING id::text
  `, course.CompanyID, course.Title, nullIfEmpty(course.Code), course.ValidityDays).Scan(&id)
	if err != nil {
		return "", mapWriteError(err)
	}
	return id, nil
}

func (s *Store) ListExams(ctx context.Context, companyID string) ([]Exam, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, company_id::text, title, COALESCE(code, ''), validity_days, created_at
    FROM exams
    WHERE company_id = $1
    ORDER BY title
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exam
	for rows.Next() {
		var e Exam
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Title, &e.Code, &e.ValidityDays, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateExam(ctx context.Context, exam Exam) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO exams (company_id, title, code, validity_days)
    VALUES ($1, $2, $3, $4)
    RETURNING id::text
  `, exam.CompanyID, exam.Title, nullIfEmpty(exam.Code), exam.ValidityDays).Scan(&id)
	if err != nil {
		return "", mapWriteError(err)
	}
	return id, nil
}

func (s *Store) ListEnrollments(ctx context.Context, companyID, employeeID string) ([]Enrollment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, company_id::text, employee_id::text, course_id::text, completion_date, COALESCE(certificate_url, ''), created_at
    FROM enrollments
    WHERE company_id = $1 AND ($2 = '' OR employee_id::text = $2)
    ORDER BY created_at DESC
  `, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.EmployeeID, &e.CourseID, &e.CompletionDate, &e.CertificateURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateEnrollment inserts only when both the employee and the course belong to the company.
func (s *Store) CreateEnrollment(ctx context.Context, enrollment Enrollment) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO enrollments (company_id, employee_id, course_id, completion_date, certificate_url)
    SELECT $1, $2, $3, $4, $5
    WHERE EXISTS (SELECT 1 FROM employees WHERE id = $2 AND company_id = $1)
      AND EXISTS (SELECT 1 FROM courses WHERE id = $3 AND company_id = $1)
    RETURNING id::text
  `, enrollment.CompanyID, enrollment.EmployeeID, enrollment.CourseID, enrollment.CompletionDate, nullIfEmpty(enrollment.CertificateURL)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrReferenceNotFound
	}
	if err != nil {
		return "", mapWriteError(err)
	}
	return id, nil
}

func (s *Store) ListEmployeeExams(ctx context.Context, companyID, employeeID string) ([]EmployeeExam, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, company_id::text, employee_id::text, exam_id::text, exam_date, created_at
    FROM employee_exams
    WHERE company_id = $1 AND ($2 = '' OR employee_id::text = $2)
    ORDER BY created_at DESC
  `, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeExam
	for rows.Next() {
		var e EmployeeExam
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.EmployeeID, &e.ExamID, &e.ExamDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployeeExam(ctx context.Context, record EmployeeExam) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_exams (company_id, employee_id, exam_id, exam_date)
    SELECT $1, $2, $3, $4
    WHERE EXISTS (SELECT 1 FROM employees WHERE id = $2 AND company_id = $1)
      AND EXISTS (SELECT 1 FROM exams WHERE id = $3 AND company_id = $1)
    RETURNING id::text
  `, record.CompanyID, record.EmployeeID, record.ExamID, record.ExamDate).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrReferenceNotFound
	}
	if err != nil {
		return "", mapWriteError(err)
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, entity, companyID, id string) error {
	table, ok := entityTables[entity]
	if !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}
	tag, err := s.DB.Exec(ctx, "DELETE FROM "+table+" WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// openCPF returns "" for rows that cannot be opened (wrong key or tampered ciphertext) and logs them.
func (s *Store) openCPF(ctx context.Context, sealed []byte, employeeID string) string {
	if len(sealed) == 0 {
		return ""
	}
	plain, err := s.Crypto.OpenString(sealed, employeeID)
	if err != nil {
		logging.From(ctx).Warn("employee cpf could not be decrypted", "employeeId", employeeID, "err", err)
		return ""
	}
	return plain
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503", "22P02":
			return ErrReferenceNotFound
		}
	}
	return err
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
