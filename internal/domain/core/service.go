package core

import (
	"context"
	"strings"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) ListEmployees(ctx context.Context, companyID string, limit, offset int) ([]Employee, error) {
	return s.Store.ListEmployees(ctx, companyID, limit, offset)
}

func (s *Service) GetEmployee(ctx context.Context, companyID, employeeID string) (Employee, error) {
	return s.Store.GetEmployee(ctx, companyID, employeeID)
}

func (s *Service) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	emp.FullName = strings.TrimSpace(emp.FullName)
	emp.Email = strings.ToLower(strings.TrimSpace(emp.Email))
	emp.CPF = NormalizeCPF(emp.CPF)
	return s.Store.CreateEmployee(ctx, emp)
}

func (s *Service) ListCourses(ctx context.Context, companyID string) ([]Course, error) {
	return s.Store.ListCourses(ctx, companyID)
}

func (s *Service) CreateCourse(ctx context.Context, course Course) (string, error) {
	course.Title = strings.TrimSpace(course.Title)
	course.Code = strings.TrimSpace(course.Code)
	return s.Store.CreateCourse(ctx, course)
}

func (s *Service) ListExams(ctx context.Context, companyID string) ([]Exam, error) {
	return s.Store.ListExams(ctx, companyID)
}

func (s *Service) CreateExam(ctx context.Context, exam Exam) (string, error) {
	exam.Title = strings.TrimSpace(exam.Title)
	exam.Code = strings.TrimSpace(exam.Code)
	return s.Store.CreateExam(ctx, exam)
}

func (s *Service) ListEnrollments(ctx context.Context, companyID, employeeID string) ([]Enrollment, error) {
	return s.Store.ListEnrollments(ctx, companyID, employeeID)
}

func (s *Service) CreateEnrollment(ctx context.Context, enrollment Enrollment) (string, error) {
	return s.Store.CreateEnrollment(ctx, enrollment)
}

func (s *Service) ListEmployeeExams(ctx context.Context, companyID, employeeID string) ([]EmployeeExam, error) {
	return s.Store.ListEmployeeExams(ctx, companyID, employeeID)
}

func (s *Service) CreateEmployeeExam(ctx context.Context, record EmployeeExam) (string, error) {
	return s.Store.CreateEmployeeExam(ctx, record)
}

func (s *Service) Delete(ctx context.Context, entity, companyID, id string) error {
	return s.Store.Delete(ctx, entity, companyID, id)
}
