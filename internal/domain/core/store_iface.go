package core

import "context"

type StoreAPI interface {
	ListEmployees(ctx context.Context, companyID string, limit, offset int) ([]Employee, error)
	GetEmployee(ctx context.Context, companyID, employeeID string) (Employee, error)
	CreateEmployee(ctx context.Context, emp Employee) (string, error)

	ListCourses(ctx context.Context, companyID string) ([]Course, error)
	CreateCourse(ctx context.Context, course Course) (string, error)

	ListExams(ctx context.Context, companyID string) ([]Exam, error)
	CreateExam(ctx context.Context, exam Exam) (string, error)

	ListEnrollments(ctx context.Context, companyID, employeeID string) ([]Enrollment, error)
	CreateEnrollment(ctx context.Context, enrollment Enrollment) (string, error)

	ListEmployeeExams(ctx context.Context, companyID, employeeID string) ([]EmployeeExam, error)
	CreateEmployeeExam(ctx context.Context, record EmployeeExam) (string, error)

	Delete(ctx context.Context, entity, companyID, id string) error
}
