package core

import "time"

type Employee struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	CPF       string    `json:"cpf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Course struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Title        string    `json:"title"`
	Code         string    `json:"courseCode,omitempty"`
	ValidityDays *int      `json:"validityDays,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Exam struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Title        string    `json:"title"`
	Code         string    `json:"code,omitempty"`
	ValidityDays *int      `json:"validityDays,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Enrollment struct {
	ID             string     `json:"id"`
	CompanyID      string     `json:"companyId"`
	EmployeeID     string     `json:"employeeId"`
	CourseID       string     `json:"courseId"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	CertificateURL string     `json:"certificateUrl,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type EmployeeExam struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"companyId"`
	EmployeeID string     `json:"employeeId"`
	ExamID     string     `json:"examId"`
	ExamDate   *time.Time `json:"examDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
