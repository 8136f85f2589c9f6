package core

const (
	EntityEmployee     = "employee"
	EntityCourse       = "course"
	EntityExam         = "exam"
	EntityEnrollment   = "enrollment"
	EntityEmployeeExam = "employee_exam"
)

// entityTables maps deletable entities to their tables.
var entityTables = map[string]string{
	EntityEmployee:     "employees",
	EntityCourse:       "courses",
	EntityExam:         "exams",
	EntityEnrollment:   "enrollments",
	EntityEmployeeExam: "employee_exams",
}
