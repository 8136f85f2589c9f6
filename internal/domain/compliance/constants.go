package compliance

type Status string

const (
	StatusOverdue Status = "overdue"
	StatusDueSoon Status = "due_soon"
	StatusCurrent Status = "current"
)

const (
	// DefaultThresholdDays is the "due soon" window used everywhere a single threshold applies.
	DefaultThresholdDays = 30
	// WideThresholdDays is the second summary pass.
	WideThresholdDays = 60
)

const (
	KindCourse = "course"
	KindExam   = "exam"
)

func ValidStatus(value string) bool {
	switch Status(value) {
	case StatusOverdue, StatusDueSoon, StatusCurrent:
		return true
	}
	return false
}
