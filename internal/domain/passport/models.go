package passport

import "time"

type Passport struct {
	Slug       string    `json:"slug"`
	EmployeeID string    `json:"employeeId"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is what the public passport page shows about its employee.
type Profile struct {
	Slug       string `json:"slug"`
	EmployeeID string `json:"-"`
	FullName   string `json:"fullName"`
}
