package compliance

import (
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: Day(t)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

type Resolution struct {
	DueDate time.Time
	Status  Status
}

// Source is one row that carries a compliance period: a course enrollment or an exam record.
type Source struct {
	Kind          string `json:"kind"`
	ID            string `json:"id"`
	EmployeeID    string `json:"employeeId"`
	EmployeeName  string `json:"employeeName"`
	Title         string `json:"title"`
	Code          string `json:"code,omitempty"`
	ReferenceDate *Date  `json:"referenceDate,omitempty"`
	ValidityDays  *int   `json:"validityDays,omitempty"`
}

type Item struct {
	Source
	DueDate *Date  `json:"dueDate,omitempty"`
	Status  Status `json:"status,omitempty"`
}

func (i Item) period() (time.Time, int, bool) {
	if i.ReferenceDate == nil || i.ValidityDays == nil || *i.ValidityDays <= 0 {
		return time.Time{}, 0, false
	}
	return i.ReferenceDate.Time, *i.ValidityDays, true
}

type Summary struct {
	Total   int `json:"total"`
	Overdue int `json:"overdue"`
	Due30   int `json:"due30"`
	Due60   int `json:"due60"`
}

type ItemFilter struct {
	Status     Status
	EmployeeID string
	Kind       string
}

func (f ItemFilter) match(item Item) bool {
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.EmployeeID != "" && item.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Kind != "" && item.Kind != f.Kind {
		return false
	}
	return true
}
