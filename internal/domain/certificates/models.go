package certificates

import (
	"path"
	"strings"
	"time"
)

// Identity names whose certificates to reach. Slug wins over EmployeeID.
// A non-empty CompanyID additionally requires the employee to belong to that company.
type Identity struct {
	Slug       string
	EmployeeID string
	CompanyID  string
}

func (i Identity) Empty() bool {
	return strings.TrimSpace(i.Slug) == "" && strings.TrimSpace(i.EmployeeID) == ""
}

// Scope is the storage prefix owned by one employee of one company.
type Scope struct {
	CompanyID  string
	EmployeeID string
}

func (s Scope) Prefix() string {
	return s.CompanyID + "/" + s.EmployeeID + "/"
}

// Key joins name onto the scope prefix, refusing names that could leave it.
func (s Scope) Key(name string) (string, bool) {
	if !safeName(name) {
		return "", false
	}
	return s.Prefix() + name, true
}

func safeName(name string) bool {
	return name != "" && !strings.Contains(name, "/") && !strings.Contains(name, `\`) && !strings.Contains(name, "..")
}

type Link struct {
	Name string  `json:"name"`
	URL  *string `json:"url"`
}

// FileFilter keeps the listed names for which it returns true.
type FileFilter func(name string) bool

// PDFOnly keeps names with a .pdf extension.
func PDFOnly(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf")
}

type UploadRequest struct {
	Identity    Identity
	FileName    string
	ContentType string
	Body        []byte
	Label       string
	DueDate     *time.Time
}

type UploadResult struct {
	Scope    Scope          `json:"-"`
	Path     string         `json:"path"`
	URL      *string        `json:"url"`
	Metadata MetadataResult `json:"-"`
}

// Record is one advisory ledger row describing an uploaded file.
type Record struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Label      string     `json:"label"`
	FilePath   string     `json:"filePath"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// MetadataResult reports the outcome of the advisory ledger write. It never fails an upload.
type MetadataResult struct {
	Recorded bool
	Err      error
}
