package certificates

import (
	"context"
	"time"

	"plenum/internal/platform/storage"
)

type PassportResolver interface {
	ResolveSlug(ctx context.Context, slug string) (string, error)
}

type StoreAPI interface {
	// EmployeeCompany returns the owning company of an employee or ErrEmployeeNotFound.
	EmployeeCompany(ctx context.Context, employeeID string) (string, error)
	RecordCertificate(ctx context.Context, rec Record) error
	ListRecords(ctx context.Context, employeeID string) ([]Record, error)
}

// ObjectStore is the private bucket holding certificate files.
// List returns storage.ErrNotFound for a missing bucket or prefix; PutNew returns storage.ErrObjectExists.
type ObjectStore interface {
	PutNew(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string, limit int) ([]storage.Object, error)
	SignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type MetricsRecorder interface {
	LinkIssued(signed bool)
	Upload(result string)
}
