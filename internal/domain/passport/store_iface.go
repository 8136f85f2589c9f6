package passport

import "context"

type StoreAPI interface {
	GetBySlug(ctx context.Context, slug string) (Passport, error)
	Create(ctx context.Context, p Passport) error
	SetEnabled(ctx context.Context, companyID, slug string, enabled bool) error
	ListForCompany(ctx context.Context, companyID string) ([]Passport, error)
	EmployeeName(ctx context.Context, employeeID string) (string, error)
}
