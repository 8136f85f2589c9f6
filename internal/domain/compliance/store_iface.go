package compliance

import "context"

type StoreAPI interface {
	ListSources(ctx context.Context, companyID string) ([]Source, error)
	ListEmployeeSources(ctx context.Context, employeeID string) ([]Source, error)
	CompanyName(ctx context.Context, companyID string) (string, error)
}
