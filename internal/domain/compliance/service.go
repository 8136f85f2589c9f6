package compliance

import (
	"context"
	"time"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// Items returns every compliance item of a company, resolved against now and narrowed by filter.
func (s *Service) Items(ctx context.Context, companyID string, now time.Time, filter ItemFilter) ([]Item, error) {
	sources, err := s.Store.ListSources(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := resolveItems(sources, now)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if filter.match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Service) Summary(ctx context.Context, companyID string, now time.Time) (Summary, error) {
	sources, err := s.Store.ListSources(ctx, companyID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(resolveItems(sources, now), now), nil
}

func (s *Service) EmployeeItems(ctx context.Context, employeeID string, now time.Time) ([]Item, error) {
	sources, err := s.Store.ListEmployeeSources(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return resolveItems(sources, now), nil
}

// Report renders the company's compliance items as a PDF document.
func (s *Service) Report(ctx context.Context, companyID string, now time.Time) ([]byte, error) {
	name, err := s.Store.CompanyName(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items, err := s.Items(ctx, companyID, now, ItemFilter{})
	if err != nil {
		return nil, err
	}
	return renderReport(name, items, Summarize(items, now), now)
}
