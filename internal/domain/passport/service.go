package passport

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"strings"
)

const slugBytes = 10

var slugEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// ResolveSlug maps a public slug to its employee. Missing and disabled passports
// both satisfy errors.Is(err, ErrInvalidSlug).
func (s *Service) ResolveSlug(ctx context.Context, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", ErrPassportNotFound
	}
	p, err := s.Store.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if !p.Enabled {
		return "", ErrPassportDisabled
	}
	return p.EmployeeID, nil
}

// Profile resolves slug and loads the name shown on the public page.
func (s *Service) Profile(ctx context.Context, slug string) (Profile, error) {
	employeeID, err := s.ResolveSlug(ctx, slug)
	if err != nil {
		return Profile{}, err
	}
	name, err := s.Store.EmployeeName(ctx, employeeID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Slug: strings.TrimSpace(slug), EmployeeID: employeeID, FullName: name}, nil
}

// Issue creates an enabled passport with a fresh random slug.
func (s *Service) Issue(ctx context.Context, employeeID string) (Passport, error) {
	slug, err := NewSlug()
	if err != nil {
		return Passport{}, err
	}
	p := Passport{Slug: slug, EmployeeID: employeeID, Enabled: true}
	if err := s.Store.Create(ctx, p); err != nil {
		return Passport{}, err
	}
	return p, nil
}

func (s *Service) SetEnabled(ctx context.Context, companyID, slug string, enabled bool) error {
	return s.Store.SetEnabled(ctx, companyID, slug, enabled)
}

func (s *Service) List(ctx context.Context, companyID string) ([]Passport, error) {
	return s.Store.ListForCompany(ctx, companyID)
}

// NewSlug returns an opaque lowercase slug that reveals nothing about the employee.
func NewSlug() (string, error) {
	buf := make([]byte, slugBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToLower(slugEncoding.EncodeToString(buf)), nil
}
