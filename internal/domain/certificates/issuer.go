package certificates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"plenum/internal/platform/storage"
)

// Issuer resolves an identity to its storage scope and mints short-lived links inside it.
type Issuer struct {
	Passports PassportResolver
	Store     StoreAPI
	Objects   ObjectStore
	Metrics   MetricsRecorder
	Logger    *slog.Logger
	TTL       time.Duration
	ListLimit int
	Now       func() time.Time
}

type Option func(*Issuer)

func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.TTL = ttl
		}
	}
}

func WithListLimit(limit int) Option {
	return func(i *Issuer) {
		if limit > 0 {
			i.ListLimit = limit
		}
	}
}

func WithMetrics(m MetricsRecorder) Option {
	return func(i *Issuer) { i.Metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Issuer) {
		if l != nil {
			i.Logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.Now = now
		}
	}
}

func NewIssuer(passports PassportResolver, store StoreAPI, objects ObjectStore, opts ...Option) *Issuer {
	i := &Issuer{
		Passports: passports,
		Store:     store,
		Objects:   objects,
		Logger:    slog.Default(),
		TTL:       DefaultTTL,
		ListLimit: DefaultListLimit,
		Now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Resolve maps an identity to the scope of the employee it names.
func (i *Issuer) Resolve(ctx context.Context, id Identity) (Scope, error) {
	var employeeID string
	switch {
	case strings.TrimSpace(id.Slug) != "":
		resolved, err := i.Passports.ResolveSlug(ctx, strings.TrimSpace(id.Slug))
		if err != nil {
			return Scope{}, err
		}
		employeeID = resolved
	case strings.TrimSpace(id.EmployeeID) != "":
		employeeID = strings.TrimSpace(id.EmployeeID)
	default:
		return Scope{}, ErrMissingIdentity
	}

	parsed, err := uuid.Parse(employeeID)
	if err != nil {
		return Scope{}, ErrMalformedEmployeeID
	}
	employeeID = parsed.String()

	companyID, err := i.Store.EmployeeCompany(ctx, employeeID)
	if err != nil {
		return Scope{}, err
	}
	company, err := uuid.Parse(companyID)
	if err != nil {
		return Scope{}, fmt.Errorf("employee %s has malformed company id: %w", employeeID, ErrEmployeeNotFound)
	}
	if id.CompanyID != "" && id.CompanyID != company.String() {
		return Scope{}, ErrEmployeeNotFound
	}
	return Scope{CompanyID: company.String(), EmployeeID: employeeID}, nil
}

// IssueLinks lists the files in the identity's scope and signs one URL per retained name.
// A missing bucket or prefix yields no links. A failed signature yields a link without url.
func (i *Issuer) IssueLinks(ctx context.Context, id Identity, filter FileFilter) ([]Link, error) {
	scope, err := i.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	objects, err := i.Objects.List(ctx, scope.Prefix(), i.ListLimit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Link{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
	}

	links := make([]Link, 0, len(objects))
	for _, obj := range objects {
		key, ok := scope.Key(obj.Name)
		if !ok {
			i.Logger.Warn("skipping object outside scope", "prefix", scope.Prefix(), "name", obj.Name)
			continue
		}
		if filter != nil && !filter(obj.Name) {
			continue
		}
		links = append(links, Link{Name: obj.Name, URL: i.sign(ctx, key)})
	}
	return links, nil
}

func (i *Issuer) sign(ctx context.Context, key string) *string {
	url, err := i.Objects.SignGet(ctx, key, i.TTL)
	if i.Metrics != nil {
		i.Metrics.LinkIssued(err == nil)
	}
	if err != nil {
		i.Logger.Warn("sign certificate url failed", "key", key, "err", err)
		return nil
	}
	return &url
}
