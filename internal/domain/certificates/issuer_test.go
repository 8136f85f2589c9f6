package certificates

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"plenum/internal/domain/passport"
	"plenum/internal/platform/storage"
)

const (
	companyA  = "11111111-1111-1111-1111-111111111111"
	companyB  = "22222222-2222-2222-2222-222222222222"
	employeeA = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	employeeB = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

type fakePassports map[string]passport.Passport

func (f fakePassports) ResolveSlug(_ context.Context, slug string) (string, error) {
	p, ok := f[slug]
	if !ok {
		return "", passport.ErrPassportNotFound
	}
	if !p.Enabled {
		return "", passport.ErrPassportDisabled
	}
	return p.EmployeeID, nil
}

type fakeStore struct {
	companies map[string]string
	records   []Record
	recordErr error
}

func (f *fakeStore) EmployeeCompany(_ context.Context, employeeID string) (string, error) {
	c, ok := f.companies[employeeID]
	if !ok {
		return "", ErrEmployeeNotFound
	}
	return c, nil
}

func (f *fakeStore) RecordCertificate(_ context.Context, rec Record) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) ListRecords(_ context.Context, employeeID string) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeObjects struct {
	objects  map[string][]byte
	order    []string
	listErr  error
	putErr   error
	signFail map[string]bool
	listed   []string
	signed   []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, signFail: map[string]bool{}}
}

func (f *fakeObjects) add(key string) {
	f.objects[key] = []byte("%PDF")
	f.order = append(f.order, key)
}

func (f *fakeObjects) PutNew(_ context.Context, key string, data []byte, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	if _, exists := f.objects[key]; exists {
		return storage.ErrObjectExists
	}
	f.add(key)
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) List(_ context.Context, prefix string, limit int) ([]storage.Object, error) {
	f.listed = append(f.listed, prefix)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []storage.Object
	for _, key := range f.order {
		if strings.HasPrefix(key, prefix) && len(out) < limit {
			out = append(out, storage.Object{Name: strings.TrimPrefix(key, prefix), Key: key})
		}
	}
	return out, nil
}

func (f *fakeObjects) SignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.signed = append(f.signed, key)
	if f.signFail[key] {
		return "", errors.New("signing unavailable")
	}
	return "https://storage.test/" + key + "?ttl=" + ttl.String(), nil
}

type countingMetrics struct {
	signed, unsigned int
	uploads          map[string]int
}

func (m *countingMetrics) LinkIssued(signed bool) {
	if signed {
		m.signed++
		return
	}
	m.unsigned++
}

func (m *countingMetrics) Upload(result string) {
	if m.uploads == nil {
		m.uploads = map[string]int{}
	}
	m.uploads[result]++
}

type fixture struct {
	issuer  *Issuer
	store   *fakeStore
	objects *fakeObjects
	metrics *countingMetrics
}

func newFixture() fixture {
	store := &fakeStore{companies: map[string]string{employeeA: companyA, employeeB: companyB}}
	objects := newFakeObjects()
	metrics := &countingMetrics{}
	passports := fakePassports{
		"ana":    {Slug: "ana", EmployeeID: employeeA, Enabled: true},
		"bruno":  {Slug: "bruno", EmployeeID: employeeB, Enabled: false},
		"ghost":  {Slug: "ghost", EmployeeID: "cccccccc-cccc-cccc-cccc-cccccccccccc", Enabled: true},
		"broken": {Slug: "broken", EmployeeID: "../" + employeeB, Enabled: true},
	}
	issuer := NewIssuer(passports, store, objects,
		WithMetrics(metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return time.UnixMilli(1717171717000) }),
	)
	return fixture{issuer: issuer, store: store, objects: objects, metrics: metrics}
}

func TestIssueLinksBySlug(t *testing.T) {
	f := newFixture()
	prefix := companyA + "/" + employeeA + "/"
	f.objects.add(prefix + "1_a.pdf")
	f.objects.add(prefix + "2_b.pdf")
	f.objects.add(companyB + "/" + employeeB + "/3_c.pdf")

	links, err := f.issuer.IssueLinks(context.Background(), Identity{Slug: "ana"}, nil)
	if err != nil {
		t.Fatalf("issue links: %v", err)
	}
	if len(links) != 2 || links[0].Name != "1_a.pdf" || links[1].Name != "2_b.pdf" {
		t.Fatalf("unexpected links: %+v", links)
	}
	for _, link := range links {
		if link.URL == nil || !strings.Contains(*link.URL, prefix) || !strings.Contains(*link.URL, "ttl=10m0s") {
			t.Fatalf("unexpected url for %s: %v", link.Name, link.URL)
		}
	}
	if f.metrics.signed != 2 {
		t.Fatalf("expected 2 signed links, got %d", f.metrics.signed)
	}
}

func TestIssueLinksIdentityFailures(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr error
	}{
		{name: "empty identity", id: Identity{}, wantErr: ErrMissingIdentity},
		{name: "unknown slug", id: Identity{Slug: "nobody"}, wantErr: passport.ErrPassportNotFound},
		{name: "disabled slug", id: Identity{Slug: "bruno"}, wantErr: passport.ErrPassportDisabled},
		{name: "slug without employee", id: Identity{Slug: "ghost"}, wantErr: ErrEmployeeNotFound},
		{name: "slug with malformed employee", id: Identity{Slug: "broken"}, wantErr: ErrEmployeeNotFound},
		{name: "unknown employee", id: Identity{EmployeeID: "dddddddd-dddd-dddd-dddd-dddddddddddd"}, wantErr: ErrEmployeeNotFound},
		{name: "path traversal employee", id: Identity{EmployeeID: "../" + companyB}, wantErr: ErrEmployeeNotFound},
		{name: "prefix injection employee", id: Identity{EmployeeID: employeeA + "/../" + employeeB}, wantErr: ErrEmployeeNotFound},
		{name: "other company", id: Identity{EmployeeID: employeeB, CompanyID: companyA}, wantErr: ErrEmployeeNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.objects.add(companyB + "/" + employeeB + "/secret.pdf")

			links, err := f.issuer.IssueLinks(context.Background(), tc.id, nil)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if links != nil {
				t.Fatalf("expected no links, got %+v", links)
			}
			if len(f.objects.listed) != 0 || len(f.objects.signed) != 0 {
				t.Fatalf("expected storage untouched, listed=%v signed=%v", f.objects.listed, f.objects.signed)
			}
		})
	}
}

func TestDisabledPassportMatchesInvalidSlug(t *testing.T) {
	f := newFixture()
	_, err := f.issuer.IssueLinks(context.Background(), Identity{Slug: "bruno"}, nil)
	if !errors.Is(err, passport.ErrInvalidSlug) {
		t.Fatalf("expected invalid slug, got %v", err)
	}
}

func TestIssueLinksSlugTakesPrecedence(t *testing.T) {
	f := newFixture()
	f.objects.add(companyB + "/" + employeeB + "/b.pdf")

	_, err := f.issuer.IssueLinks(context.Background(), Identity{Slug: "bruno", EmployeeID: employeeA}, nil)
	if !errors.Is(err, passport.ErrPassportDisabled) {
		t.Fatalf("expected disabled slug to win over employee id, got %v", err)
	}
}

func TestIssueLinksByEmployeeIDNormalizesCase(t *testing.T) {
	f := newFixture()
	f.objects.add(companyA + "/" + employeeA + "/a.pdf")

	links, err := f.issuer.IssueLinks(context.Background(), Identity{EmployeeID: strings.ToUpper(employeeA), CompanyID: companyA}, nil)
	if err != nil {
		t.Fatalf("issue links: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %+v", links)
	}
	if f.objects.listed[0] != companyA+"/"+employeeA+"/" {
		t.Fatalf("unexpected listed prefix %q", f.objects.listed[0])
	}
}

func TestIssueLinksSkipsUnsafeNamesAndFilters(t *testing.T) {
	f := newFixture()
	prefix := companyA + "/" + employeeA + "/"
	f.objects.add(prefix + "ok.pdf")
	f.objects.add(prefix + "notes.txt")
	f.objects.add(prefix + "nested/deep.pdf")
	f.objects.add(prefix + "..pdf")
	f.objects.add(prefix + "UPPER.PDF")

	links, err := f.issuer.IssueLinks(context.Background(), Identity{Slug: "ana"}, PDFOnly)
	if err != nil {
		t.Fatalf("issue links: %v", err)
	}
	var names []string
	for _, link := range links {
		names = append(names, link.Name)
	}
	if strings.Join(names, ",") != "ok.pdf,UPPER.PDF" {
		t.Fatalf("unexpected names %v", names)
	}
	for _, key := range f.objects.signed {
		if !strings.HasPrefix(key, prefix) || strings.Contains(strings.TrimPrefix(key, prefix), "/") {
			t.Fatalf("signed key escaped scope: %s", key)
		}
	}
}

func TestIssueLinksSigningFailureKeepsEntry(t *testing.T) {
	f := newFixture()
	prefix := companyA + "/" + employeeA + "/"
	f.objects.add(prefix + "1.pdf")
	f.objects.add(prefix + "2.pdf")
	f.objects.add(prefix + "3.pdf")
	f.objects.signFail[prefix+"2.pdf"] = true

	links, err := f.issuer.IssueLinks(context.Background(), Identity{Slug: "ana"}, nil)
	if err != nil {
		t.Fatalf("issue links: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %+v", links)
	}
	if links[0].URL == nil || links[1].URL != nil || links[2].URL == nil {
		t.Fatalf("expected only the second url to be nil: %+v", links)
	}
	if links[1].Name != "2.pdf" {
		t.Fatalf("expected listing order preserved, got %+v", links)
	}
	if f.metrics.unsigned != 1 || f.metrics.signed != 2 {
		t.Fatalf("unexpected metrics %+v", f.metrics)
	}
}

func TestIssueLinksListFailures(t *testing.T) {
	f := newFixture()
	f.objects.listErr = storage.ErrNotFound
	links, err := f.issuer.IssueLinks(context.Background(), Identity{Slug: "ana"}, nil)
	if err != nil {
		t.Fatalf("expected missing prefix to be empty, got %v", err)
	}
	if links == nil || len(links) != 0 {
		t.Fatalf("expected empty non-nil links, got %#v", links)
	}

	f.objects.listErr = errors.New("connection reset")
	_, err = f.issuer.IssueLinks(context.Background(), Identity{Slug: "ana"}, nil)
	if !errors.Is(err, ErrListFailed) {
		t.Fatalf("expected list failure, got %v", err)
	}
}

func TestIssueLinksRespectsListLimit(t *testing.T) {
	f := newFixture()
	prefix := companyA + "/" + employeeA + "/"
	for i := 0; i < 150; i++ {
		f.objects.add(prefix + strings.Repeat("x", i%5+1) + time.Duration(i).String() + ".pdf")
	}
	links, err := f.issuer.IssueLinks(context.Background(), Identity{Slug: "ana"}, nil)
	if err != nil {
		t.Fatalf("issue links: %v", err)
	}
	if len(links) != DefaultListLimit {
		t.Fatalf("expected %d links, got %d", DefaultListLimit, len(links))
	}
}

func TestScopeKey(t *testing.T) {
	s := Scope{CompanyID: companyA, EmployeeID: employeeA}
	if key, ok := s.Key("a.pdf"); !ok || key != companyA+"/"+employeeA+"/a.pdf" {
		t.Fatalf("unexpected key %q %v", key, ok)
	}
	for _, name := range []string{"", "../a.pdf", "x/a.pdf", `x\a.pdf`, ".."} {
		if _, ok := s.Key(name); ok {
			t.Fatalf("expected %q to be refused", name)
		}
	}
}
