package certificates

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"plenum/internal/domain/passport"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"certificate.pdf":        "certificate.pdf",
		"my  final\tcert.pdf":    "my_final_cert.pdf",
		"  padded name.pdf  ":    "padded_name.pdf",
		"../../etc/passwd.pdf":   "passwd.pdf",
		`C:\Users\ana\NR 35.pdf`: "NR_35.pdf",
		"..pdf":                  ".pdf",
		"dir/":                   "dir",
		"   ":                    "",
		"":                       "",
	}
	for in, want := range tests {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	if ct, err := ContentTypeFor("a.PDF"); err != nil || ct != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q %v", ct, err)
	}
	for _, name := range []string{"a.docx", "a.pdf.exe", "pdf", "a."} {
		if _, err := ContentTypeFor(name); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("expected %q to be unsupported, got %v", name, err)
		}
	}
}

func TestUploadStoresUnderScope(t *testing.T) {
	f := newFixture()
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	res, err := f.issuer.Upload(context.Background(), UploadRequest{
		Identity:    Identity{Slug: "ana"},
		FileName:    "NR 35 renewal.pdf",
		ContentType: "application/octet-stream",
		Body:        []byte("%PDF-1.7"),
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	wantPath := companyA + "/" + employeeA + "/1717171717000_NR_35_renewal.pdf"
	if res.Path != wantPath {
		t.Fatalf("expected path %q, got %q", wantPath, res.Path)
	}
	if res.URL == nil || !strings.Contains(*res.URL, wantPath) {
		t.Fatalf("expected signed url for upload, got %v", res.URL)
	}
	if !res.Metadata.Recorded || len(f.store.records) != 1 {
		t.Fatalf("expected metadata to be recorded: %+v", res.Metadata)
	}
	rec := f.store.records[0]
	if rec.Label != DefaultLabel || rec.FilePath != wantPath || rec.EmployeeID != employeeA || rec.DueDate == nil || !rec.DueDate.Equal(due) {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.ID == "" {
		t.Fatal("expected ledger id")
	}
	if f.metrics.uploads[uploadResultOK] != 1 {
		t.Fatalf("expected ok upload metric, got %v", f.metrics.uploads)
	}
}

func TestUploadRejectsUnsupportedTypeRegardlessOfHeader(t *testing.T) {
	f := newFixture()
	_, err := f.issuer.Upload(context.Background(), UploadRequest{
		Identity:    Identity{Slug: "ana"},
		FileName:    "report.docx",
		ContentType: "application/pdf",
		Body:        []byte("PK"),
	})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	if len(f.objects.objects) != 0 {
		t.Fatal("expected nothing written")
	}
}

func TestUploadRejectionLogsDeclaredType(t *testing.T) {
	f := newFixture()
	var logs bytes.Buffer
	f.issuer.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	_, err := f.issuer.Upload(context.Background(), UploadRequest{
		Identity:    Identity{Slug: "ana"},
		FileName:    "scan.png",
		ContentType: "image/png",
		Body:        []byte("\x89PNG"),
	})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "declaredType=image/png") || !strings.Contains(out, "file=scan.png") {
		t.Fatalf("expected rejection log with declared type, got %q", out)
	}
}

func TestUploadNeverOverwrites(t *testing.T) {
	f := newFixture()
	existing := companyA + "/" + employeeA + "/1717171717000_a.pdf"
	f.objects.add(existing)
	original := f.objects.objects[existing]

	_, err := f.issuer.Upload(context.Background(), UploadRequest{
		Identity: Identity{Slug: "ana"},
		FileName: "a.pdf",
		Body:     []byte("replacement"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if string(f.objects.objects[existing]) != string(original) {
		t.Fatal("existing object was overwritten")
	}
	if len(f.store.records) != 0 {
		t.Fatal("expected no metadata for a rejected upload")
	}
	if f.metrics.uploads[uploadResultConflict] != 1 {
		t.Fatalf("expected conflict metric, got %v", f.metrics.uploads)
	}
}

func TestUploadSurvivesLedgerFailure(t *testing.T) {
	f := newFixture()
	f.store.recordErr = errors.New("ledger offline")

	res, err := f.issuer.Upload(context.Background(), UploadRequest{
		Identity: Identity{EmployeeID: employeeA, CompanyID: companyA},
		FileName: "a.pdf",
		Label:    "ASO",
		Body:     []byte("%PDF"),
	})
	if err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}
	if res.Metadata.Recorded || res.Metadata.Err == nil {
		t.Fatalf("expected metadata failure to be reported, got %+v", res.Metadata)
	}
	if _, ok := f.objects.objects[res.Path]; !ok {
		t.Fatal("expected object to remain stored")
	}
}

func TestUploadWriteFailure(t *testing.T) {
	f := newFixture()
	f.objects.putErr = errors.New("503")

	_, err := f.issuer.Upload(context.Background(), UploadRequest{
		Identity: Identity{Slug: "ana"},
		FileName: "a.pdf",
		Body:     []byte("%PDF"),
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected upload failure, got %v", err)
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("write failure must not look like a conflict")
	}
}

func TestUploadValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		req     UploadRequest
		wantErr error
	}{
		{name: "no identity", req: UploadRequest{FileName: "a.pdf", Body: []byte("x")}, wantErr: ErrMissingIdentity},
		{name: "no file", req: UploadRequest{Identity: Identity{Slug: "ana"}}, wantErr: ErrMissingFile},
		{name: "empty body", req: UploadRequest{Identity: Identity{Slug: "ana"}, FileName: "a.pdf"}, wantErr: ErrMissingFile},
		{name: "disabled slug before type", req: UploadRequest{Identity: Identity{Slug: "bruno"}, FileName: "a.docx", Body: []byte("x")}, wantErr: passport.ErrInvalidSlug},
		{name: "unknown employee", req: UploadRequest{Identity: Identity{EmployeeID: "not-a-uuid"}, FileName: "a.pdf", Body: []byte("x")}, wantErr: ErrEmployeeNotFound},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.issuer.Upload(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if f.metrics.uploads[uploadResultRejected] != 1 {
				t.Fatalf("expected rejected metric, got %v", f.metrics.uploads)
			}
		})
	}
}

func TestRecordsScopedToCompany(t *testing.T) {
	f := newFixture()
	f.store.records = []Record{{ID: "1", EmployeeID: employeeA}, {ID: "2", EmployeeID: employeeB}}

	recs, err := f.issuer.Records(context.Background(), Identity{EmployeeID: employeeA, CompanyID: companyA})
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "1" {
		t.Fatalf("unexpected records %+v", recs)
	}
	if _, err := f.issuer.Records(context.Background(), Identity{EmployeeID: employeeB, CompanyID: companyA}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected cross-company lookup to fail, got %v", err)
	}
}
