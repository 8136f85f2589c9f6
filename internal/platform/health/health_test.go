package health

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestProbeSQLReady(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()

	probe := NewProbe(time.Second).Add("database", SQL(db))
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProbeSQLNotReady(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	probe := NewProbe(time.Second).Add("database", SQL(db))
	err = probe.Check(context.Background())
	if err == nil {
		t.Fatal("expected readiness failure")
	}
	if !strings.Contains(err.Error(), "database not ready") {
		t.Fatalf("expected named check in error, got %v", err)
	}
}

func TestProbeStopsAtFirstFailure(t *testing.T) {
	called := false
	probe := NewProbe(0).
		Add("storage", PingFunc(func(context.Context) error { return errors.New("down") })).
		Add("other", PingFunc(func(context.Context) error { called = true; return nil }))

	if err := probe.Check(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if called {
		t.Fatal("expected later checks to be skipped")
	}
}
