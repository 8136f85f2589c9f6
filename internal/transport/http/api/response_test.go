package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusNotFound, "passport_not_found", "passport not found", "req-1")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error == nil || env.Error.Code != "passport_not_found" || env.RequestID != "req-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestFailWithDetailsIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": []string{"title"}}, "")

	var raw map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["error"]["details"]; !ok {
		t.Fatalf("expected details in %s", rec.Body.String())
	}
}

func TestSuccessOmitsError(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"id": "x"}, "req-2")

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusCreated || raw["success"] != true {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if _, ok := raw["error"]; ok {
		t.Fatal("did not expect error field")
	}
}
