package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"plenum/internal/domain/auth"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())

	userCtx := WithUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{
		CompanyID: "company-1",
		UserID:    "user-1",
	})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/upload", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/upload", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/passport/certs?slug=a", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/passport/certs?slug=b", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/passport/certs?slug=b", nil)
	other.RemoteAddr = "203.0.113.99:5555"
	otherRec := httptest.NewRecorder()
	limited.ServeHTTP(otherRec, other)
	if otherRec.Code != http.StatusNoContent {
		t.Fatalf("expected a different client to pass, got %d", otherRec.Code)
	}
}

func TestRateLimitForwardedForWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIPKey(req); got != "203.0.113.7" {
		t.Fatalf("expected forwarded client, got %q", got)
	}
}

func TestRateLimitRefills(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(noContent())

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/passport/certs", nil)
		req.RemoteAddr = "192.0.2.20:1111"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}

	time.Sleep(60 * time.Millisecond)

	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected request after refill to pass, got %d", code)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/passport/abc", nil)
	req1.RemoteAddr = "192.0.2.30:1234"
	limited.ServeHTTP(httptest.NewRecorder(), req1)

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/passport/abc", nil)
	req2.RemoteAddr = "192.0.2.30:1234"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req2)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retry < 1 || retry > 60 {
		t.Fatalf("unexpected Retry-After %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected no remaining budget, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestAuthEmailKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":" Admin@Example.com "}`))
	req.Header.Set("Content-Type", "application/json")
	if got := AuthEmailOrIPKey("email")(req); got != "email:admin@example.com" {
		t.Fatalf("unexpected key %q", got)
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(req.Body); err != nil || body.Len() == 0 {
		t.Fatal("expected body to be restored for the next handler")
	}
}

func TestSensitiveMutationRateLimitScope(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent())

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/compliance/summary", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected read route request %d to bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	userCtx := WithUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{
		CompanyID: "company-1",
		UserID:    "admin-1",
	})
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/upload", nil).WithContext(userCtx)
		req.RemoteAddr = "198.51.100.41:9999"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i < 2 && rec.Code != http.StatusNoContent {
			t.Fatalf("expected sensitive request %d to pass, got %d", i+1, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected third sensitive request to be throttled, got %d", rec.Code)
		}
	}

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "198.51.100.42:1000"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := login(); code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", code)
	}
	if code := login(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second login to be throttled, got %d", code)
	}
}

func TestSensitiveMutationRateLimitCoversPassportMutations(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent())
	userCtx := WithUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{
		CompanyID: "company-1",
		UserID:    "admin-2",
	})

	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/passports", nil).WithContext(userCtx)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected passport listing %d to bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	codes := make([]int, 0, 3)
	for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodPatch} {
		path := "/api/v1/passports"
		if method == http.MethodPatch {
			path += "/abc123"
		}
		req := httptest.NewRequest(method, path, nil).WithContext(userCtx)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Fatalf("expected first two passport mutations to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third passport mutation to be throttled, got %d", codes[2])
	}
}
