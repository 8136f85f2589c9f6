package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"plenum/internal/platform/logging"
	"plenum/internal/platform/querier"
	"plenum/internal/transport/http/api"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

const (
	IdempotencyHeader  = "Idempotency-Key"
	maxIdempotencyKey  = 200
	maxReplayBodyBytes = 1 << 20
)

// StoredResponse is a replayable response saved under an idempotency key.
type StoredResponse struct {
	Status int
	Body   []byte
}

type IdempotencyBackend interface {
	Check(ctx context.Context, companyID, userID, endpoint, key, requestHash string) (StoredResponse, bool, error)
	Save(ctx context.Context, companyID, userID, endpoint, key, requestHash string, resp StoredResponse) error
}

type IdempotencyStore struct {
	db querier.Querier
}

func NewIdempotencyStore(db querier.Querier) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) Check(ctx context.Context, companyID, userID, endpoint, key, requestHash string) (StoredResponse, bool, error) {
	if s == nil || s.db == nil {
		return StoredResponse{}, false, nil
	}
	var storedHash string
	var stored StoredResponse
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, status_code, response_body
    FROM idempotency_keys
    WHERE company_id = $1 AND user_id = $2 AND key = $3 AND endpoint = $4
  `, companyID, userID, key, endpoint).Scan(&storedHash, &stored.Status, &stored.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, err
	}
	if storedHash != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, companyID, userID, endpoint, key, requestHash string, resp StoredResponse) error {
	if s == nil || s.db == nil {
		return nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (company_id, user_id, key, endpoint, request_hash, status_code, response_body)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (company_id, user_id, key, endpoint)
    DO UPDATE SET status_code = EXCLUDED.status_code, response_body = EXCLUDED.response_body
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, companyID, userID, key, endpoint, requestHash, resp.Status, resp.Body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	if c.body.Len()+len(b) <= maxReplayBodyBytes {
		c.body.Write(b)
	}
	return c.ResponseWriter.Write(b)
}

// Idempotent replays the first successful response for an authenticated
// mutation that carries an Idempotency-Key header.
func Idempotent(store IdempotencyBackend) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			user, ok := GetUser(r.Context())
			if key == "" || !ok || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			reqID := GetRequestID(r.Context())
			if len(key) > maxIdempotencyKey {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", reqID)
				return
			}

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			endpoint := r.Method + " " + r.URL.Path
			hash := RequestHash(raw)

			stored, found, err := store.Check(r.Context(), user.CompanyID, user.UserID, endpoint, key, hash)
			if errors.Is(err, ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", reqID)
				return
			}
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "idempotency check failed", reqID)
				return
			}
			if found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			capture := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 || capture.body.Len() == 0 {
				return
			}
			resp := StoredResponse{Status: capture.status, Body: capture.body.Bytes()}
			if err := store.Save(r.Context(), user.CompanyID, user.UserID, endpoint, key, hash, resp); err != nil {
				logging.From(r.Context()).Warn("idempotency save failed", "key", key, "err", err)
			}
		})
	}
}
