package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"plenum/internal/domain/auth"
	"plenum/internal/platform/logging"
	"plenum/internal/transport/http/api"
	"plenum/internal/transport/http/middleware"
	"plenum/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	CurrentUser(ctx context.Context, user auth.UserContext) (auth.CurrentUser, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	case errors.Is(err, auth.ErrNoMembership):
		api.Fail(w, http.StatusForbidden, "no_membership", "user has no company membership", reqID)
		return
	case err != nil:
		logging.From(r.Context()).Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}
	api.Success(w, result, reqID)
}

// HandleMe returns the authenticated user together with their company.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	current, err := h.Service.CurrentUser(r.Context(), user)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	if err != nil {
		logging.From(r.Context()).Error("current user failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
		return
	}
	api.Success(w, current, reqID)
}
