package passporthandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"plenum/internal/domain/auth"
	"plenum/internal/domain/certificates"
	"plenum/internal/domain/compliance"
	"plenum/internal/domain/core"
	"plenum/internal/domain/passport"
	"plenum/internal/platform/logging"
	"plenum/internal/transport/http/api"
	certhandler "plenum/internal/transport/http/handlers/certificates"
	"plenum/internal/transport/http/middleware"
	"plenum/internal/transport/http/shared"
)

type LinkIssuer interface {
	IssueLinks(ctx context.Context, id certificates.Identity, filter certificates.FileFilter) ([]certificates.Link, error)
}

type PassportService interface {
	Profile(ctx context.Context, slug string) (passport.Profile, error)
	Issue(ctx context.Context, employeeID string) (passport.Passport, error)
	SetEnabled(ctx context.Context, companyID, slug string, enabled bool) error
	List(ctx context.Context, companyID string) ([]passport.Passport, error)
}

type ComplianceSource interface {
	EmployeeItems(ctx context.Context, employeeID string, now time.Time) ([]compliance.Item, error)
}

type EmployeeLookup interface {
	GetEmployee(ctx context.Context, companyID, employeeID string) (core.Employee, error)
}

type Handler struct {
	Issuer     LinkIssuer
	Passports  PassportService
	Compliance ComplianceSource
	Employees  EmployeeLookup
	Audit      shared.AuditRecorder
	Now        func() time.Time
}

func NewHandler(issuer LinkIssuer, passports PassportService, compliance ComplianceSource, employees EmployeeLookup, audit shared.AuditRecorder) *Handler {
	return &Handler{
		Issuer:     issuer,
		Passports:  passports,
		Compliance: compliance,
		Employees:  employees,
		Audit:      audit,
		Now:        time.Now,
	}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/passport/certs", h.handleCertsByQuery)
	r.Get("/passport/{slug}/certs", h.handleCertsByPath)
	r.Get("/passport/{slug}", h.handleView)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/passports", h.handleList)
	r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/passports", h.handleIssue)
	r.With(middleware.RequireRole(auth.RoleAdmin)).Patch("/passports/{slug}", h.handleSetEnabled)
}

// handleCertsByQuery distinguishes a disabled passport (403) from a missing one (404).
func (h *Handler) handleCertsByQuery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	slug := strings.TrimSpace(r.URL.Query().Get("slug"))
	if slug == "" {
		api.Fail(w, http.StatusBadRequest, "missing_slug", "slug is required", middleware.GetRequestID(r.Context()))
		return
	}
	h.writeLinks(w, r, slug, false)
}

func (h *Handler) handleCertsByPath(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	h.writeLinks(w, r, chi.URLParam(r, "slug"), true)
}

func (h *Handler) writeLinks(w http.ResponseWriter, r *http.Request, slug string, hideDisabled bool) {
	links, err := h.Issuer.IssueLinks(r.Context(), certificates.Identity{Slug: slug}, certificates.PDFOnly)
	if err != nil {
		certhandler.FailLinks(w, r, err, hideDisabled)
		return
	}
	api.Success(w, links, middleware.GetRequestID(r.Context()))
}

type passportView struct {
	Slug         string              `json:"slug"`
	FullName     string              `json:"fullName"`
	Certificates []certificates.Link `json:"certificates"`
	Items        []compliance.Item   `json:"items"`
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	reqID := middleware.GetRequestID(r.Context())

	profile, err := h.Passports.Profile(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, passport.ErrInvalidSlug) {
			api.Fail(w, http.StatusNotFound, "passport_not_found", "passport not found", reqID)
			return
		}
		logging.From(r.Context()).Error("passport lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
		return
	}

	links, err := h.Issuer.IssueLinks(r.Context(), certificates.Identity{Slug: profile.Slug}, certificates.PDFOnly)
	if err != nil {
		certhandler.FailLinks(w, r, err, true)
		return
	}

	items, err := h.Compliance.EmployeeItems(r.Context(), profile.EmployeeID, h.Now())
	if err != nil {
		logging.From(r.Context()).Error("passport compliance failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
		return
	}
	if items == nil {
		items = []compliance.Item{}
	}

	api.Success(w, passportView{
		Slug:         profile.Slug,
		FullName:     profile.FullName,
		Certificates: links,
		Items:        items,
	}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	passports, err := h.Passports.List(r.Context(), user.CompanyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "passport_list_failed", "failed to list passports", middleware.GetRequestID(r.Context()))
		return
	}
	if passports == nil {
		passports = []passport.Passport{}
	}
	api.Success(w, passports, middleware.GetRequestID(r.Context()))
}

type issueRequest struct {
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload issueRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.UUID("employeeId", payload.EmployeeID)
	if v.Reject(w, reqID) {
		return
	}

	if _, err := h.Employees.GetEmployee(r.Context(), user.CompanyID, payload.EmployeeID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
		return
	}

	p, err := h.Passports.Issue(r.Context(), payload.EmployeeID)
	if err != nil {
		if errors.Is(err, passport.ErrSlugTaken) {
			api.Fail(w, http.StatusConflict, "slug_taken", "slug collision, retry", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "passport_issue_failed", "failed to issue passport", reqID)
		return
	}
	shared.Audit(r, h.Audit, user.CompanyID, user.UserID, "passport.issue", "passport", p.Slug, p)
	api.Created(w, p, reqID)
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *Handler) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	slug := chi.URLParam(r, "slug")

	var payload enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Enabled == nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "enabled", Reason: "is required"}})
		return
	}

	if err := h.Passports.SetEnabled(r.Context(), user.CompanyID, slug, *payload.Enabled); err != nil {
		if errors.Is(err, passport.ErrInvalidSlug) {
			api.Fail(w, http.StatusNotFound, "passport_not_found", "passport not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "passport_update_failed", "failed to update passport", reqID)
		return
	}
	shared.Audit(r, h.Audit, user.CompanyID, user.UserID, "passport.set_enabled", "passport", slug, map[string]bool{"enabled": *payload.Enabled})
	api.Success(w, map[string]any{"slug": slug, "enabled": *payload.Enabled}, reqID)
}
