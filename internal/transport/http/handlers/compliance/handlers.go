package compliancehandler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"plenum/internal/domain/compliance"
	"plenum/internal/platform/logging"
	"plenum/internal/transport/http/api"
	"plenum/internal/transport/http/middleware"
	"plenum/internal/transport/http/shared"
)

type Service interface {
	Items(ctx context.Context, companyID string, now time.Time, filter compliance.ItemFilter) ([]compliance.Item, error)
	Summary(ctx context.Context, companyID string, now time.Time) (compliance.Summary, error)
	Report(ctx context.Context, companyID string, now time.Time) ([]byte, error)
}

type Handler struct {
	Service Service
	Now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/compliance", func(r chi.Router) {
		r.Get("/summary", h.handleSummary)
		r.Get("/items", h.handleItems)
		r.Get("/report.pdf", h.handleReport)
	})
}

// companyScope returns the caller's company, refusing an explicit companyId naming another one.
func companyScope(w http.ResponseWriter, r *http.Request) (string, bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return "", false
	}
	if requested := strings.TrimSpace(r.URL.Query().Get("companyId")); requested != "" && requested != user.CompanyID {
		api.Fail(w, http.StatusForbidden, "forbidden", "company not accessible", reqID)
		return "", false
	}
	return user.CompanyID, true
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	summary, err := h.Service.Summary(r.Context(), companyID, h.Now())
	if err != nil {
		logging.From(r.Context()).Error("compliance summary failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "compliance_failed", "failed to compute compliance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	reqID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	filter := compliance.ItemFilter{
		Status:     compliance.Status(strings.ToLower(strings.TrimSpace(query.Get("status")))),
		EmployeeID: strings.TrimSpace(query.Get("employeeId")),
		Kind:       strings.ToLower(strings.TrimSpace(query.Get("kind"))),
	}

	v := shared.NewValidator()
	v.Enum("status", string(filter.Status), []string{string(compliance.StatusOverdue), string(compliance.StatusDueSoon), string(compliance.StatusCurrent)}, "must be overdue, due_soon or current")
	v.Enum("kind", filter.Kind, []string{compliance.KindCourse, compliance.KindExam}, "must be course or exam")
	if v.Reject(w, reqID) {
		return
	}

	items, err := h.Service.Items(r.Context(), companyID, h.Now(), filter)
	if err != nil {
		logging.From(r.Context()).Error("compliance items failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "compliance_failed", "failed to compute compliance", reqID)
		return
	}
	if items == nil {
		items = []compliance.Item{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
	api.Success(w, items, reqID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	now := h.Now()
	pdf, err := h.Service.Report(r.Context(), companyID, now)
	if err != nil {
		logging.From(r.Context()).Error("compliance report failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="compliance-`+now.Format("2006-01-02")+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
