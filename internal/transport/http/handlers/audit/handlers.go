package audithandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"plenum/internal/domain/audit"
	"plenum/internal/domain/auth"
	"plenum/internal/transport/http/api"
	"plenum/internal/transport/http/middleware"
	"plenum/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, companyID string, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/audit/events", h.handleListEvents)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	query := r.URL.Query()
	filter := audit.Filter{
		Action:     query.Get("action"),
		EntityType: query.Get("entityType"),
		ActorUser:  query.Get("actorUserId"),
	}
	includeDetails := query.Get("includeDetails") == "true"

	events, err := h.Service.List(r.Context(), user.CompanyID, filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
