package certhandler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"plenum/internal/domain/auth"
	"plenum/internal/domain/certificates"
	"plenum/internal/transport/http/api"
	"plenum/internal/transport/http/middleware"
	"plenum/internal/transport/http/shared"
)

const multipartMemory = 4 << 20

type Issuer interface {
	IssueLinks(ctx context.Context, id certificates.Identity, filter certificates.FileFilter) ([]certificates.Link, error)
	Upload(ctx context.Context, req certificates.UploadRequest) (certificates.UploadResult, error)
	Records(ctx context.Context, id certificates.Identity) ([]certificates.Record, error)
}

type Handler struct {
	Issuer Issuer
	Audit  shared.AuditRecorder
}

func NewHandler(issuer Issuer, audit shared.AuditRecorder) *Handler {
	return &Handler{Issuer: issuer, Audit: audit}
}

// RegisterPublicRoutes mounts the upload route, which accepts either a passport slug or an
// authenticated caller naming one of their company's employees.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/certificates/upload", h.handleUpload)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/employees/{employeeID}/certificates", h.handleEmployeeCertificates)
	r.Get("/employees/{employeeID}/certificates/records", h.handleEmployeeRecords)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds the upload limit", reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "missing_params", "multipart form expected", reqID)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req := certificates.UploadRequest{
		Identity: certificates.Identity{
			Slug:       strings.TrimSpace(r.FormValue("slug")),
			EmployeeID: strings.TrimSpace(r.FormValue("employee_id")),
		},
		Label: strings.TrimSpace(r.FormValue("label")),
	}

	user, authenticated := middleware.GetUser(r.Context())
	if req.Identity.Slug == "" && req.Identity.EmployeeID != "" {
		if !authenticated {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
			return
		}
		if !auth.CanWrite(user.Role) {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
			return
		}
		req.Identity.CompanyID = user.CompanyID
	}

	if raw := strings.TrimSpace(r.FormValue("due_date")); raw != "" {
		v := shared.NewValidator()
		due, ok := v.Date("due_date", raw)
		if v.Reject(w, reqID) {
			return
		}
		if ok {
			req.DueDate = &due
		}
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		api.Fail(w, http.StatusBadRequest, "missing_params", "unreadable file", reqID)
		return
	default:
		defer file.Close()
		body, err := io.ReadAll(file)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "missing_params", "unreadable file", reqID)
			return
		}
		req.FileName = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		req.Body = body
	}

	result, err := h.Issuer.Upload(r.Context(), req)
	if err != nil {
		failUpload(w, r, err)
		return
	}

	actorID := ""
	if authenticated {
		actorID = user.UserID
	}
	shared.Audit(r, h.Audit, result.Scope.CompanyID, actorID, "certificate.upload", "certificate", result.Path, map[string]any{
		"employeeId": result.Scope.EmployeeID,
		"path":       result.Path,
		"label":      req.Label,
		"recorded":   result.Metadata.Recorded,
	})
	api.Created(w, result, reqID)
}

func (h *Handler) handleEmployeeCertificates(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := certificates.Identity{EmployeeID: chi.URLParam(r, "employeeID"), CompanyID: user.CompanyID}
	links, err := h.Issuer.IssueLinks(r.Context(), id, certificates.PDFOnly)
	if err != nil {
		FailLinks(w, r, err, true)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	api.Success(w, links, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeRecords(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := certificates.Identity{EmployeeID: chi.URLParam(r, "employeeID"), CompanyID: user.CompanyID}
	records, err := h.Issuer.Records(r.Context(), id)
	if err != nil {
		FailLinks(w, r, err, true)
		return
	}
	if records == nil {
		records = []certificates.Record{}
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}
