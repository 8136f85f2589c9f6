package certhandler

import (
	"errors"
	"net/http"

	"plenum/internal/domain/certificates"
	"plenum/internal/domain/passport"
	"plenum/internal/platform/logging"
	"plenum/internal/transport/http/api"
	"plenum/internal/transport/http/middleware"
)

// FailLinks writes the error response for a failed link listing. When hideDisabled is set a
// disabled passport is reported exactly like a missing one.
func FailLinks(w http.ResponseWriter, r *http.Request, err error, hideDisabled bool) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, certificates.ErrMissingIdentity):
		api.Fail(w, http.StatusBadRequest, "missing_slug", "slug is required", reqID)
	case errors.Is(err, passport.ErrPassportDisabled) && !hideDisabled:
		api.Fail(w, http.StatusForbidden, "passport_disabled", "passport disabled", reqID)
	case errors.Is(err, passport.ErrInvalidSlug):
		api.Fail(w, http.StatusNotFound, "passport_not_found", "passport not found", reqID)
	case errors.Is(err, certificates.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, certificates.ErrListFailed):
		logging.From(r.Context()).Error("certificate listing failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list certificates", reqID)
	default:
		logging.From(r.Context()).Error("certificate links failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
	}
}

func failUpload(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, certificates.ErrMissingIdentity), errors.Is(err, certificates.ErrMissingFile):
		api.Fail(w, http.StatusBadRequest, "missing_params", "slug or employee_id and file are required", reqID)
	case errors.Is(err, passport.ErrInvalidSlug):
		api.Fail(w, http.StatusNotFound, "invalid_slug", "invalid slug", reqID)
	case errors.Is(err, certificates.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, certificates.ErrUnsupportedType):
		api.Fail(w, http.StatusUnsupportedMediaType, "invalid_type", "only PDF files are accepted", reqID)
	case errors.Is(err, certificates.ErrConflict):
		api.Fail(w, http.StatusConflict, "upload_failed", "a file already exists at this path", reqID)
	default:
		logging.From(r.Context()).Error("certificate upload failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "upload_failed", "upload failed", reqID)
	}
}
