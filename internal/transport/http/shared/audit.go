package shared

import (
	"context"
	"net/http"

	"plenum/internal/platform/logging"
	"plenum/internal/platform/requestctx"
)

type AuditRecorder interface {
	Record(ctx context.Context, companyID, actorID, action, entityType, entityID, requestID, ip string, after any) error
}

// Audit records an event for the request. Failures are logged and never reach the caller.
func Audit(r *http.Request, rec AuditRecorder, companyID, actorID, action, entityType, entityID string, after any) {
	if rec == nil {
		return
	}
	ctx := r.Context()
	if err := rec.Record(ctx, companyID, actorID, action, entityType, entityID, requestctx.GetRequestID(ctx), ClientIP(r), after); err != nil {
		logging.From(ctx).Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
