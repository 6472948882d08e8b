package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/nerrad567/gadget-registry/internal/audit"
)

// recordAudit appends an audit entry for the request on ctx. A failed write
// is logged and never fails the request.
func (s *Server) recordAudit(ctx context.Context, action, gadgetID string, details map[string]any) {
	if s.audit == nil {
		return
	}

	requestID, _ := ctx.Value(ctxKeyRequestID).(string) //nolint:errcheck // type assertion, not an error
	entry := &audit.Entry{
		Action:    action,
		GadgetID:  gadgetID,
		Subject:   tokenSubject(ctx),
		RequestID: requestID,
		Details:   details,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("recording audit entry failed",
			"action", action,
			"gadget_id", gadgetID,
			"error", err,
		)
	}
}

// auditRejection records a refused confirmation, with the client-facing reason.
func (s *Server) auditRejection(ctx context.Context, gadgetID string, err error) {
	for sentinel, msg := range confirmationMessages {
		if errors.Is(err, sentinel) {
			s.recordAudit(ctx, audit.ActionSelfDestructRejected, gadgetID, map[string]any{"reason": msg})
			return
		}
	}
}

// handleListAudit returns audit entries, newest first.
//
// Query parameters:
//   - action: e.g. self_destruct.rejected
//   - gadget_id: restrict to one gadget
//   - limit: default 50, max 200
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "audit log is not enabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:   q.Get("action"),
		GadgetID: q.Get("gadget_id"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit entries failed", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
