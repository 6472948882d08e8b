package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gadget-registry/internal/audit"
	"github.com/nerrad567/gadget-registry/internal/gadget"
)

// createGadgetRequest is the request body for POST /gadgets.
type createGadgetRequest struct {
	Description string `json:"description"`
}

// updateGadgetRequest is the request body for PATCH /gadgets/{id}.
type updateGadgetRequest struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// confirmSelfDestructRequest is the request body for POST /gadgets/{id}/self-destruct/confirm.
type confirmSelfDestructRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
}

// handleListGadgets returns all gadgets, optionally filtered by status.
//
// Query parameters:
//   - status: AVAILABLE, DEPLOYED, DESTROYED or DECOMMISSIONED
func (s *Server) handleListGadgets(w http.ResponseWriter, r *http.Request) {
	gadgets, err := s.gadgets.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeGadgetError(w, err, "failed to list gadgets")
		return
	}

	rnd := s.gadgets.Random()
	views := make([]gadget.View, len(gadgets))
	for i := range gadgets {
		views[i] = gadget.NewView(&gadgets[i], rnd)
	}
	writeJSON(w, http.StatusOK, map[string]any{"gadgets": views, "count": len(views)})
}

// handleCreateGadget registers a new gadget with a generated codename.
func (s *Server) handleCreateGadget(w http.ResponseWriter, r *http.Request) {
	var req createGadgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	g, err := s.gadgets.Create(r.Context(), req.Description)
	if err != nil {
		writeGadgetError(w, err, "failed to create gadget")
		return
	}

	writeJSON(w, http.StatusCreated, gadget.NewView(g, s.gadgets.Random()))
}

// handleGetGadget returns a single gadget by ID.
func (s *Server) handleGetGadget(w http.ResponseWriter, r *http.Request) {
	g, err := s.gadgets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGadgetError(w, err, "failed to get gadget")
		return
	}

	writeJSON(w, http.StatusOK, gadget.NewView(g, s.gadgets.Random()))
}

// handleUpdateGadget partially updates a gadget's description and/or status.
// DESTROYED is rejected here; use the self-destruct sequence.
func (s *Server) handleUpdateGadget(w http.ResponseWriter, r *http.Request) {
	var req updateGadgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Description == nil && req.Status == nil {
		writeBadRequest(w, "description or status is required")
		return
	}

	update := gadget.UpdateRequest{Description: req.Description}
	if req.Status != nil {
		status := gadget.Status(*req.Status)
		update.Status = &status
	}

	g, err := s.gadgets.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		writeGadgetError(w, err, "failed to update gadget")
		return
	}

	writeJSON(w, http.StatusOK, gadget.NewView(g, s.gadgets.Random()))
}

// handleDecommissionGadget retires a gadget. The row is kept with status
// DECOMMISSIONED.
func (s *Server) handleDecommissionGadget(w http.ResponseWriter, r *http.Request) {
	g, err := s.gadgets.Decommission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGadgetError(w, err, "failed to decommission gadget")
		return
	}
	s.recordAudit(r.Context(), audit.ActionDecommissioned, g.ID, nil)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Gadget successfully decommissioned",
		"gadget":  g,
	})
}

// handleGadgetHistory returns a gadget's status transitions, newest first.
//
// Query parameters:
//   - limit: maximum entries (default 50, max 200)
func (s *Server) handleGadgetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.gadgets.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeGadgetError(w, err, "failed to get gadget history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": entries, "count": len(entries)})
}

// handleRequestSelfDestruct issues a confirmation code for destroying a gadget.
func (s *Server) handleRequestSelfDestruct(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.gadgets.RequestSelfDestruct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGadgetError(w, err, "failed to initiate self-destruct")
		return
	}
	s.recordAudit(r.Context(), audit.ActionSelfDestructRequested, ticket.GadgetID, nil)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Self-destruct sequence initiated",
		"gadget_id":         ticket.GadgetID,
		"confirmation_code": ticket.Code,
		"expires_in":        formatExpiry(ticket.ExpiresIn),
	})
}

// handleConfirmSelfDestruct destroys a gadget given its live confirmation code.
func (s *Server) handleConfirmSelfDestruct(w http.ResponseWriter, r *http.Request) {
	var req confirmSelfDestructRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	g, err := s.gadgets.ConfirmSelfDestruct(r.Context(), id, req.ConfirmationCode)
	if err != nil {
		s.auditRejection(r.Context(), id, err)
		writeGadgetError(w, err, "failed to destroy gadget")
		return
	}
	s.recordAudit(r.Context(), audit.ActionSelfDestructConfirmed, g.ID, nil)

	s.logger.Info("gadget destroyed",
		"gadget_id", g.ID,
		"codename", g.Codename,
		"subject", tokenSubject(r.Context()),
		"request_id", r.Context().Value(ctxKeyRequestID),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Gadget successfully destroyed",
		"gadget":  g,
	})
}

// formatExpiry renders a code lifetime for clients, e.g. "5 minutes".
func formatExpiry(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return d.String()
}
