package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gadget-registry/internal/confirm"
	"github.com/nerrad567/gadget-registry/internal/gadget"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeNotFound          = "not_found"
	ErrCodeUnauthorized      = "unauthorised"
	ErrCodeConflict          = "conflict"
	ErrCodeInternal          = "internal_error"
	ErrCodeValidation        = "validation_error"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeConfirmation      = "confirmation_failed"
	ErrCodeCodenameExhausted = "codename_exhausted"
)

// confirmationMessages are the client-facing texts for broker failures.
var confirmationMessages = map[error]string{
	confirm.ErrMissingCode:  "Confirmation code is required",
	confirm.ErrNoActiveCode: "No confirmation code found. Request a new one.",
	confirm.ErrExpiredCode:  "Confirmation code has expired. Request a new one.",
	confirm.ErrCodeMismatch: "Invalid confirmation code.",
}

// decommissionMessages are the client-facing texts for decommission refusals.
var decommissionMessages = map[error]string{
	gadget.ErrAlreadyDecommissioned:       "Gadget is already decommissioned",
	gadget.ErrCannotDecommissionDestroyed: "Cannot decommission a destroyed gadget",
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeGadgetError maps a gadget service error to its HTTP response.
// fallback is the message used for unexpected (500) errors.
func writeGadgetError(w http.ResponseWriter, err error, fallback string) {
	for sentinel, msg := range confirmationMessages {
		if errors.Is(err, sentinel) {
			writeError(w, http.StatusBadRequest, ErrCodeConfirmation, msg)
			return
		}
	}

	for sentinel, msg := range decommissionMessages {
		if errors.Is(err, sentinel) {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidTransition, msg)
			return
		}
	}

	switch {
	case errors.Is(err, gadget.ErrNotFound):
		writeNotFound(w, "Gadget not found")
	case errors.Is(err, gadget.ErrInvalidDescription),
		errors.Is(err, gadget.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, gadget.ErrTerminalState),
		errors.Is(err, gadget.ErrInvalidTransition),
		errors.Is(err, gadget.ErrConfirmationRequired):
		writeError(w, http.StatusBadRequest, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, gadget.ErrConcurrentUpdate):
		writeError(w, http.StatusConflict, ErrCodeConflict, "gadget was modified concurrently, retry the request")
	case errors.Is(err, gadget.ErrCodenameExhausted):
		writeError(w, http.StatusServiceUnavailable, ErrCodeCodenameExhausted, "could not generate a unique codename")
	default:
		writeInternalError(w, fallback)
	}
}
