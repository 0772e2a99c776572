// Package api exposes the revision engine's operations over HTTP: a
// hand-routed github.com/go-chi/chi/v5 mux, one handler file per resource
// family, and a single error-to-status-code dispatcher.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"revengine/internal/domain"
)

// Error is the standard JSON error envelope for every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var accessDenied *domain.AccessDeniedError
	var hashMismatch *domain.HashMismatchError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &hashMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	writeJSON(w, status, Error{Code: status, Message: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation("malformed request body: %v", err)
	}
	return nil
}

// actorID extracts the caller's opaque actor identifier from the
// X-Actor-Id header. An authorization layer is out of scope; this is
// carried through purely for attribution as a workflow's initiator and as
// the actor of workflow events.
func actorID(r *http.Request) string {
	return r.Header.Get("X-Actor-Id")
}
