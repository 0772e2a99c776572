package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"revengine/internal/domain"
)

// mergeService defines the merge operations used by the merge handler.
type mergeService interface {
	Run(ctx context.Context, baseDocID, incomingDocID string) (*domain.MergeResult, error)
	Get(ctx context.Context, mergeID string) (*domain.MergeResult, error)
	ResolveConflict(ctx context.Context, conflictID string, resolution domain.ConflictResolution) error
}

// MergeHandler serves /merge.
type MergeHandler struct {
	merges mergeService
}

// NewMergeHandler constructs a MergeHandler.
func NewMergeHandler(merges mergeService) *MergeHandler {
	return &MergeHandler{merges: merges}
}

// Routes mounts the handler's routes onto r.
func (h *MergeHandler) Routes(r chi.Router) {
	r.Post("/merge", h.run)
	r.Get("/merge/{merge_id}", h.get)
	r.Get("/merge/{merge_id}/conflicts", h.conflicts)
	r.Post("/merge/{merge_id}/conflicts/{conflict_id}/resolve", h.resolve)
}

type mergeRequest struct {
	BaseDocID     string `json:"base_doc_id"`
	IncomingDocID string `json:"incoming_doc_id"`
}

func (h *MergeHandler) run(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.BaseDocID == "" || req.IncomingDocID == "" {
		writeError(w, domain.ErrValidation("base_doc_id and incoming_doc_id are required"))
		return
	}
	result, err := h.merges.Run(r.Context(), req.BaseDocID, req.IncomingDocID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *MergeHandler) get(w http.ResponseWriter, r *http.Request) {
	mergeID := chi.URLParam(r, "merge_id")
	result, err := h.merges.Get(r.Context(), mergeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MergeHandler) conflicts(w http.ResponseWriter, r *http.Request) {
	mergeID := chi.URLParam(r, "merge_id")
	result, err := h.merges.Get(r.Context(), mergeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*domain.MergeConflict `json:"data"`
	}{Data: result.Conflicts})
}

type resolveConflictRequest struct {
	Resolution string `json:"resolution"`
	Actor      string `json:"actor"`
}

func (h *MergeHandler) resolve(w http.ResponseWriter, r *http.Request) {
	conflictID := chi.URLParam(r, "conflict_id")
	var req resolveConflictRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	resolution := domain.ConflictResolution(req.Resolution)
	if err := h.merges.ResolveConflict(r.Context(), conflictID, resolution); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
