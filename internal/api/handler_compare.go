package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"revengine/internal/domain"
)

// compareService defines the compare operations used by the compare
// handler.
type compareService interface {
	Run(ctx context.Context, leftDocID, rightDocID string) (*domain.CompareResult, error)
	Get(ctx context.Context, runID string) (*domain.CompareResult, error)
}

// CompareHandler serves /compare.
type CompareHandler struct {
	compare compareService
}

// NewCompareHandler constructs a CompareHandler.
func NewCompareHandler(compare compareService) *CompareHandler {
	return &CompareHandler{compare: compare}
}

// Routes mounts the handler's routes onto r.
func (h *CompareHandler) Routes(r chi.Router) {
	r.Post("/compare", h.run)
	r.Get("/compare/{run_id}", h.get)
}

type compareRequest struct {
	LeftDocID  string `json:"left_doc_id"`
	RightDocID string `json:"right_doc_id"`
}

func (h *CompareHandler) run(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.LeftDocID == "" || req.RightDocID == "" {
		writeError(w, domain.ErrValidation("left_doc_id and right_doc_id are required"))
		return
	}
	result, err := h.compare.Run(r.Context(), req.LeftDocID, req.RightDocID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *CompareHandler) get(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	result, err := h.compare.Get(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
