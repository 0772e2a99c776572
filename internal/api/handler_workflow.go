package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"revengine/internal/domain"
)

// workflowService defines the workflow operations used by the workflows
// handler.
type workflowService interface {
	Create(ctx context.Context, documentID, initiatorID string) (*domain.Workflow, error)
	Get(ctx context.Context, id string) (*domain.Workflow, error)
	Events(ctx context.Context, workflowID string) ([]*domain.WorkflowEvent, error)
	SubmitEvent(ctx context.Context, workflowID string, eventType domain.EventType, actor string, payload map[string]any) (*domain.Workflow, error)
}

// WorkflowsHandler serves /workflows.
type WorkflowsHandler struct {
	workflows workflowService
}

// NewWorkflowsHandler constructs a WorkflowsHandler.
func NewWorkflowsHandler(workflows workflowService) *WorkflowsHandler {
	return &WorkflowsHandler{workflows: workflows}
}

// Routes mounts the handler's routes onto r.
func (h *WorkflowsHandler) Routes(r chi.Router) {
	r.Post("/workflows", h.create)
	r.Get("/workflows/{id}", h.get)
	r.Get("/workflows/{id}/events", h.events)
	r.Post("/workflows/{id}/events", h.submitEvent)
}

type createWorkflowRequest struct {
	DocumentID string `json:"document_id"`
}

func (h *WorkflowsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DocumentID == "" {
		writeError(w, domain.ErrValidation("document_id is required"))
		return
	}
	wf, err := h.workflows.Create(r.Context(), req.DocumentID, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

func (h *WorkflowsHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wf, err := h.workflows.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (h *WorkflowsHandler) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	events, err := h.workflows.Events(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*domain.WorkflowEvent `json:"data"`
	}{Data: events})
}

type submitEventRequest struct {
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`
}

func (h *WorkflowsHandler) submitEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req submitEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	wf, err := h.workflows.SubmitEvent(r.Context(), id, domain.EventType(req.EventType), actorID(r), req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}
