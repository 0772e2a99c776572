package service

import (
	"context"
	"time"

	"revengine/internal/domain"
	"revengine/internal/repository"
	"revengine/internal/workflow"
)

// WorkflowService manages a document's event-sourced review lifecycle.
type WorkflowService struct {
	workflows repository.WorkflowRepo
}

// NewWorkflowService constructs a WorkflowService.
func NewWorkflowService(workflows repository.WorkflowRepo) *WorkflowService {
	return &WorkflowService{workflows: workflows}
}

// Create starts a new Workflow for documentID in the DRAFT state.
func (s *WorkflowService) Create(ctx context.Context, documentID, initiatorID string) (*domain.Workflow, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	wf := &domain.Workflow{
		ID:          domain.NewID(),
		DocumentID:  documentID,
		State:       domain.WorkflowDraft,
		InitiatorID: initiatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.workflows.Create(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// Get reads the stored Workflow row, projects its full event log
// independently, and returns an error if the projection disagrees with the
// stored state (the consistency invariant in spec §4.F's get_workflow).
func (s *WorkflowService) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	wf, err := s.workflows.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := s.workflows.Events(ctx, id)
	if err != nil {
		return nil, err
	}
	projected, err := workflow.Project(events)
	if err != nil {
		return nil, err
	}
	if projected != wf.State {
		return nil, domain.ErrConflict("workflow %s: stored state %s disagrees with projected state %s", id, wf.State, projected)
	}

	return wf, nil
}

// Events returns the full event log for a workflow, in sequence order.
func (s *WorkflowService) Events(ctx context.Context, workflowID string) ([]*domain.WorkflowEvent, error) {
	return s.workflows.Events(ctx, workflowID)
}

// SubmitEvent validates eventType against the workflow's current state and,
// if legal, appends it to the event log and advances the workflow's
// projected state. The read-current-state -> validate -> append -> update
// sequence happens inside repository.WorkflowRepo.AppendEvent's single
// transaction, so two concurrent submissions against the same workflow
// cannot both succeed against a state that only one of them actually saw.
func (s *WorkflowService) SubmitEvent(ctx context.Context, workflowID string, eventType domain.EventType, actor string, payload map[string]any) (*domain.Workflow, error) {
	if !eventType.Valid() {
		return nil, domain.ErrValidation("unknown event_type %q", eventType)
	}

	wf, err := s.workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	nextState, err := workflow.ValidateTransition(wf.State, eventType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	event := &domain.WorkflowEvent{
		ID:         domain.NewID(),
		WorkflowID: workflowID,
		EventType:  eventType,
		Actor:      actor,
		Payload:    payload,
		CreatedAt:  now,
	}
	if err := s.workflows.AppendEvent(ctx, event, nextState, now); err != nil {
		return nil, err
	}

	wf.State = nextState
	wf.UpdatedAt = now
	return wf, nil
}
