// Package workflow implements the event-sourced workflow state machine:
// the legal transition table and the deterministic projection from an
// event log to a current state.
//
// Grounded on original_source/crates/rt-workflow/src/{validator,projector}.rs.
package workflow

import "revengine/internal/domain"

type transitionKey struct {
	from  domain.WorkflowState
	event domain.EventType
}

// legalTransitions is the authoritative (state, event) -> next-state table.
// Every pair absent from this map is illegal, including any pair whose
// "from" state is terminal.
var legalTransitions = map[transitionKey]domain.WorkflowState{
	{domain.WorkflowDraft, domain.EventWorkflowCreated}:                   domain.WorkflowDraft,
	{domain.WorkflowDraft, domain.EventCompareStarted}:                    domain.WorkflowCompareRunning,
	{domain.WorkflowDraft, domain.EventWorkflowAborted}:                   domain.WorkflowAborted,
	{domain.WorkflowCompareRunning, domain.EventCompareCompleted}:         domain.WorkflowFlowCreated,
	{domain.WorkflowFlowCreated, domain.EventReviewStarted}:               domain.WorkflowInReview,
	{domain.WorkflowInReview, domain.EventReviewerAssigned}:               domain.WorkflowInReview,
	{domain.WorkflowInReview, domain.EventDeltaSubmitted}:                 domain.WorkflowInReview,
	{domain.WorkflowInReview, domain.EventReviewClosed}:                   domain.WorkflowReviewClosed,
	{domain.WorkflowInReview, domain.EventWorkflowAborted}:                domain.WorkflowAborted,
	{domain.WorkflowReviewClosed, domain.EventEditCompilationStarted}:     domain.WorkflowCompilingEdits,
	{domain.WorkflowReviewClosed, domain.EventWorkflowAborted}:            domain.WorkflowAborted,
	{domain.WorkflowCompilingEdits, domain.EventEditCompilationCompleted}: domain.WorkflowReadyForFinalization,
	{domain.WorkflowReadyForFinalization, domain.EventWorkflowCompleted}:  domain.WorkflowCompleted,
}

// ValidateTransition returns the next state for (current, event), or a
// *domain.ValidationError if the pair is not in the legal transition table.
func ValidateTransition(current domain.WorkflowState, event domain.EventType) (domain.WorkflowState, error) {
	next, ok := legalTransitions[transitionKey{current, event}]
	if !ok {
		return "", domain.ErrValidation("illegal workflow transition: %s on event %s", current, event)
	}
	return next, nil
}

// LegalEvents returns the events that are legal from the given state, in no
// particular order. Used to report actionable errors and to drive UI.
func LegalEvents(state domain.WorkflowState) []domain.EventType {
	var events []domain.EventType
	for key := range legalTransitions {
		if key.from == state {
			events = append(events, key.event)
		}
	}
	return events
}
