package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revengine/internal/domain"
)

func ev(seq int64, t domain.EventType) *domain.WorkflowEvent {
	return &domain.WorkflowEvent{Seq: seq, EventType: t}
}

func TestProject_EmptyIsDraft(t *testing.T) {
	state, err := Project(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowDraft, state)
}

func TestProject_FullLifecycle(t *testing.T) {
	events := []*domain.WorkflowEvent{
		ev(1, domain.EventWorkflowCreated),
		ev(2, domain.EventCompareStarted),
		ev(3, domain.EventCompareCompleted),
		ev(4, domain.EventReviewStarted),
		ev(5, domain.EventReviewClosed),
		ev(6, domain.EventEditCompilationStarted),
		ev(7, domain.EventEditCompilationCompleted),
		ev(8, domain.EventWorkflowCompleted),
	}
	state, err := Project(events)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowCompleted, state)
}

func TestProject_OutOfOrderEventsAreSorted(t *testing.T) {
	events := []*domain.WorkflowEvent{
		ev(3, domain.EventCompareCompleted),
		ev(1, domain.EventWorkflowCreated),
		ev(2, domain.EventCompareStarted),
	}
	state, err := Project(events)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowFlowCreated, state)
}

func TestProject_IllegalMidSequenceErrors(t *testing.T) {
	events := []*domain.WorkflowEvent{
		ev(1, domain.EventWorkflowCreated),
		ev(2, domain.EventReviewStarted), // illegal from DRAFT
	}
	_, err := Project(events)
	assert.Error(t, err)
}

func TestValidateSequence_GapFree(t *testing.T) {
	events := []*domain.WorkflowEvent{ev(1, domain.EventWorkflowCreated), ev(2, domain.EventCompareStarted)}
	assert.NoError(t, ValidateSequence(events))

	gapped := []*domain.WorkflowEvent{ev(1, domain.EventWorkflowCreated), ev(3, domain.EventCompareStarted)}
	assert.Error(t, ValidateSequence(gapped))
}
