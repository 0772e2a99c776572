package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revengine/internal/domain"
)

func TestValidateTransition_LegalPath(t *testing.T) {
	state := domain.WorkflowDraft
	steps := []domain.EventType{
		domain.EventCompareStarted,
		domain.EventCompareCompleted,
		domain.EventReviewStarted,
		domain.EventReviewClosed,
		domain.EventEditCompilationStarted,
		domain.EventEditCompilationCompleted,
		domain.EventWorkflowCompleted,
	}
	var err error
	for _, ev := range steps {
		state, err = ValidateTransition(state, ev)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.WorkflowCompleted, state)
}

func TestValidateTransition_IllegalFromDraft(t *testing.T) {
	_, err := ValidateTransition(domain.WorkflowDraft, domain.EventReviewStarted)
	require.Error(t, err)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidateTransition_TerminalRejectsEverything(t *testing.T) {
	for _, ev := range []domain.EventType{domain.EventCompareStarted, domain.EventWorkflowAborted, domain.EventWorkflowCompleted} {
		_, err := ValidateTransition(domain.WorkflowCompleted, ev)
		assert.Error(t, err)
		_, err = ValidateTransition(domain.WorkflowAborted, ev)
		assert.Error(t, err)
	}
}

func TestValidateTransition_AbortFromVariousStates(t *testing.T) {
	for _, from := range []domain.WorkflowState{domain.WorkflowDraft, domain.WorkflowInReview, domain.WorkflowReviewClosed} {
		next, err := ValidateTransition(from, domain.EventWorkflowAborted)
		require.NoError(t, err)
		assert.Equal(t, domain.WorkflowAborted, next)
	}
	// Not legal from COMPARE_RUNNING, FLOW_CREATED, COMPILING_EDITS, READY_FOR_FINALIZATION.
	for _, from := range []domain.WorkflowState{domain.WorkflowCompareRunning, domain.WorkflowFlowCreated, domain.WorkflowCompilingEdits, domain.WorkflowReadyForFinalization} {
		_, err := ValidateTransition(from, domain.EventWorkflowAborted)
		assert.Error(t, err)
	}
}
