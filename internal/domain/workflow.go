package domain

// WorkflowState is the per-document lifecycle state. Serialized as
// SCREAMING_SNAKE_CASE, unlike every other enum in this package, per §6.
type WorkflowState string

const (
	WorkflowDraft                WorkflowState = "DRAFT"
	WorkflowCompareRunning       WorkflowState = "COMPARE_RUNNING"
	WorkflowFlowCreated          WorkflowState = "FLOW_CREATED"
	WorkflowInReview             WorkflowState = "IN_REVIEW"
	WorkflowReviewClosed         WorkflowState = "REVIEW_CLOSED"
	WorkflowCompilingEdits       WorkflowState = "COMPILING_EDITS"
	WorkflowReadyForFinalization WorkflowState = "READY_FOR_FINALIZATION"
	WorkflowCompleted            WorkflowState = "COMPLETED"
	WorkflowAborted              WorkflowState = "ABORTED"
)

// Valid reports whether s is one of the defined WorkflowState constants.
func (s WorkflowState) Valid() bool {
	switch s {
	case WorkflowDraft, WorkflowCompareRunning, WorkflowFlowCreated, WorkflowInReview,
		WorkflowReviewClosed, WorkflowCompilingEdits, WorkflowReadyForFinalization,
		WorkflowCompleted, WorkflowAborted:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further events.
func (s WorkflowState) Terminal() bool {
	return s == WorkflowCompleted || s == WorkflowAborted
}

// EventType enumerates the workflow event log's event kinds. Serialized as
// lowercase snake_case.
type EventType string

const (
	EventWorkflowCreated          EventType = "workflow_created"
	EventCompareStarted           EventType = "compare_started"
	EventCompareCompleted         EventType = "compare_completed"
	EventFlowCreated              EventType = "flow_created"
	EventReviewStarted            EventType = "review_started"
	EventReviewerAssigned         EventType = "reviewer_assigned"
	EventDeltaSubmitted           EventType = "delta_submitted"
	EventReviewClosed             EventType = "review_closed"
	EventEditCompilationStarted   EventType = "edit_compilation_started"
	EventEditCompilationCompleted EventType = "edit_compilation_completed"
	EventFinalizationReady        EventType = "finalization_ready"
	EventWorkflowCompleted        EventType = "workflow_completed"
	EventWorkflowAborted          EventType = "workflow_aborted"
)

// Valid reports whether e is one of the defined EventType constants.
func (e EventType) Valid() bool {
	switch e {
	case EventWorkflowCreated, EventCompareStarted, EventCompareCompleted, EventFlowCreated,
		EventReviewStarted, EventReviewerAssigned, EventDeltaSubmitted, EventReviewClosed,
		EventEditCompilationStarted, EventEditCompilationCompleted, EventFinalizationReady,
		EventWorkflowCompleted, EventWorkflowAborted:
		return true
	}
	return false
}

// Workflow is the per-document lifecycle record. Its State is always the
// projection of its event log (see internal/workflow.Project); it is never
// written to directly outside that projection.
type Workflow struct {
	ID          string
	DocumentID  string
	State       WorkflowState
	InitiatorID string
	CreatedAt   string // ISO-8601
	UpdatedAt   string // ISO-8601
}

// WorkflowEvent is one append-only entry in a workflow's event log.
type WorkflowEvent struct {
	ID         string
	WorkflowID string
	EventType  EventType
	Actor      string
	Payload    map[string]any // opaque
	CreatedAt  string         // ISO-8601
	Seq        int64          // >= 1, strictly increasing per workflow
}
