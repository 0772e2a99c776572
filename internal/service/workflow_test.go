package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revengine/internal/domain"
)

// fakeWorkflowRepo is an in-memory stand-in for repository.WorkflowRepo,
// mirroring the real implementation's seq-assignment and state-update
// behavior closely enough to exercise WorkflowService without a database.
type fakeWorkflowRepo struct {
	workflows map[string]*domain.Workflow
	events    map[string][]*domain.WorkflowEvent
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{
		workflows: map[string]*domain.Workflow{},
		events:    map[string][]*domain.WorkflowEvent{},
	}
}

func (f *fakeWorkflowRepo) Create(_ context.Context, wf *domain.Workflow) error {
	cp := *wf
	f.workflows[wf.ID] = &cp
	f.events[wf.ID] = []*domain.WorkflowEvent{{
		ID:         domain.NewID(),
		WorkflowID: wf.ID,
		Seq:        1,
		EventType:  domain.EventWorkflowCreated,
		Actor:      wf.InitiatorID,
		CreatedAt:  wf.CreatedAt,
	}}
	return nil
}

func (f *fakeWorkflowRepo) Get(_ context.Context, id string) (*domain.Workflow, error) {
	wf, ok := f.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound("workflow %s not found", id)
	}
	cp := *wf
	return &cp, nil
}

func (f *fakeWorkflowRepo) Events(_ context.Context, workflowID string) ([]*domain.WorkflowEvent, error) {
	return f.events[workflowID], nil
}

func (f *fakeWorkflowRepo) AppendEvent(_ context.Context, event *domain.WorkflowEvent, newState domain.WorkflowState, updatedAt string) error {
	event.Seq = int64(len(f.events[event.WorkflowID]) + 1)
	f.events[event.WorkflowID] = append(f.events[event.WorkflowID], event)
	wf := f.workflows[event.WorkflowID]
	wf.State = newState
	wf.UpdatedAt = updatedAt
	return nil
}

func (f *fakeWorkflowRepo) ListStaleInState(_ context.Context, state domain.WorkflowState, threshold time.Duration) ([]*domain.Workflow, error) {
	var out []*domain.Workflow
	for _, wf := range f.workflows {
		if wf.State == state {
			out = append(out, wf)
		}
	}
	return out, nil
}

func TestWorkflowService_Create_SeedsWorkflowCreatedEvent(t *testing.T) {
	repo := newFakeWorkflowRepo()
	svc := NewWorkflowService(repo)
	ctx := context.Background()

	wf, err := svc.Create(ctx, "doc-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowDraft, wf.State)

	events, err := svc.Events(ctx, wf.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.EqualValues(t, 1, events[0].Seq)
	assert.Equal(t, domain.EventWorkflowCreated, events[0].EventType)
}

func TestWorkflowService_Get_ConsistentProjectionSucceeds(t *testing.T) {
	repo := newFakeWorkflowRepo()
	svc := NewWorkflowService(repo)
	ctx := context.Background()

	wf, err := svc.Create(ctx, "doc-1", "alice")
	require.NoError(t, err)

	got, err := svc.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowDraft, got.State)

	_, err = svc.SubmitEvent(ctx, wf.ID, domain.EventCompareStarted, "alice", nil)
	require.NoError(t, err)

	got, err = svc.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowCompareRunning, got.State)
}

func TestWorkflowService_Get_RejectsStateProjectionMismatch(t *testing.T) {
	repo := newFakeWorkflowRepo()
	svc := NewWorkflowService(repo)
	ctx := context.Background()

	wf, err := svc.Create(ctx, "doc-1", "alice")
	require.NoError(t, err)

	// Corrupt the stored state column out from under the event log, as if
	// a write had bypassed AppendEvent.
	repo.workflows[wf.ID].State = domain.WorkflowCompleted

	_, err = svc.Get(ctx, wf.ID)
	require.Error(t, err)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestWorkflowService_SubmitEvent_RejectsIllegalTransition(t *testing.T) {
	repo := newFakeWorkflowRepo()
	svc := NewWorkflowService(repo)
	ctx := context.Background()

	wf, err := svc.Create(ctx, "doc-1", "alice")
	require.NoError(t, err)

	_, err = svc.SubmitEvent(ctx, wf.ID, domain.EventReviewStarted, "alice", nil)
	require.Error(t, err)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
