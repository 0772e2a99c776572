package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"revengine/internal/domain"
)

// WorkflowRepo persists Workflow aggregates and their append-only event log.
type WorkflowRepo interface {
	Create(ctx context.Context, wf *domain.Workflow) error
	Get(ctx context.Context, id string) (*domain.Workflow, error)
	Events(ctx context.Context, workflowID string) ([]*domain.WorkflowEvent, error)
	// AppendEvent atomically reads the current max sequence number for
	// workflowID, inserts event at seq+1, and updates the workflow's state
	// and updated_at in the same transaction — guaranteeing the event log
	// stays gap-free and consistent with the current projected state even
	// under concurrent submissions.
	AppendEvent(ctx context.Context, event *domain.WorkflowEvent, newState domain.WorkflowState, updatedAt string) error
	// ListStaleInState returns every Workflow currently in state whose
	// updated_at is older than threshold. Used by the housekeeping
	// scanner; never mutates anything.
	ListStaleInState(ctx context.Context, state domain.WorkflowState, threshold time.Duration) ([]*domain.Workflow, error)
}

type workflowRepo struct {
	db *sql.DB
}

var _ WorkflowRepo = (*workflowRepo)(nil)

// NewWorkflowRepo constructs a WorkflowRepo backed by db.
func NewWorkflowRepo(db *sql.DB) WorkflowRepo {
	return &workflowRepo{db: db}
}

// Create inserts the workflows row and its mandatory seq=1 workflow_created
// event in the same transaction, so every workflow is born with exactly one
// seq=1 event of type workflow_created (spec §3's event-log invariant).
func (r *workflowRepo) Create(ctx context.Context, wf *domain.Workflow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflows (id, document_id, state, initiator_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		wf.ID, wf.DocumentID, string(wf.State), wf.InitiatorID, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", mapDBError(err, "workflow"))
	}

	payload, err := json.Marshal(map[string]any{})
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflow_events (id, workflow_id, seq, event_type, actor, payload, created_at)
		VALUES (?, ?, 1, ?, ?, ?, ?)`,
		domain.NewID(), wf.ID, string(domain.EventWorkflowCreated), wf.InitiatorID, string(payload), wf.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow_created event: %w", mapDBError(err, "workflow event"))
	}

	return tx.Commit()
}

func (r *workflowRepo) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document_id, state, initiator_id, created_at, updated_at
		FROM workflows WHERE id = ?`, id)

	var wf domain.Workflow
	var state string
	if err := row.Scan(&wf.ID, &wf.DocumentID, &state, &wf.InitiatorID, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
		return nil, mapDBError(err, fmt.Sprintf("workflow %s not found", id))
	}
	wf.State = domain.WorkflowState(state)
	return &wf, nil
}

func (r *workflowRepo) Events(ctx context.Context, workflowID string) ([]*domain.WorkflowEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workflow_id, seq, event_type, actor, payload, created_at
		FROM workflow_events WHERE workflow_id = ? ORDER BY seq`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("query workflow_events: %w", err)
	}
	defer rows.Close()

	var events []*domain.WorkflowEvent
	for rows.Next() {
		e := &domain.WorkflowEvent{}
		var eventType, payload string
		if err := rows.Scan(&e.ID, &e.WorkflowID, &e.Seq, &eventType, &e.Actor, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow_event: %w", err)
		}
		e.EventType = domain.EventType(eventType)
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *workflowRepo) AppendEvent(ctx context.Context, event *domain.WorkflowEvent, newState domain.WorkflowState, updatedAt string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM workflow_events WHERE workflow_id = ?`, event.WorkflowID).Scan(&maxSeq); err != nil {
		return fmt.Errorf("select max seq: %w", err)
	}
	event.Seq = maxSeq.Int64 + 1

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflow_events (id, workflow_id, seq, event_type, actor, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.WorkflowID, event.Seq, string(event.EventType), event.Actor, string(payload), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow_event: %w", mapDBError(err, "workflow event"))
	}

	_, err = tx.ExecContext(ctx, `UPDATE workflows SET state = ?, updated_at = ? WHERE id = ?`,
		string(newState), updatedAt, event.WorkflowID)
	if err != nil {
		return fmt.Errorf("update workflow state: %w", err)
	}

	return tx.Commit()
}

func (r *workflowRepo) ListStaleInState(ctx context.Context, state domain.WorkflowState, threshold time.Duration) ([]*domain.Workflow, error) {
	cutoff := time.Now().UTC().Add(-threshold).Format(time.RFC3339)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, state, initiator_id, created_at, updated_at
		FROM workflows WHERE state = ? AND updated_at < ?`, string(state), cutoff)
	if err != nil {
		return nil, fmt.Errorf("query stale workflows: %w", err)
	}
	defer rows.Close()

	var out []*domain.Workflow
	for rows.Next() {
		wf := &domain.Workflow{}
		var s string
		if err := rows.Scan(&wf.ID, &wf.DocumentID, &s, &wf.InitiatorID, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		wf.State = domain.WorkflowState(s)
		out = append(out, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
