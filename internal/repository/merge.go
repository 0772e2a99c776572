package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"revengine/internal/domain"
)

// MergeRepo persists MergeResult runs, their deltas, and conflict
// resolution state.
type MergeRepo interface {
	Save(ctx context.Context, result *domain.MergeResult) error
	Get(ctx context.Context, mergeID string) (*domain.MergeResult, error)
	UpdateConflictResolution(ctx context.Context, conflictID string, resolution domain.ConflictResolution) error
}

type mergeRepo struct {
	db *sql.DB
}

var _ MergeRepo = (*mergeRepo)(nil)

// NewMergeRepo constructs a MergeRepo backed by db.
func NewMergeRepo(db *sql.DB) MergeRepo {
	return &mergeRepo{db: db}
}

func (r *mergeRepo) Save(ctx context.Context, result *domain.MergeResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO merges
			(id, base_doc_id, incoming_doc_id, output_doc_id, auto_resolved, pending_review, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.MergeID, result.BaseDocID, result.IncomingDocID, result.OutputDocID,
		result.AutoResolved, result.PendingReview, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert merge: %w", mapDBError(err, "merge"))
	}

	for _, c := range result.Conflicts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO merge_conflicts
				(id, merge_id, block_id, conflict_type, base_content, incoming_content, resolution)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, result.MergeID, c.BlockID, string(c.ConflictType), c.BaseContent, c.IncomingContent,
			string(c.Resolution),
		)
		if err != nil {
			return fmt.Errorf("insert merge_conflict %s: %w", c.ID, err)
		}
	}

	for _, d := range result.Deltas {
		payload, err := json.Marshal(d.Payload)
		if err != nil {
			return fmt.Errorf("marshal merge_delta payload: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO merge_deltas
				(id, merge_id, block_id, side, kind, token_start, token_end, payload, reviewer, layer)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, result.MergeID, d.BlockID, string(d.Side), string(d.Kind),
			d.TokenStart, d.TokenEnd, string(payload), d.Reviewer, d.Layer,
		)
		if err != nil {
			return fmt.Errorf("insert merge_delta %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

func (r *mergeRepo) Get(ctx context.Context, mergeID string) (*domain.MergeResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, base_doc_id, incoming_doc_id, output_doc_id, auto_resolved, pending_review
		FROM merges WHERE id = ?`, mergeID)

	var result domain.MergeResult
	if err := row.Scan(
		&result.MergeID, &result.BaseDocID, &result.IncomingDocID, &result.OutputDocID,
		&result.AutoResolved, &result.PendingReview,
	); err != nil {
		return nil, mapDBError(err, fmt.Sprintf("merge %s not found", mergeID))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, block_id, conflict_type, base_content, incoming_content, resolution
		FROM merge_conflicts WHERE merge_id = ?`, mergeID)
	if err != nil {
		return nil, fmt.Errorf("query merge_conflicts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &domain.MergeConflict{}
		var conflictType, resolution string
		if err := rows.Scan(&c.ID, &c.BlockID, &conflictType, &c.BaseContent, &c.IncomingContent, &resolution); err != nil {
			return nil, fmt.Errorf("scan merge_conflict: %w", err)
		}
		c.ConflictType = domain.ConflictType(conflictType)
		c.Resolution = domain.ConflictResolution(resolution)
		result.Conflicts = append(result.Conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	deltaRows, err := r.db.QueryContext(ctx, `
		SELECT id, block_id, side, kind, token_start, token_end, payload, reviewer, layer
		FROM merge_deltas WHERE merge_id = ?`, mergeID)
	if err != nil {
		return nil, fmt.Errorf("query merge_deltas: %w", err)
	}
	defer deltaRows.Close()

	for deltaRows.Next() {
		var d domain.MergeDelta
		var side, kind, payload string
		if err := deltaRows.Scan(&d.ID, &d.BlockID, &side, &kind, &d.TokenStart, &d.TokenEnd, &payload, &d.Reviewer, &d.Layer); err != nil {
			return nil, fmt.Errorf("scan merge_delta: %w", err)
		}
		d.Side = domain.MergeSide(side)
		d.Kind = domain.MergeDeltaKind(kind)
		if err := json.Unmarshal([]byte(payload), &d.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal merge_delta payload: %w", err)
		}
		result.Deltas = append(result.Deltas, d)
	}
	if err := deltaRows.Err(); err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateConflictResolution validates and applies a resolution state
// transition atomically, re-checking the current state inside the
// transaction to avoid a lost-update race between two concurrent
// reviewers.
func (r *mergeRepo) UpdateConflictResolution(ctx context.Context, conflictID string, resolution domain.ConflictResolution) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT resolution FROM merge_conflicts WHERE id = ?`, conflictID).Scan(&current)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("conflict %s not found", conflictID))
	}

	if err := domain.ValidateResolutionTransition(domain.ConflictResolution(current), resolution); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE merge_conflicts SET resolution = ? WHERE id = ?`, string(resolution), conflictID); err != nil {
		return fmt.Errorf("update merge_conflict resolution: %w", err)
	}

	return tx.Commit()
}
