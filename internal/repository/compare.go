package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"revengine/internal/domain"
)

// CompareRepo persists CompareResult runs and their block deltas.
type CompareRepo interface {
	Save(ctx context.Context, result *domain.CompareResult) error
	Get(ctx context.Context, runID string) (*domain.CompareResult, error)
}

type compareRepo struct {
	db *sql.DB
}

var _ CompareRepo = (*compareRepo)(nil)

// NewCompareRepo constructs a CompareRepo backed by db.
func NewCompareRepo(db *sql.DB) CompareRepo {
	return &compareRepo{db: db}
}

func (r *compareRepo) Save(ctx context.Context, result *domain.CompareResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO compare_runs
			(id, left_doc_id, right_doc_id, elapsed_ms, blocks_left, blocks_right,
			 inserted, deleted, modified, moved, unchanged, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.LeftDocID, result.RightDocID, result.ElapsedMS,
		result.Stats.BlocksLeft, result.Stats.BlocksRight, result.Stats.Inserted,
		result.Stats.Deleted, result.Stats.Modified, result.Stats.Moved,
		result.Stats.Unchanged, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert compare_run: %w", mapDBError(err, "compare run"))
	}

	for i, d := range result.Deltas {
		tokenDiffs, err := json.Marshal(d.TokenDiffs)
		if err != nil {
			return fmt.Errorf("marshal token_diffs: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO block_deltas
				(id, run_id, ordinal, kind, left_block_id, right_block_id,
				 left_ordinal, right_ordinal, similarity_score, move_target_id, token_diffs)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, result.RunID, i, string(d.Kind), d.LeftBlockID, d.RightBlockID,
			d.LeftOrdinal, d.RightOrdinal, d.SimilarityScore, d.MoveTargetID, string(tokenDiffs),
		)
		if err != nil {
			return fmt.Errorf("insert block_delta %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *compareRepo) Get(ctx context.Context, runID string) (*domain.CompareResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, left_doc_id, right_doc_id, elapsed_ms, blocks_left, blocks_right,
		       inserted, deleted, modified, moved, unchanged
		FROM compare_runs WHERE id = ?`, runID)

	var result domain.CompareResult
	if err := row.Scan(
		&result.RunID, &result.LeftDocID, &result.RightDocID, &result.ElapsedMS,
		&result.Stats.BlocksLeft, &result.Stats.BlocksRight, &result.Stats.Inserted,
		&result.Stats.Deleted, &result.Stats.Modified, &result.Stats.Moved, &result.Stats.Unchanged,
	); err != nil {
		return nil, mapDBError(err, fmt.Sprintf("compare run %s not found", runID))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, left_block_id, right_block_id, left_ordinal, right_ordinal,
		       similarity_score, move_target_id, token_diffs
		FROM block_deltas WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("query block_deltas: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.BlockDelta
		var kind, tokenDiffs string
		if err := rows.Scan(
			&d.ID, &kind, &d.LeftBlockID, &d.RightBlockID, &d.LeftOrdinal, &d.RightOrdinal,
			&d.SimilarityScore, &d.MoveTargetID, &tokenDiffs,
		); err != nil {
			return nil, fmt.Errorf("scan block_delta: %w", err)
		}
		d.Kind = domain.DeltaKind(kind)
		if err := json.Unmarshal([]byte(tokenDiffs), &d.TokenDiffs); err != nil {
			return nil, fmt.Errorf("unmarshal token_diffs: %w", err)
		}
		result.Deltas = append(result.Deltas, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &result, nil
}
