package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"revengine/internal/align"
	"revengine/internal/domain"
)

// BlockRepo persists a document's block tree. Blocks are stored flat
// (parent_id self-reference) and reassembled into a tree on read.
type BlockRepo interface {
	ReplaceTree(ctx context.Context, documentID string, roots []*domain.Block) error
	Tree(ctx context.Context, documentID string) ([]*domain.Block, error)
}

type blockRepo struct {
	db *sql.DB
}

var _ BlockRepo = (*blockRepo)(nil)

// NewBlockRepo constructs a BlockRepo backed by db.
func NewBlockRepo(db *sql.DB) BlockRepo {
	return &blockRepo{db: db}
}

// ReplaceTree deletes any existing blocks for documentID and inserts roots
// (and their descendants) in a single transaction.
func (r *blockRepo) ReplaceTree(ctx context.Context, documentID string, roots []*domain.Block) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}

	flat := align.Flatten(roots)
	for i, b := range flat {
		if err := insertBlock(ctx, tx, b, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertBlock(ctx context.Context, tx *sql.Tx, b *domain.Block, ordinal int) error {
	formatting, err := json.Marshal(b.FormattingMeta)
	if err != nil {
		return fmt.Errorf("marshal formatting_meta: %w", err)
	}
	tokens, err := json.Marshal(b.Tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	runs, err := json.Marshal(b.Runs)
	if err != nil {
		return fmt.Errorf("marshal runs: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blocks
			(id, document_id, parent_id, block_type, level, structural_path,
			 anchor_signature, clause_hash, canonical_text, display_text,
			 formatting_meta, position_index, tokens, runs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.DocumentID, b.ParentID, string(b.BlockType), b.Level, b.StructuralPath,
		b.AnchorSignature, b.ClauseHash, b.CanonicalText, b.DisplayText,
		string(formatting), b.PositionIndex, string(tokens), string(runs),
	)
	if err != nil {
		return fmt.Errorf("insert block %s (ordinal %d): %w", b.ID, ordinal, mapDBError(err, "block"))
	}
	return nil
}

// Tree loads every block for documentID and reassembles the parent/child
// tree, returning the root blocks in position_index order.
func (r *blockRepo) Tree(ctx context.Context, documentID string) ([]*domain.Block, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, parent_id, block_type, level, structural_path,
		       anchor_signature, clause_hash, canonical_text, display_text,
		       formatting_meta, position_index, tokens, runs
		FROM blocks WHERE document_id = ? ORDER BY position_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Block)
	var order []*domain.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		byID[b.ID] = b
		order = append(order, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var roots []*domain.Block
	for _, b := range order {
		if b.ParentID == nil {
			roots = append(roots, b)
			continue
		}
		parent, ok := byID[*b.ParentID]
		if !ok {
			// Orphaned row (shouldn't happen under FK constraints); treat as root.
			roots = append(roots, b)
			continue
		}
		parent.Children = append(parent.Children, b)
	}

	return roots, nil
}

func scanBlock(row rowScanner) (*domain.Block, error) {
	var b domain.Block
	var blockType, formatting, tokens, runs string
	if err := row.Scan(
		&b.ID, &b.DocumentID, &b.ParentID, &blockType, &b.Level, &b.StructuralPath,
		&b.AnchorSignature, &b.ClauseHash, &b.CanonicalText, &b.DisplayText,
		&formatting, &b.PositionIndex, &tokens, &runs,
	); err != nil {
		return nil, err
	}
	bt, err := domain.ParseBlockType(blockType)
	if err != nil {
		return nil, err
	}
	b.BlockType = bt
	if err := json.Unmarshal([]byte(formatting), &b.FormattingMeta); err != nil {
		return nil, fmt.Errorf("unmarshal formatting_meta: %w", err)
	}
	if err := json.Unmarshal([]byte(tokens), &b.Tokens); err != nil {
		return nil, fmt.Errorf("unmarshal tokens: %w", err)
	}
	if err := json.Unmarshal([]byte(runs), &b.Runs); err != nil {
		return nil, fmt.Errorf("unmarshal runs: %w", err)
	}
	return &b, nil
}
