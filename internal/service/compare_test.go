package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revengine/internal/compare"
	"revengine/internal/domain"
)

// fakeBlockRepo serves fixed trees for Tree(ctx, documentID) keyed by id,
// standing in for repository.BlockRepo.
type fakeBlockRepo struct {
	trees map[string][]*domain.Block
}

func (f *fakeBlockRepo) ReplaceTree(_ context.Context, documentID string, roots []*domain.Block) error {
	if f.trees == nil {
		f.trees = map[string][]*domain.Block{}
	}
	f.trees[documentID] = roots
	return nil
}

func (f *fakeBlockRepo) Tree(_ context.Context, documentID string) ([]*domain.Block, error) {
	return f.trees[documentID], nil
}

type fakeCompareRepo struct {
	saved *domain.CompareResult
}

func (f *fakeCompareRepo) Save(_ context.Context, result *domain.CompareResult) error {
	f.saved = result
	return nil
}

func (f *fakeCompareRepo) Get(_ context.Context, runID string) (*domain.CompareResult, error) {
	if f.saved == nil || f.saved.RunID != runID {
		return nil, domain.ErrNotFound("compare run %s not found", runID)
	}
	return f.saved, nil
}

func mustBlock(t *testing.T, docID, text string) *domain.Block {
	t.Helper()
	b, err := domain.NewBlock(docID, domain.BlockTypeParagraph, "0", text, text, nil, 0)
	require.NoError(t, err)
	return b
}

func TestCompareService_Run_Succeeds(t *testing.T) {
	blocks := &fakeBlockRepo{trees: map[string][]*domain.Block{}}
	left := mustBlock(t, "left-doc", "the quick brown fox")
	right := mustBlock(t, "right-doc", "the slow brown fox")
	blocks.trees["left-doc"] = []*domain.Block{left}
	blocks.trees["right-doc"] = []*domain.Block{right}

	runs := &fakeCompareRepo{}
	svc := NewCompareService(blocks, runs, compare.NewEngine(compare.Config{}))

	result, err := svc.Run(context.Background(), "left-doc", "right-doc")
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
}

func TestCompareService_Run_RejectsHashMismatch(t *testing.T) {
	blocks := &fakeBlockRepo{trees: map[string][]*domain.Block{}}
	left := mustBlock(t, "left-doc", "the quick brown fox")
	right := mustBlock(t, "right-doc", "the slow brown fox")
	// Simulate drift between ingest and a later compare read: the stored
	// canonical text no longer matches the clause hash computed at ingest.
	right.CanonicalText = "tampered text"
	blocks.trees["left-doc"] = []*domain.Block{left}
	blocks.trees["right-doc"] = []*domain.Block{right}

	runs := &fakeCompareRepo{}
	svc := NewCompareService(blocks, runs, compare.NewEngine(compare.Config{}))

	_, err := svc.Run(context.Background(), "left-doc", "right-doc")
	require.Error(t, err)
	var mismatch *domain.HashMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Nil(t, runs.saved, "a hash-mismatched tree must never reach persistence")
}
