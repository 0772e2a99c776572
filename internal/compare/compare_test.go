package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revengine/internal/domain"
)

func block(t *testing.T, docID, path, text string, idx int) *domain.Block {
	t.Helper()
	b, err := domain.NewBlock(docID, domain.BlockTypeClause, path, text, text, nil, idx)
	require.NoError(t, err)
	return b
}

func TestCompare_IdenticalDocuments(t *testing.T) {
	eng := NewEngine(Config{})
	blocks := []*domain.Block{block(t, "d1", "1.1", "the borrower shall repay", 0)}
	result, err := eng.Compare(context.Background(), "left", "right", blocks, blocks)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Unchanged)
	assert.Equal(t, 0, result.Stats.Modified)
}

func TestCompare_Insertion(t *testing.T) {
	eng := NewEngine(Config{})
	left := []*domain.Block{block(t, "d1", "1.1", "alpha clause text here", 0)}
	right := []*domain.Block{
		block(t, "d1", "1.1", "alpha clause text here", 0),
		block(t, "d1", "1.2", "beta new clause added", 1),
	}
	result, err := eng.Compare(context.Background(), "left", "right", left, right)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Inserted)
}

func TestCompare_Deletion(t *testing.T) {
	eng := NewEngine(Config{})
	left := []*domain.Block{
		block(t, "d1", "1.1", "alpha clause text here", 0),
		block(t, "d1", "1.2", "beta clause removed later", 1),
	}
	right := []*domain.Block{block(t, "d1", "1.1", "alpha clause text here", 0)}
	result, err := eng.Compare(context.Background(), "left", "right", left, right)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Deleted)
}

func TestCompare_Modification(t *testing.T) {
	eng := NewEngine(Config{})
	left := []*domain.Block{block(t, "d1", "1.1", "the borrower shall repay on the first day", 0)}
	right := []*domain.Block{block(t, "d1", "1.1", "the borrower must repay on the second day", 0)}
	result, err := eng.Compare(context.Background(), "left", "right", left, right)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Modified)
	require.Len(t, result.Deltas, 1)
	assert.NotEmpty(t, result.Deltas[0].TokenDiffs)
}

func TestCompare_MoveDetection(t *testing.T) {
	eng := NewEngine(Config{})
	text := "the lender may assign its rights under this agreement"
	left := []*domain.Block{block(t, "d1", "1.1", text, 0)}
	right := []*domain.Block{block(t, "d1", "3.1", text, 0)}
	result, err := eng.Compare(context.Background(), "left", "right", left, right)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Moved)
}

func TestCompare_EmptyDocuments(t *testing.T) {
	eng := NewEngine(Config{})
	result, err := eng.Compare(context.Background(), "left", "right", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Deltas)
}

func TestCompare_ParallelOrderPreserved(t *testing.T) {
	eng := NewEngine(Config{WorkerLimit: 4})
	var left, right []*domain.Block
	for i := 0; i < 20; i++ {
		path := string(rune('a' + i))
		left = append(left, block(t, "d1", path, path+" original text content", i))
		right = append(right, block(t, "d1", path, path+" changed text content", i))
	}
	result, err := eng.Compare(context.Background(), "left", "right", left, right)
	require.NoError(t, err)
	require.Len(t, result.Deltas, 20)
	for i, d := range result.Deltas {
		require.NotNil(t, d.LeftOrdinal)
		assert.Equal(t, i, *d.LeftOrdinal)
	}
}

func TestCompare_FlattenWithChildren(t *testing.T) {
	eng := NewEngine(Config{})
	parent := block(t, "d1", "1", "section heading text", 0)
	child := block(t, "d1", "1.1", "child clause text here", 0)
	parent.Children = []*domain.Block{child}
	result, err := eng.Compare(context.Background(), "left", "right", []*domain.Block{parent}, []*domain.Block{parent})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.BlocksLeft)
}
