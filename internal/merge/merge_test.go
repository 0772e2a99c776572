package merge

import (
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

func TestMerge_IdenticalDocumentsZeroConflicts(t *testing.T) {
	eng := NewEngine(Config{})
	base := []*domain.Block{
		block(t, "base", "1.1", "the borrower shall repay the principal", 0),
		block(t, "base", "1.2", "interest shall accrue at five percent per annum", 1),
	}
	incoming := []*domain.Block{
		block(t, "incoming", "1.1", "the borrower shall repay the principal", 0),
		block(t, "incoming", "1.2", "interest shall accrue at five percent per annum", 1),
	}

	result := eng.Merge("base", "incoming", base, incoming)

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 0, result.PendingReview)
	assert.Equal(t, len(base), result.AutoResolved)
}

func TestMerge_SingleBlockSubstitutionConflictsOnlyInThatBlock(t *testing.T) {
	eng := NewEngine(Config{})
	base := []*domain.Block{
		block(t, "base", "1.1", "the borrower shall repay the principal on time", 0),
		block(t, "base", "1.2", "interest is fixed at five percent per year", 1),
	}
	incoming := []*domain.Block{
		block(t, "incoming", "1.1", "the borrower shall repay the principal on time", 0),
		block(t, "incoming", "1.2", "interest is fixed at six percent per year", 1),
	}

	result := eng.Merge("base", "incoming", base, incoming)

	// "five"->"six" gives base and incoming a modify over the same token,
	// so block 1.2 conflicts while the unchanged block 1.1 auto-resolves.
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, domain.ConflictTypeContentOverlap, result.Conflicts[0].ConflictType)
	assert.Equal(t, 1, result.PendingReview)
	assert.Equal(t, 1, result.AutoResolved)
}

func TestMerge_MoveAutoResolvedNoConflicts(t *testing.T) {
	eng := NewEngine(Config{})
	text := "the lender may assign its rights under this agreement"
	base := []*domain.Block{block(t, "base", "1.1", text, 0)}
	incoming := []*domain.Block{block(t, "incoming", "3.1", text, 0)}

	result := eng.Merge("base", "incoming", base, incoming)

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 1, result.AutoResolved)
}

func TestMerge_OverlappingEditsContentOverlapConflict(t *testing.T) {
	eng := NewEngine(Config{})
	base := []*domain.Block{block(t, "base", "1.1", "the borrower shall repay on the first day", 0)}
	incoming := []*domain.Block{block(t, "incoming", "1.1", "the borrower must repay on the second day", 0)}

	result := eng.Merge("base", "incoming", base, incoming)

	require.NotEmpty(t, result.Conflicts)
	found := false
	for _, c := range result.Conflicts {
		if c.ConflictType == domain.ConflictTypeContentOverlap {
			found = true
		}
	}
	assert.True(t, found, "expected at least one content_overlap conflict")
	assert.Equal(t, result.PendingReview, len(result.Conflicts))
}

func TestMerge_DeleteModifyConflictBaseContentNil(t *testing.T) {
	base := []*domain.Block{block(t, "base", "1.1", "clause to be removed entirely", 0)}
	incoming := []*domain.Block{block(t, "incoming", "1.1", "clause to be heavily modified instead", 0)}

	// Force a matched pair with one side deleting everything and the other
	// modifying, by hand-building the delta sets directly (align would treat
	// this as either a low-similarity non-match or a modify; detectConflicts
	// is exercised directly here against a synthetic delete-vs-modify pair).
	baseDeltas := []domain.MergeDelta{{
		BlockID: base[0].ID, Side: domain.MergeSideBase, Kind: domain.MergeDeltaDelete,
		TokenStart: 0, TokenEnd: 10, Payload: map[string]string{"text": "clause to be removed entirely"},
	}}
	incomingDeltas := []domain.MergeDelta{{
		BlockID: base[0].ID, Side: domain.MergeSideIncoming, Kind: domain.MergeDeltaModify,
		TokenStart: 2, TokenEnd: 7, Payload: map[string]string{"text": "heavily modified instead"},
	}}

	conflicts := detectConflicts(baseDeltas, incomingDeltas)
	require.Len(t, conflicts, 1)
	assert.Equal(t, domain.ConflictTypeDeleteModify, conflicts[0].ConflictType)
	assert.Nil(t, conflicts[0].BaseContent)
	require.NotNil(t, conflicts[0].IncomingContent)
	assert.Equal(t, "heavily modified instead", *conflicts[0].IncomingContent)

	_ = incoming
}

func TestMerge_PureInsertionAutoResolved(t *testing.T) {
	eng := NewEngine(Config{})
	var base []*domain.Block
	incoming := []*domain.Block{block(t, "incoming", "1.1", "brand new clause inserted here", 0)}

	result := eng.Merge("base", "incoming", base, incoming)

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 1, result.AutoResolved)
}

func TestMerge_PureDeletionAutoResolved(t *testing.T) {
	eng := NewEngine(Config{})
	base := []*domain.Block{block(t, "base", "1.1", "clause to be removed from document", 0)}
	var incoming []*domain.Block

	result := eng.Merge("base", "incoming", base, incoming)

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 1, result.AutoResolved)
}

func TestMerge_EmptyBothSides(t *testing.T) {
	eng := NewEngine(Config{})
	result := eng.Merge("base", "incoming", nil, nil)
	assert.Equal(t, 0, result.AutoResolved)
	assert.Empty(t, result.Conflicts)
}

func TestResolveConflict_LegalTransition(t *testing.T) {
	c := &domain.MergeConflict{Resolution: domain.ResolutionPending}
	err := ResolveConflict(c, domain.ResolutionAcceptedBase)
	require.NoError(t, err)
	assert.Equal(t, domain.ResolutionAcceptedBase, c.Resolution)
}

func TestResolveConflict_IllegalRevertToPending(t *testing.T) {
	c := &domain.MergeConflict{Resolution: domain.ResolutionAcceptedBase}
	err := ResolveConflict(c, domain.ResolutionPending)
	assert.Error(t, err)
}

func TestDetectConflicts_NonOverlappingNoConflict(t *testing.T) {
	bid := "b1"
	base := []domain.MergeDelta{{BlockID: bid, Kind: domain.MergeDeltaModify, TokenStart: 0, TokenEnd: 3}}
	incoming := []domain.MergeDelta{{BlockID: bid, Kind: domain.MergeDeltaModify, TokenStart: 5, TokenEnd: 9}}
	assert.Empty(t, detectConflicts(base, incoming))
}

func TestDetectConflicts_BothDeleteSameRangeNoConflict(t *testing.T) {
	bid := "b1"
	base := []domain.MergeDelta{{BlockID: bid, Kind: domain.MergeDeltaDelete, TokenStart: 0, TokenEnd: 5}}
	incoming := []domain.MergeDelta{{BlockID: bid, Kind: domain.MergeDeltaDelete, TokenStart: 0, TokenEnd: 5}}
	assert.Empty(t, detectConflicts(base, incoming))
}

func TestRangesOverlap(t *testing.T) {
	assert.True(t, rangesOverlap(2, 5, 2, 5))
	assert.True(t, rangesOverlap(0, 4, 3, 7))
	assert.True(t, rangesOverlap(0, 3, 3, 7))
	assert.False(t, rangesOverlap(0, 2, 4, 7))
	assert.False(t, rangesOverlap(0, 2, 3, 7))
}
