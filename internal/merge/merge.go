package merge

import (
	"revengine/internal/align"
	"revengine/internal/diff"
	"revengine/internal/domain"
	"revengine/internal/tokenize"
)

// Config names the reviewer labels attached to base-side and incoming-side
// deltas. Defaults to "base"/"incoming" when left zero-valued.
type Config struct {
	BaseReviewer     string
	IncomingReviewer string
}

// Engine merges two block sequences and detects conflicts between
// concurrent edits.
//
// Grounded on rt-merge/src/merge.rs's MergeEngine.
type Engine struct {
	cfg Config
}

// NewEngine constructs a merge Engine, defaulting reviewer labels to
// "base"/"incoming".
func NewEngine(cfg Config) *Engine {
	if cfg.BaseReviewer == "" {
		cfg.BaseReviewer = "base"
	}
	if cfg.IncomingReviewer == "" {
		cfg.IncomingReviewer = "incoming"
	}
	return &Engine{cfg: cfg}
}

// Merge aligns baseBlocks and incomingBlocks, converts token-level diffs on
// every matched or moved pair into per-side MergeDeltas, and detects
// conflicts between the two delta sets.
//
// Algorithm (mirrors rt-merge/src/merge.rs's MergeEngine::merge):
//  1. Align the two flattened block trees.
//  2. For each Matched/Moved pair whose clause hash differs, diff tokens and
//     convert the diff groups into base-side and incoming-side deltas.
//  3. Detect conflicts between the two delta sets for that block.
//  4. Pure insertions and deletions auto-resolve; matched/moved pairs with
//     no conflicting deltas also auto-resolve.
func (e *Engine) Merge(baseDocID, incomingDocID string, baseBlocks, incomingBlocks []*domain.Block) *domain.MergeResult {
	flatBase := align.Flatten(baseBlocks)
	flatIncoming := align.Flatten(incomingBlocks)
	for _, b := range flatBase {
		ensureTokens(b)
	}
	for _, b := range flatIncoming {
		ensureTokens(b)
	}

	alignments := align.Align(flatBase, flatIncoming)

	var allConflicts []*domain.MergeConflict
	var allDeltas []domain.MergeDelta
	autoResolved := 0

	for _, a := range alignments {
		switch a.Kind {
		case domain.AlignmentMatched, domain.AlignmentMoved:
			baseBlock := flatBase[a.LeftIndex]
			incBlock := flatIncoming[a.RightIndex]

			if baseBlock.ClauseHash == incBlock.ClauseHash {
				autoResolved++
				continue
			}

			diffs := diff.TokenDiff(baseBlock.Tokens, incBlock.Tokens)
			baseDeltas := diffsToBaseDeltas(diffs, baseBlock.ID, e.cfg.BaseReviewer)
			incomingDeltas := diffsToIncomingDeltas(diffs, baseBlock.ID, e.cfg.IncomingReviewer)
			allDeltas = append(allDeltas, baseDeltas...)
			allDeltas = append(allDeltas, incomingDeltas...)

			conflicts := detectConflicts(baseDeltas, incomingDeltas)
			if len(conflicts) == 0 {
				autoResolved++
			} else {
				allConflicts = append(allConflicts, conflicts...)
			}

		case domain.AlignmentInserted, domain.AlignmentDeleted:
			autoResolved++
		}
	}

	pendingReview := 0
	for _, c := range allConflicts {
		if c.Resolution == domain.ResolutionPending {
			pendingReview++
		}
	}

	return &domain.MergeResult{
		MergeID:       domain.NewID(),
		BaseDocID:     baseDocID,
		IncomingDocID: incomingDocID,
		OutputDocID:   nil,
		Conflicts:     allConflicts,
		Deltas:        allDeltas,
		AutoResolved:  autoResolved,
		PendingReview: pendingReview,
	}
}

// ResolveConflict applies resolution to conflict after validating the
// resolution state transition.
func ResolveConflict(conflict *domain.MergeConflict, resolution domain.ConflictResolution) error {
	if err := domain.ValidateResolutionTransition(conflict.Resolution, resolution); err != nil {
		return err
	}
	conflict.Resolution = resolution
	return nil
}

func ensureTokens(b *domain.Block) {
	if len(b.Tokens) == 0 && b.CanonicalText != "" {
		b.Tokens = tokenize.Tokenize(b.CanonicalText)
	}
}

// diffsToBaseDeltas converts Deleted/Substituted diff groups into base-side
// MergeDeltas, advancing a running base-token cursor across every group
// (Equal groups advance the cursor without emitting a delta).
//
// Grounded on rt-merge/src/merge.rs's diffs_to_base_deltas.
func diffsToBaseDeltas(diffs []domain.TokenDiff, blockID, reviewer string) []domain.MergeDelta {
	layerID := domain.NewID()
	var deltas []domain.MergeDelta
	cursor := 0

	for _, d := range diffs {
		n := len(d.LeftTokens)
		switch d.Kind {
		case domain.TokenDiffEqual:
			cursor += n
		case domain.TokenDiffDeleted, domain.TokenDiffSubstituted:
			if n > 0 {
				kind := domain.MergeDeltaDelete
				if d.Kind == domain.TokenDiffSubstituted {
					kind = domain.MergeDeltaModify
				}
				deltas = append(deltas, domain.MergeDelta{
					ID:         domain.NewID(),
					BlockID:    blockID,
					Side:       domain.MergeSideBase,
					Kind:       kind,
					TokenStart: cursor,
					TokenEnd:   cursor + n - 1,
					Payload:    map[string]string{"text": joinTokens(d.LeftTokens)},
					Reviewer:   reviewer,
					Layer:      layerID,
				})
				cursor += n
			}
		case domain.TokenDiffInserted:
			// Insertions don't consume base tokens.
		}
	}

	return deltas
}

// diffsToIncomingDeltas converts Inserted/Substituted diff groups into
// incoming-side MergeDeltas. The base-token cursor is tracked alongside so
// insert/modify positions can be compared against base-side deltas for
// overlap detection.
//
// Grounded on rt-merge/src/merge.rs's diffs_to_incoming_deltas.
func diffsToIncomingDeltas(diffs []domain.TokenDiff, blockID, reviewer string) []domain.MergeDelta {
	layerID := domain.NewID()
	var deltas []domain.MergeDelta
	cursor := 0

	for _, d := range diffs {
		leftN := len(d.LeftTokens)
		rightN := len(d.RightTokens)
		switch d.Kind {
		case domain.TokenDiffEqual, domain.TokenDiffDeleted:
			cursor += leftN
		case domain.TokenDiffInserted:
			if rightN > 0 {
				deltas = append(deltas, domain.MergeDelta{
					ID:         domain.NewID(),
					BlockID:    blockID,
					Side:       domain.MergeSideIncoming,
					Kind:       domain.MergeDeltaInsert,
					TokenStart: cursor,
					TokenEnd:   cursor,
					Payload:    map[string]string{"text": joinTokens(d.RightTokens)},
					Reviewer:   reviewer,
					Layer:      layerID,
				})
			}
		case domain.TokenDiffSubstituted:
			switch {
			case leftN > 0 && rightN > 0:
				deltas = append(deltas, domain.MergeDelta{
					ID:         domain.NewID(),
					BlockID:    blockID,
					Side:       domain.MergeSideIncoming,
					Kind:       domain.MergeDeltaModify,
					TokenStart: cursor,
					TokenEnd:   cursor + leftN - 1,
					Payload:    map[string]string{"text": joinTokens(d.RightTokens)},
					Reviewer:   reviewer,
					Layer:      layerID,
				})
				cursor += leftN
			case leftN == 0 && rightN > 0:
				deltas = append(deltas, domain.MergeDelta{
					ID:         domain.NewID(),
					BlockID:    blockID,
					Side:       domain.MergeSideIncoming,
					Kind:       domain.MergeDeltaInsert,
					TokenStart: cursor,
					TokenEnd:   cursor,
					Payload:    map[string]string{"text": joinTokens(d.RightTokens)},
					Reviewer:   reviewer,
					Layer:      layerID,
				})
			default:
				cursor += leftN
			}
		}
	}

	return deltas
}

func joinTokens(tokens []domain.Token) string {
	s := ""
	for i, t := range tokens {
		if i > 0 {
			s += " "
		}
		s += t.Text
	}
	return s
}
