// Package merge wires the alignment engine and token diff into the
// three-way merge operation: align base/incoming blocks, convert token
// diffs into per-side MergeDeltas, and detect conflicts between them.
//
// Grounded on original_source/crates/rt-merge/src/{merge,conflict,layer}.rs.
package merge

import "revengine/internal/domain"

// detectConflicts finds collisions between baseDeltas and incomingDeltas
// scoped to the same block.
//
//   - delete vs. non-delete on the other side -> DeleteModify, regardless
//     of token-range overlap.
//   - non-delete vs. non-delete with overlapping inclusive token ranges ->
//     ContentOverlap.
//   - delete vs. delete is never a conflict: both sides agree the range is
//     gone.
//
// Grounded on rt-merge/src/conflict.rs's detect_conflicts.
func detectConflicts(baseDeltas, incomingDeltas []domain.MergeDelta) []*domain.MergeConflict {
	var conflicts []*domain.MergeConflict

	for _, bd := range baseDeltas {
		for _, id := range incomingDeltas {
			if bd.BlockID != id.BlockID {
				continue
			}

			baseIsDelete := bd.Kind == domain.MergeDeltaDelete
			incIsDelete := id.Kind == domain.MergeDeltaDelete

			if baseIsDelete && !incIsDelete {
				conflicts = append(conflicts, &domain.MergeConflict{
					ID:              domain.NewID(),
					BlockID:         bd.BlockID,
					ConflictType:    domain.ConflictTypeDeleteModify,
					BaseContent:     nil,
					IncomingContent: payloadText(id.Payload),
					Resolution:      domain.ResolutionPending,
				})
				continue
			}

			if incIsDelete && !baseIsDelete {
				conflicts = append(conflicts, &domain.MergeConflict{
					ID:              domain.NewID(),
					BlockID:         bd.BlockID,
					ConflictType:    domain.ConflictTypeDeleteModify,
					BaseContent:     payloadText(bd.Payload),
					IncomingContent: nil,
					Resolution:      domain.ResolutionPending,
				})
				continue
			}

			if !baseIsDelete && !incIsDelete && rangesOverlap(bd.TokenStart, bd.TokenEnd, id.TokenStart, id.TokenEnd) {
				conflicts = append(conflicts, &domain.MergeConflict{
					ID:              domain.NewID(),
					BlockID:         bd.BlockID,
					ConflictType:    domain.ConflictTypeContentOverlap,
					BaseContent:     payloadText(bd.Payload),
					IncomingContent: payloadText(id.Payload),
					Resolution:      domain.ResolutionPending,
				})
			}
		}
	}

	return conflicts
}

// rangesOverlap reports whether the two inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one index.
func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart <= bEnd && bStart <= aEnd
}

func payloadText(payload map[string]string) *string {
	if payload == nil {
		return nil
	}
	text, ok := payload["text"]
	if !ok {
		return nil
	}
	return &text
}
