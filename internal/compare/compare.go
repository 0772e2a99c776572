// Package compare wires the alignment engine (internal/align) and token
// diff (internal/diff) together into the compare operation: flatten two
// block trees, align them, and run the per-pair token diff in bounded
// parallel.
//
// Grounded on original_source/crates/rt-compare/src/worker.rs. The
// original's rayon::par_iter().enumerate()...sort_by_key pattern is
// reproduced with golang.org/x/sync/errgroup: bounded-concurrency
// goroutines tagged with their alignment index, gathered, then sorted back
// into original order before assembly — see SPEC_FULL.md §5.
package compare

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"revengine/internal/align"
	"revengine/internal/diff"
	"revengine/internal/domain"
	"revengine/internal/tokenize"
)

// Config tunes the compare engine. WorkerLimit <= 0 defaults to
// runtime.GOMAXPROCS(0).
type Config struct {
	WorkerLimit int
}

// Engine runs compare operations with a fixed configuration.
type Engine struct {
	cfg Config
}

// NewEngine constructs a compare Engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compare flattens leftBlocks/rightBlocks (trees, pre-order), aligns them,
// and builds a BlockDelta per alignment record with its token diff
// computed in bounded parallel. Deltas are returned in left-traversal
// order regardless of completion order.
func (e *Engine) Compare(ctx context.Context, leftDocID, rightDocID string, leftBlocks, rightBlocks []*domain.Block) (*domain.CompareResult, error) {
	start := time.Now()

	flatLeft := align.Flatten(leftBlocks)
	flatRight := align.Flatten(rightBlocks)
	for _, b := range flatLeft {
		ensureTokens(b)
	}
	for _, b := range flatRight {
		ensureTokens(b)
	}

	alignments := align.Align(flatLeft, flatRight)

	limit := e.cfg.WorkerLimit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	type indexed struct {
		index int
		delta domain.BlockDelta
	}
	results := make([]indexed, len(alignments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, a := range alignments {
		i, a := i, a
		g.Go(func() error {
			results[i] = indexed{index: i, delta: buildDelta(a, flatLeft, flatRight)}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	deltas := make([]domain.BlockDelta, len(results))
	for i, r := range results {
		deltas[i] = r.delta
	}

	return &domain.CompareResult{
		RunID:      domain.NewID(),
		LeftDocID:  leftDocID,
		RightDocID: rightDocID,
		ElapsedMS:  time.Since(start).Milliseconds(),
		Stats:      computeStats(len(flatLeft), len(flatRight), deltas),
		Deltas:     deltas,
	}, nil
}

func ensureTokens(b *domain.Block) {
	if len(b.Tokens) == 0 && b.CanonicalText != "" {
		b.Tokens = tokenize.Tokenize(b.CanonicalText)
	}
}

func buildDelta(a domain.Alignment, left, right []*domain.Block) domain.BlockDelta {
	delta := domain.BlockDelta{ID: domain.NewID()}

	switch a.Kind {
	case domain.AlignmentInserted:
		rb := right[a.RightIndex]
		ord := a.RightIndex
		delta.Kind = domain.DeltaKindInserted
		delta.RightBlockID = &rb.ID
		delta.RightOrdinal = &ord
	case domain.AlignmentDeleted:
		lb := left[a.LeftIndex]
		ord := a.LeftIndex
		delta.Kind = domain.DeltaKindDeleted
		delta.LeftBlockID = &lb.ID
		delta.LeftOrdinal = &ord
	case domain.AlignmentMatched, domain.AlignmentMoved:
		lb, rb := left[a.LeftIndex], right[a.RightIndex]
		lOrd, rOrd := a.LeftIndex, a.RightIndex
		sim := a.Similarity
		delta.LeftBlockID = &lb.ID
		delta.RightBlockID = &rb.ID
		delta.LeftOrdinal = &lOrd
		delta.RightOrdinal = &rOrd
		delta.SimilarityScore = &sim
		if a.Kind == domain.AlignmentMoved {
			delta.Kind = domain.DeltaKindMoved
			delta.MoveTargetID = &rb.ID
		} else {
			delta.Kind = domain.DeltaKindModified
		}
		if lb.ClauseHash != rb.ClauseHash {
			delta.TokenDiffs = diff.TokenDiff(lb.Tokens, rb.Tokens)
		}
	}
	return delta
}

// computeStats tallies the block-level outcome counts. A Modified delta
// whose token diff carries no actual changes (or was never computed
// because clause hashes matched) is tallied as Unchanged rather than
// Modified.
func computeStats(blocksLeft, blocksRight int, deltas []domain.BlockDelta) domain.CompareStats {
	stats := domain.CompareStats{BlocksLeft: blocksLeft, BlocksRight: blocksRight}
	for _, d := range deltas {
		switch d.Kind {
		case domain.DeltaKindInserted:
			stats.Inserted++
		case domain.DeltaKindDeleted:
			stats.Deleted++
		case domain.DeltaKindMoved:
			stats.Moved++
		case domain.DeltaKindModified:
			if hasRealChange(d.TokenDiffs) {
				stats.Modified++
			} else {
				stats.Unchanged++
			}
		}
	}
	return stats
}

func hasRealChange(diffs []domain.TokenDiff) bool {
	for _, d := range diffs {
		if d.Kind != domain.TokenDiffEqual {
			return true
		}
	}
	return false
}
