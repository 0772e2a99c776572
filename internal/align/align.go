// Package align implements the four-pass block alignment engine: exact
// structural-path match, anchor-signature match, multiset-Jaccard
// similarity scoring, and LCS fallback, with move reclassification and a
// deterministic left-traversal-order output.
//
// Grounded on original_source/crates/rt-compare/src/align.rs, adjusted to
// match spec.md §4.C's tie-break rules exactly (pass 1 > 2 > 3 > 4; within
// pass 3, higher similarity wins, ties broken by earlier left then earlier
// right index — the original's sort is stable but does not document this
// tie-break explicitly).
package align

import (
	"sort"

	"revengine/internal/domain"
	"revengine/internal/tokenize"
)

const (
	// SimilarityThreshold is the minimum multiset Jaccard score for a pass-3
	// or pass-4 candidate pair to be admitted.
	SimilarityThreshold = 0.7
	// MoveThreshold is the minimum similarity for a path-differing pass
	// 3/4 match to be reclassified as Moved. A pass-2 anchor match whose
	// path differs is Moved regardless of similarity.
	MoveThreshold = 0.85
)

type pair struct {
	left, right int
	similarity  float64
	isMove      bool
}

// Align aligns two flat, pre-order-flattened block lists and returns the
// ordered alignment stream described by spec.md §4.C.
func Align(left, right []*domain.Block) []domain.Alignment {
	leftMatched := make(map[int]bool)
	rightMatched := make(map[int]bool)
	var pairs []pair

	// Pass 1: exact structural_path match.
	rightByPath := make(map[string]int, len(right))
	for ri, b := range right {
		rightByPath[b.StructuralPath] = ri
	}
	for li, lb := range left {
		ri, ok := rightByPath[lb.StructuralPath]
		if !ok || rightMatched[ri] {
			continue
		}
		sim := Similarity(lb, right[ri])
		pairs = append(pairs, pair{li, ri, sim, false})
		leftMatched[li] = true
		rightMatched[ri] = true
	}

	// Pass 2: anchor_signature match among still-unmatched blocks.
	rightByAnchor := make(map[string]int)
	for ri, b := range right {
		if rightMatched[ri] {
			continue
		}
		rightByAnchor[b.AnchorSignature] = ri
	}
	for li, lb := range left {
		if leftMatched[li] {
			continue
		}
		ri, ok := rightByAnchor[lb.AnchorSignature]
		if !ok || rightMatched[ri] {
			continue
		}
		sim := Similarity(lb, right[ri])
		isMove := lb.StructuralPath != right[ri].StructuralPath
		pairs = append(pairs, pair{li, ri, sim, isMove})
		leftMatched[li] = true
		rightMatched[ri] = true
	}

	// Pass 3: similarity scoring over remaining unmatched blocks, greedy
	// descending-similarity assignment with a deterministic tie-break.
	type candidate struct {
		li, ri int
		sim    float64
	}
	var candidates []candidate
	for li, lb := range left {
		if leftMatched[li] {
			continue
		}
		for ri, rb := range right {
			if rightMatched[ri] {
				continue
			}
			sim := Similarity(lb, rb)
			if sim >= SimilarityThreshold {
				candidates = append(candidates, candidate{li, ri, sim})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		if candidates[i].li != candidates[j].li {
			return candidates[i].li < candidates[j].li
		}
		return candidates[i].ri < candidates[j].ri
	})
	for _, c := range candidates {
		if leftMatched[c.li] || rightMatched[c.ri] {
			continue
		}
		isMove := left[c.li].StructuralPath != right[c.ri].StructuralPath && c.sim >= MoveThreshold
		pairs = append(pairs, pair{c.li, c.ri, c.sim, isMove})
		leftMatched[c.li] = true
		rightMatched[c.ri] = true
	}

	// Pass 4: LCS over canonical_text equality for anything still unmatched.
	var remainingLeft, remainingRight []int
	for li := range left {
		if !leftMatched[li] {
			remainingLeft = append(remainingLeft, li)
		}
	}
	for ri := range right {
		if !rightMatched[ri] {
			remainingRight = append(remainingRight, ri)
		}
	}
	for _, lcsPair := range lcsAlign(remainingLeft, remainingRight, left, right) {
		li, ri := lcsPair[0], lcsPair[1]
		sim := Similarity(left[li], right[ri])
		if sim < SimilarityThreshold {
			continue
		}
		isMove := left[li].StructuralPath != right[ri].StructuralPath && sim >= MoveThreshold
		pairs = append(pairs, pair{li, ri, sim, isMove})
		leftMatched[li] = true
		rightMatched[ri] = true
	}

	return assemble(left, right, pairs, rightMatched)
}

func assemble(left, right []*domain.Block, pairs []pair, rightMatched map[int]bool) []domain.Alignment {
	pairByLeft := make(map[int]pair, len(pairs))
	for _, p := range pairs {
		pairByLeft[p.left] = p
	}

	rightEmitted := make(map[int]bool)
	var result []domain.Alignment

	emitInsertionsBefore := func(beforeRi int) {
		for ri := 0; ri < beforeRi; ri++ {
			if !rightEmitted[ri] && !rightMatched[ri] {
				result = append(result, domain.Alignment{Kind: domain.AlignmentInserted, LeftIndex: -1, RightIndex: ri})
				rightEmitted[ri] = true
			}
		}
	}

	for li := range left {
		p, ok := pairByLeft[li]
		if !ok {
			result = append(result, domain.Alignment{Kind: domain.AlignmentDeleted, LeftIndex: li, RightIndex: -1})
			continue
		}
		emitInsertionsBefore(p.right)
		rightEmitted[p.right] = true
		kind := domain.AlignmentMatched
		if p.isMove {
			kind = domain.AlignmentMoved
		}
		result = append(result, domain.Alignment{Kind: kind, LeftIndex: li, RightIndex: p.right, Similarity: p.similarity})
	}

	for ri := range right {
		if !rightEmitted[ri] && !rightMatched[ri] {
			result = append(result, domain.Alignment{Kind: domain.AlignmentInserted, LeftIndex: -1, RightIndex: ri})
		}
	}

	return result
}

// Similarity computes the multiset Jaccard similarity between two blocks'
// normalized, non-whitespace token sets. Two empty sets score 1.0; one
// empty and one non-empty scores 0.0.
func Similarity(left, right *domain.Block) float64 {
	leftTokens := tokenSet(left)
	rightTokens := tokenSet(right)

	if len(leftTokens) == 0 && len(rightTokens) == 0 {
		return 1.0
	}
	if len(leftTokens) == 0 || len(rightTokens) == 0 {
		return 0.0
	}

	leftCounts := make(map[string]int, len(leftTokens))
	for _, t := range leftTokens {
		leftCounts[t]++
	}
	rightCounts := make(map[string]int, len(rightTokens))
	for _, t := range rightTokens {
		rightCounts[t]++
	}

	intersection := 0
	for tok, lc := range leftCounts {
		if rc, ok := rightCounts[tok]; ok {
			if rc < lc {
				intersection += rc
			} else {
				intersection += lc
			}
		}
	}

	total := len(leftTokens) + len(rightTokens) - intersection
	if total == 0 {
		return 1.0
	}
	return float64(intersection) / float64(total)
}

func tokenSet(b *domain.Block) []string {
	var tokens []domain.Token
	if len(b.Tokens) > 0 {
		tokens = b.Tokens
	} else {
		tokens = tokenize.Tokenize(b.CanonicalText)
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == domain.TokenKindWhitespace {
			continue
		}
		out = append(out, t.Normalized)
	}
	return out
}

// lcsAlign computes a longest common subsequence over leftIdx/rightIdx
// using canonical_text equality as the match predicate, returning
// [left_index, right_index] pairs in left-to-right order.
func lcsAlign(leftIdx, rightIdx []int, left, right []*domain.Block) [][2]int {
	n, m := len(leftIdx), len(rightIdx)
	if n == 0 || m == 0 {
		return nil
	}

	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			li, ri := leftIdx[i-1], rightIdx[j-1]
			if left[li].CanonicalText == right[ri].CanonicalText {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	var pairs [][2]int
	i, j := n, m
	for i > 0 && j > 0 {
		li, ri := leftIdx[i-1], rightIdx[j-1]
		switch {
		case left[li].CanonicalText == right[ri].CanonicalText:
			pairs = append(pairs, [2]int{li, ri})
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	for a, b := 0, len(pairs)-1; a < b; a, b = a+1, b-1 {
		pairs[a], pairs[b] = pairs[b], pairs[a]
	}
	return pairs
}
