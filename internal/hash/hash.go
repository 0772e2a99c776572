// Package hash computes the two deterministic digests every Block carries:
// an anchor signature (stable through minor trailing edits) and a full-text
// clause hash (a cheap "is anything different" probe).
//
// Grounded on original_source/crates/rt-core/src/anchor.rs. SHA-256 is used
// directly via crypto/sha256 rather than through a higher-level library:
// the original itself reaches for a plain hashing primitive with no
// wrapping crate, and there is no anchor-hashing library anywhere in the
// retrieval pack to wire in its place.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// anchorPrefixRunes is the number of leading Unicode scalar values of
// canonical_text folded into the anchor signature.
const anchorPrefixRunes = 128

// Signature computes block_type || "|" || structural_path || "|" || first
// 128 runes of canonicalText, then returns its lowercase hex SHA-256.
func Signature(blockType, structuralPath, canonicalText string) string {
	runes := []rune(canonicalText)
	if len(runes) > anchorPrefixRunes {
		runes = runes[:anchorPrefixRunes]
	}
	input := blockType + "|" + structuralPath + "|" + string(runes)
	return hexSHA256(input)
}

// ClauseHash computes the SHA-256 of the full canonical text.
func ClauseHash(canonicalText string) string {
	return hexSHA256(canonicalText)
}

func hexSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
