// Package tokenize implements the hybrid word+punctuation tokenizer shared
// by alignment similarity scoring and token diffing.
//
// Grounded on original_source/crates/rt-compare/src/tokenize.rs, with
// normalization promoted from a hand-rolled diacritic table to
// golang.org/x/text/unicode/norm (NFD decompose, drop combining marks, NFC
// recompose) per SPEC_FULL.md §8 — except ß, which decomposition alone
// does not expand to "ss", so it stays an explicit override; it is the only
// entry in multiCharOverrides.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"revengine/internal/domain"
)

var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// multiCharOverrides holds normalizations that a mark-removal transform
// cannot produce because the substitution changes the character count.
var multiCharOverrides = map[rune]string{
	'ß': "ss",
}

// Tokenize splits text into an ordered token sequence. Whitespace is never
// emitted. Byte offsets are computed over Unicode scalar values per §4.B.
func Tokenize(text string) []domain.Token {
	runeList := []rune(text)
	var tokens []domain.Token
	i := 0
	byteOffset := 0

	for i < len(runeList) {
		ch := runeList[i]

		if unicode.IsSpace(ch) {
			byteOffset += len(string(ch))
			i++
			continue
		}

		if isPunctuation(ch) {
			text := string(ch)
			tokens = append(tokens, domain.Token{
				Text:       text,
				Kind:       domain.TokenKindPunctuation,
				Normalized: Normalize(text),
				Offset:     byteOffset,
			})
			byteOffset += len(text)
			i++
			continue
		}

		start := i
		startOffset := byteOffset
		for i < len(runeList) && !unicode.IsSpace(runeList[i]) && !isPunctuation(runeList[i]) {
			i++
		}
		word := string(runeList[start:i])
		byteOffset += len(word)
		if word == "" {
			continue
		}

		tokens = append(tokens, domain.Token{
			Text:       word,
			Kind:       classify(word),
			Normalized: Normalize(word),
			Offset:     startOffset,
		})
	}

	return tokens
}

// Normalize lowercases a token and strips diacritics, per §4.B's guarantee
// that case/diacritic-only differences collapse to identical normalized
// forms.
func Normalize(token string) string {
	var b strings.Builder
	for _, r := range token {
		if repl, ok := multiCharOverrides[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	folded, _, err := transform.String(diacriticFold, b.String())
	if err != nil {
		folded = b.String()
	}
	return strings.ToLower(folded)
}

var punctuationSet = map[rune]bool{
	'.': true, ',': true, ';': true, ':': true, '!': true, '?': true,
	'"': true, '\'': true, '(': true, ')': true, '[': true, ']': true,
	'{': true, '}': true, '-': true, '–': true, '—': true, '/': true,
	'\\': true, '@': true, '#': true, '%': true, '^': true, '&': true,
	'*': true, '+': true, '=': true, '<': true, '>': true, '|': true,
	'~': true, '`': true,
	'‘': true, '’': true, '“': true, '”': true,
}

func isPunctuation(ch rune) bool {
	return punctuationSet[ch]
}

func classify(word string) domain.TokenKind {
	if isNumber(word) {
		return domain.TokenKindNumber
	}
	if isDefinedTerm(word) {
		return domain.TokenKindDefinedTerm
	}
	return domain.TokenKindWord
}

// isNumber implements §4.B's Number rule: optional leading sign, at least
// one digit, optional interior '.'/',' separators, and an optional
// alphabetic suffix that must be exactly one of st/nd/rd/th (case
// insensitive).
func isNumber(word string) bool {
	runeList := []rune(word)
	if len(runeList) == 0 {
		return false
	}
	i := 0
	if runeList[0] == '+' || runeList[0] == '-' {
		i++
	}
	hasDigit := false
	suffixStart := -1
	for ; i < len(runeList); i++ {
		ch := runeList[i]
		switch {
		case ch >= '0' && ch <= '9':
			if suffixStart != -1 {
				// digits after an alphabetic run started: not a valid suffix shape.
				return false
			}
			hasDigit = true
		case ch == '.' || ch == ',':
			if suffixStart != -1 {
				return false
			}
		case unicode.IsLetter(ch):
			if suffixStart == -1 {
				suffixStart = i
			}
		default:
			return false
		}
	}
	if !hasDigit {
		return false
	}
	if suffixStart == -1 {
		return true
	}
	suffix := strings.ToLower(string(runeList[suffixStart:]))
	switch suffix {
	case "st", "nd", "rd", "th":
		return true
	default:
		return false
	}
}

// isDefinedTerm implements §4.B's DefinedTerm rule: first letter uppercase
// and either Title Case (all remaining letters lowercase) or ALL-CAPS (all
// remaining letters uppercase, length >= 2).
func isDefinedTerm(word string) bool {
	runeList := []rune(word)
	if len(runeList) == 0 {
		return false
	}
	first := runeList[0]
	if !unicode.IsUpper(first) {
		return false
	}
	rest := runeList[1:]
	if len(rest) == 0 {
		return false
	}
	allLower := true
	allUpper := true
	for _, r := range rest {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsLower(r) {
			allLower = false
		}
		if !unicode.IsUpper(r) {
			allUpper = false
		}
	}
	return allLower || allUpper
}
