package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"revengine/internal/domain"
)

func texts(tokens []domain.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize_BasicWordSplitting(t *testing.T) {
	tokens := Tokenize("The Borrower shall repay")
	assert.Equal(t, []string{"The", "Borrower", "shall", "repay"}, texts(tokens))
}

func TestTokenize_PunctuationAsIndependentTokens(t *testing.T) {
	tokens := Tokenize("The Borrower shall, upon request,")
	assert.Equal(t, []string{"The", "Borrower", "shall", ",", "upon", "request", ","}, texts(tokens))
}

func TestTokenize_PunctuationKinds(t *testing.T) {
	tokens := Tokenize("hello, world.")
	assert.Equal(t, domain.TokenKindWord, tokens[0].Kind)
	assert.Equal(t, domain.TokenKindPunctuation, tokens[1].Kind)
	assert.Equal(t, domain.TokenKindWord, tokens[2].Kind)
	assert.Equal(t, domain.TokenKindPunctuation, tokens[3].Kind)
}

func TestTokenize_NumberTokens(t *testing.T) {
	tokens := Tokenize("pay 100 dollars")
	assert.Equal(t, domain.TokenKindNumber, tokens[1].Kind)
	assert.Equal(t, "100", tokens[1].Text)
}

func TestTokenize_OrdinalNumberTokens(t *testing.T) {
	tokens := Tokenize("1st 2nd 3rd 4th")
	for _, tok := range tokens {
		assert.Equal(t, domain.TokenKindNumber, tok.Kind, tok.Text)
	}
}

func TestTokenize_DefinedTermDetection(t *testing.T) {
	tokens := Tokenize("the Borrower shall LESSEE")
	assert.Equal(t, domain.TokenKindWord, tokens[0].Kind)
	assert.Equal(t, domain.TokenKindDefinedTerm, tokens[1].Kind)
	assert.Equal(t, domain.TokenKindWord, tokens[2].Kind)
	assert.Equal(t, domain.TokenKindDefinedTerm, tokens[3].Kind)
}

func TestTokenize_ByteOffsets(t *testing.T) {
	tokens := Tokenize("ab cd")
	assert.Equal(t, 0, tokens[0].Offset)
	assert.Equal(t, 3, tokens[1].Offset)
}

func TestTokenize_UnicodeByteOffsets(t *testing.T) {
	tokens := Tokenize("café bar")
	assert.Equal(t, 0, tokens[0].Offset)
	assert.Equal(t, 6, tokens[1].Offset)
}

func TestNormalize_LowercaseAndDiacritics(t *testing.T) {
	assert.Equal(t, "borrower", Normalize("Borrower"))
	assert.Equal(t, "resume", Normalize("résumé"))
	assert.Equal(t, "angstrom", Normalize("Ångström"))
	assert.Equal(t, "strasse", Normalize("Straße"))
}

func TestTokenize_EmptyAndWhitespace(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \t\n  "))
}

func TestTokenize_EmDashSplitsThreeTokens(t *testing.T) {
	tokens := Tokenize("term—definition")
	assert.Len(t, tokens, 3)
	assert.Equal(t, domain.TokenKindPunctuation, tokens[1].Kind)
}

func TestTokenize_ParenthesizedContent(t *testing.T) {
	tokens := Tokenize("(a) the Lender")
	assert.Equal(t, []string{"(", "a", ")", "the", "Lender"}, texts(tokens))
}
