package domain

import (
	"fmt"

	"revengine/internal/hash"
)

// BlockType classifies the structural role of a Block within its document
// tree. It is a closed sum type serialized as lowercase snake_case.
type BlockType string

const (
	BlockTypeSection   BlockType = "section"
	BlockTypeClause    BlockType = "clause"
	BlockTypeSubclause BlockType = "subclause"
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeTable     BlockType = "table"
	BlockTypeTableRow  BlockType = "table_row"
	BlockTypeTableCell BlockType = "table_cell"
)

// Valid reports whether b is one of the defined BlockType constants.
func (b BlockType) Valid() bool {
	switch b {
	case BlockTypeSection, BlockTypeClause, BlockTypeSubclause, BlockTypeParagraph,
		BlockTypeTable, BlockTypeTableRow, BlockTypeTableCell:
		return true
	}
	return false
}

// ParseBlockType validates a wire-format string into a BlockType. Unlike the
// system this spec was distilled from, an unrecognized value is rejected
// rather than silently coerced to a default.
func ParseBlockType(s string) (BlockType, error) {
	bt := BlockType(s)
	if !bt.Valid() {
		return "", ErrValidation("unknown block_type %q", s)
	}
	return bt, nil
}

// DocumentType classifies a Document's role in the revision pipeline.
type DocumentType string

const (
	DocumentTypeOriginal DocumentType = "original"
	DocumentTypeRedline  DocumentType = "redline"
	DocumentTypeMerged   DocumentType = "merged"
	DocumentTypeSnapshot DocumentType = "snapshot"
)

// Valid reports whether d is one of the defined DocumentType constants.
func (d DocumentType) Valid() bool {
	switch d {
	case DocumentTypeOriginal, DocumentTypeRedline, DocumentTypeMerged, DocumentTypeSnapshot:
		return true
	}
	return false
}

// ParseDocumentType validates a wire-format string into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	dt := DocumentType(s)
	if !dt.Valid() {
		return "", ErrValidation("unknown document_type %q", s)
	}
	return dt, nil
}

// Document is the root-of-tree record that every Block belongs to. Ingestion
// from word-processor formats is out of scope; the caller supplies blocks
// already split out, and Document exists so CompareResult/MergeResult have a
// concrete id to reference.
type Document struct {
	ID                   string
	Name                 string
	SourcePath           string
	DocType              DocumentType
	SchemaVersion        int
	NormalizationVersion int
	HashContractVersion  int
	IngestedAt           string // ISO-8601
	Metadata             []byte // opaque JSON, may be nil
}

// TokenKind classifies a Token for diffing and similarity purposes.
type TokenKind string

const (
	TokenKindWord        TokenKind = "word"
	TokenKindNumber      TokenKind = "number"
	TokenKindPunctuation TokenKind = "punctuation"
	TokenKindWhitespace  TokenKind = "whitespace"
	TokenKindDefinedTerm TokenKind = "defined_term"
	TokenKindPartyRef    TokenKind = "party_ref"
	TokenKindDateRef     TokenKind = "date_ref"
)

// Valid reports whether k is one of the defined TokenKind constants.
func (k TokenKind) Valid() bool {
	switch k {
	case TokenKindWord, TokenKindNumber, TokenKindPunctuation, TokenKindWhitespace,
		TokenKindDefinedTerm, TokenKindPartyRef, TokenKindDateRef:
		return true
	}
	return false
}

// Token is the unit of diff and similarity scoring.
type Token struct {
	Text       string // display form
	Kind       TokenKind
	Normalized string // lowercased, diacritics stripped
	Offset     int    // byte offset into parent canonical_text
}

// RunFormatting carries typographic attributes of a Run. All fields default
// to their zero value (false / nil), matching "no formatting applied".
type RunFormatting struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	FontSize      *float64
	Color         *string
}

// Run is a formatted span over a Block's display_text. Runs are carried
// through untouched by hashing and diffing (§4.A/§4.D operate on
// canonical_text only) and exist so a UI can render the original typography.
type Run struct {
	Text       string
	Formatting RunFormatting
}

// ChangeType classifies a TrackedChange.
type ChangeType string

const (
	ChangeTypeInsert       ChangeType = "insert"
	ChangeTypeDelete       ChangeType = "delete"
	ChangeTypeFormatChange ChangeType = "format_change"
)

// Valid reports whether c is one of the defined ChangeType constants.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeTypeInsert, ChangeTypeDelete, ChangeTypeFormatChange:
		return true
	}
	return false
}

// TrackedChange records provenance of a redline edit to a Run.
type TrackedChange struct {
	Author     string
	Date       string // ISO-8601
	ChangeType ChangeType
	Original   *string // text prior to the change, nil for pure inserts
}

// FormattingMeta carries word-processor-level metadata for a Block that is
// not used for hashing or diffing but is persisted and returned for redline
// rendering.
type FormattingMeta struct {
	StyleName      string
	NumberingID    string
	NumberingLevel int
	IsRedline      bool
	TrackedChange  *TrackedChange
}

// Block is the central entity shared by alignment, diff, merge, and
// workflow: a node in a document's structural tree.
type Block struct {
	ID              string
	DocumentID      string
	ParentID        *string
	BlockType       BlockType
	Level           int
	StructuralPath  string
	AnchorSignature string
	ClauseHash      string
	CanonicalText   string // whitespace-normalized, used for hashing/diffing
	DisplayText     string // original typography preserved
	FormattingMeta  FormattingMeta
	PositionIndex   int
	Tokens          []Token // may be empty; tokenized on demand
	Runs            []Run
	Children        []*Block
}

// NewBlock constructs a Block, computing its anchor signature and clause
// hash from canonicalText. Tokens and runs start empty; FormattingMeta
// starts at its zero value.
func NewBlock(documentID string, blockType BlockType, structuralPath, canonicalText, displayText string, parentID *string, positionIndex int) (*Block, error) {
	if !blockType.Valid() {
		return nil, ErrValidation("unknown block_type %q", blockType)
	}
	if structuralPath == "" {
		return nil, ErrValidation("structural_path must not be empty")
	}
	return &Block{
		ID:              NewID(),
		DocumentID:      documentID,
		ParentID:        parentID,
		BlockType:       blockType,
		StructuralPath:  structuralPath,
		AnchorSignature: hash.Signature(string(blockType), structuralPath, canonicalText),
		ClauseHash:      hash.ClauseHash(canonicalText),
		CanonicalText:   canonicalText,
		DisplayText:     displayText,
		PositionIndex:   positionIndex,
		Tokens:          nil,
		Runs:            nil,
	}, nil
}

// VerifyClauseHash returns a HashMismatchError if b.ClauseHash disagrees with
// hash(b.CanonicalText), satisfying the load-time invariant from §3.
func (b *Block) VerifyClauseHash() error {
	want := hash.ClauseHash(b.CanonicalText)
	if b.ClauseHash != want {
		return ErrHashMismatch(b.ID, want, b.ClauseHash)
	}
	return nil
}

// String implements fmt.Stringer for debugging/log output.
func (b *Block) String() string {
	return fmt.Sprintf("Block{id=%s type=%s path=%s}", b.ID, b.BlockType, b.StructuralPath)
}
