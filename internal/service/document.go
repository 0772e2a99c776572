// Package service orchestrates the persistence layer (internal/repository)
// and the pure algorithmic engines (internal/compare, internal/merge,
// internal/workflow) into the operations SPEC_FULL.md's HTTP API exposes.
package service

import (
	"context"
	"time"

	"revengine/internal/domain"
	"revengine/internal/repository"
)

// DocumentService manages Document and Block persistence.
type DocumentService struct {
	documents repository.DocumentRepo
	blocks    repository.BlockRepo
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(documents repository.DocumentRepo, blocks repository.BlockRepo) *DocumentService {
	return &DocumentService{documents: documents, blocks: blocks}
}

// Ingest registers a new Document and its block tree. The caller supplies
// blocks already split out and hashed via domain.NewBlock; ingestion from
// word-processor formats is out of scope (SPEC_FULL.md Non-goals).
func (s *DocumentService) Ingest(ctx context.Context, name, sourcePath string, docType domain.DocumentType, schemaVersion, normalizationVersion, hashContractVersion int, metadata []byte, roots []*domain.Block) (*domain.Document, error) {
	if !docType.Valid() {
		return nil, domain.ErrValidation("unknown document_type %q", docType)
	}

	doc := &domain.Document{
		ID:                   domain.NewID(),
		Name:                 name,
		SourcePath:           sourcePath,
		DocType:              docType,
		SchemaVersion:        schemaVersion,
		NormalizationVersion: normalizationVersion,
		HashContractVersion:  hashContractVersion,
		IngestedAt:           time.Now().UTC().Format(time.RFC3339),
		Metadata:             metadata,
	}

	for _, b := range roots {
		if err := verifyTree(b); err != nil {
			return nil, err
		}
	}

	var assignDocID func(bs []*domain.Block)
	assignDocID = func(bs []*domain.Block) {
		for _, b := range bs {
			b.DocumentID = doc.ID
			assignDocID(b.Children)
		}
	}
	assignDocID(roots)

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.blocks.ReplaceTree(ctx, doc.ID, roots); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns a Document by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.documents.Get(ctx, id)
}

// List returns a page of Documents.
func (s *DocumentService) List(ctx context.Context, page domain.PageRequest) ([]*domain.Document, string, error) {
	return s.documents.List(ctx, page)
}

// Blocks returns the block tree for a Document.
func (s *DocumentService) Blocks(ctx context.Context, documentID string) ([]*domain.Block, error) {
	return s.blocks.Tree(ctx, documentID)
}

// verifyTree recursively checks every block's stored clause_hash against
// hash(canonical_text), per §7's load-time HashMismatch check. Used both at
// ingest (write time) and by CompareService/MergeService before a loaded
// tree reaches the alignment/diff/merge engines (read time).
func verifyTree(b *domain.Block) error {
	if err := b.VerifyClauseHash(); err != nil {
		return err
	}
	for _, c := range b.Children {
		if err := verifyTree(c); err != nil {
			return err
		}
	}
	return nil
}
