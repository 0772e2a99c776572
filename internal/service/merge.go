package service

import (
	"context"

	"revengine/internal/domain"
	"revengine/internal/merge"
	"revengine/internal/repository"
)

// MergeService runs and persists three-way merges between a base and
// incoming document, and mediates conflict resolution.
type MergeService struct {
	blocks repository.BlockRepo
	merges repository.MergeRepo
	engine *merge.Engine
}

// NewMergeService constructs a MergeService.
func NewMergeService(blocks repository.BlockRepo, merges repository.MergeRepo, engine *merge.Engine) *MergeService {
	return &MergeService{blocks: blocks, merges: merges, engine: engine}
}

// Run loads both documents' block trees, merges them, persists the result,
// and returns it.
func (s *MergeService) Run(ctx context.Context, baseDocID, incomingDocID string) (*domain.MergeResult, error) {
	base, err := s.blocks.Tree(ctx, baseDocID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.blocks.Tree(ctx, incomingDocID)
	if err != nil {
		return nil, err
	}

	for _, roots := range [][]*domain.Block{base, incoming} {
		for _, b := range roots {
			if err := verifyTree(b); err != nil {
				return nil, err
			}
		}
	}

	result := s.engine.Merge(baseDocID, incomingDocID, base, incoming)

	if err := s.merges.Save(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a previously persisted merge run by id.
func (s *MergeService) Get(ctx context.Context, mergeID string) (*domain.MergeResult, error) {
	return s.merges.Get(ctx, mergeID)
}

// ResolveConflict applies a resolution to a conflict, validating the state
// transition inside the same database transaction that reads the current
// state (repository.MergeRepo.UpdateConflictResolution).
func (s *MergeService) ResolveConflict(ctx context.Context, conflictID string, resolution domain.ConflictResolution) error {
	if !resolution.Valid() {
		return domain.ErrValidation("unknown conflict resolution %q", resolution)
	}
	return s.merges.UpdateConflictResolution(ctx, conflictID, resolution)
}
