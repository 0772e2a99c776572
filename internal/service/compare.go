package service

import (
	"context"

	"revengine/internal/compare"
	"revengine/internal/domain"
	"revengine/internal/repository"
)

// CompareService runs and persists block-alignment comparisons between two
// documents.
type CompareService struct {
	blocks repository.BlockRepo
	runs   repository.CompareRepo
	engine *compare.Engine
}

// NewCompareService constructs a CompareService.
func NewCompareService(blocks repository.BlockRepo, runs repository.CompareRepo, engine *compare.Engine) *CompareService {
	return &CompareService{blocks: blocks, runs: runs, engine: engine}
}

// Run loads both documents' block trees, compares them, persists the
// result, and returns it.
func (s *CompareService) Run(ctx context.Context, leftDocID, rightDocID string) (*domain.CompareResult, error) {
	left, err := s.blocks.Tree(ctx, leftDocID)
	if err != nil {
		return nil, err
	}
	right, err := s.blocks.Tree(ctx, rightDocID)
	if err != nil {
		return nil, err
	}

	for _, roots := range [][]*domain.Block{left, right} {
		for _, b := range roots {
			if err := verifyTree(b); err != nil {
				return nil, err
			}
		}
	}

	result, err := s.engine.Compare(ctx, leftDocID, rightDocID, left, right)
	if err != nil {
		return nil, err
	}

	if err := s.runs.Save(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a previously persisted compare run by id.
func (s *CompareService) Get(ctx context.Context, runID string) (*domain.CompareResult, error) {
	return s.runs.Get(ctx, runID)
}
