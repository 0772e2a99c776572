// Package app provides application-level wiring and dependency injection
// for the revision engine following hexagonal architecture.
package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"revengine/internal/api"
	"revengine/internal/compare"
	"revengine/internal/config"
	"revengine/internal/domain"
	"revengine/internal/merge"
	"revengine/internal/repository"
	"revengine/internal/service"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers that the API router needs.
type Services struct {
	Documents *service.DocumentService
	Compare   *service.CompareService
	Merge     *service.MergeService
	Workflows *service.WorkflowService
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Router   *api.Services
	Stale    *StalenessScanner
}

// New wires all repositories, engines, and services from the provided deps.
//
// Construction order is designed so every dependency is available at the
// time each constructor is called — no post-construction Set*() calls.
func New(_ context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === 1. Repositories (write pool — every repo both reads and writes,
	// so there is no benefit to splitting read-only call sites onto the
	// read pool the way the teacher does for its higher-traffic catalog
	// reads; deps.ReadDB is still opened and passed through for future
	// read-heavy listing endpoints) ===
	documentRepo := repository.NewDocumentRepo(deps.WriteDB)
	blockRepo := repository.NewBlockRepo(deps.WriteDB)
	compareRepo := repository.NewCompareRepo(deps.WriteDB)
	mergeRepo := repository.NewMergeRepo(deps.WriteDB)
	workflowRepo := repository.NewWorkflowRepo(deps.WriteDB)

	// === 2. Pure algorithmic engines ===
	compareEngine := compare.NewEngine(compare.Config{WorkerLimit: cfg.DiffWorkerLimit})
	mergeEngine := merge.NewEngine(merge.Config{})

	// === 3. Services (all deps available at construction) ===
	documentSvc := service.NewDocumentService(documentRepo, blockRepo)
	compareSvc := service.NewCompareService(blockRepo, compareRepo, compareEngine)
	mergeSvc := service.NewMergeService(blockRepo, mergeRepo, mergeEngine)
	workflowSvc := service.NewWorkflowService(workflowRepo)

	routerSvc := &api.Services{
		Documents: documentSvc,
		Compare:   compareSvc,
		Merge:     mergeSvc,
		Workflows: workflowSvc,
	}

	return &App{
		Services: Services{
			Documents: documentSvc,
			Compare:   compareSvc,
			Merge:     mergeSvc,
			Workflows: workflowSvc,
		},
		Router: routerSvc,
		Stale:  NewStalenessScanner(workflowRepo, deps.Logger.With("component", "staleness-scanner")),
	}, nil
}

// StalenessScanner periodically scans for workflows stuck in a
// non-terminal, non-review state (COMPARE_RUNNING, COMPILING_EDITS) past a
// staleness threshold and logs them. It never force-transitions a
// workflow — submit_event is the only legal state mutation path — so this
// is observability only.
type StalenessScanner struct {
	workflows repository.WorkflowRepo
	logger    *slog.Logger
	cron      *cron.Cron
	threshold time.Duration
}

// NewStalenessScanner constructs a StalenessScanner with a default
// staleness threshold of 1 hour.
func NewStalenessScanner(workflows repository.WorkflowRepo, logger *slog.Logger) *StalenessScanner {
	return &StalenessScanner{
		workflows: workflows,
		logger:    logger,
		cron:      cron.New(),
		threshold: time.Hour,
	}
}

// Start schedules the scan to run every 10 minutes. Safe to call even if
// there is nothing to scan yet; errors from a single scan are logged, not
// returned, since a missed scan is not fatal to the server.
func (s *StalenessScanner) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("@every 10m", func() { s.scan(ctx) })
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule, blocking until any in-flight scan completes.
func (s *StalenessScanner) Stop() {
	<-s.cron.Stop().Done()
}

func (s *StalenessScanner) scan(ctx context.Context) {
	states := []domain.WorkflowState{domain.WorkflowCompareRunning, domain.WorkflowCompilingEdits}
	for _, state := range states {
		stale, err := s.workflows.ListStaleInState(ctx, state, s.threshold)
		if err != nil {
			s.logger.Warn("staleness scan failed", "state", state, "error", err)
			continue
		}
		for _, wf := range stale {
			s.logger.Warn("workflow stuck past staleness threshold",
				"workflow_id", wf.ID, "document_id", wf.DocumentID, "state", wf.State, "updated_at", wf.UpdatedAt)
		}
	}
}
