package sync

import (
	"context"
	"log/slog"
	gosync "sync"

	"github.com/google/uuid"
)

// Runner launches historical syncs as fire-and-forget background runs. Each
// run gets its own ID and a context derived from the runner's base context,
// so shutting the process down cancels every in-flight run. Completion is
// observable only through the sync_status table; the launching request never
// waits.
type Runner struct {
	service *Service
	baseCtx context.Context
	logger  *slog.Logger

	mu      gosync.Mutex
	cancels map[string]context.CancelFunc
}

// NewRunner creates a runner whose background runs live under baseCtx
func NewRunner(baseCtx context.Context, service *Service) *Runner {
	return &Runner{
		service: service,
		baseCtx: baseCtx,
		logger:  slog.Default(),
		cancels: make(map[string]context.CancelFunc),
	}
}

// StartHistorical launches a historical sync in the background and returns
// its run ID immediately. Overlapping runs are permitted; upserts keep the
// store consistent regardless of interleaving.
func (r *Runner) StartHistorical(yearsBack int) string {
	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(r.baseCtx)

	r.mu.Lock()
	r.cancels[runID] = cancel
	r.mu.Unlock()

	r.logger.Info("Starting background historical sync", "run_id", runID, "years_back", yearsBack)

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.cancels, runID)
			r.mu.Unlock()
		}()

		if err := r.service.SyncHistorical(ctx, yearsBack); err != nil {
			r.logger.Error("Background historical sync failed", "run_id", runID, "error", err)
			return
		}
		r.logger.Info("Background historical sync finished", "run_id", runID)
	}()

	return runID
}

// Active reports the number of in-flight background runs
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cancels)
}

// CancelAll cancels every in-flight background run. Used during shutdown in
// addition to base context cancellation so a caller holding the runner can
// stop runs without tearing down the process.
func (r *Runner) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancel := range r.cancels {
		cancel()
	}
}
