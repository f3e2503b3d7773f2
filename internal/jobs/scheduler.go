package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"trade-signals/observability"
)

// CachePruner drops expired sentiment cache entries
type CachePruner interface {
	PruneCaches(ctx context.Context) (int, error)
}

// Scheduler runs periodic maintenance on a cron schedule
type Scheduler struct {
	cron   *cron.Cron
	pruner CachePruner
	ctx    context.Context
}

// NewScheduler creates a Scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(ctx context.Context, pruner CachePruner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		pruner: pruner,
		ctx:    ctx,
	}
}

// Register adds the cache prune job. An empty schedule disables it.
func (s *Scheduler) Register(pruneSchedule string) error {
	if pruneSchedule == "" {
		observability.Info("cache prune job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(pruneSchedule, s.PruneNow); err != nil {
		return fmt.Errorf("register cache prune job %q: %w", pruneSchedule, err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	observability.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	observability.Info("scheduler stopped")
}

// PruneNow runs the cache prune job immediately
func (s *Scheduler) PruneNow() {
	start := time.Now()
	n, err := s.pruner.PruneCaches(s.ctx)
	if err != nil {
		observability.Error("cache prune failed", "pruned", n, "error", err)
		return
	}
	observability.Info("cache prune completed", "pruned", n, "duration_ms", time.Since(start).Milliseconds())
}
