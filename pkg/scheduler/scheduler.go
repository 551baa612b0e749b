// Package scheduler periodically requeues completed interviews that still
// have no evaluation report, such as those lost to a restart or a full queue.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/core"
)

// Target accepts sessions for evaluation. Pending reports sessions it has
// already queued or is evaluating.
type Target interface {
	Schedule(sessionID string)
	Pending(sessionID string) bool
}

// Sweeper runs the pending-evaluation sweep on a fixed interval.
type Sweeper struct {
	scheduler *gocron.Scheduler
	store     core.SessionStore
	target    Target
	interval  time.Duration
	logger    *zap.Logger
}

func New(store core.SessionStore, target Target, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Sweeper{
		scheduler: s,
		store:     store,
		target:    target,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep and returns immediately. The first sweep runs at once.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("evaluation sweep started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep queues every session without a report that the target is not
// already handling, and returns how many it queued.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.store.PendingEvaluations(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending evaluations: %w", err)
	}
	queued := 0
	for _, id := range ids {
		if s.target.Pending(id) {
			continue
		}
		s.target.Schedule(id)
		queued++
	}
	return queued, nil
}

func (s *Sweeper) run() {
	n, err := s.Sweep(context.Background())
	if err != nil {
		s.logger.Error("evaluation sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("requeued pending evaluations", zap.Int("sessions", n))
	}
}
