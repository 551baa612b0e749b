package evaluation

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/pkg/cache"
	"github.com/snow-ghost/interviewer/pkg/logging"
)

var ErrRunnerStopped = errors.New("evaluation runner stopped")

// Runner evaluates sessions on a bounded worker pool. Concurrent requests for
// the same session share one evaluation.
type Runner struct {
	evaluator *Evaluator
	dedup     *cache.Deduplicator[core.EvaluationReport]
	logger    *zap.Logger
	workers   int

	mu      sync.Mutex
	queue   chan string
	active  map[string]struct{} // queued or being evaluated
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner(evaluator *Evaluator, cfg Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultConfig().QueueSize
	}
	return &Runner{
		evaluator: evaluator,
		dedup:     cache.NewDeduplicator[core.EvaluationReport](),
		logger:    logger,
		workers:   workers,
		queue:     make(chan string, size),
		active:    make(map[string]struct{}),
	}
}

// Start launches the workers. They run until Stop or ctx is done.
func (r *Runner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work(ctx, i)
	}
	r.logger.Info("evaluation runner started", zap.Int("workers", r.workers))
}

// Schedule queues a session without blocking. A session that is already
// queued or being evaluated is not queued again. When the queue is full the
// session is left for the periodic sweep.
func (r *Runner) Schedule(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		r.logger.Warn("runner stopped, evaluation not queued", logging.Session(sessionID))
		return
	}
	if _, ok := r.active[sessionID]; ok {
		r.logger.Debug("evaluation already pending", logging.Session(sessionID))
		return
	}
	select {
	case r.queue <- sessionID:
		r.active[sessionID] = struct{}{}
	default:
		r.logger.Warn("evaluation queue full, leaving session for sweep", logging.Session(sessionID))
	}
}

type runResult struct {
	report core.EvaluationReport
	err    error
}

// Run evaluates a session synchronously, sharing the result with any
// evaluation of the same session already in flight. A caller whose ctx ends
// stops waiting, but the shared evaluation carries on for the others and is
// bounded by the per-capability timeouts.
func (r *Runner) Run(ctx context.Context, sessionID string) (core.EvaluationReport, error) {
	shared := context.WithoutCancel(ctx)
	done := make(chan runResult, 1)
	go func() {
		report, _, err := r.dedup.Do(sessionID, func() (core.EvaluationReport, error) {
			return r.evaluator.Evaluate(shared, sessionID)
		})
		done <- runResult{report: report, err: err}
	}()

	select {
	case <-ctx.Done():
		return core.EvaluationReport{}, ctx.Err()
	case res := <-done:
		return res.report, res.err
	}
}

// Pending reports whether a session is queued or being evaluated.
func (r *Runner) Pending(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[sessionID]
	return ok
}

// Stop stops accepting work, lets queued evaluations finish and waits.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.logger.Info("evaluation runner stopped")
}

func (r *Runner) Stats() cache.DedupStats {
	return r.dedup.Stats()
}

func (r *Runner) work(ctx context.Context, id int) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sessionID, ok := <-r.queue:
			if !ok {
				return
			}
			if _, err := r.Run(ctx, sessionID); err != nil {
				r.logger.Error("evaluation failed",
					logging.Session(sessionID),
					zap.Int("worker", id),
					zap.Error(err))
			}
			r.mu.Lock()
			delete(r.active, sessionID)
			r.mu.Unlock()
		}
	}
}
