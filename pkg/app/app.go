// Package app assembles an interviewer process from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/embeddings"
	"github.com/snow-ghost/interviewer/evaluation"
	"github.com/snow-ghost/interviewer/interview"
	"github.com/snow-ghost/interviewer/kb"
	"github.com/snow-ghost/interviewer/kb/indexer"
	"github.com/snow-ghost/interviewer/llm"
	"github.com/snow-ghost/interviewer/pkg/config"
	"github.com/snow-ghost/interviewer/pkg/httpserver"
	"github.com/snow-ghost/interviewer/pkg/metrics"
	"github.com/snow-ghost/interviewer/pkg/observability"
	"github.com/snow-ghost/interviewer/pkg/providers"
	"github.com/snow-ghost/interviewer/pkg/scheduler"
	"github.com/snow-ghost/interviewer/pkg/store"
	"github.com/snow-ghost/interviewer/relevance"
	"github.com/snow-ghost/interviewer/selector"
	"github.com/snow-ghost/interviewer/transport/telegram"
	"github.com/snow-ghost/interviewer/vectordb"
)

// App holds every long-lived component of one process.
type App struct {
	Config    *config.Config
	Bank      *kb.Bank
	Store     core.SessionStore
	LLM       llm.Ports
	Service   *interview.Service
	Evaluator *evaluation.Evaluator
	Runner    *evaluation.Runner
	Sweeper   *scheduler.Sweeper

	obs     *observability.Manager
	started bool
}

// New builds the components described by cfg. Background evaluation does
// not run until Start.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.NewManager(observability.Config{Log: cfg.Log, Tracing: cfg.Tracing})
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	a := &App{Config: cfg, obs: obs}
	logger := obs.Logger()

	if a.Bank, err = cfg.LoadBank(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("question bank: %w", err)
	}
	if a.Store, err = store.New(cfg.Store); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("store: %w", err)
	}
	if a.LLM, err = providers.New(ctx, cfg.LLM, obs.Metrics(), logger); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("language backend: %w", err)
	}

	var scorer selector.Scorer
	if cfg.Relevance.Enabled {
		s, err := a.relevanceScorer(ctx)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		scorer = s
	}
	sel := selector.New(a.Bank, scorer, logger)

	a.Evaluator = evaluation.NewEvaluator(a.Store, a.LLM,
		evaluation.WithGradingConcurrency(cfg.Evaluation.GradingConcurrency),
		evaluation.WithEvaluatorMetrics(obs.Metrics()),
		evaluation.WithEvaluatorLogger(logger))
	a.Runner = evaluation.NewRunner(a.Evaluator, cfg.Evaluation, logger)
	if cfg.Evaluation.SweepInterval > 0 {
		a.Sweeper = scheduler.New(a.Store, a.Runner, cfg.Evaluation.SweepInterval, logger)
	}

	a.Service = interview.NewService(a.Store, a.Bank, sel, a.LLM,
		interview.WithConfig(cfg.Interview),
		interview.WithTopicExtractor(a.LLM),
		interview.WithScheduler(a.Runner),
		interview.WithMetrics(obs.Metrics()),
		interview.WithLogger(logger))

	logger.Info("interviewer assembled",
		zap.String("store", cfg.Store.Driver),
		zap.String("llm", cfg.LLM.Provider),
		zap.Int("questions", a.Bank.Len()),
		zap.Bool("relevance", scorer != nil))
	return a, nil
}

// relevanceScorer embeds the bank once so selection reads stored vectors.
func (a *App) relevanceScorer(ctx context.Context) (*relevance.Scorer, error) {
	logger := a.obs.Logger()
	embedder, err := embeddings.New(a.Config.Embeddings, logger)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	vectors := vectordb.NewMemoryVectorStore(a.Config.Relevance.Vectors)
	if _, err := indexer.NewIndexer(embedder, vectors, logger).IndexBank(ctx, a.Bank); err != nil {
		return nil, fmt.Errorf("index question bank: %w", err)
	}

	return relevance.NewScorer(embedder,
		relevance.WithVectors(vectors),
		relevance.WithLogger(logger),
		relevance.WithConcurrency(a.Config.Relevance.Concurrency)), nil
}

func (a *App) Logger() *zap.Logger { return a.obs.Logger() }

func (a *App) Metrics() *metrics.Metrics { return a.obs.Metrics() }

// Start launches the evaluation workers and the pending-report sweep.
func (a *App) Start(ctx context.Context) error {
	a.Runner.Start(ctx)
	a.started = true
	if a.Sweeper != nil {
		if err := a.Sweeper.Start(); err != nil {
			return err
		}
	}
	return nil
}

// HTTPServer returns the API server for this process.
func (a *App) HTTPServer() *httpserver.Server {
	return httpserver.NewServer(a.Config.Server, a.Service, a.Bank, a.Metrics(), a.Logger())
}

// TelegramBot returns a bot that interviews with the configured profiles.
func (a *App) TelegramBot() (*telegram.Bot, error) {
	set, err := a.Config.LoadProfiles()
	if err != nil {
		return nil, err
	}
	return telegram.New(a.Config.Telegram, a.Service, set, telegram.WithLogger(a.Logger())), nil
}

// Close stops background work and releases the store and observability.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	if a.Runner != nil && a.started {
		a.Runner.Stop()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if err := a.obs.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
