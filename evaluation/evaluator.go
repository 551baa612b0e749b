package evaluation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/llm"
	"github.com/snow-ghost/interviewer/pkg/logging"
	"github.com/snow-ghost/interviewer/pkg/metrics"
	"github.com/snow-ghost/interviewer/pkg/tracing"
)

// FallbackRecommendation is used when no recommendations could be generated.
const FallbackRecommendation = "Review the areas where you struggled during the interview."

// Config tunes background evaluation.
type Config struct {
	Workers            int           `mapstructure:"workers" json:"workers"`
	QueueSize          int           `mapstructure:"queue_size" json:"queue_size"`
	GradingConcurrency int           `mapstructure:"grading_concurrency" json:"grading_concurrency"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval" json:"sweep_interval"`
}

func DefaultConfig() Config {
	return Config{
		Workers:            2,
		QueueSize:          64,
		GradingConcurrency: 4,
		SweepInterval:      time.Minute,
	}
}

// Graders bundles the capabilities an evaluation consumes.
type Graders interface {
	core.AnswerGrader
	core.ProjectGrader
	core.Recommender
}

// QAPair is one factual question and the candidate's answer to it.
type QAPair struct {
	Topic    string
	Question string
	Answer   string
}

// Evaluator grades one completed session and stores its report.
type Evaluator struct {
	store       core.SessionStore
	graders     Graders
	concurrency int
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

type EvaluatorOption func(*Evaluator)

func WithGradingConcurrency(n int) EvaluatorOption {
	return func(e *Evaluator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithEvaluatorMetrics(m *metrics.Metrics) EvaluatorOption {
	return func(e *Evaluator) { e.metrics = m }
}

func WithEvaluatorLogger(l *zap.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithEvaluatorClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) { e.now = now }
}

func NewEvaluator(store core.SessionStore, graders Graders, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		store:       store,
		graders:     graders,
		concurrency: DefaultConfig().GradingConcurrency,
		logger:      zap.NewNop(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate grades the session and upserts its report. Grading failures
// degrade single items; only storage errors fail the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, sessionID string) (report core.EvaluationReport, err error) {
	start := time.Now()
	ctx, span := tracing.StartEvaluationSpan(ctx, sessionID)
	defer func() {
		tracing.End(span, err)
		status := "ok"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordEvaluation(status, time.Since(start), report.FinalScore)
	}()

	sess, err := e.store.LoadSession(ctx, sessionID)
	if err != nil {
		return core.EvaluationReport{}, err
	}
	if !sess.Complete() {
		return core.EvaluationReport{}, fmt.Errorf("%w: interview %s is still in phase %s", core.ErrInvalidInput, sessionID, sess.Phase)
	}
	turns, err := e.store.Turns(ctx, sessionID)
	if err != nil {
		return core.EvaluationReport{}, fmt.Errorf("load transcript: %w", err)
	}

	e.logger.Info("evaluation started", logging.Session(sessionID), zap.Int("turns", len(turns)))

	projectTurns := ProjectTranscript(turns)
	project := e.evaluateProject(ctx, sess.Profile.Name, projectTurns)
	factual := AggregateFactual(e.gradeAnswers(ctx, FactualPairs(turns)))

	if !project.NotDiscussed {
		project.Recommendations = e.recommend(ctx, core.RecommendProject, project, projectTurns)
	}
	if !factual.NoAnswers {
		factual.Recommendations = e.recommend(ctx, core.RecommendFactual, factual, nil)
	}

	final, level := Final(project.Overall, factual.Score)
	report = core.EvaluationReport{
		SessionID:        sessionID,
		CandidateName:    sess.Profile.Name,
		FinalScore:       final,
		PerformanceLevel: level,
		Project:          project,
		Factual:          factual,
		GeneratedAt:      e.now(),
	}
	if err := e.store.SaveEvaluation(ctx, report); err != nil {
		return core.EvaluationReport{}, fmt.Errorf("save evaluation: %w", err)
	}

	e.logger.Info("evaluation finished",
		logging.Session(sessionID),
		zap.Float64("final_score", final),
		zap.String("level", level),
		logging.Duration(time.Since(start)))
	return report, nil
}

func (e *Evaluator) evaluateProject(ctx context.Context, candidateName string, turns []core.Turn) core.ProjectEvaluation {
	if !hasCandidateTurn(turns) {
		return core.ProjectEvaluation{NotDiscussed: true}
	}

	grade, err := e.graders.GradeProjectDiscussion(ctx, candidateName, turns)
	if err != nil {
		e.logger.Warn("project grading failed", zap.Error(err))
		e.metrics.RecordFallback(llm.CapabilityGradeProject)
		return core.ProjectEvaluation{Ungraded: true, Error: err.Error()}
	}
	return AggregateProject(grade)
}

// gradeAnswers grades pairs concurrently; results keep question order.
func (e *Evaluator) gradeAnswers(ctx context.Context, pairs []QAPair) []core.GradedAnswer {
	out := make([]core.GradedAnswer, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			graded := core.GradedAnswer{Topic: p.Topic, Question: p.Question, Answer: p.Answer}
			grade, err := e.graders.GradeAnswer(gctx, p.Question, p.Answer)
			if err != nil {
				e.logger.Warn("answer grading failed",
					zap.String("question", logging.Truncate(p.Question, 80)),
					zap.Error(err))
				e.metrics.RecordFallback(llm.CapabilityGradeAnswer)
				graded.Ungraded = true
				graded.Error = err.Error()
			} else {
				graded.AnswerGrade = grade
			}
			out[i] = graded
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Evaluator) recommend(ctx context.Context, kind core.RecommendationKind, evaluation any, turns []core.Turn) []string {
	recs, err := e.graders.Recommend(ctx, core.RecommendationRequest{Kind: kind, Evaluation: evaluation, Transcript: turns})
	if err != nil || len(recs) == 0 {
		e.logger.Warn("recommendations unavailable, using fallback", zap.String("kind", string(kind)), zap.Error(err))
		e.metrics.RecordFallback(llm.CapabilityRecommend)
		return []string{FallbackRecommendation}
	}
	return recs
}

// ProjectTranscript returns the turns of both project phases in order.
func ProjectTranscript(turns []core.Turn) []core.Turn {
	var out []core.Turn
	for _, t := range turns {
		if t.Phase.IsProject() {
			out = append(out, t)
		}
	}
	return out
}

// FactualPairs pairs each factual question with the candidate turn that
// follows it. A question the candidate never answered is skipped.
func FactualPairs(turns []core.Turn) []QAPair {
	var pairs []QAPair
	for i, t := range turns {
		if t.Role != core.RoleInterviewer || t.Question == nil || t.Phase != core.PhaseFactual {
			continue
		}
		if i+1 >= len(turns) || turns[i+1].Role != core.RoleCandidate {
			continue
		}
		pairs = append(pairs, QAPair{
			Topic:    t.Question.Topic,
			Question: t.Question.Question,
			Answer:   turns[i+1].Text,
		})
	}
	return pairs
}

func hasCandidateTurn(turns []core.Turn) bool {
	for _, t := range turns {
		if t.Role == core.RoleCandidate {
			return true
		}
	}
	return false
}
