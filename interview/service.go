package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/kb"
	"github.com/snow-ghost/interviewer/llm"
	"github.com/snow-ghost/interviewer/pkg/logging"
	"github.com/snow-ghost/interviewer/pkg/metrics"
	"github.com/snow-ghost/interviewer/pkg/tracing"
	"github.com/snow-ghost/interviewer/selector"
)

// MaxProjects is how many resume projects an interview discusses.
const MaxProjects = 2

var ErrEvaluationDisabled = errors.New("evaluation is not configured")

// Config holds the per-interview limits.
type Config struct {
	Thresholds         `mapstructure:",squash"`
	MaxUtteranceLength int `mapstructure:"max_utterance_length" json:"max_utterance_length"`
}

func DefaultConfig() Config {
	return Config{
		Thresholds:         DefaultThresholds(),
		MaxUtteranceLength: 4000,
	}
}

// Scheduler queues a completed session for evaluation without blocking.
type Scheduler interface {
	Schedule(sessionID string)
}

type StartResult struct {
	SessionID        string     `json:"session_id"`
	Utterance        string     `json:"utterance"`
	Phase            core.Phase `json:"phase"`
	TopicsOfInterest []string   `json:"topics_of_interest"`
}

type AdvanceResult struct {
	SessionID string          `json:"session_id"`
	Utterance string          `json:"utterance"`
	Phase     core.Phase      `json:"phase"`
	Complete  bool            `json:"interview_complete"`
	Question  *core.Selection `json:"question,omitempty"`
}

// Service runs interviews. Turns of one session are processed one at a time;
// different sessions proceed in parallel.
type Service struct {
	store     core.SessionStore
	bank      *kb.Bank
	machine   *Machine
	selector  *selector.Selector
	generator core.UtteranceGenerator
	extractor core.TopicExtractor
	scheduler Scheduler
	metrics   *metrics.Metrics
	logger    *zap.Logger
	locks     *sessionLocks

	maxUtterance int
	now          func() time.Time
	newID        func() string
}

type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.machine = NewMachine(cfg.Thresholds)
		if cfg.MaxUtteranceLength > 0 {
			s.maxUtterance = cfg.MaxUtteranceLength
		}
	}
}

func WithTopicExtractor(e core.TopicExtractor) Option {
	return func(s *Service) { s.extractor = e }
}

func WithScheduler(sch Scheduler) Option {
	return func(s *Service) { s.scheduler = sch }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock and WithIDs make sessions reproducible in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store core.SessionStore, bank *kb.Bank, sel *selector.Selector, gen core.UtteranceGenerator, opts ...Option) *Service {
	s := &Service{
		store:        store,
		bank:         bank,
		machine:      NewMachine(DefaultThresholds()),
		selector:     sel,
		generator:    gen,
		logger:       zap.NewNop(),
		locks:        newSessionLocks(),
		maxUtterance: DefaultConfig().MaxUtteranceLength,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a session for profile and returns the greeting.
func (s *Service) Start(ctx context.Context, profile core.CandidateProfile) (StartResult, error) {
	if err := profile.Validate(); err != nil {
		return StartResult{}, err
	}
	if len(profile.Projects) > MaxProjects {
		profile.Projects = append([]core.ProjectRecord(nil), profile.Projects[:MaxProjects]...)
	}

	topics, err := s.topicsOfInterest(ctx, profile)
	if err != nil {
		return StartResult{}, err
	}

	now := s.now()
	sess := core.Session{
		ID:               s.newID(),
		Profile:          profile,
		Phase:            core.PhaseGreeting,
		TopicsOfInterest: topics,
		QuestionsAsked:   []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return StartResult{}, fmt.Errorf("create session: %w", err)
	}

	d := s.machine.Start()
	text := s.generate(ctx, s.utteranceRequest(sess, d, nil, nil))
	greeting := core.Turn{Seq: 1, Role: core.RoleInterviewer, Text: text, Phase: d.ReplyPhase, CreatedAt: now}
	if err := s.store.AppendTurn(ctx, sess.ID, greeting); err != nil {
		return StartResult{}, fmt.Errorf("append greeting: %w", err)
	}

	s.metrics.RecordSessionStarted()
	s.logger.Info("interview started",
		logging.Session(sess.ID),
		zap.Int("projects", len(profile.Projects)),
		zap.Strings("topics", topics))

	return StartResult{
		SessionID:        sess.ID,
		Utterance:        text,
		Phase:            sess.Phase,
		TopicsOfInterest: topics,
	}, nil
}

// Advance records the candidate's utterance and returns the interviewer's reply.
func (s *Service) Advance(ctx context.Context, sessionID, utterance string) (res AdvanceResult, err error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return AdvanceResult{}, fmt.Errorf("%w: empty utterance", core.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(utterance); n > s.maxUtterance {
		return AdvanceResult{}, fmt.Errorf("%w: utterance has %d characters, limit is %d", core.ErrInvalidInput, n, s.maxUtterance)
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	sess, err := s.store.LoadSession(ctx, sessionID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if sess.Complete() {
		return AdvanceResult{}, core.ErrInterviewComplete
	}

	ctx, span := tracing.StartTurnSpan(ctx, sessionID, string(sess.Phase))
	defer func() { tracing.End(span, err) }()

	turns, err := s.store.Turns(ctx, sessionID)
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("load transcript: %w", err)
	}

	next, d, err := s.machine.Advance(sess, utterance)
	if err != nil {
		return AdvanceResult{}, err
	}

	now := s.now()
	answer := core.Turn{Seq: len(turns) + 1, Role: core.RoleCandidate, Text: utterance, Phase: d.Phase, CreatedAt: now}
	turns = append(turns, answer)

	var question *core.Selection
	if d.NeedsQuestion {
		sel := s.selector.Select(ctx, selector.Request{
			Asked:            next.QuestionsAsked,
			TopicsOfInterest: next.TopicsOfInterest,
			Fingerprint:      next.Profile.FingerprintText(),
		})
		next.QuestionsAsked = append(next.QuestionsAsked, sel.Question)
		question = &sel
		s.metrics.RecordSelection(sel.Topic, selectionMode(sel), sel.Score)
	}

	text := s.generate(ctx, s.utteranceRequest(next, d, question, turns))

	next.UpdatedAt = now
	if d.Complete {
		next.CompletedAt = &now
	}
	reply := core.Turn{Seq: len(turns) + 1, Role: core.RoleInterviewer, Text: text, Phase: d.ReplyPhase, CreatedAt: now}
	if question != nil {
		reply.Question = question.Ref()
	}
	// The session only moves on together with both turns.
	if err := s.store.CommitTurn(ctx, next, answer, reply); err != nil {
		return AdvanceResult{}, fmt.Errorf("commit turn: %w", err)
	}

	s.metrics.RecordTurn(string(d.Phase))
	if d.Transitioned() {
		s.metrics.RecordTransition(string(d.From), string(d.To))
		logging.WithTrace(ctx, s.logger).Info("phase transition",
			logging.Session(sessionID),
			zap.String("from", string(d.From)),
			zap.String("to", string(d.To)))
	}
	if d.Complete {
		s.metrics.RecordSessionCompleted()
		if s.scheduler != nil {
			s.scheduler.Schedule(sessionID)
		}
	}

	return AdvanceResult{
		SessionID: sessionID,
		Utterance: text,
		Phase:     next.Phase,
		Complete:  d.Complete,
		Question:  question,
	}, nil
}

// Report returns the stored evaluation, core.ErrReportNotReady while the
// background evaluation has not finished.
func (s *Service) Report(ctx context.Context, sessionID string) (core.EvaluationReport, error) {
	if _, err := s.store.LoadSession(ctx, sessionID); err != nil {
		return core.EvaluationReport{}, err
	}
	return s.store.LoadEvaluation(ctx, sessionID)
}

func (s *Service) Transcript(ctx context.Context, sessionID string) ([]core.Turn, error) {
	if _, err := s.store.LoadSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.Turns(ctx, sessionID)
}

func (s *Service) Session(ctx context.Context, sessionID string) (core.Session, error) {
	return s.store.LoadSession(ctx, sessionID)
}

// Reevaluate queues a completed session for evaluation again.
func (s *Service) Reevaluate(ctx context.Context, sessionID string) error {
	sess, err := s.store.LoadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !sess.Complete() {
		return fmt.Errorf("%w: interview %s is still in phase %s", core.ErrInvalidInput, sessionID, sess.Phase)
	}
	if s.scheduler == nil {
		return ErrEvaluationDisabled
	}
	s.scheduler.Schedule(sessionID)
	return nil
}

// topicsOfInterest uses the profile's own topics when it names any known
// ones, otherwise asks the extractor and pads the result.
func (s *Service) topicsOfInterest(ctx context.Context, profile core.CandidateProfile) ([]string, error) {
	if len(profile.Topics) > 0 {
		topics := s.bank.ValidateTopics(profile.Topics)
		if len(topics) == 0 {
			return nil, fmt.Errorf("%w: none of %v", core.ErrUnknownTopic, profile.Topics)
		}
		return topics, nil
	}
	if s.extractor == nil {
		return s.bank.ResolveTopics(nil), nil
	}

	proposed, err := s.extractor.ExtractTopics(ctx, profile, s.bank.Topics())
	if err != nil {
		s.logger.Warn("topic extraction failed, using default topic", zap.Error(err))
		s.metrics.RecordFallback(llm.CapabilityExtractTopics)
		if topics := s.bank.ValidateTopics([]string{kb.DefaultTopic}); len(topics) > 0 {
			return topics, nil
		}
		return s.bank.ResolveTopics(nil), nil
	}
	return s.bank.ResolveTopics(proposed), nil
}

func (s *Service) utteranceRequest(sess core.Session, d Decision, question *core.Selection, turns []core.Turn) core.UtteranceRequest {
	req := core.UtteranceRequest{
		Phase:         d.ReplyPhase,
		Action:        d.Action,
		CandidateName: sess.Profile.Name,
		ResumeSummary: sess.Profile.SummaryText(),
		ProjectTotal:  len(sess.Profile.Projects),
		GPA:           sess.Profile.GPA,
		Education:     sess.Profile.EducationText(),
		Question:      question,
		Transcript:    turns,
	}
	if sess.Phase.IsProject() {
		if p, ok := sess.CurrentProject(); ok {
			req.Project = &p
			req.ProjectNumber = sess.CurrentProjectIndex + 1
		}
	}
	return req
}

// generate never fails: a backend error or empty line falls back to the
// scripted line for the same request.
func (s *Service) generate(ctx context.Context, req core.UtteranceRequest) string {
	text, err := s.generator.GenerateUtterance(ctx, req)
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	if err == nil {
		err = llm.ErrEmptyResponse
	}
	s.logger.Warn("utterance generation failed, using scripted line",
		zap.String("action", string(req.Action)),
		zap.Error(err))
	s.metrics.RecordFallback(llm.CapabilityGenerate)
	return llm.Scripted(req)
}

func selectionMode(sel core.Selection) string {
	switch {
	case sel.Fallback:
		return "fallback"
	case sel.Score != nil:
		return "ranked"
	}
	return "bank_order"
}
