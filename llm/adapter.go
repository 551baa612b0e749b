package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/pkg/tokens"
)

// Persona is who the interviewer claims to be in generated lines.
type Persona struct {
	Name    string `mapstructure:"name" json:"name"`
	Company string `mapstructure:"company" json:"company"`
}

func DefaultPersona() Persona {
	return Persona{Name: "Alex", Company: "the hiring team"}
}

// DefaultTranscriptTokens bounds the project transcript sent for grading.
const DefaultTranscriptTokens = 6000

// Adapter implements the core generation and grading ports on top of a Completer.
type Adapter struct {
	completer        Completer
	persona          Persona
	encoder          tokens.Encoder
	transcriptTokens int
	logger           *zap.Logger
}

var (
	_ core.UtteranceGenerator = (*Adapter)(nil)
	_ core.AnswerGrader       = (*Adapter)(nil)
	_ core.ProjectGrader      = (*Adapter)(nil)
	_ core.TopicExtractor     = (*Adapter)(nil)
	_ core.Recommender        = (*Adapter)(nil)
)

type Option func(*Adapter)

func WithPersona(p Persona) Option {
	return func(a *Adapter) {
		if p.Name != "" {
			a.persona.Name = p.Name
		}
		if p.Company != "" {
			a.persona.Company = p.Company
		}
	}
}

func WithEncoder(e tokens.Encoder) Option {
	return func(a *Adapter) { a.encoder = e }
}

// WithTranscriptLimit sets the grading transcript budget in tokens; the oldest
// lines are dropped first.
func WithTranscriptLimit(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.transcriptTokens = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAdapter(c Completer, opts ...Option) *Adapter {
	a := &Adapter{
		completer:        c,
		persona:          DefaultPersona(),
		encoder:          tokens.RuneEncoder{},
		transcriptTokens: DefaultTranscriptTokens,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type utteranceShape struct {
	name        string
	withUser    bool
	withHistory bool
	maxTokens   int
}

var utteranceShapes = map[core.Action]utteranceShape{
	core.ActionGreet:            {"greet", true, false, 400},
	core.ActionGreetingFollowUp: {"greeting_follow_up", false, true, 200},
	core.ActionOpenProject:      {"open_project", true, false, 200},
	core.ActionNextProject:      {"next_project", true, false, 200},
	core.ActionProjectFollowUp:  {"project_follow_up", false, true, 250},
	core.ActionAcademic:         {"academic", true, false, 200},
	core.ActionOpenFactual:      {"open_factual", true, false, 200},
	core.ActionFactualFollowUp:  {"factual_follow_up", false, true, 300},
	core.ActionWrapUp:           {"factual_follow_up", false, true, 300},
}

// GenerateUtterance produces the interviewer's next line with markdown removed.
func (a *Adapter) GenerateUtterance(ctx context.Context, req core.UtteranceRequest) (string, error) {
	shape, ok := utteranceShapes[req.Action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", core.ErrInvalidInput, req.Action)
	}

	data := a.utteranceData(req)
	system, err := render(shape.name+".system", data)
	if err != nil {
		return "", err
	}

	var messages []Message
	if shape.withHistory {
		messages = history(req.Transcript, req.Phase)
	}
	if shape.withUser {
		user, err := render(shape.name+".user", data)
		if err != nil {
			return "", err
		}
		messages = append(messages, Message{Role: RoleUser, Content: user})
	}
	if len(messages) == 0 {
		messages = []Message{{Role: RoleUser, Content: "(the candidate has not said anything yet)"}}
	}

	out, err := a.completer.Complete(ctx, Request{
		System:      system,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   shape.maxTokens,
		Capability:  CapabilityGenerate,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(StripMarkdown(out))
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func (a *Adapter) utteranceData(req core.UtteranceRequest) PromptData {
	d := a.base()
	d.FirstName = core.FirstName(req.CandidateName)
	d.ResumeSummary = req.ResumeSummary
	d.ProjectNumber = req.ProjectNumber
	d.ProjectTotal = req.ProjectTotal
	d.GPAContext = core.GPAContext(req.GPA)
	d.Education = req.Education
	d.Final = req.Action == core.ActionWrapUp
	if req.Project != nil {
		d.ProjectTitle = req.Project.Title
		d.ProjectContent = req.Project.Content
	}
	if req.Question != nil {
		d.Topic = req.Question.Topic
		d.Question = req.Question.Question
	}
	return d
}

func (a *Adapter) base() PromptData {
	return PromptData{Persona: a.persona.Name, Company: a.persona.Company}
}

// history replays the phase's turns as chat messages: the interviewer is the
// assistant, the candidate the user.
func history(turns []core.Turn, phase core.Phase) []Message {
	var out []Message
	for _, t := range turns {
		if t.Phase != phase {
			continue
		}
		role := RoleUser
		if t.Role == core.RoleInterviewer {
			role = RoleAssistant
		}
		out = append(out, Message{Role: role, Content: t.Text})
	}
	return out
}

// GradeAnswer grades one factual answer.
func (a *Adapter) GradeAnswer(ctx context.Context, question, answer string) (core.AnswerGrade, error) {
	data := a.base()
	data.Question = question
	data.Answer = answer

	raw, err := a.call(ctx, "grade_answer", data, Request{
		Temperature: 0.2,
		MaxTokens:   1500,
		JSON:        true,
		Capability:  CapabilityGradeAnswer,
	})
	if err != nil {
		return core.AnswerGrade{}, err
	}
	return ParseAnswerVerdict(raw)
}

// GradeProjectDiscussion grades the combined project transcript.
func (a *Adapter) GradeProjectDiscussion(ctx context.Context, candidateName string, transcript []core.Turn) (core.ProjectGrade, error) {
	data := a.base()
	data.FirstName = core.FirstName(candidateName)
	data.Transcript = a.encoder.Tail(FormatTranscript(transcript), a.transcriptTokens)

	raw, err := a.call(ctx, "grade_project", data, Request{
		Temperature: 0.3,
		MaxTokens:   3000,
		JSON:        true,
		Capability:  CapabilityGradeProject,
	})
	if err != nil {
		return core.ProjectGrade{}, err
	}
	return ParseProjectVerdict(raw)
}

// ExtractTopics returns the topics the backend proposes. The caller validates
// them against the bank.
func (a *Adapter) ExtractTopics(ctx context.Context, profile core.CandidateProfile, allowed []string) ([]string, error) {
	data := a.base()
	data.Allowed = allowed
	data.Resume = profile.FingerprintText()

	raw, err := a.call(ctx, "extract_topics", data, Request{
		Temperature: 0.3,
		MaxTokens:   200,
		Capability:  CapabilityExtractTopics,
	})
	if err != nil {
		return nil, err
	}
	return splitTopics(raw), nil
}

// Recommend asks for coaching lines for one evaluated phase.
func (a *Adapter) Recommend(ctx context.Context, req core.RecommendationRequest) ([]string, error) {
	evaluation, err := json.MarshalIndent(req.Evaluation, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode evaluation: %w", err)
	}

	data := a.base()
	data.EvaluationJSON = string(evaluation)
	data.Transcript = a.encoder.Tail(FormatTranscript(req.Transcript), a.transcriptTokens)

	system, err := render("recommend_"+string(req.Kind)+".system", data)
	if err != nil {
		return nil, err
	}
	user, err := render("recommend.user", data)
	if err != nil {
		return nil, err
	}
	raw, err := a.completer.Complete(ctx, Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		Temperature: 0.4,
		MaxTokens:   800,
		JSON:        true,
		Capability:  CapabilityRecommend,
	})
	if err != nil {
		return nil, err
	}
	return ParseRecommendations(raw)
}

// call renders name.system and name.user and sends them with the settings in req.
func (a *Adapter) call(ctx context.Context, name string, data PromptData, req Request) (string, error) {
	system, err := render(name+".system", data)
	if err != nil {
		return "", err
	}
	user, err := render(name+".user", data)
	if err != nil {
		return "", err
	}
	req.System = system
	req.Messages = []Message{{Role: RoleUser, Content: user}}

	out, err := a.completer.Complete(ctx, req)
	if err != nil {
		a.logger.Debug("completion failed", zap.String("prompt", name), zap.Error(err))
		return "", err
	}
	return out, nil
}

// FormatTranscript renders turns as "INTERVIEWER: ..." / "CANDIDATE: ..." lines.
func FormatTranscript(turns []core.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToUpper(string(t.Role)))
		b.WriteString(": ")
		b.WriteString(t.Text)
	}
	return b.String()
}

func splitTopics(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), "-*•. \t")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
