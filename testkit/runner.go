// Package testkit drives complete interviews from canned candidate answers.
package testkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/interview"
)

// DefaultMaxTurns bounds a run so a misconfigured machine cannot loop forever.
const DefaultMaxTurns = 64

var ErrUnfinished = errors.New("interview did not complete")

// Interviewer is the part of interview.Service a scripted run needs.
type Interviewer interface {
	Start(ctx context.Context, profile core.CandidateProfile) (interview.StartResult, error)
	Advance(ctx context.Context, sessionID, utterance string) (interview.AdvanceResult, error)
}

// Script holds the candidate's answers per phase. List answers are used in
// order and repeat once exhausted.
type Script struct {
	Greeting string   `yaml:"greeting"`
	Project  []string `yaml:"project"`
	Academic string   `yaml:"academic"`
	Factual  []string `yaml:"factual"`
}

func DefaultScript() Script {
	return Script{
		Greeting: "Yes, I'm ready to start.",
		Project: []string{
			"I fine-tuned a YOLOv8 model on about twelve thousand labelled images.",
			"The hardest part was class imbalance, so I used weighted sampling and heavy augmentation.",
			"I exported the model to ONNX and quantized it to run at 30 FPS on a Jetson Nano.",
			"Next time I would set up proper experiment tracking from day one.",
		},
		Academic: "I focused on machine learning electives and kept my grades consistent.",
		Factual: []string{
			"High bias underfits and high variance overfits; regularization and more data help balance them.",
			"Precision is the share of predicted positives that are correct, recall is the share of actual positives found.",
			"Dropout randomly zeroes activations during training, which reduces co-adaptation.",
			"I'm not sure, I haven't worked with that.",
		},
	}
}

// Answer returns the n-th (zero-based) answer for phase.
func (s Script) Answer(phase core.Phase, n int) string {
	switch phase {
	case core.PhaseGreeting:
		return s.Greeting
	case core.PhaseProject1, core.PhaseProject2:
		return pick(s.Project, n)
	case core.PhaseAcademic:
		return s.Academic
	case core.PhaseFactual:
		return pick(s.Factual, n)
	}
	return ""
}

func pick(answers []string, n int) string {
	if len(answers) == 0 {
		return ""
	}
	return answers[n%len(answers)]
}

// Exchange is one candidate answer and the reply it produced.
type Exchange struct {
	Phase       core.Phase      `json:"phase"`
	Candidate   string          `json:"candidate"`
	Interviewer string          `json:"interviewer"`
	Question    *core.Selection `json:"question,omitempty"`
}

type Result struct {
	SessionID string             `json:"session_id"`
	Greeting  string             `json:"greeting"`
	Exchanges []Exchange         `json:"exchanges"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Questions returns the bank questions asked during the run, in order.
func (r Result) Questions() []string {
	var out []string
	for _, e := range r.Exchanges {
		if e.Question != nil {
			out = append(out, e.Question.Question)
		}
	}
	return out
}

type Runner struct {
	MaxTurns int
	// OnExchange, when set, is called after every exchange.
	OnExchange func(Exchange)
}

func NewRunner() *Runner { return &Runner{MaxTurns: DefaultMaxTurns} }

// Run starts an interview for profile and answers from script until the
// interviewer reports completion.
func (r *Runner) Run(ctx context.Context, svc Interviewer, profile core.CandidateProfile, script Script) (Result, error) {
	metrics := map[string]float64{
		"turns_total":       0,
		"questions_asked":   0,
		"duration_ms_total": 0,
	}

	start, err := svc.Start(ctx, profile)
	if err != nil {
		return Result{}, fmt.Errorf("start interview: %w", err)
	}
	res := Result{SessionID: start.SessionID, Greeting: start.Utterance, Metrics: metrics}

	maxTurns := r.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	phase := start.Phase
	perPhase := map[core.Phase]int{}
	for turn := 0; turn < maxTurns; turn++ {
		answer := script.Answer(phase, perPhase[phase])
		if answer == "" {
			return res, fmt.Errorf("script has no answer for phase %s", phase)
		}

		began := time.Now()
		out, err := svc.Advance(ctx, res.SessionID, answer)
		if err != nil {
			return res, fmt.Errorf("turn %d: %w", turn+1, err)
		}
		metrics["duration_ms_total"] += float64(time.Since(began).Milliseconds())
		metrics["turns_total"]++
		metrics["phase_"+string(phase)]++
		if out.Question != nil {
			metrics["questions_asked"]++
		}

		ex := Exchange{Phase: phase, Candidate: answer, Interviewer: out.Utterance, Question: out.Question}
		res.Exchanges = append(res.Exchanges, ex)
		if r.OnExchange != nil {
			r.OnExchange(ex)
		}

		perPhase[phase]++
		if out.Complete {
			return res, nil
		}
		phase = out.Phase
	}
	return res, fmt.Errorf("%w after %d turns", ErrUnfinished, maxTurns)
}

// Candidate returns a two-project profile used by simulations and tests.
func Candidate() core.CandidateProfile {
	return core.CandidateProfile{
		Name:      "Priya Raman",
		GPA:       8.4,
		Education: "B.Tech in Computer Science",
		Projects: []core.ProjectRecord{
			{Title: "Traffic Sign Detector", Content: "Fine-tuned YOLOv8 on Indian traffic signs and deployed it on a Jetson Nano."},
			{Title: "Hindi-English Translator", Content: "Transformer sequence-to-sequence model with SentencePiece, evaluated with BLEU."},
		},
		Sections: map[string]string{
			core.SectionProjects:        "Traffic Sign Detector (YOLOv8, ONNX)\nHindi-English Translator (Transformer, BLEU)",
			core.SectionTechnicalSkills: "Python, PyTorch, OpenCV, scikit-learn",
		},
		Topics: []string{"Computer Vision", "Natural Language Processing"},
	}
}
