package mock

import (
	"context"
	"errors"
	"math"
	"os"
	"strings"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/llm"
)

const (
	// ModeMock answers every call deterministically.
	ModeMock = "mock"
	// ModeFail fails every call, for exercising fallbacks.
	ModeFail = "fail"
)

var ErrMockFailure = errors.New("mock backend failure")

// topicKeywords drive ExtractTopics.
var topicKeywords = map[string][]string{
	"Computer Vision":                   {"vision", "image", "cnn", "yolo", "detection", "segmentation", "opencv", "resnet"},
	"Natural Language Processing":       {"nlp", "language", "text", "bert", "transformer", "llm", "translation", "token"},
	"Neural Networks & Deep Learning":   {"neural", "deep", "pytorch", "tensorflow", "keras", "lstm", "rnn", "backprop"},
	"Ensemble Methods":                  {"xgboost", "random forest", "boosting", "bagging", "ensemble", "lightgbm"},
	"Autoencoders & Generative Models":  {"gan", "autoencoder", "diffusion", "generative", "vae"},
	"Data Preprocessing & Augmentation": {"pandas", "preprocessing", "augmentation", "cleaning", "etl", "feature engineering"},
	"Model Evaluation & Metrics":        {"metric", "accuracy", "precision", "recall", "f1", "auc", "evaluation"},
	"Math - Vectors & Matrices":         {"linear algebra", "matrix", "matrices", "vector", "eigen", "svd"},
	"Fundamentals & Theory":             {"regression", "classification", "scikit", "sklearn", "statistics", "machine learning"},
}

// MockLLM implements every llm port without a network.
type MockLLM struct {
	mode string
}

var _ llm.Ports = (*MockLLM)(nil)

// NewMockLLM reads the mode from LLM_MODE, defaulting to ModeMock.
func NewMockLLM() *MockLLM {
	mode := os.Getenv("LLM_MODE")
	if mode == "" {
		mode = ModeMock
	}
	return NewWithMode(mode)
}

func NewWithMode(mode string) *MockLLM {
	return &MockLLM{mode: mode}
}

func (m *MockLLM) fail() error {
	if m.mode == ModeFail {
		return ErrMockFailure
	}
	return nil
}

// GenerateUtterance returns the scripted line for the request.
func (m *MockLLM) GenerateUtterance(ctx context.Context, req core.UtteranceRequest) (string, error) {
	if err := m.fail(); err != nil {
		return "", err
	}
	return llm.Scripted(req), nil
}

// GradeAnswer scores by how much of the question's vocabulary the answer
// uses and by its length. "I don't know" scores zero.
func (m *MockLLM) GradeAnswer(ctx context.Context, question, answer string) (core.AnswerGrade, error) {
	if err := m.fail(); err != nil {
		return core.AnswerGrade{}, err
	}

	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" || strings.Contains(a, "don't know") || strings.Contains(a, "dont know") {
		return core.AnswerGrade{
			Score:         0,
			Correctness:   core.Incorrect,
			Justification: "The candidate did not answer the question.",
		}, nil
	}

	keys := keywords(question)
	answerWords := strings.Fields(a)
	hits := 0
	for _, k := range keys {
		if strings.Contains(a, k) {
			hits++
		}
	}
	overlap := 0.0
	if len(keys) > 0 {
		overlap = float64(hits) / float64(len(keys))
	}
	length := math.Min(float64(len(answerWords)), 40) / 40

	score := math.Round((overlap*6+length*4)*10) / 10
	grade := core.AnswerGrade{
		Score:             score,
		ExpectedKeyPoints: keys,
	}
	switch {
	case score >= 8:
		grade.Correctness = core.Correct
		grade.Justification = "The answer covers the key points of the question."
	case score >= 4:
		grade.Correctness = core.PartiallyCorrect
		grade.Justification = "The answer has the right idea but misses some key points."
	default:
		grade.Correctness = core.Incorrect
		grade.Justification = "The answer does not address the key points of the question."
	}
	return grade, nil
}

// GradeProjectDiscussion scores detail by total words and clarity by the
// share of substantial candidate answers.
func (m *MockLLM) GradeProjectDiscussion(ctx context.Context, candidateName string, transcript []core.Turn) (core.ProjectGrade, error) {
	if err := m.fail(); err != nil {
		return core.ProjectGrade{}, err
	}

	words, answers, substantial := 0, 0, 0
	for _, t := range transcript {
		if t.Role != core.RoleCandidate {
			continue
		}
		n := len(strings.Fields(t.Text))
		words += n
		answers++
		if n >= 12 {
			substantial++
		}
	}

	detail := math.Min(10, float64(words)/30)
	clarity := 0.0
	if answers > 0 {
		clarity = 10 * float64(substantial) / float64(answers)
	}
	socratic := (detail + clarity) / 2

	grade := core.ProjectGrade{
		Detail:                 round1(detail),
		Clarity:                round1(clarity),
		Socratic:               round1(socratic),
		DetailJustification:    "Scored from the amount of detail in the candidate's answers.",
		ClarityJustification:   "Scored from how many answers were more than a few words.",
		SocraticJustification:  "Average of detail and clarity.",
		ImprovementSuggestions: []string{"Explain the reasoning behind each design decision."},
	}
	if substantial > 0 {
		grade.Strengths = []string{"Gave substantial answers to follow-up questions."}
	}
	if substantial < answers {
		grade.Weaknesses = []string{"Some answers were too short to show understanding."}
	}
	return grade, nil
}

// ExtractTopics returns allowed topics whose keywords appear in the resume.
func (m *MockLLM) ExtractTopics(ctx context.Context, profile core.CandidateProfile, allowed []string) ([]string, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}

	text := strings.ToLower(profile.FingerprintText())
	var out []string
	for _, topic := range allowed {
		for _, k := range topicKeywords[topic] {
			if strings.Contains(text, k) {
				out = append(out, topic)
				break
			}
		}
	}
	return out, nil
}

func (m *MockLLM) Recommend(ctx context.Context, req core.RecommendationRequest) ([]string, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	if req.Kind == core.RecommendProject {
		return []string{
			"Practice explaining why you chose each component of your project.",
			"Prepare concrete numbers for your project's results and limitations.",
		}, nil
	}
	return []string{
		"Review the questions you missed and the key points listed for them.",
		"Practice explaining core ML concepts out loud in two or three sentences.",
	}, nil
}

var stopwords = map[string]bool{
	"what": true, "which": true, "when": true, "where": true, "explain": true, "describe": true,
	"does": true, "with": true, "from": true, "that": true, "this": true, "have": true,
	"your": true, "would": true, "should": true, "between": true, "difference": true, "about": true,
}

// keywords are the question's distinct words longer than three letters.
func keywords(question string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(w) <= 3 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
