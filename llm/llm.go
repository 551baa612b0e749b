// Package llm adapts a chat-completion backend to the interviewer's
// generation and grading ports.
package llm

import (
	"context"
	"errors"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/pkg/limiter"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Capability names key rate limits, breakers and metrics.
const (
	CapabilityGenerate      = "generate"
	CapabilityGradeAnswer   = "grade_answer"
	CapabilityGradeProject  = "grade_project"
	CapabilityExtractTopics = "extract_topics"
	CapabilityRecommend     = "recommend"
)

var ErrEmptyResponse = errors.New("empty completion")

type Message struct {
	Role    string
	Content string
}

// Request is one chat completion call.
type Request struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	// JSON asks the backend for a JSON object response when it supports one.
	JSON       bool
	Capability string
}

// Completer is a chat-completion backend.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Ports is everything the interviewer needs from a language backend.
type Ports interface {
	core.UtteranceGenerator
	core.AnswerGrader
	core.ProjectGrader
	core.TopicExtractor
	core.Recommender
}

// Config selects and tunes the backend.
type Config struct {
	Provider string  `mapstructure:"provider" json:"provider"`
	Model    string  `mapstructure:"model" json:"model"`
	APIKey   string  `mapstructure:"api_key" json:"-"`
	BaseURL  string  `mapstructure:"base_url" json:"base_url"`
	Persona  Persona `mapstructure:"persona" json:"persona"`
	// TranscriptTokens bounds grading and recommendation transcripts.
	TranscriptTokens int                       `mapstructure:"transcript_tokens" json:"transcript_tokens"`
	Limits           limiter.Policy            `mapstructure:"limits" json:"limits"`
	Capabilities     map[string]limiter.Policy `mapstructure:"capabilities" json:"capabilities"`
}

func DefaultConfig() Config {
	return Config{
		Provider:         "mock",
		Model:            "gpt-4o-mini",
		Persona:          DefaultPersona(),
		TranscriptTokens: DefaultTranscriptTokens,
		Limits:           limiter.DefaultPolicy(),
	}
}
