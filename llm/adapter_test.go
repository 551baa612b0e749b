package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/interviewer/core"
)

// recorder answers with reply and keeps every request it saw.
type recorder struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []Request
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Complete(ctx context.Context, req Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.reply, r.err
}

func (r *recorder) last() Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func TestGenerateUtterance(t *testing.T) {
	project := &core.ProjectRecord{Title: "Lane Detector", Content: "CNN lane detection"}
	question := &core.Selection{Topic: "Computer Vision", Question: "What is a convolution?"}
	transcript := []core.Turn{
		{Role: core.RoleInterviewer, Text: "hello", Phase: core.PhaseGreeting},
		{Role: core.RoleCandidate, Text: "yes", Phase: core.PhaseGreeting},
		{Role: core.RoleInterviewer, Text: "Tell me about Lane Detector", Phase: core.PhaseProject1},
		{Role: core.RoleCandidate, Text: "It finds lanes", Phase: core.PhaseProject1},
	}

	tests := []struct {
		name         string
		req          core.UtteranceRequest
		wantSystem   []string
		wantMessages int
		wantMax      int
	}{
		{
			name:         "greeting",
			req:          core.UtteranceRequest{Action: core.ActionGreet, CandidateName: "Ada Lovelace", ResumeSummary: "Education: CS"},
			wantSystem:   []string{"GREETING", "Nova", "Acme"},
			wantMessages: 1,
			wantMax:      400,
		},
		{
			name: "project follow up replays only the phase",
			req: core.UtteranceRequest{Action: core.ActionProjectFollowUp, Phase: core.PhaseProject1,
				Project: project, ProjectNumber: 1, ProjectTotal: 2, Transcript: transcript},
			wantSystem:   []string{"FDR", "Lane Detector", "project 1 of 2"},
			wantMessages: 2,
			wantMax:      250,
		},
		{
			name:         "academic uses gpa context",
			req:          core.UtteranceRequest{Action: core.ActionAcademic, GPA: 7.2, Education: "B.Tech"},
			wantSystem:   []string{"below 8.0", "B.Tech"},
			wantMessages: 1,
			wantMax:      200,
		},
		{
			name:         "factual follow up asks the next question",
			req:          core.UtteranceRequest{Action: core.ActionFactualFollowUp, Phase: core.PhaseFactual, Question: question},
			wantSystem:   []string{"What is a convolution?", "Computer Vision"},
			wantMessages: 1,
			wantMax:      300,
		},
		{
			name:         "wrap up",
			req:          core.UtteranceRequest{Action: core.ActionWrapUp, Phase: core.PhaseFactual},
			wantSystem:   []string{"wrap up the interview"},
			wantMessages: 1,
			wantMax:      300,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{reply: "**Great**, let's go."}
			a := NewAdapter(rec, WithPersona(Persona{Name: "Nova", Company: "Acme"}))

			out, err := a.GenerateUtterance(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, "Great, let's go.", out)

			req := rec.last()
			for _, s := range tt.wantSystem {
				assert.Contains(t, req.System, s)
			}
			assert.Len(t, req.Messages, tt.wantMessages)
			assert.Equal(t, tt.wantMax, req.MaxTokens)
			assert.Equal(t, CapabilityGenerate, req.Capability)
		})
	}
}

func TestGenerateUtteranceHistoryRoles(t *testing.T) {
	rec := &recorder{reply: "ok"}
	a := NewAdapter(rec)

	_, err := a.GenerateUtterance(context.Background(), core.UtteranceRequest{
		Action: core.ActionGreetingFollowUp,
		Phase:  core.PhaseGreeting,
		Transcript: []core.Turn{
			{Role: core.RoleInterviewer, Text: "hi", Phase: core.PhaseGreeting},
			{Role: core.RoleCandidate, Text: "what is this?", Phase: core.PhaseGreeting},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{Role: RoleAssistant, Content: "hi"},
		{Role: RoleUser, Content: "what is this?"},
	}, rec.last().Messages)
}

func TestGenerateUtteranceErrors(t *testing.T) {
	_, err := NewAdapter(&recorder{reply: "x"}).GenerateUtterance(context.Background(), core.UtteranceRequest{Action: "dance"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = NewAdapter(&recorder{reply: "  "}).GenerateUtterance(context.Background(), core.UtteranceRequest{Action: core.ActionGreet})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	boom := errors.New("boom")
	_, err = NewAdapter(&recorder{err: boom}).GenerateUtterance(context.Background(), core.UtteranceRequest{Action: core.ActionGreet})
	assert.ErrorIs(t, err, boom)
}

func TestGradeAnswer(t *testing.T) {
	rec := &recorder{reply: `{"score": 8, "correctness": "correct", "justification": "ok"}`}
	a := NewAdapter(rec)

	grade, err := a.GradeAnswer(context.Background(), "What is dropout?", "Randomly zeroing activations")
	require.NoError(t, err)
	assert.Equal(t, 8.0, grade.Score)

	req := rec.last()
	assert.True(t, req.JSON)
	assert.Equal(t, CapabilityGradeAnswer, req.Capability)
	assert.InDelta(t, 0.2, req.Temperature, 1e-6)
	assert.Contains(t, req.Messages[0].Content, "Randomly zeroing activations")
}

func TestGradeProjectDiscussionTruncatesOldestLines(t *testing.T) {
	rec := &recorder{reply: `{"detail_level": 5, "clarity": 5, "socrates_metric": 5}`}
	a := NewAdapter(rec, WithTranscriptLimit(20))

	turns := []core.Turn{
		{Role: core.RoleInterviewer, Text: strings.Repeat("old ", 100)},
		{Role: core.RoleCandidate, Text: "recent answer"},
	}
	_, err := a.GradeProjectDiscussion(context.Background(), "Ada", turns)
	require.NoError(t, err)

	user := rec.last().Messages[0].Content
	assert.Contains(t, user, "CANDIDATE: recent answer")
	assert.NotContains(t, user, "INTERVIEWER: old")
}

func TestExtractTopics(t *testing.T) {
	rec := &recorder{reply: "Computer Vision, - Natural Language Processing,\nEnsemble Methods."}
	a := NewAdapter(rec)

	topics, err := a.ExtractTopics(context.Background(), core.CandidateProfile{Fingerprint: "YOLO"},
		[]string{"Computer Vision", "Natural Language Processing", "Ensemble Methods"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Vision", "Natural Language Processing", "Ensemble Methods"}, topics)
	assert.Contains(t, rec.last().System, "- Ensemble Methods")
}

func TestRecommend(t *testing.T) {
	rec := &recorder{reply: `{"recommendations": ["Review dropout"]}`}
	a := NewAdapter(rec)

	recs, err := a.Recommend(context.Background(), core.RecommendationRequest{
		Kind:       core.RecommendFactual,
		Evaluation: map[string]float64{"score": 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Review dropout"}, recs)
	assert.Contains(t, rec.last().Messages[0].Content, `"score": 4`)

	_, err = a.Recommend(context.Background(), core.RecommendationRequest{Kind: "other"})
	assert.Error(t, err)
}

func TestFormatTranscript(t *testing.T) {
	got := FormatTranscript([]core.Turn{
		{Role: core.RoleInterviewer, Text: "Q"},
		{Role: core.RoleCandidate, Text: "A"},
	})
	assert.Equal(t, "INTERVIEWER: Q\nCANDIDATE: A", got)
}
