package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/interviewer/core"
)

func TestMockLLM_GenerateUtterance(t *testing.T) {
	m := NewWithMode(ModeMock)

	out, err := m.GenerateUtterance(context.Background(), core.UtteranceRequest{
		Action:        core.ActionGreet,
		CandidateName: "Ada Lovelace",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
}

func TestMockLLM_GradeAnswer(t *testing.T) {
	m := NewWithMode(ModeMock)
	ctx := context.Background()
	question := "Explain the bias-variance tradeoff in machine learning?"

	tests := []struct {
		name   string
		answer string
		want   core.Correctness
	}{
		{"no answer", "I don't know", core.Incorrect},
		{"short and off topic", "pizza", core.Incorrect},
		{
			"thorough",
			"The bias variance tradeoff in machine learning says that a model with high bias underfits while high variance overfits, " +
				"so we balance model complexity using regularization, cross validation and more data to minimise total expected error on unseen samples.",
			core.Correct,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, err := m.GradeAnswer(ctx, question, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, grade.Correctness)
			assert.GreaterOrEqual(t, grade.Score, 0.0)
			assert.LessOrEqual(t, grade.Score, 10.0)
		})
	}
}

func TestMockLLM_GradeProjectDiscussion(t *testing.T) {
	m := NewWithMode(ModeMock)

	grade, err := m.GradeProjectDiscussion(context.Background(), "Ada", []core.Turn{
		{Role: core.RoleInterviewer, Text: "What does it do?"},
		{Role: core.RoleCandidate, Text: "It detects pedestrians in dashcam video using a fine tuned YOLO model on our own labelled data"},
		{Role: core.RoleCandidate, Text: "Not sure"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, grade.Clarity)
	assert.NotEmpty(t, grade.Strengths)
	assert.NotEmpty(t, grade.Weaknesses)

	empty, err := m.GradeProjectDiscussion(context.Background(), "Ada", nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Detail)
	assert.Zero(t, empty.Clarity)
}

func TestMockLLM_ExtractTopics(t *testing.T) {
	m := NewWithMode(ModeMock)
	allowed := []string{"Fundamentals & Theory", "Computer Vision", "Natural Language Processing"}

	topics, err := m.ExtractTopics(context.Background(), core.CandidateProfile{
		Fingerprint: "Built a YOLO object detection pipeline and a BERT text classifier",
	}, allowed)
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Vision", "Natural Language Processing"}, topics)
}

func TestMockLLM_FailMode(t *testing.T) {
	m := NewWithMode(ModeFail)
	ctx := context.Background()

	_, err := m.GenerateUtterance(ctx, core.UtteranceRequest{Action: core.ActionGreet})
	assert.ErrorIs(t, err, ErrMockFailure)
	_, err = m.GradeAnswer(ctx, "q", "a")
	assert.ErrorIs(t, err, ErrMockFailure)
	_, err = m.Recommend(ctx, core.RecommendationRequest{Kind: core.RecommendFactual})
	assert.ErrorIs(t, err, ErrMockFailure)
}

func TestNewMockLLMReadsMode(t *testing.T) {
	t.Setenv("LLM_MODE", ModeFail)
	assert.Equal(t, ModeFail, NewMockLLM().mode)

	t.Setenv("LLM_MODE", "")
	assert.Equal(t, ModeMock, NewMockLLM().mode)
}
