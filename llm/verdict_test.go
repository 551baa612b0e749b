package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/interviewer/core"
)

func TestParseAnswerVerdict(t *testing.T) {
	t.Run("fenced json with extras", func(t *testing.T) {
		raw := "```json\n{\"score\": 7, \"correctness\": \"Partially Correct\", \"justification\": \" misses variance \"," +
			" \"expected_key_points\": [\"bias\", \"variance\"], \"appears_to_be_faking\": false}\n```"
		grade, err := ParseAnswerVerdict(raw)
		require.NoError(t, err)
		assert.Equal(t, 7.0, grade.Score)
		assert.Equal(t, core.PartiallyCorrect, grade.Correctness)
		assert.Equal(t, "misses variance", grade.Justification)
		assert.Equal(t, []string{"bias", "variance"}, grade.ExpectedKeyPoints)
	})

	t.Run("weakly typed values", func(t *testing.T) {
		grade, err := ParseAnswerVerdict(`{"score": "9.5", "correctness": "correct", "appears_to_be_faking": "false", "expected_key_points": "one point"}`)
		require.NoError(t, err)
		assert.Equal(t, 9.5, grade.Score)
		assert.False(t, grade.AppearsFaking)
		assert.Equal(t, []string{"one point"}, grade.ExpectedKeyPoints)
	})

	t.Run("bluffing implies faking", func(t *testing.T) {
		grade, err := ParseAnswerVerdict(`{"score": 1, "correctness": "faking"}`)
		require.NoError(t, err)
		assert.Equal(t, core.Bluffing, grade.Correctness)
		assert.True(t, grade.AppearsFaking)
	})

	malformed := map[string]string{
		"not json":       "I think it's fine",
		"missing score":  `{"correctness": "correct"}`,
		"null score":     `{"score": null, "correctness": "correct"}`,
		"score too high": `{"score": 11, "correctness": "correct"}`,
		"negative score": `{"score": -1, "correctness": "incorrect"}`,
		"unknown label":  `{"score": 5, "correctness": "meh"}`,
		"broken object":  `{"score": 5,`,
		"non numeric":    `{"score": "high", "correctness": "correct"}`,
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnswerVerdict(raw)
			assert.ErrorIs(t, err, ErrMalformedVerdict)
		})
	}
}

func TestParseProjectVerdict(t *testing.T) {
	raw := `Here is the evaluation:
{
  "detail_level": 8,
  "clarity": "7",
  "socrates_metric": 6.5,
  "detail_justification": "Mentioned 384-dim embeddings",
  "faking_detected": true,
  "faking_examples": ["cryptography notices differences"],
  "strengths": ["specific numbers"],
  "weaknesses": ["vague on scaling"],
  "improvement_suggestions": ["explain trade-offs"],
  "honesty_note": "Say I don't know instead"
}`
	grade, err := ParseProjectVerdict(raw)
	require.NoError(t, err)
	assert.Equal(t, 8.0, grade.Detail)
	assert.Equal(t, 7.0, grade.Clarity)
	assert.Equal(t, 6.5, grade.Socratic)
	assert.True(t, grade.FakingDetected)
	assert.Equal(t, []string{"cryptography notices differences"}, grade.FakingExamples)
	assert.Equal(t, "Say I don't know instead", grade.HonestyNote)

	_, err = ParseProjectVerdict(`{"detail_level": 8, "clarity": 7}`)
	assert.ErrorIs(t, err, ErrMalformedVerdict)

	_, err = ParseProjectVerdict(`{"detail_level": 8, "clarity": 7, "socrates_metric": 12}`)
	assert.ErrorIs(t, err, ErrMalformedVerdict)
}

func TestParseRecommendations(t *testing.T) {
	recs, err := ParseRecommendations(`{"recommendations": ["Review dropout", " ", "Practice BPTT"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Review dropout", "Practice BPTT"}, recs)

	_, err = ParseRecommendations(`{"recommendations": []}`)
	assert.ErrorIs(t, err, ErrMalformedVerdict)
}

func TestNormalizeCorrectness(t *testing.T) {
	assert.Equal(t, core.PartiallyCorrect, NormalizeCorrectness("partially-correct"))
	assert.Equal(t, core.Correct, NormalizeCorrectness(" CORRECT "))
	assert.Equal(t, core.Bluffing, NormalizeCorrectness("bluffing"))
	assert.Equal(t, core.Incorrect, NormalizeCorrectness("wrong"))
}
