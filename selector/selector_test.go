package selector

import (
	"context"
	"strings"
	"testing"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/embeddings"
	"github.com/snow-ghost/interviewer/kb"
	"github.com/snow-ghost/interviewer/relevance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallBank(t *testing.T) *kb.Bank {
	t.Helper()
	b, err := kb.New([]kb.Topic{
		{Name: "A", Questions: []string{"a1", "a2", "a3"}},
		{Name: "B", Questions: []string{"b1", "b2"}},
		{Name: "C", Questions: []string{"c1 vision", "c2"}},
		{Name: "D", Questions: []string{"d1"}},
	})
	require.NoError(t, err)
	return b
}

// keywordScorer gives 0.9 to questions containing the fingerprint and 0.1 otherwise.
type keywordScorer struct{}

func (keywordScorer) Score(_ context.Context, fp string, items []relevance.Item) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		if strings.Contains(it.Question, fp) {
			out[i] = 0.9
		} else {
			out[i] = 0.1
		}
	}
	return out
}

func TestSelectWithoutFingerprintUsesBankOrder(t *testing.T) {
	s := New(smallBank(t), keywordScorer{}, nil)

	sel := s.Select(context.Background(), Request{TopicsOfInterest: []string{"B", "C"}})
	assert.Equal(t, "B", sel.Topic)
	assert.Equal(t, "b1", sel.Question)
	assert.Nil(t, sel.Score)
	assert.Nil(t, sel.MaxSimilarity)
	assert.Equal(t, "Selected from B topic", sel.Reason)
	assert.Equal(t, []string{"B", "C"}, sel.MatchedTopics)
}

func TestSelectPrefersUnaskedTopics(t *testing.T) {
	s := New(smallBank(t), nil, nil)

	// B already covered once; C and the rest of B remain.
	sel := s.Select(context.Background(), Request{Asked: []string{"b1"}, TopicsOfInterest: []string{"B", "C"}})
	assert.Equal(t, "C", sel.Topic)
	assert.Equal(t, "c1 vision", sel.Question)
}

func TestSelectPrefersOnceCoveredTopics(t *testing.T) {
	s := New(smallBank(t), nil, nil)

	sel := s.Select(context.Background(), Request{
		Asked:            []string{"a1", "a2", "b1"},
		TopicsOfInterest: []string{"A", "B"},
	})
	assert.Equal(t, "b2", sel.Question)
}

func TestSelectRanksWithinDiversityConstraint(t *testing.T) {
	s := New(smallBank(t), keywordScorer{}, nil)

	t.Run("relevance inside unasked topics", func(t *testing.T) {
		sel := s.Select(context.Background(), Request{
			TopicsOfInterest: []string{"A", "C"},
			Fingerprint:      "vision",
		})
		assert.Equal(t, "c1 vision", sel.Question)
		require.NotNil(t, sel.Score)
		assert.Equal(t, 0.9, *sel.Score)
		assert.Equal(t, 0.9, *sel.MaxSimilarity)
		assert.Equal(t, "Matched based on C expertise in resume", sel.Reason)
	})

	t.Run("diversity beats relevance", func(t *testing.T) {
		sel := s.Select(context.Background(), Request{
			Asked:            []string{"c2"},
			TopicsOfInterest: []string{"A", "C"},
			Fingerprint:      "vision",
		})
		assert.Equal(t, "A", sel.Topic)
		assert.Equal(t, "a1", sel.Question, "ties keep bank order")
		assert.Equal(t, 0.1, *sel.Score)
		assert.Equal(t, 0.9, *sel.MaxSimilarity)
	})

	t.Run("all covered twice takes global best", func(t *testing.T) {
		sel := s.Select(context.Background(), Request{
			Asked:            []string{"a1"},
			TopicsOfInterest: []string{"A", "B", "C"},
			Fingerprint:      "vision",
			Covered:          map[string]int{"A": 2, "B": 2, "C": 3},
		})
		assert.Equal(t, "c1 vision", sel.Question)
	})
}

func TestSelectWidensToWholeBank(t *testing.T) {
	s := New(smallBank(t), nil, nil)

	sel := s.Select(context.Background(), Request{Asked: []string{"d1"}, TopicsOfInterest: []string{"D"}})
	assert.Equal(t, "a1", sel.Question)
	assert.False(t, sel.Fallback)

	sel = s.Select(context.Background(), Request{})
	assert.Equal(t, "a1", sel.Question, "empty topics of interest use the whole bank")
}

func TestSelectDefaultWhenExhausted(t *testing.T) {
	b := smallBank(t)
	s := New(b, keywordScorer{}, nil)

	var all []string
	for _, e := range b.Entries() {
		all = append(all, e.Question)
	}

	for i := 0; i < 2; i++ {
		sel := s.Select(context.Background(), Request{Asked: all, TopicsOfInterest: []string{"A"}, Fingerprint: "x"})
		assert.Equal(t, kb.DefaultTopic, sel.Topic)
		assert.Equal(t, kb.DefaultQuestion, sel.Question)
		assert.Equal(t, "Default fallback question", sel.Reason)
		assert.True(t, sel.Fallback)
		assert.Nil(t, sel.Score)
	}
}

func runSelections(s *Selector, topics []string, fp string, n int) []core.Selection {
	var asked []string
	var out []core.Selection
	for i := 0; i < n; i++ {
		sel := s.Select(context.Background(), Request{Asked: asked, TopicsOfInterest: topics, Fingerprint: fp})
		asked = append(asked, sel.Question)
		out = append(out, sel)
	}
	return out
}

func TestFirstThreeSelectionsCoverDistinctTopics(t *testing.T) {
	bank := kb.Default()
	topics := []string{"Fundamentals & Theory", "Computer Vision", "Natural Language Processing"}
	fingerprints := []string{
		"",
		"Built a convolutional object detector for traffic cameras",
		"Fine-tuned transformer language models for translation and summarisation",
	}

	for _, fp := range fingerprints {
		s := New(bank, relevance.NewScorer(embeddings.NewMockEmbedder(256)), nil)
		sels := runSelections(s, topics, fp, 3)

		seen := map[string]bool{}
		for _, sel := range sels {
			seen[sel.Topic] = true
		}
		assert.Len(t, seen, 3, "fingerprint %q", fp)
	}
}

func TestSelectionsNeverRepeatUntilExhausted(t *testing.T) {
	bank := smallBank(t)
	s := New(bank, keywordScorer{}, nil)

	sels := runSelections(s, []string{"A", "C"}, "vision", bank.Len())
	seen := map[string]bool{}
	for _, sel := range sels {
		assert.False(t, seen[sel.Question], "repeated %q", sel.Question)
		seen[sel.Question] = true
		assert.False(t, sel.Fallback)
	}
	assert.Len(t, seen, bank.Len())
}

func TestSelectIsDeterministic(t *testing.T) {
	bank := kb.Default()
	scorer := relevance.NewScorer(embeddings.NewMockEmbedder(256))
	req := Request{
		Asked:            []string{bank.Questions("Computer Vision")[0]},
		TopicsOfInterest: []string{"Computer Vision", "Ensemble Methods", "Fundamentals & Theory"},
		Fingerprint:      "gradient boosted trees for churn prediction",
	}

	first := New(bank, scorer, nil).Select(context.Background(), req)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, New(bank, scorer, nil).Select(context.Background(), req))
	}
}

func TestSelectUsesProvidedCoverage(t *testing.T) {
	s := New(smallBank(t), nil, nil)
	sel := s.Select(context.Background(), Request{
		TopicsOfInterest: []string{"A", "B"},
		Covered:          map[string]int{"A": 1},
	})
	assert.Equal(t, "B", sel.Topic)
}
