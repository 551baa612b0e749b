// Package selector picks the next factual question: diversity across topics
// first, relevance to the candidate's background second.
package selector

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/kb"
	"github.com/snow-ghost/interviewer/relevance"
	"go.uber.org/zap"
)

// Scorer returns one similarity per item in input order and never fails.
type Scorer interface {
	Score(ctx context.Context, fingerprint string, items []relevance.Item) []float64
}

// Request is the selector's whole input; selection keeps no state between calls.
type Request struct {
	Asked            []string
	TopicsOfInterest []string
	// Fingerprint enables relevance ranking when non-empty.
	Fingerprint string
	// Covered is derived from Asked when nil.
	Covered map[string]int
}

type Selector struct {
	bank   *kb.Bank
	scorer Scorer
	logger *zap.Logger
}

// New returns a selector. A nil scorer disables ranking.
func New(bank *kb.Bank, scorer Scorer, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{bank: bank, scorer: scorer, logger: logger}
}

type candidate struct {
	entry kb.Entry
	score float64
}

// Select returns the next question for req.
func (s *Selector) Select(ctx context.Context, req Request) core.Selection {
	matched := append([]string{}, req.TopicsOfInterest...)

	pool := s.pool(req)
	if len(pool) == 0 {
		s.logger.Debug("question bank exhausted, using default question")
		return core.Selection{
			Topic:         kb.DefaultTopic,
			Question:      kb.DefaultQuestion,
			Reason:        "Default fallback question",
			MatchedTopics: matched,
			Fallback:      true,
		}
	}

	scored := req.Fingerprint != "" && s.scorer != nil
	var maxSim float64
	if scored {
		items := make([]relevance.Item, len(pool))
		for i, c := range pool {
			items[i] = relevance.Item{Topic: c.entry.Topic, Question: c.entry.Question}
		}
		scores := s.scorer.Score(ctx, req.Fingerprint, items)
		maxSim = math.Inf(-1)
		for i := range pool {
			if i < len(scores) {
				pool[i].score = round3(scores[i])
			}
			maxSim = math.Max(maxSim, pool[i].score)
		}
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })
	}

	covered := req.Covered
	if covered == nil {
		covered = core.Session{QuestionsAsked: req.Asked}.TopicsCovered(s.bank)
	}
	pick := diversify(pool, req.TopicsOfInterest, covered)

	sel := core.Selection{
		Topic:         pick.entry.Topic,
		Question:      pick.entry.Question,
		MatchedTopics: matched,
	}
	if scored {
		score, max := pick.score, maxSim
		sel.Score = &score
		sel.MaxSimilarity = &max
		sel.Reason = fmt.Sprintf("Matched based on %s expertise in resume", pick.entry.Topic)
	} else {
		sel.Reason = fmt.Sprintf("Selected from %s topic", pick.entry.Topic)
	}
	return sel
}

// pool lists unasked questions of the topics of interest in bank order,
// widening to the whole bank when none are left.
func (s *Selector) pool(req Request) []candidate {
	asked := make(map[string]bool, len(req.Asked))
	for _, q := range req.Asked {
		asked[q] = true
	}
	wanted := make(map[string]bool, len(req.TopicsOfInterest))
	for _, t := range req.TopicsOfInterest {
		wanted[t] = true
	}

	entries := s.bank.Entries()
	var pool []candidate
	for _, e := range entries {
		if wanted[e.Topic] && !asked[e.Question] {
			pool = append(pool, candidate{entry: e})
		}
	}
	if len(pool) > 0 {
		return pool
	}
	for _, e := range entries {
		if !asked[e.Question] {
			pool = append(pool, candidate{entry: e})
		}
	}
	return pool
}

// diversify takes the best-ranked question from a topic of interest not yet
// asked, then from one asked exactly once, else the best overall.
func diversify(ranked []candidate, topics []string, covered map[string]int) candidate {
	var unasked, once map[string]bool
	for _, t := range topics {
		switch covered[t] {
		case 0:
			if unasked == nil {
				unasked = make(map[string]bool)
			}
			unasked[t] = true
		case 1:
			if once == nil {
				once = make(map[string]bool)
			}
			once[t] = true
		}
	}

	restrict := once
	if len(unasked) > 0 {
		restrict = unasked
	}
	for _, c := range ranked {
		if restrict[c.entry.Topic] {
			return c
		}
	}
	return ranked[0]
}

func round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*1000) / 1000
}
