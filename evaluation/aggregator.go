// Package evaluation turns a finished transcript into a weighted report:
// the pure aggregation rules, the evaluator that grades a session, and the
// background runner that evaluates completed sessions off the turn path.
package evaluation

import (
	"math"

	"github.com/snow-ghost/interviewer/core"
)

// Weights of the two sections in the final score.
const (
	ProjectWeight = 0.6
	FactualWeight = 0.4
)

type band struct {
	min   float64
	level string
}

var bands = []band{
	{9, "Exceptional"},
	{8, "Excellent"},
	{7, "Good"},
	{6, "Satisfactory"},
	{5, "Needs Improvement"},
}

const lowestBand = "Poor"

// Band maps a 0-10 score to its performance level. Lower bounds are inclusive.
func Band(score float64) string {
	for _, b := range bands {
		if score >= b.min {
			return b.level
		}
	}
	return lowestBand
}

// AggregateProject averages the three project metrics.
func AggregateProject(g core.ProjectGrade) core.ProjectEvaluation {
	return core.ProjectEvaluation{
		ProjectGrade: g,
		Overall:      round(clamp(g.Detail)+clamp(g.Clarity)+clamp(g.Socratic), 2, 3),
	}
}

// AggregateFactual scores graded answers. Ungraded answers stay in the
// denominator with a score of 0.
func AggregateFactual(answers []core.GradedAnswer) core.FactualEvaluation {
	ev := core.FactualEvaluation{
		TotalQuestions: len(answers),
		Counts:         make(map[core.Correctness]int, 4),
		Answers:        answers,
	}
	for _, c := range core.Correctnesses() {
		ev.Counts[c] = 0
	}
	if len(answers) == 0 {
		ev.NoAnswers = true
		ev.Answers = []core.GradedAnswer{}
		return ev
	}

	var sum float64
	for _, a := range answers {
		if a.Ungraded {
			ev.Ungraded++
			continue
		}
		sum += clamp(a.Score)
		if a.Correctness.Valid() {
			ev.Counts[a.Correctness]++
		}
	}
	ev.Score = round(sum, 2, len(answers))
	ev.AccuracyRate = round(float64(ev.Counts[core.Correct])*100, 1, max(len(answers), 1))
	return ev
}

// Final weighs the section scores and returns the rounded score and its band.
func Final(projectOverall, factualScore float64) (float64, string) {
	score := math.Round((ProjectWeight*projectOverall+FactualWeight*factualScore)*100) / 100
	return score, Band(score)
}

// round divides sum by n and rounds to the given number of decimals.
func round(sum float64, decimals, n int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(sum/float64(n)*p) / p
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 10:
		return 10
	}
	return v
}
