package evaluation

import (
	"fmt"
	"strings"

	"github.com/snow-ghost/interviewer/core"
)

// Summary renders a report as short plain text.
func Summary(r core.EvaluationReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Final score: %.1f/10 (%s)\n", r.FinalScore, r.PerformanceLevel)

	switch {
	case r.Project.NotDiscussed:
		sb.WriteString("Project discussion: not discussed\n")
	case r.Project.Ungraded:
		sb.WriteString("Project discussion: could not be graded\n")
	default:
		fmt.Fprintf(&sb, "Project discussion: %.1f (detail %.0f, clarity %.0f, depth %.0f)\n",
			r.Project.Overall, r.Project.Detail, r.Project.Clarity, r.Project.Socratic)
	}

	f := r.Factual
	if f.NoAnswers {
		sb.WriteString("Technical questions: none answered\n")
	} else {
		fmt.Fprintf(&sb, "Technical questions: %.1f, %d/%d correct (%.1f%%)\n",
			f.Score, f.Counts[core.Correct], f.TotalQuestions, f.AccuracyRate)
	}

	recs := append(append([]string(nil), r.Project.Recommendations...), f.Recommendations...)
	if len(recs) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, rec := range recs {
			sb.WriteString("- " + rec + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
