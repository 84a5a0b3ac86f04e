package evaluation

import (
	"fmt"
	"strings"
)

// Summary renders an evaluation as plain text for terminals and logs.
func Summary(ev Evaluation) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("CANDIDATE EVALUATION SUMMARY")
	line("%s", strings.Repeat("=", 40))
	line("Overall Assessment: %s", ev.Overall.Level)
	line("Recommendation: %s", ev.Overall.Recommendation)
	line("")
	line("TECHNICAL COMPETENCE:")
	line("Score: %.1f/100", ev.Technical.Score)
	line("Level: %s", ev.Technical.Level)
	if len(ev.Technical.Strengths) > 0 {
		line("Strengths: %s", strings.Join(ev.Technical.Strengths, ", "))
	}
	if len(ev.Technical.Weaknesses) > 0 {
		line("Areas for Improvement: %s", strings.Join(ev.Technical.Weaknesses, ", "))
	}

	line("")
	line("COMMUNICATION SKILLS:")
	line("Score: %.1f/100", ev.Communication.Score)
	line("Assessment: %s", ev.Communication.Assessment)
	line("")
	line("PROBLEM SOLVING:")
	line("Score: %.1f/100", ev.ProblemSolving.Score)
	line("Assessment: %s", ev.ProblemSolving.Assessment)
	line("")
	line("LEARNING POTENTIAL:")
	line("Score: %.1f/100", ev.Learning.Score)
	line("Assessment: %s", ev.Learning.Assessment)
	line("")
	line("ROLE SUITABILITY:")
	for _, rs := range ev.Roles.Scores {
		line("%s: %.1f%%", rs.Role, rs.Score)
	}
	line("Best Fit: %s", ev.Roles.BestFitRole)
	line("")
	line("HIRING RECOMMENDATION:")
	line("Decision: %s", ev.Hiring.Decision)
	line("Confidence: %.0f%%", ev.Hiring.Confidence*100)
	if len(ev.Hiring.Concerns) > 0 {
		line("Concerns:")
		for _, c := range ev.Hiring.Concerns {
			line("  - %s", c)
		}
	}
	line("")
	line("NEXT STEPS:")
	for _, s := range ev.Hiring.NextSteps {
		line("  - %s", s)
	}

	return strings.TrimRight(b.String(), "\n")
}
