package evaluation

import (
	"fmt"

	"github.com/spigell/candidate-assessor/internal/domain"
)

var domainAdvice = map[string]string{
	"python_programming": "Practice Python programming with focus on data structures and algorithms",
	"machine_learning":   "Study machine learning fundamentals and work on practical projects",
	"agentic_ai_systems": "Learn about agent architectures and multi-agent coordination patterns",
	"prompt_engineering": "Practice prompt design and learn advanced LLM interaction techniques",
}

type DomainLevel struct {
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
	Level  string  `json:"level"`
}

// DetailedFeedback is addressed to the candidate.
type DetailedFeedback struct {
	Strengths               []string      `json:"strengths"`
	AreasForImprovement     []string      `json:"areas_for_improvement"`
	DomainLevels            []DomainLevel `json:"domain_levels"`
	SpecificRecommendations []string      `json:"specific_recommendations"`
}

func detailedFeedback(report domain.InterviewReport) DetailedFeedback {
	fb := DetailedFeedback{
		Strengths:               append([]string{}, report.Strengths...),
		AreasForImprovement:     append([]string{}, report.Weaknesses...),
		DomainLevels:            make([]DomainLevel, 0, len(report.DomainScores)),
		SpecificRecommendations: []string{},
	}

	for _, d := range sortedDomains(report.DomainScores) {
		score := report.DomainScores[d]
		fb.DomainLevels = append(fb.DomainLevels, DomainLevel{Domain: d, Score: score, Level: CompetenceLevel(score)})
		if score >= 60 {
			continue
		}
		if advice, ok := domainAdvice[d]; ok {
			fb.SpecificRecommendations = append(fb.SpecificRecommendations, advice)
		} else {
			fb.SpecificRecommendations = append(fb.SpecificRecommendations, fmt.Sprintf("Strengthen knowledge in %s", titleCase(d)))
		}
	}

	switch {
	case report.OverallScore >= 80:
		fb.SpecificRecommendations = append(fb.SpecificRecommendations, "Excellent performance! Consider advanced topics and specialization")
	case report.OverallScore >= 60:
		fb.SpecificRecommendations = append(fb.SpecificRecommendations, "Good foundation. Focus on addressing the identified gaps")
	default:
		fb.SpecificRecommendations = append(fb.SpecificRecommendations, "Significant study needed in core areas before advancing")
	}
	return fb
}

// DetailedFeedback builds the candidate-facing feedback on its own.
func (e *Evaluator) DetailedFeedback(report domain.InterviewReport) DetailedFeedback {
	return detailedFeedback(report)
}
