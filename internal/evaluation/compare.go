package evaluation

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/utils"
)

type Ranking struct {
	Rank           int     `json:"rank"`
	CandidateID    string  `json:"candidate_id"`
	SessionID      string  `json:"session_id"`
	OverallScore   float64 `json:"overall_score"`
	StrengthsCount int     `json:"strengths_count"`
	WeaknessCount  int     `json:"weaknesses_count"`
}

type ComparisonMetrics struct {
	AverageScore float64 `json:"average_score"`
	HighestScore float64 `json:"highest_score"`
	LowestScore  float64 `json:"lowest_score"`
	ScoreRange   float64 `json:"score_range"`
}

type Comparison struct {
	Rankings           []Ranking         `json:"candidate_rankings"`
	Metrics            ComparisonMetrics `json:"comparison_metrics"`
	TopCandidates      []string          `json:"top_candidates"`
	RecommendedForHire []string          `json:"recommended_for_hire"`
	NeedsImprovement   []string          `json:"needs_improvement"`
}

// CompareCandidates ranks reports by overall score, highest first. Equal
// scores keep input order.
func (e *Evaluator) CompareCandidates(reports []domain.InterviewReport) (Comparison, error) {
	if len(reports) == 0 {
		return Comparison{}, fmt.Errorf("%w: no reports to compare", domain.ErrInvalidArgument)
	}

	ranked := slices.Clone(reports)
	slices.SortStableFunc(ranked, func(a, b domain.InterviewReport) int {
		return cmp.Compare(b.OverallScore, a.OverallScore)
	})

	c := Comparison{
		Rankings:           make([]Ranking, 0, len(ranked)),
		TopCandidates:      []string{},
		RecommendedForHire: []string{},
		NeedsImprovement:   []string{},
	}
	scores := make([]float64, 0, len(ranked))
	for i, r := range ranked {
		scores = append(scores, r.OverallScore)
		c.Rankings = append(c.Rankings, Ranking{
			Rank:           i + 1,
			CandidateID:    r.CandidateID,
			SessionID:      r.SessionID,
			OverallScore:   r.OverallScore,
			StrengthsCount: len(r.Strengths),
			WeaknessCount:  len(r.Weaknesses),
		})
		if i < 3 {
			c.TopCandidates = append(c.TopCandidates, r.CandidateID)
		}
		if r.OverallScore >= 70 {
			c.RecommendedForHire = append(c.RecommendedForHire, r.CandidateID)
		}
		if r.OverallScore < 60 {
			c.NeedsImprovement = append(c.NeedsImprovement, r.CandidateID)
		}
	}

	highest, lowest := slices.Max(scores), slices.Min(scores)
	c.Metrics = ComparisonMetrics{
		AverageScore: utils.Round2(utils.Mean(scores)),
		HighestScore: highest,
		LowestScore:  lowest,
		ScoreRange:   utils.Round2(highest - lowest),
	}
	return c, nil
}
