package interview

import (
	"fmt"
	"strings"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/integrity"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

var studyHints = map[string]string{
	"python_programming":        "Practice Python programming with focus on data structures and algorithms",
	"machine_learning":          "Study machine learning fundamentals and practical implementations",
	"agentic_ai_systems":        "Learn about agent architectures and coordination patterns",
	"prompt_engineering":        "Practice prompt design and LLM interaction patterns",
	"data_science_fundamentals": "Review statistics and data analysis fundamentals",
	"deep_learning":             "Revisit neural network architectures and training dynamics",
}

func humanize(category string) string {
	return strings.ReplaceAll(category, "_", " ")
}

func (e *Engine) buildReport(ent *entry, reason string) domain.InterviewReport {
	s := ent.session

	scores := make([]float64, 0, len(ent.history))
	results := make([]domain.QuestionResult, 0, len(ent.history))
	for i, p := range ent.history {
		scores = append(scores, p.score)
		results = append(results, domain.QuestionResult{
			QuestionID:       p.question.ID,
			Question:         p.question.Text,
			Type:             p.question.Type,
			Category:         p.question.Category,
			Difficulty:       p.question.Difficulty,
			Score:            p.score,
			TimeTakenSeconds: p.seconds,
			Feedback:         s.Answers[i].Feedback,
		})
	}
	overall := utils.Round2(utils.Mean(scores))

	domainScores := make(map[string]float64, len(ent.categories))
	strengths := make([]string, 0)
	weaknesses := make([]string, 0)
	for _, category := range ent.categories {
		avg := utils.Round2(utils.Mean(ent.categoryScores[category]))
		domainScores[category] = avg
		switch {
		case avg >= 80:
			strengths = append(strengths, fmt.Sprintf("Strong performance in %s", humanize(category)))
		case avg < 50:
			weaknesses = append(weaknesses, fmt.Sprintf("Needs improvement in %s", humanize(category)))
		}
	}

	summary := e.integritySummary(ent)
	violations := 0
	for _, m := range ent.metrics {
		if m.OverallScore < 50 {
			violations++
		}
	}

	return domain.InterviewReport{
		SessionID:       s.ID,
		CandidateID:     s.CandidateID,
		JobID:           s.JobID,
		OverallScore:    overall,
		DomainScores:    domainScores,
		QuestionResults: results,
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendations: e.recommendations(ent.categories, domainScores, overall),
		Integrity:       summary,
		Compliance: domain.ComplianceSummary{
			OverallStatus:  string(s.ComplianceStatus),
			IntegrityScore: s.IntegrityScore,
			Violations:     violations,
		},
		TerminationReason: reason,
		GeneratedAt:       e.now(),
	}
}

func (e *Engine) recommendations(categories []string, domainScores map[string]float64, overall float64) []string {
	out := make([]string, 0)

	switch {
	case overall < 50:
		out = append(out, "Consider additional training and practice before advancing to technical roles")
	case overall < 70:
		out = append(out, "Focus on strengthening fundamental concepts")
	}

	for _, category := range categories {
		if domainScores[category] >= e.cfg.WeakCategoryBelow {
			continue
		}
		if hint, ok := studyHints[category]; ok {
			out = append(out, hint)
		} else {
			out = append(out, fmt.Sprintf("Review core concepts in %s", humanize(category)))
		}
	}

	if len(out) == 0 {
		out = append(out, "Strong performance across all areas. Consider advanced topics and specialization")
	}
	return out
}

func (e *Engine) integritySummary(ent *entry) domain.IntegritySummary {
	summary := domain.IntegritySummary{
		AverageScore: ent.session.IntegrityScore,
		RiskLevel:    integrity.RiskLow,
		Flags:        make([]string, 0),
	}
	for _, m := range ent.metrics {
		if m.CopyPasteDetected {
			summary.CopyPasteIncidents++
		}
		if m.UnusualTiming {
			summary.TimingAnomalies++
		}
		if m.BrowserAnomaly {
			summary.BrowserAnomalies++
		}
		summary.TotalFlags += len(m.Flags)
		summary.Flags = append(summary.Flags, m.Flags...)
	}
	if summary.AverageScore < e.cfg.IntegrityThreshold {
		summary.RiskLevel = integrity.RiskHigh
	}

	report, err := e.monitor.Report(ent.session.ID)
	if err != nil {
		ent.logger.Warn("integrity report unavailable", zap.Error(err))
		return summary
	}
	summary.BrowserEvents = report.BrowserEvents

	return summary
}
