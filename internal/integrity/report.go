package integrity

import (
	"slices"

	"github.com/spigell/candidate-assessor/internal/utils"
)

const (
	RiskHigh = "HIGH"
	RiskLow  = "LOW"

	lowAnswerIntegrity = 50
)

// AnswerAnalysis summarizes answer times (seconds) and integrity scores.
type AnswerAnalysis struct {
	AverageTime       float64 `json:"average_answer_time"`
	Fastest           int     `json:"fastest_answer"`
	Slowest           int     `json:"slowest_answer"`
	AverageIntegrity  float64 `json:"average_integrity_score"`
	LowestIntegrity   float64 `json:"lowest_integrity_score"`
	IntegrityVariance float64 `json:"integrity_score_variance"`
}

type Report struct {
	SessionID       string          `json:"session_id"`
	CandidateID     string          `json:"candidate_id"`
	OverallScore    float64         `json:"overall_integrity_score"`
	RiskLevel       string          `json:"risk_level"`
	TotalAnswers    int             `json:"total_answers"`
	Flags           []string        `json:"integrity_flags"`
	BrowserEvents   int             `json:"browser_events_count"`
	SuspiciousCount int             `json:"suspicious_browser_events"`
	DurationSeconds float64         `json:"session_duration"`
	AnswerAnalysis  *AnswerAnalysis `json:"answer_analysis,omitempty"`
	Recommendations []string        `json:"recommendations"`
}

// Report aggregates the monitoring state of sessionID.
func (m *Monitor) Report(sessionID string) (Report, error) {
	s, err := m.session(sessionID)
	if err != nil {
		return Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	score := s.score()
	report := Report{
		SessionID:       s.sessionID,
		CandidateID:     s.candidateID,
		OverallScore:    utils.Round2(score),
		RiskLevel:       RiskLow,
		TotalAnswers:    len(s.answers),
		Flags:           slices.Clone(s.flags),
		BrowserEvents:   len(s.browserEvents),
		DurationSeconds: utils.Round2(m.now().Sub(s.startedAt).Seconds()),
		AnswerAnalysis:  analyzeAnswers(s.answers),
		Recommendations: m.recommendations(s, score),
	}
	if score < m.cfg.Threshold {
		report.RiskLevel = RiskHigh
	}
	for _, e := range s.browserEvents {
		if slices.Contains(SuspiciousBrowserEvents, e.Type) {
			report.SuspiciousCount++
		}
	}

	return report, nil
}

func analyzeAnswers(answers []answerRecord) *AnswerAnalysis {
	if len(answers) == 0 {
		return nil
	}

	times := make([]float64, 0, len(answers))
	scores := make([]float64, 0, len(answers))
	a := &AnswerAnalysis{Fastest: answers[0].seconds, Slowest: answers[0].seconds}
	for _, ans := range answers {
		times = append(times, float64(ans.seconds))
		scores = append(scores, ans.score)
		a.Fastest = min(a.Fastest, ans.seconds)
		a.Slowest = max(a.Slowest, ans.seconds)
	}

	a.AverageTime = utils.Round2(utils.Mean(times))
	a.AverageIntegrity = utils.Round2(utils.Mean(scores))
	a.LowestIntegrity = utils.Round2(slices.Min(scores))
	a.IntegrityVariance = utils.Round2(slices.Max(scores) - slices.Min(scores))
	return a
}

func (m *Monitor) recommendations(s *sessionData, score float64) []string {
	out := make([]string, 0)

	if score < m.cfg.Threshold {
		out = append(out, "Review session for potential integrity violations")
	}
	if slices.Contains(s.flags, "browser_tab_switch") {
		out = append(out, "Candidate switched browser tabs during interview")
	}
	if slices.Contains(s.flags, "browser_copy_paste_detected") {
		out = append(out, "Copy-paste activity detected during interview")
	}

	fast, low := 0, 0
	for _, a := range s.answers {
		if float64(a.seconds) < m.cfg.SuspiciouslyFast.Seconds() {
			fast++
		}
		if a.score < lowAnswerIntegrity {
			low++
		}
	}
	if float64(fast) > float64(len(s.answers))*0.3 {
		out = append(out, "Multiple suspiciously fast answers detected")
	}
	if float64(low) > float64(len(s.answers))*0.2 {
		out = append(out, "Multiple low-integrity answers detected")
	}

	return out
}
