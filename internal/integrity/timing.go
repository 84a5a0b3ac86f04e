package integrity

import (
	"math"
	"strings"
	"time"
)

var complexityTiers = []struct {
	level      int
	indicators []string
}{
	{1, []string{"what is", "define", "name", "list"}},
	{2, []string{"explain", "describe", "how does"}},
	{3, []string{"compare", "contrast", "analyze"}},
	{4, []string{"design", "implement", "create"}},
	{5, []string{"optimize", "architect", "solve complex"}},
}

// EstimateComplexity rates a question from 1 to 5 by its wording.
func EstimateComplexity(questionText string) int {
	lower := strings.ToLower(questionText)
	level := 1
	for _, tier := range complexityTiers {
		for _, indicator := range tier.indicators {
			if strings.Contains(lower, indicator) {
				level = max(level, tier.level)
				break
			}
		}
	}
	return level
}

// ExpectedAnswerTime allows one minute per complexity level.
func ExpectedAnswerTime(questionText string) time.Duration {
	return time.Duration(EstimateComplexity(questionText)) * time.Minute
}

// analyzeTiming compares in float seconds so huge answer times cannot
// overflow a time.Duration.
func (m *Monitor) analyzeTiming(seconds int, questionText string) signal {
	s := newSignal()
	taken := float64(seconds)

	if taken < m.cfg.SuspiciouslyFast.Seconds() {
		s.penalize(40, "timing_suspiciously_fast")
	}
	if taken < m.cfg.MinAnswerTime.Seconds() {
		s.penalize(20, "timing_too_fast")
	}

	if taken > m.cfg.SuspiciouslySlow.Seconds() {
		s.penalize(30, "timing_suspiciously_slow")
	}
	if taken > m.cfg.MaxAnswerTime.Seconds() {
		s.penalize(15, "timing_too_slow")
	}

	expected := ExpectedAnswerTime(questionText).Seconds()
	if math.Abs(taken-expected) > expected*m.cfg.TimingTolerance {
		s.penalize(15, "timing_unexpected_for_complexity")
	}

	return s.floored()
}
