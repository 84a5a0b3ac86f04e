package integrity

import (
	"math"
	"strings"
	"unicode"

	"github.com/spigell/candidate-assessor/internal/utils"
)

type styleMetrics [4]float64

// styleOf returns average word length, average sentence length in words,
// punctuation marks per word and the share of uppercase letters.
func styleOf(text string) styleMetrics {
	words := strings.Fields(text)
	if len(words) == 0 {
		return styleMetrics{}
	}

	letters := 0
	for _, w := range words {
		letters += len([]rune(w))
	}

	sentences := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
	sentenceWords := 0
	nonEmpty := 0
	for _, sentence := range sentences {
		if n := len(strings.Fields(sentence)); n > 0 {
			sentenceWords += n
			nonEmpty++
		}
	}

	punctuation, upper, total := 0, 0, 0
	for _, r := range text {
		total++
		switch {
		case strings.ContainsRune(".,!?", r):
			punctuation++
		case unicode.IsUpper(r):
			upper++
		}
	}

	var m styleMetrics
	m[0] = float64(letters) / float64(len(words))
	if nonEmpty > 0 {
		m[1] = float64(sentenceWords) / float64(nonEmpty)
	}
	m[2] = float64(punctuation) / float64(len(words))
	m[3] = float64(upper) / float64(total)
	return m
}

// styleConsistency returns 1 for an identical style and approaches 0 as the
// current answer drifts from the mean of previous ones.
func styleConsistency(current string, previous []string) float64 {
	if len(previous) == 0 {
		return 1
	}

	cur := styleOf(current)
	var avg styleMetrics
	for _, text := range previous {
		m := styleOf(text)
		for i := range avg {
			avg[i] += m[i]
		}
	}

	scores := make([]float64, 0, len(avg))
	for i := range avg {
		avg[i] /= float64(len(previous))
		if avg[i] > 0 {
			diff := math.Abs(cur[i]-avg[i]) / avg[i]
			scores = append(scores, max(0, 1-diff))
		}
	}
	if len(scores) == 0 {
		return 1
	}
	return utils.Mean(scores)
}

var (
	qualityTechnicalTerms = []string{"algorithm", "function", "method", "approach", "implement", "optimize"}
	qualityExplanation    = []string{"because", "therefore", "however", "additionally", "furthermore"}
)

// answerQuality is a coarse 0..1 estimate from length, technical terms,
// sentence structure and explanatory connectives.
func answerQuality(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	quality := 0.0
	switch length := len(trimmed); {
	case length >= 50 && length <= 500:
		quality += 0.3
	case length > 500 && length <= 1000:
		quality += 0.4
	case length > 1000:
		quality += 0.2
	}

	lower := strings.ToLower(trimmed)
	quality += min(0.3, 0.1*float64(countTerms(lower, qualityTechnicalTerms)))

	if strings.Count(trimmed, ".") > 2 {
		quality += 0.2
	}

	quality += min(0.2, 0.05*float64(countTerms(lower, qualityExplanation)))

	return min(1, quality)
}

func countTerms(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

func normalizeAnswer(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func (m *Monitor) analyzeConsistency(text string, previous []answerRecord) signal {
	s := newSignal()
	if len(previous) == 0 {
		return s
	}

	if styleConsistency(text, lastTexts(previous, m.cfg.StyleWindow)) < 1-m.cfg.StyleDeviation {
		s.penalize(20, "consistency_style_change")
	}

	qualities := make([]float64, 0, m.cfg.QualityWindow)
	for _, prev := range lastTexts(previous, m.cfg.QualityWindow) {
		qualities = append(qualities, answerQuality(prev))
	}
	if math.Abs(answerQuality(text)-utils.Mean(qualities)) > m.cfg.QualityDivergence {
		s.penalize(25, "consistency_knowledge_level_change")
	}

	normalized := normalizeAnswer(text)
	for _, prev := range previous {
		if prev.normalized == normalized {
			s.penalize(35, "consistency_repeated_answer")
			break
		}
	}

	return s.floored()
}

func lastTexts(records []answerRecord, n int) []string {
	if len(records) > n {
		records = records[len(records)-n:]
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.text)
	}
	return out
}
