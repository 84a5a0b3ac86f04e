package integrity

import (
	"regexp"
	"strings"
)

type signal struct {
	score float64
	flags []string
}

func newSignal() signal {
	return signal{score: 100, flags: make([]string, 0)}
}

func (s *signal) penalize(points float64, flag string) {
	s.score -= points
	for _, existing := range s.flags {
		if existing == flag {
			return
		}
	}
	s.flags = append(s.flags, flag)
}

func (s signal) floored() signal {
	s.score = max(0, s.score)
	return s
}

var (
	genericPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^.{1,5}$`),
		regexp.MustCompile(`(?i)^(idk|don't know|no idea|unsure)\s*$`),
		regexp.MustCompile(`(?i)^[a-z]\s*[a-z]\s*[a-z]\s*$`),
	}
	formattingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[^\w\s.,;:!?\-()\[\]{}"'/]{3,}`),
		regexp.MustCompile(`[ \t]{5,}`),
	}
	codeIndicators = []*regexp.Regexp{
		regexp.MustCompile(`function\s+\w+\s*\(`),
		regexp.MustCompile(`class\s+\w+\s*:`),
		regexp.MustCompile(`import\s+\w+`),
		regexp.MustCompile(`def\s+\w+\s*\(`),
		regexp.MustCompile(`print\s*\(`),
		regexp.MustCompile(`console\.log\s*\(`),
	}
	templatePhrases = []string{
		"this is a great question",
		"i would approach this by",
		"the best way to solve this is",
		"in my experience",
		"it depends on the context",
		"there are multiple ways to",
	}
	segmentSplit = regexp.MustCompile(`[\n.!?]+`)
)

const (
	minRepeatedSegment = 20
	repeatedSegmentMin = 3
)

func (m *Monitor) analyzeText(text string) signal {
	s := newSignal()
	trimmed := strings.TrimSpace(text)

	if len(trimmed) < 3 {
		s.score = 0
		s.flags = append(s.flags, "copy_paste_empty_answer")
		return s
	}

	for _, pattern := range genericPatterns {
		if pattern.MatchString(trimmed) {
			s.penalize(20, "copy_paste_detected")
		}
	}
	if hasRepeatedSegment(text) {
		s.penalize(20, "repetition_detected")
	}
	for _, pattern := range formattingPatterns {
		if pattern.MatchString(text) {
			s.penalize(20, "formatting_anomalies_detected")
		}
	}

	switch length := len(trimmed); {
	case length < m.cfg.MinLength:
		s.penalize(30, "copy_paste_too_short")
	case length > m.cfg.MaxLength:
		s.penalize(15, "copy_paste_too_long")
	}

	if countCodeIndicators(text) > 2 {
		s.penalize(25, "copy_paste_suspicious_code")
	}

	if countTemplatePhrases(text) >= 2 {
		s.penalize(20, "copy_paste_template_match")
	}

	return s.floored()
}

func countCodeIndicators(text string) int {
	n := 0
	for _, pattern := range codeIndicators {
		if pattern.MatchString(text) {
			n++
		}
	}
	return n
}

func countTemplatePhrases(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, phrase := range templatePhrases {
		if strings.Contains(lower, phrase) {
			n++
		}
	}
	return n
}

// hasRepeatedSegment reports whether a line or sentence of at least 20
// characters occurs three or more times.
func hasRepeatedSegment(text string) bool {
	counts := make(map[string]int)
	for _, segment := range segmentSplit.Split(text, -1) {
		segment = strings.ToLower(strings.Join(strings.Fields(segment), " "))
		if len(segment) < minRepeatedSegment {
			continue
		}
		counts[segment]++
		if counts[segment] >= repeatedSegmentMin {
			return true
		}
	}
	return false
}
