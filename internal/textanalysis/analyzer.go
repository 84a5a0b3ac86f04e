// Package textanalysis provides the text primitives used by the scoring
// components: skill extraction, similarity, protected attribute detection and
// experience extraction.
package textanalysis

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Analyzer is the contract consumed by the interview and résumé components.
type Analyzer interface {
	ExtractSkills(text string) map[string][]string
	SemanticSimilarity(ctx context.Context, a, b string) (float64, error)
	DetectProtectedAttributes(text string) []string
	ExtractExperienceYears(text string) float64
}

// Heuristic is a local, dependency-free Analyzer built on keyword tables and
// token-bag cosine similarity.
type Heuristic struct {
	logger *zap.Logger
	tokens *tokenBag
}

var _ Analyzer = (*Heuristic)(nil)

func NewHeuristic(logger *zap.Logger) *Heuristic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Heuristic{logger: logger, tokens: newTokenBag(logger)}
}

// ExtractSkills returns the known skills mentioned in text grouped by category.
// Every category is present in the result, possibly with an empty list.
func (h *Heuristic) ExtractSkills(text string) map[string][]string {
	lower := strings.ToLower(text)
	found := make(map[string][]string, len(skillCategories))

	for _, category := range skillCategories {
		skills := make([]string, 0)
		for _, skill := range technicalSkills[category] {
			if mentionsSkill(lower, skill) {
				skills = append(skills, skill)
			}
		}
		found[category] = skills
	}

	return found
}

// SemanticSimilarity returns the cosine similarity of the token bags of a and b.
func (h *Heuristic) SemanticSimilarity(_ context.Context, a, b string) (float64, error) {
	return h.tokens.cosine(a, b), nil
}

func (h *Heuristic) DetectProtectedAttributes(text string) []string {
	lower := strings.ToLower(text)
	detected := make([]string, 0)

	for _, attr := range protectedAttributes {
		for _, pattern := range protectedPatterns[attr] {
			if pattern.MatchString(lower) {
				detected = append(detected, attr)
				break
			}
		}
	}

	return detected
}

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
	regexp.MustCompile(`experience\s*:?\s*(\d+)\+?\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s*(?:of\s*)?work`),
}

// ExtractExperienceYears returns the first explicit "N years of experience" value, or 0.
func (h *Heuristic) ExtractExperienceYears(text string) float64 {
	lower := strings.ToLower(text)
	for _, pattern := range experiencePatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			years, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return years
			}
		}
	}
	return 0
}

func mentionsSkill(lower, skill string) bool {
	if strings.Contains(lower, skill) {
		return true
	}
	for _, variation := range skillVariations[skill] {
		if strings.Contains(lower, variation) {
			return true
		}
	}
	return false
}
