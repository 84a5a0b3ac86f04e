package textanalysis

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/candidate-assessor/internal/domain"
)

var (
	emailPattern     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern     = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	whitespace       = regexp.MustCompile(`\s+`)
	disallowedSymbol = regexp.MustCompile(`[^\w\s.,\-+()/#@\[\]]`)
)

// Clean collapses whitespace, redacts e-mail addresses and phone numbers and
// strips unusual symbols.
func Clean(text string) string {
	text = whitespace.ReplaceAllString(text, " ")
	text = RedactPII(text)
	text = disallowedSymbol.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func RedactPII(text string) string {
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")
	return phonePattern.ReplaceAllString(text, "[PHONE]")
}

var proficiencyIndicators = []struct {
	level int
	words []string
}{
	{5, []string{"expert", "master", "advanced", "senior", "lead", "architect"}},
	{4, []string{"experienced", "proficient", "strong", "skilled"}},
	{3, []string{"intermediate", "moderate", "comfortable", "familiar"}},
	{2, []string{"basic", "beginner", "learning", "some"}},
	{1, []string{"exposed", "aware", "minimal"}},
}

// AssessProficiency estimates a 1-5 proficiency for skill from adjacent
// qualifiers. A bare mention is 3, an absent skill is 0.
func AssessProficiency(text, skill string) int {
	lower := strings.ToLower(text)
	skill = strings.ToLower(skill)

	for _, tier := range proficiencyIndicators {
		for _, word := range tier.words {
			if strings.Contains(lower, word+" "+skill) || strings.Contains(lower, skill+" "+word) {
				return tier.level
			}
		}
	}

	if strings.Contains(lower, skill) {
		return 3
	}
	return 0
}

// EstimateSkillYears finds "N years of <skill>" or "<skill> for N years".
func EstimateSkillYears(text, skill string) float64 {
	lower := strings.ToLower(text)
	quoted := regexp.QuoteMeta(strings.ToLower(skill))
	patterns := []string{
		`(\d+)\+?\s*(?:years?|yrs?)\s*(?:of\s*)?` + quoted,
		quoted + `\s*(?:for\s*)?(\d+)\+?\s*(?:years?|yrs?)`,
	}
	for _, raw := range patterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(lower); m != nil {
			if years, err := strconv.ParseFloat(m[1], 64); err == nil {
				return years
			}
		}
	}
	return 0
}

var educationKeywords = []string{
	"bachelor", "master", "phd", "doctorate", "mba", "b.s.", "m.s.", "b.a.", "m.a.",
	"computer science", "data science", "machine learning", "artificial intelligence",
}

// ExtractEducation returns a context window around every education keyword.
func ExtractEducation(text string) []domain.Education {
	lower := strings.ToLower(text)
	entries := make([]domain.Education, 0)
	for _, keyword := range educationKeywords {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		entries = append(entries, domain.Education{Degree: keyword, Context: window(text, idx, 50, 100)})
	}
	return entries
}

var certificationKeywords = []string{
	"certified", "certification", "certificate", "aws certified", "google cloud certified",
	"microsoft certified", "oracle certified", "pmp", "cfa", "cpa",
}

func ExtractCertifications(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	certs := make([]string, 0)
	for _, keyword := range certificationKeywords {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		ctx := window(text, idx, 20, 50)
		if !seen[ctx] {
			seen[ctx] = true
			certs = append(certs, ctx)
		}
	}
	return certs
}

var educationRequirementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(bachelor|master|phd|doctorate|mba|b\.s\.|m\.s\.|b\.a\.|m\.a\.)`),
	regexp.MustCompile(`\b(degree|graduation|diploma)\b`),
	regexp.MustCompile(`\b(computer science|data science|engineering|mathematics|statistics)\b`),
}

func ExtractEducationRequirements(text string) []string {
	lower := strings.ToLower(text)
	out := make([]string, 0)
	for _, pattern := range educationRequirementPatterns {
		for _, m := range pattern.FindAllString(lower, -1) {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

var (
	bulletSplit         = regexp.MustCompile(`(?m)^\s*(?:[•·*\-]|\d+[.)])\s+`)
	sentenceSplit       = regexp.MustCompile(`[.!?]+`)
	responsibilityVerbs = []string{"develop", "design", "implement", "manage", "lead", "create", "analyze", "build"}
)

// ExtractResponsibilities returns bullet items, or verb-led sentences when the
// text has no bullets.
func ExtractResponsibilities(text string) []string {
	out := make([]string, 0)
	parts := bulletSplit.Split(text, -1)
	for _, part := range parts[1:] {
		line := strings.TrimSpace(strings.SplitN(part, "\n", 2)[0])
		if len(line) > 10 && len(line) < 200 {
			out = append(out, line)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 10 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, verb := range responsibilityVerbs {
			if strings.Contains(lower, verb) {
				out = append(out, sentence)
				break
			}
		}
	}
	return out
}

func window(text string, idx, before, after int) string {
	start := max(0, idx-before)
	end := min(len(text), idx+after)
	if start >= end {
		return ""
	}
	return strings.TrimSpace(text[start:end])
}

// SkillSummary renders extracted skills as "category: a, b" lines, skipping
// empty categories.
func SkillSummary(skills map[string][]string) string {
	var b strings.Builder
	for _, category := range skillCategories {
		if len(skills[category]) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", category, strings.Join(skills[category], ", "))
	}
	return strings.TrimSpace(b.String())
}
