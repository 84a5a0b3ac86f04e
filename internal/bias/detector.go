// Package bias scores job descriptions and other free text for
// discriminatory or exclusionary language.
package bias

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

// DefaultThreshold is the score above which a bias type is reported.
const DefaultThreshold = 0.15

// AttributeDetector finds references to protected characteristics.
type AttributeDetector interface {
	DetectProtectedAttributes(text string) []string
}

type AuditLogger interface {
	LogEvent(ctx context.Context, sessionID, eventType, description string, severity domain.Severity, metadata map[string]any) string
}

// Category is the result for one bias type. Scores are in [0,1].
type Category struct {
	Score      float64        `json:"score"`
	Indicators []string       `json:"indicators"`
	Details    map[string]any `json:"details"`
}

func newCategory() Category {
	return Category{Indicators: []string{}, Details: map[string]any{}}
}

type Result struct {
	OverallScore        float64  `json:"overall_bias_score"`
	Gender              Category `json:"gender_bias"`
	Age                 Category `json:"age_bias"`
	Cultural            Category `json:"cultural_bias"`
	Requirement         Category `json:"requirement_bias"`
	ProtectedAttributes []string `json:"protected_attributes"`
	Recommendations     []string `json:"recommendations"`
	Failed              bool     `json:"failed,omitempty"`
}

type Detector struct {
	threshold float64
	attrs     AttributeDetector
	audit     AuditLogger
	logger    *zap.Logger
}

// NewDetector returns a detector. A non-positive threshold selects DefaultThreshold.
func NewDetector(threshold float64, attrs AttributeDetector, audit AuditLogger, log *zap.Logger) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		threshold: threshold,
		attrs:     attrs,
		audit:     audit,
		logger:    logger.WithFields(log, zap.String("component", "bias")),
	}
}

func (d *Detector) Threshold() float64 {
	return d.threshold
}

var (
	masculineWords = []string{"aggressive", "dominant", "leader", "competitive", "ambitious", "confident", "outspoken"}
	feminineWords  = []string{"supportive", "collaborative", "nurturing", "communicative", "empathetic", "detail-oriented"}

	ageIndicators = []string{
		"young", "youthful", "energetic", "recent graduate", "entry-level",
		"mature", "experienced", "senior-level", "seasoned", "veteran",
	}
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*[-+]?\s*years?\s*(?:old|of age)`),
		regexp.MustCompile(`age\s*(?:requirement|restriction|limit)`),
		regexp.MustCompile(`young\s*(?:professional|graduate|talent)`),
		regexp.MustCompile(`mature\s*(?:professional|candidate)`),
	}

	culturalIndicators = []string{
		"native speaker", "western education", "local candidate", "cultural fit",
		"team player", "works well with others", "good communication skills",
	}
	nationalityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:must|require|prefer).*\b(citizen|national|resident)\b`),
		regexp.MustCompile(`\b(american|british|indian|chinese)\b.*\b(candidate|professional)\b`),
		regexp.MustCompile(`native\s*speaker`),
		regexp.MustCompile(`local\s*candidate`),
	}

	requirementPatterns = []struct {
		kind    string
		pattern *regexp.Regexp
	}{
		{"unnecessary_requirements", regexp.MustCompile(`must have.*years.*experience.*specific.*tool`)},
		{"unnecessary_requirements", regexp.MustCompile(`must.*degree.*from.*top.*university`)},
		{"unnecessary_requirements", regexp.MustCompile(`must.*work.*on.*site.*full.*time`)},
		{"discriminatory_language", regexp.MustCompile(`young.*dynamic.*team`)},
		{"discriminatory_language", regexp.MustCompile(`mature.*professional`)},
		{"discriminatory_language", regexp.MustCompile(`native.*speaker`)},
		{"discriminatory_language", regexp.MustCompile(`able.*bodied`)},
	}
	experienceRequirement = regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`)
)

// Detect scores text for gender, age, cultural and requirement bias. The
// overall score is the maximum of the four. textType labels the audit event.
func (d *Detector) Detect(ctx context.Context, text, textType string) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("bias detection failed", zap.Any("panic", rec))
			result.OverallScore = 1
			result.Failed = true
			result.Recommendations = append(result.Recommendations, "Bias detection failed - manual review required")
		}
	}()

	lower := strings.ToLower(text)
	result = Result{
		Gender:              genderBias(lower),
		Age:                 ageBias(lower),
		Cultural:            culturalBias(lower),
		Requirement:         requirementBias(lower),
		ProtectedAttributes: []string{},
	}
	if d.attrs != nil {
		result.ProtectedAttributes = append(result.ProtectedAttributes, d.attrs.DetectProtectedAttributes(text)...)
	}
	result.OverallScore = max(result.Gender.Score, result.Age.Score, result.Cultural.Score, result.Requirement.Score)
	result.Recommendations = d.recommendations(result)

	d.log(ctx, textType, result)
	return result
}

func genderBias(text string) Category {
	c := newCategory()

	masculine, feminine := countContained(text, masculineWords), countContained(text, feminineWords)
	total := masculine + feminine
	if total == 0 {
		return c
	}

	mRatio := float64(masculine) / float64(total)
	fRatio := float64(feminine) / float64(total)
	imbalance := utils.Round2(max(mRatio-fRatio, fRatio-mRatio))
	c.Score = imbalance
	c.Details = map[string]any{
		"masculine_words": masculine,
		"feminine_words":  feminine,
		"masculine_ratio": utils.Round2(mRatio),
		"feminine_ratio":  utils.Round2(fRatio),
		"imbalance":       imbalance,
	}

	if masculine > 0 {
		c.Indicators = append(c.Indicators, fmt.Sprintf("Masculine-coded language detected: %d instances", masculine))
	}
	if feminine > 0 {
		c.Indicators = append(c.Indicators, fmt.Sprintf("Feminine-coded language detected: %d instances", feminine))
	}
	if imbalance > 0.3 {
		c.Indicators = append(c.Indicators, fmt.Sprintf("Significant gender imbalance detected (%.2f)", imbalance))
	}
	return c
}

func ageBias(text string) Category {
	c := newCategory()

	found := containedIn(text, ageIndicators)
	if len(found) > 0 {
		c.Score = utils.Round2(min(1, float64(len(found))*0.3))
		for _, f := range found {
			c.Indicators = append(c.Indicators, fmt.Sprintf("Age bias indicator: '%s'", f))
		}
		c.Details["indicators_found"] = found
	}

	for _, p := range agePatterns {
		if p.MatchString(text) {
			c.Score = max(c.Score, 0.8)
			c.Indicators = append(c.Indicators, "Specific age requirement detected: "+p.String())
			break
		}
	}
	return c
}

func culturalBias(text string) Category {
	c := newCategory()

	found := containedIn(text, culturalIndicators)
	if len(found) > 0 {
		c.Score = utils.Round2(min(1, float64(len(found))*0.25))
		for _, f := range found {
			c.Indicators = append(c.Indicators, fmt.Sprintf("Cultural bias indicator: '%s'", f))
		}
		c.Details["indicators_found"] = found
	}

	for _, p := range nationalityPatterns {
		if p.MatchString(text) {
			c.Score = max(c.Score, 0.7)
			c.Indicators = append(c.Indicators, "Nationality bias detected: "+p.String())
			break
		}
	}
	return c
}

func requirementBias(text string) Category {
	c := newCategory()

	violations := make([]string, 0)
	for _, rp := range requirementPatterns {
		if rp.pattern.MatchString(text) {
			violations = append(violations, rp.kind+": "+rp.pattern.String())
		}
	}
	if len(violations) > 0 {
		c.Score = utils.Round2(min(1, float64(len(violations))*0.4))
		c.Indicators = append(c.Indicators, violations...)
		c.Details["violations"] = violations
	}

	for _, m := range experienceRequirement.FindAllStringSubmatch(text, -1) {
		years, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch {
		case years > 10:
			c.Score = max(c.Score, 0.6)
			c.Indicators = append(c.Indicators, fmt.Sprintf("Excessive experience requirement: %d+ years", years))
		case years > 7:
			c.Score = max(c.Score, 0.3)
			c.Indicators = append(c.Indicators, fmt.Sprintf("High experience requirement: %d+ years", years))
		}
	}
	return c
}

func (d *Detector) recommendations(r Result) []string {
	out := make([]string, 0)
	add := func(cond bool, recs ...string) {
		if cond {
			out = append(out, recs...)
		}
	}

	add(r.Gender.Score > d.threshold,
		"Use gender-neutral language in job descriptions",
		"Balance masculine and feminine-coded words")
	add(r.Age.Score > d.threshold,
		"Remove age-specific language and requirements",
		"Focus on skills and experience rather than age")
	add(r.Cultural.Score > d.threshold,
		"Remove nationality and cultural fit requirements",
		"Focus on professional qualifications only")
	add(r.Requirement.Score > d.threshold,
		"Review and simplify job requirements",
		"Remove unnecessary barriers to entry")
	add(len(r.ProtectedAttributes) > 0,
		"Remove all references to protected characteristics",
		"Focus solely on job-related qualifications")
	add(r.OverallScore > d.threshold,
		"Consider using standardized, bias-free job description templates",
		"Have job descriptions reviewed by diversity and inclusion team")
	return out
}

// Types returns the names of bias types scoring above the threshold.
func (d *Detector) Types(r Result) []string {
	out := make([]string, 0, 4)
	for _, bt := range r.categories() {
		if bt.category.Score > d.threshold {
			out = append(out, bt.key)
		}
	}
	return out
}

type namedCategory struct {
	key, label string
	category   Category
}

func (r Result) categories() []namedCategory {
	return []namedCategory{
		{"gender_bias", "Gender Bias", r.Gender},
		{"age_bias", "Age Bias", r.Age},
		{"cultural_bias", "Cultural Bias", r.Cultural},
		{"requirement_bias", "Requirement Bias", r.Requirement},
	}
}

func (d *Detector) log(ctx context.Context, textType string, r Result) {
	severity := domain.SeverityLow
	if r.OverallScore > d.threshold {
		severity = domain.SeverityHigh
	}

	d.logger.Info("bias analysis completed",
		zap.String("text_type", textType),
		zap.Float64("overall_score", r.OverallScore),
		zap.Strings("protected_attributes", r.ProtectedAttributes),
	)

	if d.audit == nil {
		return
	}
	d.audit.LogEvent(ctx, "", domain.EventBiasDetection,
		"Bias analysis for "+textType,
		severity,
		map[string]any{
			"text_type":            textType,
			"overall_bias_score":   r.OverallScore,
			"bias_types_detected":  d.Types(r),
			"protected_attributes": r.ProtectedAttributes,
		},
	)
}

func countContained(text string, words []string) int {
	return len(containedIn(text, words))
}

func containedIn(text string, words []string) []string {
	out := make([]string, 0)
	for _, w := range words {
		if strings.Contains(text, w) {
			out = append(out, w)
		}
	}
	return out
}
