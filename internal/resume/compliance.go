package resume

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

type AuditLogger interface {
	LogEvent(ctx context.Context, sessionID, eventType, description string, severity domain.Severity, metadata map[string]any) string
}

// AttributeDetector finds references to protected characteristics.
type AttributeDetector interface {
	DetectProtectedAttributes(text string) []string
}

// CompliantAbove is the minimum compliance score of a compliant check.
const CompliantAbove = 70

type ComplianceResult struct {
	CandidateID         string   `json:"candidate_id"`
	JobID               string   `json:"job_id"`
	Compliant           bool     `json:"is_compliant"`
	Score               float64  `json:"overall_compliance_score"`
	BiasFlags           []string `json:"bias_flags"`
	PrivacyFlags        []string `json:"privacy_flags"`
	FairnessFlags       []string `json:"fairness_flags"`
	ExplainabilityFlags []string `json:"explainability_flags"`
	Recommendations     []string `json:"recommendations"`
}

// Flags returns every flag of the check.
func (r ComplianceResult) Flags() []string {
	return slices.Concat(r.BiasFlags, r.PrivacyFlags, r.FairnessFlags, r.ExplainabilityFlags)
}

// Checker audits a résumé scoring for bias, privacy, fairness and
// explainability problems.
type Checker struct {
	attrs  AttributeDetector
	audit  AuditLogger
	logger *zap.Logger
}

func NewChecker(attrs AttributeDetector, audit AuditLogger, log *zap.Logger) *Checker {
	return &Checker{
		attrs:  attrs,
		audit:  audit,
		logger: logger.WithFields(log, zap.String("component", "resume-compliance")),
	}
}

var piiPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"address", regexp.MustCompile(`\d+\s+[\w\s]+,\s*[\w\s]+,\s*[A-Z]{2}\s*\d{5}`)},
}

var bareDigits = regexp.MustCompile(`\d{3}[-.]?\d{3}[-.]?\d{4}`)

// Check scores the compliance of a résumé against job as 100 minus 10 per
// flag. Every check is recorded in the audit log.
func (c *Checker) Check(ctx context.Context, resume domain.ResumeData, job domain.JobDescription) (result ComplianceResult) {
	result = ComplianceResult{
		CandidateID:         resume.CandidateID,
		JobID:               job.JobID,
		BiasFlags:           []string{},
		PrivacyFlags:        []string{},
		FairnessFlags:       []string{},
		ExplainabilityFlags: []string{},
		Recommendations:     []string{},
	}

	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("compliance check failed", zap.String(logger.FieldCandidate, resume.CandidateID), zap.Any("panic", rec))
			result.Compliant = false
			result.Score = 0
			result.Recommendations = append(result.Recommendations, "Compliance check failed - manual review required")
		}
	}()

	for _, attr := range c.attrs.DetectProtectedAttributes(resume.RawText) {
		result.BiasFlags = append(result.BiasFlags, "Protected attribute detected: "+attr)
	}
	result.PrivacyFlags = privacyFlags(resume.RawText)
	result.FairnessFlags = c.fairnessFlags(resume, job)
	result.ExplainabilityFlags = explainabilityFlags(resume)

	result.Score = max(0, 100-10*float64(len(result.Flags())))
	result.Compliant = result.Score >= CompliantAbove
	result.Recommendations = recommendations(result)

	c.log(ctx, result)
	return result
}

func privacyFlags(text string) []string {
	flags := make([]string, 0)
	for _, p := range piiPatterns {
		if p.pattern.MatchString(text) {
			flags = append(flags, "PII detected: "+p.kind)
		}
	}
	if !strings.Contains(text, "[EMAIL]") && strings.Contains(text, "@") {
		flags = append(flags, "Email addresses not properly anonymized")
	}
	if !strings.Contains(text, "[PHONE]") && bareDigits.MatchString(text) {
		flags = append(flags, "Phone numbers not properly anonymized")
	}
	return flags
}

func (c *Checker) fairnessFlags(resume domain.ResumeData, job domain.JobDescription) []string {
	flags := make([]string, 0)
	if len(resume.Skills) == 0 {
		flags = append(flags, "No skills extracted - potential bias in skill recognition")
	}
	if attrs := c.attrs.DetectProtectedAttributes(job.RawText); len(attrs) > 0 {
		flags = append(flags, "Job description contains potentially biased language: "+strings.Join(attrs, ", "))
	}
	if job.ExperienceRequired > 10 {
		flags = append(flags, "Experience requirement may be excessive - potential age discrimination")
	}
	if len(job.EducationRequirements) == 0 {
		flags = append(flags, "No clear education requirements - may lead to inconsistent evaluation")
	}
	return flags
}

func explainabilityFlags(resume domain.ResumeData) []string {
	flags := make([]string, 0)
	if len(resume.Skills) < 3 {
		flags = append(flags, "Insufficient skill data extracted - low explainability")
	}
	if resume.ExperienceYears == 0 && len(resume.RawText) > 100 {
		flags = append(flags, "Experience not detected despite substantial content - extraction issue")
	}
	if len(resume.Education) == 0 {
		flags = append(flags, "No education information extracted - incomplete profile")
	}
	if len(resume.RawText) < 50 {
		flags = append(flags, "Very little text extracted - potential parsing error")
	}
	return flags
}

func recommendations(r ComplianceResult) []string {
	out := make([]string, 0)
	if len(r.BiasFlags) > 0 {
		out = append(out, "Review and remove protected attributes from resume processing")
	}
	if len(r.PrivacyFlags) > 0 {
		out = append(out, "Implement stronger PII anonymization in text processing")
	}
	if len(r.FairnessFlags) > 0 {
		out = append(out, "Review job description for biased language and unreasonable requirements")
	}
	if len(r.ExplainabilityFlags) > 0 {
		out = append(out, "Improve text extraction and parsing algorithms for better explainability")
	}
	if r.Score < 80 {
		out = append(out, "Manual review recommended due to compliance concerns")
	}
	return out
}

func (c *Checker) log(ctx context.Context, r ComplianceResult) {
	c.logger.Info("compliance check completed",
		zap.String(logger.FieldCandidate, r.CandidateID),
		zap.String("job_id", r.JobID),
		zap.Float64("score", r.Score),
		zap.Bool("compliant", r.Compliant),
	)
	if c.audit == nil {
		return
	}

	severity := domain.SeverityLow
	if !r.Compliant {
		severity = domain.SeverityHigh
	}
	c.audit.LogEvent(ctx, "", domain.EventResumeCompliance,
		fmt.Sprintf("Compliance check for candidate %s against job %s", r.CandidateID, r.JobID),
		severity,
		map[string]any{
			"candidate_id":     r.CandidateID,
			"job_id":           r.JobID,
			"compliance_score": r.Score,
			"is_compliant":     r.Compliant,
			"flags_count":      len(r.Flags()),
		},
	)
}

type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

type BatchCompliance struct {
	Total        int                `json:"total_resumes"`
	Compliant    int                `json:"compliant_resumes"`
	NonCompliant int                `json:"non_compliant_resumes"`
	AverageScore float64            `json:"average_compliance_score"`
	CommonIssues []IssueCount       `json:"common_issues"`
	Results      []ComplianceResult `json:"individual_results"`
}

const commonIssueLimit = 5

// CheckBatch checks every résumé and reports the most common flags.
func (c *Checker) CheckBatch(ctx context.Context, resumes []domain.ResumeData, job domain.JobDescription) BatchCompliance {
	b := BatchCompliance{
		Total:        len(resumes),
		CommonIssues: []IssueCount{},
		Results:      make([]ComplianceResult, 0, len(resumes)),
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	scores := make([]float64, 0, len(resumes))
	for _, r := range resumes {
		res := c.Check(ctx, r, job)
		b.Results = append(b.Results, res)
		scores = append(scores, res.Score)
		if res.Compliant {
			b.Compliant++
		} else {
			b.NonCompliant++
		}
		for _, f := range res.Flags() {
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	b.AverageScore = utils.Round2(utils.Mean(scores))

	for _, issue := range order {
		b.CommonIssues = append(b.CommonIssues, IssueCount{Issue: issue, Count: counts[issue]})
	}
	slices.SortStableFunc(b.CommonIssues, func(x, y IssueCount) int { return cmp.Compare(y.Count, x.Count) })
	if len(b.CommonIssues) > commonIssueLimit {
		b.CommonIssues = b.CommonIssues[:commonIssueLimit]
	}
	return b
}

// BatchReport renders a batch check as plain text.
func BatchReport(b BatchCompliance) string {
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}
	percent := func(n int) float64 {
		if b.Total == 0 {
			return 0
		}
		return float64(n) / float64(b.Total) * 100
	}

	line("COMPLIANCE AUDIT REPORT")
	line("%s", strings.Repeat("=", 50))
	line("Total Resumes Processed: %d", b.Total)
	line("Compliant Resumes: %d (%.1f%%)", b.Compliant, percent(b.Compliant))
	line("Non-Compliant Resumes: %d (%.1f%%)", b.NonCompliant, percent(b.NonCompliant))
	line("Average Compliance Score: %.2f/100", b.AverageScore)
	line("")
	line("MOST COMMON COMPLIANCE ISSUES:")
	line("%s", strings.Repeat("-", 30))
	for _, issue := range b.CommonIssues {
		line("- %s: %d occurrences", issue.Issue, issue.Count)
	}

	if b.AverageScore < 80 {
		line("")
		line("RECOMMENDATIONS:")
		line("%s", strings.Repeat("-", 15))
		line("- Review and improve PII anonymization processes")
		line("- Enhance skill extraction algorithms")
		line("- Implement bias detection in job descriptions")
		line("- Consider manual review for low-scoring resumes")
	}
	return strings.TrimRight(sb.String(), "\n")
}
