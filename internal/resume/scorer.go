package resume

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

// Analyzer is the part of the text analysis contract used for scoring.
type Analyzer interface {
	SemanticSimilarity(ctx context.Context, a, b string) (float64, error)
	DetectProtectedAttributes(text string) []string
}

// Weights of the component scores in the overall score.
type Weights struct {
	Skills         float64 `mapstructure:"skills"`
	Experience     float64 `mapstructure:"experience"`
	Education      float64 `mapstructure:"education"`
	Certifications float64 `mapstructure:"certifications"`
}

func DefaultWeights() Weights {
	return Weights{Skills: 0.4, Experience: 0.3, Education: 0.2, Certifications: 0.1}
}

func (w Weights) valid() bool {
	return w.Skills >= 0 && w.Experience >= 0 && w.Education >= 0 && w.Certifications >= 0 &&
		w.Skills+w.Experience+w.Education+w.Certifications > 0
}

const semanticMatchThreshold = 0.7

var degreeLevels = []struct {
	keyword string
	level   int
}{
	{"phd", 4}, {"doctorate", 4},
	{"master", 3}, {"msc", 3}, {"m.s.", 3}, {"mba", 3},
	{"bachelor", 2}, {"bsc", 2}, {"b.s.", 2},
	{"associate", 1}, {"diploma", 1},
}

var certificationKeywords = []string{
	"aws", "azure", "gcp", "google cloud", "microsoft certified",
	"tensorflow", "pytorch", "scikit-learn", "machine learning",
	"data science", "python", "java", "sql", "pmp", "agile",
}

// Scorer rates a résumé against a job description.
type Scorer struct {
	analyzer Analyzer
	weights  Weights
	logger   *zap.Logger
	now      func() time.Time
}

// NewScorer returns a scorer. Invalid weights fall back to DefaultWeights.
func NewScorer(analyzer Analyzer, weights Weights, log *zap.Logger) *Scorer {
	l := logger.WithFields(log, zap.String("component", "resume-scorer"))
	if !weights.valid() {
		l.Warn("invalid résumé score weights, using defaults", zap.Any("weights", weights))
		weights = DefaultWeights()
	}
	return &Scorer{analyzer: analyzer, weights: weights, logger: l, now: time.Now}
}

func (s *Scorer) Score(ctx context.Context, resume domain.ResumeData, job domain.JobDescription) (domain.ScoringResult, error) {
	skillScore, err := s.skillMatch(ctx, resume.Skills, job.RequiredSkills)
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("score skills for %s: %w", resume.CandidateID, err)
	}
	educationScore, err := s.education(ctx, resume.Education, job.EducationRequirements)
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("score education for %s: %w", resume.CandidateID, err)
	}
	experienceScore := experience(resume.ExperienceYears, job.ExperienceRequired)
	certScore := certifications(resume.Certifications, job.RequiredSkills)

	overall := skillScore*s.weights.Skills +
		experienceScore*s.weights.Experience +
		educationScore*s.weights.Education +
		certScore*s.weights.Certifications
	overall = utils.Round2(utils.Clamp(overall, 0, 100))

	matched, missing := skillCoverage(resume.Skills, job.RequiredSkills)
	result := domain.ScoringResult{
		ResumeID:           resume.CandidateID,
		JobID:              job.JobID,
		OverallScore:       overall,
		SkillMatchScore:    utils.Round2(skillScore),
		ExperienceScore:    utils.Round2(experienceScore),
		EducationScore:     utils.Round2(educationScore),
		CertificationScore: utils.Round2(certScore),
		MatchedSkills:      matched,
		MissingSkills:      missing,
		Explanation:        explanation(resume, job, overall, matched, missing),
		ComplianceFlags:    s.complianceFlags(resume, job),
		ScoredAt:           s.now(),
	}

	s.logger.Info("résumé scored",
		zap.String(logger.FieldCandidate, resume.CandidateID),
		zap.String("job_id", job.JobID),
		zap.Float64("overall_score", overall),
	)
	return result, nil
}

// BatchScore scores every résumé against job, highest first. Résumés that
// fail to score are logged and left out.
func (s *Scorer) BatchScore(ctx context.Context, resumes []domain.ResumeData, job domain.JobDescription) []domain.ScoringResult {
	results := make([]domain.ScoringResult, 0, len(resumes))
	for _, r := range resumes {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("batch scoring interrupted", zap.Error(err), zap.Int("scored", len(results)))
			break
		}
		res, err := s.Score(ctx, r, job)
		if err != nil {
			s.logger.Error("failed to score résumé", zap.String(logger.FieldCandidate, r.CandidateID), zap.Error(err))
			continue
		}
		results = append(results, res)
	}

	slices.SortStableFunc(results, func(a, b domain.ScoringResult) int {
		return cmp.Compare(b.OverallScore, a.OverallScore)
	})
	return results
}

func (s *Scorer) skillMatch(ctx context.Context, have, required []domain.Skill) (float64, error) {
	if len(required) == 0 {
		return 0, nil
	}

	haveNames := make(map[string]domain.Skill, len(have))
	for _, sk := range have {
		haveNames[strings.ToLower(sk.Name)] = sk
	}
	requiredNames := make(map[string]bool, len(required))
	for _, sk := range required {
		requiredNames[strings.ToLower(sk.Name)] = true
	}

	var exact, proficiency, semantic float64
	for name := range requiredNames {
		if sk, ok := haveNames[name]; ok {
			exact++
			proficiency += float64(sk.ProficiencyLevel) * 4
		}
	}

	for _, req := range required {
		if _, ok := haveNames[strings.ToLower(req.Name)]; ok {
			continue
		}
		best := 0.0
		for _, sk := range have {
			sim, err := s.analyzer.SemanticSimilarity(ctx, req.Name, sk.Name)
			if err != nil {
				return 0, err
			}
			best = max(best, sim)
		}
		if best > semanticMatchThreshold {
			semantic += best * 20
		}
	}

	return min(100, exact/float64(len(requiredNames))*100+semantic+proficiency), nil
}

func experience(have, required float64) float64 {
	if required == 0 {
		if have > 0 {
			return 100
		}
		return 50
	}
	if have >= required {
		return min(100, 80+(min(have/required, 2)-1)*20)
	}
	return max(0, have/required*80)
}

func (s *Scorer) education(ctx context.Context, have []domain.Education, required []string) (float64, error) {
	if len(required) == 0 {
		return 80, nil
	}

	contexts := make([]string, 0, len(have))
	for _, e := range have {
		contexts = append(contexts, strings.ToLower(e.Context))
	}
	haveText := strings.Join(contexts, " ")
	requiredText := strings.ToLower(strings.Join(required, " "))

	similarity, err := s.analyzer.SemanticSimilarity(ctx, haveText, requiredText)
	if err != nil {
		return 0, err
	}

	haveLevel, requiredLevel := degreeLevel(haveText), degreeLevel(requiredText)
	var levelScore float64
	switch {
	case haveLevel >= requiredLevel:
		levelScore = 100
	case haveLevel > 0:
		levelScore = float64(haveLevel) / float64(requiredLevel) * 80
	default:
		levelScore = 40
	}

	return (similarity*50 + levelScore*50) / 100, nil
}

func degreeLevel(text string) int {
	level := 0
	for _, d := range degreeLevels {
		if strings.Contains(text, d.keyword) {
			level = max(level, d.level)
		}
	}
	return level
}

func certifications(certs []string, required []domain.Skill) float64 {
	if len(certs) == 0 {
		return 50
	}

	text := strings.ToLower(strings.Join(certs, " "))
	score := 50.0
	for _, k := range certificationKeywords {
		if strings.Contains(text, k) {
			score += 10
		}
	}
	for _, sk := range required {
		if strings.Contains(text, strings.ToLower(sk.Name)) {
			score += 15
		}
	}
	return min(100, score)
}

func skillCoverage(have, required []domain.Skill) (matched, missing []string) {
	names := make(map[string]bool, len(have))
	for _, sk := range have {
		names[strings.ToLower(sk.Name)] = true
	}

	matched, missing = []string{}, []string{}
	for _, sk := range required {
		if names[strings.ToLower(sk.Name)] {
			matched = append(matched, sk.Name)
		} else {
			missing = append(missing, sk.Name)
		}
	}
	return matched, missing
}

func explanation(resume domain.ResumeData, job domain.JobDescription, overall float64, matched, missing []string) string {
	parts := make([]string, 0, 6)

	switch {
	case overall >= 80:
		parts = append(parts, "Excellent match with high alignment to job requirements.")
	case overall >= 60:
		parts = append(parts, "Good match with solid alignment to key requirements.")
	case overall >= 40:
		parts = append(parts, "Moderate match with some gaps in key areas.")
	default:
		parts = append(parts, "Low match with significant gaps in requirements.")
	}

	if len(matched) > 0 {
		parts = append(parts, "Key matched skills: "+strings.Join(matched[:min(5, len(matched))], ", "))
	}
	if len(missing) > 0 {
		parts = append(parts, "Missing critical skills: "+strings.Join(missing[:min(5, len(missing))], ", "))
	}

	if resume.ExperienceYears >= job.ExperienceRequired {
		parts = append(parts, fmt.Sprintf("Experience level (%.1f years) meets or exceeds requirements (%.1f years).", resume.ExperienceYears, job.ExperienceRequired))
	} else {
		parts = append(parts, fmt.Sprintf("Experience level (%.1f years) below required (%.1f years).", resume.ExperienceYears, job.ExperienceRequired))
	}

	if len(resume.Education) > 0 {
		parts = append(parts, "Education background aligns well with requirements.")
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("Recommendation: Focus on developing skills in %s.", strings.Join(missing[:min(3, len(missing))], ", ")))
	}

	return strings.Join(parts, " ")
}

func (s *Scorer) complianceFlags(resume domain.ResumeData, job domain.JobDescription) []string {
	flags := make([]string, 0)
	for _, attr := range s.analyzer.DetectProtectedAttributes(resume.RawText) {
		flags = append(flags, "Protected attribute detected: "+attr)
	}
	for _, attr := range s.analyzer.DetectProtectedAttributes(job.RawText) {
		flags = append(flags, "Protected attribute in job description: "+attr)
	}
	if len(resume.Skills) == 0 {
		flags = append(flags, "No skills extracted - low explainability")
	}
	return flags
}

// Distribution buckets overall scores.
type Distribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Moderate  int `json:"moderate"`
	Poor      int `json:"poor"`
}

type Statistics struct {
	Total        int          `json:"total_resumes"`
	AverageScore float64      `json:"average_score"`
	MaxScore     float64      `json:"max_score"`
	MinScore     float64      `json:"min_score"`
	MedianScore  float64      `json:"median_score"`
	Distribution Distribution `json:"score_distribution"`
}

// ComputeStatistics summarises a batch. The median is the upper middle value
// for even counts.
func ComputeStatistics(results []domain.ScoringResult) Statistics {
	if len(results) == 0 {
		return Statistics{}
	}

	scores := make([]float64, 0, len(results))
	var dist Distribution
	for _, r := range results {
		scores = append(scores, r.OverallScore)
		switch {
		case r.OverallScore >= 80:
			dist.Excellent++
		case r.OverallScore >= 60:
			dist.Good++
		case r.OverallScore >= 40:
			dist.Moderate++
		default:
			dist.Poor++
		}
	}
	slices.Sort(scores)

	return Statistics{
		Total:        len(scores),
		AverageScore: utils.Round2(utils.Mean(scores)),
		MaxScore:     scores[len(scores)-1],
		MinScore:     scores[0],
		MedianScore:  scores[len(scores)/2],
		Distribution: dist,
	}
}
