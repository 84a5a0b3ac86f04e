// Package evaluation turns a finished interview report into a hiring signal.
package evaluation

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

// TechnicalDomains are the categories counted towards technical competence.
var TechnicalDomains = []string{
	"data_science_fundamentals",
	"statistics_probability",
	"machine_learning",
	"deep_learning",
	"python_programming",
	"sql_databases",
}

// CriticalDomains raise a concern when their score drops below 40.
var CriticalDomains = []string{"machine_learning", "python_programming", "data_science_fundamentals"}

// Role describes the domain profile of a position.
type Role struct {
	Name             string   `json:"name" mapstructure:"name"`
	CriticalDomains  []string `json:"critical_domains" mapstructure:"critical-domains"`
	PreferredDomains []string `json:"preferred_domains" mapstructure:"preferred-domains"`
	MinOverallScore  float64  `json:"min_overall_score" mapstructure:"min-overall-score"`
}

// DefaultRoles is ordered: ties in suitability go to the earlier role.
var DefaultRoles = []Role{
	{
		Name:             "Data Scientist",
		CriticalDomains:  []string{"data_science_fundamentals", "statistics_probability", "machine_learning"},
		PreferredDomains: []string{"python_programming", "sql_databases"},
		MinOverallScore:  70,
	},
	{
		Name:             "ML Engineer",
		CriticalDomains:  []string{"machine_learning", "python_programming", "deep_learning"},
		PreferredDomains: []string{"mlops_devops", "cloud_platforms"},
		MinOverallScore:  75,
	},
	{
		Name:             "Agentic AI Developer",
		CriticalDomains:  []string{"agentic_ai_systems", "prompt_engineering", "llm_fundamentals"},
		PreferredDomains: []string{"python_programming", "machine_learning"},
		MinOverallScore:  80,
	},
	{
		Name:             "Data Analyst",
		CriticalDomains:  []string{"data_science_fundamentals", "sql_databases", "python_programming"},
		PreferredDomains: []string{"statistics_probability"},
		MinOverallScore:  65,
	},
}

type Assessment struct {
	Level          string `json:"level"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

type TechnicalCompetence struct {
	Score      float64  `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Level      string   `json:"assessment"`
}

type Communication struct {
	Score      float64 `json:"score"`
	Assessment string  `json:"assessment"`
	Consistent bool    `json:"consistency"`
}

type ProblemSolving struct {
	Score              float64 `json:"score"`
	Assessment         string  `json:"assessment"`
	Consistent         bool    `json:"consistency"`
	AppropriateTiming  bool    `json:"timing_appropriateness"`
	QuestionsEvaluated int     `json:"questions_evaluated"`
}

type LearningPotential struct {
	Score      float64  `json:"score"`
	Assessment string   `json:"assessment"`
	Indicators []string `json:"indicators"`
}

type RoleScore struct {
	Role  string  `json:"role"`
	Score float64 `json:"score"`
}

type RoleSuitability struct {
	Scores       []RoleScore `json:"role_scores"`
	BestFitRole  string      `json:"best_fit_role"`
	BestFitScore float64     `json:"best_fit_score"`
}

type HiringRecommendation struct {
	Decision   string   `json:"hire_decision"`
	Confidence float64  `json:"confidence_level"`
	NextSteps  []string `json:"next_steps"`
	Concerns   []string `json:"concerns"`
}

// Evaluation is the full hiring signal derived from one report.
type Evaluation struct {
	SessionID      string               `json:"session_id"`
	CandidateID    string               `json:"candidate_id"`
	OverallScore   float64              `json:"overall_score"`
	Overall        Assessment           `json:"overall_assessment"`
	Technical      TechnicalCompetence  `json:"technical_competence"`
	Communication  Communication        `json:"communication_skills"`
	ProblemSolving ProblemSolving       `json:"problem_solving_ability"`
	Learning       LearningPotential    `json:"learning_potential"`
	Roles          RoleSuitability      `json:"role_suitability"`
	Feedback       DetailedFeedback     `json:"detailed_feedback"`
	Hiring         HiringRecommendation `json:"hiring_recommendations"`
}

// Evaluator is stateless; one instance may serve concurrent callers.
type Evaluator struct {
	roles  []Role
	logger *zap.Logger
}

// New returns an evaluator. Without roles DefaultRoles is used.
func New(log *zap.Logger, roles ...Role) *Evaluator {
	if len(roles) == 0 {
		roles = DefaultRoles
	}
	return &Evaluator{
		roles:  slices.Clone(roles),
		logger: logger.WithFields(log, zap.String("component", "evaluator")),
	}
}

func (e *Evaluator) Evaluate(report domain.InterviewReport) Evaluation {
	ev := Evaluation{
		SessionID:      report.SessionID,
		CandidateID:    report.CandidateID,
		OverallScore:   report.OverallScore,
		Overall:        overallAssessment(report.OverallScore),
		Technical:      technicalCompetence(report),
		Communication:  communication(report),
		ProblemSolving: problemSolving(report),
		Learning:       learningPotential(report),
		Roles:          e.roleSuitability(report),
		Feedback:       detailedFeedback(report),
		Hiring:         hiringRecommendation(report),
	}

	e.logger.Debug("candidate evaluated",
		zap.String(logger.FieldSession, report.SessionID),
		zap.String(logger.FieldCandidate, report.CandidateID),
		zap.String("level", ev.Overall.Level),
		zap.String("decision", ev.Hiring.Decision),
		zap.String("best_fit_role", ev.Roles.BestFitRole),
	)
	return ev
}

func overallAssessment(score float64) Assessment {
	switch {
	case score >= 90:
		return Assessment{"Exceptional", "Outstanding performance across all areas", "Strong Hire"}
	case score >= 80:
		return Assessment{"Excellent", "Strong performance with minor areas for improvement", "Hire"}
	case score >= 70:
		return Assessment{"Good", "Solid performance with some gaps", "Consider Hire"}
	case score >= 60:
		return Assessment{"Satisfactory", "Meets basic requirements but needs development", "Consider for Junior Role"}
	case score >= 50:
		return Assessment{"Needs Improvement", "Significant gaps in knowledge", "Not Recommended"}
	default:
		return Assessment{"Poor", "Does not meet requirements", "Not Recommended"}
	}
}

// CompetenceLevel maps a score onto Expert..Novice.
func CompetenceLevel(score float64) string {
	switch {
	case score >= 90:
		return "Expert"
	case score >= 80:
		return "Advanced"
	case score >= 70:
		return "Proficient"
	case score >= 60:
		return "Intermediate"
	case score >= 50:
		return "Basic"
	default:
		return "Novice"
	}
}

func technicalCompetence(report domain.InterviewReport) TechnicalCompetence {
	tc := TechnicalCompetence{Strengths: []string{}, Weaknesses: []string{}}

	scores := make([]float64, 0, len(TechnicalDomains))
	for _, d := range sortedDomains(report.DomainScores) {
		if !slices.Contains(TechnicalDomains, d) {
			continue
		}
		score := report.DomainScores[d]
		scores = append(scores, score)
		switch {
		case score >= 80:
			tc.Strengths = append(tc.Strengths, titleCase(d))
		case score < 60:
			tc.Weaknesses = append(tc.Weaknesses, titleCase(d))
		}
	}

	tc.Score = utils.Round2(utils.Mean(scores))
	tc.Level = CompetenceLevel(tc.Score)
	return tc
}

func communication(report domain.InterviewReport) Communication {
	if len(report.QuestionResults) == 0 {
		return Communication{Assessment: "Insufficient data"}
	}

	clear := 0
	consistent := true
	for _, r := range report.QuestionResults {
		if r.Score >= 70 {
			clear++
		}
		if r.Score < 50 || r.Score > 90 {
			consistent = false
		}
	}
	score := utils.Round2(float64(clear) / float64(len(report.QuestionResults)) * 100)

	var assessment string
	switch {
	case score >= 80 && consistent:
		assessment = "Excellent communicator"
	case score >= 60:
		assessment = "Good communicator"
	case score >= 40:
		assessment = "Adequate communicator"
	default:
		assessment = "Needs communication improvement"
	}

	return Communication{Score: score, Assessment: assessment, Consistent: consistent}
}

func isProblemSolving(r domain.QuestionResult) bool {
	return r.Type == domain.Practical || r.Type == domain.Coding || r.Category == "machine_learning"
}

func problemSolving(report domain.InterviewReport) ProblemSolving {
	var scores, times []float64
	for _, r := range report.QuestionResults {
		if isProblemSolving(r) {
			scores = append(scores, r.Score)
			times = append(times, float64(r.TimeTakenSeconds))
		}
	}
	if len(scores) == 0 {
		return ProblemSolving{Assessment: "No problem-solving questions evaluated"}
	}

	avg := utils.Round2(utils.Mean(scores))
	consistent := slices.Max(scores)-slices.Min(scores) < 30
	avgTime := utils.Mean(times)
	timing := avgTime >= 60 && avgTime <= 600

	var assessment string
	switch {
	case avg >= 80 && consistent && timing:
		assessment = "Excellent problem solver"
	case avg >= 70:
		assessment = "Good problem solver"
	case avg >= 60:
		assessment = "Adequate problem solver"
	default:
		assessment = "Needs problem-solving development"
	}

	return ProblemSolving{
		Score:              avg,
		Assessment:         assessment,
		Consistent:         consistent,
		AppropriateTiming:  timing,
		QuestionsEvaluated: len(scores),
	}
}

// Learning potential indicator points.
const (
	improvementPoints = 20
	balancePoints     = 15
	difficultyPoints  = 25
)

func learningPotential(report domain.InterviewReport) LearningPotential {
	lp := LearningPotential{Indicators: []string{}}
	results := report.QuestionResults

	if len(results) >= 3 {
		half := len(results) / 2
		first := make([]float64, 0, half)
		second := make([]float64, 0, len(results)-half)
		for i, r := range results {
			if i < half {
				first = append(first, r.Score)
			} else {
				second = append(second, r.Score)
			}
		}
		if utils.Mean(second) > utils.Mean(first) {
			lp.Score += improvementPoints
			lp.Indicators = append(lp.Indicators, "improved over the interview")
		}
	}

	if len(report.DomainScores) > 0 {
		values := make([]float64, 0, len(report.DomainScores))
		for _, v := range report.DomainScores {
			values = append(values, v)
		}
		if stdDev(values) < 20 {
			lp.Score += balancePoints
			lp.Indicators = append(lp.Indicators, "balanced across categories")
		}
	}

	var hard []float64
	for _, r := range results {
		if r.Difficulty == domain.Advanced || r.Difficulty == domain.Expert {
			hard = append(hard, r.Score)
		}
	}
	if len(hard) > 0 && utils.Mean(hard) >= 60 {
		lp.Score += difficultyPoints
		lp.Indicators = append(lp.Indicators, "handled difficult questions")
	}

	lp.Score = min(100, lp.Score)
	switch {
	case lp.Score >= 80:
		lp.Assessment = "High learning potential"
	case lp.Score >= 60:
		lp.Assessment = "Good learning potential"
	case lp.Score >= 40:
		lp.Assessment = "Moderate learning potential"
	default:
		lp.Assessment = "Limited learning potential"
	}
	return lp
}

// roleSuitability blends 40% critical-domain average, 20% preferred-domain
// average and 40% overall score when it meets the role minimum. Domains
// that were not assessed count as zero.
func (e *Evaluator) roleSuitability(report domain.InterviewReport) RoleSuitability {
	rs := RoleSuitability{Scores: make([]RoleScore, 0, len(e.roles))}

	for i, role := range e.roles {
		overall := 0.0
		if report.OverallScore >= role.MinOverallScore {
			overall = report.OverallScore
		}
		score := utils.Round2(0.4*domainAverage(report.DomainScores, role.CriticalDomains) +
			0.2*domainAverage(report.DomainScores, role.PreferredDomains) +
			0.4*overall)

		rs.Scores = append(rs.Scores, RoleScore{Role: role.Name, Score: score})
		if i == 0 || score > rs.BestFitScore {
			rs.BestFitRole = role.Name
			rs.BestFitScore = score
		}
	}
	return rs
}

func domainAverage(scores map[string]float64, domains []string) float64 {
	values := make([]float64, 0, len(domains))
	for _, d := range domains {
		values = append(values, scores[d])
	}
	return utils.Mean(values)
}

func hiringRecommendation(report domain.InterviewReport) HiringRecommendation {
	var h HiringRecommendation
	switch score := report.OverallScore; {
	case score >= 85:
		h = HiringRecommendation{Decision: "Strong Hire", Confidence: 0.9, NextSteps: []string{
			"Proceed to final interview round",
			"Schedule technical deep-dive with senior team",
			"Consider for immediate start date",
		}}
	case score >= 75:
		h = HiringRecommendation{Decision: "Hire", Confidence: 0.8, NextSteps: []string{
			"Schedule final interview with hiring manager",
			"Review portfolio/projects if available",
			"Consider for team fit assessment",
		}}
	case score >= 65:
		h = HiringRecommendation{Decision: "Consider Hire", Confidence: 0.6, NextSteps: []string{
			"Additional technical assessment recommended",
			"Consider for junior or training position",
			"Evaluate learning potential and attitude",
		}}
	case score >= 50:
		h = HiringRecommendation{Decision: "Hold for Consideration", Confidence: 0.3, NextSteps: []string{
			"Significant skill gaps identified",
			"Consider for different role or training program",
			"Re-evaluate after 3-6 months of skill development",
		}}
	default:
		h = HiringRecommendation{Decision: "Not Recommended", Confidence: 0.9, NextSteps: []string{
			"Does not meet minimum requirements",
			"Consider for different career track",
			"Provide constructive feedback for improvement",
		}}
	}

	h.Concerns = []string{}
	if report.Integrity.AverageScore < 70 {
		h.Concerns = append(h.Concerns, "Integrity concerns during interview")
	}
	if report.Compliance.Violations > 0 {
		h.Concerns = append(h.Concerns, "Compliance violations detected")
	}
	for _, d := range CriticalDomains {
		if score, ok := report.DomainScores[d]; ok && score < 40 {
			h.Concerns = append(h.Concerns, "Critical weakness in "+strings.ReplaceAll(d, "_", " "))
		}
	}
	return h
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := utils.Mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func sortedDomains(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func titleCase(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
