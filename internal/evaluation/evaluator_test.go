package evaluation

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spigell/candidate-assessor/internal/domain"
	"go.uber.org/zap"
)

func sampleReport() domain.InterviewReport {
	return domain.InterviewReport{
		SessionID:    "s-1",
		CandidateID:  "cand-1",
		OverallScore: 68.75,
		DomainScores: map[string]float64{
			"machine_learning":   85,
			"python_programming": 35,
			"prompt_engineering": 70,
		},
		QuestionResults: []domain.QuestionResult{
			{QuestionID: "q1", Category: "machine_learning", Type: domain.Conceptual, Difficulty: domain.Intermediate, Score: 80, TimeTakenSeconds: 100},
			{QuestionID: "q2", Category: "python_programming", Type: domain.Coding, Difficulty: domain.Advanced, Score: 35, TimeTakenSeconds: 200},
			{QuestionID: "q3", Category: "machine_learning", Type: domain.Practical, Difficulty: domain.Advanced, Score: 90, TimeTakenSeconds: 300},
			{QuestionID: "q4", Category: "prompt_engineering", Type: domain.Conceptual, Difficulty: domain.Beginner, Score: 70, TimeTakenSeconds: 50},
		},
		Strengths:  []string{"Strong performance in machine learning"},
		Weaknesses: []string{"Needs improvement in python programming"},
		Integrity:  domain.IntegritySummary{AverageScore: 65},
		Compliance: domain.ComplianceSummary{Violations: 1},
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	ev := New(zap.NewNop()).Evaluate(sampleReport())

	if ev.Overall.Level != "Satisfactory" || ev.Overall.Recommendation != "Consider for Junior Role" {
		t.Fatalf("overall = %+v", ev.Overall)
	}

	if ev.Technical.Score != 60 || ev.Technical.Level != "Intermediate" {
		t.Fatalf("technical = %+v", ev.Technical)
	}
	if !reflect.DeepEqual(ev.Technical.Strengths, []string{"Machine Learning"}) {
		t.Fatalf("technical strengths = %v", ev.Technical.Strengths)
	}
	if !reflect.DeepEqual(ev.Technical.Weaknesses, []string{"Python Programming"}) {
		t.Fatalf("technical weaknesses = %v", ev.Technical.Weaknesses)
	}

	if ev.Communication.Score != 75 || ev.Communication.Consistent || ev.Communication.Assessment != "Good communicator" {
		t.Fatalf("communication = %+v", ev.Communication)
	}

	ps := ev.ProblemSolving
	if ps.Score != 68.33 || ps.Consistent || !ps.AppropriateTiming || ps.QuestionsEvaluated != 3 || ps.Assessment != "Adequate problem solver" {
		t.Fatalf("problem solving = %+v", ps)
	}

	if ev.Learning.Score != 45 || ev.Learning.Assessment != "Moderate learning potential" || len(ev.Learning.Indicators) != 2 {
		t.Fatalf("learning = %+v", ev.Learning)
	}

	wantRoles := []RoleScore{
		{Role: "Data Scientist", Score: 14.83},
		{Role: "ML Engineer", Score: 16},
		{Role: "Agentic AI Developer", Score: 21.33},
		{Role: "Data Analyst", Score: 32.17},
	}
	if !reflect.DeepEqual(ev.Roles.Scores, wantRoles) {
		t.Fatalf("role scores = %+v", ev.Roles.Scores)
	}
	if ev.Roles.BestFitRole != "Data Analyst" || ev.Roles.BestFitScore != 32.17 {
		t.Fatalf("best fit = %s %.2f", ev.Roles.BestFitRole, ev.Roles.BestFitScore)
	}

	if ev.Hiring.Decision != "Consider Hire" || ev.Hiring.Confidence != 0.6 || len(ev.Hiring.NextSteps) != 3 {
		t.Fatalf("hiring = %+v", ev.Hiring)
	}
	wantConcerns := []string{
		"Integrity concerns during interview",
		"Compliance violations detected",
		"Critical weakness in python programming",
	}
	if !reflect.DeepEqual(ev.Hiring.Concerns, wantConcerns) {
		t.Fatalf("concerns = %v", ev.Hiring.Concerns)
	}

	wantLevels := []DomainLevel{
		{Domain: "machine_learning", Score: 85, Level: "Advanced"},
		{Domain: "prompt_engineering", Score: 70, Level: "Proficient"},
		{Domain: "python_programming", Score: 35, Level: "Novice"},
	}
	if !reflect.DeepEqual(ev.Feedback.DomainLevels, wantLevels) {
		t.Fatalf("domain levels = %+v", ev.Feedback.DomainLevels)
	}
	wantAdvice := []string{
		"Practice Python programming with focus on data structures and algorithms",
		"Good foundation. Focus on addressing the identified gaps",
	}
	if !reflect.DeepEqual(ev.Feedback.SpecificRecommendations, wantAdvice) {
		t.Fatalf("recommendations = %v", ev.Feedback.SpecificRecommendations)
	}
}

func TestOverallAssessmentBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		level string
		hire  string
	}{
		{score: 95, level: "Exceptional", hire: "Strong Hire"},
		{score: 90, level: "Exceptional", hire: "Strong Hire"},
		{score: 89.99, level: "Excellent", hire: "Strong Hire"},
		{score: 80, level: "Excellent", hire: "Hire"},
		{score: 70, level: "Good", hire: "Consider Hire"},
		{score: 60, level: "Satisfactory", hire: "Hold for Consideration"},
		{score: 50, level: "Needs Improvement", hire: "Hold for Consideration"},
		{score: 49.9, level: "Poor", hire: "Not Recommended"},
	}

	for _, tt := range tests {
		got := overallAssessment(tt.score)
		if got.Level != tt.level {
			t.Fatalf("score %.2f: level = %q, want %q", tt.score, got.Level, tt.level)
		}
		h := hiringRecommendation(domain.InterviewReport{OverallScore: tt.score, Integrity: domain.IntegritySummary{AverageScore: 100}})
		if h.Decision != tt.hire {
			t.Fatalf("score %.2f: decision = %q, want %q", tt.score, h.Decision, tt.hire)
		}
		if len(h.Concerns) != 0 {
			t.Fatalf("score %.2f: unexpected concerns %v", tt.score, h.Concerns)
		}
	}
}

func TestRoleTiesGoToFirstRole(t *testing.T) {
	t.Parallel()

	ev := New(nil).Evaluate(domain.InterviewReport{})
	if ev.Roles.BestFitRole != DefaultRoles[0].Name || ev.Roles.BestFitScore != 0 {
		t.Fatalf("best fit = %s %.2f", ev.Roles.BestFitRole, ev.Roles.BestFitScore)
	}
	if ev.Communication.Assessment != "Insufficient data" {
		t.Fatalf("communication = %+v", ev.Communication)
	}
	if ev.ProblemSolving.QuestionsEvaluated != 0 {
		t.Fatalf("problem solving = %+v", ev.ProblemSolving)
	}

	custom := New(nil, Role{Name: "Prompt Engineer", CriticalDomains: []string{"prompt_engineering"}})
	ev = custom.Evaluate(sampleReport())
	if len(ev.Roles.Scores) != 1 || ev.Roles.Scores[0].Score != 55.5 {
		t.Fatalf("custom role scores = %+v", ev.Roles.Scores)
	}
}

func TestCompareCandidates(t *testing.T) {
	t.Parallel()

	e := New(nil)
	if _, err := e.CompareCandidates(nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	reports := []domain.InterviewReport{
		{CandidateID: "c1", OverallScore: 60},
		{CandidateID: "c2", OverallScore: 90},
		{CandidateID: "c3", OverallScore: 75},
		{CandidateID: "c4", OverallScore: 75},
		{CandidateID: "c5", OverallScore: 40},
	}
	c, err := e.CompareCandidates(reports)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	order := make([]string, 0, len(c.Rankings))
	for i, r := range c.Rankings {
		if r.Rank != i+1 {
			t.Fatalf("rank %d at position %d", r.Rank, i)
		}
		order = append(order, r.CandidateID)
	}
	if !reflect.DeepEqual(order, []string{"c2", "c3", "c4", "c1", "c5"}) {
		t.Fatalf("order = %v", order)
	}
	if !reflect.DeepEqual(c.TopCandidates, []string{"c2", "c3", "c4"}) {
		t.Fatalf("top = %v", c.TopCandidates)
	}
	if !reflect.DeepEqual(c.RecommendedForHire, []string{"c2", "c3", "c4"}) {
		t.Fatalf("hire = %v", c.RecommendedForHire)
	}
	if !reflect.DeepEqual(c.NeedsImprovement, []string{"c5"}) {
		t.Fatalf("needs improvement = %v", c.NeedsImprovement)
	}
	want := ComparisonMetrics{AverageScore: 68, HighestScore: 90, LowestScore: 40, ScoreRange: 50}
	if c.Metrics != want {
		t.Fatalf("metrics = %+v", c.Metrics)
	}
	if reports[0].CandidateID != "c1" {
		t.Fatalf("input slice reordered")
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	out := Summary(New(nil).Evaluate(sampleReport()))
	for _, want := range []string{
		"CANDIDATE EVALUATION SUMMARY",
		"Overall Assessment: Satisfactory",
		"Strengths: Machine Learning",
		"Data Analyst: 32.2%",
		"Best Fit: Data Analyst",
		"Decision: Consider Hire",
		"Confidence: 60%",
		"  - Compliance violations detected",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
