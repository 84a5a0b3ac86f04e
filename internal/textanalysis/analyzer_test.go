package textanalysis

import (
	"context"
	"slices"
	"testing"

	"go.uber.org/zap"
)

func TestExtractSkills(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(zap.NewNop())
	skills := h.ExtractSkills("Senior engineer: Python3, PyTorch, sklearn pipelines on AWS with Docker.")

	if !slices.Contains(skills["programming_languages"], "python") {
		t.Fatalf("expected python via variation, got %v", skills["programming_languages"])
	}
	if !slices.Contains(skills["ml_frameworks"], "pytorch") || !slices.Contains(skills["ml_frameworks"], "scikit-learn") {
		t.Fatalf("unexpected ml frameworks: %v", skills["ml_frameworks"])
	}
	if len(skills["cloud_platforms"]) != 2 {
		t.Fatalf("expected aws and docker, got %v", skills["cloud_platforms"])
	}
	if _, ok := skills["deep_learning"]; !ok {
		t.Fatalf("expected every category to be present")
	}
}

func TestSemanticSimilarity(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(zap.NewNop())
	ctx := context.Background()

	same, _ := h.SemanticSimilarity(ctx, "bias variance tradeoff", "Bias-variance tradeoff")
	related, _ := h.SemanticSimilarity(ctx, "overfitting happens when variance is high", "bias variance tradeoff and overfitting")
	unrelated, _ := h.SemanticSimilarity(ctx, "kubernetes pods", "central limit theorem")
	empty, _ := h.SemanticSimilarity(ctx, "", "anything")

	if same < 0.99 {
		t.Fatalf("expected identical content near 1, got %v", same)
	}
	if related <= unrelated {
		t.Fatalf("expected related (%v) > unrelated (%v)", related, unrelated)
	}
	if empty != 0 {
		t.Fatalf("expected 0 for empty text, got %v", empty)
	}
}

func TestDetectProtectedAttributes(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(zap.NewNop())
	got := h.DetectProtectedAttributes("She is a 35 years old Catholic engineer")
	want := []string{"gender", "age", "religion"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := h.DetectProtectedAttributes("Built ETL pipelines in Go"); len(got) != 0 {
		t.Fatalf("expected none, got %v", got)
	}
}

func TestExtractExperienceYears(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(zap.NewNop())
	tests := map[string]float64{
		"7+ years of experience in ML": 7,
		"Experience: 4 yrs":            4,
		"12 years work in analytics":   12,
		"fresh graduate":               0,
	}
	for text, want := range tests {
		if got := h.ExtractExperienceYears(text); got != want {
			t.Fatalf("%q: expected %v, got %v", text, want, got)
		}
	}
}

func TestExtractHelpers(t *testing.T) {
	t.Parallel()

	if got := RedactPII("mail jane@corp.io or 555-123-4567"); got != "mail [EMAIL] or [PHONE]" {
		t.Fatalf("unexpected redaction: %q", got)
	}
	if got := AssessProficiency("expert python developer", "python"); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := AssessProficiency("used sql daily", "sql"); got != 3 {
		t.Fatalf("expected 3 for bare mention, got %d", got)
	}
	if got := EstimateSkillYears("5 years of python and some go", "python"); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}

	responsibilities := ExtractResponsibilities("Role:\n- Design data pipelines for ingestion\n- Lead model reviews with the team\n")
	if len(responsibilities) != 2 {
		t.Fatalf("expected 2 responsibilities, got %v", responsibilities)
	}

	reqs := ExtractEducationRequirements("Master degree in Computer Science or Statistics")
	for _, want := range []string{"master", "degree", "computer science", "statistics"} {
		if !slices.Contains(reqs, want) {
			t.Fatalf("expected %q in %v", want, reqs)
		}
	}
}
