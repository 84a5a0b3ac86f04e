package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAnalyzerSimilarityFromModel(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"similarity\": 0.82, \"reason\": \"covers CLT\"}\n```"}
	a := NewAnalyzer(stub, nil, 0, zap.NewNop())

	score, err := a.SemanticSimilarity(context.Background(), "sampling distribution of means", "central limit theorem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0.82 {
		t.Fatalf("expected 0.82, got %v", score)
	}
	if !strings.Contains(stub.lastPrompt, "central limit theorem") || !strings.Contains(stub.lastPrompt, "sampling distribution") {
		t.Fatalf("expected both texts in the prompt, got %s", stub.lastPrompt)
	}

	if _, err := a.SemanticSimilarity(context.Background(), "sampling distribution of means", "central limit theorem"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected cached second call, got %d model calls", stub.calls)
	}
}

func TestAnalyzerCacheIsBounded(t *testing.T) {
	stub := &stubGenerator{response: `{"similarity": 0.5}`}
	a := NewAnalyzer(stub, nil, 0, zap.NewNop())
	a.cacheSize = 2

	ctx := context.Background()
	for _, answer := range []string{"first answer", "second answer", "third answer"} {
		if _, err := a.SemanticSimilarity(ctx, answer, "reference"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(a.cache) != 2 || len(a.order) != 2 {
		t.Fatalf("expected 2 cached scores, got %d (order %d)", len(a.cache), len(a.order))
	}

	// The oldest pair was evicted and needs a new model call.
	if _, err := a.SemanticSimilarity(ctx, "first answer", "reference"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 4 {
		t.Fatalf("expected 4 model calls, got %d", stub.calls)
	}
	if _, err := a.SemanticSimilarity(ctx, "third answer", "reference"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 4 {
		t.Fatalf("expected a cache hit for the newest pair, got %d model calls", stub.calls)
	}
}

func TestAnalyzerFallsBackToHeuristic(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	stub := &stubGenerator{err: errors.New("quota")}
	a := NewAnalyzer(stub, nil, 0, zap.New(core))

	score, err := a.SemanticSimilarity(context.Background(), "gradient descent optimizer", "gradient descent optimizer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score < 0.99 {
		t.Fatalf("expected heuristic similarity of identical texts near 1, got %v", score)
	}
	if observed.FilterMessage("gemini similarity failed, using heuristic").Len() != 1 {
		t.Fatalf("expected fallback warning to be logged")
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "plain", raw: `{"similarity": 0.5}`, want: 0.5},
		{name: "percentage scale", raw: `{"similarity": 75}`, want: 0.75},
		{name: "string value", raw: `{"similarity": "0.3"}`, want: 0.3},
		{name: "missing", raw: `{"reason": "x"}`, wantErr: true},
		{name: "not json", raw: `similar`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
