package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/candidate-assessor/internal/domain"
	"go.uber.org/zap"
)

func TestRubrics(t *testing.T) {
	t.Parallel()

	code := "def solve(x):\n    # validate input\n    try:\n        return x\n    except ValueError:\n        raise\n"

	tests := []struct {
		name        string
		question    domain.Question
		similarity  Similarity
		text        string
		code        string
		want        float64
		wantFailure bool
	}{
		{
			name:     "multiple choice partial match",
			question: domain.Question{ID: "mc", Type: domain.MultipleChoice, ExpectedAnswer: "python,pandas,numpy"},
			text:     "I use Python and pandas",
			want:     66.67,
		},
		{
			name:     "multiple choice without reference",
			question: domain.Question{ID: "mc", Type: domain.MultipleChoice},
			text:     "anything",
			want:     0,
		},
		{
			name:     "coding full rubric",
			question: domain.Question{ID: "code", Type: domain.Coding, Category: "python_programming"},
			code:     code,
			want:     85,
		},
		{
			name:     "coding falls back to answer text",
			question: domain.Question{ID: "code", Type: domain.Coding, Category: "machine_learning"},
			text:     "def train(): model.fit(x)",
			want:     55,
		},
		{
			name:     "coding empty",
			question: domain.Question{ID: "code", Type: domain.Coding},
			want:     0,
		},
		{
			name:       "conceptual similarity",
			question:   domain.Question{ID: "c", Type: domain.Conceptual, ExpectedAnswer: "reference"},
			similarity: stubSimilarity{value: 0.9},
			text:       words(40),
			want:       90,
		},
		{
			name:       "conceptual short answer is capped",
			question:   domain.Question{ID: "c", Type: domain.Conceptual, ExpectedAnswer: "reference"},
			similarity: stubSimilarity{value: 0.9},
			text:       words(5),
			want:       30,
		},
		{
			name:       "conceptual similarity error uses length",
			question:   domain.Question{ID: "c", Type: domain.Conceptual, ExpectedAnswer: "reference"},
			similarity: stubSimilarity{err: errors.New("timeout")},
			text:       words(40),
			want:       80,
		},
		{
			name:     "practical",
			question: domain.Question{ID: "p", Type: domain.Practical},
			text:     "First we analyze the data and the model, for example a pipeline, therefore it works.",
			want:     85,
		},
		{
			name:        "unknown type",
			question:    domain.Question{ID: "x", Type: "essay"},
			text:        "text",
			want:        0,
			wantFailure: true,
		},
		{
			name:        "similarity panic",
			question:    domain.Question{ID: "c", Type: domain.Conceptual, ExpectedAnswer: "reference"},
			similarity:  stubSimilarity{panic: true},
			text:        words(40),
			want:        0,
			wantFailure: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := rubrics{similarity: tt.similarity, logger: zap.NewNop()}
			got := r.evaluate(context.Background(), tt.question, tt.text, tt.code)
			if got.Score != tt.want {
				t.Fatalf("score = %v, want %v (feedback %q)", got.Score, tt.want, got.Feedback)
			}
			if (got.Failure != "") != tt.wantFailure {
				t.Fatalf("failure = %q, want failure %v", got.Failure, tt.wantFailure)
			}
			if got.Feedback == "" {
				t.Fatalf("feedback must not be empty")
			}
		})
	}
}
