package domain

import "testing"

func TestDifficultyStepsStayInRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     Difficulty
		harder Difficulty
		easier Difficulty
	}{
		{Beginner, Intermediate, Beginner},
		{Intermediate, Advanced, Beginner},
		{Advanced, Expert, Intermediate},
		{Expert, Expert, Advanced},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			t.Parallel()
			if got := tt.in.Harder(); got != tt.harder {
				t.Fatalf("harder: expected %s, got %s", tt.harder, got)
			}
			if got := tt.in.Easier(); got != tt.easier {
				t.Fatalf("easier: expected %s, got %s", tt.easier, got)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	d, err := ParseDifficulty(" Advanced ")
	if err != nil || d != Advanced {
		t.Fatalf("expected advanced, got %q (%v)", d, err)
	}
	if _, err := ParseDifficulty("guru"); err == nil {
		t.Fatalf("expected error for unknown difficulty")
	}

	qt, err := ParseQuestionType("coding")
	if err != nil || qt != Coding {
		t.Fatalf("expected coding, got %q (%v)", qt, err)
	}
	if _, err := ParseQuestionType("essay"); err == nil {
		t.Fatalf("expected error for unknown question type")
	}
}

func TestQuestionCloneDoesNotShareTopics(t *testing.T) {
	t.Parallel()

	q := Question{ID: "q1", Topics: []string{"a", "b"}}
	c := q.Clone()
	c.Topics[0] = "changed"

	if q.Topics[0] != "a" {
		t.Fatalf("clone mutated the original topics: %v", q.Topics)
	}
}
