package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spigell/candidate-assessor/internal/domain"
)

func TestDefaultQuestionsAreValid(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, q := range DefaultQuestions() {
		if problems := Validate(q); len(problems) > 0 {
			t.Fatalf("question %q is invalid: %v", q.Text, problems)
		}
		if seen[q.ID] {
			t.Fatalf("duplicate id %s", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSeedIDIsDeterministic(t *testing.T) {
	t.Parallel()

	a := SeedID("machine_learning", "What is overfitting?")
	b := SeedID("machine_learning", "What is overfitting?")
	c := SeedID("deep_learning", "What is overfitting?")

	if a != b {
		t.Fatalf("expected stable ids, got %s and %s", a, b)
	}
	if a == c {
		t.Fatalf("expected category to change the id")
	}
}

func TestQueries(t *testing.T) {
	t.Parallel()

	c := NewDefault(Options{Seed: 1})

	ml := c.ByCategory("machine_learning", "")
	if len(ml) == 0 {
		t.Fatalf("expected machine_learning questions")
	}
	for _, q := range ml {
		if q.Category != "machine_learning" {
			t.Fatalf("unexpected category %s", q.Category)
		}
	}

	for _, q := range c.ByCategory("machine_learning", domain.Advanced) {
		if q.Difficulty != domain.Advanced {
			t.Fatalf("unexpected difficulty %s", q.Difficulty)
		}
	}

	for _, q := range c.ByDifficulty(domain.Expert) {
		if q.Difficulty != domain.Expert {
			t.Fatalf("unexpected difficulty %s", q.Difficulty)
		}
	}

	tagged := c.ByTopics([]string{"decorators", "transformers"})
	if len(tagged) != 2 {
		t.Fatalf("expected 2 tagged questions, got %d", len(tagged))
	}

	if c.HasCategory("computer_vision") {
		t.Fatalf("computer_vision has no seeded questions")
	}

	first := c.All()[0]
	got, err := c.ByID(first.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.Text != first.Text {
		t.Fatalf("unexpected question %q", got.Text)
	}

	if _, err := c.ByID("missing"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestReturnedQuestionsAreCopies(t *testing.T) {
	t.Parallel()

	c := NewDefault(Options{Seed: 1})
	q := c.All()[0]
	q.Topics[0] = "mutated"

	again, _ := c.ByID(q.ID)
	if again.Topics[0] == "mutated" {
		t.Fatalf("catalog state leaked through a returned question")
	}
}

func TestBalancedSetSpreadsCategoriesAndTiers(t *testing.T) {
	t.Parallel()

	c := NewDefault(Options{Seed: 7})
	categories := []string{"data_science_fundamentals", "machine_learning", "python_programming", "agentic_ai_systems", "prompt_engineering"}

	set := c.BalancedSet(5, categories)
	if len(set) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(set))
	}

	ids := make(map[string]bool)
	got := make([]string, 0, len(set))
	for _, q := range set {
		if ids[q.ID] {
			t.Fatalf("question %s selected twice", q.ID)
		}
		ids[q.ID] = true
		got = append(got, q.Category)
	}
	for _, category := range categories {
		if !slices.Contains(got, category) {
			t.Fatalf("category %s missing from balanced set %v", category, got)
		}
	}

	set = c.BalancedSet(6, []string{"python_programming"})
	tiers := make(map[domain.Difficulty]bool)
	for _, q := range set[:3] {
		tiers[q.Difficulty] = true
	}
	if len(tiers) != 3 {
		t.Fatalf("expected one question per tier first, got %v", tiers)
	}
}

func TestBalancedSetReturnsFewerWhenCatalogIsSmall(t *testing.T) {
	t.Parallel()

	c := NewDefault(Options{Seed: 3})
	set := c.BalancedSet(c.Len()+10, nil)
	if len(set) != c.Len() {
		t.Fatalf("expected %d questions, got %d", c.Len(), len(set))
	}

	if got := c.BalancedSet(0, nil); len(got) != 0 {
		t.Fatalf("expected empty set, got %d", len(got))
	}
}

func TestRandom(t *testing.T) {
	t.Parallel()

	c := NewDefault(Options{Seed: 11})

	got := c.Random(3, []string{"machine_learning"}, "")
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	for _, q := range got {
		if q.Category != "machine_learning" {
			t.Fatalf("unexpected category %s", q.Category)
		}
	}

	if got := c.Random(10, []string{"computer_vision"}, domain.Beginner); len(got) != 0 {
		t.Fatalf("expected no questions, got %d", len(got))
	}
}

func TestAddUpdateRemove(t *testing.T) {
	t.Parallel()

	c, err := New(nil, Options{Seed: 1})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	q := domain.Question{
		Text:       "Explain how gradient descent finds a minimum.",
		Type:       domain.Conceptual,
		Difficulty: domain.Beginner,
		Category:   "machine_learning",
		Topics:     []string{"optimization"},
		TimeLimit:  5,
		Points:     5,
	}
	if err := c.Add(q); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(q); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}

	stored := c.All()[0]
	stored.Points = 8
	if err := c.Update(stored); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := c.ByID(stored.ID); got.Points != 8 {
		t.Fatalf("expected updated points, got %d", got.Points)
	}

	bad := stored
	bad.TimeLimit = 500
	if err := c.Update(bad); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := c.Remove(stored.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty catalog")
	}
	if err := c.Remove(stored.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := DefaultQuestions()[1]

	tests := []struct {
		name   string
		mutate func(*domain.Question)
	}{
		{name: "short text", mutate: func(q *domain.Question) { q.Text = "short" }},
		{name: "unknown category", mutate: func(q *domain.Question) { q.Category = "astrology" }},
		{name: "time limit", mutate: func(q *domain.Question) { q.TimeLimit = 0 }},
		{name: "points", mutate: func(q *domain.Question) { q.Points = 51 }},
		{name: "topics", mutate: func(q *domain.Question) { q.Topics = nil }},
		{name: "coding template", mutate: func(q *domain.Question) { q.CodeTemplate = "" }},
		{name: "type", mutate: func(q *domain.Question) { q.Type = "essay" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := valid.Clone()
			tt.mutate(&q)
			if problems := Validate(q); len(problems) != 1 {
				t.Fatalf("expected exactly one problem, got %v", problems)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "questions"+ext)
			original := DefaultQuestions()
			if err := SaveFile(path, original); err != nil {
				t.Fatalf("save: %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(loaded) != len(original) {
				t.Fatalf("expected %d questions, got %d", len(original), len(loaded))
			}

			for i := range original {
				want, got := original[i], loaded[i]
				if want.ID != got.ID || want.Text != got.Text || want.Type != got.Type ||
					want.Difficulty != got.Difficulty || want.Category != got.Category ||
					!slices.Equal(want.Topics, got.Topics) || want.TimeLimit != got.TimeLimit ||
					want.Points != got.Points {
					t.Fatalf("question %d changed after round trip:\nwant %+v\ngot  %+v", i, want, got)
				}
			}
		})
	}
}

func TestLoadFileAcceptsListAndLegacyIDs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "questions.yml")
	content := `- question_id: q-1
  text: Explain what a p-value measures.
  type: conceptual
  difficulty: beginner
  category: statistics_probability
  topics: [hypothesis_testing]
  time_limit: "5"
  points: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path, Options{Seed: 1})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	q, err := c.ByID("q-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if q.TimeLimit != 5 || q.Difficulty != domain.Beginner {
		t.Fatalf("unexpected question %+v", q)
	}
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte("questions:\n  - text: hello world text\n    colour: red\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected an error for unknown fields")
	}
}

func TestStatistics(t *testing.T) {
	t.Parallel()

	c := NewDefault(Options{Seed: 1})
	stats := c.Statistics()

	if stats.Total != c.Len() {
		t.Fatalf("expected total %d, got %d", c.Len(), stats.Total)
	}
	sum := 0
	for _, n := range stats.ByType {
		sum += n
	}
	if sum != stats.Total {
		t.Fatalf("type counts %v do not add up to %d", stats.ByType, stats.Total)
	}
	if stats.AveragePoints <= 0 || stats.AverageTimeLimit <= 0 {
		t.Fatalf("expected positive averages, got %+v", stats)
	}
}
