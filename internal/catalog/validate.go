package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/candidate-assessor/internal/domain"
)

// KnownCategories lists the categories a question may belong to.
var KnownCategories = []string{
	"data_science_fundamentals",
	"statistics_probability",
	"machine_learning",
	"deep_learning",
	"natural_language_processing",
	"computer_vision",
	"python_programming",
	"sql_databases",
	"data_visualization",
	"mlops_devops",
	"cloud_platforms",
	"agentic_ai_systems",
	"prompt_engineering",
	"llm_fundamentals",
	"multi_agent_coordination",
	"ai_workflow_automation",
	"ethics_ai_safety",
}

const (
	minTextLength = 10
	maxTimeLimit  = 120
	maxPoints     = 50
)

// Validate returns every problem found in q. An empty result means q is valid.
func Validate(q domain.Question) []string {
	problems := make([]string, 0)

	if strings.TrimSpace(q.ID) == "" {
		problems = append(problems, "id is required")
	}
	if len(strings.TrimSpace(q.Text)) < minTextLength {
		problems = append(problems, fmt.Sprintf("text must be at least %d characters", minTextLength))
	}
	if !q.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown type %q", q.Type))
	}
	if !q.Difficulty.Valid() {
		problems = append(problems, fmt.Sprintf("unknown difficulty %q", q.Difficulty))
	}
	if !slices.Contains(KnownCategories, q.Category) {
		problems = append(problems, fmt.Sprintf("unknown category %q", q.Category))
	}
	if q.TimeLimit < 1 || q.TimeLimit > maxTimeLimit {
		problems = append(problems, fmt.Sprintf("time limit must be between 1 and %d minutes", maxTimeLimit))
	}
	if q.Points < 1 || q.Points > maxPoints {
		problems = append(problems, fmt.Sprintf("points must be between 1 and %d", maxPoints))
	}
	if len(q.Topics) == 0 {
		problems = append(problems, "at least one topic is required")
	}
	if q.Type == domain.Coding && strings.TrimSpace(q.CodeTemplate) == "" {
		problems = append(problems, "coding questions require a code template")
	}
	if q.Type == domain.MultipleChoice && strings.TrimSpace(q.ExpectedAnswer) == "" {
		problems = append(problems, "multiple choice questions require expected keywords")
	}

	return problems
}
