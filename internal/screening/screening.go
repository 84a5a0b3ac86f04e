// Package screening narrows a batch of scored résumés down to a shortlist.
package screening

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/logger"
)

// Filter represents a single screening step applied to scored candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, c *Candidates) (*Candidates, Step, error)
}

// Deps aggregates dependencies shared across all screening steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a screening step.
type Step struct {
	Initial int `json:"initial"`
	Dropped int `json:"dropped"`
	Left    int `json:"left"`
}

// Record is the outcome of one executed step.
type Record struct {
	Name string `json:"name"`
	Step
	Excluded []string `json:"excluded_candidates,omitempty"`
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinScore           float64 `mapstructure:"min-score"`
	MaxComplianceFlags int     `mapstructure:"max-compliance-flags"`
	MinSkillCoverage   float64 `mapstructure:"min-skill-coverage"`
	Top                int     `mapstructure:"top"`
}

// DefaultConfig keeps candidates with at least a moderate match and no
// compliance flags.
func DefaultConfig() Config {
	return Config{MinScore: 40, MaxComplianceFlags: 0, MinSkillCoverage: 0.5}
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard screening steps in execution order.
func Default() []Filter {
	return []Filter{NewMinScore(), NewComplianceFlags(), NewSkillCoverage(), NewTop()}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the remaining
// candidates with a record per executed step.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, c *Candidates) (*Candidates, []Record, error) {
	log := logger.WithFields(deps.Logger, zap.String("component", "screening"))
	deps.Logger = log

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	records := make([]Record, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			log.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		before := c.IDs()
		next, info, err := step.Apply(ctx, deps, c)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		records = append(records, Record{Name: step.Name(), Step: info, Excluded: missing(before, next.IDs())})
		c = next
	}

	return c, records, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func missing(before, after []string) []string {
	left := make(map[string]bool, len(after))
	for _, id := range after {
		left[id] = true
	}
	var out []string
	for _, id := range before {
		if !left[id] {
			out = append(out, id)
		}
	}
	return out
}
