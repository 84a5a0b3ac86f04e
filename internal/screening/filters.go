package screening

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/domain"
)

type minScoreFilter struct {
	disabled bool
	reason   string
	min      float64
}

// NewMinScore creates a filter that removes candidates below the minimum overall score.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg != nil {
		f.min = cfg.MinScore
	}
	if f.min < 0 || f.min > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %v", f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Exclude(func(r domain.ScoringResult) bool { return r.OverallScore < f.min })
	if len(excluded) > 0 {
		deps.Logger.Info("excluding candidates below minimum score",
			zap.Float64("min_score", f.min),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.FormatFloat(f.min, 'f', -1, 64)},
	}
}

type complianceFlagsFilter struct {
	disabled bool
	reason   string
	max      int
}

// NewComplianceFlags creates a filter that removes candidates whose scoring
// raised more compliance flags than allowed.
func NewComplianceFlags() Filter {
	return &complianceFlagsFilter{}
}

func (f *complianceFlagsFilter) Name() string { return "compliance_flags" }

func (f *complianceFlagsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *complianceFlagsFilter) IsEnabled() bool { return !f.disabled }

func (f *complianceFlagsFilter) Validate(cfg *Config) error {
	f.max = 0
	if cfg != nil {
		f.max = cfg.MaxComplianceFlags
	}
	if f.max < 0 {
		return fmt.Errorf("maximum compliance flags must not be negative, got %d", f.max)
	}
	return nil
}

func (f *complianceFlagsFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Exclude(func(r domain.ScoringResult) bool { return len(r.ComplianceFlags) > f.max })
	if len(excluded) > 0 {
		deps.Logger.Info("excluding candidates with compliance flags",
			zap.Int("max_flags", f.max),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *complianceFlagsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"max_flags": strconv.Itoa(f.max)},
	}
}

type skillCoverageFilter struct {
	disabled bool
	reason   string
	min      float64
}

// NewSkillCoverage creates a filter that removes candidates missing too many
// required skills.
func NewSkillCoverage() Filter {
	return &skillCoverageFilter{}
}

func (f *skillCoverageFilter) Name() string { return "skill_coverage" }

func (f *skillCoverageFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *skillCoverageFilter) IsEnabled() bool { return !f.disabled }

func (f *skillCoverageFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg != nil {
		f.min = cfg.MinSkillCoverage
	}
	if f.min < 0 || f.min > 1 {
		return fmt.Errorf("minimum skill coverage must be within [0, 1], got %v", f.min)
	}
	return nil
}

func (f *skillCoverageFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Exclude(func(r domain.ScoringResult) bool { return Coverage(r) < f.min })
	if len(excluded) > 0 {
		deps.Logger.Info("excluding candidates by required skill coverage",
			zap.Float64("min_coverage", f.min),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *skillCoverageFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_coverage": strconv.FormatFloat(f.min, 'f', -1, 64)},
	}
}

type topFilter struct {
	disabled bool
	reason   string
	top      int
}

// NewTop creates a filter that keeps only the first N candidates. Zero keeps everyone.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *topFilter) IsEnabled() bool { return !f.disabled }

func (f *topFilter) Validate(cfg *Config) error {
	f.top = 0
	if cfg != nil {
		f.top = cfg.Top
	}
	if f.top < 0 {
		return fmt.Errorf("top must not be negative, got %d", f.top)
	}
	return nil
}

func (f *topFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.top == 0 || c.Len() <= f.top {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	rank := 0
	excluded := c.Exclude(func(domain.ScoringResult) bool {
		rank++
		return rank > f.top
	})
	deps.Logger.Info("keeping top candidates",
		zap.Int("top", f.top),
		zap.Strings("excluded_candidates", excluded),
	)

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *topFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"top": strconv.Itoa(f.top)},
	}
}
