package interview

import (
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
)

// Config holds the interview policy. Zero values fall back to DefaultConfig.
type Config struct {
	MaxQuestions      int               `mapstructure:"max-questions"`
	MinQuestions      int               `mapstructure:"min-questions"`
	MaxDuration       time.Duration     `mapstructure:"max-duration"`
	DefaultDifficulty domain.Difficulty `mapstructure:"default-difficulty"`
	DefaultCategories []string          `mapstructure:"default-categories"`

	// RecentWindow is the number of latest scores used for termination and difficulty decisions.
	RecentWindow int     `mapstructure:"recent-window"`
	FailBelow    float64 `mapstructure:"fail-below"`
	MasteryAbove float64 `mapstructure:"mastery-above"`
	AdvanceAbove float64 `mapstructure:"advance-above"`
	DropBelow    float64 `mapstructure:"drop-below"`
	// WeakCategoryBelow marks categories whose running average is under it.
	WeakCategoryBelow float64 `mapstructure:"weak-category-below"`

	// IntegrityThreshold separates compliant sessions from flagged ones.
	IntegrityThreshold float64 `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		MaxQuestions:      15,
		MinQuestions:      5,
		MaxDuration:       2 * time.Hour,
		DefaultDifficulty: domain.Intermediate,
		DefaultCategories: []string{
			"data_science_fundamentals",
			"machine_learning",
			"python_programming",
			"agentic_ai_systems",
			"prompt_engineering",
		},
		RecentWindow:       3,
		FailBelow:          30,
		MasteryAbove:       90,
		AdvanceAbove:       85,
		DropBelow:          40,
		WeakCategoryBelow:  60,
		IntegrityThreshold: 70,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = def.MaxQuestions
	}
	if c.MinQuestions <= 0 {
		c.MinQuestions = def.MinQuestions
	}
	c.MinQuestions = min(c.MinQuestions, c.MaxQuestions)
	if c.MaxDuration <= 0 {
		c.MaxDuration = def.MaxDuration
	}
	if !c.DefaultDifficulty.Valid() {
		c.DefaultDifficulty = def.DefaultDifficulty
	}
	if len(c.DefaultCategories) == 0 {
		c.DefaultCategories = def.DefaultCategories
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = def.RecentWindow
	}
	if c.FailBelow <= 0 {
		c.FailBelow = def.FailBelow
	}
	if c.MasteryAbove <= 0 {
		c.MasteryAbove = def.MasteryAbove
	}
	if c.AdvanceAbove <= 0 {
		c.AdvanceAbove = def.AdvanceAbove
	}
	if c.DropBelow <= 0 {
		c.DropBelow = def.DropBelow
	}
	if c.WeakCategoryBelow <= 0 {
		c.WeakCategoryBelow = def.WeakCategoryBelow
	}
	if c.IntegrityThreshold <= 0 {
		c.IntegrityThreshold = def.IntegrityThreshold
	}
	return c
}
