package integrity

import "time"

// Thresholds holds the tunable policy of the monitor.
type Thresholds struct {
	// Threshold is the session score below which a session is high risk.
	Threshold float64 `mapstructure:"threshold"`

	SuspiciouslyFast time.Duration `mapstructure:"suspiciously-fast"`
	MinAnswerTime    time.Duration `mapstructure:"min-answer-time"`
	SuspiciouslySlow time.Duration `mapstructure:"suspiciously-slow"`
	MaxAnswerTime    time.Duration `mapstructure:"max-answer-time"`
	// TimingTolerance is the allowed relative deviation from the expected answer time.
	TimingTolerance float64 `mapstructure:"timing-tolerance"`

	MinLength int `mapstructure:"min-length"`
	MaxLength int `mapstructure:"max-length"`

	StyleWindow       int     `mapstructure:"style-window"`
	StyleDeviation    float64 `mapstructure:"style-deviation"`
	QualityWindow     int     `mapstructure:"quality-window"`
	QualityDivergence float64 `mapstructure:"quality-divergence"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Threshold:         70,
		SuspiciouslyFast:  10 * time.Second,
		MinAnswerTime:     5 * time.Second,
		SuspiciouslySlow:  10 * time.Minute,
		MaxAnswerTime:     30 * time.Minute,
		TimingTolerance:   0.8,
		MinLength:         10,
		MaxLength:         2000,
		StyleWindow:       5,
		StyleDeviation:    0.3,
		QualityWindow:     3,
		QualityDivergence: 0.4,
	}
}

// withDefaults fills zero values from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if t.Threshold <= 0 {
		t.Threshold = def.Threshold
	}
	if t.SuspiciouslyFast <= 0 {
		t.SuspiciouslyFast = def.SuspiciouslyFast
	}
	if t.MinAnswerTime <= 0 {
		t.MinAnswerTime = def.MinAnswerTime
	}
	if t.SuspiciouslySlow <= 0 {
		t.SuspiciouslySlow = def.SuspiciouslySlow
	}
	if t.MaxAnswerTime <= 0 {
		t.MaxAnswerTime = def.MaxAnswerTime
	}
	if t.TimingTolerance <= 0 {
		t.TimingTolerance = def.TimingTolerance
	}
	if t.MinLength <= 0 {
		t.MinLength = def.MinLength
	}
	if t.MaxLength <= 0 {
		t.MaxLength = def.MaxLength
	}
	if t.StyleWindow <= 0 {
		t.StyleWindow = def.StyleWindow
	}
	if t.StyleDeviation <= 0 {
		t.StyleDeviation = def.StyleDeviation
	}
	if t.QualityWindow <= 0 {
		t.QualityWindow = def.QualityWindow
	}
	if t.QualityDivergence <= 0 {
		t.QualityDivergence = def.QualityDivergence
	}
	return t
}
