package audit

import (
	"slices"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/utils"
)

const (
	TrendImproving     = "improving"
	TrendDeteriorating = "deteriorating"
	TrendStable        = "stable"
	TrendInsufficient  = "insufficient_data"
)

type DayCount struct {
	Total int `json:"total"`
	High  int `json:"high"`
}

type Statistics struct {
	PeriodDays       int                     `json:"period_days"`
	TotalEvents      int                     `json:"total_events"`
	EventTypes       map[string]int          `json:"event_types"`
	Severity         map[domain.Severity]int `json:"severity_breakdown"`
	HighSeverityRate float64                 `json:"high_severity_rate"`
	Daily            map[string]DayCount     `json:"daily_breakdown"`
	Trend            string                  `json:"compliance_trend"`
}

// ComputeStatistics summarizes logs per day. The trend compares the average
// number of high severity events of the last three days against the three
// days before them.
func ComputeStatistics(logs []domain.ComplianceLog, days int) Statistics {
	stats := Statistics{
		PeriodDays:  days,
		TotalEvents: len(logs),
		EventTypes:  make(map[string]int),
		Severity:    severityCounts(),
		Daily:       make(map[string]DayCount),
		Trend:       TrendInsufficient,
	}

	for _, l := range logs {
		stats.EventTypes[l.EventType]++
		stats.Severity[l.Severity]++

		key := l.Timestamp.UTC().Format(time.DateOnly)
		day := stats.Daily[key]
		day.Total++
		if l.Severity == domain.SeverityHigh {
			day.High++
		}
		stats.Daily[key] = day
	}

	if len(logs) > 0 {
		stats.HighSeverityRate = utils.Round2(float64(stats.Severity[domain.SeverityHigh]) / float64(len(logs)) * 100)
	}
	stats.Trend = trend(stats.Daily)

	return stats
}

func trend(daily map[string]DayCount) string {
	if len(daily) < 2 {
		return TrendInsufficient
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	recent := dates[max(0, len(dates)-3):]
	var earlier []string
	if len(dates) >= 6 {
		earlier = dates[len(dates)-6 : len(dates)-3]
	} else {
		earlier = dates[:max(0, len(dates)-3)]
	}
	if len(earlier) == 0 {
		return TrendInsufficient
	}

	avgHigh := func(keys []string) float64 {
		values := make([]float64, 0, len(keys))
		for _, k := range keys {
			values = append(values, float64(daily[k].High))
		}
		return utils.Mean(values)
	}

	recentHigh, earlierHigh := avgHigh(recent), avgHigh(earlier)
	switch {
	case recentHigh > earlierHigh*1.2:
		return TrendDeteriorating
	case recentHigh < earlierHigh*0.8:
		return TrendImproving
	default:
		return TrendStable
	}
}
