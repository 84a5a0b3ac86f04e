package bias

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/candidate-assessor/internal/utils"
)

type Comparison struct {
	LabelA           string   `json:"label_a"`
	ScoreA           float64  `json:"score_a"`
	LabelB           string   `json:"label_b"`
	ScoreB           float64  `json:"score_b"`
	Difference       float64  `json:"difference"`
	ImprovementAreas []string `json:"improvement_areas"`
}

// Compare scores two texts, typically a job description before and after
// editing. ImprovementAreas lists bias types where b scores lower than a.
func (d *Detector) Compare(ctx context.Context, a, b, labelA, labelB string) Comparison {
	ra := d.Detect(ctx, a, labelA)
	rb := d.Detect(ctx, b, labelB)

	c := Comparison{
		LabelA:           labelA,
		ScoreA:           ra.OverallScore,
		LabelB:           labelB,
		ScoreB:           rb.OverallScore,
		Difference:       utils.Round2(max(ra.OverallScore-rb.OverallScore, rb.OverallScore-ra.OverallScore)),
		ImprovementAreas: []string{},
	}

	ca, cb := ra.categories(), rb.categories()
	for i := range ca {
		if cb[i].category.Score < ca[i].category.Score {
			c.ImprovementAreas = append(c.ImprovementAreas, ca[i].key)
		}
	}
	return c
}

func (d *Detector) riskLevel(score float64) string {
	if score > d.threshold {
		return "HIGH"
	}
	return "LOW"
}

// Report renders a result as plain text.
func (d *Detector) Report(r Result) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("BIAS ANALYSIS REPORT")
	line("%s", strings.Repeat("=", 40))
	line("Overall Bias Score: %.2f/1.0", r.OverallScore)
	line("Risk Level: %s", d.riskLevel(r.OverallScore))
	line("")
	line("DETAILED ANALYSIS:")
	line("%s", strings.Repeat("-", 20))

	for _, nc := range r.categories() {
		line("")
		line("%s:", nc.label)
		line("  Score: %.2f/1.0", nc.category.Score)
		line("  Risk Level: %s", d.riskLevel(nc.category.Score))
		if len(nc.category.Indicators) > 0 {
			line("  Indicators:")
			for _, ind := range nc.category.Indicators {
				line("    - %s", ind)
			}
		}
	}

	if len(r.ProtectedAttributes) > 0 {
		line("")
		line("Protected Attributes Detected:")
		for _, attr := range r.ProtectedAttributes {
			line("  - %s", attr)
		}
	}

	if len(r.Recommendations) > 0 {
		line("")
		line("RECOMMENDATIONS:")
		line("%s", strings.Repeat("-", 15))
		for _, rec := range r.Recommendations {
			line("- %s", rec)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
