package screening

import "github.com/spigell/candidate-assessor/internal/domain"

// Candidates is an ordered list of scored résumés.
type Candidates struct {
	Items []domain.ScoringResult `json:"items"`
}

func NewCandidates(results []domain.ScoringResult) *Candidates {
	items := make([]domain.ScoringResult, len(results))
	copy(items, results)
	return &Candidates{Items: items}
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ResumeID)
	}
	return ids
}

// Exclude removes every candidate matching drop and returns their résumé ids.
// Order of the remaining candidates is preserved.
func (c *Candidates) Exclude(drop func(domain.ScoringResult) bool) []string {
	var excluded []string
	kept := c.Items[:0]
	for _, item := range c.Items {
		if drop(item) {
			excluded = append(excluded, item.ResumeID)
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return excluded
}

// Coverage is the share of required skills the candidate has. A job without
// required skills is fully covered.
func Coverage(r domain.ScoringResult) float64 {
	total := len(r.MatchedSkills) + len(r.MissingSkills)
	if total == 0 {
		return 1
	}
	return float64(len(r.MatchedSkills)) / float64(total)
}
