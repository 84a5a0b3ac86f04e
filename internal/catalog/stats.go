package catalog

import "github.com/spigell/candidate-assessor/internal/domain"

type Statistics struct {
	Total            int                         `json:"total_questions"`
	ByType           map[domain.QuestionType]int `json:"by_type"`
	ByDifficulty     map[domain.Difficulty]int   `json:"by_difficulty"`
	ByCategory       map[string]int              `json:"by_category"`
	AverageTimeLimit float64                     `json:"average_time_limit"`
	AveragePoints    float64                     `json:"average_points"`
}

func (c *Catalog) Statistics() Statistics {
	stats := Statistics{
		ByType:       make(map[domain.QuestionType]int),
		ByDifficulty: make(map[domain.Difficulty]int),
		ByCategory:   make(map[string]int),
	}

	var timeTotal, pointsTotal int
	for _, q := range c.All() {
		stats.Total++
		stats.ByType[q.Type]++
		stats.ByDifficulty[q.Difficulty]++
		stats.ByCategory[q.Category]++
		timeTotal += q.TimeLimit
		pointsTotal += q.Points
	}

	if stats.Total > 0 {
		stats.AverageTimeLimit = float64(timeTotal) / float64(stats.Total)
		stats.AveragePoints = float64(pointsTotal) / float64(stats.Total)
	}

	return stats
}
