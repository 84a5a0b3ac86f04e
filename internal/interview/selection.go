package interview

import (
	"cmp"
	"slices"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

// decide applies the termination rules in order and, when the session
// continues, adapts difficulty and attaches the next question. An empty state
// means the session continues.
func (e *Engine) decide(ent *entry) (domain.SessionState, string) {
	asked := len(ent.history)

	if asked >= e.cfg.MaxQuestions {
		return domain.StateCompleted, ReasonMaxQuestions
	}

	if e.now().Sub(ent.session.StartedAt) > e.cfg.MaxDuration {
		return domain.StateTimedOut, ReasonTimeout
	}

	recent := e.recentAverage(ent)
	if asked >= e.cfg.MinQuestions {
		switch {
		case recent < e.cfg.FailBelow:
			return domain.StateCompleted, ReasonLowPerformance
		case recent > e.cfg.MasteryAbove:
			return domain.StateCompleted, ReasonMastery
		}
	}

	previous := ent.session.Difficulty
	ent.session.Difficulty = e.adjustDifficulty(previous, recent)
	if ent.session.Difficulty != previous {
		ent.logger.Info("difficulty adjusted",
			zap.String("from", string(previous)),
			zap.String("to", string(ent.session.Difficulty)),
			zap.Float64("recent_average", recent),
		)
	}

	next, ok := e.nextQuestion(ent)
	if !ok {
		return domain.StateCompleted, ReasonNoQuestions
	}

	ent.asked[next.ID] = true
	ent.remaining = slices.DeleteFunc(ent.remaining, func(q domain.Question) bool { return q.ID == next.ID })
	ent.session.CurrentQuestion = &next
	return "", ""
}

// recentAverage is the mean of the last RecentWindow scores.
func (e *Engine) recentAverage(ent *entry) float64 {
	from := max(0, len(ent.history)-e.cfg.RecentWindow)
	scores := make([]float64, 0, e.cfg.RecentWindow)
	for _, p := range ent.history[from:] {
		scores = append(scores, p.score)
	}
	return utils.Mean(scores)
}

// adjustDifficulty moves at most one tier. Scores inside the
// [DropBelow, AdvanceAbove] band keep the current tier.
func (e *Engine) adjustDifficulty(current domain.Difficulty, recent float64) domain.Difficulty {
	switch {
	case recent > e.cfg.AdvanceAbove:
		return current.Harder()
	case recent < e.cfg.DropBelow:
		return current.Easier()
	default:
		return current
	}
}

// weakCategories returns categories averaging below the weak threshold,
// worst first. Ties keep first-seen order.
func (e *Engine) weakCategories(ent *entry) []string {
	type weak struct {
		category string
		average  float64
	}

	found := make([]weak, 0)
	for _, category := range ent.categories {
		avg := utils.Mean(ent.categoryScores[category])
		if avg < e.cfg.WeakCategoryBelow {
			found = append(found, weak{category: category, average: avg})
		}
	}
	slices.SortStableFunc(found, func(a, b weak) int { return cmp.Compare(a.average, b.average) })

	out := make([]string, 0, len(found))
	for _, w := range found {
		out = append(out, w.category)
	}
	return out
}

// nextQuestion prefers the weakest category at the current tier, then any
// question at the current tier, then the rest of the initial set.
func (e *Engine) nextQuestion(ent *entry) (domain.Question, bool) {
	difficulty := ent.session.Difficulty

	if weak := e.weakCategories(ent); len(weak) > 0 {
		if q, ok := firstUnasked(e.catalog.ByCategory(weak[0], difficulty), ent.asked); ok {
			return q, true
		}
	}

	if q, ok := firstUnasked(e.catalog.ByDifficulty(difficulty), ent.asked); ok {
		return q, true
	}

	return firstUnasked(ent.remaining, ent.asked)
}

func firstUnasked(pool []domain.Question, asked map[string]bool) (domain.Question, bool) {
	for _, q := range pool {
		if !asked[q.ID] {
			return q, true
		}
	}
	return domain.Question{}, false
}
