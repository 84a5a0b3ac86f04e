// Package catalog stores interview questions and answers category,
// difficulty and topic queries, including balanced set selection.
package catalog

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
	"go.uber.org/zap"
)

// Options configure a Catalog.
type Options struct {
	Logger *zap.Logger
	// Seed fixes the random source used by Random and BalancedSet. Zero seeds from the clock.
	Seed uint64
}

// Catalog is an in-memory question store safe for concurrent use. Questions
// are returned as copies and keep their insertion order.
type Catalog struct {
	mu    sync.RWMutex
	byID  map[string]domain.Question
	order []string

	rndMu sync.Mutex
	rnd   *rand.Rand

	logger *zap.Logger
}

// New builds a catalog from questions. Invalid or duplicate questions are rejected.
func New(questions []domain.Question, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	c := &Catalog{
		byID:   make(map[string]domain.Question, len(questions)),
		rnd:    rand.New(rand.NewPCG(seed, seed>>1|1)),
		logger: logger,
	}

	for _, q := range questions {
		if err := c.Add(q); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewDefault builds a catalog holding the built-in question set.
func NewDefault(opts Options) *Catalog {
	c, err := New(DefaultQuestions(), opts)
	if err != nil {
		// The built-in set is validated by tests.
		panic(fmt.Sprintf("default question set is invalid: %v", err))
	}
	return c
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// All returns every question in insertion order.
func (c *Catalog) All() []domain.Question {
	return c.filter(func(domain.Question) bool { return true })
}

func (c *Catalog) ByID(id string) (domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, ok := c.byID[id]
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
	}
	return q.Clone(), nil
}

// ByCategory returns the questions of category. An empty difficulty matches every tier.
func (c *Catalog) ByCategory(category string, difficulty domain.Difficulty) []domain.Question {
	return c.filter(func(q domain.Question) bool {
		return q.Category == category && (difficulty == "" || q.Difficulty == difficulty)
	})
}

func (c *Catalog) ByDifficulty(difficulty domain.Difficulty) []domain.Question {
	return c.filter(func(q domain.Question) bool { return q.Difficulty == difficulty })
}

// ByTopics returns questions tagged with at least one of topics.
func (c *Catalog) ByTopics(topics []string) []domain.Question {
	return c.filter(func(q domain.Question) bool {
		for _, topic := range q.Topics {
			if slices.Contains(topics, topic) {
				return true
			}
		}
		return false
	})
}

// Categories returns the categories present in the catalog in first-seen order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0)
	for _, id := range c.order {
		category := c.byID[id].Category
		if !slices.Contains(out, category) {
			out = append(out, category)
		}
	}
	return out
}

// HasCategory reports whether at least one question belongs to category.
func (c *Catalog) HasCategory(category string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, q := range c.byID {
		if q.Category == category {
			return true
		}
	}
	return false
}

// Random returns up to count randomly ordered questions. Empty categories or
// difficulty do not constrain the selection.
func (c *Catalog) Random(count int, categories []string, difficulty domain.Difficulty) []domain.Question {
	pool := c.filter(func(q domain.Question) bool {
		if len(categories) > 0 && !slices.Contains(categories, q.Category) {
			return false
		}
		return difficulty == "" || q.Difficulty == difficulty
	})

	c.shuffle(pool)
	if count >= 0 && len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

// BalancedSet picks up to count questions spread across categories, taking at
// most one question per difficulty tier of a category before reusing tiers.
// Remaining slots are filled from the whole catalog. It returns fewer than
// count questions only when the catalog is smaller than count.
func (c *Catalog) BalancedSet(count int, categories []string) []domain.Question {
	if count <= 0 {
		return []domain.Question{}
	}
	if len(categories) == 0 {
		categories = c.Categories()
	}

	perCategory := max(1, count/max(1, len(categories)))
	selected := make([]domain.Question, 0, count)
	taken := make(map[string]bool)

	take := func(q domain.Question) {
		selected = append(selected, q)
		taken[q.ID] = true
	}

	for _, category := range categories {
		if len(selected) >= count {
			break
		}

		picked := 0
		for _, difficulty := range domain.Difficulties {
			if picked >= perCategory || len(selected) >= count {
				break
			}
			if q, ok := c.pick(c.ByCategory(category, difficulty), taken); ok {
				take(q)
				picked++
			}
		}

		for picked < perCategory && len(selected) < count {
			q, ok := c.pick(c.ByCategory(category, ""), taken)
			if !ok {
				break
			}
			take(q)
			picked++
		}
	}

	for len(selected) < count {
		q, ok := c.pick(c.All(), taken)
		if !ok {
			break
		}
		take(q)
	}

	c.logger.Debug("balanced question set selected",
		zap.Int("requested", count),
		zap.Int("selected", len(selected)),
		zap.Strings("categories", categories),
	)

	return selected
}

// Add validates and stores a new question.
func (c *Catalog) Add(q domain.Question) error {
	q = normalize(q)
	if problems := Validate(q); len(problems) > 0 {
		return fmt.Errorf("%w: question %q: %s", domain.ErrInvalidArgument, q.ID, strings.Join(problems, "; "))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[q.ID]; exists {
		return fmt.Errorf("%w: duplicate question id %s", domain.ErrInvalidArgument, q.ID)
	}
	c.byID[q.ID] = q.Clone()
	c.order = append(c.order, q.ID)
	return nil
}

// Update replaces a stored question. Sessions already holding the old
// question keep their copy.
func (c *Catalog) Update(q domain.Question) error {
	q = normalize(q)
	if problems := Validate(q); len(problems) > 0 {
		return fmt.Errorf("%w: question %q: %s", domain.ErrInvalidArgument, q.ID, strings.Join(problems, "; "))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[q.ID]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, q.ID)
	}
	c.byID[q.ID] = q.Clone()
	return nil
}

func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[id]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
	}
	delete(c.byID, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil
}

func (c *Catalog) filter(keep func(domain.Question) bool) []domain.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Question, 0)
	for _, id := range c.order {
		q := c.byID[id]
		if keep(q) {
			out = append(out, q.Clone())
		}
	}
	return out
}

func (c *Catalog) pick(pool []domain.Question, taken map[string]bool) (domain.Question, bool) {
	pool = slices.DeleteFunc(pool, func(q domain.Question) bool { return taken[q.ID] })
	if len(pool) == 0 {
		return domain.Question{}, false
	}

	c.rndMu.Lock()
	idx := c.rnd.IntN(len(pool))
	c.rndMu.Unlock()

	return pool[idx], true
}

func (c *Catalog) shuffle(pool []domain.Question) {
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	c.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
}

func normalize(q domain.Question) domain.Question {
	q.ID = strings.TrimSpace(q.ID)
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)
	if q.ID == "" && q.Text != "" {
		q.ID = SeedID(q.Category, q.Text)
	}
	return q
}
