package interview

import (
	"sync"

	"github.com/spigell/candidate-assessor/internal/domain"
	"go.uber.org/zap"
)

type performance struct {
	question  domain.Question
	score     float64
	seconds   int
	integrity float64
}

// entry is the engine-owned state of one live session. mu serializes every
// mutation of the session.
type entry struct {
	mu sync.Mutex

	session   domain.InterviewSession
	remaining []domain.Question
	asked     map[string]bool
	history   []performance
	// categories keeps first-seen order so reports and tie-breaks are stable.
	categories     []string
	categoryScores map[string][]float64
	metrics        []domain.IntegrityMetrics
	closed         bool

	logger *zap.Logger
}

// Store is the registry of live sessions keyed by session id.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) insert(id string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = e
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
