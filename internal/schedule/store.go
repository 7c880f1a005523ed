package schedule

import (
	"sync"
	"time"

	"commute-validation-service/internal/models"
)

// StoredSchedule is an inferred schedule recorded for later reuse,
// stamped with the analysis time.
type StoredSchedule struct {
	BatchID    string                   `json:"batch_id"`
	Schedule   *models.InferredSchedule `json:"schedule"`
	AnalyzedAt time.Time                `json:"analyzed_at"`
}

// Store keeps inferred schedules keyed by batch ID so callers can hand
// them to a persistence collaborator. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	schedules map[string]*StoredSchedule
}

// NewStore creates an empty schedule store
func NewStore() *Store {
	return &Store{schedules: make(map[string]*StoredSchedule)}
}

// Upsert records the schedule for a batch, replacing any previous entry
func (s *Store) Upsert(batchID string, schedule *models.InferredSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedules[batchID] = &StoredSchedule{
		BatchID:    batchID,
		Schedule:   schedule,
		AnalyzedAt: time.Now(),
	}
}

// Get returns the stored schedule for a batch
func (s *Store) Get(batchID string) (*StoredSchedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.schedules[batchID]
	return stored, ok
}

// Delete removes the schedule for a batch
func (s *Store) Delete(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.schedules, batchID)
}

// Len returns the number of stored schedules
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.schedules)
}
