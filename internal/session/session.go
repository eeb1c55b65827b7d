// Package session holds the state of the current analysis run. Starting a
// new run discards the previous one.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
)

// ErrStale is returned when completing a run that is no longer current.
var ErrStale = errors.New("session: run superseded by a newer run")

// Run is one analysis of one uploaded file.
type Run struct {
	ID          uuid.UUID
	Version     uint64
	Upload      string
	StartedAt   time.Time
	CompletedAt time.Time
	Total       int
	Unmatched   int
	Records     []*match.Record
}

// Completed reports whether results have been published for the run.
func (r *Run) Completed() bool {
	return !r.CompletedAt.IsZero()
}

// Store owns the current run.
type Store struct {
	mu      sync.RWMutex
	current *Run
	version uint64
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Begin discards the current run and installs a new, empty one.
func (s *Store) Begin(upload string) Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.current = &Run{
		ID:        uuid.New(),
		Version:   s.version,
		Upload:    upload,
		StartedAt: s.now(),
	}
	return *s.current
}

// Complete publishes results for run id. It fails with ErrStale if another
// run has begun since.
func (s *Store) Complete(id uuid.UUID, res match.Result, records []*match.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.ID != id {
		return ErrStale
	}
	s.current.Total = res.Total
	s.current.Unmatched = res.Unmatched
	s.current.Records = records
	s.current.CompletedAt = s.now()
	return nil
}

// Current returns a copy of the current run, if any.
func (s *Store) Current() (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Run{}, false
	}
	return *s.current, true
}

// Reset discards the current run.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
