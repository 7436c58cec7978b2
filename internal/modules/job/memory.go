// README: In-memory job store used by tests and single-instance deployments.
package job

import (
	"context"
	"fmt"
	"sync"

	"reclaim/internal/types"
)

type MemoryStore struct {
	mu        sync.RWMutex
	items     map[types.ID]*Job
	byBooking map[types.ID]types.ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:     make(map[types.ID]*Job),
		byBooking: make(map[types.ID]types.ID),
	}
}

func (s *MemoryStore) Create(_ context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[j.ID]; ok {
		return fmt.Errorf("job %s already exists", j.ID)
	}
	if _, ok := s.byBooking[j.BookingID]; ok {
		return fmt.Errorf("%w: booking %s already has a job", ErrConflict, j.BookingID)
	}
	s.items[j.ID] = j.Clone()
	s.byBooking[j.BookingID] = j.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return j.Clone(), nil
}

func (s *MemoryStore) GetByBooking(_ context.Context, bookingID types.ID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byBooking[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.items[id].Clone(), nil
}

// Update replaces the job row. Stored evidence is kept as is.
func (s *MemoryStore) Update(_ context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[j.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != j.Version {
		return ErrConflict
	}
	j.Version++
	next := j.Clone()
	next.Evidence = cur.Evidence
	s.items[j.ID] = next
	return nil
}

func (s *MemoryStore) AddEvidence(_ context.Context, jobID types.ID, ev Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[jobID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := cur.EvidenceFor(ev.Status); exists {
		return fmt.Errorf("%w: %s", ErrEvidenceAlreadyExist, ev.Status)
	}
	ev.Photos = append([]string(nil), ev.Photos...)
	ev.SealNumbers = append([]string(nil), ev.SealNumbers...)
	cur.Evidence = append(cur.Evidence, ev)
	return nil
}
