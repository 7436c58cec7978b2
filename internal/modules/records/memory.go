// README: In-memory record store used by tests and single-instance deployments.
package records

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reclaim/internal/types"
)

type gradeKey struct {
	bookingID types.ID
	assetID   string
}

type MemoryStore struct {
	mu            sync.RWMutex
	grades        map[gradeKey]GradingRecord
	sanitisations map[types.ID]*SanitisationRecord
	order         []types.ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		grades:        make(map[gradeKey]GradingRecord),
		sanitisations: make(map[types.ID]*SanitisationRecord),
	}
}

func (s *MemoryStore) UpsertGrade(_ context.Context, g *GradingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := gradeKey{bookingID: g.BookingID, assetID: g.AssetID}
	if cur, ok := s.grades[key]; ok {
		g.ID = cur.ID
	}
	s.grades[key] = *g
	return nil
}

func (s *MemoryStore) ListGrades(_ context.Context, bookingID types.ID) ([]GradingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []GradingRecord
	for k, g := range s.grades {
		if k.bookingID == bookingID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

func (s *MemoryStore) AddSanitisation(_ context.Context, r *SanitisationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sanitisations[r.ID]; ok {
		return fmt.Errorf("sanitisation record %s already exists", r.ID)
	}
	s.sanitisations[r.ID] = r.Clone()
	s.order = append(s.order, r.ID)
	return nil
}

func (s *MemoryStore) GetSanitisation(_ context.Context, id types.ID) (*SanitisationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.sanitisations[id]
	if !ok {
		return nil, ErrSanitisationNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryStore) UpdateSanitisation(_ context.Context, r *SanitisationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sanitisations[r.ID]; !ok {
		return ErrSanitisationNotFound
	}
	s.sanitisations[r.ID] = r.Clone()
	return nil
}

func (s *MemoryStore) ListSanitisations(_ context.Context, bookingID types.ID) ([]SanitisationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SanitisationRecord
	for _, id := range s.order {
		r := s.sanitisations[id]
		if r.BookingID == bookingID {
			out = append(out, *r.Clone())
		}
	}
	return out, nil
}
