// README: In-memory booking store used by tests and single-instance deployments.
package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reclaim/internal/types"
)

type MemoryStore struct {
	mu      sync.RWMutex
	items   map[types.ID]*Booking
	numbers map[string]types.ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:   make(map[types.ID]*Booking),
		numbers: make(map[string]types.ID),
	}
}

func (s *MemoryStore) Create(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[b.ID]; ok {
		return fmt.Errorf("booking %s already exists", b.ID)
	}
	if _, ok := s.numbers[b.Number]; ok {
		return fmt.Errorf("booking number %s already exists", b.Number)
	}
	s.items[b.ID] = b.Clone()
	s.numbers[b.Number] = b.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[b.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != b.Version {
		return ErrConflict
	}
	b.Version++
	s.items[b.ID] = b.Clone()
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Booking, 0, len(s.items))
	for _, b := range s.items {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
