// README: In-memory driver store.
package fleet

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reclaim/internal/types"
)

type MemoryStore struct {
	mu    sync.RWMutex
	items map[types.ID]Driver
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[types.ID]Driver)}
}

func (s *MemoryStore) Create(_ context.Context, d *Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[d.ID]; ok {
		return fmt.Errorf("driver %s already exists", d.ID)
	}
	s.items[d.ID] = *d
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) List(_ context.Context, activeOnly bool) ([]*Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Driver, 0, len(s.items))
	for _, d := range s.items {
		if activeOnly && !d.Active {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
