// README: In-memory lifecycle store; writes go straight to the shared repositories.
package lifecycle

import (
	"context"
	"sync"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/records"
	"reclaim/internal/types"
)

type MemoryStore struct {
	bookings *booking.MemoryStore
	jobs     *job.MemoryStore
	records  *records.MemoryStore
	drivers  *fleet.MemoryStore

	mu     sync.RWMutex
	events []Event
	nextID int64
}

// NewMemoryStore shares drivers with the fleet service.
func NewMemoryStore(drivers *fleet.MemoryStore) *MemoryStore {
	if drivers == nil {
		drivers = fleet.NewMemoryStore()
	}
	return &MemoryStore{
		bookings: booking.NewMemoryStore(),
		jobs:     job.NewMemoryStore(),
		records:  records.NewMemoryStore(),
		drivers:  drivers,
	}
}

func (s *MemoryStore) Begin(context.Context) (Tx, error) {
	return memoryTx{s}, nil
}

type memoryTx struct {
	s *MemoryStore
}

func (t memoryTx) Bookings() booking.Repository { return t.s.bookings }
func (t memoryTx) Jobs() job.Repository         { return t.s.jobs }
func (t memoryTx) Records() records.Repository  { return t.s.records }
func (t memoryTx) Drivers() fleet.Repository    { return t.s.drivers }

func (t memoryTx) AppendEvent(_ context.Context, e *Event) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	t.s.nextID++
	e.ID = t.s.nextID
	t.s.events = append(t.s.events, *e)
	return nil
}

func (t memoryTx) Events(_ context.Context, bookingID types.ID) ([]Event, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var out []Event
	for _, e := range t.s.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (memoryTx) Commit(context.Context) error   { return nil }
func (memoryTx) Rollback(context.Context) error { return nil }
