// README: Booking repository contract shared by the Postgres and in-memory stores.
package booking

import (
	"context"

	"reclaim/internal/types"
)

type ListFilter struct {
	Status *Status
	Limit  int
}

// Repository persists bookings. Update is an optimistic write: it succeeds only
// when the stored version equals b.Version, and increments b.Version.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
}
