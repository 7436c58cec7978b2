// README: Unit-of-work contract over the booking, job, record and driver repositories.
package lifecycle

import (
	"context"

	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/records"
	"reclaim/internal/types"
)

// Tx groups the reads and writes of one coordinator operation. The Postgres
// store keeps writes invisible until Commit; the in-memory store writes
// through, so operations finish validating before their first write.
type Tx interface {
	Bookings() booking.Repository
	Jobs() job.Repository
	Records() records.Repository
	Drivers() fleet.Repository

	AppendEvent(ctx context.Context, e *Event) error
	Events(ctx context.Context, bookingID types.ID) ([]Event, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Store interface {
	Begin(ctx context.Context) (Tx, error)
}
