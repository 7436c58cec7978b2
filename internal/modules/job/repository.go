// README: Job repository contract shared by the Postgres and in-memory stores.
package job

import (
	"context"

	"reclaim/internal/types"
)

// Repository persists jobs. Update writes the job row only and is optimistic
// on Version; evidence is written through AddEvidence.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, id types.ID) (*Job, error)
	GetByBooking(ctx context.Context, bookingID types.ID) (*Job, error)
	Update(ctx context.Context, j *Job) error
	AddEvidence(ctx context.Context, jobID types.ID, ev Evidence) error
}
