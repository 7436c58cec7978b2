// README: Driver repository contract shared by the Postgres and in-memory stores.
package fleet

import (
	"context"

	"reclaim/internal/types"
)

type Repository interface {
	Create(ctx context.Context, d *Driver) error
	Get(ctx context.Context, id types.ID) (*Driver, error)
	List(ctx context.Context, activeOnly bool) ([]*Driver, error)
}
