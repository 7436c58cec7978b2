// README: Record repository contract shared by the Postgres and in-memory stores.
package records

import (
	"context"

	"reclaim/internal/types"
)

type Repository interface {
	// UpsertGrade inserts or replaces the grade for (BookingID, AssetID). An
	// existing record keeps its id, which is written back into g.
	UpsertGrade(ctx context.Context, g *GradingRecord) error
	ListGrades(ctx context.Context, bookingID types.ID) ([]GradingRecord, error)

	AddSanitisation(ctx context.Context, r *SanitisationRecord) error
	GetSanitisation(ctx context.Context, id types.ID) (*SanitisationRecord, error)
	UpdateSanitisation(ctx context.Context, r *SanitisationRecord) error
	ListSanitisations(ctx context.Context, bookingID types.ID) ([]SanitisationRecord, error)
}
