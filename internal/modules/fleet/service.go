// README: Fleet service registers and looks up collection drivers.
package fleet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reclaim/internal/modules/catalog"
	"reclaim/internal/types"
)

type Service struct {
	repo    Repository
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewService(repo Repository, cat *catalog.Catalog) *Service {
	return &Service{repo: repo, catalog: cat, now: time.Now}
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Driver, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDriver)
	}
	reg := strings.ToUpper(strings.TrimSpace(cmd.VehicleReg))
	if reg == "" {
		return nil, fmt.Errorf("%w: vehicle registration is required", ErrInvalidDriver)
	}
	if _, ok := s.catalog.EmissionFactor(cmd.FuelType); !ok {
		return nil, fmt.Errorf("%w: unknown fuel type %q", ErrInvalidDriver, cmd.FuelType)
	}

	d := &Driver{
		ID:          types.NewID(),
		Name:        name,
		Phone:       strings.TrimSpace(cmd.Phone),
		VehicleReg:  reg,
		VehicleType: cmd.VehicleType,
		FuelType:    cmd.FuelType,
		Active:      !cmd.Inactive,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Driver, error) {
	return s.repo.List(ctx, activeOnly)
}
