// README: Registered drivers and the vehicles they collect with.
package fleet

import (
	"fmt"
	"time"

	"reclaim/internal/modules/catalog"
	"reclaim/internal/types"
)

var (
	ErrNotFound      = fmt.Errorf("driver %w", types.ErrNotFound)
	ErrInvalidDriver = fmt.Errorf("driver: %w", types.ErrValidation)
)

type Driver struct {
	ID          types.ID         `json:"id"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	VehicleReg  string           `json:"vehicleReg"`
	VehicleType string           `json:"vehicleType"`
	FuelType    catalog.FuelType `json:"fuelType"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type RegisterCommand struct {
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	VehicleReg  string           `json:"vehicleReg"`
	VehicleType string           `json:"vehicleType"`
	FuelType    catalog.FuelType `json:"fuelType"`
	Inactive    bool             `json:"inactive"`
}
