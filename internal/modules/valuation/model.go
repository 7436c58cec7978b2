// README: Valuation inputs and results (resale lines, CO2e impact, equivalencies).
package valuation

import "github.com/shopspring/decimal"

// Line is one asset category and quantity to value.
type Line struct {
	CategoryID string
	Quantity   int
}

// GradedLine is a line with the grade it was assessed at.
type GradedLine struct {
	Line
	ResaleValuePerUnit decimal.Decimal
}

// Equivalencies express a CO2e figure in everyday terms.
type Equivalencies struct {
	TreesPlanted  int `json:"treesPlanted"`
	HouseholdDays int `json:"householdDays"`
	CarMiles      int `json:"carMiles"`
	FlightHours   int `json:"flightHours"`
}

// Impact is the environmental and financial summary of a collection.
type Impact struct {
	ReuseSavingsKg    float64         `json:"reuseSavingsKg"`
	TravelEmissionsKg float64         `json:"travelEmissionsKg"`
	NetBenefitKg      float64         `json:"netBenefitKg"`
	Equivalencies     Equivalencies   `json:"equivalencies"`
	ResaleTotal       decimal.Decimal `json:"resaleTotal"`
	CharityShare      decimal.Decimal `json:"charityShare"`
}

const (
	kgPerTreeYear     = 21.0
	kgPerHouseholdDay = 7.4
	kgPerCarMile      = 0.27
	kgPerFlightHour   = 90.0

	milesPerKm = 0.621371
)
