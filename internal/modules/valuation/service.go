// README: Value calculator: resale value per grade, buyback estimates, CO2e savings and travel emissions.
package valuation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"reclaim/internal/modules/catalog"
	"reclaim/internal/types"
)

var gradeMultipliers = map[catalog.Grade]decimal.Decimal{
	catalog.GradeA:        decimal.NewFromInt(1),
	catalog.GradeB:        decimal.RequireFromString("0.7"),
	catalog.GradeC:        decimal.RequireFromString("0.4"),
	catalog.GradeD:        decimal.RequireFromString("0.2"),
	catalog.GradeRecycled: decimal.Zero,
}

func GradeMultiplier(g catalog.Grade) (decimal.Decimal, bool) {
	m, ok := gradeMultipliers[g]
	return m, ok
}

type Calculator struct {
	catalog *catalog.Catalog
}

func NewCalculator(c *catalog.Catalog) *Calculator {
	return &Calculator{catalog: c}
}

func (c *Calculator) Catalog() *catalog.Catalog {
	return c.catalog
}

// ResaleValuePerUnit is the category base value scaled by the grade multiplier.
func (c *Calculator) ResaleValuePerUnit(categoryID string, g catalog.Grade) (decimal.Decimal, error) {
	cat, err := c.category(categoryID)
	if err != nil {
		return decimal.Zero, err
	}
	m, ok := GradeMultiplier(g)
	if !ok || !cat.AcceptsGrade(g) {
		return decimal.Zero, fmt.Errorf("%w: grade %q not valid for %s", types.ErrValidation, g, categoryID)
	}
	return cat.BaseValue.Mul(m).Round(2), nil
}

func LineTotal(perUnit decimal.Decimal, quantity int) decimal.Decimal {
	return perUnit.Mul(decimal.NewFromInt(int64(quantity)))
}

// EstimateBuyback values every line at its category base value.
func (c *Calculator) EstimateBuyback(lines []Line) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		cat, err := c.category(l.CategoryID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(LineTotal(cat.BaseValue, l.Quantity))
	}
	return total, nil
}

// ReuseSavings returns kg CO2e avoided by reusing the given lines.
func (c *Calculator) ReuseSavings(lines []Line) (float64, error) {
	var total float64
	for _, l := range lines {
		cat, err := c.category(l.CategoryID)
		if err != nil {
			return 0, err
		}
		total += cat.CO2ePerUnit * float64(l.Quantity)
	}
	return total, nil
}

// TravelEmissions returns kg CO2e for driving roundTripKm with the given fuel.
func (c *Calculator) TravelEmissions(roundTripKm float64, fuel catalog.FuelType) (float64, error) {
	if roundTripKm < 0 {
		return 0, fmt.Errorf("%w: negative distance", types.ErrValidation)
	}
	factor, ok := c.catalog.EmissionFactor(fuel)
	if !ok {
		return 0, fmt.Errorf("%w: unknown fuel type %q", types.ErrValidation, fuel)
	}
	return roundTripKm * factor, nil
}

func NetBenefit(reuseSavings, travelEmissions float64) float64 {
	return reuseSavings - travelEmissions
}

func EquivalenciesFor(netBenefitKg float64) Equivalencies {
	return Equivalencies{
		TreesPlanted:  RoundHalfUp(netBenefitKg / kgPerTreeYear),
		HouseholdDays: RoundHalfUp(netBenefitKg / kgPerHouseholdDay),
		CarMiles:      RoundHalfUp(netBenefitKg / kgPerCarMile),
		FlightHours:   RoundHalfUp(netBenefitKg / kgPerFlightHour),
	}
}

// RoundHalfUp rounds to the nearest integer, ties toward positive infinity.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func KmToMiles(km float64) float64 {
	return math.Round(km*milesPerKm*100) / 100
}

// CharityShare is the part of value pledged to charity, rounded to pence.
func CharityShare(value decimal.Decimal, percent int) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2)
}

// Impact summarises a collection. Only graded lines count towards the resale total.
func (c *Calculator) Impact(lines []Line, graded []GradedLine, roundTripKm float64, fuel catalog.FuelType, charityPercent int) (Impact, error) {
	reuse, err := c.ReuseSavings(lines)
	if err != nil {
		return Impact{}, err
	}
	var travel float64
	if fuel != "" {
		if travel, err = c.TravelEmissions(roundTripKm, fuel); err != nil {
			return Impact{}, err
		}
	}
	resale := decimal.Zero
	for _, g := range graded {
		resale = resale.Add(LineTotal(g.ResaleValuePerUnit, g.Quantity))
	}
	net := NetBenefit(reuse, travel)
	return Impact{
		ReuseSavingsKg:    reuse,
		TravelEmissionsKg: travel,
		NetBenefitKg:      net,
		Equivalencies:     EquivalenciesFor(net),
		ResaleTotal:       resale,
		CharityShare:      CharityShare(resale, charityPercent),
	}, nil
}

func (c *Calculator) category(id string) (catalog.Category, error) {
	cat, ok := c.catalog.Category(id)
	if !ok {
		return catalog.Category{}, fmt.Errorf("%w: unknown asset category %q", types.ErrValidation, id)
	}
	return cat, nil
}
