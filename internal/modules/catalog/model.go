// README: Asset catalog reference types (categories, grades, fuel types).
package catalog

import "github.com/shopspring/decimal"

type Grade string

const (
	GradeA        Grade = "A"
	GradeB        Grade = "B"
	GradeC        Grade = "C"
	GradeD        Grade = "D"
	GradeRecycled Grade = "Recycled"
)

// Grades lists every grade from best to worst.
var Grades = []Grade{GradeA, GradeB, GradeC, GradeD, GradeRecycled}

func (g Grade) Valid() bool {
	for _, v := range Grades {
		if v == g {
			return true
		}
	}
	return false
}

type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
	FuelLPG      FuelType = "lpg"
)

type Category struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	CO2ePerUnit float64         `yaml:"co2e_per_unit" json:"co2ePerUnit"`
	BaseValue   decimal.Decimal `yaml:"base_value" json:"baseValue"`
	Grades      []Grade         `yaml:"grades" json:"grades"`
}

// AcceptsGrade reports whether g may be assigned to assets of this category.
func (c Category) AcceptsGrade(g Grade) bool {
	for _, v := range c.Grades {
		if v == g {
			return true
		}
	}
	return false
}

type FuelFactor struct {
	ID             FuelType `yaml:"id" json:"id"`
	EmissionFactor float64  `yaml:"emission_factor" json:"emissionFactor"`
}
