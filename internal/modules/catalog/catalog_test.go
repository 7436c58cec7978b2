package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	laptop, ok := c.Category("laptop")
	require.True(t, ok)
	assert.Equal(t, "Laptop", laptop.Name)
	assert.True(t, laptop.BaseValue.Equal(decimal.NewFromInt(85)))
	assert.Equal(t, 250.0, laptop.CO2ePerUnit)
	assert.True(t, laptop.AcceptsGrade(GradeB))

	cables, ok := c.Category("cables")
	require.True(t, ok)
	assert.False(t, cables.AcceptsGrade(GradeA))
	assert.True(t, cables.AcceptsGrade(GradeRecycled))

	diesel, ok := c.EmissionFactor(FuelDiesel)
	require.True(t, ok)
	assert.Equal(t, 0.25, diesel)

	_, ok = c.Category("fax-machine")
	assert.False(t, ok)

	cats := c.Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, "laptop", cats[0].ID)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate", "categories:\n  - {id: a, name: A, co2e_per_unit: 1, base_value: \"1\", grades: [A]}\n  - {id: a, name: A, co2e_per_unit: 1, base_value: \"1\", grades: [A]}\n"},
		{"missing id", "categories:\n  - {name: A, co2e_per_unit: 1, base_value: \"1\", grades: [A]}\n"},
		{"unknown grade", "categories:\n  - {id: a, name: A, co2e_per_unit: 1, base_value: \"1\", grades: [Z]}\n"},
		{"no grades", "categories:\n  - {id: a, name: A, co2e_per_unit: 1, base_value: \"1\"}\n"},
		{"negative value", "categories:\n  - {id: a, name: A, co2e_per_unit: 1, base_value: \"-1\", grades: [A]}\n"},
		{"negative factor", "fuel_types:\n  - {id: diesel, emission_factor: -0.1}\n"},
		{"bad yaml", "categories: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestGradeValid(t *testing.T) {
	for _, g := range Grades {
		assert.True(t, g.Valid(), g)
	}
	assert.False(t, Grade("E").Valid())
	assert.False(t, Grade("").Valid())
}
