// README: Read-only asset catalog loaded from YAML. Safe for concurrent use once built.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultDocument []byte

type document struct {
	Categories []Category   `yaml:"categories"`
	FuelTypes  []FuelFactor `yaml:"fuel_types"`
}

type Catalog struct {
	categories map[string]Category
	order      []string
	fuel       map[FuelType]float64
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultDocument)
		if err != nil {
			panic("catalog: embedded document: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{
		categories: make(map[string]Category, len(doc.Categories)),
		fuel:       make(map[FuelType]float64, len(doc.FuelTypes)),
	}
	for _, cat := range doc.Categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("category without id")
		}
		if _, dup := c.categories[cat.ID]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.ID)
		}
		if cat.CO2ePerUnit < 0 || cat.BaseValue.IsNegative() {
			return nil, fmt.Errorf("category %q: negative reference value", cat.ID)
		}
		if len(cat.Grades) == 0 {
			return nil, fmt.Errorf("category %q: no grades", cat.ID)
		}
		for _, g := range cat.Grades {
			if !g.Valid() {
				return nil, fmt.Errorf("category %q: unknown grade %q", cat.ID, g)
			}
		}
		c.categories[cat.ID] = cat
		c.order = append(c.order, cat.ID)
	}
	for _, f := range doc.FuelTypes {
		if f.EmissionFactor < 0 {
			return nil, fmt.Errorf("fuel type %q: negative emission factor", f.ID)
		}
		c.fuel[f.ID] = f.EmissionFactor
	}
	return c, nil
}

func (c *Catalog) Category(id string) (Category, bool) {
	cat, ok := c.categories[id]
	return cat, ok
}

// Categories returns the categories in document order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.categories[id])
	}
	return out
}

// EmissionFactor returns kg CO2e per km for the fuel type.
func (c *Catalog) EmissionFactor(f FuelType) (float64, bool) {
	v, ok := c.fuel[f]
	return v, ok
}
