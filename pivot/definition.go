package pivot

import (
	"fmt"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// Definition describes a pivot inserted in a spreadsheet.
type Definition struct {
	Model       godoo.Model       `json:"model"`
	Name        string            `json:"name,omitempty"`
	RowGroupBys []string          `json:"rowGroupBys"`
	ColGroupBys []string          `json:"colGroupBys"`
	Measures    []string          `json:"measures"`
	Domain      godoo.Domain      `json:"domain"`
	Context     godoo.OdooContext `json:"context,omitempty"`

	// ComputedDomain is Domain restricted by the document's global filters.
	// It is recomputed, never persisted.
	ComputedDomain godoo.Domain `json:"-"`
}

// Validate checks the definition before any data is requested.
func (d *Definition) Validate() error {
	if d.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidDefinition)
	}
	if len(d.Measures) == 0 {
		return fmt.Errorf("%w: at least one measure is required", ErrInvalidDefinition)
	}
	seen := make(map[string]bool)
	for _, g := range append(append([]string(nil), d.RowGroupBys...), d.ColGroupBys...) {
		if g == "" || g == MeasureDimension {
			return fmt.Errorf("%w: invalid group-by %q", ErrInvalidDefinition, g)
		}
		if seen[g] {
			return fmt.Errorf("%w: %q is grouped twice", ErrInvalidDefinition, g)
		}
		seen[g] = true
	}
	return nil
}

// EffectiveDomain is the domain data is loaded with.
func (d *Definition) EffectiveDomain() godoo.Domain {
	if d.ComputedDomain != nil {
		return d.ComputedDomain
	}
	return d.Domain
}

// Clone returns a deep enough copy for the definition to be changed
// without affecting d.
func (d *Definition) Clone() *Definition {
	c := *d
	c.RowGroupBys = append([]string(nil), d.RowGroupBys...)
	c.ColGroupBys = append([]string(nil), d.ColGroupBys...)
	c.Measures = append([]string(nil), d.Measures...)
	c.Domain = append(godoo.Domain(nil), d.Domain...)
	if d.ComputedDomain != nil {
		c.ComputedDomain = append(godoo.Domain{}, d.ComputedDomain...)
	}
	if d.Context != nil {
		c.Context = make(godoo.OdooContext, len(d.Context))
		for k, v := range d.Context {
			c.Context[k] = v
		}
	}
	return &c
}

func (d *Definition) options() *godoo.Options {
	return &godoo.Options{Context: d.Context}
}
