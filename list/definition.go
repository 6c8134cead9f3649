package list

import (
	"fmt"
	"strings"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// OrderBy is one sort criterion of a list.
type OrderBy struct {
	Name string `json:"name"`
	Asc  bool   `json:"asc"`
}

// Definition describes a list of records inserted in a spreadsheet.
type Definition struct {
	Model   godoo.Model       `json:"model"`
	Name    string            `json:"name,omitempty"`
	Columns []string          `json:"columns"`
	Domain  godoo.Domain      `json:"domain"`
	Context godoo.OdooContext `json:"context,omitempty"`
	OrderBy []OrderBy         `json:"orderBy,omitempty"`

	// ComputedDomain is Domain restricted by the document's global filters.
	ComputedDomain godoo.Domain `json:"-"`
}

// Validate checks the definition before any data is requested.
func (d *Definition) Validate() error {
	if d.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidDefinition)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("%w: at least one column is required", ErrInvalidDefinition)
	}
	for _, c := range d.Columns {
		if c == "" {
			return fmt.Errorf("%w: empty column", ErrInvalidDefinition)
		}
	}
	return nil
}

// EffectiveDomain is the domain records are searched with.
func (d *Definition) EffectiveDomain() godoo.Domain {
	if d.ComputedDomain != nil {
		return d.ComputedDomain
	}
	return d.Domain
}

// Order renders OrderBy as an Odoo order clause: "date_order desc, id asc".
func (d *Definition) Order() string {
	parts := make([]string, 0, len(d.OrderBy))
	for _, o := range d.OrderBy {
		dir := "desc"
		if o.Asc {
			dir = "asc"
		}
		parts = append(parts, o.Name+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// ColumnIndex returns the position of field among the columns, or -1.
func (d *Definition) ColumnIndex(field string) int {
	for i, c := range d.Columns {
		if c == field {
			return i
		}
	}
	return -1
}

// Clone returns a copy that can be changed without affecting d.
func (d *Definition) Clone() *Definition {
	c := *d
	c.Columns = append([]string(nil), d.Columns...)
	c.Domain = append(godoo.Domain(nil), d.Domain...)
	c.OrderBy = append([]OrderBy(nil), d.OrderBy...)
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
