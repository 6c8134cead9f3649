package pivot

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// DimensionIndex maps every value of one dimension to the aggregate records
// holding it, and keeps the values in display order.
type DimensionIndex struct {
	dim     Dimension
	field   godoo.FieldInfo
	values  []string
	records map[string]*roaring.Bitmap
}

func newDimensionIndex(dim Dimension, field godoo.FieldInfo) *DimensionIndex {
	return &DimensionIndex{
		dim:     dim,
		field:   field,
		records: make(map[string]*roaring.Bitmap),
	}
}

func (x *DimensionIndex) add(value string, record uint32) {
	set, ok := x.records[value]
	if !ok {
		set = roaring.New()
		x.records[value] = set
		x.values = append(x.values, value)
	}
	set.Add(record)
}

// Dimension returns the indexed dimension.
func (x *DimensionIndex) Dimension() Dimension { return x.dim }

// Field returns the description of the grouped field.
func (x *DimensionIndex) Field() godoo.FieldInfo { return x.field }

// Values returns the ordered distinct values.
func (x *DimensionIndex) Values() []string {
	return append([]string(nil), x.values...)
}

// Has reports whether value occurs in the data.
func (x *DimensionIndex) Has(value string) bool {
	_, ok := x.records[value]
	return ok
}

// Records returns the records holding value. The bitmap must not be
// modified; nil means no record.
func (x *DimensionIndex) Records(value string) *roaring.Bitmap {
	return x.records[value]
}

// sortValues orders the values. Dates are chronological; other values
// follow canonical, the order of the records in the model's own order,
// with values absent from it appended in encounter order. The empty group
// goes last except for booleans.
func (x *DimensionIndex) sortValues(canonical []string) {
	hasFalse := x.Has(FalseValue)
	if x.dim.IsDate() {
		ordered := make([]string, 0, len(x.values))
		for _, v := range x.values {
			if v != FalseValue {
				ordered = append(ordered, v)
			}
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			ti, _ := x.dim.Granularity.ParseArg(ordered[i])
			tj, _ := x.dim.Granularity.ParseArg(ordered[j])
			return ti.Before(tj)
		})
		if hasFalse {
			ordered = append(ordered, FalseValue)
		}
		x.values = ordered
		return
	}

	keepFalse := x.field.Type == godoo.FieldBoolean
	seen := make(map[string]bool, len(x.values))
	ordered := make([]string, 0, len(x.values))
	push := func(v string) {
		if seen[v] || !x.Has(v) || (v == FalseValue && !keepFalse) {
			return
		}
		seen[v] = true
		ordered = append(ordered, v)
	}
	for _, v := range canonical {
		push(v)
	}
	for _, v := range x.values {
		push(v)
	}
	if hasFalse && !seen[FalseValue] {
		ordered = append(ordered, FalseValue)
	}
	x.values = ordered
}

// DomainIndex is the set of dimension indexes of one pivot load.
type DomainIndex struct {
	dims  []Dimension
	byDim map[string]*DimensionIndex
	all   *roaring.Bitmap
}

func newDomainIndex(dims []Dimension, fields map[string]godoo.FieldInfo) *DomainIndex {
	idx := &DomainIndex{
		dims:  dims,
		byDim: make(map[string]*DimensionIndex, len(dims)),
		all:   roaring.New(),
	}
	for _, d := range dims {
		idx.byDim[d.Name] = newDimensionIndex(d, fields[d.Field])
	}
	return idx
}

// Dimensions returns the indexed dimensions, rows first.
func (idx *DomainIndex) Dimensions() []Dimension {
	return append([]Dimension(nil), idx.dims...)
}

// Dimension returns the index of one dimension.
func (idx *DomainIndex) Dimension(name string) (*DimensionIndex, bool) {
	x, ok := idx.byDim[name]
	return x, ok
}

// FieldValues returns the ordered values of a grouped dimension.
func (idx *DomainIndex) FieldValues(name string) ([]string, error) {
	x, ok := idx.byDim[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not grouped", ErrUnknownDimension, name)
	}
	return x.Values(), nil
}

// All returns every record of the load.
func (idx *DomainIndex) All() *roaring.Bitmap {
	return idx.all
}

// Matching narrows the record set by every pair of path. Pairs on
// dimensions that are not indexed, or on values that do not occur, match
// nothing.
func (idx *DomainIndex) Matching(path GroupPath) *roaring.Bitmap {
	result := idx.all.Clone()
	for _, gv := range path {
		x, ok := idx.byDim[gv.Dimension]
		if !ok {
			return roaring.New()
		}
		set := x.Records(gv.Value)
		if set == nil {
			return roaring.New()
		}
		result.And(set)
		if result.IsEmpty() {
			break
		}
	}
	return result
}
