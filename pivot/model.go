package pivot

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
)

// Axis is a side of the pivot table.
type Axis int

const (
	RowAxis Axis = iota
	ColumnAxis
)

// Model is the loaded data of a pivot. It is immutable and safe for
// concurrent use; only the used-domain bookkeeping and the shared label
// store change after Build.
type Model struct {
	def       *Definition
	fields    map[string]godoo.FieldInfo
	rowDims   []Dimension
	colDims   []Dimension
	operators map[string]string
	index     *DomainIndex
	rows      *Tree
	cols      *Tree
	columns   []Column
	cache     *AggregateCache
	used      *UsedDomainSet
	labels    *LabelStore
	printer   *l10n.Printer
	logger    *zap.Logger
}

func newModel(def *Definition, fields map[string]godoo.FieldInfo, rowDims, colDims []Dimension,
	operators map[string]string, idx *DomainIndex, records []aggregateRecord, o *options) *Model {
	used := newUsedDomainSet()
	m := &Model{
		def:       def.Clone(),
		fields:    fields,
		rowDims:   rowDims,
		colDims:   colDims,
		operators: operators,
		index:     idx,
		rows:      buildTree(idx, rowDims),
		cols:      buildTree(idx, colDims),
		used:      used,
		labels:    o.labels,
		printer:   o.printer,
		logger:    o.logger,
	}
	m.columns = topColumns(m.cols, def.Measures)
	m.cache = &AggregateCache{records: records, index: idx, used: used, logger: o.logger}
	return m
}

// Definition returns a copy of the definition the model was loaded with.
func (m *Model) Definition() *Definition { return m.def.Clone() }

// Field describes a field of the pivot model.
func (m *Model) Field(name string) (godoo.FieldInfo, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Measures returns the measures in display order.
func (m *Model) Measures() []string { return append([]string(nil), m.def.Measures...) }

// Index returns the per dimension value index.
func (m *Model) Index() *DomainIndex { return m.index }

// Labels returns the label store used for many2one headers.
func (m *Model) Labels() *LabelStore { return m.labels }

// Dimensions returns the group-bys of an axis.
func (m *Model) Dimensions(axis Axis) []Dimension {
	if axis == ColumnAxis {
		return append([]Dimension(nil), m.colDims...)
	}
	return append([]Dimension(nil), m.rowDims...)
}

// AxisOf tells on which axis a dimension is grouped.
func (m *Model) AxisOf(dimension string) (Axis, bool) {
	for _, d := range m.colDims {
		if d.Name == dimension {
			return ColumnAxis, true
		}
	}
	for _, d := range m.rowDims {
		if d.Name == dimension {
			return RowAxis, true
		}
	}
	return RowAxis, false
}

// Dimension returns a grouped dimension by name.
func (m *Model) Dimension(name string) (Dimension, bool) {
	for _, d := range append(m.Dimensions(RowAxis), m.colDims...) {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// IsGroupedOnlyByOneDate reports whether the axis has a single date
// group-by.
func (m *Model) IsGroupedOnlyByOneDate(axis Axis) bool {
	dims := m.Dimensions(axis)
	return len(dims) == 1 && dims[0].IsDate()
}

// RowCount returns the number of rows, total included.
func (m *Model) RowCount() int { return m.rows.Len() }

// RowPath returns the group of row i.
func (m *Model) RowPath(i int) GroupPath { return m.rows.Path(i) }

// RowIndexOf returns the row of path, or -1.
func (m *Model) RowIndexOf(path GroupPath) int { return m.rows.IndexOf(path) }

// RowValues returns the group values of row i.
func (m *Model) RowValues(i int) []string { return m.rows.Path(i).Values() }

// ColGroupByLevels returns the number of column group-bys.
func (m *Model) ColGroupByLevels() int { return len(m.colDims) }

// TopHeaderCount returns the number of columns of the bottom header row.
func (m *Model) TopHeaderCount() int { return len(m.columns) }

// Column returns column i of the bottom header row.
func (m *Model) Column(i int) Column { return m.columns[i] }

// TopGroupIndexOf returns the first column whose full path (group values
// then measure) starts with path, or -1. The empty path is the first total
// column.
func (m *Model) TopGroupIndexOf(path GroupPath) int {
	for i, c := range m.columns {
		if len(path) == 0 {
			if len(c.Path) == 0 {
				return i
			}
			continue
		}
		if c.FullPath().HasPrefix(path) {
			return i
		}
	}
	return -1
}

// ColumnValues returns the group values of column i.
func (m *Model) ColumnValues(i int) []string { return m.columns[i].Path.Values() }

// ColumnMeasure returns the measure of column i.
func (m *Model) ColumnMeasure(i int) string { return m.columns[i].Measure }

// ColGroupHierarchy returns the first level values of the group of column
// i.
func (m *Model) ColGroupHierarchy(i, level int) GroupPath {
	p := m.columns[i].Path
	if level > len(p) {
		level = len(p)
	}
	return p[:level].Append()
}

// ResolvePath reads formula group arguments into a normalized path.
// Positional pairs ("#stage_id", "2") are replaced by the value at that
// position. ok is false when a position is out of range, the lookup is
// then blank.
func (m *Model) ResolvePath(args []string) (path GroupPath, ok bool, err error) {
	raw, err := ParseGroupPath(args)
	if err != nil {
		return nil, false, err
	}
	path = make(GroupPath, 0, len(raw))
	for _, gv := range raw {
		switch {
		case gv.Dimension == MeasureDimension:
			if _, known := m.operators[gv.Value]; !known {
				return nil, false, fmt.Errorf("%w: %q", ErrUnknownMeasure, gv.Value)
			}
			path = append(path, gv)

		case strings.HasPrefix(gv.Dimension, "#"):
			name := m.canonicalDimension(strings.TrimPrefix(gv.Dimension, "#"))
			if _, _, err := resolveDimension(name, m.fields); err != nil {
				return nil, false, err
			}
			value, found, err := m.Position(name, gv.Value)
			if err != nil || !found {
				return nil, false, err
			}
			path = append(path, GroupValue{Dimension: name, Value: value})

		default:
			name := m.canonicalDimension(gv.Dimension)
			dim, field, err := resolveDimension(name, m.fields)
			if err != nil {
				return nil, false, err
			}
			path = append(path, GroupValue{Dimension: name, Value: normalizeArg(dim, field, gv.Value)})
		}
	}
	return path, true, nil
}

// canonicalDimension maps "create_date" and "create_date:month" to the name
// the pivot is grouped with when they designate the same grouping.
func (m *Model) canonicalDimension(name string) string {
	if _, ok := m.Dimension(name); ok {
		return name
	}
	wanted := ParseDimension(name)
	if f, ok := m.fields[wanted.Field]; ok && f.Type.IsDate() && wanted.Granularity == "" {
		wanted.Granularity = DefaultGranularity
	}
	for _, d := range append(m.Dimensions(RowAxis), m.colDims...) {
		if d.Field == wanted.Field && d.Granularity == wanted.Granularity {
			return d.Name
		}
	}
	return name
}

// Position returns the value at a 1-based position of a grouped dimension.
func (m *Model) Position(dimension, position string) (string, bool, error) {
	n, err := strconv.Atoi(strings.TrimSpace(position))
	if err != nil {
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(position), 64); ferr == nil && f == float64(int(f)) {
			n, err = int(f), nil
		}
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: position %q", ErrInvalidArguments, position)
	}
	values, err := m.index.FieldValues(dimension)
	if err != nil {
		return "", false, nil
	}
	if n < 1 || n > len(values) {
		return "", false, nil
	}
	return values[n-1], true, nil
}

// MeasureValue returns the value of measure for the group given by
// formula arguments. Groups absent from the data are blank (nil).
func (m *Model) MeasureValue(measure string, args []string) (interface{}, error) {
	op, ok := m.operators[measure]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMeasure, measure)
	}
	path, ok, err := m.ResolvePath(args)
	if err != nil || !ok {
		return nil, err
	}
	path = path.Without(MeasureDimension)
	for _, gv := range path {
		if _, grouped := m.index.Dimension(gv.Dimension); !grouped {
			return nil, nil
		}
	}
	return m.cache.Value(measure, op, path)
}

// HeaderValue returns the label of the header given by formula arguments:
// the total label without arguments, otherwise the display of the last
// pair.
func (m *Model) HeaderValue(args []string) (Result, error) {
	path, ok, err := m.ResolvePath(args)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return ready(""), nil
	}
	if len(path) == 0 {
		m.used.MarkHeader(path)
		return ready(m.printer.Text(l10n.Total)), nil
	}
	last := path[len(path)-1]
	r, err := m.DisplayValue(last.Dimension, last.Value)
	if err != nil {
		return Result{}, err
	}
	if r.State == Ready {
		m.used.MarkHeader(path)
	}
	return r, nil
}

// DimensionLabel returns the field label of a dimension.
func (m *Model) DimensionLabel(dimension string) string {
	if dimension == MeasureDimension {
		return m.printer.Text(l10n.Measure)
	}
	d := ParseDimension(dimension)
	label := d.Field
	if f, ok := m.fields[d.Field]; ok && f.String != "" {
		label = f.String
	}
	if d.Granularity != "" {
		label += " (" + string(d.Granularity) + ")"
	}
	return label
}

// MeasureLabel returns the label of a measure.
func (m *Model) MeasureLabel(measure string) string {
	if measure == CountMeasure {
		return m.printer.Text(l10n.Count)
	}
	if f, ok := m.fields[measure]; ok && f.String != "" {
		return f.String
	}
	return measure
}

// DisplayValue formats one group value for headers and tooltips.
func (m *Model) DisplayValue(dimension, value string) (Result, error) {
	if dimension == MeasureDimension {
		return ready(m.MeasureLabel(value)), nil
	}
	dim, field, err := resolveDimension(dimension, m.fields)
	if err != nil {
		return Result{}, err
	}
	switch {
	case field.Type == godoo.FieldBoolean:
		if value == "true" {
			return ready(m.printer.Text(l10n.Yes)), nil
		}
		return ready(m.printer.Text(l10n.No)), nil
	case value == FalseValue:
		return ready(m.printer.Text(l10n.Undefined)), nil
	case dim.IsDate():
		t, err := dim.Granularity.ParseArg(value)
		if err != nil {
			return ready(value), nil
		}
		return ready(dim.Granularity.Display(t)), nil
	case field.Type == godoo.FieldMany2one:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return ready(value), nil
		}
		return m.labels.Get(field.Relation, id), nil
	case field.Type == godoo.FieldSelection:
		return ready(field.SelectionLabel(value)), nil
	}
	return ready(value), nil
}

// BackendDomain returns the Odoo domain of the records aggregated in the
// group given by formula arguments. Measure pairs are ignored.
func (m *Model) BackendDomain(args []string) (godoo.Domain, error) {
	path, ok, err := m.ResolvePath(args)
	if err != nil {
		return nil, err
	}
	if !ok {
		return godoo.FalseDomain, nil
	}
	return m.cache.BackendDomain(path.Without(MeasureDimension)), nil
}

// MissingLabels lists the many2one group values whose display name is not
// in the label store yet.
func (m *Model) MissingLabels() []LabelRef {
	var missing []LabelRef
	for _, d := range m.index.Dimensions() {
		x, _ := m.index.Dimension(d.Name)
		field := x.Field()
		if field.Type != godoo.FieldMany2one {
			continue
		}
		for _, v := range x.Values() {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			if r := m.labels.Get(field.Relation, id); r.State == Loading {
				missing = append(missing, r.Missing...)
			}
		}
	}
	return missing
}

// IsUsedValue reports whether a value formula resolved measure for args.
func (m *Model) IsUsedValue(measure string, args []string) bool {
	path, ok, err := m.ResolvePath(args)
	return err == nil && ok && m.used.IsUsedValue(measure, path.Without(MeasureDimension))
}

// IsUsedHeader reports whether a header formula resolved args.
func (m *Model) IsUsedHeader(args []string) bool {
	path, ok, err := m.ResolvePath(args)
	return err == nil && ok && m.used.IsUsedHeader(path)
}

// ResetUsed forgets which values and headers were resolved.
func (m *Model) ResetUsed() { m.used.Reset() }

// Printer returns the printer of fixed labels.
func (m *Model) Printer() *l10n.Printer { return m.printer }
