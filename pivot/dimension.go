package pivot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// MeasureDimension is the pseudo dimension naming a measure in header
// arguments: PIVOT.HEADER("1","measure","expected_revenue").
const MeasureDimension = "measure"

// CountMeasure is the record count measure.
const CountMeasure = "__count"

// Dimension is a group-by, e.g. "stage_id" or "create_date:month".
type Dimension struct {
	Name        string
	Field       string
	Granularity Granularity
}

// ParseDimension splits a group-by spec into field and granularity. The
// granularity is validated later, against the field type.
func ParseDimension(spec string) Dimension {
	spec = strings.TrimSpace(spec)
	field, granularity, _ := strings.Cut(spec, ":")
	return Dimension{Name: spec, Field: field, Granularity: Granularity(granularity)}
}

// IsDate reports whether the dimension groups a date field by interval.
func (d Dimension) IsDate() bool {
	return d.Granularity != ""
}

// resolveDimension checks spec against the model fields. Date fields
// without granularity are grouped by month.
func resolveDimension(spec string, fields map[string]godoo.FieldInfo) (Dimension, godoo.FieldInfo, error) {
	dim := ParseDimension(spec)
	field, ok := fields[dim.Field]
	if !ok {
		return Dimension{}, godoo.FieldInfo{}, fmt.Errorf("%w: %q", ErrUnknownDimension, spec)
	}
	switch {
	case field.Type.IsDate():
		if dim.Granularity == "" {
			dim.Granularity = DefaultGranularity
		}
		if !dim.Granularity.Valid() {
			return Dimension{}, godoo.FieldInfo{}, fmt.Errorf("%w: invalid granularity in %q", ErrUnknownDimension, spec)
		}
	case dim.Granularity != "":
		return Dimension{}, godoo.FieldInfo{}, fmt.Errorf("%w: %q is not a date field", ErrUnknownDimension, dim.Field)
	}
	return dim, field, nil
}

// FalseValue is the normalized value of an empty group.
const FalseValue = "false"

// normalizeGroupValue turns a read_group value into the string used in
// formula arguments. The second result is the display name carried by
// many2one values.
func normalizeGroupValue(dim Dimension, field godoo.FieldInfo, raw interface{}) (string, string, error) {
	if field.Type == godoo.FieldBoolean {
		if b, ok := raw.(bool); ok && b {
			return "true", "", nil
		}
		return FalseValue, "", nil
	}
	if godoo.IsFalse(raw) {
		return FalseValue, "", nil
	}
	switch {
	case dim.IsDate():
		t, err := dim.Granularity.ParseGroupLabel(godoo.AsString(raw))
		if err != nil {
			return "", "", err
		}
		return dim.Granularity.FormatArg(t), "", nil
	case field.Type == godoo.FieldMany2one:
		id, name, ok := godoo.Many2One(raw)
		if !ok {
			return "", "", fmt.Errorf("%w: unexpected many2one value %v", godoo.ErrInvalidResponse, raw)
		}
		return strconv.FormatInt(id, 10), name, nil
	case field.Type == godoo.FieldInteger:
		if n, ok := godoo.AsInt64(raw); ok {
			return strconv.FormatInt(n, 10), "", nil
		}
	}
	return godoo.AsString(raw), "", nil
}

// normalizeArg rewrites a formula argument so it compares equal to the
// normalized group values of dim.
func normalizeArg(dim Dimension, field godoo.FieldInfo, arg string) string {
	arg = strings.TrimSpace(arg)
	switch {
	case strings.EqualFold(arg, FalseValue):
		return FalseValue
	case field.Type == godoo.FieldBoolean:
		if strings.EqualFold(arg, "true") || arg == "1" {
			return "true"
		}
		return FalseValue
	case dim.IsDate():
		if v, err := dim.Granularity.NormalizeArg(arg); err == nil {
			return v
		}
	case field.Type == godoo.FieldMany2one || field.Type == godoo.FieldInteger:
		if f, err := strconv.ParseFloat(arg, 64); err == nil && f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return arg
}
