package pivot

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// Aggregation operators, as reported by fields_get group_operator.
const (
	OpSum           = "sum"
	OpAvg           = "avg"
	OpMin           = "min"
	OpMax           = "max"
	OpCount         = "count"
	OpCountDistinct = "count_distinct"
	OpBoolAnd       = "bool_and"
	OpBoolOr        = "bool_or"
	OpArrayAgg      = "array_agg"
)

// errUnknownOperator is logged and turned into a blank value.
var errUnknownOperator = errors.New("pivot: unknown aggregation operator")

// aggregate combines the pre-aggregated values of several records. counts
// holds the number of underlying records of each aggregate record and
// weighs averages.
func aggregate(op string, values []interface{}, counts []int64) (interface{}, error) {
	switch op {
	case OpSum:
		sum := decimal.Zero
		for _, v := range values {
			if f, ok := godoo.AsFloat64(v); ok {
				sum = sum.Add(decimal.NewFromFloat(f))
			}
		}
		f, _ := sum.Float64()
		return f, nil

	case OpAvg:
		sum, total := decimal.Zero, decimal.Zero
		for i, v := range values {
			f, ok := godoo.AsFloat64(v)
			if !ok {
				continue
			}
			weight := decimal.NewFromInt(counts[i])
			sum = sum.Add(decimal.NewFromFloat(f).Mul(weight))
			total = total.Add(weight)
		}
		if total.IsZero() {
			return nil, nil
		}
		f, _ := sum.Div(total).Float64()
		return f, nil

	case OpMin, OpMax:
		var result interface{}
		best := 0.0
		for _, v := range values {
			f, ok := godoo.AsFloat64(v)
			if !ok {
				continue
			}
			if result == nil || (op == OpMin && f < best) || (op == OpMax && f > best) {
				best = f
				result = f
			}
		}
		return result, nil

	case OpCount:
		return float64(len(values)), nil

	case OpCountDistinct:
		seen := make(map[string]struct{}, len(values))
		for _, v := range values {
			seen[fmt.Sprint(v)] = struct{}{}
		}
		return float64(len(seen)), nil

	case OpBoolAnd:
		for _, v := range values {
			if !truthy(v) {
				return false, nil
			}
		}
		return true, nil

	case OpBoolOr:
		for _, v := range values {
			if truthy(v) {
				return true, nil
			}
		}
		return false, nil

	case OpArrayAgg:
		return nil, fmt.Errorf("%w: %s aggregation", ErrNotImplemented, op)
	}
	return nil, fmt.Errorf("%w %q", errUnknownOperator, op)
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b != ""
	case nil:
		return false
	}
	if f, ok := godoo.AsFloat64(v); ok {
		return f != 0
	}
	return true
}
