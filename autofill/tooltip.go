package autofill

import (
	"fmt"

	"github.com/ilcreatore32/godoo-spreadsheet/formula"
	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

// Tooltip is one line of the autofill tooltip.
type Tooltip struct {
	Title string
	Value string
}

// Tooltip describes the cell a drag in direction dir would fill with f:
// the groups of the pivot axis the drag moves along, and the measure when
// dragging across columns of a pivot with several measures. Lists and
// formulas that are not a single pivot call have no tooltip.
func (e *Engine) Tooltip(f string, dir Direction) []Tooltip {
	fn, ok := formula.Single(f)
	if !ok || fn.Kind != formula.PivotKind || fn.Name == formula.PivotPosition {
		return nil
	}
	args, ok := fn.StringArgs()
	if !ok || len(args) == 0 {
		return nil
	}
	m, ok := e.pivots.PivotModel(args[0])
	if !ok {
		return nil
	}

	var measure string
	groupArgs := args[1:]
	if fn.Name == formula.Pivot {
		if len(args) < 2 {
			return nil
		}
		measure, groupArgs = args[1], args[2:]
	}
	path, ok, err := m.ResolvePath(groupArgs)
	if err != nil || !ok {
		return nil
	}
	if fn.Name == formula.PivotHeader && len(path) == 0 {
		return []Tooltip{{Title: m.Printer().Text(l10n.Total)}}
	}

	axis := axisOf(dir)
	var tooltips []Tooltip
	for _, gv := range path {
		if gv.Dimension == pivot.MeasureDimension {
			measure = gv.Value
			continue
		}
		if a, grouped := m.AxisOf(gv.Dimension); !grouped || a != axis {
			continue
		}
		r, err := m.DisplayValue(gv.Dimension, gv.Value)
		if err != nil {
			continue
		}
		tooltips = append(tooltips, Tooltip{
			Title: m.DimensionLabel(gv.Dimension),
			Value: fmt.Sprint(r.Display(m.Printer())),
		})
	}
	if measure != "" && axis == pivot.ColumnAxis && len(m.Measures()) > 1 {
		tooltips = append(tooltips, Tooltip{
			Title: m.Printer().Text(l10n.Measure),
			Value: m.MeasureLabel(measure),
		})
	}
	return tooltips
}
