package autofill

import (
	"strconv"
	"strings"

	"github.com/ilcreatore32/godoo-spreadsheet/formula"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

func axisOf(dir Direction) pivot.Axis {
	if dir.Vertical() {
		return pivot.RowAxis
	}
	return pivot.ColumnAxis
}

// shiftPositional moves the positional pairs ("#stage_id","2") grouped on
// the drag axis. ok is false when args hold no such pair.
func shiftPositional(m *pivot.Model, groupArgs []string, dir Direction, inc int) (shifted []string, valid, ok bool) {
	shifted = append([]string(nil), groupArgs...)
	for i := 0; i+1 < len(shifted); i += 2 {
		name, positional := strings.CutPrefix(shifted[i], "#")
		if !positional {
			continue
		}
		if axis, grouped := m.AxisOf(name); !grouped || axis != axisOf(dir) {
			continue
		}
		n, isNumber := parsePosition(shifted[i+1])
		if !isNumber {
			return nil, false, true
		}
		if n+inc < 1 {
			return nil, false, true
		}
		shifted[i+1] = strconv.Itoa(n + inc)
		ok = true
	}
	return shifted, true, ok
}

// shiftDate moves a date group value by inc intervals.
func shiftDate(m *pivot.Model, gv pivot.GroupValue, inc int) (pivot.GroupValue, bool) {
	d, ok := m.Dimension(gv.Dimension)
	if !ok || !d.IsDate() {
		return gv, false
	}
	v, err := d.Granularity.IncrementArg(gv.Value, inc)
	if err != nil {
		return gv, false
	}
	return pivot.GroupValue{Dimension: gv.Dimension, Value: v}, true
}

// splitAxes separates the pairs of a path between the row and the column
// axis. Pairs on dimensions that are not grouped go with the rows.
func splitAxes(m *pivot.Model, path pivot.GroupPath) (rows, cols pivot.GroupPath) {
	for _, gv := range path {
		if axis, ok := m.AxisOf(gv.Dimension); ok && axis == pivot.ColumnAxis {
			cols = append(cols, gv)
		} else {
			rows = append(rows, gv)
		}
	}
	return rows, cols
}

func valueFormula(id, measure string, rows, cols pivot.GroupPath) string {
	return formula.MakePivot(id, measure, append(rows.Args(), cols.Args()...)...)
}

func headerFormula(id string, path pivot.GroupPath) string {
	return formula.MakePivotHeader(id, path.Args()...)
}

func nextPivotValue(m *pivot.Model, id, measure string, groupArgs []string, dir Direction, inc int) string {
	if shifted, valid, ok := shiftPositional(m, groupArgs, dir, inc); ok {
		if !valid {
			return ""
		}
		return formula.MakePivot(id, measure, shifted...)
	}

	path, ok, err := m.ResolvePath(groupArgs)
	if err != nil || !ok {
		return ""
	}
	rows, cols := splitAxes(m, path.Without(pivot.MeasureDimension))

	if !dir.Vertical() {
		if m.IsGroupedOnlyByOneDate(pivot.ColumnAxis) && len(cols) == 1 {
			next, ok := shiftDate(m, cols[0], inc)
			if !ok {
				return ""
			}
			return valueFormula(id, measure, rows, pivot.GroupPath{next})
		}
		idx := m.TopGroupIndexOf(cols.Append(pivot.GroupValue{Dimension: pivot.MeasureDimension, Value: measure}))
		if idx < 0 {
			return ""
		}
		next := idx + inc
		switch {
		case next == -1:
			return headerFormula(id, rows)
		case next < 0 || next >= m.TopHeaderCount():
			return ""
		}
		c := m.Column(next)
		return valueFormula(id, c.Measure, rows, c.Path)
	}

	if m.IsGroupedOnlyByOneDate(pivot.RowAxis) && len(rows) == 1 {
		next, ok := shiftDate(m, rows[0], inc)
		if !ok {
			return ""
		}
		return valueFormula(id, measure, pivot.GroupPath{next}, cols)
	}
	idx := m.RowIndexOf(rows)
	if idx < 0 {
		return ""
	}
	next := idx + inc
	switch {
	case next == -1:
		return headerFormula(id, cols.Append(pivot.GroupValue{Dimension: pivot.MeasureDimension, Value: measure}))
	case next < 0 || next >= m.RowCount():
		return ""
	}
	return valueFormula(id, measure, m.RowPath(next), cols)
}

func isColumnHeader(m *pivot.Model, path pivot.GroupPath) bool {
	if len(path) == 0 {
		return false
	}
	if path[0].Dimension == pivot.MeasureDimension {
		return true
	}
	axis, ok := m.AxisOf(path[0].Dimension)
	return ok && axis == pivot.ColumnAxis
}

func nextPivotHeader(m *pivot.Model, id string, groupArgs []string, dir Direction, inc int) string {
	if shifted, valid, ok := shiftPositional(m, groupArgs, dir, inc); ok {
		if !valid {
			return ""
		}
		return formula.MakePivotHeader(id, shifted...)
	}

	path, ok, err := m.ResolvePath(groupArgs)
	if err != nil || !ok {
		return ""
	}
	if isColumnHeader(m, path) {
		return nextColumnHeader(m, id, path, dir, inc)
	}
	return nextRowHeader(m, id, path, dir, inc)
}

func nextColumnHeader(m *pivot.Model, id string, path pivot.GroupPath, dir Direction, inc int) string {
	levels := m.ColGroupByLevels()
	level := len(path) - 1
	groups := path
	if last := path[len(path)-1]; last.Dimension == pivot.MeasureDimension {
		level = levels
		groups = path[:len(path)-1]
	}

	if !dir.Vertical() {
		if m.IsGroupedOnlyByOneDate(pivot.ColumnAxis) && len(groups) == 1 {
			next, ok := shiftDate(m, groups[0], inc)
			if !ok {
				return ""
			}
			return headerFormula(id, append(pivot.GroupPath{next}, path[1:]...))
		}
		var headers []pivot.GroupPath
		for i := 0; i < m.TopHeaderCount(); i++ {
			h := m.Column(i).HeaderPath(level, levels)
			if len(headers) == 0 || !headers[len(headers)-1].Equal(h) {
				headers = append(headers, h)
			}
		}
		cur := -1
		for i, h := range headers {
			if h.Equal(path) {
				cur = i
				break
			}
		}
		next := cur + inc
		if cur < 0 || next < 0 || next >= len(headers) {
			return ""
		}
		return headerFormula(id, headers[next])
	}

	idx := m.TopGroupIndexOf(path)
	if idx < 0 {
		return ""
	}
	col := m.Column(idx)
	next := level + inc
	switch {
	case next < 0:
		return ""
	case next <= levels:
		return headerFormula(id, col.HeaderPath(next, levels))
	}
	row := next - levels - 1
	if row >= m.RowCount() {
		return ""
	}
	return valueFormula(id, col.Measure, m.RowPath(row), col.Path)
}

func nextRowHeader(m *pivot.Model, id string, path pivot.GroupPath, dir Direction, inc int) string {
	if !dir.Vertical() {
		// steps count the value columns from the header, 1 being the first
		col := inc - 1
		if col < 0 || col >= m.TopHeaderCount() {
			return ""
		}
		c := m.Column(col)
		return valueFormula(id, c.Measure, path, c.Path)
	}

	if m.IsGroupedOnlyByOneDate(pivot.RowAxis) && len(path) == 1 {
		next, ok := shiftDate(m, path[0], inc)
		if !ok {
			return ""
		}
		return headerFormula(id, pivot.GroupPath{next})
	}
	idx := m.RowIndexOf(path)
	next := idx + inc
	if idx < 0 || next < 0 || next >= m.RowCount() {
		return ""
	}
	return headerFormula(id, m.RowPath(next))
}
