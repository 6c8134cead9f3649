package formula

import (
	"strconv"
	"strings"
)

// Quote returns s as a formula string literal.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Make renders a call of name with string literal arguments.
func Make(name string, args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return "=" + name + "(" + strings.Join(quoted, ",") + ")"
}

// MakePivot renders =PIVOT(id, measure, dimension, value, ...).
func MakePivot(id, measure string, groupArgs ...string) string {
	return Make(Pivot, append([]string{id, measure}, groupArgs...)...)
}

// MakePivotHeader renders =PIVOT.HEADER(id, dimension, value, ...).
func MakePivotHeader(id string, groupArgs ...string) string {
	return Make(PivotHeader, append([]string{id}, groupArgs...)...)
}

// MakeList renders =LIST(id, position, field).
func MakeList(id string, position int, field string) string {
	return Make(List, id, strconv.Itoa(position), field)
}

// MakeListHeader renders =LIST.HEADER(id, field).
func MakeListHeader(id, field string) string {
	return Make(ListHeader, id, field)
}
