package autofill

import (
	"github.com/ilcreatore32/godoo-spreadsheet/formula"
	"github.com/ilcreatore32/godoo-spreadsheet/list"
)

// nextColumn returns the column inc columns away from field.
func nextColumn(def *list.Definition, field string, inc int) (string, bool) {
	i := def.ColumnIndex(field)
	if i < 0 {
		return "", false
	}
	next := i + inc
	if next < 0 || next >= len(def.Columns) {
		return "", false
	}
	return def.Columns[next], true
}

// nextListValue handles LIST(id, position, field): vertical drags move to
// the next records, horizontal ones to the next columns.
func nextListValue(def *list.Definition, args []string, dir Direction, inc int) string {
	if len(args) != 3 {
		return ""
	}
	id, field := args[0], args[2]
	position, ok := parsePosition(args[1])
	if !ok {
		return ""
	}
	if dir.Vertical() {
		if position+inc < 1 {
			return ""
		}
		return formula.MakeList(id, position+inc, field)
	}
	next, ok := nextColumn(def, field, inc)
	if !ok {
		return ""
	}
	return formula.MakeList(id, position, next)
}

// nextListHeader handles LIST.HEADER(id, field): the records of the column
// are below it.
func nextListHeader(def *list.Definition, args []string, dir Direction, inc int) string {
	if len(args) != 2 {
		return ""
	}
	id, field := args[0], args[1]
	if dir.Vertical() {
		if inc < 1 {
			return ""
		}
		return formula.MakeList(id, inc, field)
	}
	next, ok := nextColumn(def, field, inc)
	if !ok {
		return ""
	}
	return formula.MakeListHeader(id, next)
}
