package list

import (
	"time"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
)

const (
	serverDate     = "2006-01-02"
	serverDatetime = "2006-01-02 15:04:05"
	cellDate       = "01/02/2006"
	cellDatetime   = "01/02/2006 15:04:05"
)

// formatValue turns a search_read value into a cell value.
func formatValue(field godoo.FieldInfo, raw interface{}, p *l10n.Printer) interface{} {
	if field.Type == godoo.FieldBoolean {
		b, _ := raw.(bool)
		return b
	}
	if godoo.IsFalse(raw) {
		return ""
	}
	switch field.Type {
	case godoo.FieldMany2one:
		_, name, _ := godoo.Many2One(raw)
		return name
	case godoo.FieldOne2many, godoo.FieldMany2many:
		ids, _ := raw.([]interface{})
		return p.RecordCount(len(ids))
	case godoo.FieldSelection:
		return field.SelectionLabel(godoo.AsString(raw))
	case godoo.FieldDate:
		if t, err := time.Parse(serverDate, godoo.AsString(raw)); err == nil {
			return t.Format(cellDate)
		}
	case godoo.FieldDatetime:
		if t, err := time.Parse(serverDatetime, godoo.AsString(raw)); err == nil {
			return t.Format(cellDatetime)
		}
	case godoo.FieldInteger:
		if n, ok := godoo.AsInt64(raw); ok {
			return n
		}
	case godoo.FieldFloat, godoo.FieldMonetary:
		if f, ok := godoo.AsFloat64(raw); ok {
			return f
		}
	}
	return godoo.AsString(raw)
}
