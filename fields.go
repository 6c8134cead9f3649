package godoo

// FieldType is the Odoo type of a field as reported by fields_get.
type FieldType string

const (
	FieldChar      FieldType = "char"
	FieldText      FieldType = "text"
	FieldHTML      FieldType = "html"
	FieldInteger   FieldType = "integer"
	FieldFloat     FieldType = "float"
	FieldMonetary  FieldType = "monetary"
	FieldBoolean   FieldType = "boolean"
	FieldDate      FieldType = "date"
	FieldDatetime  FieldType = "datetime"
	FieldSelection FieldType = "selection"
	FieldMany2one  FieldType = "many2one"
	FieldOne2many  FieldType = "one2many"
	FieldMany2many FieldType = "many2many"
)

// IsDate reports whether values of this type can be grouped by granularity.
func (t FieldType) IsDate() bool {
	return t == FieldDate || t == FieldDatetime
}

// IsNumeric reports whether the field can be used as a pivot measure.
func (t FieldType) IsNumeric() bool {
	return t == FieldInteger || t == FieldFloat || t == FieldMonetary
}

// IsRelational reports whether the field points to other records.
func (t FieldType) IsRelational() bool {
	return t == FieldMany2one || t == FieldOne2many || t == FieldMany2many
}

// SelectionOption is one (value, label) entry of a selection field.
type SelectionOption struct {
	Value string
	Label string
}

// FieldInfo is the description of one field returned by fields_get.
type FieldInfo struct {
	Name          string
	Type          FieldType
	String        string
	Relation      Model
	Selection     []SelectionOption
	GroupOperator string
	Store         bool
}

// SelectionLabel returns the label of a selection value, or the value itself.
func (f FieldInfo) SelectionLabel(value string) string {
	for _, opt := range f.Selection {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// fieldInfoFromRPC decodes one fields_get entry.
func fieldInfoFromRPC(name string, raw map[string]interface{}) FieldInfo {
	info := FieldInfo{Name: name}
	info.Type = FieldType(AsString(raw["type"]))
	info.String = AsString(raw["string"])
	info.Relation = Model(AsString(raw["relation"]))
	info.GroupOperator = AsString(raw["group_operator"])
	if info.GroupOperator == "" {
		info.GroupOperator = AsString(raw["aggregator"])
	}
	if store, ok := raw["store"].(bool); ok {
		info.Store = store
	}
	if options, ok := raw["selection"].([]interface{}); ok {
		for _, opt := range options {
			pair, ok := opt.([]interface{})
			if !ok || len(pair) != 2 {
				continue
			}
			info.Selection = append(info.Selection, SelectionOption{
				Value: AsString(pair[0]),
				Label: AsString(pair[1]),
			})
		}
	}
	return info
}
