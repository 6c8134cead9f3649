package godoo

import (
	"strconv"
)

// Helpers turning kolo/xmlrpc decoded values into Go values. Odoo sends
// `false` for empty fields of any type, integers as int64 (i4 may decode as
// int), doubles as float64 and many2one values as [id, display_name].

// AsInt64 returns v as an integer id.
func AsInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// AsFloat64 returns v as a number.
func AsFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// AsString returns v as a string; false and nil become "".
func AsString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case bool:
		if !s {
			return ""
		}
		return "true"
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

// IsFalse reports whether v is Odoo's empty value.
func IsFalse(v interface{}) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}

// Many2One splits a many2one value into its id and display name.
func Many2One(v interface{}) (int64, string, bool) {
	pair, ok := v.([]interface{})
	if !ok || len(pair) == 0 {
		if id, ok := AsInt64(v); ok {
			return id, "", true
		}
		return 0, "", false
	}
	id, ok := AsInt64(pair[0])
	if !ok {
		return 0, "", false
	}
	name := ""
	if len(pair) > 1 {
		name = AsString(pair[1])
	}
	return id, name, true
}
