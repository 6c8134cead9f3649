package godoo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMany2One(t *testing.T) {
	id, name, ok := Many2One([]interface{}{int64(7), "Won"})
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "Won", name)

	id, _, ok = Many2One(int64(3))
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	_, _, ok = Many2One(false)
	assert.False(t, ok)
}

func TestAsString(t *testing.T) {
	tests := map[string]struct {
		value interface{}
		want  string
	}{
		"string": {value: "abc", want: "abc"},
		"false":  {value: false, want: ""},
		"true":   {value: true, want: "true"},
		"int64":  {value: int64(42), want: "42"},
		"float":  {value: 1.5, want: "1.5"},
		"nil":    {value: nil, want: ""},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, AsString(test.value))
		})
	}
}

func TestIsFalse(t *testing.T) {
	assert.True(t, IsFalse(false))
	assert.True(t, IsFalse(nil))
	assert.False(t, IsFalse(true))
	assert.False(t, IsFalse(int64(0)))
}

func TestFieldInfoFromRPC(t *testing.T) {
	info := fieldInfoFromRPC("priority", map[string]interface{}{
		"type":      "selection",
		"string":    "Priority",
		"selection": []interface{}{[]interface{}{"0", "Normal"}, []interface{}{"1", "High"}},
		"store":     true,
	})

	assert.Equal(t, FieldSelection, info.Type)
	assert.Equal(t, "Priority", info.String)
	assert.Equal(t, "High", info.SelectionLabel("1"))
	assert.Equal(t, "2", info.SelectionLabel("2"))
	assert.True(t, info.Store)
}
