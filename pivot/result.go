package pivot

import (
	"fmt"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
)

// State tells whether a lookup has a value yet.
type State int

const (
	Ready State = iota
	Loading
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// LabelRef names a record whose display name is needed.
type LabelRef struct {
	Model godoo.Model
	ID    int64
}

// Result is the outcome of a value or header lookup. A Loading result may
// name the labels to fetch before asking again.
type Result struct {
	State   State
	Value   interface{}
	Err     error
	Missing []LabelRef
}

func ready(v interface{}) Result { return Result{State: Ready, Value: v} }

// Display returns what a cell shows: the value, the loading placeholder
// or the error message.
func (r Result) Display(p *l10n.Printer) interface{} {
	switch r.State {
	case Loading:
		return p.Text(l10n.Loading)
	case Failed:
		return r.Err.Error()
	}
	return r.Value
}
