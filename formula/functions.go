package formula

import (
	"strings"
)

// Names of the spreadsheet functions reading Odoo data.
const (
	Pivot         = "PIVOT"
	PivotHeader   = "PIVOT.HEADER"
	PivotPosition = "PIVOT.POSITION"
	List          = "LIST"
	ListHeader    = "LIST.HEADER"
)

// Kind classifies Odoo functions.
type Kind int

const (
	PivotKind Kind = iota + 1
	ListKind
)

func kindOf(name string) (Kind, bool) {
	switch name {
	case Pivot, PivotHeader, PivotPosition:
		return PivotKind, true
	case List, ListHeader:
		return ListKind, true
	}
	return 0, false
}

// Function is a call to an Odoo function found in a formula.
type Function struct {
	Name string
	Kind Kind
	Args []Node
}

// Functions returns the Odoo function calls of a formula, outermost first.
// Arguments of a matched call are not searched. Formulas that do not parse
// have none.
func Functions(formula string) []Function {
	root, err := Parse(formula)
	if err != nil {
		return nil
	}
	var found []Function
	walk(root, &found)
	return found
}

func walk(n Node, found *[]Function) {
	switch n := n.(type) {
	case *Unary:
		walk(n.Operand, found)
	case *Binary:
		walk(n.Left, found)
		walk(n.Right, found)
	case *Call:
		if kind, ok := kindOf(n.Name); ok {
			*found = append(*found, Function{Name: n.Name, Kind: kind, Args: n.Args})
			return
		}
		for _, arg := range n.Args {
			walk(arg, found)
		}
	}
}

// Single returns the Odoo function of a formula holding exactly one such
// call, wherever it appears in the expression.
func Single(formula string) (Function, bool) {
	found := Functions(formula)
	if len(found) != 1 {
		return Function{}, false
	}
	return found[0], true
}

// Exact returns the Odoo function of a formula made of that call and
// nothing else.
func Exact(formula string) (Function, bool) {
	root, err := Parse(formula)
	if err != nil {
		return Function{}, false
	}
	call, ok := root.(*Call)
	if !ok {
		return Function{}, false
	}
	kind, ok := kindOf(call.Name)
	if !ok {
		return Function{}, false
	}
	return Function{Name: call.Name, Kind: kind, Args: call.Args}, true
}

// StringArgs returns the arguments as strings when they are all literals.
// A PIVOT.POSITION("1","stage_id",2) argument becomes the positional pair
// "#stage_id","2", replacing the dimension argument before it.
func (f Function) StringArgs() ([]string, bool) {
	out := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		switch a := arg.(type) {
		case *Literal:
			out = append(out, a.Value)
		case *Call:
			if a.Name != PivotPosition || len(a.Args) != 3 || len(out) == 0 {
				return nil, false
			}
			pos, ok := (Function{Name: a.Name, Args: a.Args}).StringArgs()
			if !ok {
				return nil, false
			}
			out[len(out)-1] = "#" + strings.TrimPrefix(pos[1], "#")
			out = append(out, pos[2])
		default:
			return nil, false
		}
	}
	return out, true
}
