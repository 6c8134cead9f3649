package formula

// Node is a node of a parsed formula.
type Node interface {
	node()
}

// LiteralKind tells what a literal holds.
type LiteralKind int

const (
	Text LiteralKind = iota
	Number
	Logical
	ErrorValue
)

// Literal is a constant operand. Text values are unquoted.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (n *Literal) node() {}

// Reference is a cell, range or name reference.
type Reference struct {
	Ref string
}

func (n *Reference) node() {}

// Unary is a prefix operator (-A1) or a postfix one (10%).
type Unary struct {
	Op      string
	Operand Node
	Postfix bool
}

func (n *Unary) node() {}

// Binary is an infix operator.
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

func (n *Binary) node() {}

// Call is a function call. Name is upper case.
type Call struct {
	Name string
	Args []Node
}

func (n *Call) node() {}
