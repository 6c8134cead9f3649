package document

import "errors"

var (
	ErrUnknownPivot = errors.New("document: unknown pivot")
	ErrUnknownList  = errors.New("document: unknown list")
	ErrDuplicateID  = errors.New("document: id already used")
	ErrInvalidID    = errors.New("document: invalid id")
)

// ErrNotOdooFormula is returned when evaluating a formula that is not a
// single pivot or list call with literal arguments.
var ErrNotOdooFormula = errors.New("document: not a pivot or list formula")
