package list

import "errors"

var (
	// ErrUnknownField is returned for a field the list model does not have.
	ErrUnknownField = errors.New("list: unknown field")

	// ErrInvalidPosition is returned for record positions below 1.
	ErrInvalidPosition = errors.New("list: invalid position")

	// ErrInvalidDefinition is returned by Definition.Validate.
	ErrInvalidDefinition = errors.New("list: invalid definition")

	// ErrStaleLoad is returned by a load whose domain changed while it ran.
	ErrStaleLoad = errors.New("list: load superseded by a newer one")
)
