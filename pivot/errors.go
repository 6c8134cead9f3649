package pivot

import "errors"

var (
	// ErrUnknownDimension is returned when a group-by or formula argument
	// names a field the model does not have, or asks for the values of a
	// dimension the pivot is not grouped by.
	ErrUnknownDimension = errors.New("pivot: unknown dimension")

	// ErrUnknownMeasure is returned for a measure that is not part of the pivot.
	ErrUnknownMeasure = errors.New("pivot: unknown measure")

	// ErrNotImplemented is returned for aggregation operators that cannot be
	// computed from grouped data (array_agg).
	ErrNotImplemented = errors.New("pivot: not implemented")

	// ErrInvalidArguments is returned for malformed formula arguments.
	ErrInvalidArguments = errors.New("pivot: invalid arguments")

	// ErrInvalidDefinition is returned by Definition.Validate.
	ErrInvalidDefinition = errors.New("pivot: invalid definition")

	// ErrNotLoaded is returned when data is read before the first load.
	ErrNotLoaded = errors.New("pivot: data not loaded")

	// ErrStaleLoad resolves a load superseded by a newer one.
	ErrStaleLoad = errors.New("pivot: load superseded by a newer one")
)
