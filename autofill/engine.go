// Package autofill computes the formula a spreadsheet cell gets when a cell
// holding a pivot or list formula is dragged over it, and the tooltip shown
// while dragging.
package autofill

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ilcreatore32/godoo-spreadsheet/formula"
	"github.com/ilcreatore32/godoo-spreadsheet/list"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

// Direction is the direction of a drag.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Vertical reports whether the drag moves across rows.
func (d Direction) Vertical() bool { return d == Up || d == Down }

// increment is the signed distance of steps cells in direction d.
func (d Direction) increment(steps int) int {
	if d == Up || d == Left {
		return -steps
	}
	return steps
}

// PivotSource gives access to loaded pivots.
type PivotSource interface {
	PivotModel(id string) (*pivot.Model, bool)
}

// ListSource gives access to list definitions.
type ListSource interface {
	ListDefinition(id string) (*list.Definition, bool)
}

// Engine computes autofill formulas and tooltips. It never fetches data:
// pivots that are not loaded yet stop the autofill.
type Engine struct {
	pivots PivotSource
	lists  ListSource
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New returns an engine reading pivots and lists from the given sources.
func New(pivots PivotSource, lists ListSource, opts ...Option) *Engine {
	e := &Engine{pivots: pivots, lists: lists}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Next returns the formula of the cell steps cells away from the one
// holding f in direction dir. The empty string stops the autofill.
//
// Formulas that are not a single pivot or list call with literal arguments
// are returned unchanged.
func (e *Engine) Next(f string, dir Direction, steps int) string {
	e.logger.Debug("Computing autofill formula",
		zap.String("formula", f),
		zap.Stringer("direction", dir),
		zap.Int("steps", steps),
		zap.String("op", "Next"),
	)

	fn, ok := formula.Single(f)
	if !ok {
		if n := len(formula.Functions(f)); n > 1 {
			e.logger.Warn("Formula holds several pivot or list functions, left unchanged",
				zap.String("formula", f),
				zap.Int("functions", n),
				zap.String("op", "Next"),
			)
		}
		return f
	}
	args, ok := fn.StringArgs()
	if !ok || len(args) == 0 {
		return f
	}
	inc := dir.increment(steps)

	switch fn.Name {
	case formula.Pivot, formula.PivotHeader:
		m, ok := e.pivots.PivotModel(args[0])
		if !ok {
			return ""
		}
		if fn.Name == formula.Pivot {
			if len(args) < 2 {
				return ""
			}
			return nextPivotValue(m, args[0], args[1], args[2:], dir, inc)
		}
		return nextPivotHeader(m, args[0], args[1:], dir, inc)

	case formula.List, formula.ListHeader:
		def, ok := e.lists.ListDefinition(args[0])
		if !ok {
			return ""
		}
		if fn.Name == formula.List {
			return nextListValue(def, args, dir, inc)
		}
		return nextListHeader(def, args, dir, inc)
	}
	return f
}

func parsePosition(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
