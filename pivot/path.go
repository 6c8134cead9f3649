package pivot

import (
	"fmt"
	"sort"
	"strings"
)

// GroupValue is one (dimension, value) pair of a group path.
type GroupValue struct {
	Dimension string
	Value     string
}

// GroupPath identifies a group from the outermost dimension to the
// innermost. The empty path is the total.
type GroupPath []GroupValue

// ParseGroupPath reads flattened formula arguments
// (dimension, value, dimension, value, ...).
func ParseGroupPath(args []string) (GroupPath, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of group arguments %q", ErrInvalidArguments, args)
	}
	path := make(GroupPath, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		path = append(path, GroupValue{Dimension: args[i], Value: args[i+1]})
	}
	return path, nil
}

// Args flattens the path back into formula arguments.
func (p GroupPath) Args() []string {
	args := make([]string, 0, 2*len(p))
	for _, gv := range p {
		args = append(args, gv.Dimension, gv.Value)
	}
	return args
}

// Values returns the values of the path.
func (p GroupPath) Values() []string {
	values := make([]string, len(p))
	for i, gv := range p {
		values[i] = gv.Value
	}
	return values
}

// Equal reports structural equality.
func (p GroupPath) Equal(other GroupPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is the head of p.
func (p GroupPath) HasPrefix(prefix GroupPath) bool {
	return len(prefix) <= len(p) && p[:len(prefix)].Equal(prefix)
}

// Append returns a new path; p is left untouched.
func (p GroupPath) Append(values ...GroupValue) GroupPath {
	out := make(GroupPath, 0, len(p)+len(values))
	out = append(out, p...)
	return append(out, values...)
}

// Without returns the path minus the pairs on dimension.
func (p GroupPath) Without(dimension string) GroupPath {
	out := make(GroupPath, 0, len(p))
	for _, gv := range p {
		if gv.Dimension != dimension {
			out = append(out, gv)
		}
	}
	return out
}

// Get returns the value bound to dimension.
func (p GroupPath) Get(dimension string) (string, bool) {
	for _, gv := range p {
		if gv.Dimension == dimension {
			return gv.Value, true
		}
	}
	return "", false
}

// Key is an order-independent representation of the path.
func (p GroupPath) Key() string {
	parts := make([]string, len(p))
	for i, gv := range p {
		parts[i] = gv.Dimension + "," + gv.Value
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}
