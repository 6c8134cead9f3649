package pivot

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Tree is the flattened group hierarchy of one axis: every group of every
// level, depth first, followed by the total.
type Tree struct {
	dims  []Dimension
	paths []GroupPath
}

// joinPolicy decides, per level, whether children are joined (every value
// of the dimension under every parent) or filtered (only values that occur
// together with the parent). A date dimension opens a joined run that
// lasts until a date dimension on the same field closes it.
func joinPolicy(dims []Dimension) []bool {
	join := make([]bool, len(dims))
	joiningOn := ""
	for i, d := range dims {
		if d.IsDate() {
			if d.Field == joiningOn {
				joiningOn = ""
			} else {
				joiningOn = d.Field
			}
		}
		join[i] = i > 0 && joiningOn != ""
	}
	return join
}

func buildTree(idx *DomainIndex, dims []Dimension) *Tree {
	t := &Tree{dims: dims}
	join := joinPolicy(dims)

	var expand func(level int, live *roaring.Bitmap, prefix GroupPath)
	expand = func(level int, live *roaring.Bitmap, prefix GroupPath) {
		if level == len(dims) {
			return
		}
		x, ok := idx.Dimension(dims[level].Name)
		if !ok {
			return
		}
		for _, v := range x.values {
			set := roaring.And(live, x.Records(v))
			if !join[level] && set.IsEmpty() {
				continue
			}
			path := prefix.Append(GroupValue{Dimension: dims[level].Name, Value: v})
			t.paths = append(t.paths, path)
			expand(level+1, set, path)
		}
	}
	expand(0, idx.All(), nil)
	t.paths = append(t.paths, GroupPath{})
	return t
}

// Dimensions returns the group-bys of the axis.
func (t *Tree) Dimensions() []Dimension {
	return append([]Dimension(nil), t.dims...)
}

// Len returns the number of groups, total included.
func (t *Tree) Len() int { return len(t.paths) }

// Path returns the i-th group.
func (t *Tree) Path(i int) GroupPath { return t.paths[i] }

// IndexOf returns the position of path, or -1.
func (t *Tree) IndexOf(path GroupPath) int {
	for i, p := range t.paths {
		if p.Equal(path) {
			return i
		}
	}
	return -1
}

// Leaves returns the deepest groups in order, then the total.
func (t *Tree) Leaves() []GroupPath {
	var leaves []GroupPath
	for _, p := range t.paths {
		if len(p) == len(t.dims) && len(p) > 0 {
			leaves = append(leaves, p)
		}
	}
	return append(leaves, GroupPath{})
}

// Column is one column of the bottom header row: a column group and a
// measure.
type Column struct {
	Path    GroupPath
	Measure string
}

// FullPath is the column path followed by its measure pair.
func (c Column) FullPath() GroupPath {
	return c.Path.Append(GroupValue{Dimension: MeasureDimension, Value: c.Measure})
}

// HeaderPath returns the header of the column on header row level, given
// the number of column group-bys: a group prefix on the group rows, the
// measure header on the last row. Total columns have the empty path on
// every group row.
func (c Column) HeaderPath(level, levels int) GroupPath {
	switch {
	case level >= levels:
		return c.FullPath()
	case len(c.Path) == 0:
		return GroupPath{}
	case level+1 >= len(c.Path):
		return c.Path.Append()
	default:
		return c.Path[:level+1].Append()
	}
}

func topColumns(t *Tree, measures []string) []Column {
	var cols []Column
	for _, leaf := range t.Leaves() {
		for _, m := range measures {
			cols = append(cols, Column{Path: leaf, Measure: m})
		}
	}
	return cols
}
