package autofill

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/list"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

// fakeFetcher answers read_group with canned rows keyed by the joined
// group-bys, and search_read on relations with a fixed order.
type fakeFetcher struct {
	rows  map[string][]map[string]interface{}
	order map[godoo.Model][]int64
}

func (f *fakeFetcher) FieldsGet(ctx context.Context, model godoo.Model, options ...*godoo.Options) (map[string]godoo.FieldInfo, error) {
	return map[string]godoo.FieldInfo{
		"stage_id":         {Name: "stage_id", Type: godoo.FieldMany2one, String: "Stage", Relation: godoo.ModelCrmStage},
		"create_date":      {Name: "create_date", Type: godoo.FieldDatetime, String: "Created on"},
		"expected_revenue": {Name: "expected_revenue", Type: godoo.FieldMonetary, String: "Expected Revenue", GroupOperator: pivot.OpSum},
		"priority": {Name: "priority", Type: godoo.FieldSelection, String: "Priority", Selection: []godoo.SelectionOption{
			{Value: "0", Label: "Low"}, {Value: "1", Label: "Medium"}, {Value: "2", Label: "High"},
		}},
	}, nil
}

func (f *fakeFetcher) ReadGroup(ctx context.Context, model godoo.Model, domain godoo.Domain, fields godoo.Fields, groupBy []string, options ...*godoo.Options) ([]map[string]interface{}, error) {
	return f.rows[strings.Join(groupBy, ",")], nil
}

func (f *fakeFetcher) SearchRead(ctx context.Context, model godoo.Model, domain godoo.Domain, fields godoo.Fields, options ...*godoo.Options) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	for _, id := range f.order[model] {
		out = append(out, map[string]interface{}{"id": id})
	}
	return out, nil
}

func (f *fakeFetcher) NameGet(ctx context.Context, model godoo.Model, ids []int64, options ...*godoo.Options) (map[int64]string, error) {
	return map[int64]string{}, nil
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		rows: map[string][]map[string]interface{}{
			"stage_id": {
				{"stage_id": []interface{}{int64(1), "New"}, "expected_revenue": 100.0, "__count": int64(1)},
				{"stage_id": []interface{}{int64(2), "Qualified"}, "expected_revenue": 200.0, "__count": int64(2)},
			},
			"stage_id,priority": {
				{"stage_id": []interface{}{int64(1), "New"}, "priority": "0", "expected_revenue": 100.0, "__count": int64(1)},
				{"stage_id": []interface{}{int64(2), "Qualified"}, "priority": "2", "expected_revenue": 150.0, "__count": int64(1)},
				{"stage_id": []interface{}{int64(2), "Qualified"}, "priority": "0", "expected_revenue": 50.0, "__count": int64(1)},
			},
			"create_date:month": {
				{"create_date:month": "April 2023", "expected_revenue": 100.0, "__count": int64(1)},
				{"create_date:month": "May 2023", "expected_revenue": 70.0, "__count": int64(2)},
			},
			"stage_id,create_date:month": {
				{"stage_id": []interface{}{int64(1), "New"}, "create_date:month": "April 2023", "expected_revenue": 100.0, "__count": int64(1)},
				{"stage_id": []interface{}{int64(2), "Qualified"}, "create_date:month": "May 2023", "expected_revenue": 70.0, "__count": int64(2)},
			},
		},
		order: map[godoo.Model][]int64{godoo.ModelCrmStage: {1, 2}},
	}
}

type sources struct {
	pivots map[string]*pivot.Model
	lists  map[string]*list.Definition
}

func (s *sources) PivotModel(id string) (*pivot.Model, bool) {
	m, ok := s.pivots[id]
	return m, ok
}

func (s *sources) ListDefinition(id string) (*list.Definition, bool) {
	d, ok := s.lists[id]
	return d, ok
}

func build(t *testing.T, rows, cols []string, measures ...string) *pivot.Model {
	t.Helper()
	m, err := pivot.Build(context.Background(), newFetcher(), &pivot.Definition{
		Model:       godoo.ModelCrmLead,
		RowGroupBys: rows,
		ColGroupBys: cols,
		Measures:    measures,
	})
	require.NoError(t, err)
	return m
}

// newEngine returns an engine over four pivots: "1" grouped by stage,
// "2" by stage and priority with two measures, "3" by month and "4" by
// stage and month.
func newEngine(t *testing.T) *Engine {
	t.Helper()
	s := &sources{
		pivots: map[string]*pivot.Model{
			"1": build(t, []string{"stage_id"}, nil, "expected_revenue"),
			"2": build(t, []string{"stage_id"}, []string{"priority"}, "expected_revenue", "__count"),
			"3": build(t, []string{"create_date:month"}, nil, "expected_revenue"),
			"4": build(t, []string{"stage_id"}, []string{"create_date:month"}, "expected_revenue"),
		},
		lists: map[string]*list.Definition{
			"1": {Model: godoo.ModelSaleOrder, Columns: []string{"name", "partner_id", "amount"}},
		},
	}
	return New(s, s)
}

func TestEngine_PivotValue(t *testing.T) {
	e := newEngine(t)

	tests := map[string]struct {
		formula string
		dir     Direction
		steps   int
		want    string
	}{
		"left past the first column gives the row header": {
			formula: `=PIVOT("1","expected_revenue","stage_id","2")`, dir: Left, steps: 1,
			want: `=PIVOT.HEADER("1","stage_id","2")`,
		},
		"left beyond the row header stops": {
			formula: `=PIVOT("1","expected_revenue","stage_id","2")`, dir: Left, steps: 2,
			want: "",
		},
		"down to the total row": {
			formula: `=PIVOT("1","expected_revenue","stage_id","2")`, dir: Down, steps: 1,
			want: `=PIVOT("1","expected_revenue")`,
		},
		"down past the last row stops": {
			formula: `=PIVOT("1","expected_revenue","stage_id","2")`, dir: Down, steps: 2,
			want: "",
		},
		"up past the first row gives the measure header": {
			formula: `=PIVOT("1","expected_revenue","stage_id","1")`, dir: Up, steps: 1,
			want: `=PIVOT.HEADER("1","measure","expected_revenue")`,
		},
		"month rows move by one month": {
			formula: `=PIVOT("3","expected_revenue","create_date:month","04/2023")`, dir: Down, steps: 1,
			want: `=PIVOT("3","expected_revenue","create_date:month","05/2023")`,
		},
		"month rows move back across years": {
			formula: `=PIVOT("3","expected_revenue","create_date:month","01/2024")`, dir: Up, steps: 2,
			want: `=PIVOT("3","expected_revenue","create_date:month","11/2023")`,
		},
		"right to the next measure": {
			formula: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`, dir: Right, steps: 1,
			want: `=PIVOT("2","__count","stage_id","1","priority","0")`,
		},
		"right to the next column group": {
			formula: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`, dir: Right, steps: 2,
			want: `=PIVOT("2","expected_revenue","stage_id","1","priority","2")`,
		},
		"right to the total columns": {
			formula: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`, dir: Right, steps: 4,
			want: `=PIVOT("2","expected_revenue","stage_id","1")`,
		},
		"right past the last column stops": {
			formula: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`, dir: Right, steps: 6,
			want: "",
		},
		"down keeps the column": {
			formula: `=PIVOT("2","__count","stage_id","1","priority","2")`, dir: Down, steps: 1,
			want: `=PIVOT("2","__count","stage_id","2","priority","2")`,
		},
		"month columns move by one month": {
			formula: `=PIVOT("4","expected_revenue","stage_id","1","create_date:month","04/2023")`, dir: Right, steps: 1,
			want: `=PIVOT("4","expected_revenue","stage_id","1","create_date:month","05/2023")`,
		},
		"positional rows shift the position": {
			formula: `=PIVOT("1","expected_revenue","#stage_id","1")`, dir: Down, steps: 1,
			want: `=PIVOT("1","expected_revenue","#stage_id","2")`,
		},
		"positional rows stop before the first position": {
			formula: `=PIVOT("1","expected_revenue","#stage_id","1")`, dir: Up, steps: 1,
			want: "",
		},
		"PIVOT.POSITION arguments shift": {
			formula: `=PIVOT("1","expected_revenue","stage_id",PIVOT.POSITION("1","stage_id",1))`, dir: Down, steps: 2,
			want: `=PIVOT("1","expected_revenue","#stage_id","3")`,
		},
		"unknown pivot stops": {
			formula: `=PIVOT("9","expected_revenue","stage_id","1")`, dir: Down, steps: 1,
			want: "",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Next(tc.formula, tc.dir, tc.steps))
		})
	}
}

func TestEngine_PivotHeader(t *testing.T) {
	e := newEngine(t)

	tests := map[string]struct {
		formula string
		dir     Direction
		steps   int
		want    string
	}{
		"column header to the next group": {
			formula: `=PIVOT.HEADER("2","priority","0")`, dir: Right, steps: 1,
			want: `=PIVOT.HEADER("2","priority","2")`,
		},
		"column header to the total": {
			formula: `=PIVOT.HEADER("2","priority","0")`, dir: Right, steps: 2,
			want: `=PIVOT.HEADER("2")`,
		},
		"column header past the last group stops": {
			formula: `=PIVOT.HEADER("2","priority","0")`, dir: Right, steps: 3,
			want: "",
		},
		"column header down to the measure header": {
			formula: `=PIVOT.HEADER("2","priority","0")`, dir: Down, steps: 1,
			want: `=PIVOT.HEADER("2","priority","0","measure","expected_revenue")`,
		},
		"column header down into the values": {
			formula: `=PIVOT.HEADER("2","priority","0")`, dir: Down, steps: 2,
			want: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`,
		},
		"column header up stops": {
			formula: `=PIVOT.HEADER("2","priority","0")`, dir: Up, steps: 1,
			want: "",
		},
		"measure header to the next measure": {
			formula: `=PIVOT.HEADER("2","priority","0","measure","__count")`, dir: Right, steps: 1,
			want: `=PIVOT.HEADER("2","priority","2","measure","expected_revenue")`,
		},
		"measure header up to its group": {
			formula: `=PIVOT.HEADER("2","priority","2","measure","__count")`, dir: Up, steps: 1,
			want: `=PIVOT.HEADER("2","priority","2")`,
		},
		"measure header without column groups down into the values": {
			formula: `=PIVOT.HEADER("1","measure","expected_revenue")`, dir: Down, steps: 1,
			want: `=PIVOT("1","expected_revenue","stage_id","1")`,
		},
		"month column header moves by one month": {
			formula: `=PIVOT.HEADER("4","create_date:month","04/2023")`, dir: Left, steps: 1,
			want: `=PIVOT.HEADER("4","create_date:month","03/2023")`,
		},
		"row header right into the first column": {
			formula: `=PIVOT.HEADER("2","stage_id","1")`, dir: Right, steps: 1,
			want: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`,
		},
		"row header right into the third column": {
			formula: `=PIVOT.HEADER("2","stage_id","1")`, dir: Right, steps: 3,
			want: `=PIVOT("2","expected_revenue","stage_id","1","priority","2")`,
		},
		"row header left stops": {
			formula: `=PIVOT.HEADER("2","stage_id","1")`, dir: Left, steps: 1,
			want: "",
		},
		"row header down": {
			formula: `=PIVOT.HEADER("1","stage_id","1")`, dir: Down, steps: 1,
			want: `=PIVOT.HEADER("1","stage_id","2")`,
		},
		"row header down to the total": {
			formula: `=PIVOT.HEADER("1","stage_id","1")`, dir: Down, steps: 2,
			want: `=PIVOT.HEADER("1")`,
		},
		"row header past the total stops": {
			formula: `=PIVOT.HEADER("1","stage_id","1")`, dir: Down, steps: 3,
			want: "",
		},
		"month row header moves by one month": {
			formula: `=PIVOT.HEADER("3","create_date:month","12/2023")`, dir: Down, steps: 1,
			want: `=PIVOT.HEADER("3","create_date:month","01/2024")`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Next(tc.formula, tc.dir, tc.steps))
		})
	}
}

func TestEngine_List(t *testing.T) {
	e := newEngine(t)

	tests := map[string]struct {
		formula string
		dir     Direction
		steps   int
		want    string
	}{
		"value down":                 {`=LIST("1","3","name")`, Down, 2, `=LIST("1","5","name")`},
		"value up to the first":      {`=LIST("1","3","name")`, Up, 2, `=LIST("1","1","name")`},
		"value up past the first":    {`=LIST("1","1","name")`, Up, 1, ""},
		"value right":                {`=LIST("1","3","name")`, Right, 1, `=LIST("1","3","partner_id")`},
		"value right past the last":  {`=LIST("1","3","amount")`, Right, 1, ""},
		"value left past the first":  {`=LIST("1","3","name")`, Left, 1, ""},
		"header right":               {`=LIST.HEADER("1","partner_id")`, Right, 1, `=LIST.HEADER("1","amount")`},
		"header left":                {`=LIST.HEADER("1","partner_id")`, Left, 1, `=LIST.HEADER("1","name")`},
		"header down into the rows":  {`=LIST.HEADER("1","amount")`, Down, 3, `=LIST("1","3","amount")`},
		"header up stops":            {`=LIST.HEADER("1","amount")`, Up, 1, ""},
		"unknown column stops":       {`=LIST("1","3","state")`, Right, 1, ""},
		"unknown list stops":         {`=LIST("2","3","name")`, Down, 1, ""},
		"invalid position stops":     {`=LIST("1","first","name")`, Down, 1, ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Next(tc.formula, tc.dir, tc.steps))
		})
	}
}

func TestEngine_OpaqueFormulas(t *testing.T) {
	e := newEngine(t)

	for _, f := range []string{
		`=SUM(A1:A3)`,
		`=PIVOT("1","expected_revenue","stage_id","1")+PIVOT("1","expected_revenue","stage_id","2")`,
		`=PIVOT("1","expected_revenue","stage_id",A1)`,
		`=PIVOT(`,
		`hello`,
	} {
		assert.Equal(t, f, e.Next(f, Down, 1), f)
	}
}

func TestEngine_EmbeddedCall(t *testing.T) {
	e := newEngine(t)

	next := `=PIVOT("1","expected_revenue","stage_id","2")`
	assert.Equal(t, next, e.Next(`=2*PIVOT("1","expected_revenue","stage_id","1")`, Down, 1))
	assert.Equal(t, next, e.Next(`=ROUND(PIVOT("1","expected_revenue","stage_id","1"), 2)`, Down, 1))
	assert.Equal(t, `=LIST("1","3","name")`, e.Next(`=UPPER(LIST("1","2","name"))`, Down, 1))
	assert.Equal(t,
		e.Tooltip(`=PIVOT("1","expected_revenue","stage_id","1")`, Down),
		e.Tooltip(`=2*PIVOT("1","expected_revenue","stage_id","1")`, Down))
}

func TestEngine_Tooltip(t *testing.T) {
	e := newEngine(t)

	tests := map[string]struct {
		formula string
		dir     Direction
		want    []Tooltip
	}{
		"vertical drag shows the row groups": {
			formula: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`, dir: Down,
			want: []Tooltip{{Title: "Stage", Value: "New"}},
		},
		"horizontal drag shows the column groups and the measure": {
			formula: `=PIVOT("2","expected_revenue","stage_id","1","priority","0")`, dir: Right,
			want: []Tooltip{{Title: "Priority", Value: "Low"}, {Title: "Measure", Value: "Expected Revenue"}},
		},
		"single measure is not shown": {
			formula: `=PIVOT("4","expected_revenue","stage_id","2","create_date:month","05/2023")`, dir: Left,
			want: []Tooltip{{Title: "Created on (month)", Value: "May 2023"}},
		},
		"measure header": {
			formula: `=PIVOT.HEADER("2","priority","2","measure","__count")`, dir: Right,
			want: []Tooltip{{Title: "Priority", Value: "High"}, {Title: "Measure", Value: "Count"}},
		},
		"total header": {
			formula: `=PIVOT.HEADER("1")`, dir: Down,
			want: []Tooltip{{Title: "Total"}},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Tooltip(tc.formula, tc.dir))
		})
	}

	assert.Nil(t, e.Tooltip(`=LIST("1","1","name")`, Down))
	assert.Nil(t, e.Tooltip(`=SUM(A1)`, Down))
	assert.Nil(t, e.Tooltip(`=PIVOT("9","expected_revenue")`, Down))
}

func TestEngine_TooltipFollowsNext(t *testing.T) {
	e := newEngine(t)

	next := e.Next(`=PIVOT("1","expected_revenue","stage_id","1")`, Down, 1)
	require.Equal(t, `=PIVOT("1","expected_revenue","stage_id","2")`, next)
	assert.Equal(t, []Tooltip{{Title: "Stage", Value: "Qualified"}}, e.Tooltip(next, Down))
}

func TestDirection(t *testing.T) {
	assert.True(t, Up.Vertical())
	assert.True(t, Down.Vertical())
	assert.False(t, Left.Vertical())
	assert.Equal(t, -3, Left.increment(3))
	assert.Equal(t, 3, Down.increment(3))
	assert.Equal(t, "right", Right.String())
	assert.Equal(t, "Direction(7)", Direction(7).String())
}
