package pivot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// fakeFetcher groups in-memory records the way read_group does. Record
// values are stored under the group-by spec, so "create_date:month" holds
// the month label.
type fakeFetcher struct {
	fields  map[string]godoo.FieldInfo
	records []map[string]interface{}
	order   map[godoo.Model][]int64
	names   map[godoo.Model]map[int64]string
	nameErr error
	block   chan struct{}

	// fieldsErr is returned by the next fieldsErrs calls to FieldsGet.
	fieldsErr  error
	fieldsErrs int

	mu    sync.Mutex
	calls []string
}

func (f *fakeFetcher) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeFetcher) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeFetcher) FieldsGet(ctx context.Context, model godoo.Model, options ...*godoo.Options) (map[string]godoo.FieldInfo, error) {
	f.record("fields_get " + string(model))
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fieldsErrs > 0 {
		f.fieldsErrs--
		return nil, f.fieldsErr
	}
	return f.fields, nil
}

func groupValue(rec map[string]interface{}, groupBy string) interface{} {
	if v, ok := rec[groupBy]; ok {
		return v
	}
	return rec[groupBy+":month"]
}

func (f *fakeFetcher) ReadGroup(ctx context.Context, model godoo.Model, domain godoo.Domain, fields godoo.Fields, groupBy []string, options ...*godoo.Options) ([]map[string]interface{}, error) {
	f.record("read_group " + string(model))
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	type group struct {
		row    map[string]interface{}
		values map[string][]float64
	}
	var keys []string
	groups := make(map[string]*group)
	for _, rec := range f.records {
		parts := make([]string, len(groupBy))
		for i, gb := range groupBy {
			parts[i] = fmt.Sprint(groupValue(rec, gb))
		}
		key := strings.Join(parts, "|")
		g, ok := groups[key]
		if !ok {
			g = &group{row: map[string]interface{}{"__count": int64(0)}, values: map[string][]float64{}}
			dom := []interface{}{}
			for _, gb := range groupBy {
				g.row[gb] = groupValue(rec, gb)
				dom = append(dom, []interface{}{gb, "=", fmt.Sprint(groupValue(rec, gb))})
			}
			g.row["__domain"] = dom
			groups[key] = g
			keys = append(keys, key)
		}
		g.row["__count"] = g.row["__count"].(int64) + 1
		for _, spec := range fields {
			name, _, _ := strings.Cut(spec, ":")
			if v, ok := godoo.AsFloat64(rec[name]); ok {
				g.values[name] = append(g.values[name], v)
			}
		}
	}

	rows := make([]map[string]interface{}, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		for _, spec := range fields {
			name, op, _ := strings.Cut(spec, ":")
			total := 0.0
			for _, v := range g.values[name] {
				total += v
			}
			if op == OpAvg && len(g.values[name]) > 0 {
				total /= float64(len(g.values[name]))
			}
			g.row[name] = total
		}
		rows = append(rows, g.row)
	}
	return rows, nil
}

func (f *fakeFetcher) SearchRead(ctx context.Context, model godoo.Model, domain godoo.Domain, fields godoo.Fields, options ...*godoo.Options) ([]map[string]interface{}, error) {
	f.record("search_read " + string(model))
	if ids, ok := f.order[model]; ok {
		out := make([]map[string]interface{}, 0, len(ids))
		for _, id := range ids {
			out = append(out, map[string]interface{}{"id": id})
		}
		return out, nil
	}
	out := make([]map[string]interface{}, 0, len(f.records))
	for _, rec := range f.records {
		row := map[string]interface{}{}
		for _, name := range fields {
			row[name] = rec[name]
		}
		out = append(out, row)
	}
	if len(options) > 0 && options[0] != nil && options[0].Order != "" {
		field := options[0].Order
		sort.SliceStable(out, func(i, j int) bool {
			return godoo.AsString(out[i][field]) < godoo.AsString(out[j][field])
		})
	}
	return out, nil
}

func (f *fakeFetcher) NameGet(ctx context.Context, model godoo.Model, ids []int64, options ...*godoo.Options) (map[int64]string, error) {
	f.record("name_get " + string(model))
	if f.nameErr != nil {
		return nil, f.nameErr
	}
	out := make(map[int64]string)
	for _, id := range ids {
		if name, ok := f.names[model][id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func leadFields() map[string]godoo.FieldInfo {
	return map[string]godoo.FieldInfo{
		"stage_id":         {Name: "stage_id", Type: godoo.FieldMany2one, String: "Stage", Relation: godoo.ModelCrmStage},
		"user_id":          {Name: "user_id", Type: godoo.FieldMany2one, String: "Salesperson", Relation: godoo.ModelResUsers},
		"create_date":      {Name: "create_date", Type: godoo.FieldDatetime, String: "Created on"},
		"expected_revenue": {Name: "expected_revenue", Type: godoo.FieldMonetary, String: "Expected Revenue", GroupOperator: OpSum},
		"probability":      {Name: "probability", Type: godoo.FieldFloat, String: "Probability", GroupOperator: OpAvg},
		"priority": {Name: "priority", Type: godoo.FieldSelection, String: "Priority", Selection: []godoo.SelectionOption{
			{Value: "0", Label: "Low"}, {Value: "1", Label: "Medium"}, {Value: "2", Label: "High"},
		}},
		"active": {Name: "active", Type: godoo.FieldBoolean, String: "Active"},
		"name":   {Name: "name", Type: godoo.FieldChar, String: "Opportunity"},
	}
}

func m2o(id int64, name string) []interface{} {
	return []interface{}{id, name}
}

// newLeadFetcher returns five leads over two stages (plus one without
// stage) and three months. crm.stage orders stage 2 before stage 1.
func newLeadFetcher() *fakeFetcher {
	return &fakeFetcher{
		fields: leadFields(),
		records: []map[string]interface{}{
			{"stage_id": m2o(1, "New"), "create_date:month": "April 2023", "create_date:year": "2023", "user_id": m2o(7, "Mitchell"),
				"expected_revenue": 100.0, "probability": 10.0, "priority": "1", "active": true, "name": "Office chairs"},
			{"stage_id": m2o(2, "Qualified"), "create_date:month": "April 2023", "create_date:year": "2023", "user_id": m2o(8, "Marc"),
				"expected_revenue": 120.0, "probability": 30.0, "priority": "2", "active": true, "name": "Desks"},
			{"stage_id": m2o(2, "Qualified"), "create_date:month": "April 2023", "create_date:year": "2023", "user_id": false,
				"expected_revenue": 80.0, "probability": 50.0, "priority": "0", "active": false, "name": "Lamps"},
			{"stage_id": m2o(2, "Qualified"), "create_date:month": "May 2023", "create_date:year": "2023", "user_id": m2o(7, "Mitchell"),
				"expected_revenue": 50.0, "probability": 20.0, "priority": "1", "active": true, "name": "Cabinets"},
			{"stage_id": false, "create_date:month": "January 2024", "create_date:year": "2024", "user_id": m2o(8, "Marc"),
				"expected_revenue": 10.0, "probability": 90.0, "priority": "0", "active": true, "name": "Badges"},
		},
		order: map[godoo.Model][]int64{
			godoo.ModelCrmStage: {2, 1},
			godoo.ModelResUsers: {8, 7},
		},
		names: map[godoo.Model]map[int64]string{
			godoo.ModelCrmStage: {1: "New", 2: "Qualified", 3: "Won"},
		},
	}
}

func leadDefinition(rows, cols []string, measures ...string) *Definition {
	if len(measures) == 0 {
		measures = []string{"expected_revenue"}
	}
	return &Definition{
		Model:       godoo.ModelCrmLead,
		RowGroupBys: rows,
		ColGroupBys: cols,
		Measures:    measures,
		Domain:      godoo.Domain{},
	}
}
