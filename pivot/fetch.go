package pivot

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// Fetcher is the part of the Odoo client a pivot loads its data with.
// *godoo.OdooClient implements it.
type Fetcher interface {
	FieldsGet(ctx context.Context, model godoo.Model, options ...*godoo.Options) (map[string]godoo.FieldInfo, error)
	ReadGroup(ctx context.Context, model godoo.Model, domain godoo.Domain, fields godoo.Fields, groupBy []string, options ...*godoo.Options) ([]map[string]interface{}, error)
	SearchRead(ctx context.Context, model godoo.Model, domain godoo.Domain, fields godoo.Fields, options ...*godoo.Options) ([]map[string]interface{}, error)
	NameGetter
}

// Build loads the data of def and returns the resulting snapshot.
//
// It describes the model fields, reads the grouped aggregates with a single
// read_group call, then concurrently reads the natural order of every
// non-date dimension.
//
// Parameters:
//   - ctx: bounds every request.
//   - fetcher: the Odoo client.
//   - def: the pivot; its computed domain is used when set.
//   - opts: logger, shared label store and printer.
//
// Returns:
//   - *Model: an immutable snapshot of the data.
//   - error: ErrInvalidDefinition, ErrUnknownDimension, ErrUnknownMeasure or
//     request errors.
func Build(ctx context.Context, fetcher Fetcher, def *Definition, opts ...Option) (*Model, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(def, opts)
	o.logger.Debug("Loading pivot data",
		zap.String("model", string(def.Model)),
		zap.Strings("row_group_bys", def.RowGroupBys),
		zap.Strings("col_group_bys", def.ColGroupBys),
		zap.Strings("measures", def.Measures),
		zap.String("op", "Build"),
	)

	fields, err := fetcher.FieldsGet(ctx, def.Model, def.options())
	if err != nil {
		return nil, err
	}
	rowDims, err := resolveDimensions(def.RowGroupBys, fields)
	if err != nil {
		return nil, err
	}
	colDims, err := resolveDimensions(def.ColGroupBys, fields)
	if err != nil {
		return nil, err
	}
	operators, readFields, err := resolveMeasures(def.Measures, fields)
	if err != nil {
		return nil, err
	}
	dims := append(append([]Dimension(nil), rowDims...), colDims...)
	groupBys := make([]string, len(dims))
	for i, d := range dims {
		groupBys[i] = d.Name
	}

	rows, err := fetcher.ReadGroup(ctx, def.Model, def.EffectiveDomain(), readFields, groupBys, def.options())
	if err != nil {
		return nil, err
	}

	idx := newDomainIndex(dims, fields)
	records := make([]aggregateRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := newAggregateRecord(row, operators)
		if err != nil {
			return nil, err
		}
		for _, d := range dims {
			field := fields[d.Field]
			value, name, err := normalizeGroupValue(d, field, row[d.Name])
			if err != nil {
				return nil, err
			}
			idx.byDim[d.Name].add(value, uint32(i))
			rec.fragments[d.Name+","+value] = struct{}{}
			if name != "" {
				if id, err := strconv.ParseInt(value, 10, 64); err == nil {
					o.labels.Set(field.Relation, id, name)
				}
			}
		}
		idx.all.Add(uint32(i))
		records = append(records, rec)
	}

	orders, err := canonicalOrders(ctx, fetcher, def, idx)
	if err != nil {
		return nil, err
	}
	for i, d := range dims {
		idx.byDim[d.Name].sortValues(orders[i])
	}

	m := newModel(def, fields, rowDims, colDims, operators, idx, records, o)
	o.logger.Info("Pivot data loaded",
		zap.String("model", string(def.Model)),
		zap.Int("groups", len(records)),
		zap.Int("rows", m.RowCount()),
		zap.Int("columns", m.TopHeaderCount()),
		zap.String("op", "Build"),
	)
	return m, nil
}

func resolveDimensions(specs []string, fields map[string]godoo.FieldInfo) ([]Dimension, error) {
	dims := make([]Dimension, 0, len(specs))
	for _, spec := range specs {
		d, _, err := resolveDimension(spec, fields)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// resolveMeasures returns the aggregation operator of every measure and the
// read_group field specs ("expected_revenue:sum").
func resolveMeasures(measures []string, fields map[string]godoo.FieldInfo) (map[string]string, godoo.Fields, error) {
	operators := make(map[string]string, len(measures))
	var readFields godoo.Fields
	for _, m := range measures {
		if m == CountMeasure {
			operators[m] = OpSum
			continue
		}
		field, ok := fields[m]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownMeasure, m)
		}
		op := field.GroupOperator
		if op == "" {
			op = OpSum
		}
		operators[m] = op
		readFields = append(readFields, m+":"+op)
	}
	return operators, readFields, nil
}

func newAggregateRecord(row map[string]interface{}, operators map[string]string) (aggregateRecord, error) {
	count, _ := godoo.AsInt64(row["__count"])
	domain, err := godoo.DomainFromRPC(row["__domain"])
	if err != nil {
		return aggregateRecord{}, fmt.Errorf("%w: invalid __domain", err)
	}
	rec := aggregateRecord{
		measures:  make(map[string]interface{}, len(operators)),
		count:     count,
		domain:    domain,
		fragments: make(map[string]struct{}),
	}
	for m := range operators {
		if m == CountMeasure {
			rec.measures[m] = float64(count)
			continue
		}
		if f, ok := godoo.AsFloat64(row[m]); ok {
			rec.measures[m] = f
		} else {
			rec.measures[m] = row[m]
		}
	}
	return rec, nil
}

// canonicalOrders returns, per dimension, the values in the order the
// model itself sorts them. Many2one values follow the default order of the
// related model, selections their declaration order, other fields the
// records matched by the pivot domain sorted on that field. Dates need no
// request and get a nil order.
func canonicalOrders(ctx context.Context, fetcher Fetcher, def *Definition, idx *DomainIndex) ([][]string, error) {
	orders := make([][]string, len(idx.dims))
	g, ctx := errgroup.WithContext(ctx)
	for i, d := range idx.dims {
		i, d := i, d
		x := idx.byDim[d.Name]
		field := x.Field()
		switch {
		case d.IsDate():
			continue
		case field.Type == godoo.FieldSelection:
			for _, opt := range field.Selection {
				orders[i] = append(orders[i], opt.Value)
			}
			continue
		case field.Type == godoo.FieldMany2one:
			ids := make([]interface{}, 0, len(x.values))
			for _, v := range x.values {
				if id, err := strconv.ParseInt(v, 10, 64); err == nil {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				continue
			}
			g.Go(func() error {
				records, err := fetcher.SearchRead(ctx, field.Relation, godoo.Domain{{"id", "in", ids}}, godoo.Fields{"id"}, def.options())
				if err != nil {
					return err
				}
				for _, r := range records {
					if id, ok := godoo.AsInt64(r["id"]); ok {
						orders[i] = append(orders[i], strconv.FormatInt(id, 10))
					}
				}
				return nil
			})
		default:
			g.Go(func() error {
				opts := def.options()
				opts.Order = d.Field
				records, err := fetcher.SearchRead(ctx, def.Model, def.EffectiveDomain(), godoo.Fields{d.Field}, opts)
				if err != nil {
					return err
				}
				for _, r := range records {
					value, _, err := normalizeGroupValue(d, field, r[d.Field])
					if err != nil {
						return err
					}
					orders[i] = append(orders[i], value)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return orders, nil
}
