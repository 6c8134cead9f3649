package godoo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SearchRead searches and reads in a single round trip.
//
// Parameters:
//   - ctx: the context for the request.
//   - model: the Odoo model name.
//   - domain: filter of the records to read.
//   - fields: field names to read; Odoo returns every field when empty.
//   - options: optional limit, offset, order and context.
//
// Returns:
//   - []map[string]interface{}: one map per record, in the requested order.
//   - error: transport, server or context errors.
func (c *OdooClient) SearchRead(ctx context.Context, model Model, domain Domain, fields Fields, options ...*Options) ([]map[string]interface{}, error) {
	c.logger.Debug("Performing Odoo search_read",
		zap.String("model", string(model)),
		zap.Any("domain", domain),
		zap.Strings("fields", fields),
		zap.String("op", "SearchRead"),
	)

	kwargs := firstOptions(options).ToRPC()
	kwargs["fields"] = fields.ToRPC()

	var records []map[string]interface{}
	err := c.executeRPC(ctx, string(model), "search_read", []interface{}{domain.ToRPC()}, kwargs, &records)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Odoo search_read completed",
		zap.String("model", string(model)),
		zap.Int("records_count", len(records)),
		zap.String("op", "SearchRead"),
	)
	return records, nil
}

// ReadGroup calls read_group with lazy=false, so every row carries one value
// per requested group-by, the aggregated measures, "__count" and the
// "__domain" selecting the records of the row.
//
// Parameters:
//   - ctx: the context for the request.
//   - model: the Odoo model name.
//   - domain: filter applied before grouping.
//   - fields: aggregated fields, e.g. "expected_revenue:sum".
//   - groupBy: group-by specs, e.g. "stage_id" or "create_date:month".
//   - options: optional context; Order is sent as orderby.
func (c *OdooClient) ReadGroup(ctx context.Context, model Model, domain Domain, fields Fields, groupBy []string, options ...*Options) ([]map[string]interface{}, error) {
	c.logger.Debug("Performing Odoo read_group",
		zap.String("model", string(model)),
		zap.Any("domain", domain),
		zap.Strings("fields", fields),
		zap.Strings("group_by", groupBy),
		zap.String("op", "ReadGroup"),
	)

	opts := firstOptions(options)
	kwargs := map[string]interface{}{"lazy": false}
	if len(opts.Context) > 0 {
		kwargs["context"] = map[string]interface{}(opts.Context)
	}
	if opts.Order != "" {
		kwargs["orderby"] = opts.Order
	}
	if groupBy == nil {
		groupBy = []string{}
	}

	var rows []map[string]interface{}
	err := c.executeRPC(ctx, string(model), "read_group", []interface{}{domain.ToRPC(), fields.ToRPC(), groupBy}, kwargs, &rows)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Odoo read_group completed",
		zap.String("model", string(model)),
		zap.Int("groups", len(rows)),
		zap.String("op", "ReadGroup"),
	)
	return rows, nil
}

// NameGet returns the display name of each record, keyed by id.
func (c *OdooClient) NameGet(ctx context.Context, model Model, ids []int64, options ...*Options) (map[int64]string, error) {
	c.logger.Debug("Performing Odoo name_get",
		zap.String("model", string(model)),
		zap.Int64s("ids", ids),
		zap.String("op", "NameGet"),
	)

	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var raw []interface{}
	err := c.executeRPC(ctx, string(model), "name_get", []interface{}{ids}, firstOptions(options).ToRPC(), &raw)
	if err != nil {
		return nil, err
	}
	for _, item := range raw {
		id, name, ok := Many2One(item)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected name_get entry %v", ErrInvalidResponse, item)
		}
		names[id] = name
	}

	c.logger.Info("Odoo name_get completed",
		zap.String("model", string(model)),
		zap.Int("names", len(names)),
		zap.String("op", "NameGet"),
	)
	return names, nil
}

// FieldsGet describes the fields of a model.
func (c *OdooClient) FieldsGet(ctx context.Context, model Model, options ...*Options) (map[string]FieldInfo, error) {
	c.logger.Debug("Performing Odoo fields_get",
		zap.String("model", string(model)),
		zap.String("op", "FieldsGet"),
	)

	kwargs := firstOptions(options).ToRPC()
	kwargs["attributes"] = []string{"type", "string", "relation", "selection", "group_operator", "aggregator", "store"}

	var raw map[string]interface{}
	err := c.executeRPC(ctx, string(model), "fields_get", []interface{}{}, kwargs, &raw)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]FieldInfo, len(raw))
	for name, desc := range raw {
		attrs, ok := desc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: unexpected fields_get entry for %q", ErrInvalidResponse, name)
		}
		fields[name] = fieldInfoFromRPC(name, attrs)
	}

	c.logger.Info("Odoo fields_get completed",
		zap.String("model", string(model)),
		zap.Int("fields", len(fields)),
		zap.String("op", "FieldsGet"),
	)
	return fields, nil
}
