package pivot

import (
	"errors"

	"go.uber.org/zap"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// aggregateRecord is one read_group row.
type aggregateRecord struct {
	measures  map[string]interface{}
	count     int64
	domain    godoo.Domain
	fragments map[string]struct{}
}

func fragment(gv GroupValue) string {
	return gv.Dimension + "," + gv.Value
}

// AggregateCache answers measure lookups from the read_group rows of one
// load, combining rows when a lookup spans several of them.
type AggregateCache struct {
	records []aggregateRecord
	index   *DomainIndex
	used    *UsedDomainSet
	logger  *zap.Logger
}

// Value returns measure aggregated with operator over the records of path.
// path must only hold grouped dimensions with normalized values; pairs on
// values absent from the data yield a blank (nil) value.
func (c *AggregateCache) Value(measure, operator string, path GroupPath) (interface{}, error) {
	matching := c.index.Matching(path)
	if matching.IsEmpty() {
		return nil, nil
	}

	var result interface{}
	if matching.GetCardinality() == 1 {
		result = c.records[matching.Minimum()].measures[measure]
	} else {
		values := make([]interface{}, 0, matching.GetCardinality())
		counts := make([]int64, 0, matching.GetCardinality())
		it := matching.Iterator()
		for it.HasNext() {
			rec := c.records[it.Next()]
			values = append(values, rec.measures[measure])
			counts = append(counts, rec.count)
		}
		var err error
		result, err = aggregate(operator, values, counts)
		if errors.Is(err, errUnknownOperator) {
			c.logger.Warn("Unknown pivot aggregation operator",
				zap.String("measure", measure),
				zap.String("operator", operator),
				zap.String("op", "MeasureValue"),
			)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
	c.used.MarkValue(measure, path)
	return result, nil
}

// recordsCovering returns the records whose group values include every pair
// of path, in load order.
func (c *AggregateCache) recordsCovering(path GroupPath) []int {
	var out []int
	for i, rec := range c.records {
		covered := true
		for _, gv := range path {
			if _, ok := rec.fragments[fragment(gv)]; !ok {
				covered = false
				break
			}
		}
		if covered {
			out = append(out, i)
		}
	}
	return out
}

// BackendDomain returns the OR of the domains of the records covering path,
// the server-side domain of the records summed in that cell.
func (c *AggregateCache) BackendDomain(path GroupPath) godoo.Domain {
	indices := c.recordsCovering(path)
	domains := make([]godoo.Domain, 0, len(indices))
	for _, i := range indices {
		domains = append(domains, c.records[i].domain)
	}
	return godoo.OrDomains(domains...)
}
