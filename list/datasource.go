package list

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

// DefaultLimit is the number of records read by a first load.
const DefaultLimit = 80

// Fetcher is the part of the Odoo client a list loads its records with.
// *godoo.OdooClient implements it.
type Fetcher interface {
	FieldsGet(ctx context.Context, model godoo.Model, options ...*godoo.Options) (map[string]godoo.FieldInfo, error)
	SearchRead(ctx context.Context, model godoo.Model, domain godoo.Domain, fields godoo.Fields, options ...*godoo.Options) ([]map[string]interface{}, error)
}

// Option configures a DataSource.
type Option func(*DataSource)

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger *zap.Logger) Option {
	return func(ds *DataSource) {
		ds.logger = logger
	}
}

// WithPrinter sets the language of relation counts and placeholders.
func WithPrinter(p *l10n.Printer) Option {
	return func(ds *DataSource) {
		ds.printer = p
	}
}

// DataSource holds the first records of a list. Reading a position past
// the loaded window returns Loading and widens the window of the next
// load.
type DataSource struct {
	fetcher Fetcher
	logger  *zap.Logger
	printer *l10n.Printer

	mu         sync.Mutex
	def        *Definition
	generation uint64
	loaded     bool
	stale      bool
	fields     map[string]godoo.FieldInfo
	records    []map[string]interface{}
	limit      int
	wanted     int
}

// NewDataSource returns a data source for def. Nothing is loaded until
// Load is called.
func NewDataSource(fetcher Fetcher, def *Definition, opts ...Option) *DataSource {
	ds := &DataSource{
		fetcher: fetcher,
		def:     def.Clone(),
		wanted:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(ds)
	}
	if ds.logger == nil {
		ds.logger = zap.NewNop()
	}
	if ds.printer == nil {
		ds.printer = l10n.New(def.Context.Lang())
	}
	return ds
}

// Definition returns a copy of the current definition.
func (ds *DataSource) Definition() *Definition {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.def.Clone()
}

// SetComputedDomain changes the domain restricted by global filters. The
// loaded records are kept until the next Load, which refetches them.
func (ds *DataSource) SetComputedDomain(domain godoo.Domain) {
	ds.mu.Lock()
	ds.def.ComputedDomain = domain
	ds.generation++
	ds.stale = true
	ds.mu.Unlock()
}

// NeedsReload reports whether nothing was loaded yet, the domain changed
// since the last load, or a position past the loaded window was read.
func (ds *DataSource) NeedsReload() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return !ds.loaded || ds.stale || ds.wanted > ds.limit
}

// Load reads the field descriptions and the records of the window
// concurrently.
//
// Parameters:
//   - ctx: bounds both requests.
//
// Returns:
//   - error: ErrInvalidDefinition, ErrUnknownField for a column the model
//     does not have, ErrStaleLoad when the domain changed meanwhile, or
//     request errors.
func (ds *DataSource) Load(ctx context.Context) error {
	ds.mu.Lock()
	def := ds.def.Clone()
	generation := ds.generation
	limit := ds.wanted
	ds.mu.Unlock()

	if err := def.Validate(); err != nil {
		return err
	}
	ds.logger.Debug("Loading list records",
		zap.String("model", string(def.Model)),
		zap.Strings("columns", def.Columns),
		zap.Int("limit", limit),
		zap.String("op", "Load"),
	)

	var (
		fields  map[string]godoo.FieldInfo
		records []map[string]interface{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fields, err = ds.fetcher.FieldsGet(gctx, def.Model, &godoo.Options{Context: def.Context})
		return err
	})
	g.Go(func() error {
		var err error
		records, err = ds.fetcher.SearchRead(gctx, def.Model, def.EffectiveDomain(), godoo.Fields(def.Columns), &godoo.Options{
			Context: def.Context,
			Limit:   limit,
			Order:   def.Order(),
		})
		return err
	})
	if err := g.Wait(); err != nil {
		ds.logger.Error("Failed to load list records",
			zap.Error(err),
			zap.String("model", string(def.Model)),
			zap.String("op", "Load"),
		)
		return err
	}
	for _, c := range def.Columns {
		if _, ok := fields[c]; !ok {
			return fmt.Errorf("%w: %q on %s", ErrUnknownField, c, def.Model)
		}
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if generation != ds.generation {
		ds.logger.Warn("Discarding stale list load",
			zap.String("model", string(def.Model)),
			zap.String("op", "Load"),
		)
		return ErrStaleLoad
	}
	ds.loaded = true
	ds.stale = false
	ds.fields = fields
	ds.records = records
	ds.limit = limit

	ds.logger.Info("List records loaded",
		zap.String("model", string(def.Model)),
		zap.Int("records_count", len(records)),
		zap.String("op", "Load"),
	)
	return nil
}

func (ds *DataSource) fieldLocked(name string) (godoo.FieldInfo, error) {
	f, ok := ds.fields[name]
	if !ok {
		return godoo.FieldInfo{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Value returns field of the record at a 1-based position.
func (ds *DataSource) Value(position int, field string) pivot.Result {
	if position < 1 {
		return pivot.Result{State: pivot.Failed, Err: fmt.Errorf("%w: %d", ErrInvalidPosition, position)}
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if position > ds.wanted {
		ds.wanted = position
	}
	if !ds.loaded {
		return pivot.Result{State: pivot.Loading}
	}
	f, err := ds.fieldLocked(field)
	if err != nil {
		return pivot.Result{State: pivot.Failed, Err: err}
	}
	if position > len(ds.records) {
		if len(ds.records) < ds.limit {
			return pivot.Result{State: pivot.Ready, Value: ""}
		}
		return pivot.Result{State: pivot.Loading}
	}
	return pivot.Result{State: pivot.Ready, Value: formatValue(f, ds.records[position-1][field], ds.printer)}
}

// HeaderValue returns the label of a field.
func (ds *DataSource) HeaderValue(field string) pivot.Result {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.loaded {
		return pivot.Result{State: pivot.Loading}
	}
	f, err := ds.fieldLocked(field)
	if err != nil {
		return pivot.Result{State: pivot.Failed, Err: err}
	}
	return pivot.Result{State: pivot.Ready, Value: f.String}
}

// RecordID returns the id of the record at a 1-based position.
func (ds *DataSource) RecordID(position int) (int64, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if position < 1 || position > len(ds.records) {
		return 0, false
	}
	return godoo.AsInt64(ds.records[position-1]["id"])
}

// RecordDomain returns the domain selecting the record at a position, used
// to open it.
func (ds *DataSource) RecordDomain(position int) (godoo.Domain, error) {
	id, ok := ds.RecordID(position)
	if !ok {
		return nil, fmt.Errorf("%w: no loaded record at %d", ErrInvalidPosition, position)
	}
	return godoo.Domain{{"id", "=", id}}, nil
}

// FieldLabel returns the label of a field once loaded.
func (ds *DataSource) FieldLabel(field string) (string, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	f, ok := ds.fields[field]
	if !ok {
		return "", false
	}
	return f.String, true
}
