package document

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/formula"
	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
	"github.com/ilcreatore32/godoo-spreadsheet/list"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

// SourceOption configures Sources.
type SourceOption func(*Sources)

// WithPrinter sets the language of fixed labels for every pivot and list.
// By default each uses the language of its definition context.
func WithPrinter(p *l10n.Printer) SourceOption {
	return func(s *Sources) {
		s.printer = p
	}
}

// Sources holds the data sources of the pivots and lists of a document.
// They are created on first use and share one label store. Sources
// implements autofill.PivotSource and autofill.ListSource.
type Sources struct {
	doc     *Document
	fetcher pivot.Fetcher
	labels  *pivot.LabelStore
	printer *l10n.Printer
	logger  *zap.Logger

	mu     sync.Mutex
	pivots map[string]*pivot.DataSource
	lists  map[string]*list.DataSource
}

// NewSources returns the data sources of doc, loading through fetcher.
// *godoo.OdooClient is a suitable fetcher.
func NewSources(doc *Document, fetcher pivot.Fetcher, opts ...SourceOption) *Sources {
	s := &Sources{
		doc:     doc,
		fetcher: fetcher,
		labels:  pivot.NewLabelStore(),
		logger:  doc.logger,
		pivots:  make(map[string]*pivot.DataSource),
		lists:   make(map[string]*list.DataSource),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pivot returns the data source of a pivot. It is not loaded until Load.
func (s *Sources) Pivot(id string) (*pivot.DataSource, error) {
	def, err := s.doc.Pivot(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ds, ok := s.pivots[id]; ok {
		return ds, nil
	}
	opts := []pivot.Option{pivot.WithLogger(s.logger), pivot.WithLabels(s.labels)}
	if s.printer != nil {
		opts = append(opts, pivot.WithPrinter(s.printer))
	}
	ds := pivot.NewDataSource(s.fetcher, def, opts...)
	s.pivots[id] = ds
	return ds, nil
}

// List returns the data source of a list.
func (s *Sources) List(id string) (*list.DataSource, error) {
	def, err := s.doc.List(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ds, ok := s.lists[id]; ok {
		return ds, nil
	}
	opts := []list.Option{list.WithLogger(s.logger)}
	if s.printer != nil {
		opts = append(opts, list.WithPrinter(s.printer))
	}
	ds := list.NewDataSource(s.fetcher, def, opts...)
	s.lists[id] = ds
	return ds, nil
}

// PivotModel returns the loaded data of a pivot.
func (s *Sources) PivotModel(id string) (*pivot.Model, bool) {
	s.mu.Lock()
	ds, ok := s.pivots[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return ds.Model()
}

// ListDefinition returns the definition of a list.
func (s *Sources) ListDefinition(id string) (*list.Definition, bool) {
	def, err := s.doc.List(id)
	return def, err == nil
}

// ApplyFilters brings the data sources in line with the document: sources
// of removed pivots and lists are dropped, and those whose filter domain
// changed get the new domain. Pivots start reloading at once, lists on the
// next Load.
func (s *Sources) ApplyFilters(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ds := range s.pivots {
		def, err := s.doc.Pivot(id)
		if err != nil {
			delete(s.pivots, id)
			continue
		}
		if !reflect.DeepEqual(ds.Definition().EffectiveDomain(), def.EffectiveDomain()) {
			s.logger.Debug("Pivot domain changed",
				zap.String("id", id),
				zap.Any("domain", def.EffectiveDomain()),
				zap.String("op", "ApplyFilters"),
			)
			ds.SetComputedDomain(ctx, def.ComputedDomain)
		}
	}
	for id, ds := range s.lists {
		def, err := s.doc.List(id)
		if err != nil {
			delete(s.lists, id)
			continue
		}
		if !reflect.DeepEqual(ds.Definition().EffectiveDomain(), def.EffectiveDomain()) {
			s.logger.Debug("List domain changed",
				zap.String("id", id),
				zap.Any("domain", def.EffectiveDomain()),
				zap.String("op", "ApplyFilters"),
			)
			ds.SetComputedDomain(def.ComputedDomain)
		}
	}
}

// Load waits for every pivot of the document to be loaded and loads the
// lists whose window grew, concurrently.
func (s *Sources) Load(ctx context.Context) error {
	var pivots []*pivot.DataSource
	for _, id := range s.doc.PivotIDs() {
		ds, err := s.Pivot(id)
		if err != nil {
			continue
		}
		pivots = append(pivots, ds)
	}
	var lists []*list.DataSource
	for _, id := range s.doc.ListIDs() {
		ds, err := s.List(id)
		if err != nil {
			continue
		}
		lists = append(lists, ds)
	}

	s.logger.Debug("Loading document data",
		zap.Int("pivots", len(pivots)),
		zap.Int("lists", len(lists)),
		zap.String("op", "Load"),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, ds := range pivots {
		ds := ds
		g.Go(func() error {
			_, err := ds.Load(ctx).Wait(gctx)
			return err
		})
	}
	for _, ds := range lists {
		ds := ds
		if !ds.NeedsReload() {
			continue
		}
		g.Go(func() error {
			return ds.Load(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("Document data loaded",
		zap.Int("pivots", len(pivots)),
		zap.Int("lists", len(lists)),
		zap.String("op", "Load"),
	)
	return nil
}

// FetchLabels loads the display names named by Loading results.
func (s *Sources) FetchLabels(ctx context.Context, refs []pivot.LabelRef) error {
	if len(refs) == 0 {
		return nil
	}
	return s.labels.Fetch(ctx, s.fetcher, refs)
}

// Value evaluates a cell formula made of a single PIVOT, PIVOT.HEADER,
// LIST or LIST.HEADER call.
func (s *Sources) Value(f string) pivot.Result {
	fn, args, err := odooCall(f)
	if err != nil {
		return pivot.Result{State: pivot.Failed, Err: err}
	}

	switch fn.Name {
	case formula.Pivot, formula.PivotHeader:
		ds, err := s.Pivot(args[0])
		if err != nil {
			return pivot.Result{State: pivot.Failed, Err: err}
		}
		if fn.Name == formula.PivotHeader {
			return ds.HeaderValue(args[1:])
		}
		if len(args) < 2 {
			return pivot.Result{State: pivot.Failed, Err: fmt.Errorf("%w: missing measure", pivot.ErrInvalidArguments)}
		}
		return ds.MeasureValue(args[1], args[2:])

	case formula.List, formula.ListHeader:
		ds, err := s.List(args[0])
		if err != nil {
			return pivot.Result{State: pivot.Failed, Err: err}
		}
		if fn.Name == formula.ListHeader {
			if len(args) != 2 {
				return pivot.Result{State: pivot.Failed, Err: fmt.Errorf("%w: LIST.HEADER takes 2 arguments", ErrNotOdooFormula)}
			}
			return ds.HeaderValue(args[1])
		}
		if len(args) != 3 {
			return pivot.Result{State: pivot.Failed, Err: fmt.Errorf("%w: LIST takes 3 arguments", ErrNotOdooFormula)}
		}
		position, err := strconv.Atoi(args[1])
		if err != nil {
			return pivot.Result{State: pivot.Failed, Err: fmt.Errorf("%w: %q", list.ErrInvalidPosition, args[1])}
		}
		return ds.Value(position, args[2])
	}
	return pivot.Result{State: pivot.Failed, Err: fmt.Errorf("%w: %s", ErrNotOdooFormula, fn.Name)}
}

// RecordsDomain returns the domain of the records behind a cell formula,
// for opening them in Odoo.
func (s *Sources) RecordsDomain(f string) (godoo.Domain, error) {
	fn, args, err := odooCall(f)
	if err != nil {
		return nil, err
	}
	switch fn.Name {
	case formula.Pivot, formula.PivotHeader:
		if _, err := s.doc.Pivot(args[0]); err != nil {
			return nil, err
		}
		m, ok := s.PivotModel(args[0])
		if !ok {
			return nil, pivot.ErrNotLoaded
		}
		groupArgs := args[1:]
		if fn.Name == formula.Pivot {
			if len(args) < 2 {
				return nil, fmt.Errorf("%w: missing measure", pivot.ErrInvalidArguments)
			}
			groupArgs = args[2:]
		}
		return m.BackendDomain(groupArgs)

	case formula.List:
		if len(args) != 3 {
			return nil, fmt.Errorf("%w: LIST takes 3 arguments", ErrNotOdooFormula)
		}
		ds, err := s.List(args[0])
		if err != nil {
			return nil, err
		}
		position, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", list.ErrInvalidPosition, args[1])
		}
		return ds.RecordDomain(position)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotOdooFormula, fn.Name)
}

func odooCall(f string) (formula.Function, []string, error) {
	fn, ok := formula.Exact(f)
	if !ok {
		return formula.Function{}, nil, ErrNotOdooFormula
	}
	args, ok := fn.StringArgs()
	if !ok || len(args) == 0 {
		return formula.Function{}, nil, fmt.Errorf("%w: arguments must be literals", ErrNotOdooFormula)
	}
	return fn, args, nil
}

// IsStale reports whether err only means a newer load superseded the one
// that failed.
func IsStale(err error) bool {
	return errors.Is(err, pivot.ErrStaleLoad) || errors.Is(err, list.ErrStaleLoad)
}
