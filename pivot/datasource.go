package pivot

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// Load is one load cycle of a DataSource. It completes exactly once.
type Load struct {
	generation uint64
	done       chan struct{}

	mu        sync.Mutex
	model     *Model
	err       error
	callbacks []func(*Model, error)
}

func newLoad(generation uint64) *Load {
	return &Load{generation: generation, done: make(chan struct{})}
}

func (l *Load) complete(m *Model, err error) {
	l.mu.Lock()
	l.model, l.err = m, err
	callbacks := l.callbacks
	l.callbacks = nil
	close(l.done)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(m, err)
	}
}

// failed reports whether the load completed with an error.
func (l *Load) failed() bool {
	select {
	case <-l.done:
	default:
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err != nil
}

// Done is closed when the load completes.
func (l *Load) Done() <-chan struct{} { return l.done }

// Wait blocks until the load completes or ctx ends.
func (l *Load) Wait(ctx context.Context) (*Model, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.model, l.err
}

// OnDone registers fn to be called once with the outcome of the load,
// immediately when it already completed.
func (l *Load) OnDone(fn func(*Model, error)) {
	l.mu.Lock()
	select {
	case <-l.done:
		m, err := l.model, l.err
		l.mu.Unlock()
		fn(m, err)
	default:
		l.callbacks = append(l.callbacks, fn)
		l.mu.Unlock()
	}
}

// DataSource owns the loaded data of one pivot and reloads it when its
// domain changes. A load started before a newer one completes with
// ErrStaleLoad and its data is dropped.
type DataSource struct {
	fetcher Fetcher
	opts    []Option
	logger  *zap.Logger
	labels  *LabelStore

	mu         sync.Mutex
	def        *Definition
	generation uint64
	current    *Load
	model      *Model
}

// NewDataSource returns a data source for def. Nothing is loaded until
// Load is called.
func NewDataSource(fetcher Fetcher, def *Definition, opts ...Option) *DataSource {
	o := newOptions(def, opts)
	return &DataSource{
		fetcher: fetcher,
		opts:    append(append([]Option(nil), opts...), WithLabels(o.labels), WithLogger(o.logger), WithPrinter(o.printer)),
		logger:  o.logger,
		labels:  o.labels,
		def:     def.Clone(),
	}
}

// Definition returns a copy of the current definition.
func (ds *DataSource) Definition() *Definition {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.def.Clone()
}

// Load returns the load in progress, or the last completed one. A new load
// starts when none exists or the last one failed.
func (ds *DataSource) Load(ctx context.Context) *Load {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.current != nil && !ds.current.failed() {
		return ds.current
	}
	return ds.startLocked(ctx)
}

// Reload starts a new load cycle, superseding the one in progress.
func (ds *DataSource) Reload(ctx context.Context) *Load {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.startLocked(ctx)
}

// SetComputedDomain changes the domain restricted by global filters and
// reloads.
func (ds *DataSource) SetComputedDomain(ctx context.Context, domain godoo.Domain) *Load {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.def.ComputedDomain = domain
	return ds.startLocked(ctx)
}

func (ds *DataSource) startLocked(ctx context.Context) *Load {
	ds.generation++
	load := newLoad(ds.generation)
	ds.current = load
	def := ds.def.Clone()

	go func() {
		m, err := Build(ctx, ds.fetcher, def, ds.opts...)

		ds.mu.Lock()
		stale := load.generation != ds.generation
		if !stale && err == nil {
			ds.model = m
		}
		ds.mu.Unlock()

		if stale {
			ds.logger.Warn("Discarding stale pivot load",
				zap.String("model", string(def.Model)),
				zap.Uint64("generation", load.generation),
				zap.String("op", "Load"),
			)
			load.complete(nil, ErrStaleLoad)
			return
		}
		if err != nil {
			ds.logger.Error("Failed to load pivot data",
				zap.Error(err),
				zap.String("model", string(def.Model)),
				zap.String("op", "Load"),
			)
		}
		load.complete(m, err)
	}()
	return load
}

// Model returns the data of the last successful load.
func (ds *DataSource) Model() (*Model, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.model, ds.model != nil
}

// Labels returns the label store shared by every load.
func (ds *DataSource) Labels() *LabelStore { return ds.labels }

// MeasureValue resolves a value formula; Loading before the first load.
func (ds *DataSource) MeasureValue(measure string, args []string) Result {
	m, ok := ds.Model()
	if !ok {
		return Result{State: Loading}
	}
	v, err := m.MeasureValue(measure, args)
	if err != nil {
		return Result{State: Failed, Err: err}
	}
	return ready(v)
}

// HeaderValue resolves a header formula; Loading before the first load.
func (ds *DataSource) HeaderValue(args []string) Result {
	m, ok := ds.Model()
	if !ok {
		return Result{State: Loading}
	}
	r, err := m.HeaderValue(args)
	if err != nil {
		return Result{State: Failed, Err: err}
	}
	return r
}

// FetchLabels loads the labels named by Loading results.
func (ds *DataSource) FetchLabels(ctx context.Context, refs []LabelRef) error {
	if len(refs) == 0 {
		return nil
	}
	ds.mu.Lock()
	opts := ds.def.options()
	ds.mu.Unlock()
	return ds.labels.Fetch(ctx, ds.fetcher, refs, opts)
}
