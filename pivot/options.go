package pivot

import (
	"go.uber.org/zap"

	"github.com/ilcreatore32/godoo-spreadsheet/l10n"
)

// Option configures Build and NewDataSource.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	labels  *LabelStore
	printer *l10n.Printer
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLabels shares a label store between loads.
func WithLabels(labels *LabelStore) Option {
	return func(o *options) {
		o.labels = labels
	}
}

// WithPrinter sets the language of fixed labels. By default the language
// of the definition context is used.
func WithPrinter(p *l10n.Printer) Option {
	return func(o *options) {
		o.printer = p
	}
}

func newOptions(def *Definition, opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.labels == nil {
		o.labels = NewLabelStore()
	}
	if o.printer == nil {
		o.printer = l10n.New(def.Context.Lang())
	}
	return o
}
