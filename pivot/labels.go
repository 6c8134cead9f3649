package pivot

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// NameGetter fetches display names.
type NameGetter interface {
	NameGet(ctx context.Context, model godoo.Model, ids []int64, options ...*godoo.Options) (map[int64]string, error)
}

type label struct {
	name string
	err  error
}

// LabelStore caches record display names per model. Reads never fetch:
// unknown labels read as Loading and the caller fetches them with Fetch.
type LabelStore struct {
	mu     sync.RWMutex
	labels map[LabelRef]label
}

// NewLabelStore returns an empty store.
func NewLabelStore() *LabelStore {
	return &LabelStore{labels: make(map[LabelRef]label)}
}

// Set records a display name, e.g. one carried by a many2one group value.
func (s *LabelStore) Set(model godoo.Model, id int64, name string) {
	s.mu.Lock()
	s.labels[LabelRef{Model: model, ID: id}] = label{name: name}
	s.mu.Unlock()
}

// Get returns the display name of a record: Ready with the name, Failed
// with the error of the fetch that tried to load it, or Loading when it
// was never fetched.
func (s *LabelStore) Get(model godoo.Model, id int64) Result {
	ref := LabelRef{Model: model, ID: id}
	s.mu.RLock()
	l, ok := s.labels[ref]
	s.mu.RUnlock()
	switch {
	case !ok:
		return Result{State: Loading, Missing: []LabelRef{ref}}
	case l.err != nil:
		return Result{State: Failed, Err: l.err}
	}
	return ready(l.name)
}

// Fetch loads the given labels with one name_get call per model. A failed
// call is remembered against each of its records and returned. Labels are
// left untouched when ctx ends.
func (s *LabelStore) Fetch(ctx context.Context, names NameGetter, refs []LabelRef, options ...*godoo.Options) error {
	byModel := make(map[godoo.Model][]int64)
	for _, ref := range refs {
		byModel[ref.Model] = append(byModel[ref.Model], ref.ID)
	}
	models := make([]string, 0, len(byModel))
	for m := range byModel {
		models = append(models, string(m))
	}
	sort.Strings(models)

	var errs []error
	for _, m := range models {
		model := godoo.Model(m)
		ids := byModel[model]
		fetched, err := names.NameGet(ctx, model, ids, options...)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		s.mu.Lock()
		for _, id := range ids {
			ref := LabelRef{Model: model, ID: id}
			switch name, ok := fetched[id]; {
			case err != nil:
				s.labels[ref] = label{err: err}
			case ok:
				s.labels[ref] = label{name: name}
			default:
				s.labels[ref] = label{err: godoo.ErrRecordNotFound}
			}
		}
		s.mu.Unlock()

		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
