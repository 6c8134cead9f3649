// Package document keeps the pivots and lists inserted in a spreadsheet:
// their definitions under numeric string ids, the domains global filters
// add to them, and their persisted form.
package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/ilcreatore32/godoo-spreadsheet"
	"github.com/ilcreatore32/godoo-spreadsheet/list"
	"github.com/ilcreatore32/godoo-spreadsheet/pivot"
)

// Document owns the pivot and list definitions of a spreadsheet. Ids are
// allocated from explicit counters, always above every id in use, so a
// removed id is never handed out again.
type Document struct {
	mu sync.RWMutex

	pivots       map[string]*pivot.Definition
	pivotFilters map[string]godoo.Domain
	nextPivot    int

	lists       map[string]*list.Definition
	listFilters map[string]godoo.Domain
	nextList    int

	logger *zap.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// New returns an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		pivots:       make(map[string]*pivot.Definition),
		pivotFilters: make(map[string]godoo.Domain),
		nextPivot:    1,
		lists:        make(map[string]*list.Definition),
		listFilters:  make(map[string]godoo.Domain),
		nextList:     1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

func parseID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}

func sortedIDs[T any](m map[string]T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	return ids
}

// NextPivotID returns the id the next added pivot gets.
func (d *Document) NextPivotID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strconv.Itoa(d.nextPivot)
}

// AddPivot validates def and stores a copy under a new id.
func (d *Document) AddPivot(def *pivot.Definition) (string, error) {
	if err := def.Validate(); err != nil {
		return "", err
	}
	d.mu.Lock()
	id := strconv.Itoa(d.nextPivot)
	d.nextPivot++
	d.pivots[id] = def.Clone()
	d.pivots[id].ComputedDomain = nil
	d.mu.Unlock()

	d.logger.Info("Pivot added",
		zap.String("id", id),
		zap.String("model", string(def.Model)),
		zap.String("op", "AddPivot"),
	)
	return id, nil
}

// InsertPivot stores def under a given id, e.g. when copying a pivot
// between documents.
func (d *Document) InsertPivot(id string, def *pivot.Definition) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pivots[id]; ok {
		return fmt.Errorf("%w: pivot %s", ErrDuplicateID, id)
	}
	d.pivots[id] = def.Clone()
	d.pivots[id].ComputedDomain = nil
	if n >= d.nextPivot {
		d.nextPivot = n + 1
	}
	return nil
}

// Pivot returns a copy of a pivot definition with its computed domain.
func (d *Document) Pivot(id string) (*pivot.Definition, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.pivots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPivot, id)
	}
	c := def.Clone()
	if filter, ok := d.pivotFilters[id]; ok {
		c.ComputedDomain = godoo.AndDomains(def.Domain, filter)
	}
	return c, nil
}

// PivotIDs returns the pivot ids in increasing order.
func (d *Document) PivotIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sortedIDs(d.pivots)
}

// RemovePivot deletes a pivot and its filter domain.
func (d *Document) RemovePivot(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pivots[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPivot, id)
	}
	delete(d.pivots, id)
	delete(d.pivotFilters, id)
	return nil
}

// SetPivotFilterDomain sets the domain global filters add to a pivot. An
// empty domain removes the restriction.
func (d *Document) SetPivotFilterDomain(id string, filter godoo.Domain) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pivots[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPivot, id)
	}
	if len(filter) == 0 {
		delete(d.pivotFilters, id)
		return nil
	}
	d.pivotFilters[id] = append(godoo.Domain(nil), filter...)
	return nil
}

// NextListID returns the id the next added list gets.
func (d *Document) NextListID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strconv.Itoa(d.nextList)
}

// AddList validates def and stores a copy under a new id.
func (d *Document) AddList(def *list.Definition) (string, error) {
	if err := def.Validate(); err != nil {
		return "", err
	}
	d.mu.Lock()
	id := strconv.Itoa(d.nextList)
	d.nextList++
	d.lists[id] = def.Clone()
	d.lists[id].ComputedDomain = nil
	d.mu.Unlock()

	d.logger.Info("List added",
		zap.String("id", id),
		zap.String("model", string(def.Model)),
		zap.String("op", "AddList"),
	)
	return id, nil
}

// InsertList stores def under a given id.
func (d *Document) InsertList(id string, def *list.Definition) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.lists[id]; ok {
		return fmt.Errorf("%w: list %s", ErrDuplicateID, id)
	}
	d.lists[id] = def.Clone()
	d.lists[id].ComputedDomain = nil
	if n >= d.nextList {
		d.nextList = n + 1
	}
	return nil
}

// List returns a copy of a list definition with its computed domain.
func (d *Document) List(id string) (*list.Definition, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.lists[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, id)
	}
	c := def.Clone()
	if filter, ok := d.listFilters[id]; ok {
		c.ComputedDomain = godoo.AndDomains(def.Domain, filter)
	}
	return c, nil
}

// ListIDs returns the list ids in increasing order.
func (d *Document) ListIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sortedIDs(d.lists)
}

// RemoveList deletes a list and its filter domain.
func (d *Document) RemoveList(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.lists[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownList, id)
	}
	delete(d.lists, id)
	delete(d.listFilters, id)
	return nil
}

// SetListFilterDomain sets the domain global filters add to a list.
func (d *Document) SetListFilterDomain(id string, filter godoo.Domain) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.lists[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownList, id)
	}
	if len(filter) == 0 {
		delete(d.listFilters, id)
		return nil
	}
	d.listFilters[id] = append(godoo.Domain(nil), filter...)
	return nil
}

// data is the persisted form. Filter domains depend on the filter values
// of a session and are not saved.
type data struct {
	Pivots      map[string]*pivot.Definition `json:"pivots"`
	PivotNextID int                          `json:"pivotNextId"`
	Lists       map[string]*list.Definition  `json:"lists"`
	ListNextID  int                          `json:"listNextId"`
}

// MarshalJSON saves the definitions and the id counters.
func (d *Document) MarshalJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return json.Marshal(data{
		Pivots:      d.pivots,
		PivotNextID: d.nextPivot,
		Lists:       d.lists,
		ListNextID:  d.nextList,
	})
}

// UnmarshalJSON replaces the content of d. Counters below an id in use are
// raised above it.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw data
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	pivots := make(map[string]*pivot.Definition, len(raw.Pivots))
	nextPivot := max(raw.PivotNextID, 1)
	for id, def := range raw.Pivots {
		n, err := parseID(id)
		if err != nil {
			return err
		}
		if def == nil {
			return fmt.Errorf("pivot %s: %w", id, pivot.ErrInvalidDefinition)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("pivot %s: %w", id, err)
		}
		pivots[id] = def
		nextPivot = max(nextPivot, n+1)
	}
	lists := make(map[string]*list.Definition, len(raw.Lists))
	nextList := max(raw.ListNextID, 1)
	for id, def := range raw.Lists {
		n, err := parseID(id)
		if err != nil {
			return err
		}
		if def == nil {
			return fmt.Errorf("list %s: %w", id, list.ErrInvalidDefinition)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("list %s: %w", id, err)
		}
		lists[id] = def
		nextList = max(nextList, n+1)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	d.pivots, d.nextPivot = pivots, nextPivot
	d.lists, d.nextList = lists, nextList
	d.pivotFilters = make(map[string]godoo.Domain)
	d.listFilters = make(map[string]godoo.Domain)
	return nil
}
