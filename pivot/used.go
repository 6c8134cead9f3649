package pivot

import "sync"

// UsedDomainSet records which values and headers formulas have resolved,
// so a host can tell which cells of a pivot are still referenced.
type UsedDomainSet struct {
	mu      sync.Mutex
	values  map[string]struct{}
	headers map[string]struct{}
}

func newUsedDomainSet() *UsedDomainSet {
	return &UsedDomainSet{
		values:  make(map[string]struct{}),
		headers: make(map[string]struct{}),
	}
}

func valueKey(measure string, path GroupPath) string {
	return measure + "|" + path.Key()
}

// MarkValue records that measure was resolved for path.
func (u *UsedDomainSet) MarkValue(measure string, path GroupPath) {
	u.mu.Lock()
	u.values[valueKey(measure, path)] = struct{}{}
	u.mu.Unlock()
}

// MarkHeader records that the header of path was resolved.
func (u *UsedDomainSet) MarkHeader(path GroupPath) {
	u.mu.Lock()
	u.headers[path.Key()] = struct{}{}
	u.mu.Unlock()
}

// IsUsedValue reports whether MarkValue was called for measure and path,
// whatever the order of the pairs.
func (u *UsedDomainSet) IsUsedValue(measure string, path GroupPath) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.values[valueKey(measure, path)]
	return ok
}

// IsUsedHeader reports whether MarkHeader was called for path.
func (u *UsedDomainSet) IsUsedHeader(path GroupPath) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.headers[path.Key()]
	return ok
}

// Reset forgets everything.
func (u *UsedDomainSet) Reset() {
	u.mu.Lock()
	u.values = make(map[string]struct{})
	u.headers = make(map[string]struct{})
	u.mu.Unlock()
}
