package origin

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

var (
	ErrEmptyName  = errors.New("origin name must not be empty")
	ErrNilBackend = errors.New("origin backend must not be nil")
)

// Registry resolves backends by name.
type Registry interface {
	Lookup(name string) (Backend, bool)
}

// Table is a copy-on-write Registry. Lookups read an immutable snapshot
// without locking; writers serialize among themselves and publish a new
// snapshot. The zero value is an empty table.
type Table struct {
	mutex    sync.Mutex
	snapshot atomic.Pointer[map[string]Backend]
}

var _ Registry = (*Table)(nil)

func NewTable() *Table {
	t := &Table{}
	empty := map[string]Backend{}
	t.snapshot.Store(&empty)
	return t
}

// current returns the published snapshot; nil before the first write.
func (t *Table) current() map[string]Backend {
	if m := t.snapshot.Load(); m != nil {
		return *m
	}
	return nil
}

func (t *Table) Lookup(name string) (Backend, bool) {
	b, ok := t.current()[name]
	return b, ok
}

func (t *Table) Register(name string, b Backend) error {
	if name == "" {
		return ErrEmptyName
	}
	if b == nil {
		return ErrNilBackend
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	next := maps.Clone(t.current())
	if next == nil {
		next = map[string]Backend{}
	}
	next[name] = b
	t.snapshot.Store(&next)
	return nil
}

// Remove reports whether name was registered.
func (t *Table) Remove(name string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	current := t.current()
	if _, ok := current[name]; !ok {
		return false
	}

	next := maps.Clone(current)
	delete(next, name)
	t.snapshot.Store(&next)
	return true
}

// Replace swaps the whole set of backends at once, e.g. after a config reload.
func (t *Table) Replace(backends map[string]Backend) error {
	for name, b := range backends {
		if name == "" {
			return ErrEmptyName
		}
		if b == nil {
			return ErrNilBackend
		}
	}

	next := maps.Clone(backends)
	if next == nil {
		next = map[string]Backend{}
	}

	t.mutex.Lock()
	t.snapshot.Store(&next)
	t.mutex.Unlock()
	return nil
}

// Names returns the registered names in sorted order.
func (t *Table) Names() []string {
	return slices.Sorted(maps.Keys(t.current()))
}
