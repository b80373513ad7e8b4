package state

import (
	"sort"
	"sync"
)

// Entity is anything with a server-assigned stable id.
type Entity interface {
	EntityID() string
}

// Change is the outcome of applying an upsert event.
type Change int

const (
	ChangeNone Change = iota
	ChangeInserted
	ChangeReplaced
	ChangeRemoved
)

// Collection is a view's local snapshot of one entity kind, keyed by
// id. Three inputs mutate it: a bulk load replacing everything, upsert
// events carrying full snapshots, and removal events by id. Every
// upsert is a whole-entity replace, last write wins by arrival order;
// the transport's per-connection ordering is the only ordering relied
// on, so callers must bulk-reload after a reconnect.
type Collection[T Entity] struct {
	mu      sync.RWMutex
	items   map[string]T
	include func(T) bool
}

// New builds a collection. include is the view's inclusion predicate;
// nil means every entity belongs.
func New[T Entity](include func(T) bool) *Collection[T] {
	return &Collection[T]{
		items:   make(map[string]T),
		include: include,
	}
}

func (c *Collection[T]) admits(item T) bool {
	return c.include == nil || c.include(item)
}

// Load replaces the whole collection. Entities failing the inclusion
// predicate are dropped; duplicate ids collapse to the last occurrence.
func (c *Collection[T]) Load(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]T, len(items))
	for _, item := range items {
		if c.admits(item) {
			c.items[item.EntityID()] = item
		}
	}
}

// Apply merges one upsert event. An absent entity that satisfies the
// predicate is inserted; a present one is replaced in place; a present
// one that no longer satisfies the predicate is removed.
func (c *Collection[T]) Apply(item T) Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := item.EntityID()
	_, present := c.items[id]

	if !c.admits(item) {
		if present {
			delete(c.items, id)
			return ChangeRemoved
		}
		return ChangeNone
	}

	c.items[id] = item
	if present {
		return ChangeReplaced
	}
	return ChangeInserted
}

// Remove drops an entity by id. Removing an absent id is a no-op.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	return item, ok
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// List returns a copy of the collection in unspecified order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	return out
}

// SortedBy returns a copy ordered by less.
func (c *Collection[T]) SortedBy(less func(a, b T) bool) []T {
	out := c.List()
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
