// Package blotter keeps local order and execution collections consistent
// with the order service through periodic snapshot polling.
package blotter

import (
	"sort"
	"sync"
)

// Entity is anything with a server-assigned numeric identifier.
type Entity interface {
	EntityID() int
}

// EventKind classifies a collection mutation.
type EventKind int

const (
	// EventReset means the whole collection was replaced by a snapshot.
	// Consumers must discard held item references and re-render fully.
	EventReset EventKind = iota
	// EventRemove means a single item was removed locally.
	EventRemove
)

// Event is emitted to subscribers on every collection mutation.
type Event struct {
	Kind EventKind
	ID   int // removed identifier for EventRemove, zero otherwise
}

// Collection holds an ordered snapshot of server-owned entities, sorted
// ascending by identifier. Membership is driven entirely by the last
// snapshot replace plus local deletions; render code never edits it.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	items []T

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan Event
}

// NewCollection creates an empty collection.
func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{
		subs: make(map[int]chan Event),
	}
}

// Replace swaps the entire contents for the given snapshot, sorted ascending
// by identifier, and emits a single reset event. Nothing from the previous
// contents survives unless also present in the snapshot.
func (c *Collection[T]) Replace(items []T) {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EntityID() < sorted[j].EntityID()
	})

	c.mu.Lock()
	c.items = sorted
	c.mu.Unlock()

	c.notify(Event{Kind: EventReset})
}

// Remove deletes the item with the given identifier, if present, and emits a
// remove event. It reports whether anything was removed.
func (c *Collection[T]) Remove(id int) bool {
	c.mu.Lock()
	removed := false
	for i, item := range c.items {
		if item.EntityID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()

	if removed {
		c.notify(Event{Kind: EventRemove, ID: id})
	}
	return removed
}

// Snapshot returns a copy of the current contents.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}

// Get returns the item with the given identifier.
func (c *Collection[T]) Get(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of items currently held.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Subscribe creates a subscription channel for collection events.
func (c *Collection[T]) Subscribe(bufSize int) (id int, ch <-chan Event) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id = c.nextSubID
	c.nextSubID++
	evts := make(chan Event, bufSize)
	c.subs[id] = evts
	return id, evts
}

// Unsubscribe removes a subscription and closes its channel.
func (c *Collection[T]) Unsubscribe(id int) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if ch, ok := c.subs[id]; ok {
		close(ch)
		delete(c.subs, id)
	}
}

// notify delivers an event to all subscribers without blocking. Slow
// subscribers drop events; a reset always supersedes what they missed.
func (c *Collection[T]) notify(evt Event) {
	c.subsMu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	c.subsMu.Unlock()
}
