package hooks

import (
	"context"
	"slices"
	"sync"
)

// Listeners is a set of keyed change subscribers. Listeners registered under
// the empty key receive every notification.
type Listeners[E any] struct {
	mu    sync.RWMutex
	next  int
	byKey map[string]map[int]AfterFunc[E]
}

// Add registers fn for key and returns a function removing it.
func (l *Listeners[E]) Add(key string, fn AfterFunc[E]) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byKey == nil {
		l.byKey = make(map[string]map[int]AfterFunc[E])
	}
	if l.byKey[key] == nil {
		l.byKey[key] = make(map[int]AfterFunc[E])
	}
	id := l.next
	l.next++
	l.byKey[key][id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.byKey[key], id)
	}
}

// Notify calls the listeners of key and the catch-all listeners in
// registration order.
func (l *Listeners[E]) Notify(ctx context.Context, key string, event E) {
	l.mu.RLock()
	matched := make(map[int]AfterFunc[E])
	for id, fn := range l.byKey[""] {
		matched[id] = fn
	}
	if key != "" {
		for id, fn := range l.byKey[key] {
			matched[id] = fn
		}
	}
	l.mu.RUnlock()

	ids := make([]int, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		matched[id](ctx, event)
	}
}
