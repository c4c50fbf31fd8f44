// Package bus carries the "bookings.changed" signal: a process-wide,
// payload-less pulse published after any booking mutation so that every
// independent view re-fetches its own data instead of sharing a cache.
package bus

import "sync"

type Listener func()

type Bus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func New() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers fn and returns an unsubscribe func. Listeners
// registered after a publish do not receive it.
func (b *Bus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Publish synchronously invokes every currently-subscribed listener once.
// There is no queuing and no delivery guarantee beyond that.
func (b *Bus) Publish() {
	b.mu.RLock()
	snapshot := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		snapshot = append(snapshot, fn)
	}
	b.mu.RUnlock()

	for _, fn := range snapshot {
		fn()
	}
}

// Len reports the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
