package pubsub

import "sync"

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Hub fans values out to subscribers grouped by key. It is process-local.
type Hub[K comparable, T any] struct {
	mu     sync.RWMutex
	subs   map[K]map[chan T]struct{}
	buffer int
}

func NewHub[K comparable, T any]() *Hub[K, T] {
	return &Hub[K, T]{subs: make(map[K]map[chan T]struct{}), buffer: DefaultBuffer}
}

// Subscribe registers a subscriber for key and returns its channel plus an
// unsubscribe func. Unsubscribe closes the channel and may be called more than once.
func (h *Hub[K, T]) Subscribe(key K) (<-chan T, func()) {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	set, ok := h.subs[key]
	if !ok {
		set = make(map[chan T]struct{})
		h.subs[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[key], ch)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Publish sends v to every subscriber of key and returns how many received it.
// Slow subscribers are skipped so producers never block.
func (h *Hub[K, T]) Publish(key K, v T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for ch := range h.subs[key] {
		select {
		case ch <- v:
			delivered++
		default:
			// drop if subscriber is slow
		}
	}
	return delivered
}

// Subscribers returns the number of live subscribers for key.
func (h *Hub[K, T]) Subscribers(key K) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}
