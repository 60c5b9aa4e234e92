package realtime

import "sync"

// DefaultQueueSize is the per-subscription buffer used when none is given.
const DefaultQueueSize = 64

// Subscription is one subscriber's ordered delivery queue. Events arrive on C
// in publish order; C is closed when the subscription is removed.
type Subscription[T any] struct {
	Key string
	C   <-chan T

	ch     chan T
	closed bool
}

// Broadcaster publishes events to keyed subscribers. At most one subscription
// exists per key.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[string]*Subscription[T]
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subs: make(map[string]*Subscription[T]),
	}
}

// Subscribe registers a subscriber under key with room for size queued events,
// pre-loaded with backlog. It returns false if key is already subscribed.
func (b *Broadcaster[T]) Subscribe(key string, size int, backlog ...T) (*Subscription[T], bool) {
	if size <= 0 {
		size = DefaultQueueSize
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[key]; ok {
		return nil, false
	}
	ch := make(chan T, size+len(backlog))
	for _, event := range backlog {
		ch <- event
	}
	sub := &Subscription[T]{Key: key, C: ch, ch: ch}
	b.subs[key] = sub
	return sub, true
}

// Unsubscribe removes sub and closes its channel. It is a no-op if sub is no
// longer the current subscription for its key.
func (b *Broadcaster[T]) Unsubscribe(sub *Subscription[T]) bool {
	if sub == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[sub.Key] != sub {
		return false
	}
	b.removeLocked(sub)
	return true
}

// Lookup returns the current subscription for key.
func (b *Broadcaster[T]) Lookup(key string) (*Subscription[T], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[key]
	return sub, ok
}

// Publish delivers an event to all subscribers without blocking. Subscribers
// whose queue is full are removed and closed; their keys are returned.
func (b *Broadcaster[T]) Publish(event T) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var dropped []string
	for key, sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			b.removeLocked(sub)
			dropped = append(dropped, key)
		}
	}
	return dropped
}

// Send delivers an event to a single subscriber. A full queue removes the
// subscriber and reports false.
func (b *Broadcaster[T]) Send(key string, event T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[key]
	if !ok {
		return false
	}
	select {
	case sub.ch <- event:
		return true
	default:
		b.removeLocked(sub)
		return false
	}
}

// Close removes and closes every subscription, returning their keys.
func (b *Broadcaster[T]) Close() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.subs))
	for key, sub := range b.subs {
		b.removeLocked(sub)
		keys = append(keys, key)
	}
	return keys
}

// Len reports the number of live subscriptions.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster[T]) removeLocked(sub *Subscription[T]) {
	delete(b.subs, sub.Key)
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}
