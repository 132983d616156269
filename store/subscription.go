package store

import (
	"sort"
	"sync/atomic"
)

// Subscription is a handle to a field observer.
type Subscription struct {
	id        uint64
	store     *Store
	cancelled atomic.Bool
}

// Cancel stops delivery. No value is delivered after Cancel returns, unless
// Cancel is called concurrently with a delivery already in progress.
func (sub *Subscription) Cancel() {
	if sub == nil || sub.cancelled.Swap(true) {
		return
	}
	sub.store.mu.Lock()
	delete(sub.store.subscribers, sub.id)
	sub.store.mu.Unlock()
}

type subscriber struct {
	subscription *Subscription
	deliver      func(State)
}

func (sub *subscriber) notify(state State) {
	if sub.subscription.cancelled.Load() {
		return
	}
	sub.deliver(state)
}

// Subscribe observes the field picked by selector, deduplicated with ==.
func Subscribe[T comparable](s *Store, selector func(State) T, fn func(T)) *Subscription {
	return SubscribeFunc(s, selector, func(a, b T) bool { return a == b }, fn)
}

// SubscribeFunc observes the field picked by selector, deduplicated with
// equal. fn first receives the current value, then every change, on the
// store's worker goroutine and in dispatch order.
func SubscribeFunc[T any](s *Store, selector func(State) T, equal func(a, b T) bool, fn func(T)) *Subscription {
	sub := &Subscription{store: s}

	var (
		last        T
		initialized bool
	)
	entry := &subscriber{
		subscription: sub,
		deliver: func(state State) {
			value := selector(state)
			if initialized && equal(last, value) {
				return
			}
			last = value
			initialized = true
			fn(value)
		},
	}

	s.mu.Lock()
	sub.id = s.nextSubID
	s.nextSubID++
	s.mu.Unlock()

	queued := s.enqueue(func() {
		s.mu.Lock()
		if sub.cancelled.Load() {
			s.mu.Unlock()
			return
		}
		s.subscribers[sub.id] = entry
		state := s.state
		s.mu.Unlock()

		entry.notify(state)
	})
	if !queued {
		sub.cancelled.Store(true)
	}
	return sub
}

// ContentSelector picks State.Content.
func ContentSelector(s State) Content { return s.Content }

// IsActiveSelector picks State.IsActive.
func IsActiveSelector(s State) bool { return s.IsActive }

func (s *Store) sortedSubscribersLocked() []*subscriber {
	ids := make([]uint64, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	subs := make([]*subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subscribers[id])
	}
	return subs
}
