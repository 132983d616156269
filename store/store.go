// Package store holds the picture-in-picture state and serializes every
// mutation of it.
//
// Actions passed to Dispatch are queued and applied, in dispatch order, by a
// single worker goroutine. Subscribers observe one field of the state at a
// time: they get the current value first, then each change of that field,
// deduplicated by equality, on the worker goroutine.
package store

import (
	"sync"

	"github.com/opd-ai/pipcore/metrics"
	"github.com/sirupsen/logrus"
)

// Store is the single source of truth for the picture-in-picture session.
type Store struct {
	mu     sync.Mutex
	state  State
	queue  []func()
	signal chan struct{}
	closed bool

	subscribers map[uint64]*subscriber
	nextSubID   uint64
	closeHooks  []func()

	stop    chan struct{}
	done    chan struct{}
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithInitialState replaces the default initial state.
func WithInitialState(state State) Option {
	return func(s *Store) {
		s.state = state
	}
}

// WithMetrics counts applied actions and content transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a store and starts its worker.
func New(opts ...Option) *Store {
	s := &Store{
		state:       InitialState(),
		signal:      make(chan struct{}, 1),
		subscribers: make(map[uint64]*subscriber),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// State returns the latest snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch queues action. It never blocks; after Close it does nothing.
func (s *Store) Dispatch(action Action) {
	if action == nil {
		return
	}
	s.enqueue(func() { s.apply(action) })
}

// OnClose registers fn to run when the store is closed. Hooks run in
// reverse registration order.
func (s *Store) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closeHooks = append(s.closeHooks, fn)
}

// Close stops the store: further actions are ignored, close hooks run,
// every subscription is cancelled and the worker exits. Close must not be
// called from a subscriber.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	hooks := s.closeHooks
	s.closeHooks = nil
	s.queue = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}

	s.mu.Lock()
	for id, sub := range s.subscribers {
		sub.subscription.cancelled.Store(true)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()

	close(s.stop)
	<-s.done

	logrus.WithFields(logrus.Fields{
		"function": "Store.Close",
	}).Debug("Picture-in-picture store closed")
}

func (s *Store) enqueue(op func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, op)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
	return true
}

func (s *Store) run() {
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-s.signal:
		}

		for {
			s.mu.Lock()
			if s.closed || len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			op := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()

			op()
		}
	}
}

func (s *Store) apply(action Action) {
	s.mu.Lock()
	previous := s.state
	s.state = action.apply(previous)
	current := s.state
	subscribers := s.sortedSubscribersLocked()
	s.mu.Unlock()

	s.metrics.ActionDispatched(action.name())
	if !previous.Content.Equal(current.Content) {
		s.metrics.ContentChanged(current.Content.Kind().String())
		logrus.WithFields(logrus.Fields{
			"function": "Store.apply",
			"from":     previous.Content.String(),
			"to":       current.Content.String(),
		}).Debug("Picture-in-picture content changed")
	}
	if previous.IsActive != current.IsActive {
		s.metrics.SetActive(current.IsActive)
		logrus.WithFields(logrus.Fields{
			"function":  "Store.apply",
			"is_active": current.IsActive,
		}).Info("Picture-in-picture activity changed")
	}

	for _, sub := range subscribers {
		sub.notify(current)
	}
}
