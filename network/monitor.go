// Package network reports whether the local network is usable.
//
// A Monitor holds the current availability and notifies observers on every
// change. Availability is either pushed by the embedding application with
// SetAvailable or measured periodically by a Prober.
package network

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Observer is the read side of a Monitor.
type Observer interface {
	Available() bool
	// Subscribe registers fn for availability changes. fn is not called
	// with the current value.
	Subscribe(fn func(available bool)) (cancel func())
}

// Prober checks reachability once.
type Prober interface {
	Probe(ctx context.Context) error
}

// DefaultProbeInterval is how often Start probes when no interval is given.
const DefaultProbeInterval = 5 * time.Second

// Monitor tracks local network availability.
type Monitor struct {
	mu          sync.RWMutex
	available   bool
	subscribers map[uint64]func(bool)
	nextSubID   uint64

	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewMonitor creates a monitor with the given initial availability.
func NewMonitor(available bool) *Monitor {
	return &Monitor{
		available:   available,
		subscribers: make(map[uint64]func(bool)),
	}
}

// Available reports the last known availability.
func (m *Monitor) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}

// SetAvailable records availability and notifies subscribers when it changed.
func (m *Monitor) SetAvailable(available bool) {
	m.mu.Lock()
	if m.available == available {
		m.mu.Unlock()
		return
	}
	m.available = available
	subscribers := m.subscribersLocked()
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":  "Monitor.SetAvailable",
		"available": available,
	}).Info("Network availability changed")

	for _, fn := range subscribers {
		fn(available)
	}
}

// Subscribe implements Observer.
func (m *Monitor) Subscribe(fn func(available bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
		})
	}
}

// Start probes with prober every interval until Stop or ctx is done. A
// failed probe marks the network unavailable.
func (m *Monitor) Start(ctx context.Context, prober Prober, interval time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}
	if interval <= 0 {
		interval = DefaultProbeInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.probeLoop(ctx, prober, interval, m.done)
	return nil
}

// Stop halts probing and waits for the probe loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	done := m.done
	m.mu.Unlock()

	<-done
}

func (m *Monitor) probeLoop(ctx context.Context, prober Prober, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithFields(logrus.Fields{
		"function": "Monitor.probeLoop",
		"interval": interval,
	}).Debug("Starting network probe loop")

	m.probe(ctx, prober, interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx, prober, interval)
		}
	}
}

func (m *Monitor) probe(ctx context.Context, prober Prober, timeout time.Duration) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := prober.Probe(probeCtx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Monitor.probe",
			"error":    err.Error(),
		}).Warn("Network probe failed")
	}
	m.SetAvailable(err == nil)
}

func (m *Monitor) subscribersLocked() []func(bool) {
	ids := make([]uint64, 0, len(m.subscribers))
	for id := range m.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subscribers[id])
	}
	return fns
}
