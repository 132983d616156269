// Package content decides what the picture-in-picture window shows.
//
// A Provider follows the store's current call. For every change of the
// call's state or of network availability it runs Resolve and dispatches
// the result into the store.
package content

import (
	"sync"

	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/network"
	"github.com/opd-ai/pipcore/store"
	"github.com/sirupsen/logrus"
)

// Provider keeps store.State.Content in sync with the current call.
type Provider struct {
	store   *store.Store
	network network.Observer

	mu sync.Mutex
	// generation identifies the current call subscription set. Callbacks
	// carrying an older generation are ignored.
	generation uint64
	cancels    []func()
	callSub    *store.Subscription
	closed     bool
}

// NewProvider starts following s. A nil observer means the network is
// always considered available.
func NewProvider(s *store.Store, observer network.Observer) *Provider {
	p := &Provider{
		store:   s,
		network: observer,
	}
	p.callSub = store.SubscribeFunc(s,
		func(st store.State) *call.Call { return st.Call },
		sameCall,
		p.didUpdateCall,
	)
	return p
}

// Close cancels every subscription. No action is dispatched afterwards.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.generation++
	p.cancelLocked()
	p.callSub.Cancel()

	logrus.WithFields(logrus.Fields{
		"function": "Provider.Close",
	}).Debug("Content provider closed")
}

func (p *Provider) didUpdateCall(c *call.Call) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.cancelLocked()
	p.generation++
	generation := p.generation

	if c == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Provider.didUpdateCall",
		}).Debug("Call cleared, content is inactive")
		p.store.Dispatch(store.SetContent{Content: store.Inactive()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "Provider.didUpdateCall",
		"call_cid": c.CID(),
	}).Debug("Following new call")

	p.cancels = append(p.cancels, c.Subscribe(func(state call.State) {
		p.update(generation, c, state)
	}))
	if p.network != nil {
		p.cancels = append(p.cancels, p.network.Subscribe(func(bool) {
			p.update(generation, c, c.State())
		}))
	}

	p.resolveLocked(c, c.State())
}

func (p *Provider) update(generation uint64, c *call.Call, state call.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || generation != p.generation {
		return
	}
	p.resolveLocked(c, state)
}

func (p *Provider) resolveLocked(c *call.Call, state call.State) {
	available := p.network == nil || p.network.Available()
	resolution := Resolve(c, state, available)

	if resolution.PreferredContentSize != nil {
		p.store.Dispatch(store.SetPreferredContentSize(*resolution.PreferredContentSize))
	}
	p.store.Dispatch(store.SetContent{Content: resolution.Content})
}

func (p *Provider) cancelLocked() {
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
}

func sameCall(a, b *call.Call) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.CID() == b.CID()
}
