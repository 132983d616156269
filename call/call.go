// Package call models the call/session layer consumed by the
// picture-in-picture core: a call with an observable participant list,
// connection status and screen-share session.
//
// The core reads call state and toggles track enablement; everything else
// about a call (signaling, media transport, membership) belongs to the
// embedding application.
package call

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// State is an immutable snapshot of a call's observable state.
type State struct {
	SessionID string

	// Participants lists every member of the call, local participant included.
	Participants     []Participant
	LocalParticipant *Participant

	ReconnectionStatus   ReconnectionStatus
	ScreenSharingSession *ScreenSharingSession
}

// IsCurrentUserScreenSharing reports whether the local participant owns the
// current screen-share session.
func (s State) IsCurrentUserScreenSharing() bool {
	if s.ScreenSharingSession == nil || s.LocalParticipant == nil {
		return false
	}
	return s.ScreenSharingSession.Participant.SessionID == s.LocalParticipant.SessionID
}

// RemoteParticipants returns the participants other than the local one, in
// call order.
func (s State) RemoteParticipants() []Participant {
	others := make([]Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		if s.LocalParticipant != nil && p.SessionID == s.LocalParticipant.SessionID {
			continue
		}
		others = append(others, p)
	}
	return others
}

// Call is an observable call. All methods are safe for concurrent use.
//
// Subscribers are notified synchronously, outside the state lock, in the
// order updates were applied.
type Call struct {
	callType string
	callID   string

	mu          sync.RWMutex
	state       State
	subscribers map[uint64]func(State)
	nextSubID   uint64

	// notifyMu keeps notification order equal to update order.
	notifyMu sync.Mutex
}

// NewCall creates a call of the given type and ID with an empty state.
func NewCall(callType, callID string) *Call {
	logrus.WithFields(logrus.Fields{
		"function":  "NewCall",
		"call_type": callType,
		"call_id":   callID,
	}).Debug("Creating call")

	return &Call{
		callType:    callType,
		callID:      callID,
		subscribers: make(map[uint64]func(State)),
	}
}

// CID returns the call's unique "type:id" identifier.
func (c *Call) CID() string {
	return c.callType + ":" + c.callID
}

// State returns the current snapshot.
func (c *Call) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Update applies fn to the call state and notifies subscribers.
func (c *Call) Update(fn func(*State)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	fn(&c.state)
	snapshot := c.snapshotLocked()
	subscribers := make([]func(State), 0, len(c.subscribers))
	for _, id := range c.sortedSubscriberIDs() {
		subscribers = append(subscribers, c.subscribers[id])
	}
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
}

// SetParticipants replaces the participant list.
func (c *Call) SetParticipants(participants []Participant) {
	c.Update(func(s *State) {
		s.Participants = append([]Participant(nil), participants...)
	})
}

// SetLocalParticipant sets the local participant. It should also be part of
// the participant list.
func (c *Call) SetLocalParticipant(p *Participant) {
	c.Update(func(s *State) {
		if p == nil {
			s.LocalParticipant = nil
			return
		}
		local := *p
		s.LocalParticipant = &local
	})
}

// SetReconnectionStatus records a connection status change.
func (c *Call) SetReconnectionStatus(status ReconnectionStatus) {
	c.Update(func(s *State) {
		s.ReconnectionStatus = status
	})
}

// SetScreenSharingSession starts, updates or (with nil) ends a screen share.
func (c *Call) SetScreenSharingSession(session *ScreenSharingSession) {
	c.Update(func(s *State) {
		s.ScreenSharingSession = session
	})
}

// Subscribe registers fn for state changes and returns a function that
// unregisters it. fn is not called with the current state.
func (c *Call) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// SubscriberCount returns the number of registered subscribers.
func (c *Call) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers)
}

func (c *Call) snapshotLocked() State {
	s := c.state
	s.Participants = append([]Participant(nil), c.state.Participants...)
	if c.state.LocalParticipant != nil {
		local := *c.state.LocalParticipant
		s.LocalParticipant = &local
	}
	if c.state.ScreenSharingSession != nil {
		session := *c.state.ScreenSharingSession
		s.ScreenSharingSession = &session
	}
	return s
}

func (c *Call) sortedSubscriberIDs() []uint64 {
	ids := make([]uint64, 0, len(c.subscribers))
	for id := range c.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
