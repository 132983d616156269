// Package tracks keeps video track enablement consistent with what the
// picture-in-picture window shows.
//
// While the window is active, StateAdapter keeps the displayed track
// enabled and the call's other tracks disabled. On deactivation every
// track goes back to the enablement it had before activation.
package tracks

import (
	"sync"
	"time"

	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/metrics"
	"github.com/opd-ai/pipcore/store"
	"github.com/sirupsen/logrus"
)

// DefaultRefreshInterval is one frame at 60 Hz.
const DefaultRefreshInterval = time.Second / 60

// StateAdapter is a two-state machine: idle while the window is hidden,
// observing while it is shown. In the observing state a ticker re-enables
// the displayed track whenever something else disabled it.
type StateAdapter struct {
	store    *store.Store
	interval time.Duration
	metrics  *metrics.Metrics

	mu        sync.Mutex
	observing bool
	content   store.Content
	// enabledBefore holds the tracks that were enabled at activation.
	enabledBefore map[string]call.VideoTrack
	// touched records, per track, the enablement seen the first time this
	// adapter changed it during the current activation.
	touched map[string]touchedTrack
	ticker  *time.Ticker
	stop    chan struct{}
	done    chan struct{}
	closed  bool

	subs []*store.Subscription
}

type touchedTrack struct {
	track      call.VideoTrack
	wasEnabled bool
}

// Option configures a StateAdapter.
type Option func(*StateAdapter)

// WithRefreshInterval sets the self-healing tick period, normally the
// display refresh period.
func WithRefreshInterval(interval time.Duration) Option {
	return func(a *StateAdapter) {
		if interval > 0 {
			a.interval = interval
		}
	}
}

// WithMetrics counts enablement changes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *StateAdapter) {
		a.metrics = m
	}
}

// NewStateAdapter starts observing s.
func NewStateAdapter(s *store.Store, opts ...Option) *StateAdapter {
	a := &StateAdapter{
		store:    s,
		interval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.subs = append(a.subs,
		store.Subscribe(s, store.IsActiveSelector, a.didUpdateActive),
		store.SubscribeFunc(s, store.ContentSelector, store.Content.Equal, a.didUpdateContent),
	)
	return a
}

// Observing reports whether the adapter is in the observing state.
func (a *StateAdapter) Observing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.observing
}

// Close cancels the store subscriptions, stops the tick and, when the
// window is still active, restores every track.
func (a *StateAdapter) Close() {
	for _, sub := range a.subs {
		sub.Cancel()
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	done := a.deactivateLocked()
	a.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (a *StateAdapter) didUpdateActive(active bool) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}

	var done chan struct{}
	if active {
		a.activateLocked()
	} else {
		done = a.deactivateLocked()
	}
	a.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (a *StateAdapter) activateLocked() {
	if a.observing {
		return
	}

	a.enabledBefore = make(map[string]call.VideoTrack)
	a.touched = make(map[string]touchedTrack)
	all := callTracks(a.store.State().Call)
	for _, track := range all {
		if track.IsEnabled() {
			a.enabledBefore[track.ID()] = track
		}
	}

	a.observing = true
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	a.ticker = time.NewTicker(a.interval)
	go a.tickLoop(a.ticker, a.stop, a.done)

	current := a.content.Track()
	if current != nil && !current.IsEnabled() {
		a.setEnabledLocked(current, true, "enable")
	}
	for _, track := range all {
		if current != nil && track.ID() == current.ID() {
			continue
		}
		if track.IsEnabled() {
			a.setEnabledLocked(track, false, "disable")
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":       "StateAdapter.activate",
		"enabled_tracks": len(a.enabledBefore),
		"content":        a.content.String(),
		"interval":       a.interval,
	}).Debug("Track state observation is now active")
}

// deactivateLocked returns a channel closed when the tick loop has exited,
// or nil when the adapter was idle.
func (a *StateAdapter) deactivateLocked() chan struct{} {
	if !a.observing {
		return nil
	}
	a.observing = false
	a.ticker.Stop()
	close(a.stop)

	restored := 0
	for id, entry := range a.touched {
		if _, ok := a.enabledBefore[id]; ok {
			continue
		}
		if entry.track.IsEnabled() != entry.wasEnabled {
			entry.track.SetEnabled(entry.wasEnabled)
			a.metrics.TrackToggled("restore")
			restored++
		}
	}
	for _, track := range a.enabledBefore {
		if !track.IsEnabled() {
			track.SetEnabled(true)
			a.metrics.TrackToggled("restore")
			restored++
		}
	}
	a.enabledBefore = nil
	a.touched = nil

	logrus.WithFields(logrus.Fields{
		"function": "StateAdapter.deactivate",
		"restored": restored,
	}).Debug("Track state observation is now inactive")

	return a.done
}

func (a *StateAdapter) didUpdateContent(content store.Content) {
	a.mu.Lock()
	defer a.mu.Unlock()

	previous := a.content
	a.content = content

	if a.closed || !a.observing {
		return
	}

	oldTrack := previous.Track()
	newTrack := content.Track()
	if call.TrackID(oldTrack) == call.TrackID(newTrack) {
		return
	}

	if newTrack != nil {
		a.setEnabledLocked(newTrack, true, "enable")
	}
	if oldTrack != nil {
		a.setEnabledLocked(oldTrack, false, "disable")
		logrus.WithFields(logrus.Fields{
			"function": "StateAdapter.didUpdateContent",
			"track_id": oldTrack.ID(),
			"content":  previous.String(),
		}).Debug("Disabled track of previous content")
	}
}

func (a *StateAdapter) tickLoop(ticker *time.Ticker, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.checkTracksState()
		}
	}
}

func (a *StateAdapter) checkTracksState() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.observing {
		return
	}

	track := a.content.Track()
	if track == nil || track.IsEnabled() {
		return
	}
	a.setEnabledLocked(track, true, "heal")

	logrus.WithFields(logrus.Fields{
		"function": "StateAdapter.checkTracksState",
		"track_id": track.ID(),
		"content":  a.content.String(),
	}).Debug("Re-enabled displayed track")
}

func (a *StateAdapter) setEnabledLocked(track call.VideoTrack, enabled bool, operation string) {
	id := track.ID()
	if _, ok := a.touched[id]; !ok {
		a.touched[id] = touchedTrack{track: track, wasEnabled: track.IsEnabled()}
	}
	if track.IsEnabled() == enabled {
		return
	}
	track.SetEnabled(enabled)
	a.metrics.TrackToggled(operation)
}

// callTracks lists the video tracks of c's participants and screen share.
func callTracks(c *call.Call) []call.VideoTrack {
	if c == nil {
		return nil
	}
	state := c.State()

	seen := make(map[string]bool)
	var tracks []call.VideoTrack
	add := func(track call.VideoTrack) {
		if track == nil || seen[track.ID()] {
			return
		}
		seen[track.ID()] = true
		tracks = append(tracks, track)
	}
	for _, p := range state.Participants {
		add(p.Track)
	}
	if state.LocalParticipant != nil {
		add(state.LocalParticipant.Track)
	}
	if state.ScreenSharingSession != nil {
		add(state.ScreenSharingSession.Track)
	}
	return tracks
}
