package pipcore

import (
	"sync"
	"time"

	"github.com/opd-ai/pipcore/store"
	"github.com/sirupsen/logrus"
)

// Host is the platform-owned floating window.
type Host interface {
	// Configure (re)creates the window anchored at sourceView.
	Configure(sourceView store.View, canStartAutomatically bool)
	// Release tears the window down after the source view went away.
	Release()
	// Stop closes the window if it is shown.
	Stop()
}

// ApplicationState is the embedding application's lifecycle state.
type ApplicationState int

const (
	// ApplicationUnknown is the state before the first report.
	ApplicationUnknown ApplicationState = iota
	// ApplicationForeground means the application UI is visible.
	ApplicationForeground
	// ApplicationBackground means the application UI is hidden.
	ApplicationBackground
)

// String returns the state name.
func (s ApplicationState) String() string {
	switch s {
	case ApplicationForeground:
		return "foreground"
	case ApplicationBackground:
		return "background"
	default:
		return "unknown"
	}
}

// hostConfig is what the host is configured with.
type hostConfig struct {
	view      store.View
	autoStart bool
}

func sameHostConfig(a, b hostConfig) bool {
	return store.SameView(a.view, b.view) && a.autoStart == b.autoStart
}

// Controller connects the store to the floating-window host.
//
// It configures the host whenever the source view (or the auto-start flag)
// changes, releases it when the source view goes away, forwards the host's
// activity reports into the store and stops the window once the
// application has been in the foreground for stopDelay.
type Controller struct {
	store     *store.Store
	host      Host
	stopDelay time.Duration

	mu         sync.Mutex
	configured bool
	appState   ApplicationState
	stopTimer  *time.Timer
	closed     bool

	sub *store.Subscription
}

// NewController starts driving host from s.
func NewController(s *store.Store, host Host, stopDelay time.Duration) *Controller {
	c := &Controller{
		store:     s,
		host:      host,
		stopDelay: stopDelay,
	}
	c.sub = store.SubscribeFunc(s,
		func(st store.State) hostConfig {
			return hostConfig{view: st.SourceView, autoStart: st.CanStartPictureInPictureAutomaticallyFromInline}
		},
		sameHostConfig,
		c.didUpdateHostConfig,
	)
	return c
}

// HostDidChangeActive is called by the host when the window is shown or
// hidden.
func (c *Controller) HostDidChangeActive(active bool) {
	logrus.WithFields(logrus.Fields{
		"function":  "Controller.HostDidChangeActive",
		"is_active": active,
	}).Debug("Host reported window activity")

	c.store.Dispatch(store.SetActive(active))
}

// ApplicationDidChangeState reports an application lifecycle change.
// Entering the foreground schedules a window stop after stopDelay; leaving
// it again before then cancels the stop.
func (c *Controller) ApplicationDidChangeState(state ApplicationState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.appState = state

	if c.stopTimer != nil {
		c.stopTimer.Stop()
		c.stopTimer = nil
	}
	if state != ApplicationForeground {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(c.stopDelay, func() {
		c.mu.Lock()
		fire := !c.closed && c.stopTimer == timer && c.appState == ApplicationForeground
		c.stopTimer = nil
		c.mu.Unlock()

		if !fire {
			return
		}
		logrus.WithFields(logrus.Fields{
			"function": "Controller.ApplicationDidChangeState",
		}).Debug("Application in foreground, stopping floating window")
		c.host.Stop()
	})
	c.stopTimer = timer
}

// Close stops following the store and releases the host.
func (c *Controller) Close() {
	c.sub.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.stopTimer != nil {
		c.stopTimer.Stop()
		c.stopTimer = nil
	}
	if c.configured {
		c.configured = false
		c.host.Release()
	}
}

func (c *Controller) didUpdateHostConfig(cfg hostConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if cfg.view == nil {
		if c.configured {
			c.configured = false
			c.host.Release()
			logrus.WithFields(logrus.Fields{
				"function": "Controller.didUpdateHostConfig",
			}).Debug("Controller has been released")
		}
		return
	}

	c.host.Configure(cfg.view, cfg.autoStart)
	c.configured = true

	logrus.WithFields(logrus.Fields{
		"function":    "Controller.didUpdateHostConfig",
		"source_view": cfg.view.ViewID(),
		"auto_start":  cfg.autoStart,
	}).Debug("Controller has been configured")
}
