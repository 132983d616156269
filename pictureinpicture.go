package pipcore

import (
	"context"
	"fmt"

	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/content"
	"github.com/opd-ai/pipcore/store"
	"github.com/opd-ai/pipcore/tracks"
	"github.com/opd-ai/pipcore/video"
	"github.com/sirupsen/logrus"
)

// PictureInPicture is one picture-in-picture session.
type PictureInPicture struct {
	store      *store.Store
	provider   *content.Provider
	tracks     *tracks.StateAdapter
	controller *Controller
	renderer   *video.Renderer
}

// New creates the store and its dependent components. They live until Close.
func New(options *Options) (*PictureInPicture, error) {
	if options == nil {
		options = NewOptions()
	}
	cfg := options.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("picture-in-picture options: %w", err)
	}

	initial := store.InitialState()
	initial.CanStartPictureInPictureAutomaticallyFromInline = cfg.PictureInPicture.CanStartPictureInPictureAutomaticallyFromInline
	if size := cfg.PictureInPicture.PreferredContentSize; size.Width > 0 && size.Height > 0 {
		initial.PreferredContentSize = video.Size{Width: size.Width, Height: size.Height}
	}

	s := store.New(store.WithInitialState(initial), store.WithMetrics(options.Metrics))

	p := &PictureInPicture{
		store:    s,
		provider: content.NewProvider(s, options.Network),
		tracks: tracks.NewStateAdapter(s,
			tracks.WithRefreshInterval(cfg.Screen.RefreshInterval()),
			tracks.WithMetrics(options.Metrics),
		),
		renderer: video.NewRenderer(options.Sink,
			video.WithThresholds(cfg.Frames.ResizeThreshold, cfg.Frames.SkipThreshold),
			video.WithMetrics(options.Metrics),
		),
	}
	s.OnClose(p.provider.Close)
	s.OnClose(p.tracks.Close)

	if options.Host != nil {
		p.controller = NewController(s, options.Host, cfg.PictureInPicture.ForegroundStopDelay)
		s.OnClose(p.controller.Close)
	}

	p.followStore()
	s.OnClose(p.renderer.Stop)

	logrus.WithFields(logrus.Fields{
		"function":         "New",
		"refresh_interval": cfg.Screen.RefreshInterval(),
		"host":             options.Host != nil,
	}).Info("Picture-in-picture session created")

	return p, nil
}

// followStore keeps the renderer in step with the store.
func (p *PictureInPicture) followStore() {
	store.Subscribe(p.store, store.IsActiveSelector, func(active bool) {
		if active {
			p.renderer.Start(context.Background())
		} else {
			p.renderer.Stop()
		}
	})
	store.SubscribeFunc(p.store, store.ContentSelector, store.Content.Equal, func(c store.Content) {
		p.renderer.SetTrack(call.TrackID(c.Track()))
	})
	store.Subscribe(p.store, func(st store.State) video.Size { return st.ContentSize }, p.renderer.SetContentSize)
}

// Store exposes the underlying store, e.g. for rendering layers that
// subscribe to content changes.
func (p *PictureInPicture) Store() *store.Store {
	return p.store
}

// State returns the current state snapshot.
func (p *PictureInPicture) State() store.State {
	return p.store.State()
}

// SetCall sets the call shown in the window. nil clears it.
func (p *PictureInPicture) SetCall(c *call.Call) {
	p.store.Dispatch(store.SetCall{Call: c})
}

// SetSourceView sets the inline view the window is anchored to. nil
// releases the host.
func (p *PictureInPicture) SetSourceView(v store.View) {
	p.store.Dispatch(store.SetSourceView{View: v})
}

// SetViewFactory sets the factory for avatar and placeholder views.
func (p *PictureInPicture) SetViewFactory(f store.ViewFactory) {
	p.store.Dispatch(store.SetViewFactory{Factory: f})
}

// SetContentSize records the window's actual size.
func (p *PictureInPicture) SetContentSize(size video.Size) {
	p.store.Dispatch(store.SetContentSize(size))
}

// SetCanStartAutomatically changes the auto-start policy.
func (p *PictureInPicture) SetCanStartAutomatically(enabled bool) {
	p.store.Dispatch(store.SetCanStartAutomatically(enabled))
}

// HostDidChangeActive records that the host showed or hid the window.
func (p *PictureInPicture) HostDidChangeActive(active bool) {
	if p.controller != nil {
		p.controller.HostDidChangeActive(active)
		return
	}
	p.store.Dispatch(store.SetActive(active))
}

// ApplicationDidChangeState reports an application lifecycle change to the
// controller.
func (p *PictureInPicture) ApplicationDidChangeState(state ApplicationState) {
	if p.controller != nil {
		p.controller.ApplicationDidChangeState(state)
	}
}

// RenderFrame feeds a decoded frame of trackID. Frames of tracks other
// than the shown one, and all frames while the window is hidden, are
// ignored.
func (p *PictureInPicture) RenderFrame(trackID string, buf video.Buffer) {
	p.renderer.RenderTrackFrame(trackID, buf)
}

// ContentView asks the view factory for a view of the current content. It
// returns nil when no factory is set.
func (p *PictureInPicture) ContentView() store.View {
	state := p.store.State()
	if state.ViewFactory == nil {
		return nil
	}
	return state.ViewFactory.MakeContentView(state.Content)
}

// Close tears the session down. Tracks are restored, every subscription is
// cancelled and later call changes have no effect.
func (p *PictureInPicture) Close() {
	p.store.Close()
}
