package store

import (
	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/video"
)

// Action is a state mutation. The set of actions is closed; every action
// is total and applies to any state.
type Action interface {
	apply(State) State
	name() string
}

// SetActive records whether the floating window is shown.
type SetActive bool

// SetCall sets the current call. A nil Call clears it.
type SetCall struct {
	Call *call.Call
}

// SetSourceView sets the inline view the floating window animates from.
type SetSourceView struct {
	View View
}

// SetViewFactory sets the factory used for avatar and placeholder views.
type SetViewFactory struct {
	Factory ViewFactory
}

// SetContent sets what the window shows.
type SetContent struct {
	Content Content
}

// SetPreferredContentSize sets the window size hint.
type SetPreferredContentSize video.Size

// SetContentSize records the window's actual size.
type SetContentSize video.Size

// SetCanStartAutomatically sets whether the window may open by itself when
// the application moves to the background.
type SetCanStartAutomatically bool

func (a SetActive) apply(s State) State {
	s.IsActive = bool(a)
	return s
}

func (a SetActive) name() string { return "setActive" }

func (a SetCall) apply(s State) State {
	s.Call = a.Call
	return s
}

func (a SetCall) name() string { return "setCall" }

func (a SetSourceView) apply(s State) State {
	s.SourceView = a.View
	return s
}

func (a SetSourceView) name() string { return "setSourceView" }

func (a SetViewFactory) apply(s State) State {
	s.ViewFactory = a.Factory
	return s
}

func (a SetViewFactory) name() string { return "setViewFactory" }

func (a SetContent) apply(s State) State {
	s.Content = a.Content
	return s
}

func (a SetContent) name() string { return "setContent" }

func (a SetPreferredContentSize) apply(s State) State {
	s.PreferredContentSize = video.Size(a)
	return s
}

func (a SetPreferredContentSize) name() string { return "setPreferredContentSize" }

func (a SetContentSize) apply(s State) State {
	s.ContentSize = video.Size(a)
	return s
}

func (a SetContentSize) name() string { return "setContentSize" }

func (a SetCanStartAutomatically) apply(s State) State {
	s.CanStartPictureInPictureAutomaticallyFromInline = bool(a)
	return s
}

func (a SetCanStartAutomatically) name() string { return "setCanStartAutomatically" }
