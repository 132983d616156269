package store

import (
	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/video"
)

// View is an opaque handle to a UI element owned by the embedding
// application.
type View interface {
	ViewID() string
}

// ViewFactory builds the views shown inside the floating window, such as
// participant avatars and the reconnecting placeholder.
type ViewFactory interface {
	MakeContentView(content Content) View
}

// SameView reports whether a and b refer to the same view.
func SameView(a, b View) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ViewID() == b.ViewID()
}

// State is the store's snapshot. Values returned by Store.State are never
// mutated afterwards.
type State struct {
	// IsActive reports whether the floating window is shown.
	IsActive bool

	// Call is the call the window belongs to. The store does not manage
	// its lifecycle.
	Call        *call.Call
	SourceView  View
	ViewFactory ViewFactory

	Content Content

	PreferredContentSize video.Size
	ContentSize          video.Size

	CanStartPictureInPictureAutomaticallyFromInline bool
}

// DefaultPreferredContentSize is the window size hint used before any video
// size is known.
var DefaultPreferredContentSize = video.Size{Width: 640, Height: 480}

// InitialState returns the state of a fresh store.
func InitialState() State {
	return State{
		Content:              Inactive(),
		PreferredContentSize: DefaultPreferredContentSize,
		CanStartPictureInPictureAutomaticallyFromInline: true,
	}
}
