package call

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// VideoTrack is a live video stream handle owned by the call layer.
//
// Consumers outside the call layer only ever toggle the enabled flag; they
// never create or close tracks.
type VideoTrack interface {
	ID() string
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// Track is an in-memory VideoTrack used for locally produced streams and
// tests.
type Track struct {
	id      string
	enabled atomic.Bool
}

// NewTrack creates a track with a random ID.
func NewTrack(enabled bool) *Track {
	return NewTrackWithID(uuid.NewString(), enabled)
}

// NewTrackWithID creates a track with the given ID.
func NewTrackWithID(id string, enabled bool) *Track {
	t := &Track{id: id}
	t.enabled.Store(enabled)
	return t
}

// ID returns the track identifier.
func (t *Track) ID() string {
	return t.id
}

// IsEnabled reports whether the track is currently decoded/forwarded.
func (t *Track) IsEnabled() bool {
	return t.enabled.Load()
}

// SetEnabled toggles the track.
func (t *Track) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// TrackID returns the ID of t, or "" when t is nil.
func TrackID(t VideoTrack) string {
	if t == nil {
		return ""
	}
	return t.ID()
}
