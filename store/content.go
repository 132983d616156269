package store

import (
	"fmt"

	"github.com/opd-ai/pipcore/call"
)

// Kind identifies the variant of a Content value.
type Kind int

const (
	// ContentInactive shows nothing.
	ContentInactive Kind = iota
	// ContentParticipant shows a participant's video, or their avatar when
	// the track is nil.
	ContentParticipant
	// ContentScreenSharing shows a screen-share stream.
	ContentScreenSharing
	// ContentReconnecting shows a placeholder while the call is unreachable.
	ContentReconnecting
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case ContentInactive:
		return "inactive"
	case ContentParticipant:
		return "participant"
	case ContentScreenSharing:
		return "screenSharing"
	case ContentReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Content describes what the floating window currently shows. It is a
// closed tagged union; build values with Inactive, Reconnecting,
// ParticipantContent or ScreenSharingContent.
//
// The zero value is Inactive.
type Content struct {
	kind        Kind
	call        *call.Call
	participant call.Participant
	track       call.VideoTrack
}

// Inactive returns the empty content.
func Inactive() Content {
	return Content{kind: ContentInactive}
}

// Reconnecting returns the placeholder shown while the call is unreachable.
func Reconnecting() Content {
	return Content{kind: ContentReconnecting}
}

// ParticipantContent shows p. A nil track renders the participant's avatar.
func ParticipantContent(c *call.Call, p call.Participant, track call.VideoTrack) Content {
	return Content{kind: ContentParticipant, call: c, participant: p, track: track}
}

// ScreenSharingContent shows the screen share of p.
func ScreenSharingContent(c *call.Call, p call.Participant, track call.VideoTrack) Content {
	return Content{kind: ContentScreenSharing, call: c, participant: p, track: track}
}

// Kind returns the variant.
func (c Content) Kind() Kind { return c.kind }

// Call returns the call of participant and screen-share content.
func (c Content) Call() *call.Call { return c.call }

// Participant returns the displayed participant. It reports false for
// inactive and reconnecting content.
func (c Content) Participant() (call.Participant, bool) {
	if c.kind != ContentParticipant && c.kind != ContentScreenSharing {
		return call.Participant{}, false
	}
	return c.participant, true
}

// Track returns the carried video track, or nil.
func (c Content) Track() call.VideoTrack {
	return c.track
}

// Equal reports whether c and other show the same thing. Only identities
// are compared: the call CID, the participant session ID and the track ID.
func (c Content) Equal(other Content) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case ContentParticipant, ContentScreenSharing:
		return callID(c.call) == callID(other.call) &&
			c.participant.SessionID == other.participant.SessionID &&
			call.TrackID(c.track) == call.TrackID(other.track)
	default:
		return true
	}
}

// String formats the content for logs.
func (c Content) String() string {
	switch c.kind {
	case ContentParticipant, ContentScreenSharing:
		return fmt.Sprintf("%s(call=%s, participant=%s, track=%s)",
			c.kind, callID(c.call), c.participant.SessionID, call.TrackID(c.track))
	default:
		return c.kind.String()
	}
}

func callID(c *call.Call) string {
	if c == nil {
		return ""
	}
	return c.CID()
}
