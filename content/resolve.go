package content

import (
	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/store"
	"github.com/opd-ai/pipcore/video"
)

// Resolution is the outcome of the content priority policy.
type Resolution struct {
	Content store.Content

	// PreferredContentSize is set when a participant with live video was
	// selected and their track size is known. It must reach the store
	// before Content.
	PreferredContentSize *video.Size
}

// Resolve picks the content for c given its state and whether the local
// network is usable. The first matching rule wins:
//
//  1. no call: inactive
//  2. a screen share by someone else, with a track: that screen share
//  3. the call is reconnecting: reconnecting
//  4. the network is unavailable: reconnecting
//  5. the dominant speaker among the others (track only when they have video)
//  6. the first other participant with video and a track
//  7. the first other participant, without track
//  8. the local participant with their own track
//  9. inactive
func Resolve(c *call.Call, state call.State, networkAvailable bool) Resolution {
	if c == nil {
		return Resolution{Content: store.Inactive()}
	}

	if session := state.ScreenSharingSession; session != nil &&
		!state.IsCurrentUserScreenSharing() && session.Track != nil {
		return Resolution{Content: store.ScreenSharingContent(c, session.Participant, session.Track)}
	}

	if state.ReconnectionStatus == call.StatusReconnecting || !networkAvailable {
		return Resolution{Content: store.Reconnecting()}
	}

	others := state.RemoteParticipants()

	for _, p := range others {
		if !p.IsDominantSpeaker {
			continue
		}
		var track call.VideoTrack
		if p.HasVideo {
			track = p.Track
		}
		return Resolution{
			Content:              store.ParticipantContent(c, p, track),
			PreferredContentSize: preferredSize(p),
		}
	}

	for _, p := range others {
		if p.HasVideo && p.Track != nil {
			return Resolution{
				Content:              store.ParticipantContent(c, p, p.Track),
				PreferredContentSize: preferredSize(p),
			}
		}
	}

	if len(others) > 0 {
		return Resolution{Content: store.ParticipantContent(c, others[0], nil)}
	}

	if local := state.LocalParticipant; local != nil {
		return Resolution{
			Content:              store.ParticipantContent(c, *local, local.Track),
			PreferredContentSize: preferredSize(*local),
		}
	}

	return Resolution{Content: store.Inactive()}
}

func preferredSize(p call.Participant) *video.Size {
	if !p.HasVideo || p.TrackSize.IsZero() {
		return nil
	}
	size := p.TrackSize
	return &size
}
