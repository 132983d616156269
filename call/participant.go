package call

import "github.com/opd-ai/pipcore/video"

// Participant is a snapshot of one call member as published by the call
// layer. Participants are identified by SessionID.
type Participant struct {
	SessionID string
	UserID    string
	Name      string

	// HasVideo reports whether the participant is publishing video.
	HasVideo bool
	Track    VideoTrack
	// TrackSize is the last known size of Track's frames.
	TrackSize video.Size

	IsDominantSpeaker bool
	IsScreenSharing   bool
}

// ScreenSharingSession describes an ongoing screen share.
type ScreenSharingSession struct {
	Participant Participant
	Track       VideoTrack
}

// ReconnectionStatus mirrors the signaling connection state of a call.
type ReconnectionStatus int

const (
	// StatusConnected means media and signaling are flowing.
	StatusConnected ReconnectionStatus = iota
	// StatusReconnecting means the call lost its connection and is retrying.
	StatusReconnecting
	// StatusMigrating means the call is moving to another edge server.
	StatusMigrating
	// StatusDisconnected means the call gave up reconnecting.
	StatusDisconnected
)

// String returns a human-readable status name.
func (s ReconnectionStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusMigrating:
		return "migrating"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
