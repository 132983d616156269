package content

import (
	"testing"

	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/store"
	"github.com/opd-ai/pipcore/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participant(id string, hasVideo bool, track call.VideoTrack) call.Participant {
	return call.Participant{SessionID: id, Name: id, HasVideo: hasVideo, Track: track}
}

func TestResolve_Priority(t *testing.T) {
	c := call.NewCall("default", "priority")

	local := participant("local", true, call.NewTrackWithID("local-track", true))
	local.TrackSize = video.Size{Width: 720, Height: 1280}

	dominantNoVideo := participant("a", false, call.NewTrackWithID("a-track", true))
	dominantNoVideo.IsDominantSpeaker = true
	dominantNoVideo.TrackSize = video.Size{Width: 640, Height: 480}

	withVideo := participant("b", true, call.NewTrackWithID("b-track", true))
	withVideo.TrackSize = video.Size{Width: 1280, Height: 720}

	noVideo := participant("d", false, nil)

	sharer := participant("c", true, nil)
	shareTrack := call.NewTrackWithID("c-screen", true)

	tests := []struct {
		name          string
		call          *call.Call
		state         call.State
		network       bool
		wantKind      store.Kind
		wantSession   string
		wantTrack     string
		wantPreferred *video.Size
	}{
		{
			name:     "no call",
			state:    call.State{Participants: []call.Participant{withVideo}},
			network:  true,
			wantKind: store.ContentInactive,
		},
		{
			name: "remote screen share beats dominant speaker and video",
			call: c,
			state: call.State{
				Participants:         []call.Participant{local, dominantNoVideo, withVideo, sharer},
				LocalParticipant:     &local,
				ScreenSharingSession: &call.ScreenSharingSession{Participant: sharer, Track: shareTrack},
			},
			network:     true,
			wantKind:    store.ContentScreenSharing,
			wantSession: "c",
			wantTrack:   "c-screen",
		},
		{
			name: "screen share beats reconnecting",
			call: c,
			state: call.State{
				Participants:         []call.Participant{local, sharer},
				LocalParticipant:     &local,
				ReconnectionStatus:   call.StatusReconnecting,
				ScreenSharingSession: &call.ScreenSharingSession{Participant: sharer, Track: shareTrack},
			},
			network:     false,
			wantKind:    store.ContentScreenSharing,
			wantSession: "c",
			wantTrack:   "c-screen",
		},
		{
			name: "own screen share is ignored",
			call: c,
			state: call.State{
				Participants:         []call.Participant{local, withVideo},
				LocalParticipant:     &local,
				ScreenSharingSession: &call.ScreenSharingSession{Participant: local, Track: shareTrack},
			},
			network:       true,
			wantKind:      store.ContentParticipant,
			wantSession:   "b",
			wantTrack:     "b-track",
			wantPreferred: &video.Size{Width: 1280, Height: 720},
		},
		{
			name: "screen share without track is ignored",
			call: c,
			state: call.State{
				Participants:         []call.Participant{local, noVideo},
				LocalParticipant:     &local,
				ScreenSharingSession: &call.ScreenSharingSession{Participant: sharer},
			},
			network:     true,
			wantKind:    store.ContentParticipant,
			wantSession: "d",
		},
		{
			name: "reconnecting",
			call: c,
			state: call.State{
				Participants:       []call.Participant{local, withVideo},
				LocalParticipant:   &local,
				ReconnectionStatus: call.StatusReconnecting,
			},
			network:  true,
			wantKind: store.ContentReconnecting,
		},
		{
			name: "network unavailable",
			call: c,
			state: call.State{
				Participants:     []call.Participant{local, withVideo},
				LocalParticipant: &local,
			},
			network:  false,
			wantKind: store.ContentReconnecting,
		},
		{
			name: "migrating is not reconnecting",
			call: c,
			state: call.State{
				Participants:       []call.Participant{local, withVideo},
				LocalParticipant:   &local,
				ReconnectionStatus: call.StatusMigrating,
			},
			network:       true,
			wantKind:      store.ContentParticipant,
			wantSession:   "b",
			wantTrack:     "b-track",
			wantPreferred: &video.Size{Width: 1280, Height: 720},
		},
		{
			name: "dominant speaker without video shows avatar",
			call: c,
			state: call.State{
				Participants:     []call.Participant{local, withVideo, dominantNoVideo},
				LocalParticipant: &local,
			},
			network:     true,
			wantKind:    store.ContentParticipant,
			wantSession: "a",
		},
		{
			name: "first participant with video",
			call: c,
			state: call.State{
				Participants:     []call.Participant{local, noVideo, withVideo},
				LocalParticipant: &local,
			},
			network:       true,
			wantKind:      store.ContentParticipant,
			wantSession:   "b",
			wantTrack:     "b-track",
			wantPreferred: &video.Size{Width: 1280, Height: 720},
		},
		{
			name: "first other participant without video",
			call: c,
			state: call.State{
				Participants:     []call.Participant{local, noVideo, participant("e", false, nil)},
				LocalParticipant: &local,
			},
			network:     true,
			wantKind:    store.ContentParticipant,
			wantSession: "d",
		},
		{
			name: "empty call",
			call: c,
			state: call.State{
				Participants: nil,
			},
			network:  true,
			wantKind: store.ContentInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.call, tt.state, tt.network)

			require.Equal(t, tt.wantKind, got.Content.Kind(), got.Content.String())
			if p, ok := got.Content.Participant(); ok {
				assert.Equal(t, tt.wantSession, p.SessionID)
			}
			assert.Equal(t, tt.wantTrack, call.TrackID(got.Content.Track()))
			assert.Equal(t, tt.wantPreferred, got.PreferredContentSize)
		})
	}
}

func TestResolve_ScreenShareWinsRegardlessOfOrder(t *testing.T) {
	c := call.NewCall("default", "order")
	local := participant("local", true, call.NewTrack(true))

	a := participant("a", false, nil)
	a.IsDominantSpeaker = true
	b := participant("b", true, call.NewTrack(true))
	cp := participant("c", true, nil)
	session := &call.ScreenSharingSession{Participant: cp, Track: call.NewTrackWithID("c-screen", true)}

	orders := [][]call.Participant{
		{local, a, b, cp},
		{cp, b, a, local},
		{b, local, cp, a},
	}
	for _, order := range orders {
		got := Resolve(c, call.State{
			Participants:         order,
			LocalParticipant:     &local,
			ScreenSharingSession: session,
		}, true)

		require.Equal(t, store.ContentScreenSharing, got.Content.Kind())
		p, _ := got.Content.Participant()
		assert.Equal(t, "c", p.SessionID)
	}
}

func TestResolve_FallsBackToLocalParticipant(t *testing.T) {
	c := call.NewCall("default", "solo")
	local := participant("local", true, call.NewTrackWithID("local-track", true))
	local.TrackSize = video.Size{Width: 720, Height: 1280}

	got := Resolve(c, call.State{
		Participants:     []call.Participant{local},
		LocalParticipant: &local,
	}, true)

	assert.True(t, got.Content.Equal(store.ParticipantContent(c, local, local.Track)))
	assert.Equal(t, &video.Size{Width: 720, Height: 1280}, got.PreferredContentSize)
}
