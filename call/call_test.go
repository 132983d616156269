package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall_CID(t *testing.T) {
	c := NewCall("default", "abc")
	assert.Equal(t, "default:abc", c.CID())
}

func TestCall_SubscribersSeeUpdatesInOrder(t *testing.T) {
	c := NewCall("default", "abc")

	var statuses []ReconnectionStatus
	cancel := c.Subscribe(func(s State) {
		statuses = append(statuses, s.ReconnectionStatus)
	})

	c.SetReconnectionStatus(StatusReconnecting)
	c.SetReconnectionStatus(StatusConnected)
	cancel()
	c.SetReconnectionStatus(StatusDisconnected)

	assert.Equal(t, []ReconnectionStatus{StatusReconnecting, StatusConnected}, statuses)
	assert.Equal(t, 0, c.SubscriberCount())
}

func TestCall_CancelIsIdempotent(t *testing.T) {
	c := NewCall("default", "abc")
	cancelA := c.Subscribe(func(State) {})
	c.Subscribe(func(State) {})

	cancelA()
	cancelA()

	assert.Equal(t, 1, c.SubscriberCount())
}

func TestCall_SnapshotsAreIsolated(t *testing.T) {
	c := NewCall("default", "abc")
	local := &Participant{SessionID: "local"}
	c.SetLocalParticipant(local)
	c.SetParticipants([]Participant{{SessionID: "local"}, {SessionID: "remote"}})

	snapshot := c.State()
	snapshot.Participants[0].Name = "mutated"
	snapshot.LocalParticipant.Name = "mutated"
	local.Name = "mutated"

	fresh := c.State()
	assert.Empty(t, fresh.Participants[0].Name)
	assert.Empty(t, fresh.LocalParticipant.Name)
}

func TestState_RemoteParticipantsAndScreenSharing(t *testing.T) {
	local := Participant{SessionID: "local"}
	remote := Participant{SessionID: "remote"}

	tests := []struct {
		name          string
		state         State
		wantRemote    []string
		wantLocalShar bool
	}{
		{
			name:       "no local participant",
			state:      State{Participants: []Participant{local, remote}},
			wantRemote: []string{"local", "remote"},
		},
		{
			name: "local excluded",
			state: State{
				Participants:     []Participant{local, remote},
				LocalParticipant: &local,
			},
			wantRemote: []string{"remote"},
		},
		{
			name: "local sharing",
			state: State{
				Participants:         []Participant{local, remote},
				LocalParticipant:     &local,
				ScreenSharingSession: &ScreenSharingSession{Participant: local, Track: NewTrack(true)},
			},
			wantRemote:    []string{"remote"},
			wantLocalShar: true,
		},
		{
			name: "remote sharing",
			state: State{
				Participants:         []Participant{local, remote},
				LocalParticipant:     &local,
				ScreenSharingSession: &ScreenSharingSession{Participant: remote, Track: NewTrack(true)},
			},
			wantRemote: []string{"remote"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, p := range tt.state.RemoteParticipants() {
				ids = append(ids, p.SessionID)
			}
			assert.Equal(t, tt.wantRemote, ids)
			assert.Equal(t, tt.wantLocalShar, tt.state.IsCurrentUserScreenSharing())
		})
	}
}

func TestTrack(t *testing.T) {
	a := NewTrack(true)
	b := NewTrack(false)

	require.NotEqual(t, a.ID(), b.ID())
	assert.True(t, a.IsEnabled())
	assert.False(t, b.IsEnabled())

	b.SetEnabled(true)
	assert.True(t, b.IsEnabled())

	assert.Equal(t, "", TrackID(nil))
	assert.Equal(t, "fixed", TrackID(NewTrackWithID("fixed", false)))
}

func TestReconnectionStatus_String(t *testing.T) {
	assert.Equal(t, "reconnecting", StatusReconnecting.String())
	assert.Equal(t, "unknown", ReconnectionStatus(42).String())
}
