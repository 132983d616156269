package tracks

import (
	"testing"
	"time"

	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/metrics"
	"github.com/opd-ai/pipcore/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *store.Store
	adapter *StateAdapter
	metrics *metrics.Metrics
	call    *call.Call
	people  []call.Participant
	tracks  []*call.Track
}

// newFixture builds a call with one participant per entry of enabled; the
// first participant is local.
func newFixture(t *testing.T, interval time.Duration, enabled ...bool) *fixture {
	t.Helper()

	f := &fixture{
		metrics: metrics.New(nil),
		call:    call.NewCall("default", "tracks"),
	}
	for i, on := range enabled {
		track := call.NewTrackWithID(string(rune('a'+i))+"-track", on)
		f.tracks = append(f.tracks, track)
		f.people = append(f.people, call.Participant{
			SessionID: string(rune('a' + i)),
			HasVideo:  true,
			Track:     track,
		})
	}
	f.call.SetLocalParticipant(&f.people[0])
	f.call.SetParticipants(f.people)

	f.store = store.New()
	f.adapter = NewStateAdapter(f.store, WithRefreshInterval(interval), WithMetrics(f.metrics))
	f.store.OnClose(f.adapter.Close)
	t.Cleanup(f.store.Close)

	f.store.Dispatch(store.SetCall{Call: f.call})
	return f
}

func (f *fixture) show(t *testing.T, i int) {
	t.Helper()
	f.dispatch(t, store.SetContent{Content: store.ParticipantContent(f.call, f.people[i], f.tracks[i])})
}

func (f *fixture) dispatch(t *testing.T, action store.Action) {
	t.Helper()
	f.store.Dispatch(action)

	done := make(chan struct{})
	sub := store.Subscribe(f.store, func(store.State) int { return 0 }, func(int) { close(done) })
	defer sub.Cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("store did not apply action")
	}
}

func (f *fixture) enabled() []bool {
	out := make([]bool, len(f.tracks))
	for i, track := range f.tracks {
		out[i] = track.IsEnabled()
	}
	return out
}

func countEnabled(states []bool) int {
	n := 0
	for _, on := range states {
		if on {
			n++
		}
	}
	return n
}

func TestStateAdapter_ExclusiveWhileActive(t *testing.T) {
	f := newFixture(t, time.Hour, true, true, true, true)

	f.show(t, 1)
	f.dispatch(t, store.SetActive(true))
	assert.True(t, f.adapter.Observing())
	assert.Equal(t, []bool{false, true, false, false}, f.enabled())

	for _, i := range []int{2, 3, 1, 0, 2} {
		f.show(t, i)
		states := f.enabled()
		assert.Equal(t, 1, countEnabled(states), "after showing %d", i)
		assert.True(t, states[i])
	}

	f.dispatch(t, store.SetContent{Content: store.Reconnecting()})
	assert.Equal(t, 0, countEnabled(f.enabled()))
}

func TestStateAdapter_RestoresAfterDeactivation(t *testing.T) {
	tests := []struct {
		name    string
		enabled []bool
		shows   []int
	}{
		{"all enabled", []bool{true, true, true}, []int{1, 2, 0, 1}},
		{"some disabled", []bool{true, false, true, false}, []int{1, 3, 2}},
		{"all disabled", []bool{false, false}, []int{0, 1}},
		{"no transitions", []bool{true, false, true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Hour, tt.enabled...)
			before := f.enabled()

			for cycle := 0; cycle < 2; cycle++ {
				f.dispatch(t, store.SetActive(true))
				for _, i := range tt.shows {
					f.show(t, i)
				}
				f.dispatch(t, store.SetActive(false))

				assert.False(t, f.adapter.Observing())
				assert.Equal(t, before, f.enabled(), "cycle %d", cycle)
			}
		})
	}
}

func TestStateAdapter_IdleIgnoresContent(t *testing.T) {
	f := newFixture(t, time.Hour, true, false, true)

	f.show(t, 1)
	f.show(t, 2)

	assert.Equal(t, []bool{true, false, true}, f.enabled())
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.TrackToggles.WithLabelValues("enable")))
}

func TestStateAdapter_SelfHealsDisplayedTrack(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond, true, true)

	f.show(t, 1)
	f.dispatch(t, store.SetActive(true))

	// Some unrelated code path disables the displayed track.
	f.tracks[1].SetEnabled(false)

	require.Eventually(t, func() bool { return f.tracks[1].IsEnabled() }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.TrackToggles.WithLabelValues("heal")), 1.0)
}

func TestStateAdapter_NoHealingWhenIdle(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond, true, true)

	f.show(t, 1)
	f.dispatch(t, store.SetActive(true))
	f.dispatch(t, store.SetActive(false))

	f.tracks[1].SetEnabled(false)
	time.Sleep(30 * time.Millisecond)

	assert.False(t, f.tracks[1].IsEnabled())
}

func TestStateAdapter_CloseRestoresTracks(t *testing.T) {
	f := newFixture(t, time.Hour, true, true, false)

	f.show(t, 2)
	f.dispatch(t, store.SetActive(true))
	assert.Equal(t, []bool{false, false, true}, f.enabled())

	f.store.Close()

	assert.Equal(t, []bool{true, true, false}, f.enabled())
	assert.False(t, f.adapter.Observing())

	// Nothing reacts after teardown.
	f.tracks[0].SetEnabled(false)
	f.store.Dispatch(store.SetActive(true))
	assert.False(t, f.tracks[0].IsEnabled())
}
