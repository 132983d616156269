package store

import (
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/metrics"
	"github.com/opd-ai/pipcore/video"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testView string

func (v testView) ViewID() string { return string(v) }

type testViewFactory struct{}

func (testViewFactory) MakeContentView(c Content) View { return testView(c.Kind().String()) }

// recorder collects values delivered to a subscriber.
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *recorder[T]) len() int {
	return len(r.snapshot())
}

// flush waits until every action dispatched before the call has been applied.
func flush(t *testing.T, s *Store) {
	t.Helper()
	done := make(chan struct{})
	sub := Subscribe(s, func(State) int { return 0 }, func(int) { close(done) })
	defer sub.Cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("store did not drain its queue")
	}
}

func TestStore_InitialState(t *testing.T) {
	s := New()
	defer s.Close()

	state := s.State()
	assert.False(t, state.IsActive)
	assert.Nil(t, state.Call)
	assert.Nil(t, state.SourceView)
	assert.Nil(t, state.ViewFactory)
	assert.Equal(t, ContentInactive, state.Content.Kind())
	assert.Equal(t, video.Size{Width: 640, Height: 480}, state.PreferredContentSize)
	assert.True(t, state.ContentSize.IsZero())
	assert.True(t, state.CanStartPictureInPictureAutomaticallyFromInline)
}

func TestStore_Actions(t *testing.T) {
	c := call.NewCall("default", "abc")
	p := call.Participant{SessionID: "p1"}
	factory := testViewFactory{}

	tests := []struct {
		name   string
		action Action
		check  func(t *testing.T, s State)
	}{
		{"setActive", SetActive(true), func(t *testing.T, s State) {
			assert.True(t, s.IsActive)
		}},
		{"setCall", SetCall{Call: c}, func(t *testing.T, s State) {
			assert.Equal(t, c.CID(), s.Call.CID())
		}},
		{"setSourceView", SetSourceView{View: testView("inline")}, func(t *testing.T, s State) {
			assert.True(t, SameView(testView("inline"), s.SourceView))
		}},
		{"setViewFactory", SetViewFactory{Factory: factory}, func(t *testing.T, s State) {
			assert.Equal(t, factory, s.ViewFactory)
		}},
		{"setContent", SetContent{Content: ParticipantContent(c, p, nil)}, func(t *testing.T, s State) {
			assert.True(t, s.Content.Equal(ParticipantContent(c, p, nil)))
		}},
		{"setPreferredContentSize", SetPreferredContentSize{Width: 800, Height: 600}, func(t *testing.T, s State) {
			assert.Equal(t, video.Size{Width: 800, Height: 600}, s.PreferredContentSize)
		}},
		{"setContentSize", SetContentSize{Width: 400, Height: 300}, func(t *testing.T, s State) {
			assert.Equal(t, video.Size{Width: 400, Height: 300}, s.ContentSize)
		}},
		{"setCanStartAutomatically", SetCanStartAutomatically(false), func(t *testing.T, s State) {
			assert.False(t, s.CanStartPictureInPictureAutomaticallyFromInline)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(nil)
			s := New(WithMetrics(m))
			defer s.Close()

			s.Dispatch(tt.action)
			flush(t, s)

			tt.check(t, s.State())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsDispatched.WithLabelValues(tt.name)))
		})
	}
}

func TestStore_DuplicateContentNotifiesOnce(t *testing.T) {
	s := New()
	defer s.Close()

	c := call.NewCall("default", "abc")
	content := ParticipantContent(c, call.Participant{SessionID: "p1"}, call.NewTrackWithID("t1", true))

	rec := &recorder[Content]{}
	sub := SubscribeFunc(s, ContentSelector, Content.Equal, rec.add)
	defer sub.Cancel()

	s.Dispatch(SetContent{Content: content})
	s.Dispatch(SetContent{Content: content})
	flush(t, s)

	values := rec.snapshot()
	require.Len(t, values, 2, "initial value plus one change")
	assert.Equal(t, ContentInactive, values[0].Kind())
	assert.True(t, values[1].Equal(content))
}

func TestStore_DeliversInDispatchOrder(t *testing.T) {
	s := New()
	defer s.Close()

	rec := &recorder[video.Size]{}
	Subscribe(s, func(st State) video.Size { return st.ContentSize }, rec.add)

	var want []video.Size
	for i := 1; i <= 50; i++ {
		size := video.Size{Width: i * 2, Height: i}
		want = append(want, size)
		s.Dispatch(SetContentSize(size))
	}
	flush(t, s)

	assert.Equal(t, append([]video.Size{{}}, want...), rec.snapshot())
}

func TestStore_ConcurrentDispatchDropsNothing(t *testing.T) {
	m := metrics.New(nil)
	s := New(WithMetrics(m))
	defer s.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Dispatch(SetActive(i%2 == 0))
			}
		}()
	}
	wg.Wait()
	flush(t, s)

	assert.Equal(t, 800.0, testutil.ToFloat64(m.ActionsDispatched.WithLabelValues("setActive")))
}

func TestStore_CancelStopsDelivery(t *testing.T) {
	s := New()
	defer s.Close()

	rec := &recorder[bool]{}
	sub := Subscribe(s, IsActiveSelector, rec.add)
	flush(t, s)
	sub.Cancel()
	sub.Cancel()

	s.Dispatch(SetActive(true))
	flush(t, s)

	assert.Equal(t, []bool{false}, rec.snapshot())
}

func TestStore_CloseCascades(t *testing.T) {
	s := New()

	var order []string
	s.OnClose(func() { order = append(order, "first") })
	s.OnClose(func() { order = append(order, "second") })

	rec := &recorder[bool]{}
	sub := Subscribe(s, IsActiveSelector, rec.add)
	flush(t, s)

	s.Close()
	s.Close()

	assert.Equal(t, []string{"second", "first"}, order)
	assert.True(t, sub.cancelled.Load())

	s.Dispatch(SetActive(true))
	assert.False(t, s.State().IsActive)
	assert.Equal(t, 1, rec.len())

	late := Subscribe(s, IsActiveSelector, rec.add)
	assert.True(t, late.cancelled.Load())
}

func TestContent_Equal(t *testing.T) {
	callA := call.NewCall("default", "a")
	callB := call.NewCall("default", "b")
	p1 := call.Participant{SessionID: "p1", Name: "Alice"}
	p1Renamed := call.Participant{SessionID: "p1", Name: "Alicia"}
	p2 := call.Participant{SessionID: "p2"}
	t1 := call.NewTrackWithID("t1", true)
	t1Copy := call.NewTrackWithID("t1", false)
	t2 := call.NewTrackWithID("t2", true)

	tests := []struct {
		name  string
		a, b  Content
		equal bool
	}{
		{"inactive", Inactive(), Inactive(), true},
		{"zero value is inactive", Content{}, Inactive(), true},
		{"reconnecting", Reconnecting(), Reconnecting(), true},
		{"different kinds", Inactive(), Reconnecting(), false},
		{"same identities", ParticipantContent(callA, p1, t1), ParticipantContent(callA, p1Renamed, t1Copy), true},
		{"different call", ParticipantContent(callA, p1, t1), ParticipantContent(callB, p1, t1), false},
		{"different participant", ParticipantContent(callA, p1, t1), ParticipantContent(callA, p2, t1), false},
		{"different track", ParticipantContent(callA, p1, t1), ParticipantContent(callA, p1, t2), false},
		{"nil track vs track", ParticipantContent(callA, p1, nil), ParticipantContent(callA, p1, t1), false},
		{"participant vs screen share", ParticipantContent(callA, p1, t1), ScreenSharingContent(callA, p1, t1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestContent_Accessors(t *testing.T) {
	c := call.NewCall("default", "a")
	track := call.NewTrackWithID("t1", true)
	content := ScreenSharingContent(c, call.Participant{SessionID: "p1"}, track)

	p, ok := content.Participant()
	require.True(t, ok)
	assert.Equal(t, "p1", p.SessionID)
	assert.Equal(t, "t1", content.Track().ID())
	assert.Same(t, c, content.Call())
	assert.Equal(t, "screenSharing(call=default:a, participant=p1, track=t1)", content.String())

	_, ok = Reconnecting().Participant()
	assert.False(t, ok)
	assert.Nil(t, Inactive().Track())
	assert.Equal(t, "reconnecting", Reconnecting().String())
}

func TestSameView(t *testing.T) {
	assert.True(t, SameView(nil, nil))
	assert.False(t, SameView(testView("a"), nil))
	assert.True(t, SameView(testView("a"), testView("a")))
	assert.False(t, SameView(testView("a"), testView("b")))
}
