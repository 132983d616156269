package main

import (
	"fmt"
	"sync"

	"github.com/opd-ai/pipcore"
	"github.com/opd-ai/pipcore/call"
	"github.com/opd-ai/pipcore/config"
	"github.com/opd-ai/pipcore/metrics"
	"github.com/opd-ai/pipcore/network"
	"github.com/opd-ai/pipcore/store"
	"github.com/opd-ai/pipcore/video"
	"github.com/sirupsen/logrus"
)

// windowSize is the size of the simulated floating window.
var windowSize = video.Size{Width: 320, Height: 180}

type simView string

func (v simView) ViewID() string { return string(v) }

type simViewFactory struct{}

func (simViewFactory) MakeContentView(c store.Content) store.View {
	return simView("content:" + c.String())
}

// simHost stands in for the platform floating window.
type simHost struct {
	mu         sync.Mutex
	pip        *pipcore.PictureInPicture
	configured bool
	autoStart  bool
	shown      bool
	releases   int
}

func (h *simHost) Configure(sourceView store.View, canStartAutomatically bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.configured = true
	h.autoStart = canStartAutomatically
}

func (h *simHost) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.configured = false
	h.releases++
	h.setShownLocked(false)
}

func (h *simHost) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setShownLocked(false)
}

// Show opens or closes the window on user request. A window can only be
// shown while the host is configured.
func (h *simHost) Show(shown bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if shown && !h.configured {
		return false
	}
	h.setShownLocked(shown)
	return true
}

// Background starts the window automatically when allowed.
func (h *simHost) Background() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.configured && h.autoStart {
		h.setShownLocked(true)
	}
}

func (h *simHost) setShownLocked(shown bool) {
	if h.shown == shown {
		return
	}
	h.shown = shown
	if h.pip != nil {
		h.pip.HostDidChangeActive(shown)
	}
}

type hostStatus struct {
	Configured bool
	AutoStart  bool
	Shown      bool
	Releases   int
}

func (h *simHost) status() hostStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return hostStatus{Configured: h.configured, AutoStart: h.autoStart, Shown: h.shown, Releases: h.releases}
}

// frameSink counts display-ready frames per track.
type frameSink struct {
	mu     sync.Mutex
	frames map[string]int
	last   video.Size
}

func newFrameSink() *frameSink {
	return &frameSink{frames: make(map[string]int)}
}

func (s *frameSink) deliver(trackID string, buf *video.PixelBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[trackID]++
	s.last = buf.Dimensions()
}

func (s *frameSink) count(trackID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[trackID]
}

func (s *frameSink) lastSize() video.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// source is one simulated publisher.
type source struct {
	track *call.Track
	frame *video.VideoFrame
}

func newSource(id string, size video.Size, luma byte) *source {
	frame := video.NewVideoFrame(uint16(size.Width), uint16(size.Height))
	for i := range frame.Y {
		frame.Y[i] = luma
	}
	for i := range frame.U {
		frame.U[i] = 128
		frame.V[i] = 128
	}
	return &source{track: call.NewTrackWithID(id, true), frame: frame}
}

// Simulation is a synthetic call wired into a picture-in-picture session.
type Simulation struct {
	pip     *pipcore.PictureInPicture
	call    *call.Call
	host    *simHost
	sink    *frameSink
	monitor *network.Monitor

	mu         sync.Mutex
	sources    []*source
	screen     *source
	local      call.Participant
	remotes    []call.Participant
	dominant   int
	sharing    bool
	appState   pipcore.ApplicationState
	sourceView bool
}

// NewSimulation creates a call with one local and three remote
// participants. The last remote publishes 4K video so the frame skip
// policy kicks in.
func NewSimulation(cfg config.Config, monitor *network.Monitor, m *metrics.Metrics) (*Simulation, error) {
	sim := &Simulation{
		call:     call.NewCall("default", "pipsim"),
		host:     &simHost{},
		sink:     newFrameSink(),
		monitor:  monitor,
		appState: pipcore.ApplicationForeground,
	}

	opts := pipcore.NewOptions()
	opts.Config = cfg
	opts.Host = sim.host
	opts.Network = monitor
	opts.Sink = sim.sink.deliver
	opts.Metrics = m

	pip, err := pipcore.New(opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sim.pip = pip
	sim.host.mu.Lock()
	sim.host.pip = pip
	sim.host.mu.Unlock()

	sizes := []video.Size{{Width: 640, Height: 480}, {Width: 1280, Height: 720}, {Width: 640, Height: 360}, {Width: 3840, Height: 2160}}
	names := []string{"me", "alice", "bob", "carol"}
	for i, size := range sizes {
		src := newSource(names[i]+"-camera", size, byte(60+i*40))
		sim.sources = append(sim.sources, src)
		p := call.Participant{
			SessionID: fmt.Sprintf("session-%d", i),
			UserID:    names[i],
			Name:      names[i],
			HasVideo:  true,
			Track:     src.track,
			TrackSize: size,
		}
		if i == 0 {
			sim.local = p
		} else {
			sim.remotes = append(sim.remotes, p)
		}
	}
	sim.screen = newSource("alice-screen", video.Size{Width: 1920, Height: 1080}, 200)
	sim.remotes[0].IsDominantSpeaker = true

	sim.publishLocked()
	pip.SetViewFactory(simViewFactory{})
	pip.SetContentSize(windowSize)
	pip.SetCall(sim.call)
	sim.ToggleSourceView()

	return sim, nil
}

// publishLocked pushes the participant list into the call.
func (s *Simulation) publishLocked() {
	local := s.local
	remotes := make([]call.Participant, len(s.remotes))
	for i, p := range s.remotes {
		p.IsDominantSpeaker = i == s.dominant
		p.IsScreenSharing = i == 0 && s.sharing
		remotes[i] = p
	}

	var session *call.ScreenSharingSession
	if s.sharing {
		session = &call.ScreenSharingSession{Participant: remotes[0], Track: s.screen.track}
	}

	s.call.Update(func(st *call.State) {
		st.Participants = append([]call.Participant{local}, remotes...)
		st.LocalParticipant = &local
		st.ScreenSharingSession = session
	})
}

// Tick feeds one frame of every enabled track into the session.
func (s *Simulation) Tick() {
	s.mu.Lock()
	sources := append([]*source{s.screen}, s.sources...)
	sharing := s.sharing
	s.mu.Unlock()

	for _, src := range sources {
		if src == s.screen && !sharing {
			continue
		}
		if src.track.IsEnabled() {
			s.pip.RenderFrame(src.track.ID(), src.frame)
		}
	}
}

// TogglePictureInPicture asks the host to show or hide the window.
func (s *Simulation) TogglePictureInPicture() {
	shown := s.host.status().Shown
	if !s.host.Show(!shown) {
		logrus.WithFields(logrus.Fields{
			"function": "Simulation.TogglePictureInPicture",
		}).Warn("Host is not configured, set a source view first")
	}
}

// RotateDominantSpeaker moves the dominant speaker to the next remote.
func (s *Simulation) RotateDominantSpeaker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dominant = (s.dominant + 1) % len(s.remotes)
	s.publishLocked()
}

// ToggleScreenShare starts or stops alice's screen share.
func (s *Simulation) ToggleScreenShare() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sharing = !s.sharing
	s.publishLocked()
}

// ToggleReconnecting flips the call between connected and reconnecting.
func (s *Simulation) ToggleReconnecting() {
	status := call.StatusReconnecting
	if s.call.State().ReconnectionStatus == call.StatusReconnecting {
		status = call.StatusConnected
	}
	s.call.SetReconnectionStatus(status)
}

// ToggleNetwork flips local network availability.
func (s *Simulation) ToggleNetwork() {
	s.monitor.SetAvailable(!s.monitor.Available())
}

// ToggleApplicationState moves the application between foreground and
// background.
func (s *Simulation) ToggleApplicationState() {
	s.mu.Lock()
	if s.appState == pipcore.ApplicationForeground {
		s.appState = pipcore.ApplicationBackground
	} else {
		s.appState = pipcore.ApplicationForeground
	}
	state := s.appState
	s.mu.Unlock()

	s.pip.ApplicationDidChangeState(state)
	if state == pipcore.ApplicationBackground {
		s.host.Background()
	}
}

// ToggleSourceView attaches or detaches the inline call view.
func (s *Simulation) ToggleSourceView() {
	s.mu.Lock()
	s.sourceView = !s.sourceView
	attached := s.sourceView
	s.mu.Unlock()

	if attached {
		s.pip.SetSourceView(simView("inline-call"))
	} else {
		s.pip.SetSourceView(nil)
	}
}

// ApplyConfig applies a reloaded configuration file.
func (s *Simulation) ApplyConfig(cfg *config.Config) {
	s.pip.SetCanStartAutomatically(cfg.PictureInPicture.CanStartPictureInPictureAutomaticallyFromInline)
}

// TrackStatus is one row of the track table.
type TrackStatus struct {
	ID      string
	Size    video.Size
	Enabled bool
	Frames  int
}

// Snapshot is what the terminal UI shows.
type Snapshot struct {
	State            store.State
	Call             call.State
	Host             hostStatus
	NetworkAvailable bool
	AppState         pipcore.ApplicationState
	Tracks           []TrackStatus
	LastFrameSize    video.Size
}

// Snapshot collects the current simulation state.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	sources := append(append([]*source{}, s.sources...), s.screen)
	appState := s.appState
	s.mu.Unlock()

	snap := Snapshot{
		State:            s.pip.State(),
		Call:             s.call.State(),
		Host:             s.host.status(),
		NetworkAvailable: s.monitor.Available(),
		AppState:         appState,
		LastFrameSize:    s.sink.lastSize(),
	}
	for _, src := range sources {
		snap.Tracks = append(snap.Tracks, TrackStatus{
			ID:      src.track.ID(),
			Size:    src.frame.Dimensions(),
			Enabled: src.track.IsEnabled(),
			Frames:  s.sink.count(src.track.ID()),
		})
	}
	return snap
}

// Close tears down the session.
func (s *Simulation) Close() {
	s.pip.Close()
}
