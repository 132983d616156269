package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/opd-ai/pipcore/store"
)

// frameInterval is the simulated camera frame rate.
const frameInterval = 33 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	activeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	onStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

// controls is what the model drives. *Simulation implements it.
type controls interface {
	Tick()
	TogglePictureInPicture()
	RotateDominantSpeaker()
	ToggleScreenShare()
	ToggleReconnecting()
	ToggleNetwork()
	ToggleApplicationState()
	ToggleSourceView()
	Snapshot() Snapshot
}

type model struct {
	sim      controls
	snapshot Snapshot
	width    int
	quitting bool
}

func newModel(sim controls) model {
	return model{sim: sim, snapshot: sim.Snapshot()}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.sim.Tick()
		m.snapshot = m.sim.Snapshot()
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "p":
		m.sim.TogglePictureInPicture()
	case "d":
		m.sim.RotateDominantSpeaker()
	case "s":
		m.sim.ToggleScreenShare()
	case "r":
		m.sim.ToggleReconnecting()
	case "n":
		m.sim.ToggleNetwork()
	case "f":
		m.sim.ToggleApplicationState()
	case "v":
		m.sim.ToggleSourceView()
	default:
		return m, nil
	}
	m.snapshot = m.sim.Snapshot()
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.snapshot

	var b strings.Builder
	b.WriteString(titleStyle.Render("Picture-in-Picture simulator"))
	b.WriteString("\n\n")

	window := boxStyle
	if snap.State.IsActive {
		window = activeBoxStyle
	}
	left := window.Render(m.renderWindow(snap))
	right := boxStyle.Render(m.renderCall(snap))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.renderTracks(snap)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("p window · d dominant · s screen share · r reconnect · n network · f fg/bg · v source view · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m model) renderWindow(snap Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Window"))
	b.WriteString("\n")
	row(&b, "active", onOff(snap.State.IsActive))
	row(&b, "content", describeContent(snap.State.Content))
	row(&b, "preferred", snap.State.PreferredContentSize.String())
	row(&b, "window", snap.State.ContentSize.String())
	row(&b, "last frame", snap.LastFrameSize.String())
	row(&b, "host", onOff(snap.Host.Configured))
	row(&b, "auto start", onOff(snap.Host.AutoStart))
	row(&b, "releases", fmt.Sprintf("%d", snap.Host.Releases))
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderCall(snap Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Call"))
	b.WriteString("\n")
	row(&b, "status", snap.Call.ReconnectionStatus.String())
	row(&b, "network", onOff(snap.NetworkAvailable))
	row(&b, "application", snap.AppState.String())
	for _, p := range snap.Call.RemoteParticipants() {
		marker := " "
		if p.IsDominantSpeaker {
			marker = "*"
		}
		if p.IsScreenSharing {
			marker = "S"
		}
		row(&b, marker+" "+p.Name, p.TrackSize.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderTracks(snap Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tracks"))
	b.WriteString("\n")
	for _, t := range snap.Tracks {
		row(&b, t.ID, fmt.Sprintf("%-10s %-4s %d frames", t.Size, onOff(t.Enabled), t.Frames))
	}
	return strings.TrimRight(b.String(), "\n")
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-14s", label)), value)
}

func onOff(v bool) string {
	if v {
		return onStyle.Render("on")
	}
	return offStyle.Render("off")
}

func describeContent(c store.Content) string {
	switch c.Kind() {
	case store.ContentParticipant, store.ContentScreenSharing:
		p, _ := c.Participant()
		return fmt.Sprintf("%s (%s)", c.Kind(), p.Name)
	default:
		return c.Kind().String()
	}
}
