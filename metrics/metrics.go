// Package metrics exposes Prometheus instrumentation for the
// picture-in-picture core.
//
// Every method is safe to call on a nil *Metrics, so components can run
// without instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pip"

// Metrics groups the collectors shared by the store, the track adapter and
// the frame renderer.
type Metrics struct {
	ActionsDispatched  *prometheus.CounterVec
	ContentTransitions *prometheus.CounterVec
	TrackToggles       *prometheus.CounterVec
	FramesRendered     prometheus.Counter
	FramesSkipped      prometheus.Counter
	FramesDropped      *prometheus.CounterVec
	Active             prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests and embedded uses usually want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActionsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_actions_total",
			Help:      "Store actions applied, by action name",
		}, []string{"action"}),

		ContentTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_transitions_total",
			Help:      "Content variant changes observed by the store, by new variant",
		}, []string{"kind"}),

		TrackToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_toggles_total",
			Help:      "Track enablement changes made while picture-in-picture is active",
		}, []string{"operation"}), // "enable" | "disable" | "restore" | "heal"

		FramesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Frames converted and handed to the display sink",
		}),

		FramesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Frames skipped by the frame-skip policy",
		}),

		FramesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Frames dropped before display, by reason",
		}, []string{"reason"}), // "busy" | "conversion" | "stale"

		Active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active",
			Help:      "1 while the floating window is shown",
		}),
	}
}

// ActionDispatched counts an applied store action.
func (m *Metrics) ActionDispatched(action string) {
	if m == nil {
		return
	}
	m.ActionsDispatched.WithLabelValues(action).Inc()
}

// ContentChanged counts a content transition into kind.
func (m *Metrics) ContentChanged(kind string) {
	if m == nil {
		return
	}
	m.ContentTransitions.WithLabelValues(kind).Inc()
}

// TrackToggled counts one enablement change.
func (m *Metrics) TrackToggled(operation string) {
	if m == nil {
		return
	}
	m.TrackToggles.WithLabelValues(operation).Inc()
}

// FrameRendered counts a displayed frame.
func (m *Metrics) FrameRendered() {
	if m == nil {
		return
	}
	m.FramesRendered.Inc()
}

// FrameSkipped counts a frame skipped by policy.
func (m *Metrics) FrameSkipped() {
	if m == nil {
		return
	}
	m.FramesSkipped.Inc()
}

// FrameDropped counts a frame lost for reason.
func (m *Metrics) FrameDropped(reason string) {
	if m == nil {
		return
	}
	m.FramesDropped.WithLabelValues(reason).Inc()
}

// SetActive mirrors the store's isActive flag.
func (m *Metrics) SetActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.Active.Set(1)
	} else {
		m.Active.Set(0)
	}
}
