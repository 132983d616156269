package video

import (
	"context"
	"sync"

	"github.com/opd-ai/pipcore/metrics"
	"github.com/sirupsen/logrus"
)

// Sink receives display-ready buffers together with the ID of the track
// they came from. It is called from the renderer's conversion goroutine.
type Sink func(trackID string, buf *PixelBuffer)

// Renderer is the per-window frame pipeline: it admits frames from the
// enabled track according to a FramePolicy, converts them on a single
// background goroutine and forwards the result to a Sink.
//
// Frames are never queued. While the conversion goroutine is busy, or when
// a conversion fails, the frame is dropped and the renderer waits for the
// next one.
type Renderer struct {
	mu      sync.Mutex
	policy  *FramePolicy
	trackID string
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	work    chan renderJob
	sink    Sink
	metrics *metrics.Metrics
}

type renderJob struct {
	trackID string
	buffer  Buffer
	target  Size
	resize  bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithThresholds overrides the resize and skip ratio thresholds.
func WithThresholds(resizeThreshold, skipThreshold float64) RendererOption {
	return func(r *Renderer) {
		r.policy = NewFramePolicy(resizeThreshold, skipThreshold)
	}
}

// WithMetrics attaches frame counters.
func WithMetrics(m *metrics.Metrics) RendererOption {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// NewRenderer creates a stopped renderer delivering to sink.
func NewRenderer(sink Sink, opts ...RendererOption) *Renderer {
	r := &Renderer{
		policy: NewFramePolicy(DefaultResizeThreshold, DefaultSkipThreshold),
		work:   make(chan renderJob, 1),
		sink:   sink,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the conversion goroutine. Starting a running renderer is a no-op.
func (r *Renderer) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	// Discard a frame left over from a previous run.
	select {
	case <-r.work:
	default:
	}

	transformer := NewTransformer()
	go r.convertLoop(ctx, transformer, r.done)

	logrus.WithFields(logrus.Fields{
		"function": "Renderer.Start",
		"track_id": r.trackID,
	}).Debug("Frame streaming started")
}

// Stop halts the conversion goroutine and waits for it to exit.
func (r *Renderer) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	done := r.done
	r.mu.Unlock()

	<-done

	logrus.WithFields(logrus.Fields{
		"function": "Renderer.Stop",
	}).Debug("Frame streaming stopped")
}

// SetTrack switches the rendered track. Size observations and skip counters
// of the previous track are discarded.
func (r *Renderer) SetTrack(trackID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if trackID == r.trackID {
		return
	}
	r.trackID = trackID
	r.policy.Reset()
}

// SetContentSize updates the floating window's size.
func (r *Renderer) SetContentSize(size Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policy.SetContentSize(size)
}

// RenderFrame is called by the media track for every decoded frame.
func (r *Renderer) RenderFrame(buf Buffer) {
	r.render("", buf)
}

// RenderTrackFrame is RenderFrame for callers fanning in several tracks:
// frames from any track other than the current one are ignored.
func (r *Renderer) RenderTrackFrame(trackID string, buf Buffer) {
	if trackID == "" {
		return
	}
	r.render(trackID, buf)
}

func (r *Renderer) render(trackID string, buf Buffer) {
	if isNilBuffer(buf) {
		return
	}

	r.mu.Lock()
	if !r.running || r.trackID == "" || (trackID != "" && trackID != r.trackID) {
		r.mu.Unlock()
		return
	}
	if !r.policy.Admit(buf.Dimensions()) {
		r.mu.Unlock()
		r.metrics.FrameSkipped()
		return
	}
	job := renderJob{
		trackID: r.trackID,
		buffer:  buf,
		target:  r.policy.ContentSize(),
		resize:  r.policy.RequiresResize(),
	}
	r.mu.Unlock()

	select {
	case r.work <- job:
	default:
		r.metrics.FrameDropped("busy")
	}
}

func (r *Renderer) convertLoop(ctx context.Context, transformer *Transformer, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-r.work:
			r.process(transformer, job)
		}
	}
}

func (r *Renderer) process(transformer *Transformer, job renderJob) {
	transformer.RequiresResize = job.resize
	out, ok := transformer.Transform(job.buffer, job.target)
	if !ok {
		r.metrics.FrameDropped("conversion")
		logrus.WithFields(logrus.Fields{
			"function": "Renderer.process",
			"track_id": job.trackID,
			"size":     job.buffer.Dimensions().String(),
		}).Warn("Failed to convert frame buffer, dropping frame")
		return
	}

	r.mu.Lock()
	current := r.trackID
	r.mu.Unlock()
	if current != job.trackID {
		r.metrics.FrameDropped("stale")
		return
	}

	if r.sink != nil {
		r.sink(job.trackID, out)
	}
	r.metrics.FrameRendered()
}
