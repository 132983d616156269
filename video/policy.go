package video

import (
	"github.com/sirupsen/logrus"
)

const (
	// DefaultResizeThreshold is the source/window size ratio from which
	// frames are downsampled. The floating window renders poorly when fed
	// frames larger than itself, hence 1.
	DefaultResizeThreshold = 1.0

	// DefaultSkipThreshold is the size ratio from which only every Nth
	// frame is processed.
	DefaultSkipThreshold = 15.0
)

// FramePolicy decides, per incoming frame, whether the frame is processed
// and whether it must be downsampled.
//
// Every new frame size (and every track switch) recomputes the policy and
// restarts the skip counter. FramePolicy is not safe for concurrent use.
type FramePolicy struct {
	resizeThreshold float64
	skipThreshold   float64

	contentSize Size
	trackSize   Size

	requiresResize bool
	framesToSkip   int
	skippedFrames  int
}

// NewFramePolicy creates a policy with the given thresholds. Non-positive
// thresholds fall back to the defaults.
func NewFramePolicy(resizeThreshold, skipThreshold float64) *FramePolicy {
	if resizeThreshold <= 0 {
		resizeThreshold = DefaultResizeThreshold
	}
	if skipThreshold <= 0 {
		skipThreshold = DefaultSkipThreshold
	}
	return &FramePolicy{
		resizeThreshold: resizeThreshold,
		skipThreshold:   skipThreshold,
	}
}

// SetContentSize updates the display window size.
func (p *FramePolicy) SetContentSize(size Size) {
	if size == p.contentSize {
		return
	}
	p.contentSize = size
	p.recompute()
}

// ContentSize returns the display window size.
func (p *FramePolicy) ContentSize() Size {
	return p.contentSize
}

// Reset forgets the track size and counters, as required on a track switch.
func (p *FramePolicy) Reset() {
	p.trackSize = Size{}
	p.requiresResize = false
	p.framesToSkip = 0
	p.skippedFrames = 0
}

// Admit records a frame of the given size and reports whether it should be
// processed. The skip counter advances on every call.
func (p *FramePolicy) Admit(frameSize Size) bool {
	if frameSize != p.trackSize {
		p.trackSize = frameSize
		p.recompute()
	}

	render := p.skippedFrames == 0 && !p.trackSize.IsZero()
	p.advance()
	return render
}

// RequiresResize reports whether admitted frames must be downsampled.
func (p *FramePolicy) RequiresResize() bool {
	return p.requiresResize
}

// FramesToSkip returns N, the number of frames dropped after each
// processed frame. Zero means every frame is processed.
func (p *FramePolicy) FramesToSkip() int {
	return p.framesToSkip
}

func (p *FramePolicy) recompute() {
	p.skippedFrames = 0

	if p.contentSize.IsZero() || p.trackSize.IsZero() {
		p.requiresResize = false
		p.framesToSkip = 0
		return
	}

	widthRatio := float64(p.trackSize.Width) / float64(p.contentSize.Width)
	heightRatio := float64(p.trackSize.Height) / float64(p.contentSize.Height)

	p.requiresResize = widthRatio >= p.resizeThreshold || heightRatio >= p.resizeThreshold

	if widthRatio >= p.skipThreshold || heightRatio >= p.skipThreshold {
		p.framesToSkip = max(max(int(widthRatio), int(heightRatio))/2, 1)
	} else {
		p.framesToSkip = 0
	}

	logrus.WithFields(logrus.Fields{
		"function":        "FramePolicy.recompute",
		"content_size":    p.contentSize.String(),
		"track_size":      p.trackSize.String(),
		"width_ratio":     widthRatio,
		"height_ratio":    heightRatio,
		"requires_resize": p.requiresResize,
		"frames_to_skip":  p.framesToSkip,
	}).Debug("Frame policy recomputed")
}

func (p *FramePolicy) advance() {
	if p.framesToSkip > 0 {
		if p.skippedFrames == p.framesToSkip {
			p.skippedFrames = 0
		} else {
			p.skippedFrames++
		}
	} else {
		p.skippedFrames = 0
	}
}
