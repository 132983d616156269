package video

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Transformer converts incoming track buffers into display-ready BGRA pixel
// buffers, downsampling first when RequiresResize is set.
//
// A Transformer is not safe for concurrent use; the Renderer owns one per
// conversion goroutine.
type Transformer struct {
	// RequiresResize enables fit-inside downsampling to the target size.
	RequiresResize bool

	scaler *Scaler
}

// NewTransformer creates a transformer with resizing disabled.
func NewTransformer() *Transformer {
	return &Transformer{scaler: NewScaler()}
}

// Transform converts source to BGRA, resizing it to fit inside target when
// required. If resizing fails the unresized source is converted instead.
//
// The boolean result is false when no output could be produced; callers drop
// the frame and wait for the next one.
func (t *Transformer) Transform(source Buffer, target Size) (*PixelBuffer, bool) {
	if isNilBuffer(source) {
		return nil, false
	}

	if t.RequiresResize && !target.IsZero() {
		fitted := FitInside(source.Dimensions(), target)
		resized, err := t.resize(source, fitted)
		if err == nil {
			var out *PixelBuffer
			if out, err = t.convert(resized); err == nil {
				return out, true
			}
		}
		logrus.WithFields(logrus.Fields{
			"function":    "Transformer.Transform",
			"source_size": source.Dimensions().String(),
			"target_size": fitted.String(),
			"error":       err.Error(),
		}).Debug("Resize failed, converting unresized buffer")
	}

	out, err := t.convert(source)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Transformer.Transform",
			"buffer":   fmt.Sprintf("%T", source),
			"error":    err.Error(),
		}).Debug("Buffer conversion failed")
		return nil, false
	}
	return out, true
}

// resize scales source to size, keeping its buffer kind.
func (t *Transformer) resize(source Buffer, size Size) (Buffer, error) {
	switch buf := source.(type) {
	case *VideoFrame:
		if size.Width > 0xFFFF || size.Height > 0xFFFF {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDimensions, size)
		}
		return t.scaler.Scale(buf, uint16(size.Width), uint16(size.Height))
	case *PixelBuffer:
		return t.scaler.ScalePixelBuffer(buf, size.Width, size.Height)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBuffer, source)
	}
}

// convert produces a BGRA buffer from an I420 frame or a packed buffer.
func (t *Transformer) convert(source Buffer) (*PixelBuffer, error) {
	switch buf := source.(type) {
	case *VideoFrame:
		if buf == nil {
			return nil, ErrNilFrame
		}
		return ConvertI420ToBGRA(buf)
	case *PixelBuffer:
		if buf == nil {
			return nil, ErrNilFrame
		}
		if err := buf.validate(); err != nil {
			return nil, err
		}
		return toBGRA(buf), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBuffer, source)
	}
}

// isNilBuffer reports nil interfaces and typed nil pointers alike.
func isNilBuffer(b Buffer) bool {
	switch buf := b.(type) {
	case nil:
		return true
	case *VideoFrame:
		return buf == nil
	case *PixelBuffer:
		return buf == nil
	default:
		return false
	}
}
