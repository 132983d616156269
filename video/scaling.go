package video

import (
	"fmt"
)

// minScaledDimension is the smallest even edge a scaled I420 frame may have.
const minScaledDimension = 2

// Scaler provides video frame scaling functionality.
//
// I420 frames are scaled plane by plane and packed pixel buffers channel by
// channel, both with bilinear interpolation.
type Scaler struct{}

// NewScaler creates a new video frame scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Scale resizes a YUV420 video frame to the specified dimensions.
//
// Both target dimensions must be even so that chroma subsampling stays
// aligned. A same-size request returns a deep copy.
func (s *Scaler) Scale(frame *VideoFrame, targetWidth, targetHeight uint16) (*VideoFrame, error) {
	if frame == nil {
		return nil, ErrNilFrame
	}
	if err := frame.validate(); err != nil {
		return nil, err
	}

	if targetWidth == 0 || targetHeight == 0 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrInvalidDimensions, targetWidth, targetHeight)
	}
	if targetWidth%2 != 0 || targetHeight%2 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrOddDimensions, targetWidth, targetHeight)
	}
	if targetWidth < minScaledDimension || targetHeight < minScaledDimension {
		return nil, fmt.Errorf("%w: target %dx%d below %dx%d", ErrInvalidDimensions,
			targetWidth, targetHeight, minScaledDimension, minScaledDimension)
	}

	if frame.Width == targetWidth && frame.Height == targetHeight {
		return copyFrame(frame), nil
	}

	result := NewVideoFrame(targetWidth, targetHeight)

	s.scalePlane(frame.Y, int(frame.Width), int(frame.Height), frame.YStride,
		result.Y, int(targetWidth), int(targetHeight), result.YStride)

	srcUVWidth := (int(frame.Width) + 1) / 2
	srcUVHeight := (int(frame.Height) + 1) / 2
	dstUVWidth := int(targetWidth) / 2
	dstUVHeight := int(targetHeight) / 2
	s.scalePlane(frame.U, srcUVWidth, srcUVHeight, frame.UStride,
		result.U, dstUVWidth, dstUVHeight, result.UStride)
	s.scalePlane(frame.V, srcUVWidth, srcUVHeight, frame.VStride,
		result.V, dstUVWidth, dstUVHeight, result.VStride)

	return result, nil
}

// ScalePixelBuffer resizes a packed 4-byte-per-pixel buffer, keeping its format.
func (s *Scaler) ScalePixelBuffer(buf *PixelBuffer, targetWidth, targetHeight int) (*PixelBuffer, error) {
	if buf == nil {
		return nil, ErrNilFrame
	}
	if err := buf.validate(); err != nil {
		return nil, err
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrInvalidDimensions, targetWidth, targetHeight)
	}

	result := NewPixelBuffer(targetWidth, targetHeight, buf.Format)
	if buf.Width == targetWidth && buf.Height == targetHeight {
		for y := 0; y < buf.Height; y++ {
			copy(result.Data[y*result.Stride:(y+1)*result.Stride], buf.Data[y*buf.Stride:])
		}
		return result, nil
	}

	xRatio := float64(buf.Width) / float64(targetWidth)
	yRatio := float64(buf.Height) / float64(targetHeight)

	for y := 0; y < targetHeight; y++ {
		srcY := float64(y) * yRatio
		y1 := int(srcY)
		y2 := min(y1+1, buf.Height-1)
		fy := srcY - float64(y1)
		for x := 0; x < targetWidth; x++ {
			srcX := float64(x) * xRatio
			x1 := int(srcX)
			x2 := min(x1+1, buf.Width-1)
			fx := srcX - float64(x1)

			for c := 0; c < 4; c++ {
				p11 := float64(buf.Data[y1*buf.Stride+x1*4+c])
				p12 := float64(buf.Data[y1*buf.Stride+x2*4+c])
				p21 := float64(buf.Data[y2*buf.Stride+x1*4+c])
				p22 := float64(buf.Data[y2*buf.Stride+x2*4+c])

				top := p11*(1-fx) + p12*fx
				bottom := p21*(1-fx) + p22*fx
				result.Data[y*result.Stride+x*4+c] = byte(top*(1-fy) + bottom*fy + 0.5)
			}
		}
	}

	return result, nil
}

// scalePlane scales a single plane using bilinear interpolation.
// Callers validate both buffers against their geometry beforehand.
func (s *Scaler) scalePlane(src []byte, srcWidth, srcHeight, srcStride int,
	dst []byte, dstWidth, dstHeight, dstStride int) {

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		srcY := float64(y) * yRatio
		y1 := int(srcY)
		y2 := y1 + 1
		if y2 >= srcHeight {
			y2 = srcHeight - 1
		}
		fy := srcY - float64(y1)

		for x := 0; x < dstWidth; x++ {
			srcX := float64(x) * xRatio
			x1 := int(srcX)
			x2 := x1 + 1
			if x2 >= srcWidth {
				x2 = srcWidth - 1
			}
			fx := srcX - float64(x1)

			p11 := float64(src[y1*srcStride+x1])
			p12 := float64(src[y1*srcStride+x2])
			p21 := float64(src[y2*srcStride+x1])
			p22 := float64(src[y2*srcStride+x2])

			top := p11*(1-fx) + p12*fx
			bottom := p21*(1-fx) + p22*fx
			dst[y*dstStride+x] = byte(top*(1-fy) + bottom*fy + 0.5) // Round to nearest
		}
	}
}

// FitInside returns the largest size with the source's aspect ratio that fits
// within container, rounded down to even edges (minimum 2x2).
//
// A zero source or container yields the container unchanged.
func FitInside(source, container Size) Size {
	if source.IsZero() || container.IsZero() {
		return container
	}

	var fitted Size
	// Compare aspect ratios with integers: source is relatively wider when
	// sw/sh >= cw/ch.
	if int64(source.Width)*int64(container.Height) >= int64(source.Height)*int64(container.Width) {
		fitted = Size{
			Width:  container.Width,
			Height: int(int64(source.Height) * int64(container.Width) / int64(source.Width)),
		}
	} else {
		fitted = Size{
			Width:  int(int64(source.Width) * int64(container.Height) / int64(source.Height)),
			Height: container.Height,
		}
	}

	fitted.Width = max(fitted.Width&^1, minScaledDimension)
	fitted.Height = max(fitted.Height&^1, minScaledDimension)
	return fitted
}

// copyFrame creates a deep copy of a video frame.
func copyFrame(frame *VideoFrame) *VideoFrame {
	return &VideoFrame{
		Width:   frame.Width,
		Height:  frame.Height,
		YStride: frame.YStride,
		UStride: frame.UStride,
		VStride: frame.VStride,
		Y:       append([]byte(nil), frame.Y...),
		U:       append([]byte(nil), frame.U...),
		V:       append([]byte(nil), frame.V...),
	}
}
