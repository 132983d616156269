package video

import "fmt"

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether either dimension is zero.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Buffer is a decoded video frame buffer handed over by a media track.
//
// Two concrete buffers exist: *VideoFrame (planar I420) and *PixelBuffer
// (packed 4 bytes per pixel). Anything else is rejected by the Transformer.
type Buffer interface {
	Dimensions() Size
}

// VideoFrame represents a video frame in YUV420 (I420) format.
type VideoFrame struct {
	Width   uint16
	Height  uint16
	Y       []byte // Luminance plane
	U       []byte // Chrominance U plane
	V       []byte // Chrominance V plane
	YStride int    // Stride for Y plane
	UStride int    // Stride for U plane
	VStride int    // Stride for V plane
}

// NewVideoFrame allocates a tightly packed I420 frame.
func NewVideoFrame(width, height uint16) *VideoFrame {
	uvWidth := (int(width) + 1) / 2
	uvHeight := (int(height) + 1) / 2
	return &VideoFrame{
		Width:   width,
		Height:  height,
		YStride: int(width),
		UStride: uvWidth,
		VStride: uvWidth,
		Y:       make([]byte, int(width)*int(height)),
		U:       make([]byte, uvWidth*uvHeight),
		V:       make([]byte, uvWidth*uvHeight),
	}
}

// Dimensions implements Buffer.
func (f *VideoFrame) Dimensions() Size {
	return Size{Width: int(f.Width), Height: int(f.Height)}
}

// validate checks plane sizes against the frame geometry.
func (f *VideoFrame) validate() error {
	if f.Width == 0 || f.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, f.Width, f.Height)
	}
	chromaHeight := (int(f.Height) + 1) / 2
	chromaWidth := (int(f.Width) + 1) / 2
	if f.YStride < int(f.Width) || len(f.Y) < (int(f.Height)-1)*f.YStride+int(f.Width) {
		return fmt.Errorf("%w: Y plane too small (%d bytes, stride %d)", ErrBufferTooSmall, len(f.Y), f.YStride)
	}
	if f.UStride < chromaWidth || len(f.U) < (chromaHeight-1)*f.UStride+chromaWidth {
		return fmt.Errorf("%w: U plane too small (%d bytes, stride %d)", ErrBufferTooSmall, len(f.U), f.UStride)
	}
	if f.VStride < chromaWidth || len(f.V) < (chromaHeight-1)*f.VStride+chromaWidth {
		return fmt.Errorf("%w: V plane too small (%d bytes, stride %d)", ErrBufferTooSmall, len(f.V), f.VStride)
	}
	return nil
}

// PixelFormat identifies the byte order of a packed PixelBuffer.
type PixelFormat int

const (
	// PixelFormatBGRA is 32-bit B, G, R, A.
	PixelFormatBGRA PixelFormat = iota
	// PixelFormatRGBA is 32-bit R, G, B, A.
	PixelFormatRGBA
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatBGRA:
		return "BGRA"
	case PixelFormatRGBA:
		return "RGBA"
	default:
		return "Unknown"
	}
}

// PixelBuffer is a packed, 4 bytes per pixel frame ready for display.
type PixelBuffer struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Data   []byte
}

// NewPixelBuffer allocates a zeroed buffer with a tight stride.
func NewPixelBuffer(width, height int, format PixelFormat) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Stride: width * 4,
		Format: format,
		Data:   make([]byte, width*height*4),
	}
}

// Dimensions implements Buffer.
func (b *PixelBuffer) Dimensions() Size {
	return Size{Width: b.Width, Height: b.Height}
}

// At returns the four bytes of the pixel at (x, y) in the buffer's format.
func (b *PixelBuffer) At(x, y int) [4]byte {
	i := y*b.Stride + x*4
	return [4]byte{b.Data[i], b.Data[i+1], b.Data[i+2], b.Data[i+3]}
}

func (b *PixelBuffer) validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Width, b.Height)
	}
	if b.Stride < b.Width*4 || len(b.Data) < (b.Height-1)*b.Stride+b.Width*4 {
		return fmt.Errorf("%w: pixel data too small (%d bytes, stride %d)", ErrBufferTooSmall, len(b.Data), b.Stride)
	}
	return nil
}
