package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownBuffer struct{}

func (unknownBuffer) Dimensions() Size { return Size{Width: 16, Height: 16} }

func TestTransformer_ResizeFitsInsideTarget(t *testing.T) {
	transformer := NewTransformer()
	transformer.RequiresResize = true

	out, ok := transformer.Transform(createTestFrame(1280, 720), Size{Width: 640, Height: 480})

	require.True(t, ok)
	assert.Equal(t, 640, out.Width)
	assert.Equal(t, 360, out.Height)
	assert.LessOrEqual(t, out.Width, 640)
	assert.LessOrEqual(t, out.Height, 480)
	assert.InDelta(t, 1280.0/720.0, float64(out.Width)/float64(out.Height), 0.01)
	assert.Equal(t, PixelFormatBGRA, out.Format)
}

func TestTransformer_NoResizeKeepsSourceSize(t *testing.T) {
	transformer := NewTransformer()

	out, ok := transformer.Transform(createTestFrame(320, 240), Size{Width: 64, Height: 48})

	require.True(t, ok)
	assert.Equal(t, 320, out.Width)
	assert.Equal(t, 240, out.Height)
}

func TestTransformer_ResizeFailureFallsBackToSource(t *testing.T) {
	transformer := NewTransformer()
	transformer.RequiresResize = true

	// The fitted size exceeds what an I420 frame can address, so scaling
	// fails and the original buffer is converted.
	out, ok := transformer.Transform(createTestFrame(4, 4), Size{Width: 70000, Height: 70000})

	require.True(t, ok)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 4, out.Height)
}

func TestTransformer_PixelBufferSwapsToBGRA(t *testing.T) {
	transformer := NewTransformer()
	src := NewPixelBuffer(2, 2, PixelFormatRGBA)
	for i := 0; i < len(src.Data); i += 4 {
		src.Data[i], src.Data[i+1], src.Data[i+2], src.Data[i+3] = 1, 2, 3, 4
	}

	out, ok := transformer.Transform(src, Size{Width: 2, Height: 2})

	require.True(t, ok)
	assert.Equal(t, PixelFormatBGRA, out.Format)
	assert.Equal(t, [4]byte{3, 2, 1, 4}, out.At(1, 1))
}

func TestTransformer_FailuresProduceNoOutput(t *testing.T) {
	transformer := NewTransformer()
	transformer.RequiresResize = true

	tests := []struct {
		name   string
		source Buffer
	}{
		{"nil interface", nil},
		{"typed nil frame", (*VideoFrame)(nil)},
		{"typed nil pixel buffer", (*PixelBuffer)(nil)},
		{"unsupported buffer", unknownBuffer{}},
		{"truncated planes", &VideoFrame{Width: 64, Height: 64, YStride: 64, UStride: 32, VStride: 32}},
		{"truncated pixels", &PixelBuffer{Width: 8, Height: 8, Stride: 32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := transformer.Transform(tt.source, Size{Width: 32, Height: 32})
			assert.False(t, ok)
			assert.Nil(t, out)
		})
	}
}
