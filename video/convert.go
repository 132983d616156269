package video

// BT.601 limited-range YCbCr to RGB coefficients in 8.8 fixed point.
const (
	lumaBias   = 16
	chromaBias = 128

	coeffY  = 298 // 255/219 * 256
	coeffRV = 409 // 1.596 * 256
	coeffGU = 100 // 0.391 * 256
	coeffGV = 208 // 0.813 * 256
	coeffBU = 516 // 2.018 * 256

	roundingOffset = 128
)

// ConvertI420ToBGRA converts a planar I420 frame into a packed, fully opaque
// BGRA buffer using integer arithmetic. Each chroma sample covers a 2x2 block
// of luma samples.
func ConvertI420ToBGRA(frame *VideoFrame) (*PixelBuffer, error) {
	if frame == nil {
		return nil, ErrNilFrame
	}
	if err := frame.validate(); err != nil {
		return nil, err
	}

	width := int(frame.Width)
	height := int(frame.Height)
	out := NewPixelBuffer(width, height, PixelFormatBGRA)

	for y := 0; y < height; y++ {
		yRow := frame.Y[y*frame.YStride:]
		uRow := frame.U[(y/2)*frame.UStride:]
		vRow := frame.V[(y/2)*frame.VStride:]
		dst := out.Data[y*out.Stride:]

		for x := 0; x < width; x++ {
			r, g, b := yuvToRGB(yRow[x], uRow[x/2], vRow[x/2])
			i := x * 4
			dst[i] = b
			dst[i+1] = g
			dst[i+2] = r
			dst[i+3] = 255
		}
	}

	return out, nil
}

// yuvToRGB converts one limited-range sample triple.
func yuvToRGB(yValue, uValue, vValue byte) (r, g, b byte) {
	c := int(yValue) - lumaBias
	d := int(uValue) - chromaBias
	e := int(vValue) - chromaBias

	r = clamp((coeffY*c + coeffRV*e + roundingOffset) >> 8)
	g = clamp((coeffY*c - coeffGU*d - coeffGV*e + roundingOffset) >> 8)
	b = clamp((coeffY*c + coeffBU*d + roundingOffset) >> 8)
	return r, g, b
}

// clamp limits a channel value to [0,255].
func clamp(value int) byte {
	if value < 0 {
		return 0
	}
	if value > 255 {
		return 255
	}
	return byte(value)
}

// toBGRA returns buf in BGRA byte order, swapping channels when needed.
func toBGRA(buf *PixelBuffer) *PixelBuffer {
	if buf.Format == PixelFormatBGRA {
		return buf
	}
	out := NewPixelBuffer(buf.Width, buf.Height, PixelFormatBGRA)
	for y := 0; y < buf.Height; y++ {
		src := buf.Data[y*buf.Stride:]
		dst := out.Data[y*out.Stride:]
		for x := 0; x < buf.Width; x++ {
			i := x * 4
			dst[i] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i]
			dst[i+3] = src[i+3]
		}
	}
	return out
}
