package video

// createTestFrame builds a tightly packed I420 frame with a luma gradient
// and neutral chroma.
func createTestFrame(width, height uint16) *VideoFrame {
	frame := NewVideoFrame(width, height)
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			frame.Y[y*frame.YStride+x] = byte((x + y) % 256)
		}
	}
	for i := range frame.U {
		frame.U[i] = 128
		frame.V[i] = 128
	}
	return frame
}

// createSolidFrame builds an I420 frame filled with a single YUV sample.
func createSolidFrame(width, height uint16, y, u, v byte) *VideoFrame {
	frame := NewVideoFrame(width, height)
	for i := range frame.Y {
		frame.Y[i] = y
	}
	for i := range frame.U {
		frame.U[i] = u
		frame.V[i] = v
	}
	return frame
}
