// Package video implements the frame pipeline of the picture-in-picture
// window.
//
// Frames arrive from the enabled media track as planar I420 (*VideoFrame) or
// packed (*PixelBuffer) buffers and leave as BGRA pixel buffers sized for the
// floating window:
//
//	Track frame → FramePolicy (skip?) → Scaler (fit inside) → I420→BGRA → Sink
//
// # Frame Policy
//
// With widthRatio = source.Width/window.Width and heightRatio likewise:
//
//   - frames are downsampled when either ratio is >= 1
//   - when either ratio is >= 15 only every (N+1)th frame is processed,
//     where N = max(1, int(max(widthRatio, heightRatio))/2)
//
// A new frame size or a track switch restarts the skip counter.
//
// # Conversion
//
// ConvertI420ToBGRA uses the BT.601 limited-range integer transform and
// clamps every channel to [0,255]:
//
//	C = Y - 16, D = U - 128, E = V - 128
//	R = (298C + 409E + 128) >> 8
//	G = (298C - 100D - 208E + 128) >> 8
//	B = (298C + 516D + 128) >> 8
//
// # Failure Handling
//
// Transformer.Transform returns (nil, false) instead of an error. The
// Renderer drops such frames, and frames arriving while a conversion is in
// flight, without retrying.
//
// # Thread Safety
//
// Renderer is safe for concurrent use. Scaler is stateless. FramePolicy and
// Transformer are not thread-safe and are owned by a single goroutine.
package video
