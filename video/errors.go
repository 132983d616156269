package video

import "errors"

// Sentinel errors for frame scaling and conversion.
var (
	// ErrNilFrame indicates a nil source buffer.
	ErrNilFrame = errors.New("source frame cannot be nil")

	// ErrInvalidDimensions indicates zero or negative frame dimensions.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrOddDimensions indicates a YUV420 target with an odd dimension.
	ErrOddDimensions = errors.New("target dimensions must be even for YUV420")

	// ErrBufferTooSmall indicates plane data shorter than its geometry requires.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrUnsupportedBuffer indicates a Buffer implementation the transformer cannot read.
	ErrUnsupportedBuffer = errors.New("unsupported buffer type")
)
