package seamcarve

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateImage is returned for images with zero width or height.
	ErrDegenerateImage = errors.New("image has zero width or height")
	// ErrAllocation is returned when a buffer would exceed MaxPixels.
	ErrAllocation = errors.New("buffer allocation exceeds the pixel limit")
	// ErrInvalidSeam is returned when the seam indexes are unsorted, duplicated or out of range.
	ErrInvalidSeam = errors.New("invalid seam")
	// ErrInvalidEnergy is returned when an energy function produces a negative, infinite or NaN value.
	ErrInvalidEnergy = errors.New("energy must be a finite, non-negative number")
	// ErrReleased is returned when a buffer is used after its ownership has been transferred.
	ErrReleased = errors.New("buffer has already been released")
	// ErrUnsupportedFormat is returned for unknown output image formats.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrInvalidCascade is returned when the face classifier cannot be unpacked.
	ErrInvalidCascade = errors.New("invalid cascade classifier")
)

// ResizeError describes a failed resize operation. The image held by the
// failing stage is discarded; no partially resized result is returned.
type ResizeError struct {
	Op     string
	State  State
	Width  int
	Height int
	Err    error
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("%s: %v (%s, %dx%d)", e.Op, e.Err, e.State, e.Width, e.Height)
}

func (e *ResizeError) Unwrap() error {
	return e.Err
}
