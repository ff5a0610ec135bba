package seamcarve

import (
	"fmt"
	"image/color"
)

// MaxPixels is the largest number of elements a single buffer may hold.
const MaxPixels = 1 << 28

// Buffer is a row-major grid of Width*Height elements. A buffer has a single
// owner: operations which produce a narrower buffer consume the receiver,
// after which the old buffer reports ErrReleased.
type Buffer[T any] struct {
	Width  int
	Height int
	Data   []T
}

// PixelBuffer holds the image pixels.
type PixelBuffer = Buffer[color.NRGBA]

// EnergyGrid holds one energy value per pixel, indexed like the pixel buffer it was derived from.
type EnergyGrid = Buffer[float64]

// NewBuffer allocates a zeroed buffer of the given size.
func NewBuffer[T any](width, height int) (*Buffer[T], error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return &Buffer[T]{
		Width:  width,
		Height: height,
		Data:   make([]T, width*height),
	}, nil
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDegenerateImage, width, height)
	}
	if width > MaxPixels/height {
		return fmt.Errorf("%w: %dx%d", ErrAllocation, width, height)
	}
	return nil
}

// valid reports whether the buffer can still be used.
func (b *Buffer[T]) valid() error {
	if b == nil || b.Data == nil {
		return ErrReleased
	}
	if len(b.Data) != b.Width*b.Height {
		return fmt.Errorf("buffer of %dx%d holds %d elements", b.Width, b.Height, len(b.Data))
	}
	return checkSize(b.Width, b.Height)
}

// Released reports whether the buffer ownership has been transferred.
func (b *Buffer[T]) Released() bool {
	return b == nil || b.Data == nil
}

func (b *Buffer[T]) release() {
	b.Data = nil
	b.Width, b.Height = 0, 0
}

// At returns the element at (x, y).
func (b *Buffer[T]) At(x, y int) T {
	return b.Data[y*b.Width+x]
}

// Set replaces the element at (x, y).
func (b *Buffer[T]) Set(x, y int, v T) {
	b.Data[y*b.Width+x] = v
}

// Clone returns a deep copy of the buffer.
func (b *Buffer[T]) Clone() *Buffer[T] {
	data := make([]T, len(b.Data))
	copy(data, b.Data)
	return &Buffer[T]{Width: b.Width, Height: b.Height, Data: data}
}

// RemoveSeam removes one element per row and returns a buffer one column
// narrower. Seam entries may come in any order, they are sorted before the
// compaction. The receiver is consumed.
func (b *Buffer[T]) RemoveSeam(seam Seam) (*Buffer[T], error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	if b.Width == 1 {
		return nil, fmt.Errorf("%w: cannot remove the last column", ErrDegenerateImage)
	}
	if len(seam) != b.Height {
		return nil, fmt.Errorf("%w: %d entries for %d rows", ErrInvalidSeam, len(seam), b.Height)
	}

	sorted := seam.Sorted()
	for row, idx := range sorted {
		if idx/b.Width != row {
			return nil, fmt.Errorf("%w: index %d does not belong to row %d", ErrInvalidSeam, idx, row)
		}
	}
	data, err := Compact(b.Data, sorted)
	if err != nil {
		return nil, err
	}
	dst := &Buffer[T]{
		Width:  b.Width - 1,
		Height: b.Height,
		Data:   data,
	}
	b.release()

	return dst, nil
}

// Rotate90 returns a copy of the buffer rotated by 90 degree counter clockwise.
func (b *Buffer[T]) Rotate90() *Buffer[T] {
	dst := &Buffer[T]{Width: b.Height, Height: b.Width, Data: make([]T, len(b.Data))}
	for dstY := 0; dstY < dst.Height; dstY++ {
		for dstX := 0; dstX < dst.Width; dstX++ {
			srcX := b.Width - dstY - 1
			srcY := dstX
			dst.Data[dstY*dst.Width+dstX] = b.Data[srcY*b.Width+srcX]
		}
	}
	return dst
}

// Rotate270 returns a copy of the buffer rotated by 270 degree counter
// clockwise, reverting Rotate90.
func (b *Buffer[T]) Rotate270() *Buffer[T] {
	dst := &Buffer[T]{Width: b.Height, Height: b.Width, Data: make([]T, len(b.Data))}
	for dstY := 0; dstY < dst.Height; dstY++ {
		for dstX := 0; dstX < dst.Width; dstX++ {
			srcX := dstY
			srcY := b.Height - dstX - 1
			dst.Data[dstY*dst.Width+dstX] = b.Data[srcY*b.Width+srcX]
		}
	}
	return dst
}
