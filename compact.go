package seamcarve

import "fmt"

// Compact copies src into a new slice leaving out the elements at the given
// indexes. The indexes must be sorted ascending, unique and within range.
// The copy is done in a single pass, moving each run between two removal
// points left by the number of elements removed so far.
func Compact[T any](src []T, indexes []int) ([]T, error) {
	if len(indexes) > len(src) {
		return nil, fmt.Errorf("%w: %d indexes for %d elements", ErrInvalidSeam, len(indexes), len(src))
	}
	dst := make([]T, len(src)-len(indexes))

	var next, n int
	for _, idx := range indexes {
		if idx < next || idx >= len(src) {
			return nil, fmt.Errorf("%w: index %d out of order or range", ErrInvalidSeam, idx)
		}
		n += copy(dst[n:], src[next:idx])
		next = idx + 1
	}
	copy(dst[n:], src[next:])

	return dst, nil
}
