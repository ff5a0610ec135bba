package seamcarve

import "sort"

// Seam is a connected path holding one flat buffer index per row, starting with row 0.
type Seam []int

// FindSeam walks the cost grid upwards from the cheapest cell of the last
// row. When more cells share the minimum cost the leftmost one is taken.
func (g *CostGrid) FindSeam() Seam {
	last := (g.Height - 1) * g.Width
	idx := last
	for i := last + 1; i < last+g.Width; i++ {
		if g.Cost[i] < g.Cost[idx] {
			idx = i
		}
	}

	seam := make(Seam, g.Height)
	for y := g.Height - 1; y >= 0; y-- {
		seam[y] = idx
		idx = g.Prev[idx]
	}
	return seam
}

// Columns returns the seam column for each row of a buffer of the given width.
func (s Seam) Columns(width int) []int {
	cols := make([]int, len(s))
	for i, idx := range s {
		cols[i] = idx % width
	}
	return cols
}

// Valid reports whether the seam holds exactly one index per row of a
// width x height buffer and consecutive entries are at most one column apart.
func (s Seam) Valid(width, height int) bool {
	if len(s) != height {
		return false
	}
	for y, idx := range s {
		if idx < y*width || idx >= (y+1)*width {
			return false
		}
		if y > 0 {
			dx := idx%width - s[y-1]%width
			if dx < -1 || dx > 1 {
				return false
			}
		}
	}
	return true
}

// Sorted returns a copy of the seam with the indexes in ascending order.
func (s Seam) Sorted() Seam {
	sorted := make(Seam, len(s))
	copy(sorted, s)
	sort.Ints(sorted)
	return sorted
}
