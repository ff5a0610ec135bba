package seamcarve

import (
	"math"

	"github.com/esiegel/seamcarve/utils"
)

// CostGrid holds the cumulative minimum energy of any seam ending at each
// cell together with the flat index of the predecessor cell in the row above.
// Cells of the first row have no predecessor and point to -1.
type CostGrid struct {
	Width  int
	Height int
	Cost   []float64
	Prev   []int
}

// get returns the cumulative cost at (x, y).
func (g *CostGrid) get(x, y int) float64 {
	return g.Cost[x+y*g.Width]
}

// BuildCostGrid computes the cumulative minimum energy M for all the possible
// connected seams:
//   - the first row is the energy itself;
//   - every other cell sums its energy with the minimum of the up to three
//     neighboring cells from the previous row.
//
// The candidates are scanned from left to right and a later candidate equal
// to the current minimum replaces it, so ties resolve towards the right.
func BuildCostGrid(energy *EnergyGrid) (*CostGrid, error) {
	if err := energy.valid(); err != nil {
		return nil, err
	}
	width, height := energy.Width, energy.Height
	g := &CostGrid{
		Width:  width,
		Height: height,
		Cost:   make([]float64, width*height),
		Prev:   make([]int, width*height),
	}
	copy(g.Cost[:width], energy.Data[:width])
	for x := 0; x < width; x++ {
		g.Prev[x] = -1
	}

	for y := 1; y < height; y++ {
		row, above := y*width, (y-1)*width
		for x := 0; x < width; x++ {
			min, prev := math.Inf(1), -1
			for c := utils.Max(x-1, 0); c <= utils.Min(x+1, width-1); c++ {
				if cost := g.Cost[above+c]; cost <= min {
					min, prev = cost, above+c
				}
			}
			g.Cost[row+x] = energy.Data[row+x] + min
			g.Prev[row+x] = prev
		}
	}
	return g, nil
}
