package seamcarve

import (
	"fmt"
	"image/color"
	"math"

	"github.com/esiegel/seamcarve/utils"
)

// EnergyFn computes the importance of a single pixel.
type EnergyFn = PixelFn[float64]

// NeighborEnergy sums the absolute RGB differences between the pixel and each
// of its up to 8 neighbors, divided by the number of neighbors examined, so
// border pixels are not penalized. A lone pixel has zero energy.
func NeighborEnergy(ctx *PixelContext) float64 {
	var (
		px  = ctx.Pixels[ctx.Index]
		sum int
		n   int
	)
	for y := ctx.Y - 1; y <= ctx.Y+1; y++ {
		if y < 0 || y >= ctx.Height {
			continue
		}
		for x := ctx.X - 1; x <= ctx.X+1; x++ {
			if x < 0 || x >= ctx.Width || (x == ctx.X && y == ctx.Y) {
				continue
			}
			n++
			sum += colorDiff(px, ctx.Pixels[y*ctx.Width+x])
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func colorDiff(a, b color.NRGBA) int {
	return utils.Abs(int(a.R)-int(b.R)) +
		utils.Abs(int(a.G)-int(b.G)) +
		utils.Abs(int(a.B)-int(b.B))
}

type kernel [3][3]int

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// SobelEnergy is the gradient magnitude of the pixel luminance.
// Pixels outside of the image are replaced by the nearest edge pixel.
// See https://en.wikipedia.org/wiki/Sobel_operator
func SobelEnergy(ctx *PixelContext) float64 {
	var sumX, sumY float64
	for ky := 0; ky < 3; ky++ {
		for kx := 0; kx < 3; kx++ {
			lum := luminance(ctx.Pixel(ctx.X+kx-1, ctx.Y+ky-1))
			sumX += lum * float64(kernelX[ky][kx])
			sumY += lum * float64(kernelY[ky][kx])
		}
	}
	return math.Sqrt(sumX*sumX + sumY*sumY)
}

// luminance returns the Rec. 601 luma of the pixel.
func luminance(c color.NRGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// ComputeEnergy builds the energy grid of the whole image.
// A nil fn selects NeighborEnergy.
func ComputeEnergy(src *PixelBuffer, fn EnergyFn) (*EnergyGrid, error) {
	if fn == nil {
		fn = NeighborEnergy
	}
	energy, err := Map(src, fn)
	if err != nil {
		return nil, err
	}
	for i, e := range energy.Data {
		if err := checkEnergy(e); err != nil {
			return nil, fmt.Errorf("pixel %d: %w", i, err)
		}
	}
	return energy, nil
}

func checkEnergy(e float64) error {
	if e < 0 || math.IsNaN(e) || math.IsInf(e, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidEnergy, e)
	}
	return nil
}

// refreshEnergy recomputes the energy of the pixels lying within radius
// columns of the removed seam. The columns are given in the coordinates of
// the buffer before the removal; the pixels right of the seam moved one
// column to the left.
func refreshEnergy(src *PixelBuffer, energy *EnergyGrid, cols []int, radius int, fn EnergyFn) error {
	ctx := &PixelContext{Width: src.Width, Height: src.Height, Pixels: src.Data}
	for y, col := range cols {
		from := utils.Max(col-radius, 0)
		to := utils.Min(col+radius-1, src.Width-1)
		for x := from; x <= to; x++ {
			ctx.moveTo(x, y)
			e := fn(ctx)
			if err := checkEnergy(e); err != nil {
				return err
			}
			energy.Data[ctx.Index] = e
		}
	}
	return nil
}
