package seamcarve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dotBuffer returns a 3x3 black image with a white center pixel.
func dotBuffer(t *testing.T) *PixelBuffer {
	t.Helper()
	b := fillBuffer(t, 3, 3, black)
	b.Set(1, 1, white)
	return b
}

func TestEnergy_UniformImageHasNoEnergy(t *testing.T) {
	for name, fn := range map[string]EnergyFn{
		"neighbor": NeighborEnergy,
		"sobel":    SobelEnergy,
	} {
		t.Run(name, func(t *testing.T) {
			energy, err := ComputeEnergy(fillBuffer(t, 5, 4, gray), fn)
			require.NoError(t, err)
			for _, e := range energy.Data {
				assert.InDelta(t, 0, e, 1e-9)
			}
		})
	}
}

func TestEnergy_NeighborEnergy(t *testing.T) {
	energy, err := ComputeEnergy(dotBuffer(t), nil)
	require.NoError(t, err)

	// Every neighbor of the center differs by 3*255, the corners see the
	// center among 3 neighbors and the edges among 5.
	assert.Equal(t, []float64{
		255, 153, 255,
		153, 765, 153,
		255, 153, 255,
	}, energy.Data)
}

func TestEnergy_SinglePixel(t *testing.T) {
	energy, err := ComputeEnergy(fillBuffer(t, 1, 1, white), NeighborEnergy)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, energy.Data)
}

func TestEnergy_SobelEnergy(t *testing.T) {
	// A vertical edge between a black and a white half.
	b := fillBuffer(t, 4, 3, black)
	for y := 0; y < 3; y++ {
		b.Set(2, y, white)
		b.Set(3, y, white)
	}
	energy, err := ComputeEnergy(b, SobelEnergy)
	require.NoError(t, err)

	for y := 0; y < 3; y++ {
		assert.InDelta(t, 0, energy.At(0, y), 1e-9)
		assert.Greater(t, energy.At(1, y), 0.0)
		assert.Greater(t, energy.At(2, y), 0.0)
		assert.InDelta(t, energy.At(1, y), energy.At(2, y), 1e-9)
	}
}

func TestEnergy_MapVisitsRowMajor(t *testing.T) {
	var visited []int
	res, err := Map(fillBuffer(t, 3, 2, black), func(ctx *PixelContext) int {
		visited = append(visited, ctx.Index)
		assert.Equal(t, ctx.Y*ctx.Width+ctx.X, ctx.Index)
		return ctx.X * 10
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, visited)
	assert.Equal(t, []int{0, 10, 20, 0, 10, 20}, res.Data)
}

func TestEnergy_PixelClampsToEdges(t *testing.T) {
	b := intPixels(t)
	ctx := &PixelContext{Width: b.Width, Height: b.Height, Pixels: b.Data}

	assert.Equal(t, b.At(0, 0), ctx.Pixel(-1, -1))
	assert.Equal(t, b.At(2, 1), ctx.Pixel(5, 4))
	assert.Equal(t, b.At(1, 0), ctx.Pixel(1, -3))
}

func TestEnergy_RejectsInvalidValues(t *testing.T) {
	for _, v := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := ComputeEnergy(fillBuffer(t, 2, 2, black), func(*PixelContext) float64 { return v })
		assert.ErrorIs(t, err, ErrInvalidEnergy, "value %v", v)
	}
}

func TestEnergy_ReleasedBuffer(t *testing.T) {
	b := fillBuffer(t, 2, 2, black)
	b.release()

	_, err := ComputeEnergy(b, nil)
	assert.ErrorIs(t, err, ErrReleased)
}

// intPixels returns a 3x2 image whose red channel holds the pixel index.
func intPixels(t *testing.T) *PixelBuffer {
	t.Helper()
	b := fillBuffer(t, 3, 2, black)
	for i := range b.Data {
		b.Data[i].R = uint8(i)
	}
	return b
}
