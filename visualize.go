package seamcarve

import (
	"fmt"
	"image/color"
	"math"

	"github.com/esiegel/seamcarve/utils"
)

// Gradient is the pair of colors the energy values are mapped onto,
// from the lowest to the highest energy.
type Gradient struct {
	Start color.NRGBA
	End   color.NRGBA
}

// DefaultGradient maps low energy to blue and high energy to orange.
var DefaultGradient = Gradient{
	Start: color.NRGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	End:   color.NRGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff},
}

// ParseGradient builds a gradient out of two hex colors.
func ParseGradient(start, end string) (Gradient, error) {
	s, err := utils.HexToRGBA(start)
	if err != nil {
		return Gradient{}, fmt.Errorf("start color: %w", err)
	}
	e, err := utils.HexToRGBA(end)
	if err != nil {
		return Gradient{}, fmt.Errorf("end color: %w", err)
	}
	return Gradient{Start: s, End: e}, nil
}

// At interpolates linearly between the gradient colors, t being clamped to [0, 1].
func (g Gradient) At(t float64) color.NRGBA {
	t = utils.Clamp(t, 0, 1)
	lerp := func(s, e uint8) uint8 {
		return uint8(float64(s) + (float64(e)-float64(s))*t)
	}
	return color.NRGBA{
		R: lerp(g.Start.R, g.End.R),
		G: lerp(g.Start.G, g.End.G),
		B: lerp(g.Start.B, g.End.B),
		A: 0xff,
	}
}

func (g Gradient) isZero() bool {
	return g == Gradient{}
}

// EnergyVisualization renders the energy map of the image, mapping each
// value between the observed minimum and maximum onto the gradient.
// An image without any energy variation renders with the gradient start color.
func EnergyVisualization(src *PixelBuffer, grad Gradient) (*PixelBuffer, error) {
	return energyVisualization(src, grad, NeighborEnergy)
}

func energyVisualization(src *PixelBuffer, grad Gradient, fn EnergyFn) (*PixelBuffer, error) {
	energy, err := ComputeEnergy(src, fn)
	if err != nil {
		return nil, err
	}
	min, max := math.Inf(1), math.Inf(-1)
	for _, e := range energy.Data {
		min = math.Min(min, e)
		max = math.Max(max, e)
	}
	span := max - min

	dst, err := NewBuffer[color.NRGBA](energy.Width, energy.Height)
	if err != nil {
		return nil, err
	}
	for i, e := range energy.Data {
		var t float64
		if span > 0 {
			t = (e - min) / span
		}
		dst.Data[i] = grad.At(t)
	}
	return dst, nil
}
