package seamcarve

import (
	"fmt"
	"math"
)

// FullRefresh makes the carver recompute the whole energy grid after every removed seam.
const FullRefresh = -1

// ProtectedEnergy is assigned to the pixels covered by the protection mask.
const ProtectedEnergy = math.MaxFloat32

// Carver removes vertical seams from an image it exclusively owns.
//
// Only the first seam is found on a freshly computed energy grid. The
// following ones reuse the previous grid compacted by the removed seam,
// which leaves the energy of the pixels next to the seam slightly stale.
// Refresh bounds that error by recomputing the energy within Refresh columns
// of each removed seam, FullRefresh recomputes the whole grid.
type Carver struct {
	Width    int
	Height   int
	EnergyFn EnergyFn
	Refresh  int
	Mask     *Buffer[bool]

	pixels *PixelBuffer
	energy *EnergyGrid
	grid   *CostGrid
}

// NewCarver takes ownership of src and returns a carver working on it.
func NewCarver(src *PixelBuffer) *Carver {
	return &Carver{
		Width:  src.Width,
		Height: src.Height,
		pixels: src,
	}
}

// ComputeSeams computes the cost grid of the current image. The energy grid
// is computed from the pixels only when no previous grid can be reused.
func (c *Carver) ComputeSeams() (*CostGrid, error) {
	if c.energy == nil {
		energy, err := ComputeEnergy(c.pixels, c.EnergyFn)
		if err != nil {
			return nil, err
		}
		c.energy = energy
		if err := c.protect(); err != nil {
			return nil, err
		}
	}

	grid, err := BuildCostGrid(c.energy)
	if err != nil {
		return nil, err
	}
	c.grid = grid

	return grid, nil
}

// FindLowestEnergySeam returns the vertical seam of minimum cumulative energy.
func (c *Carver) FindLowestEnergySeam() (Seam, error) {
	if c.grid == nil {
		if _, err := c.ComputeSeams(); err != nil {
			return nil, err
		}
	}
	return c.grid.FindSeam(), nil
}

// RemoveSeam removes the seam from the image, the protection mask and the
// energy grid, making all of them one column narrower.
func (c *Carver) RemoveSeam(seam Seam) error {
	if !seam.Valid(c.Width, c.Height) {
		return fmt.Errorf("%w: not a connected seam of a %dx%d image", ErrInvalidSeam, c.Width, c.Height)
	}
	// Everything is checked before the pixels are consumed, so a failure
	// leaves the carver untouched.
	if err := checkLayer("image", c.pixels, c.Width, c.Height); err != nil {
		return err
	}
	if c.Mask != nil {
		if err := checkLayer("mask", c.Mask, c.Width, c.Height); err != nil {
			return err
		}
	}
	if c.energy != nil {
		if err := checkLayer("energy grid", c.energy, c.Width, c.Height); err != nil {
			return err
		}
	}
	cols := seam.Columns(c.Width)

	pixels, err := c.pixels.RemoveSeam(seam)
	if err != nil {
		return err
	}
	c.pixels = pixels

	if c.Mask != nil {
		mask, err := c.Mask.RemoveSeam(seam)
		if err != nil {
			return err
		}
		c.Mask = mask
	}

	if c.energy != nil {
		if c.Refresh < 0 {
			c.energy.release()
			c.energy = nil
		} else {
			energy, err := c.energy.RemoveSeam(seam)
			if err != nil {
				return err
			}
			c.energy = energy
		}
	}
	c.Width--
	c.grid = nil

	if c.energy != nil && c.Refresh > 0 {
		fn := c.EnergyFn
		if fn == nil {
			fn = NeighborEnergy
		}
		if err := refreshEnergy(c.pixels, c.energy, cols, c.Refresh, fn); err != nil {
			return err
		}
		return c.protect()
	}
	return nil
}

// RemoveColumns removes n vertical seams one after the other.
// The progress callback, when not nil, receives the number of removed seams.
func (c *Carver) RemoveColumns(n int, progress func(removed int)) error {
	if n >= c.Width {
		return fmt.Errorf("%w: cannot remove %d columns out of %d", ErrDegenerateImage, n, c.Width)
	}
	for i := 0; i < n; i++ {
		seam, err := c.FindLowestEnergySeam()
		if err != nil {
			return err
		}
		if err := c.RemoveSeam(seam); err != nil {
			return err
		}
		if progress != nil {
			progress(i + 1)
		}
	}
	return nil
}

// Image hands the carved image over to the caller. The carver must not be used afterwards.
func (c *Carver) Image() *PixelBuffer {
	img := c.pixels
	c.pixels, c.energy, c.grid = nil, nil, nil
	return img
}

// protect raises the energy of the masked pixels above any computed value.
func (c *Carver) protect() error {
	if c.Mask == nil {
		return nil
	}
	if c.Mask.Width != c.energy.Width || c.Mask.Height != c.energy.Height {
		return fmt.Errorf("mask of %dx%d does not match the %dx%d image",
			c.Mask.Width, c.Mask.Height, c.energy.Width, c.energy.Height)
	}
	for i, protected := range c.Mask.Data {
		if protected {
			c.energy.Data[i] = ProtectedEnergy
		}
	}
	return nil
}

// checkLayer verifies that a buffer carried along with the image can be
// compacted by a seam of the current image.
func checkLayer[T any](name string, b *Buffer[T], width, height int) error {
	if err := b.valid(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if b.Width != width || b.Height != height {
		return fmt.Errorf("%s of %dx%d does not match the %dx%d image", name, b.Width, b.Height, width, height)
	}
	return nil
}
