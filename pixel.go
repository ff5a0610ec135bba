package seamcarve

import "image/color"

// PixelContext is passed to a PixelFn for every visited pixel.
type PixelContext struct {
	X, Y   int
	Index  int
	Width  int
	Height int
	Pixels []color.NRGBA
}

func (c *PixelContext) moveTo(x, y int) {
	c.X, c.Y = x, y
	c.Index = y*c.Width + x
}

// Pixel returns the pixel at (x, y), clamping the coordinates to the image edges.
func (c *PixelContext) Pixel(x, y int) color.NRGBA {
	if x < 0 {
		x = 0
	} else if x >= c.Width {
		x = c.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= c.Height {
		y = c.Height - 1
	}
	return c.Pixels[y*c.Width+x]
}

// PixelFn derives a value from a single pixel and its neighborhood.
type PixelFn[T any] func(*PixelContext) T

// Map applies fn over every pixel in row major order and collects the
// results into a buffer of the same size. The source is only read.
func Map[T any](src *PixelBuffer, fn PixelFn[T]) (*Buffer[T], error) {
	if err := src.valid(); err != nil {
		return nil, err
	}
	dst, err := NewBuffer[T](src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	ctx := &PixelContext{Width: src.Width, Height: src.Height, Pixels: src.Data}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			ctx.moveTo(x, y)
			dst.Data[ctx.Index] = fn(ctx)
		}
	}
	return dst, nil
}
