package seamcarve

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esiegel/seamcarve/utils"
)

// State is the stage a resize operation is in.
type State int

const (
	Idle State = iota
	RemovingColumns
	RemovingRows
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RemovingColumns:
		return "removing columns"
	case RemovingRows:
		return "removing rows"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Progress is reported after every removed seam.
type Progress struct {
	State   State
	Removed int
	Total   int
}

// Processor options
type Processor struct {
	NewWidth      int
	NewHeight     int
	EnergyFn      EnergyFn // nil selects NeighborEnergy
	EnergyRefresh int      // 0 reuses the compacted energy grid, FullRefresh recomputes it
	Percentage    bool     // NewWidth and NewHeight are percentages of the source size
	Scale         bool     // downscale proportionally before carving when both edges shrink
	FaceDetector  *FaceDetector
	Mask          *PixelBuffer // pixels brighter than mid gray are protected
	Energy        bool         // Process outputs the energy map instead of the resized image
	Gradient      Gradient
	OnProgress    func(Progress)
}

// Resize shrinks the image to the requested size with the default options.
func Resize(img *PixelBuffer, width, height int) (*PixelBuffer, error) {
	p := &Processor{NewWidth: width, NewHeight: height}
	return p.Resize(img)
}

// Resize is the main entry point for the image resize operation. The columns
// are removed first, then the rows, by carving the image rotated by 90
// degrees. An axis whose target is zero or not smaller than the current size
// is left untouched: the image is never enlarged. The source is not modified.
func (p *Processor) Resize(img *PixelBuffer) (*PixelBuffer, error) {
	if err := img.valid(); err != nil {
		re := &ResizeError{Op: "resize", State: Idle, Err: err}
		if img != nil {
			re.Width, re.Height = img.Width, img.Height
		}
		return nil, re
	}
	res := img.Clone()

	mask, err := p.protectionMask(res)
	if err != nil {
		return nil, &ResizeError{Op: "resize", State: Idle, Width: res.Width, Height: res.Height, Err: err}
	}

	newWidth, newHeight := p.NewWidth, p.NewHeight
	if p.Percentage {
		newWidth = int(float64(res.Width) * float64(newWidth) / 100)
		newHeight = int(float64(res.Height) * float64(newHeight) / 100)
	}
	newWidth, newHeight = target(newWidth, res.Width), target(newHeight, res.Height)
	if p.Scale && newWidth < res.Width && newHeight < res.Height {
		res, mask, err = rescale(res, mask, newWidth, newHeight)
		if err != nil {
			return nil, &ResizeError{Op: "rescale", State: Idle, Width: img.Width, Height: img.Height, Err: err}
		}
	}

	if newWidth < res.Width {
		res, mask, err = p.carve(res, mask, res.Width-newWidth, RemovingColumns)
		if err != nil {
			return nil, err
		}
	}

	if newHeight < res.Height {
		rotated := res.Rotate90()
		res.release()
		if mask != nil {
			mask = mask.Rotate90()
		}
		rotated, _, err = p.carve(rotated, mask, rotated.Width-newHeight, RemovingRows)
		if err != nil {
			return nil, err
		}
		res = rotated.Rotate270()
	}
	return res, nil
}

// target returns the size an axis should be reduced to.
func target(requested, current int) int {
	if requested <= 0 || requested >= current {
		return current
	}
	return requested
}

// carve removes n vertical seams from src.
func (p *Processor) carve(src *PixelBuffer, mask *Buffer[bool], n int, state State) (*PixelBuffer, *Buffer[bool], error) {
	c := NewCarver(src)
	c.EnergyFn = p.EnergyFn
	c.Refresh = p.EnergyRefresh
	c.Mask = mask

	err := c.RemoveColumns(n, func(removed int) {
		if p.OnProgress != nil {
			p.OnProgress(Progress{State: state, Removed: removed, Total: n})
		}
	})
	if err != nil {
		return nil, nil, &ResizeError{Op: "resize", State: state, Width: c.Width, Height: c.Height, Err: err}
	}
	return c.Image(), c.Mask, nil
}

// protectionMask merges the user provided mask with the detected faces.
// It returns nil when there is nothing to protect.
func (p *Processor) protectionMask(img *PixelBuffer) (*Buffer[bool], error) {
	if p.Mask == nil && p.FaceDetector == nil {
		return nil, nil
	}
	mask, err := NewBuffer[bool](img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	if p.Mask != nil {
		if err := p.Mask.valid(); err != nil {
			return nil, fmt.Errorf("mask: %w", err)
		}
		if p.Mask.Width != img.Width || p.Mask.Height != img.Height {
			return nil, fmt.Errorf("mask of %dx%d does not match the %dx%d image",
				p.Mask.Width, p.Mask.Height, img.Width, img.Height)
		}
		for i, c := range p.Mask.Data {
			mask.Data[i] = c.A > 0 && c.R > 127 && c.G > 127 && c.B > 127
		}
	}
	if p.FaceDetector != nil {
		markRects(mask, p.FaceDetector.Detect(img))
	}
	return mask, nil
}

// rescale downscales the image by preserving its aspect ratio until one of
// the edges reaches the requested size, so the seam carving is applied only
// to the remaining pixels. Example: 5000x2500 to 1920x1080 scales to 2160x1080.
func rescale(img *PixelBuffer, mask *Buffer[bool], newWidth, newHeight int) (*PixelBuffer, *Buffer[bool], error) {
	var (
		w  = float64(img.Width)
		h  = float64(img.Height)
		sf = math.Min(w/float64(newWidth), h/float64(newHeight))
		sw = utils.Max(int(math.Round(w/sf)), newWidth)
		sh = utils.Max(int(math.Round(h/sf)), newHeight)
	)
	res, err := FromImage(imaging.Resize(ToImage(img), sw, sh, imaging.Lanczos))
	if err != nil {
		return nil, nil, err
	}
	if mask == nil {
		return res, nil, nil
	}

	src := image.NewGray(image.Rect(0, 0, mask.Width, mask.Height))
	for i, protected := range mask.Data {
		if protected {
			src.Pix[i] = 0xff
		}
	}
	scaled := imaging.Resize(src, sw, sh, imaging.NearestNeighbor)
	m, err := NewBuffer[bool](sw, sh)
	if err != nil {
		return nil, nil, err
	}
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			m.Set(x, y, scaled.Pix[scaled.PixOffset(x, y)] > 0x7f)
		}
	}
	return res, m, nil
}

// EnergyVisualization renders the energy map of the image with the processor energy function.
func (p *Processor) EnergyVisualization(img *PixelBuffer) (*PixelBuffer, error) {
	grad := p.Gradient
	if grad.isZero() {
		grad = DefaultGradient
	}
	return energyVisualization(img, grad, p.EnergyFn)
}

// Process decodes the image from r, resizes it (or renders its energy map)
// and encodes the result into w.
func (p *Processor) Process(r io.Reader, w io.Writer, format Format) error {
	img, err := Decode(r)
	if err != nil {
		return err
	}

	var res *PixelBuffer
	if p.Energy {
		res, err = p.EnergyVisualization(img)
	} else {
		res, err = p.Resize(img)
	}
	if err != nil {
		return err
	}
	return Encode(w, res, format)
}
