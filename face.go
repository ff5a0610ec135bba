package seamcarve

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"

	"github.com/esiegel/seamcarve/utils"
	pigo "github.com/esimov/pigo/core"
)

// FaceDetector finds faces with a pigo cascade classifier, so the carver can
// keep the seams away from them.
type FaceDetector struct {
	MinSize      int
	MaxSize      int // 0 means the longest image edge
	ShiftFactor  float64
	ScaleFactor  float64
	Angle        float64
	IoUThreshold float64
	MinQuality   float32

	classifier *pigo.Pigo
}

// NewFaceDetector unpacks a binary cascade classifier.
func NewFaceDetector(cascade []byte) (fd *FaceDetector, err error) {
	// The header alone holds the tree depth and the number of trees.
	if len(cascade) < 16 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCascade, len(cascade))
	}
	if binary.LittleEndian.Uint32(cascade[12:16]) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrInvalidCascade)
	}
	// pigo indexes the cascade without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			fd, err = nil, fmt.Errorf("%w: %v", ErrInvalidCascade, r)
		}
	}()

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCascade, err)
	}
	return &FaceDetector{
		MinSize:      20,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		MinQuality:   5.0,
		classifier:   classifier,
	}, nil
}

// LoadFaceDetector reads the cascade classifier from a file.
func LoadFaceDetector(path string) (*FaceDetector, error) {
	cascade, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the cascade file: %w", err)
	}
	return NewFaceDetector(cascade)
}

// Detect returns the bounding boxes of the faces found in the image.
func (fd *FaceDetector) Detect(src *PixelBuffer) []image.Rectangle {
	maxSize := fd.MaxSize
	if maxSize <= 0 {
		maxSize = utils.Max(src.Width, src.Height)
	}
	cParams := pigo.CascadeParams{
		MinSize:     fd.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: fd.ShiftFactor,
		ScaleFactor: fd.ScaleFactor,

		ImageParams: pigo.ImageParams{
			Pixels: grayscale(src),
			Rows:   src.Height,
			Cols:   src.Width,
			Dim:    src.Width,
		},
	}

	// The result contains quadruplets representing the row, column, scale and detection score.
	faces := fd.classifier.RunCascade(cParams, fd.Angle)
	faces = fd.classifier.ClusterDetections(faces, fd.IoUThreshold)

	bounds := image.Rect(0, 0, src.Width, src.Height)
	rects := make([]image.Rectangle, 0, len(faces))
	for _, face := range faces {
		if face.Q <= fd.MinQuality {
			continue
		}
		rect := image.Rect(
			face.Col-face.Scale/2,
			face.Row-face.Scale/2,
			face.Col+face.Scale/2,
			face.Row+face.Scale/2,
		).Intersect(bounds)
		if !rect.Empty() {
			rects = append(rects, rect)
		}
	}
	return rects
}

// markRects flags every mask cell covered by one of the rectangles.
func markRects(mask *Buffer[bool], rects []image.Rectangle) {
	bounds := image.Rect(0, 0, mask.Width, mask.Height)
	for _, rect := range rects {
		rect = rect.Intersect(bounds)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				mask.Set(x, y, true)
			}
		}
	}
}
