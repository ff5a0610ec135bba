package seamcarve

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Format is an output image encoding.
type Format string

// Supported output formats.
const (
	JPEG Format = "jpg"
	PNG  Format = "png"
	BMP  Format = "bmp"
	GIF  Format = "gif"
)

// FormatFromExt returns the format matching a file name extension.
// An empty extension selects JPEG.
func FormatFromExt(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "", "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "gif":
		return GIF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// FormatFromPath returns the format matching the extension of a file path.
func FormatFromPath(path string) (Format, error) {
	return FormatFromExt(filepath.Ext(path))
}

// Decode reads an image in any of the registered formats (jpeg, png, gif,
// bmp, tiff, webp), applying the EXIF orientation when present.
func Decode(r io.Reader) (*PixelBuffer, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	return FromImage(src)
}

// Encode writes the image to w using the given format.
func Encode(w io.Writer, img *PixelBuffer, format Format) error {
	if err := img.valid(); err != nil {
		return err
	}
	dst := ToImage(img)

	switch format {
	case JPEG:
		return jpeg.Encode(w, dst, &jpeg.Options{Quality: 100})
	case PNG:
		return png.Encode(w, dst)
	case BMP:
		return bmp.Encode(w, dst)
	case GIF:
		return gif.Encode(w, dst, nil)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// FromImage converts any image type to a pixel buffer with min-point at (0, 0).
func FromImage(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	dst, err := NewBuffer[color.NRGBA](bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	minX, minY := bounds.Min.X, bounds.Min.Y

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < dst.Height; y++ {
			si := src.PixOffset(minX, minY+y)
			di := y * dst.Width
			for x := 0; x < dst.Width; x++ {
				p := src.Pix[si : si+4 : si+4]
				dst.Data[di+x] = color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
				si += 4
			}
		}
	case *image.YCbCr:
		for y := 0; y < dst.Height; y++ {
			di := y * dst.Width
			for x := 0; x < dst.Width; x++ {
				iy := src.YOffset(minX+x, minY+y)
				ic := src.COffset(minX+x, minY+y)
				r, g, b := color.YCbCrToRGB(src.Y[iy], src.Cb[ic], src.Cr[ic])
				dst.Data[di+x] = color.NRGBA{R: r, G: g, B: b, A: 0xff}
			}
		}
	default:
		for y := 0; y < dst.Height; y++ {
			di := y * dst.Width
			for x := 0; x < dst.Width; x++ {
				dst.Data[di+x] = color.NRGBAModel.Convert(img.At(minX+x, minY+y)).(color.NRGBA)
			}
		}
	}
	return dst, nil
}

// ToImage converts the pixel buffer to an *image.NRGBA.
func ToImage(b *PixelBuffer) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, c := range b.Data {
		dst.Pix[i*4+0] = c.R
		dst.Pix[i*4+1] = c.G
		dst.Pix[i*4+2] = c.B
		dst.Pix[i*4+3] = c.A
	}
	return dst
}

// grayscale converts the image to grayscale and returns the pixel values
// as a one dimensional array.
func grayscale(src *PixelBuffer) []uint8 {
	gray := make([]uint8, len(src.Data))
	for i, c := range src.Data {
		gray[i] = uint8(math.Min(luminance(c), 255))
	}
	return gray
}
