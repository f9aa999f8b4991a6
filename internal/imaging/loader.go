package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
)

// DecodeError reports an upload that cannot be processed: either the bytes
// are not a supported raster format, or the image decoded to a degenerate
// size. It is terminal: the operator must re-upload, there is no retry.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode layout image: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode layout image: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Frame is a decoded layout image in a normalized representation.
//
// Pix is always an NRGBA clone of the source, so downstream stages can read
// a row-major 4-byte-per-pixel buffer regardless of what format the upload
// was in. Channels records the channel count of the source image (3 for
// opaque formats such as JPEG, 4 when the source carried an alpha channel);
// alpha is ignored by every downstream stage.
type Frame struct {
	Pix      *image.NRGBA
	Width    int
	Height   int
	Channels int
}

// RGBAt returns the 8-bit color components at (x, y).
// No bounds checking is performed; callers iterate within Frame dimensions.
func (f *Frame) RGBAt(x, y int) (r, g, b uint8) {
	i := f.Pix.PixOffset(x, y)
	return f.Pix.Pix[i], f.Pix.Pix[i+1], f.Pix.Pix[i+2]
}

// Load reads and decodes a layout image from disk.
//
// Returns a *DecodeError if the file cannot be read, is not a supported
// raster format, or decodes to a degenerate size (width or height ≤ 1).
func Load(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Reason: "read file", Err: err}
	}
	return Decode(data)
}

// Decode decodes an in-memory image upload into a Frame.
//
// Supported formats are PNG, JPEG, and GIF. Images where either dimension
// is one pixel or less are rejected with a *DecodeError: that is the
// signature of a truncated upload, not a real floor plan.
func Decode(data []byte) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "unsupported image data", Err: err}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 1 || h <= 1 {
		return nil, &DecodeError{Reason: fmt.Sprintf("degenerate image size %dx%d", w, h)}
	}

	return &Frame{
		Pix:      imaging.Clone(img),
		Width:    w,
		Height:   h,
		Channels: sourceChannels(img),
	}, nil
}

// sourceChannels reports the channel count of the decoded source type.
// YCbCr (JPEG), Gray, and CMYK sources carry no alpha.
func sourceChannels(img image.Image) int {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return 3
	default:
		return 4
	}
}
