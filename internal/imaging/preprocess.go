package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
)

// PrepareForOCR preprocesses a cropped region for the classical OCR tier.
//
// Tesseract performs markedly better on high-contrast grayscale input than
// on the anti-aliased color crops that come out of a floor-plan photo, so
// the fallback recognizer runs every region through this before setting the
// image. The vision tier receives the unmodified color crop.
func PrepareForOCR(img image.Image) image.Image {
	boosted := adjust.Contrast(img, 0.4)
	return effect.Grayscale(boosted)
}

// PrepareForOCRPNG decodes PNG bytes, applies PrepareForOCR, and re-encodes.
// Convenience for recognizers that work on encoded crops.
func PrepareForOCRPNG(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode crop for preprocessing: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, PrepareForOCR(img)); err != nil {
		return nil, fmt.Errorf("encode preprocessed crop: %w", err)
	}
	return buf.Bytes(), nil
}
