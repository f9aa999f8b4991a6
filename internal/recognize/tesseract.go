package recognize

import (
	"context"
	"errors"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/barsignal/tvlayout/internal/imaging"
)

// fallbackConfidence is used when Tesseract returns text but word-level
// confidence extraction fails (version-dependent behavior).
const fallbackConfidence = 0.6

// Tesseract is the fallback recognition tier: a local, synchronous,
// deterministic OCR pass over the preprocessed crop. Lower accuracy than
// the vision tier, much lower latency, no network.
type Tesseract struct {
	language string
}

// NewTesseract builds the fallback tier. language is a Tesseract language
// code; labels are English alphanumerics, so "eng" is the usual choice.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

func (t *Tesseract) Method() Method { return MethodFallback }

// Recognize runs Tesseract over the grayscale-boosted crop. The character
// whitelist and single-line page segmentation are tuned for short marker
// labels; this is not a general-purpose text reader.
func (t *Tesseract) Recognize(ctx context.Context, cropPNG []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	prepared, err := imaging.PrepareForOCRPNG(cropPNG)
	if err != nil {
		return Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return Result{}, fmt.Errorf("tesseract: set language: %w", err)
	}
	if err := client.SetWhitelist("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789# -"); err != nil {
		return Result{}, fmt.Errorf("tesseract: set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return Result{}, fmt.Errorf("tesseract: set page seg mode: %w", err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return Result{}, fmt.Errorf("tesseract: set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: %w", err)
	}

	label, ok := ParseLabel(text)
	if !ok {
		return Result{}, errors.New("tesseract: no label in output")
	}

	return Result{Text: label, Confidence: wordConfidence(client)}, nil
}

// wordConfidence averages Tesseract's word confidences for the region.
func wordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return fallbackConfidence
	}
	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	return sum / float64(len(boxes)) / 100.0
}
