package recognize

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Method identifies which recognition tier produced a label.
type Method string

const (
	// MethodVision marks labels read by the vision-model tier.
	MethodVision Method = "vision-model"

	// MethodFallback marks labels read by the classical OCR tier.
	MethodFallback Method = "fallback-ocr"

	// MethodManual marks labels entered by an operator. Never produced
	// by this package; carried so persisted layouts keep the value.
	MethodManual Method = "manual"

	// MethodNone marks zones where every tier failed.
	MethodNone Method = "none"
)

// Result is one tier's answer for one cropped region.
type Result struct {
	Text       string
	Confidence float64
}

// Recognizer is the capability interface every recognition tier
// implements. Recognize receives a PNG-encoded crop of the marker region
// (with surrounding context) and returns a candidate label with the
// tier's own confidence. Implementations must honor ctx cancellation for
// any blocking work.
type Recognizer interface {
	// Method identifies the tier in extraction results.
	Method() Method

	Recognize(ctx context.Context, cropPNG []byte) (Result, error)
}

// TimeoutError reports a tier that exceeded its per-zone deadline. It is
// recovered locally (the orchestrator falls through to the next tier)
// and never escalates to a pipeline failure.
type TimeoutError struct {
	Tier Method
	Err  error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("recognition tier %s timed out: %v", e.Tier, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Label patterns, most specific first. Providers return anything from a
// bare "TV 05" to a sentence of prose around it; the first digit run in a
// recognized pattern wins.
var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`TV\s*-?\s*0*(\d+)`),
	regexp.MustCompile(`#\s*0*(\d+)`),
	regexp.MustCompile(`(\d+)`),
}

// ParseLabel extracts a TV label from whatever text a recognition
// provider returned and normalizes it to the canonical "TV NN" form.
// Returns ok=false when no label-like token is present.
func ParseLabel(raw string) (label string, ok bool) {
	for _, line := range strings.Split(raw, "\n") {
		text := strings.ToUpper(strings.TrimSpace(line))
		if text == "" {
			continue
		}
		for _, pattern := range labelPatterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return fmt.Sprintf("TV %02d", n), true
		}
	}
	return "", false
}
