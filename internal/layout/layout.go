package layout

import "fmt"

// Zone is one rectangular screen-placement region bound to a hardware
// output. Coordinates are percentages of the image dimensions (0–100) so
// a zone renders at the same spot on any display size. Zones are
// immutable once written to a Layout; a pipeline re-run supersedes the
// whole Layout rather than patching zones.
type Zone struct {
	ID string `json:"id"`

	// OutputNumber is the bound hardware channel. Omitted when the
	// roster was exhausted before this zone was reached.
	OutputNumber int `json:"outputNumber,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Label string `json:"label"`

	// Confidence is the recognition tier's own score, 0.0–1.0. Scores
	// from different tiers are not numerically comparable.
	Confidence float64 `json:"confidence"`

	// RecognitionMethod is one of "vision-model", "fallback-ocr",
	// "manual", or "none".
	RecognitionMethod string `json:"recognitionMethod"`
}

// Validate checks the percentage invariants.
func (z Zone) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"x", z.X}, {"y", z.Y}, {"width", z.Width}, {"height", z.Height},
	} {
		if v.val < 0 || v.val > 100 {
			return fmt.Errorf("zone %s: %s = %.2f outside 0–100", z.ID, v.name, v.val)
		}
	}
	if z.X+z.Width > 100 {
		return fmt.Errorf("zone %s: x+width = %.2f exceeds 100", z.ID, z.X+z.Width)
	}
	if z.Y+z.Height > 100 {
		return fmt.Errorf("zone %s: y+height = %.2f exceeds 100", z.ID, z.Y+z.Height)
	}
	return nil
}

// Layout is the persisted floor plan: image metadata plus zones in
// reading order.
type Layout struct {
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	ImageWidth  int    `json:"imageWidth"`
	ImageHeight int    `json:"imageHeight"`
	Zones       []Zone `json:"zones"`
}

// Validate checks every zone and the uniqueness of assigned output
// numbers within the layout.
func (l *Layout) Validate() error {
	seen := make(map[int]string, len(l.Zones))
	for _, z := range l.Zones {
		if err := z.Validate(); err != nil {
			return err
		}
		if z.OutputNumber == 0 {
			continue
		}
		if prev, ok := seen[z.OutputNumber]; ok {
			return fmt.Errorf("output %d assigned to both %s and %s", z.OutputNumber, prev, z.ID)
		}
		seen[z.OutputNumber] = z.ID
	}
	return nil
}
