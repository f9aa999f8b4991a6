package detection

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Params holds every tunable constant of the rectangle detector.
//
// The defaults are tuned for saturated red markers drawn on a printed floor
// plan photographed at a few megapixels. Deployments with a different
// marker color should either adjust the channel thresholds or set
// TargetColor for perceptual matching.
type Params struct {
	// Stride is the sampling step in pixels. The scanner visits every
	// Stride-th pixel in both axes; 5–10 balances recall against scan
	// cost on multi-megapixel images.
	Stride int `json:"stride"`

	// RedMin, GreenMax, BlueMax classify a sample as annotation color:
	// red at or above RedMin with green and blue at or below their caps.
	// Used when TargetColor is empty.
	RedMin   uint8 `json:"red_min"`
	GreenMax uint8 `json:"green_max"`
	BlueMax  uint8 `json:"blue_max"`

	// TargetColor optionally replaces the channel thresholds with
	// perceptual matching: a sample qualifies when its CIE-Lab distance
	// to this hex color (e.g. "#E02020") is below MaxColorDistance.
	TargetColor      string  `json:"target_color,omitempty"`
	MaxColorDistance float64 `json:"max_color_distance,omitempty"`

	// ClusterRadius is the single-link chaining distance in pixels. It
	// must be large relative to Stride so that a rectangle's four sparse
	// borders still chain into one cluster.
	ClusterRadius int `json:"cluster_radius"`

	// MinClusterSize discards clusters with fewer samples than this,
	// rejecting stray marks and color noise that are not TV markers.
	MinClusterSize int `json:"min_cluster_size"`

	// RowTolerance is the reading-order band in pixels: two rectangles
	// whose vertical centers differ by less than this are the same row.
	RowTolerance int `json:"row_tolerance"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Stride:           8,
		RedMin:           200,
		GreenMax:         80,
		BlueMax:          80,
		MaxColorDistance: 0.15,
		ClusterRadius:    150,
		MinClusterSize:   10,
		RowTolerance:     50,
	}
}

// Validate clamps out-of-range values to safe defaults and verifies
// TargetColor parses when set.
func (p *Params) Validate() error {
	def := DefaultParams()
	if p.Stride < 1 {
		p.Stride = def.Stride
	}
	if p.ClusterRadius < p.Stride {
		p.ClusterRadius = def.ClusterRadius
	}
	if p.MinClusterSize < 1 {
		p.MinClusterSize = def.MinClusterSize
	}
	if p.RowTolerance < 1 {
		p.RowTolerance = def.RowTolerance
	}
	if p.TargetColor != "" {
		if _, err := colorful.Hex(p.TargetColor); err != nil {
			return fmt.Errorf("invalid target_color %q: %w", p.TargetColor, err)
		}
		if p.MaxColorDistance <= 0 {
			p.MaxColorDistance = def.MaxColorDistance
		}
	}
	return nil
}
