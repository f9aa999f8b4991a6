package detection

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/barsignal/tvlayout/internal/imaging"
)

// Rect is the bounding box of one spatial cluster of annotation-colored
// samples, in absolute pixel coordinates. MinX < MaxX and MinY < MaxY
// always hold for rects returned by Detect.
type Rect struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width returns the horizontal extent in pixels.
func (r Rect) Width() int { return r.MaxX - r.MinX }

// Height returns the vertical extent in pixels.
func (r Rect) Height() int { return r.MaxY - r.MinY }

// CenterY returns the vertical center, used for row bucketing.
func (r Rect) CenterY() int { return (r.MinY + r.MaxY) / 2 }

// CenterX returns the horizontal center.
func (r Rect) CenterX() int { return (r.MinX + r.MaxX) / 2 }

// Bounds returns the rect as a standard image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// Detector finds annotation rectangles in a decoded frame.
type Detector struct {
	params Params
	target *colorful.Color
}

// New builds a Detector from validated params.
func New(params Params) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	d := &Detector{params: params}
	if params.TargetColor != "" {
		c, err := colorful.Hex(params.TargetColor)
		if err != nil {
			return nil, err
		}
		d.target = &c
	}
	return d, nil
}

// sample is one scanned coordinate that matched the annotation color.
// Transient: produced and consumed within a single Detect call.
type sample struct {
	x, y int
}

// Detect scans the frame and returns annotation rectangles in reading
// order. An image with no qualifying clusters returns an empty slice, not
// an error. "No zones detected" is a legitimate outcome the caller must
// communicate, not a crash.
func (d *Detector) Detect(frame *imaging.Frame) []Rect {
	samples := d.scan(frame)
	clusters := d.cluster(samples)

	rects := make([]Rect, 0, len(clusters))
	for _, cl := range clusters {
		if len(cl) < d.params.MinClusterSize {
			continue
		}
		rects = append(rects, d.boundingBox(cl))
	}

	d.sortReadingOrder(rects)
	return rects
}

// scan samples the pixel buffer on the configured stride and collects
// coordinates matching the annotation color.
func (d *Detector) scan(frame *imaging.Frame) []sample {
	var samples []sample
	for y := 0; y < frame.Height; y += d.params.Stride {
		for x := 0; x < frame.Width; x += d.params.Stride {
			r, g, b := frame.RGBAt(x, y)
			if d.matches(r, g, b) {
				samples = append(samples, sample{x: x, y: y})
			}
		}
	}
	return samples
}

// matches classifies one pixel as annotation color, either by perceptual
// distance to the target color or by channel thresholds.
func (d *Detector) matches(r, g, b uint8) bool {
	if d.target != nil {
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		return c.DistanceLab(*d.target) <= d.params.MaxColorDistance
	}
	return r >= d.params.RedMin && g <= d.params.GreenMax && b <= d.params.BlueMax
}

// cluster groups samples by single-link chaining: pick an unvisited sample,
// pull in every unvisited sample within ClusterRadius of anything already
// in the cluster, repeat until nothing reachable remains. This is not a
// strict connected-components pass; the permissiveness is what lets a
// rectangle's four disconnected borders merge into one cluster.
func (d *Detector) cluster(samples []sample) [][]sample {
	radiusSq := d.params.ClusterRadius * d.params.ClusterRadius
	visited := make([]bool, len(samples))

	var clusters [][]sample
	for i := range samples {
		if visited[i] {
			continue
		}
		visited[i] = true

		cluster := []sample{samples[i]}
		stack := []int{i}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for j := range samples {
				if visited[j] {
					continue
				}
				dx := samples[j].x - samples[cur].x
				dy := samples[j].y - samples[cur].y
				if dx*dx+dy*dy <= radiusSq {
					visited[j] = true
					cluster = append(cluster, samples[j])
					stack = append(stack, j)
				}
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// boundingBox computes the cluster's bounding rect. A cluster whose samples
// are collinear is widened by one stride so the invariant MinX < MaxX,
// MinY < MaxY holds: a sampled border is never thinner than the stride.
func (d *Detector) boundingBox(cluster []sample) Rect {
	r := Rect{
		MinX: cluster[0].x, MaxX: cluster[0].x,
		MinY: cluster[0].y, MaxY: cluster[0].y,
	}
	for _, s := range cluster[1:] {
		if s.x < r.MinX {
			r.MinX = s.x
		}
		if s.x > r.MaxX {
			r.MaxX = s.x
		}
		if s.y < r.MinY {
			r.MinY = s.y
		}
		if s.y > r.MaxY {
			r.MaxY = s.y
		}
	}
	if r.MaxX == r.MinX {
		r.MaxX += d.params.Stride
	}
	if r.MaxY == r.MinY {
		r.MaxY += d.params.Stride
	}
	return r
}

// sortReadingOrder orders rects top-to-bottom with row bucketing, then
// left-to-right within a row. Rects whose vertical centers fall within
// RowTolerance of the row anchor share the row. The sort is stable, so
// rects inside one tolerance band keep their relative order across runs.
func (d *Detector) sortReadingOrder(rects []Rect) {
	sort.SliceStable(rects, func(i, j int) bool {
		return rects[i].CenterY() < rects[j].CenterY()
	})

	rows := make([]int, len(rects))
	row := 0
	for i := range rects {
		if i == 0 {
			rows[i] = 0
			continue
		}
		if rects[i].CenterY()-anchorY(rects, rows, i, row) >= d.params.RowTolerance {
			row++
		}
		rows[i] = row
	}

	type indexed struct {
		rect Rect
		row  int
	}
	tmp := make([]indexed, len(rects))
	for i, r := range rects {
		tmp[i] = indexed{rect: r, row: rows[i]}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		if tmp[i].row != tmp[j].row {
			return tmp[i].row < tmp[j].row
		}
		return tmp[i].rect.CenterX() < tmp[j].rect.CenterX()
	})
	for i := range tmp {
		rects[i] = tmp[i].rect
	}
}

// anchorY returns the vertical center of the first rect in the current row.
func anchorY(rects []Rect, rows []int, i, row int) int {
	for j := 0; j < i; j++ {
		if rows[j] == row {
			return rects[j].CenterY()
		}
	}
	return rects[i].CenterY()
}
