package match

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/barsignal/tvlayout/internal/detection"
	"github.com/barsignal/tvlayout/internal/layout"
	"github.com/barsignal/tvlayout/internal/recognize"
)

// ErrRosterExhausted labels the condition where more rectangles were
// detected than the roster has outputs. It is surfaced per-zone via
// Result.Unassigned, never as a whole-pipeline abort.
var ErrRosterExhausted = errors.New("output roster exhausted")

// Result is the matcher's output: the assembled zones in reading order,
// plus the indices of zones the roster could not cover.
type Result struct {
	Zones      []layout.Zone
	Unassigned []int
}

var digitRun = regexp.MustCompile(`\d+`)

// normalizeLabel strips whitespace, uppercases, and pulls the first run
// of digits out of a mixed label ("TV 05" → "TV 05", 5).
func normalizeLabel(label string) (text string, number int, hasNumber bool) {
	text = strings.ToUpper(strings.TrimSpace(label))
	m := digitRun.FindString(text)
	if m == "" {
		return text, 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return text, 0, false
	}
	return text, n, true
}

// round2 rounds a percentage to two decimal places: precise enough for
// pixel-accurate rendering at any display size while keeping the
// persisted form scale-independent.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Match binds each rectangle to an output channel and assembles the zone
// sequence. Pure function: no state survives between calls.
//
// The label pass walks rectangles in reading order and consumes the first
// roster entry whose channel number equals the label's digit run, or
// whose own label matches the normalized text exactly. The positional
// pass then assigns each remaining rectangle the next unused output in
// ascending channel order. Rectangles left over when the roster runs out
// are kept as zones with no output number and reported in Unassigned.
func Match(rects []detection.Rect, extractions []recognize.Extraction, roster []Output, imgWidth, imgHeight int) Result {
	used := make(map[int]bool, len(roster))
	assigned := make([]*Output, len(rects))

	// Label pass. A label is matchable whenever any tier produced it
	// with nonzero confidence, regardless of which tier that was.
	for i := range rects {
		ext := extractionAt(extractions, i)
		if ext.Label == "" || ext.Confidence <= 0 {
			continue
		}
		text, number, hasNumber := normalizeLabel(ext.Label)
		for j := range roster {
			out := &roster[j]
			if used[out.ChannelNumber] {
				continue
			}
			byNumber := hasNumber && out.ChannelNumber == number
			byText := labelEqual(out.Label, text)
			if byNumber || byText {
				used[out.ChannelNumber] = true
				assigned[i] = out
				break
			}
		}
	}

	// Positional pass: Nth unlabeled rectangle gets the Nth unused
	// output in ascending channel order. Roster order is taken as the
	// collaborator supplies it after an ascending sort by channel.
	remaining := unusedAscending(roster, used)
	next := 0
	for i := range rects {
		if assigned[i] != nil {
			continue
		}
		if next < len(remaining) {
			assigned[i] = remaining[next]
			used[assigned[i].ChannelNumber] = true
			next++
		}
	}

	res := Result{Zones: make([]layout.Zone, 0, len(rects))}
	for i, rect := range rects {
		ext := extractionAt(extractions, i)
		zone := buildZone(i, rect, ext, assigned[i], imgWidth, imgHeight)
		if assigned[i] == nil {
			res.Unassigned = append(res.Unassigned, i)
		}
		res.Zones = append(res.Zones, zone)
	}
	return res
}

// extractionAt tolerates a short extraction slice (SkipOCR callers may
// pass nil) by substituting the unlabeled extraction.
func extractionAt(extractions []recognize.Extraction, i int) recognize.Extraction {
	if i < len(extractions) {
		return extractions[i]
	}
	return recognize.Extraction{Method: recognize.MethodNone}
}

// labelEqual compares a roster label with a normalized extracted label.
func labelEqual(rosterLabel, normalized string) bool {
	return normalized != "" && strings.ToUpper(strings.TrimSpace(rosterLabel)) == normalized
}

// unusedAscending returns pointers to unconsumed roster entries sorted by
// channel number ascending, without reordering the caller's roster.
func unusedAscending(roster []Output, used map[int]bool) []*Output {
	remaining := make([]*Output, 0, len(roster))
	for j := range roster {
		if !used[roster[j].ChannelNumber] {
			remaining = append(remaining, &roster[j])
		}
	}
	for i := 1; i < len(remaining); i++ {
		for j := i; j > 0 && remaining[j].ChannelNumber < remaining[j-1].ChannelNumber; j-- {
			remaining[j], remaining[j-1] = remaining[j-1], remaining[j]
		}
	}
	return remaining
}

// buildZone converts one rectangle plus its extraction and assignment
// into the durable zone record with percentage coordinates.
func buildZone(index int, rect detection.Rect, ext recognize.Extraction, out *Output, imgWidth, imgHeight int) layout.Zone {
	x := round2(float64(rect.MinX) / float64(imgWidth) * 100)
	y := round2(float64(rect.MinY) / float64(imgHeight) * 100)
	w := round2(float64(rect.Width()) / float64(imgWidth) * 100)
	h := round2(float64(rect.Height()) / float64(imgHeight) * 100)

	// Rounding both edges up can nudge x+width a hair past 100.
	if x+w > 100 {
		w = round2(100 - x)
	}
	if y+h > 100 {
		h = round2(100 - y)
	}

	zone := layout.Zone{
		X: x, Y: y, Width: w, Height: h,
		Label:             ext.Label,
		Confidence:        ext.Confidence,
		RecognitionMethod: string(ext.Method),
	}

	if out != nil {
		zone.ID = fmt.Sprintf("zone-%d", out.ChannelNumber)
		zone.OutputNumber = out.ChannelNumber
		if zone.Label == "" {
			zone.Label = out.Label
		}
	} else {
		zone.ID = fmt.Sprintf("zone-u%d", index+1)
	}
	return zone
}
