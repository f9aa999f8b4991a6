// Package pipeline wires the import stages together: decode, detect,
// extract, match, persist. One invocation per uploaded image, strictly
// pipeline-shaped, no feedback loops.
//
// Error propagation is tiered. Failures local to one zone's recognition
// are absorbed inside the extraction stage and never escalate; decode
// and persistence failures are pipeline-fatal and reported whole. The
// in-between conditions (no zones detected, roster exhausted) are
// surfaced distinctly so a front-end can tell an empty result from a
// crash.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/barsignal/tvlayout/internal/config"
	"github.com/barsignal/tvlayout/internal/detection"
	"github.com/barsignal/tvlayout/internal/imaging"
	"github.com/barsignal/tvlayout/internal/layout"
	"github.com/barsignal/tvlayout/internal/match"
	"github.com/barsignal/tvlayout/internal/recognize"
)

// ErrNoZonesDetected is returned when the detector finds zero qualifying
// clusters. Not a crash: the caller should suggest re-uploading with
// clearer markers. Nothing is persisted.
var ErrNoZonesDetected = errors.New("no zones detected in layout image")

// Report summarizes one pipeline run.
type Report struct {
	Layout *layout.Layout

	// Unassigned holds reading-order indices of zones the roster could
	// not cover (the RosterExhausted condition).
	Unassigned []int

	// MethodCounts tallies zones per recognition method.
	MethodCounts map[string]int

	Elapsed time.Duration
}

// Pipeline runs the full import flow for one image.
type Pipeline struct {
	cfg      *config.Config
	detector *detection.Detector
	orch     *recognize.Orchestrator
	store    *layout.Store
	roster   []match.Output
	log      *slog.Logger
}

// New assembles a pipeline. tiers are the recognition tiers in attempt
// order; pass none to run reading-order-only numbering. The roster is
// the hardware inventory's read-only output list.
func New(cfg *config.Config, tiers []recognize.Tier, roster []match.Output, store *layout.Store, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	detector, err := detection.New(cfg.Detect)
	if err != nil {
		return nil, err
	}

	orch := recognize.NewOrchestrator(recognize.Options{
		Tiers:       tiers,
		Concurrency: cfg.Concurrency,
		SkipOCR:     cfg.SkipOCR,
		CropPad:     cfg.CropPad,
		CropScale:   cfg.CropScale,
		Logger:      logger,
	})

	return &Pipeline{
		cfg:      cfg,
		detector: detector,
		orch:     orch,
		store:    store,
		roster:   roster,
		log:      logger,
	}, nil
}

// Run imports one layout image end to end and persists the resulting
// Layout. Fatal errors (*imaging.DecodeError, *layout.PersistenceError,
// cancellation) return with nothing saved; ErrNoZonesDetected is
// returned for an image with no qualifying markers.
func (p *Pipeline) Run(ctx context.Context, imagePath, name, imageURL string) (*Report, error) {
	start := time.Now()

	frame, err := imaging.Load(imagePath)
	if err != nil {
		return nil, err
	}
	p.log.Info("layout image decoded",
		"path", imagePath, "width", frame.Width, "height", frame.Height, "channels", frame.Channels)

	rects := p.detector.Detect(frame)
	if len(rects) == 0 {
		p.log.Warn("no annotation clusters found", "path", imagePath)
		return nil, ErrNoZonesDetected
	}
	p.log.Info("rectangles detected", "count", len(rects))

	extractions, err := p.orch.ExtractAll(ctx, frame, rects)
	if err != nil {
		return nil, err
	}

	res := match.Match(rects, extractions, p.roster, frame.Width, frame.Height)
	if len(res.Unassigned) > 0 {
		p.log.Warn("roster exhausted, zones left unassigned",
			"unassigned", len(res.Unassigned), "roster", len(p.roster), "error", match.ErrRosterExhausted)
	}

	l := &layout.Layout{
		Name:        name,
		ImageURL:    imageURL,
		ImageWidth:  frame.Width,
		ImageHeight: frame.Height,
		Zones:       res.Zones,
	}
	if err := p.store.Save(l); err != nil {
		return nil, err
	}

	report := &Report{
		Layout:       l,
		Unassigned:   res.Unassigned,
		MethodCounts: countMethods(res.Zones),
		Elapsed:      time.Since(start),
	}
	p.log.Info("layout saved",
		"name", name, "zones", len(l.Zones), "unassigned", len(res.Unassigned),
		"methods", report.MethodCounts, "elapsed", report.Elapsed)
	return report, nil
}

func countMethods(zones []layout.Zone) map[string]int {
	counts := make(map[string]int, 4)
	for _, z := range zones {
		counts[z.RecognitionMethod]++
	}
	return counts
}
