package recognize

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/barsignal/tvlayout/internal/detection"
	"github.com/barsignal/tvlayout/internal/imaging"
)

// Extraction is the orchestrator's per-zone verdict: the best label any
// tier produced, that tier's confidence, and which tier it was.
type Extraction struct {
	Label      string
	Confidence float64
	Method     Method
}

// Tier pairs a recognizer with its per-zone deadline. The deadline is
// mandatory for the vision tier, since a stalled remote model must not
// stall the pipeline, and applies uniformly so a wedged local OCR process
// cannot either.
type Tier struct {
	Recognizer Recognizer
	Timeout    time.Duration
}

// Options configures the orchestrator.
type Options struct {
	// Tiers are attempted in order per zone. An empty list behaves like
	// SkipOCR.
	Tiers []Tier

	// Concurrency bounds in-flight zone extractions. The vision tier is
	// typically a shared, resource-constrained inference service, so
	// unbounded parallelism would starve it. Values below 1 mean 1.
	Concurrency int

	// SkipOCR bypasses every tier: all zones come back unlabeled and the
	// matcher numbers them purely by reading order. Useful when the
	// operator already knows the order and wants a fast save.
	SkipOCR bool

	// CropPad expands each crop by this fraction of the box's larger
	// side; printed labels sit near the marker box, not inside it.
	CropPad float64

	// CropScale upscales crops before recognition. 0 disables.
	CropScale float64

	Logger *slog.Logger
}

// Orchestrator runs the recognition tiers over every detected rectangle.
type Orchestrator struct {
	tiers       []Tier
	concurrency int
	skip        bool
	cropPad     float64
	cropScale   float64
	log         *slog.Logger
}

// NewOrchestrator builds an orchestrator from options, applying defaults
// for unset fields.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.CropPad <= 0 {
		opts.CropPad = 1.0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		tiers:       opts.Tiers,
		concurrency: opts.Concurrency,
		skip:        opts.SkipOCR,
		cropPad:     opts.CropPad,
		cropScale:   opts.CropScale,
		log:         opts.Logger,
	}
}

// ExtractAll produces one Extraction per rect, indexed identically to
// rects. Zones are processed with bounded concurrency and reassembled by
// index, so completion order never affects the result. The only error
// returned is caller cancellation; per-zone tier failures are absorbed
// into an unlabeled Extraction.
func (o *Orchestrator) ExtractAll(ctx context.Context, frame *imaging.Frame, rects []detection.Rect) ([]Extraction, error) {
	results := make([]Extraction, len(rects))
	for i := range results {
		results[i] = Extraction{Method: MethodNone}
	}

	if o.skip || len(o.tiers) == 0 || len(rects) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, rect := range rects {
		i, rect := i, rect
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			crop, err := imaging.CropPNG(frame.Pix, rect.Bounds(), o.cropPad, o.cropScale)
			if err != nil {
				// A bad crop leaves the zone unlabeled; it is not a
				// pipeline failure.
				o.log.Warn("crop failed, zone left unlabeled", "zone", i, "error", err)
				return nil
			}
			results[i] = o.recognizeOne(gctx, i, crop)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		// Cancellation discards the whole result set; there is no
		// partial layout.
		return nil, err
	}
	return results, nil
}

// recognizeOne walks the tiers in order for a single zone.
func (o *Orchestrator) recognizeOne(ctx context.Context, zone int, crop []byte) Extraction {
	for _, tier := range o.tiers {
		if ctx.Err() != nil {
			break
		}

		res, err := runTier(ctx, tier, crop)
		if err != nil {
			o.log.Debug("recognition tier failed",
				"zone", zone, "tier", tier.Recognizer.Method(), "error", err)
			continue
		}
		if res.Text == "" {
			continue
		}

		o.log.Debug("label recognized",
			"zone", zone, "tier", tier.Recognizer.Method(),
			"label", res.Text, "confidence", res.Confidence)
		return Extraction{
			Label:      res.Text,
			Confidence: res.Confidence,
			Method:     tier.Recognizer.Method(),
		}
	}
	return Extraction{Method: MethodNone}
}

// runTier enforces the tier's deadline even for recognizers that block in
// synchronous native code. On timeout the in-flight call is abandoned
// best-effort and a *TimeoutError is returned.
func runTier(ctx context.Context, tier Tier, crop []byte) (Result, error) {
	if tier.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tier.Timeout)
		defer cancel()
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := tier.Recognizer.Recognize(ctx, crop)
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, &TimeoutError{Tier: tier.Recognizer.Method(), Err: ctx.Err()}
	case o := <-done:
		return o.res, o.err
	}
}
