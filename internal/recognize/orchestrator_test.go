package recognize

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/barsignal/tvlayout/internal/detection"
	"github.com/barsignal/tvlayout/internal/imaging"
)

// fakeRecognizer is a scriptable tier for orchestrator tests.
type fakeRecognizer struct {
	method Method
	delay  time.Duration
	result Result
	err    error

	mu    sync.Mutex
	calls int
}

func (f *fakeRecognizer) Method() Method { return f.method }

func (f *fakeRecognizer) Recognize(ctx context.Context, cropPNG []byte) (Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testFrame(t *testing.T) *imaging.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	frame, err := imaging.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return frame
}

func testRects(n int) []detection.Rect {
	rects := make([]detection.Rect, n)
	for i := range rects {
		rects[i] = detection.Rect{MinX: 10 + i*90, MinY: 10, MaxX: 80 + i*90, MaxY: 80}
	}
	return rects
}

func TestExtractAll_PrimarySucceeds(t *testing.T) {
	primary := &fakeRecognizer{method: MethodVision, result: Result{Text: "TV 01", Confidence: 0.95}}
	fallback := &fakeRecognizer{method: MethodFallback, result: Result{Text: "TV 99", Confidence: 0.5}}

	o := NewOrchestrator(Options{
		Tiers: []Tier{
			{Recognizer: primary, Timeout: time.Second},
			{Recognizer: fallback, Timeout: time.Second},
		},
	})

	got, err := o.ExtractAll(context.Background(), testFrame(t), testRects(1))
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if got[0].Label != "TV 01" || got[0].Method != MethodVision {
		t.Errorf("expected vision result, got %+v", got[0])
	}
	if fallback.callCount() != 0 {
		t.Errorf("fallback should not run when primary succeeds, ran %d times", fallback.callCount())
	}
}

func TestExtractAll_PrimaryTimesOut(t *testing.T) {
	primary := &fakeRecognizer{
		method: MethodVision,
		delay:  time.Second,
		result: Result{Text: "TV 01", Confidence: 0.95},
	}
	fallback := &fakeRecognizer{method: MethodFallback, result: Result{Text: "TV 01", Confidence: 0.6}}

	o := NewOrchestrator(Options{
		Tiers: []Tier{
			{Recognizer: primary, Timeout: 20 * time.Millisecond},
			{Recognizer: fallback, Timeout: time.Second},
		},
	})

	got, err := o.ExtractAll(context.Background(), testFrame(t), testRects(3))
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	for i, e := range got {
		if e.Method != MethodFallback {
			t.Errorf("zone %d: expected fallback after primary timeout, got %+v", i, e)
		}
		if e.Label != "TV 01" {
			t.Errorf("zone %d: expected fallback label, got %q", i, e.Label)
		}
	}
}

func TestExtractAll_AllTiersFail(t *testing.T) {
	primary := &fakeRecognizer{method: MethodVision, err: errors.New("model unavailable")}
	fallback := &fakeRecognizer{method: MethodFallback, err: errors.New("no label in output")}

	o := NewOrchestrator(Options{
		Tiers: []Tier{
			{Recognizer: primary, Timeout: time.Second},
			{Recognizer: fallback, Timeout: time.Second},
		},
	})

	got, err := o.ExtractAll(context.Background(), testFrame(t), testRects(2))
	if err != nil {
		t.Fatalf("per-zone failures must not fail the pipeline: %v", err)
	}
	for i, e := range got {
		// The zone survives: empty label, zero confidence, method none.
		if e.Label != "" || e.Confidence != 0 || e.Method != MethodNone {
			t.Errorf("zone %d: expected unlabeled extraction, got %+v", i, e)
		}
	}
}

func TestExtractAll_EmptyTextFallsThrough(t *testing.T) {
	primary := &fakeRecognizer{method: MethodVision, result: Result{Text: "", Confidence: 0.9}}
	fallback := &fakeRecognizer{method: MethodFallback, result: Result{Text: "TV 04", Confidence: 0.55}}

	o := NewOrchestrator(Options{
		Tiers: []Tier{
			{Recognizer: primary, Timeout: time.Second},
			{Recognizer: fallback, Timeout: time.Second},
		},
	})

	got, err := o.ExtractAll(context.Background(), testFrame(t), testRects(1))
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if got[0].Method != MethodFallback || got[0].Label != "TV 04" {
		t.Errorf("empty primary output should fall through, got %+v", got[0])
	}
}

func TestExtractAll_SkipOCR(t *testing.T) {
	primary := &fakeRecognizer{method: MethodVision, result: Result{Text: "TV 01", Confidence: 0.95}}

	o := NewOrchestrator(Options{
		Tiers:   []Tier{{Recognizer: primary, Timeout: time.Second}},
		SkipOCR: true,
	})

	got, err := o.ExtractAll(context.Background(), testFrame(t), testRects(4))
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if primary.callCount() != 0 {
		t.Errorf("SkipOCR must not call any tier, got %d calls", primary.callCount())
	}
	for i, e := range got {
		if e.Method != MethodNone {
			t.Errorf("zone %d: expected method none under SkipOCR, got %+v", i, e)
		}
	}
}

func TestExtractAll_ResultsIndexedByZone(t *testing.T) {
	// A recognizer whose answer depends on call order would expose
	// completion-order reassembly; results must line up by zone index
	// regardless of which finishes first.
	var order atomic.Int32
	primary := &orderedRecognizer{order: &order}

	o := NewOrchestrator(Options{
		Tiers:       []Tier{{Recognizer: primary, Timeout: time.Second}},
		Concurrency: 4,
	})

	const zones = 8
	got, err := o.ExtractAll(context.Background(), testFrame(t), testRects(zones))
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(got) != zones {
		t.Fatalf("expected %d extractions, got %d", zones, len(got))
	}
	for i, e := range got {
		if e.Method != MethodVision {
			t.Errorf("zone %d: missing extraction: %+v", i, e)
		}
	}
}

// orderedRecognizer answers with jittered latency so completion order
// differs from submission order.
type orderedRecognizer struct {
	order *atomic.Int32
}

func (r *orderedRecognizer) Method() Method { return MethodVision }

func (r *orderedRecognizer) Recognize(ctx context.Context, cropPNG []byte) (Result, error) {
	n := r.order.Add(1)
	delay := time.Duration((n%3)*5) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	return Result{Text: "TV 01", Confidence: 0.9}, nil
}

func TestExtractAll_Cancellation(t *testing.T) {
	primary := &fakeRecognizer{
		method: MethodVision,
		delay:  time.Second,
		result: Result{Text: "TV 01", Confidence: 0.95},
	}

	o := NewOrchestrator(Options{
		Tiers:       []Tier{{Recognizer: primary, Timeout: 10 * time.Second}},
		Concurrency: 2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := o.ExtractAll(ctx, testFrame(t), testRects(6))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
