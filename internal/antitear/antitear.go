// Package antitear implements the AntiTear operator (spec.md §4.6): an
// opaque per-frame operation that detects a torn capture (a frame whose
// rows are a splice of two display refreshes) and reconstructs a clean
// frame from the torn one and the previously accepted frame, or signals
// that the frame should be dropped entirely.
package antitear

import (
	"github.com/bryanchriswhite/vcsengine/internal/frame"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

// Mode selects the anti-tear strategy.
type Mode int

const (
	// Off passes every frame through unchanged.
	Off Mode = iota
	// MultiBuffered reconstructs a torn frame by taking the rows from the
	// tear downwards from the previous accepted frame; a frame with no
	// detected tear passes through and becomes the new baseline.
	MultiBuffered
)

// AntiTear holds the previous-frame state needed to reconstruct a torn
// frame; it is not safe for concurrent use (PipelineDriver owns one
// instance per capture thread, matching the ingress pixel slot's
// single-owner discipline in spec.md §5).
type AntiTear struct {
	mode Mode

	// threshold is the minimum per-row byte-difference sum, summed over
	// a sampled set of pixels, that marks a row boundary as a tear.
	threshold int

	prevResolution modestore.Resolution
	prev           *frame.Frame
}

// New creates an AntiTear operator. threshold tunes row-difference
// sensitivity; 0 uses a sane default.
func New(mode Mode, threshold int) *AntiTear {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &AntiTear{mode: mode, threshold: threshold}
}

const defaultThreshold = 1200

// SetMode changes the active strategy. Switching to Off drops any
// retained previous-frame state so a later re-enable starts clean.
func (a *AntiTear) SetMode(mode Mode) {
	a.mode = mode
	if mode == Off {
		a.prev = nil
	}
}

// Apply runs the configured strategy. A nil return signals "suppress
// this frame" (spec.md §4.6); the engine must not forward it to the
// filter graph, scaler, recorder, or GUI.
func (a *AntiTear) Apply(in *frame.Frame, resolution modestore.Resolution) *frame.Frame {
	if in == nil {
		return nil
	}
	if a.mode == Off {
		return in
	}

	if a.prev == nil || a.prevResolution.W != resolution.W || a.prevResolution.H != resolution.H {
		a.prev = in.Clone()
		a.prevResolution = resolution
		return in
	}

	tearRow, torn := a.findTear(in)
	if !torn {
		a.prev = in.Clone()
		a.prevResolution = resolution
		return in
	}

	out := reconstruct(in, a.prev, tearRow)
	a.prev = out.Clone()
	return out
}

// findTear scans for the first row whose pixel content diverges sharply
// from the row above it, a cheap proxy for "the display refreshed mid
// capture at this scanline". Returns (0, false) when no such row is
// found, i.e. the frame looks consistent end to end.
func (a *AntiTear) findTear(in *frame.Frame) (int, bool) {
	for y := 1; y < in.H; y++ {
		if a.rowDelta(in, y-1, y) >= a.threshold {
			return y, true
		}
	}
	return 0, false
}

func (a *AntiTear) rowDelta(in *frame.Frame, y0, y1 int) int {
	sum := 0
	step := in.W / 32
	if step < 1 {
		step = 1
	}
	for x := 0; x < in.W; x += step {
		b0, g0, r0, _ := in.PixelAt(x, y0)
		b1, g1, r1, _ := in.PixelAt(x, y1)
		sum += absInt(int(b0)-int(b1)) + absInt(int(g0)-int(g1)) + absInt(int(r0)-int(r1))
	}
	return sum
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// reconstruct splices rows [0,tearRow) from the torn frame (the portion
// captured before the tear) onto rows [tearRow,H) from the previous
// accepted frame (the portion that hadn't refreshed yet when the torn
// capture started), producing a single coherent frame.
func reconstruct(torn, prev *frame.Frame, tearRow int) *frame.Frame {
	out := frame.New(torn.W, torn.H)
	for y := 0; y < torn.H; y++ {
		src := torn
		if y >= tearRow {
			src = prev
		}
		for x := 0; x < torn.W; x++ {
			b, g, r, al := src.PixelAt(x, y)
			out.SetBGRA(x, y, b, g, r, al)
		}
	}
	return out
}
