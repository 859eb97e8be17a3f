// Package ingress implements the capture ingress state machine
// (spec.md §4.2): a single-slot frame handoff from device callbacks
// (running on an arbitrary driver thread) to the pipeline thread, with
// signal-state tracking, mode-change detection, and missed-frame
// accounting.
package ingress

import (
	"sync"
	"sync/atomic"

	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/pixelbuffer"
)

// MaxBitDepth is the maximum frame bit depth the ingress slot accepts.
// Frames reporting a higher depth are rejected (spec.md §4.2 step 3,
// §8 boundary behaviour).
const MaxBitDepth = 32

// SignalState is the capture signal's steady state, mutated only by
// PipelineDriver via next_event (spec.md §3, §4.2).
type SignalState int

const (
	Receiving SignalState = iota
	NoSignal
	InvalidSignal
)

func (s SignalState) String() string {
	switch s {
	case Receiving:
		return "receiving"
	case NoSignal:
		return "no-signal"
	case InvalidSignal:
		return "invalid-signal"
	default:
		return "unknown"
	}
}

// EventKind tags a CaptureEvent variant (spec.md §3).
type EventKind int

const (
	None EventKind = iota
	NewFrame
	NewVideoMode
	NoSignalEvent
	InvalidSignalEvent
	Sleep
	UnrecoverableError
)

// Event is one value returned by NextEvent.
type Event struct {
	Kind EventKind
}

// Ingress is the CaptureIngress component. All fields below the mutex
// line are guarded by mu; the three counters are atomics so the
// back-pressure fast path in OnFrame never needs to take the lock.
type Ingress struct {
	slot *pixelbuffer.Buffer

	captured atomic.Uint64
	processed atomic.Uint64
	skipped  atomic.Uint64

	mu sync.Mutex

	resolution modestore.Resolution

	signalState SignalState

	signalWokeUp       bool
	receivedNewMode    bool
	signalLost         bool
	signalInvalid      bool
	unrecoverableError bool

	skipNext uint

	exitRequested bool
}

// New creates an Ingress with a slot of the given byte capacity
// (MAX_FRAME_BYTES in spec.md §4.2).
func New(slotCapacity int) *Ingress {
	return &Ingress{
		slot:        pixelbuffer.New(slotCapacity),
		signalState: Receiving,
	}
}

// RequestExit sets the shutdown flag consulted by OnFrame (spec.md §5).
// NextEvent does not consult it.
func (in *Ingress) RequestExit() {
	in.mu.Lock()
	in.exitRequested = true
	in.mu.Unlock()
}

// OnFrame is the driver's on_frame callback (spec.md §4.2). It runs on
// an arbitrary driver thread and must never block waiting on the
// pipeline thread.
func (in *Ingress) OnFrame(width, height, bpp int, data []byte) {
	// Fast path: if the pipeline hasn't finished the previous frame,
	// drop this one without taking the mutex at all. `skipped` and
	// `captured` are both advanced atomically, so `captured` counts every
	// on_frame call, whether the frame was accepted, rejected or dropped.
	if in.captured.Load() != in.processed.Load() {
		in.skipped.Add(1)
		in.captured.Add(1)
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if in.exitRequested || data == nil || len(data) == 0 || bpp > MaxBitDepth || !in.slot.IsAllocated() {
		// Preserve the captured==processed invariant so the driver is
		// never considered perpetually behind, even when we refuse the
		// frame outright (spec.md §4.2 step 3, §8 boundary behaviour).
		in.captured.Add(1)
		return
	}

	n := width * height * bpp / 8
	in.slot.CopyBounded(data, n)
	in.resolution = modestore.Resolution{W: width, H: height, BPP: bpp}
	in.captured.Add(1)
}

// OnModeChanged is the driver's on_mode_changed callback.
func (in *Ingress) OnModeChanged() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.signalWokeUp = in.signalState != Receiving
	in.receivedNewMode = true
	in.signalInvalid = false
}

// OnInvalidSignal is the driver's on_invalid_signal callback. The
// driver's own pass-through handler (if any) must run before this;
// callers invoke that themselves and then call OnInvalidSignal.
func (in *Ingress) OnInvalidSignal() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.signalInvalid = true
}

// OnNoSignal is the driver's on_no_signal callback.
func (in *Ingress) OnNoSignal() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.signalLost = true
}

// OnError is the driver's on_error callback.
func (in *Ingress) OnError() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.unrecoverableError = true
}

// NextEvent implements the deterministic priority order of spec.md
// §4.2. It both reads and mutates signal state; the order below IS the
// state machine.
//
// spec.md §9 leaves the "signal became invalid" edge-trigger as dead
// code (SIGNAL_BECAME_INVALID is read but never written in the
// original). Per the spec's instruction to treat "invalid" as a steady
// state toggled directly by signal_invalid, the edge check below fires
// whenever signal_invalid is set and the state machine isn't already in
// InvalidSignal, rather than via a separate one-shot edge flag.
func (in *Ingress) NextEvent() Event {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.unrecoverableError {
		return Event{Kind: UnrecoverableError}
	}

	if in.receivedNewMode {
		in.receivedNewMode = false
		in.signalState = Receiving
		in.signalInvalid = false
		return Event{Kind: NewVideoMode}
	}

	if in.signalLost {
		in.signalLost = false
		in.signalState = NoSignal
		return Event{Kind: NoSignalEvent}
	}

	if in.signalState == NoSignal {
		return Event{Kind: Sleep}
	}

	if in.signalInvalid && in.signalState != InvalidSignal {
		in.signalState = InvalidSignal
		return Event{Kind: InvalidSignalEvent}
	}

	if in.signalState == InvalidSignal {
		return Event{Kind: Sleep}
	}

	if in.captured.Load() != in.processed.Load() {
		return Event{Kind: NewFrame}
	}

	return Event{Kind: None}
}

// MarkProcessed sets processed := captured and decrements skip_next by
// one, floored at zero (spec.md §4.2).
func (in *Ingress) MarkProcessed() {
	in.processed.Store(in.captured.Load())

	in.mu.Lock()
	if in.skipNext > 0 {
		in.skipNext--
	}
	in.mu.Unlock()
}

// AddSkipNext marks the next n frames as not-for-display.
func (in *Ingress) AddSkipNext(n uint) {
	in.mu.Lock()
	in.skipNext += n
	in.mu.Unlock()
}

// ShouldSkipDisplay reports whether the current frame should be
// withheld from display/recording because it falls within the
// skip_next window.
func (in *Ingress) ShouldSkipDisplay() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.skipNext > 0
}

// Frame returns the current slot's resolution and a read-only view of
// its bytes. Caller must not retain the slice past the next OnFrame.
func (in *Ingress) Frame() (modestore.Resolution, []byte) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.resolution, in.slot.Bytes()
}

// SignalWokeUp reports whether the ingress woke from a non-Receiving
// state on the most recent mode change. Per spec.md §9 this flag is
// intentionally never cleared here; whether a consumer should clear it
// is an unresolved open question left to callers.
func (in *Ingress) SignalWokeUp() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.signalWokeUp
}

// SignalState returns the current steady signal state.
func (in *Ingress) SignalState() SignalState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.signalState
}

// Captured, Processed and MissedFrameCount expose the atomic counters
// for invariant checks and status reporting (spec.md §4.8, §8).
func (in *Ingress) Captured() uint64  { return in.captured.Load() }
func (in *Ingress) Processed() uint64 { return in.processed.Load() }

// MissedFrameCount reads CaptureIngress.skipped (spec.md §4.8).
func (in *Ingress) MissedFrameCount() uint64 { return in.skipped.Load() }

// ResetMissedFrames zeroes the skipped counter.
func (in *Ingress) ResetMissedFrames() { in.skipped.Store(0) }
