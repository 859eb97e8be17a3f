// Package engine defines the single long-lived aggregate spec.md §9
// calls for: one Engine value, owned by the entry point, that bundles
// CaptureIngress, ModeStore, FilterGraph, Scaler config, and a
// CaptureDriver handle. It replaces the process-wide mutable state
// hazard the original source exhibited; every collaborator is reached
// through this value, passed by reference.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/bryanchriswhite/vcsengine/internal/antitear"
	"github.com/bryanchriswhite/vcsengine/internal/capturedriver"
	"github.com/bryanchriswhite/vcsengine/internal/filtergraph"
	"github.com/bryanchriswhite/vcsengine/internal/ingress"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/recorder"
	"github.com/bryanchriswhite/vcsengine/internal/scaler"
	"github.com/bryanchriswhite/vcsengine/internal/statusbus"
)

// Engine aggregates everything the pipeline thread and the
// GUI-originating pathway need, per spec.md §9's design note on
// replacing process-wide mutable state with one owned value.
type Engine struct {
	Driver   capturedriver.Driver
	Ingress  *ingress.Ingress
	Scaler   scaler.Config
	AntiTear *antitear.AntiTear
	Bus      *statusbus.Bus
	Recorder recorder.Recorder

	// graphMu and storeMu guard whole-value replacement of the
	// FilterGraph/ModeStore: the GUI-originating pathway writes, the
	// pipeline thread reads an immutable snapshot per frame (spec.md §5).
	graphMu sync.RWMutex
	graph   *filtergraph.Graph

	storeMu sync.RWMutex
	store   *modestore.Store

	filteringEnabled atomic.Bool
	exitRequested    atomic.Bool
}

// New assembles an Engine. bounds seeds the ModeStore's clamping rules
// from the driver's reported min/max; slotCapacity sizes the ingress
// pixel slot (MAX_FRAME_BYTES, spec.md §4.2).
func New(driver capturedriver.Driver, bounds modestore.DriverBounds, slotCapacity int) *Engine {
	e := &Engine{
		Driver:   driver,
		Ingress:  ingress.New(slotCapacity),
		Scaler:   scaler.DefaultConfig(),
		AntiTear: antitear.New(antitear.MultiBuffered, 0),
		Bus:      statusbus.New(),
		Recorder: recorder.Noop{},
		graph:    filtergraph.New(),
	}
	e.filteringEnabled.Store(true)
	e.store = modestore.New(bounds, e)

	driver.RegisterCallbacks(capturedriver.Callbacks{
		OnFrame: func(evt capturedriver.FrameEvent) {
			e.Ingress.OnFrame(evt.Width, evt.Height, evt.BPP, evt.Data)
		},
		OnModeChanged:   e.Ingress.OnModeChanged,
		OnInvalidSignal: e.Ingress.OnInvalidSignal,
		OnNoSignal:      e.Ingress.OnNoSignal,
		OnError:         e.Ingress.OnError,
	})

	return e
}

// NewKnownMode implements modestore.EventSink, relaying the event onto
// the StatusBus.
func (e *Engine) NewKnownMode(r modestore.Resolution) {
	e.Bus.NewKnownMode(r)
}

// Graph returns the current FilterGraph snapshot for the pipeline
// thread to read.
func (e *Engine) Graph() *filtergraph.Graph {
	e.graphMu.RLock()
	defer e.graphMu.RUnlock()
	return e.graph
}

// ReplaceGraph atomically swaps in a new FilterGraph (GUI-originating
// pathway only; spec.md §5).
func (e *Engine) ReplaceGraph(g *filtergraph.Graph) {
	e.graphMu.Lock()
	e.graph = g
	e.graphMu.Unlock()
}

// FilteringEnabled reports whether the filter stage should run at all.
func (e *Engine) FilteringEnabled() bool { return e.filteringEnabled.Load() }

// SetFilteringEnabled toggles the filter stage bypass.
func (e *Engine) SetFilteringEnabled(v bool) { e.filteringEnabled.Store(v) }

// Store returns the current ModeStore snapshot.
func (e *Engine) Store() *modestore.Store {
	e.storeMu.RLock()
	defer e.storeMu.RUnlock()
	return e.store
}

// ReplaceStore atomically swaps in a new ModeStore.
func (e *Engine) ReplaceStore(s *modestore.Store) {
	e.storeMu.Lock()
	e.store = s
	e.storeMu.Unlock()
}

// RequestExit sets the process-wide cancellation flag (spec.md §5). The
// ingress frame callback checks it, and the pipeline's Run loop checks
// it before every tick; the other driver callbacks do not check it.
func (e *Engine) RequestExit() {
	e.exitRequested.Store(true)
	e.Ingress.RequestExit()
}

// ExitRequested reports whether shutdown has been requested.
func (e *Engine) ExitRequested() bool { return e.exitRequested.Load() }

// Shutdown sets exit_requested and stops the driver. It does not
// unregister the driver callbacks or release the ingress slot or any
// other buffer.
func (e *Engine) Shutdown() error {
	e.RequestExit()
	return e.Driver.Stop()
}
