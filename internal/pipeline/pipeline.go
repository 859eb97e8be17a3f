// Package pipeline implements PipelineDriver (spec.md §4.8): the main
// thread's cooperative event loop, from ingress event to filter graph
// to scaler to recorder/GUI publish.
package pipeline

import (
	"time"

	"github.com/bryanchriswhite/vcsengine/internal/engine"
	"github.com/bryanchriswhite/vcsengine/internal/filtergraph"
	"github.com/bryanchriswhite/vcsengine/internal/frame"
	"github.com/bryanchriswhite/vcsengine/internal/ingress"
	"github.com/bryanchriswhite/vcsengine/internal/logger"
	"github.com/bryanchriswhite/vcsengine/internal/metrics"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/scaler"
)

// Driver runs the main loop against an Engine.
type Driver struct {
	eng         *engine.Engine
	yield       time.Duration
	onPublish   func(out *frame.Frame)
	pixelFormat modestore.PixelFormat
	lastTarget  modestore.Resolution
}

// New creates a PipelineDriver. yield is the brief sleep on Sleep/None
// events (spec.md §4.8); onPublish receives every scaled output frame
// ("gui.publish").
func New(eng *engine.Engine, yield time.Duration, onPublish func(out *frame.Frame)) *Driver {
	if yield <= 0 {
		yield = 2 * time.Millisecond
	}
	return &Driver{
		eng:         eng,
		yield:       yield,
		onPublish:   onPublish,
		pixelFormat: modestore.RGB888,
		lastTarget:  eng.Scaler.MinOut,
	}
}

// SetPixelFormat records the source pixel format the driver currently
// reports, used to normalize raw frame bytes to BGRA (spec.md §4.7).
// The CaptureDriver trait exposes SetPixelFormat as write-only, so the
// pipeline tracks its own idea of the format alongside the driver call.
func (d *Driver) SetPixelFormat(f modestore.PixelFormat) {
	d.pixelFormat = f
}

// Tick consumes at most one capture event, per spec.md §4.8's loop body.
func (d *Driver) Tick() {
	event := d.eng.Ingress.NextEvent()
	metrics.RecordTick(eventName(event.Kind))

	switch event.Kind {
	case ingress.UnrecoverableError:
		logger.WithComponent("pipeline").Error().Msg("unrecoverable capture error, pipeline stopping")
		d.eng.RequestExit()

	case ingress.NewVideoMode:
		d.handleNewVideoMode()

	case ingress.NoSignalEvent:
		d.eng.Bus.SetNoSignal()
		d.clearOutput()

	case ingress.InvalidSignalEvent:
		d.eng.Bus.UpdateCaptureSignalInfo(map[string]bool{"invalid": true})
		d.clearOutput()

	case ingress.NewFrame:
		d.handleNewFrame()
		d.eng.Ingress.MarkProcessed()

	case ingress.Sleep, ingress.None:
		time.Sleep(d.yield)
	}

	metrics.SetMissedFrameCount(d.eng.Ingress.MissedFrameCount())
}

// Run loops Tick until shutdown is requested.
func (d *Driver) Run() {
	for !d.eng.ExitRequested() {
		d.Tick()
	}
}

func eventName(k ingress.EventKind) string {
	switch k {
	case ingress.NewFrame:
		return "new_frame"
	case ingress.NewVideoMode:
		return "new_video_mode"
	case ingress.NoSignalEvent:
		return "no_signal"
	case ingress.InvalidSignalEvent:
		return "invalid_signal"
	case ingress.Sleep:
		return "sleep"
	case ingress.UnrecoverableError:
		return "unrecoverable_error"
	default:
		return "none"
	}
}

func (d *Driver) handleNewVideoMode() {
	resolution := d.eng.Driver.CaptureResolution()

	store := d.eng.Store()
	if target, ok := store.ResolveAlias(resolution); ok {
		if changed, err := d.eng.Driver.ForceResolution(target); err == nil && changed {
			d.eng.Ingress.AddSkipNext(2)
			resolution = target
		}
	}

	store.Apply(resolution, d.eng.Driver)
	d.eng.Bus.SetReceivingSignal()
	d.eng.Bus.UpdateVideoParams(store.ParamsFor(resolution))
}

func (d *Driver) handleNewFrame() {
	if d.eng.Ingress.ShouldSkipDisplay() {
		return
	}

	resolution, data := d.eng.Ingress.Frame()
	if len(data) == 0 {
		return
	}

	normalized := scaler.Normalize(data, resolution.W, resolution.H, resolution.BPP, d.pixelFormat)

	processed := d.eng.AntiTear.Apply(normalized, resolution)
	if processed == nil {
		return
	}

	var recRes *modestore.Resolution
	if d.eng.Recorder != nil && d.eng.Recorder.Active() {
		r := d.eng.Recorder.Resolution()
		recRes = &r
	}

	if d.eng.FilteringEnabled() {
		processed = d.applyFilters(processed, resolution, recRes)
	}

	target := d.eng.Scaler.TargetSize(resolution.W, resolution.H, recRes)
	pad := d.eng.Scaler.AspectPad(resolution.W, resolution.H, target)
	out := d.eng.Scaler.Scale(processed, target, pad)
	d.lastTarget = target

	if d.eng.Recorder != nil {
		d.eng.Recorder.PushIfActive(out.Pix, target)
	}
	if d.onPublish != nil {
		d.onPublish(out)
	}
}

// clearOutput blanks the scaler output on loss or invalidity of signal
// (spec.md §4.8), matching `ks_clear_scaler_output_buffer` in the
// original implementation: the GUI-visible frame goes black instead of
// the last captured frame staying on screen indefinitely.
func (d *Driver) clearOutput() {
	blank := scaler.Clear(d.lastTarget)
	if d.eng.Recorder != nil {
		d.eng.Recorder.PushIfActive(blank.Pix, d.lastTarget)
	}
	if d.onPublish != nil {
		d.onPublish(blank)
	}
}

func (d *Driver) applyFilters(in *frame.Frame, resolution modestore.Resolution, recRes *modestore.Resolution) *frame.Frame {
	g := d.eng.Graph()
	chains, warnings := g.ExtractChains()
	for range warnings {
		metrics.RecordCycleWarning()
	}

	target := d.eng.Scaler.TargetSize(resolution.W, resolution.H, recRes)
	chain, ok := filtergraph.SelectChain(chains, g, resolution.W, resolution.H, target.W, target.H)
	if !ok {
		return in
	}

	out, err := g.Apply(chain, in)
	if err != nil {
		logger.WithComponent("pipeline").Warn().Err(err).Msg("filter chain application failed")
		return in
	}
	return out
}
