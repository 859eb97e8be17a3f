// Package gst implements capturedriver.Driver against a real v4l2
// capture device via GStreamer, grounded on the appsink polling pattern
// used for PipeWire capture in the teacher repo and the signal-callback
// pattern used for RTSP capture in the stream-capture retrieval example.
package gst

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/mattn/go-pointer"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/bryanchriswhite/vcsengine/internal/capturedriver"
	"github.com/bryanchriswhite/vcsengine/internal/logger"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/vcserr"
)

// Driver is a capturedriver.Driver backed by a v4l2src ! videoconvert !
// appsink GStreamer pipeline.
type Driver struct {
	mu sync.RWMutex

	device  string
	channel int

	pipeline *gst.Pipeline
	appsink  *app.Sink
	bus      *gst.Bus

	loaded  bool
	running bool
	stop    chan struct{}

	callbacks capturedriver.Callbacks

	capturedWidth, capturedHeight int
	outputWidth, outputHeight     int
	pixelFormat                   modestore.PixelFormat
	frameDropPct                  int

	color    modestore.ColorParams
	geometry modestore.GeometryParams

	handle unsafe.Pointer
}

// New returns an unloaded Driver bound to device (e.g. "/dev/video0").
func New(device string) *Driver {
	return &Driver{device: device, pixelFormat: modestore.RGB888}
}

var _ capturedriver.Driver = (*Driver)(nil)

func (d *Driver) Load() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}
	gst.Init(nil)
	d.loaded = true
	d.handle = pointer.Save(d)
	return nil
}

func (d *Driver) Free() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return nil
	}
	if d.handle != nil {
		pointer.Unref(d.handle)
		d.handle = nil
	}
	d.loaded = false
	return nil
}

func (d *Driver) OpenInput(channel int) error {
	if channel < 0 || channel >= capturedriver.MaxChannels {
		return vcserr.New(vcserr.InvalidChannel, fmt.Sprintf("channel %d out of range", channel))
	}
	d.mu.Lock()
	d.channel = channel
	d.mu.Unlock()
	return nil
}

func (d *Driver) CloseInput() error {
	return d.Stop()
}

func (d *Driver) pipelineString() string {
	return fmt.Sprintf(
		"v4l2src device=%s io-mode=4 ! "+
			"videoconvert ! "+
			"video/x-raw,format=BGRA ! "+
			"appsink name=sink emit-signals=false max-buffers=2 drop=true",
		d.device,
	)
}

func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}

	log := logger.WithComponent("capturedriver-gst")

	pipeline, err := gst.NewPipelineFromString(d.pipelineString())
	if err != nil {
		return vcserr.Wrap(vcserr.DriverCallFailed, "failed to create gstreamer pipeline", err)
	}
	d.pipeline = pipeline

	sinkElement, err := pipeline.GetElementByName("sink")
	if err != nil {
		return vcserr.Wrap(vcserr.DriverCallFailed, "failed to get appsink", err)
	}
	d.appsink = app.SinkFromElement(sinkElement)
	d.bus = pipeline.GetPipelineBus()

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return vcserr.Wrap(vcserr.DriverCallFailed, "failed to start pipeline", err)
	}

	d.running = true
	d.stop = make(chan struct{})
	go d.pollSamples()
	go d.watchBus()

	log.Info().Str("device", d.device).Msg("capture pipeline started")
	return nil
}

func (d *Driver) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stop)
	d.mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pipeline != nil {
		d.pipeline.SetState(gst.StateNull)
		d.pipeline = nil
	}
	return nil
}

func (d *Driver) Pause() error {
	d.mu.RLock()
	p := d.pipeline
	d.mu.RUnlock()
	if p == nil {
		return nil
	}
	if err := p.SetState(gst.StatePaused); err != nil {
		return vcserr.Wrap(vcserr.DriverCallFailed, "pause failed", err)
	}
	return nil
}

func (d *Driver) Resume() error {
	d.mu.RLock()
	p := d.pipeline
	d.mu.RUnlock()
	if p == nil {
		return nil
	}
	if err := p.SetState(gst.StatePlaying); err != nil {
		return vcserr.Wrap(vcserr.DriverCallFailed, "resume failed", err)
	}
	return nil
}

func (d *Driver) SetFrameDropping(n int) bool {
	if n < 0 || n >= 100 {
		return false
	}
	d.mu.Lock()
	d.frameDropPct = n
	d.mu.Unlock()
	return true
}

func (d *Driver) SetPixelFormat(fmt_ modestore.PixelFormat) bool {
	d.mu.Lock()
	d.pixelFormat = fmt_
	d.mu.Unlock()
	return true
}

func (d *Driver) SetCaptureWidth(w int) bool {
	d.mu.Lock()
	d.capturedWidth = w
	d.mu.Unlock()
	return true
}

func (d *Driver) SetCaptureHeight(h int) bool {
	d.mu.Lock()
	d.capturedHeight = h
	d.mu.Unlock()
	return true
}

func (d *Driver) SetOutputSize(w, h int) bool {
	d.mu.Lock()
	d.outputWidth, d.outputHeight = w, h
	d.mu.Unlock()
	return true
}

func (d *Driver) SetBrightness(v int) bool {
	d.mu.Lock()
	d.color.Bright = v
	d.mu.Unlock()
	return true
}
func (d *Driver) SetContrast(v int) bool {
	d.mu.Lock()
	d.color.Contr = v
	d.mu.Unlock()
	return true
}
func (d *Driver) SetColorBalance(c modestore.ColorParams) bool {
	d.mu.Lock()
	d.color.RedBright, d.color.GreenBright, d.color.BlueBright = c.RedBright, c.GreenBright, c.BlueBright
	d.color.RedContr, d.color.GreenContr, d.color.BlueContr = c.RedContr, c.GreenContr, c.BlueContr
	d.mu.Unlock()
	return true
}
func (d *Driver) SetPhase(v int) bool {
	d.mu.Lock()
	d.geometry.Phase = v
	d.mu.Unlock()
	return true
}
func (d *Driver) SetBlackLevel(v int) bool {
	d.mu.Lock()
	d.geometry.BlackLevel = v
	d.mu.Unlock()
	return true
}
func (d *Driver) SetHorPos(v int) bool {
	d.mu.Lock()
	d.geometry.HorPos = v
	d.mu.Unlock()
	return true
}
func (d *Driver) SetVerPos(v int) bool {
	if v < modestore.MinVerPos {
		return false
	}
	d.mu.Lock()
	d.geometry.VerPos = v
	d.mu.Unlock()
	return true
}
func (d *Driver) SetHorScale(v int) bool {
	d.mu.Lock()
	d.geometry.HorScale = v
	d.mu.Unlock()
	return true
}

func (d *Driver) DefaultColorParams() modestore.ColorParams    { return modestore.ColorParams{} }
func (d *Driver) MinColorParams() modestore.ColorParams        { return modestore.ColorParams{Bright: -128, Contr: -128} }
func (d *Driver) MaxColorParams() modestore.ColorParams        { return modestore.ColorParams{Bright: 127, Contr: 127} }
func (d *Driver) DefaultGeometryParams() modestore.GeometryParams {
	return modestore.GeometryParams{VerPos: modestore.MinVerPos}
}
func (d *Driver) MinGeometryParams() modestore.GeometryParams {
	return modestore.GeometryParams{VerPos: 0}
}
func (d *Driver) MaxGeometryParams() modestore.GeometryParams {
	return modestore.GeometryParams{VerPos: 4095, HorScale: 4095}
}

func (d *Driver) RegisterCallbacks(cb capturedriver.Callbacks) {
	d.mu.Lock()
	d.callbacks = cb
	d.mu.Unlock()
}

func (d *Driver) CaptureResolution() modestore.Resolution {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return modestore.Resolution{W: d.capturedWidth, H: d.capturedHeight, BPP: 32}
}

// ForceResolution refuses when r is already the current capture
// resolution (spec.md §9 open question resolution).
func (d *Driver) ForceResolution(r modestore.Resolution) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r.W == d.capturedWidth && r.H == d.capturedHeight {
		return false, nil
	}
	d.capturedWidth, d.capturedHeight = r.W, r.H
	return true, nil
}

func (d *Driver) NumInputs() int                                 { return 1 }
func (d *Driver) MinCaptureResolution() modestore.Resolution     { return modestore.Resolution{W: 16, H: 16, BPP: 15} }
func (d *Driver) MaxCaptureResolution() modestore.Resolution     { return modestore.Resolution{W: 1920, H: 1200, BPP: 32} }
func (d *Driver) ModelName() string                              { return "v4l2-generic" }
func (d *Driver) DriverVersion() string                          { return "gst-" + gst.VersionString() }
func (d *Driver) FirmwareVersion() string                        { return "unknown" }

func (d *Driver) Capabilities() capturedriver.Capabilities {
	return capturedriver.Capabilities{
		ModelName:       d.ModelName(),
		DriverVersion:   d.DriverVersion(),
		FirmwareVersion: d.FirmwareVersion(),
		NumInputs:       d.NumInputs(),
		MinResolution:   d.MinCaptureResolution(),
		MaxResolution:   d.MaxCaptureResolution(),
		SupportsComposite: true,
		SupportsSVideo:    true,
	}
}

// pollSamples pulls frames off the appsink on a dedicated goroutine,
// mirroring the teacher's avoid-CGO-callback polling loop rather than
// GStreamer's native new-sample signal, which is safer across the cgo
// boundary for long-lived pipelines.
func (d *Driver) pollSamples() {
	ticker := time.NewTicker(8 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.mu.RLock()
			sink := d.appsink
			running := d.running
			d.mu.RUnlock()
			if !running || sink == nil {
				continue
			}
			sample := sink.TryPullSample(time.Millisecond)
			if sample == nil {
				continue
			}
			d.emitSample(sample)
		}
	}
}

func (d *Driver) emitSample(sample *gst.Sample) {
	buffer := sample.GetBuffer()
	if buffer == nil {
		return
	}
	caps := sample.GetCaps()
	if caps == nil {
		return
	}
	structure := caps.GetStructureAt(0)
	if structure == nil {
		return
	}
	widthVal, _ := structure.GetValue("width")
	heightVal, _ := structure.GetValue("height")
	w, ok1 := widthVal.(int)
	h, ok2 := heightVal.(int)
	if !ok1 || !ok2 {
		return
	}

	mapInfo := buffer.Map(gst.MapRead)
	if mapInfo == nil {
		return
	}
	defer buffer.Unmap()

	data := mapInfo.Bytes()
	frameData := make([]byte, len(data))
	copy(frameData, data)

	d.mu.Lock()
	d.capturedWidth, d.capturedHeight = w, h
	cb := d.callbacks.OnFrame
	d.mu.Unlock()

	if cb != nil {
		cb(capturedriver.FrameEvent{Width: w, Height: h, BPP: 32, Data: frameData})
	}
}

// watchBus dispatches pipeline bus messages onto the registered
// callbacks: end-of-stream goes to OnNoSignal and errors to OnError.
// Every other message is ignored; nothing here invokes OnModeChanged or
// OnInvalidSignal.
func (d *Driver) watchBus() {
	d.mu.RLock()
	bus := d.bus
	d.mu.RUnlock()
	if bus == nil {
		return
	}

	for {
		select {
		case <-d.stop:
			return
		default:
		}
		msg := bus.TimedPop(100 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			d.mu.RLock()
			cb := d.callbacks.OnNoSignal
			d.mu.RUnlock()
			if cb != nil {
				cb()
			}
		case gst.MessageError:
			d.mu.RLock()
			cb := d.callbacks.OnError
			d.mu.RUnlock()
			if cb != nil {
				cb()
			}
		}
	}
}
