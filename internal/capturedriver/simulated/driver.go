// Package simulated provides an in-memory capturedriver.Driver used by
// tests and by the engine when no physical capture device is
// configured.
package simulated

import (
	"fmt"
	"sync"

	"github.com/bryanchriswhite/vcsengine/internal/capturedriver"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
	"github.com/bryanchriswhite/vcsengine/internal/vcserr"
)

// Driver is a fully in-process stand-in for a vendor capture card: it
// never talks to hardware, but honours the same CaptureDriver contract
// so the rest of the engine cannot tell the difference.
type Driver struct {
	mu sync.RWMutex

	loaded      bool
	channel     int
	channelOpen bool
	running     bool
	paused      bool

	color    modestore.ColorParams
	geometry modestore.GeometryParams

	capturedW, capturedH int
	pixelFormat          modestore.PixelFormat

	callbacks capturedriver.Callbacks
}

// New returns an unloaded simulated driver.
func New() *Driver {
	return &Driver{capturedW: 640, capturedH: 480, pixelFormat: modestore.RGB888}
}

var _ capturedriver.Driver = (*Driver)(nil)

func (d *Driver) Load() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = true
	return nil
}

func (d *Driver) Free() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = false
	return nil
}

func (d *Driver) OpenInput(channel int) error {
	if channel < 0 || channel >= capturedriver.MaxChannels {
		return vcserr.New(vcserr.InvalidChannel, fmt.Sprintf("channel %d out of range", channel))
	}
	d.mu.Lock()
	d.channel = channel
	d.channelOpen = true
	d.mu.Unlock()
	return nil
}

func (d *Driver) CloseInput() error {
	d.mu.Lock()
	d.channelOpen = false
	d.mu.Unlock()
	return nil
}

func (d *Driver) Start() error {
	d.mu.Lock()
	d.running = true
	d.mu.Unlock()
	return nil
}

func (d *Driver) Stop() error {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	return nil
}

func (d *Driver) Pause() error {
	d.mu.Lock()
	d.paused = true
	d.mu.Unlock()
	return nil
}

func (d *Driver) Resume() error {
	d.mu.Lock()
	d.paused = false
	d.mu.Unlock()
	return nil
}

func (d *Driver) SetFrameDropping(n int) bool {
	return n >= 0 && n < 100
}

func (d *Driver) SetPixelFormat(fmt_ modestore.PixelFormat) bool {
	d.mu.Lock()
	d.pixelFormat = fmt_
	d.mu.Unlock()
	return true
}

func (d *Driver) SetCaptureWidth(w int) bool {
	d.mu.Lock()
	d.capturedW = w
	d.mu.Unlock()
	return true
}

func (d *Driver) SetCaptureHeight(h int) bool {
	d.mu.Lock()
	d.capturedH = h
	d.mu.Unlock()
	return true
}

func (d *Driver) SetOutputSize(w, h int) bool { return w > 0 && h > 0 }

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

func (d *Driver) DefaultColorParams() modestore.ColorParams { return modestore.ColorParams{} }
func (d *Driver) MinColorParams() modestore.ColorParams     { return modestore.ColorParams{Bright: -100, Contr: -100} }
func (d *Driver) MaxColorParams() modestore.ColorParams     { return modestore.ColorParams{Bright: 100, Contr: 100} }
func (d *Driver) DefaultGeometryParams() modestore.GeometryParams {
	return modestore.GeometryParams{VerPos: modestore.MinVerPos}
}
func (d *Driver) MinGeometryParams() modestore.GeometryParams {
	return modestore.GeometryParams{VerPos: 0}
}
func (d *Driver) MaxGeometryParams() modestore.GeometryParams {
	return modestore.GeometryParams{VerPos: 2048, HorScale: 2048}
}

func (d *Driver) RegisterCallbacks(cb capturedriver.Callbacks) {
	d.mu.Lock()
	d.callbacks = cb
	d.mu.Unlock()
}

func (d *Driver) CaptureResolution() modestore.Resolution {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return modestore.Resolution{W: d.capturedW, H: d.capturedH, BPP: 32}
}

func (d *Driver) ForceResolution(r modestore.Resolution) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r.W == d.capturedW && r.H == d.capturedH {
		return false, nil
	}
	d.capturedW, d.capturedH = r.W, r.H
	return true, nil
}

func (d *Driver) NumInputs() int                             { return 4 }
func (d *Driver) MinCaptureResolution() modestore.Resolution { return modestore.Resolution{W: 16, H: 16, BPP: 15} }
func (d *Driver) MaxCaptureResolution() modestore.Resolution {
	return modestore.Resolution{W: 1920, H: 1200, BPP: 32}
}
func (d *Driver) ModelName() string       { return "simulated" }
func (d *Driver) DriverVersion() string   { return "0.0.0-simulated" }
func (d *Driver) FirmwareVersion() string { return "n/a" }

func (d *Driver) Capabilities() capturedriver.Capabilities {
	return capturedriver.Capabilities{
		ModelName:       d.ModelName(),
		DriverVersion:   d.DriverVersion(),
		FirmwareVersion: d.FirmwareVersion(),
		NumInputs:       d.NumInputs(),
		MinResolution:   d.MinCaptureResolution(),
		MaxResolution:   d.MaxCaptureResolution(),
		SupportsComponent: true,
		SupportsComposite: true,
		SupportsVGA:       true,
	}
}

// InjectFrame lets tests/demo code push a frame through the registered
// OnFrame callback as if the device had delivered it.
func (d *Driver) InjectFrame(w, h, bpp int, data []byte) {
	d.mu.RLock()
	cb := d.callbacks.OnFrame
	d.mu.RUnlock()
	if cb != nil {
		cb(capturedriver.FrameEvent{Width: w, Height: h, BPP: bpp, Data: data})
	}
}

// InjectModeChanged invokes the registered OnModeChanged callback.
func (d *Driver) InjectModeChanged() {
	d.mu.RLock()
	cb := d.callbacks.OnModeChanged
	d.mu.RUnlock()
	if cb != nil {
		cb()
	}
}

// InjectNoSignal invokes the registered OnNoSignal callback.
func (d *Driver) InjectNoSignal() {
	d.mu.RLock()
	cb := d.callbacks.OnNoSignal
	d.mu.RUnlock()
	if cb != nil {
		cb()
	}
}

// InjectInvalidSignal invokes the registered OnInvalidSignal callback.
func (d *Driver) InjectInvalidSignal() {
	d.mu.RLock()
	cb := d.callbacks.OnInvalidSignal
	d.mu.RUnlock()
	if cb != nil {
		cb()
	}
}

// InjectError invokes the registered OnError callback.
func (d *Driver) InjectError() {
	d.mu.RLock()
	cb := d.callbacks.OnError
	d.mu.RUnlock()
	if cb != nil {
		cb()
	}
}
