// Package capturedriver declares the CaptureDriver trait (spec.md §4.1):
// the abstract adapter over the vendor capture device API. The engine
// never talks to hardware directly; it only calls through this
// interface, so any concrete adapter (a GStreamer/v4l2 pipeline, a
// simulated in-memory source, a future vendor SDK binding) can stand in
// for it interchangeably.
package capturedriver

import "github.com/bryanchriswhite/vcsengine/internal/modestore"

// MaxChannels bounds the legal channel argument to OpenInput.
const MaxChannels = 16

// Callbacks is the set of handlers the driver invokes on its own
// thread(s). Register exactly these five; the engine never exposes bare
// function pointers or a global callback table (spec.md §9 design
// notes), only this struct passed to RegisterCallbacks.
type Callbacks struct {
	OnFrame          func(frame FrameEvent)
	OnModeChanged    func()
	OnInvalidSignal  func()
	OnNoSignal       func()
	OnError          func()
}

// FrameEvent is what the driver hands to OnFrame: the frame's declared
// geometry and a view of its raw pixel bytes. The callee must treat data
// as borrowed for the duration of the call only.
type FrameEvent struct {
	Width, Height, BPP int
	Data                []byte
}

// Capabilities describes what operations and formats a concrete driver
// supports (spec.md §4.1 introspection).
type Capabilities struct {
	ModelName       string
	DriverVersion   string
	FirmwareVersion string
	NumInputs       int
	MinResolution   modestore.Resolution
	MaxResolution   modestore.Resolution

	SupportsComponent   bool
	SupportsComposite   bool
	SupportsDVI         bool
	SupportsSVideo      bool
	SupportsVGA         bool
	SupportsYUV         bool
	SupportsDMA         bool
	SupportsDeinterlace bool
}

// Driver is the CaptureDriver trait from spec.md §4.1. Every setter
// returns a success flag; on failure the engine must treat the prior
// value as still in force (spec.md §7 propagation policy) and report
// DriverCallFailed upward, never panicking or guessing a new value.
type Driver interface {
	Load() error
	Free() error

	OpenInput(channel int) error
	CloseInput() error

	Start() error
	Stop() error
	Pause() error
	Resume() error

	SetFrameDropping(n int) bool
	SetPixelFormat(fmt modestore.PixelFormat) bool

	SetCaptureWidth(v int) bool
	SetCaptureHeight(v int) bool
	SetOutputSize(w, h int) bool

	// Geometry and color setters satisfy modestore.ParamWriter so a
	// Driver can be passed directly to Store.Apply.
	SetPhase(v int) bool
	SetBlackLevel(v int) bool
	SetHorPos(v int) bool
	SetVerPos(v int) bool
	SetHorScale(v int) bool
	SetBrightness(v int) bool
	SetContrast(v int) bool
	SetColorBalance(c modestore.ColorParams) bool

	DefaultColorParams() modestore.ColorParams
	MinColorParams() modestore.ColorParams
	MaxColorParams() modestore.ColorParams
	DefaultGeometryParams() modestore.GeometryParams
	MinGeometryParams() modestore.GeometryParams
	MaxGeometryParams() modestore.GeometryParams

	RegisterCallbacks(cb Callbacks)

	CaptureResolution() modestore.Resolution

	// ForceResolution asks the device to switch to r. Per spec.md §9
	// open questions, a request equal to the resolution already in
	// force is refused (returns false, nil) so alias application that
	// maps a resolution to itself silently no-ops.
	ForceResolution(r modestore.Resolution) (bool, error)

	NumInputs() int
	MinCaptureResolution() modestore.Resolution
	MaxCaptureResolution() modestore.Resolution
	ModelName() string
	DriverVersion() string
	FirmwareVersion() string
	Capabilities() Capabilities
}

var _ modestore.ParamWriter = Driver(nil)
