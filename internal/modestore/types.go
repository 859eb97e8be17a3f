// Package modestore holds the capture mode parameter store: a keyed map
// of color/geometry parameters per input resolution, with resolution
// aliasing (spec.md §4.3).
package modestore

import "fmt"

// PixelFormat is the closed set of source pixel formats the driver may
// report. All of them are normalised to 32-bit BGRA internally.
type PixelFormat int

const (
	RGB565 PixelFormat = iota
	RGB555
	RGB888
)

func (f PixelFormat) String() string {
	switch f {
	case RGB565:
		return "RGB565"
	case RGB555:
		return "RGB555"
	case RGB888:
		return "RGB888"
	default:
		return "unknown"
	}
}

// Resolution is a capture or output frame size. BPP is ignored for mode
// identity purposes (spec.md §3).
type Resolution struct {
	W, H int
	BPP  int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d@%d", r.W, r.H, r.BPP)
}

// Key returns the (w,h) identity used by ModeStore and Alias lookups.
type Key struct {
	W, H int
}

func (r Resolution) Key() Key {
	return Key{W: r.W, H: r.H}
}

// ColorParams are the driver's signed color-correction knobs, bounded by
// driver-reported min/max (spec.md §3).
type ColorParams struct {
	Bright      int
	Contr       int
	RedBright   int
	GreenBright int
	BlueBright  int
	RedContr    int
	GreenContr  int
	BlueContr   int
}

// GeometryParams are the driver's signed geometry knobs. VerPos carries
// the hardware-quirk floor of 2 regardless of the driver's reported
// minimum (spec.md §3); that floor is enforced by DriverBounds'
// DefaultGeometry / ClampGeometry, not by this struct.
type GeometryParams struct {
	Phase      int
	BlackLevel int
	HorPos     int
	VerPos     int
	HorScale   int
}

// MinVerPos is the hardware-quirk floor enforced on every geometry write
// regardless of what the driver itself reports as its minimum.
const MinVerPos = 2

// ModeParams is one stored mode: the pair of (color, geometry) settings
// keyed by capture resolution. Identity is resolution.(w,h); bpp is not
// part of the identity.
type ModeParams struct {
	Resolution Resolution
	Color      ColorParams
	Geometry   GeometryParams
}

// Alias maps a reported capture resolution to a different target
// resolution the engine forces the device into. At most one Alias exists
// per From key (spec.md §4.3, invariant 4 in §8).
type Alias struct {
	From Key
	To   Key
}

// Bounds describes the driver-reported legal range for one parameter.
type Bounds struct {
	Default, Min, Max int
}

// Clamp returns v constrained to [Min, Max].
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// DriverBounds is the full set of driver-reported default/min/max bounds
// for every color and geometry parameter. A ModeStore consults this to
// manufacture fresh default entries (spec.md §4.3 params_for).
type DriverBounds struct {
	Bright, Contr                                  Bounds
	RedBright, GreenBright, BlueBright              Bounds
	RedContr, GreenContr, BlueContr                 Bounds
	Phase, BlackLevel, HorPos, VerPos, HorScale     Bounds
}

// DefaultColor returns a ColorParams populated from each bound's default.
func (d DriverBounds) DefaultColor() ColorParams {
	return ColorParams{
		Bright:      d.Bright.Default,
		Contr:       d.Contr.Default,
		RedBright:   d.RedBright.Default,
		GreenBright: d.GreenBright.Default,
		BlueBright:  d.BlueBright.Default,
		RedContr:    d.RedContr.Default,
		GreenContr:  d.GreenContr.Default,
		BlueContr:   d.BlueContr.Default,
	}
}

// DefaultGeometry returns a GeometryParams populated from each bound's
// default, with the VerPos hardware floor applied.
func (d DriverBounds) DefaultGeometry() GeometryParams {
	g := GeometryParams{
		Phase:      d.Phase.Default,
		BlackLevel: d.BlackLevel.Default,
		HorPos:     d.HorPos.Default,
		VerPos:     d.VerPos.Default,
		HorScale:   d.HorScale.Default,
	}
	if g.VerPos < MinVerPos {
		g.VerPos = MinVerPos
	}
	return g
}

// ClampColor bounds every field of c to d's reported ranges.
func (d DriverBounds) ClampColor(c ColorParams) ColorParams {
	return ColorParams{
		Bright:      d.Bright.Clamp(c.Bright),
		Contr:       d.Contr.Clamp(c.Contr),
		RedBright:   d.RedBright.Clamp(c.RedBright),
		GreenBright: d.GreenBright.Clamp(c.GreenBright),
		BlueBright:  d.BlueBright.Clamp(c.BlueBright),
		RedContr:    d.RedContr.Clamp(c.RedContr),
		GreenContr:  d.GreenContr.Clamp(c.GreenContr),
		BlueContr:   d.BlueContr.Clamp(c.BlueContr),
	}
}

// ClampGeometry bounds every field of g to d's reported ranges, then
// enforces the VerPos ≥ 2 hardware floor regardless of the driver's
// reported minimum (spec.md §3, §8 boundary behaviour).
func (d DriverBounds) ClampGeometry(g GeometryParams) GeometryParams {
	out := GeometryParams{
		Phase:      d.Phase.Clamp(g.Phase),
		BlackLevel: d.BlackLevel.Clamp(g.BlackLevel),
		HorPos:     d.HorPos.Clamp(g.HorPos),
		VerPos:     d.VerPos.Clamp(g.VerPos),
		HorScale:   d.HorScale.Clamp(g.HorScale),
	}
	if out.VerPos < MinVerPos {
		out.VerPos = MinVerPos
	}
	return out
}
