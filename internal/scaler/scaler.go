// Package scaler implements the Scaler component (spec.md §4.7): pixel
// format normalisation to canonical 32-bit BGRA, target-size derivation,
// aspect-ratio padding, and up/down interpolation.
package scaler

import (
	"golang.org/x/image/draw"

	"github.com/bryanchriswhite/vcsengine/internal/frame"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

// Kernel names the closed set of interpolation identifiers exposed on
// the external surface. Area is aliased to Linear and Lanczos to Cubic
// (see SPEC_FULL.md §3): golang.org/x/image/draw ships exactly
// NearestNeighbor/ApproxBiLinear/BiLinear/CatmullRom, which does not
// stretch to five genuinely distinct kernels, but every identifier the
// external graph-file/CLI surface names must still resolve to something.
type Kernel string

const (
	Nearest Kernel = "Nearest"
	Linear  Kernel = "Linear"
	Area    Kernel = "Area"
	Cubic   Kernel = "Cubic"
	Lanczos Kernel = "Lanczos"
)

func resolveKernel(k Kernel) draw.Scaler {
	switch k {
	case Nearest:
		return draw.NearestNeighbor
	case Linear, Area:
		return draw.BiLinear
	case Cubic, Lanczos:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// AspectMode selects how forced_aspect computes the target ratio.
type AspectMode int

const (
	AspectNative AspectMode = iota
	AspectAlways4x3
	AspectTraditional4x3
)

// Config mirrors the user-configurable scaling knobs described in
// spec.md §4.7.
type Config struct {
	Upscaler   Kernel
	Downscaler Kernel

	ForceBaseResolution bool
	BaseResolution      modestore.Resolution

	ForceScaling   bool
	OutputScaling  float64

	ForcedAspect bool
	AspectMode   AspectMode

	MinOut modestore.Resolution
	MaxOut modestore.Resolution
}

// DefaultConfig returns Linear as both Upscaler and Downscaler, with no
// forcing or aspect correction and sane output bounds.
func DefaultConfig() Config {
	return Config{
		Upscaler:   Linear,
		Downscaler: Linear,
		MinOut:     modestore.Resolution{W: 64, H: 64, BPP: 32},
		MaxOut:     modestore.Resolution{W: 7680, H: 4320, BPP: 32},
	}
}

// traditionalResolutions is the source-dimension allowlist for
// traditional_4_3 mode (spec.md §4.7).
var traditionalResolutions = map[[2]int]bool{
	{720, 400}: true,
	{640, 400}: true,
	{320, 200}: true,
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundHalfUp(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}

// TargetSize derives the scaler's output resolution for a frame of
// capture resolution (cw, ch). recordingResolution, when non-zero,
// takes absolute priority (step 1 of spec.md §4.7).
func (c Config) TargetSize(cw, ch int, recordingResolution *modestore.Resolution) modestore.Resolution {
	if recordingResolution != nil && recordingResolution.W > 0 && recordingResolution.H > 0 {
		return modestore.Resolution{W: recordingResolution.W, H: recordingResolution.H, BPP: 32}
	}

	w, h := cw, ch
	if c.ForceBaseResolution {
		w, h = c.BaseResolution.W, c.BaseResolution.H
	}

	if c.ForceScaling {
		w = roundHalfUp(float64(w) * c.OutputScaling)
		h = roundHalfUp(float64(h) * c.OutputScaling)
	}

	if c.MaxOut.W > 0 {
		w = clampInt(w, c.MinOut.W, c.MaxOut.W)
		h = clampInt(h, c.MinOut.H, c.MaxOut.H)
	}

	return modestore.Resolution{W: w, H: h, BPP: 32}
}

// aspectRatio computes (w,h) reduced by gcd under the configured mode.
func (c Config) aspectRatio(cw, ch int) (int, int) {
	switch c.AspectMode {
	case AspectAlways4x3:
		return 4, 3
	case AspectTraditional4x3:
		if traditionalResolutions[[2]int{cw, ch}] {
			return 4, 3
		}
		g := gcd(cw, ch)
		return cw / g, ch / g
	default:
		g := gcd(cw, ch)
		return cw / g, ch / g
	}
}

// Padding describes the centre-pad border computed by AspectPad.
type Padding struct {
	Top, Bottom, Left, Right int
	InnerW, InnerH           int
}

// AspectPad computes the largest (w',h') under the configured aspect
// ratio that fits inside target, and the border needed to centre it.
// When (w',h')==target (skip case), or forced_aspect is off, all four
// borders are zero and InnerW/InnerH equal the target size.
func (c Config) AspectPad(cw, ch int, target modestore.Resolution) Padding {
	if !c.ForcedAspect {
		return Padding{InnerW: target.W, InnerH: target.H}
	}

	rw, rh := c.aspectRatio(cw, ch)
	if rw <= 0 || rh <= 0 {
		return Padding{InnerW: target.W, InnerH: target.H}
	}

	innerW := target.W
	innerH := innerW * rh / rw
	if innerH > target.H {
		innerH = target.H
		innerW = innerH * rw / rh
	}

	if innerW == target.W && innerH == target.H {
		return Padding{InnerW: innerW, InnerH: innerH}
	}

	dw := target.W - innerW
	dh := target.H - innerH
	return Padding{
		Top:    dh / 2,
		Bottom: dh - dh/2,
		Left:   dw / 2,
		Right:  dw - dw/2,
		InnerW: innerW,
		InnerH: innerH,
	}
}

// Clear produces a blanked (all-black) output frame at the given target
// size, matching `ks_clear_scaler_output_buffer`'s effect on loss of
// signal or an invalid signal (spec.md §4.8 main loop): the GUI-visible
// output goes black instead of keeping the last frame on screen.
func Clear(target modestore.Resolution) *frame.Frame {
	return frame.New(target.W, target.H)
}

// Normalize converts a raw capture buffer of the given pixel format to
// canonical 32-bit BGRA (spec.md §4.7 "Pixel-format normalisation").
func Normalize(data []byte, w, h, bpp int, format modestore.PixelFormat) *frame.Frame {
	out := frame.New(w, h)
	switch bpp {
	case 32:
		normalizeRGBA(out, data, w, h)
	case 24:
		normalizeBGR(out, data, w, h)
	case 16:
		normalize565(out, data, w, h, format)
	case 15:
		normalize555(out, data, w, h)
	default:
		// Unknown depth: assume RGB565, the fallback named in spec.md §4.7.
		normalize565(out, data, w, h, modestore.RGB565)
	}
	return out
}

func normalizeRGBA(out *frame.Frame, data []byte, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if i+3 >= len(data) {
				return
			}
			r, g, b, a := data[i], data[i+1], data[i+2], data[i+3]
			out.SetBGRA(x, y, b, g, r, a)
		}
	}
}

func normalizeBGR(out *frame.Frame, data []byte, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			if i+2 >= len(data) {
				return
			}
			b, g, r := data[i], data[i+1], data[i+2]
			out.SetBGRA(x, y, b, g, r, 255)
		}
	}
}

func normalize565(out *frame.Frame, data []byte, w, h int, format modestore.PixelFormat) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 2
			if i+1 >= len(data) {
				return
			}
			v := uint16(data[i]) | uint16(data[i+1])<<8
			var r, g, b byte
			if format == modestore.RGB555 {
				r = byte((v >> 10) & 0x1F << 3)
				g = byte((v >> 5) & 0x1F << 3)
				b = byte(v & 0x1F << 3)
			} else {
				r = byte((v >> 11) & 0x1F << 3)
				g = byte((v >> 5) & 0x3F << 2)
				b = byte(v & 0x1F << 3)
			}
			out.SetBGRA(x, y, b, g, r, 255)
		}
	}
}

func normalize555(out *frame.Frame, data []byte, w, h int) {
	normalize565(out, data, w, h, modestore.RGB555)
}

// PadToTarget places src at (pad.Left, pad.Top) within a target.W x
// target.H black canvas. Returns src unchanged if no padding is needed.
func PadToTarget(src *frame.Frame, target modestore.Resolution, pad Padding) *frame.Frame {
	if pad.Left == 0 && pad.Top == 0 && pad.InnerW == target.W && pad.InnerH == target.H {
		return src
	}
	out := frame.New(target.W, target.H)
	out.FillBlack()
	for y := 0; y < src.H && y+pad.Top < out.H; y++ {
		for x := 0; x < src.W && x+pad.Left < out.W; x++ {
			b, g, r, a := src.PixelAt(x, y)
			out.SetBGRA(x+pad.Left, y+pad.Top, b, g, r, a)
		}
	}
	return out
}

// Scale resizes src to exactly target's (InnerW,InnerH) using the
// upscaler or downscaler according to spec.md §4.7's selection rule,
// then centre-pads to target's full dimensions. The kernel is chosen by
// comparing src against the full target size, independently of the
// aspect-corrected inner rectangle used as the resize destination
// (original_source/src/scaler/scaler.cpp:556-573 picks the kernel
// before computing the aspect rectangle at all).
func (c Config) Scale(src *frame.Frame, target modestore.Resolution, pad Padding) *frame.Frame {
	innerW, innerH := pad.InnerW, pad.InnerH
	if innerW <= 0 {
		innerW = target.W
	}
	if innerH <= 0 {
		innerH = target.H
	}

	var kernel draw.Scaler
	if src.W < target.W || src.H < target.H {
		kernel = resolveKernel(c.Upscaler)
	} else {
		kernel = resolveKernel(c.Downscaler)
	}

	resized := frame.New(innerW, innerH)
	kernel.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Over, nil)

	return PadToTarget(resized, target, pad)
}
