// Package frame defines the engine's canonical in-memory pixel format:
// 32-bit BGRA (spec.md §3 CapturedFrame, PixelFormat). Every stage of the
// pipeline after color-format normalisation — anti-tear, the filter
// graph, the scaler — reads and writes this type, so it also implements
// image.Image/draw.Image to let internal/scaler drive golang.org/x/image
// draw kernels directly over it.
package frame

import (
	"image"
	"image/color"

	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

// BytesPerPixel is fixed: the canonical internal format is always
// 32-bit BGRA (spec.md §3).
const BytesPerPixel = 4

// Frame is a mutable W×H BGRA pixel buffer.
type Frame struct {
	W, H int
	Pix  []byte // len == W*H*4, byte order B,G,R,A
}

// New allocates a zeroed frame of the given size: every byte, alpha
// included, is 0 (FillBlack gives opaque black).
func New(w, h int) *Frame {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Frame{W: w, H: h, Pix: make([]byte, w*h*BytesPerPixel)}
}

// Resolution reports the frame's size with BPP fixed at 32.
func (f *Frame) Resolution() modestore.Resolution {
	return modestore.Resolution{W: f.W, H: f.H, BPP: 32}
}

func (f *Frame) offset(x, y int) int {
	return (y*f.W + x) * BytesPerPixel
}

// PixelAt returns the raw BGRA bytes at (x,y).
func (f *Frame) PixelAt(x, y int) (b, g, r, a byte) {
	i := f.offset(x, y)
	p := f.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

// SetBGRA writes the BGRA bytes at (x,y).
func (f *Frame) SetBGRA(x, y int, b, g, r, a byte) {
	i := f.offset(x, y)
	p := f.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = b, g, r, a
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := New(f.W, f.H)
	copy(out.Pix, f.Pix)
	return out
}

// FillBlack overwrites every pixel with opaque black. Used by aspect
// padding (spec.md §4.7) to paint the letterbox/pillarbox margins.
func (f *Frame) FillBlack() {
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = 0, 0, 0, 255
	}
}

// --- image.Image / draw.Image, so x/image/draw scalers can target a
// Frame directly. ---

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.W, f.H) }

// At implements image.Image, translating stored BGRA into a color.Color.
func (f *Frame) At(x, y int) color.Color {
	b, g, r, a := f.PixelAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// Set implements draw.Image.
func (f *Frame) Set(x, y int, c color.Color) {
	r, g, b, a := c.RGBA()
	f.SetBGRA(x, y, byte(b>>8), byte(g>>8), byte(r>>8), byte(a>>8))
}
