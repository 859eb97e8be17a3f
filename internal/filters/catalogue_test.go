package filters

import (
	"testing"

	"github.com/bryanchriswhite/vcsengine/internal/frame"
)

func TestDefaultsRoundTripThroughSchema(t *testing.T) {
	b, err := Defaults(Crop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := getU16(b, 4); got != 640 {
		t.Fatalf("expected default crop width 640, got %d", got)
	}
}

func TestUnknownFilterKindErrors(t *testing.T) {
	if _, err := Lookup(Kind(999)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestGateSizeRoundTrip(t *testing.T) {
	var b Blob
	SetGateSize(&b, 1920, 1080)
	w, h := GateSize(b)
	if w != 1920 || h != 1080 {
		t.Fatalf("expected 1920x1080, got %dx%d", w, h)
	}
}

func TestFlipHorizontalReversesColumns(t *testing.T) {
	in := frame.New(2, 1)
	in.SetBGRA(0, 0, 1, 1, 1, 255)
	in.SetBGRA(1, 0, 2, 2, 2, 255)

	var b Blob
	putU8(&b, 0, 0) // horizontal
	out := applyFlip(b, in)

	gotB, _, _, _ := out.PixelAt(0, 0)
	if gotB != 2 {
		t.Fatalf("expected pixel swap after horizontal flip, got %d", gotB)
	}
}

func TestCropProducesRequestedSize(t *testing.T) {
	in := frame.New(10, 10)
	var b Blob
	putU16(&b, 0, 2)
	putU16(&b, 2, 2)
	putU16(&b, 4, 4)
	putU16(&b, 6, 4)

	out := applyCrop(b, in)
	if out.W != 4 || out.H != 4 {
		t.Fatalf("expected 4x4 crop output, got %dx%d", out.W, out.H)
	}
}

func TestRotateIdentityPreservesSize(t *testing.T) {
	in := frame.New(4, 4)
	var b Blob
	putI16(&b, 0, 0)
	putI16(&b, 2, 100)
	out := applyRotate(b, in)
	if out.W != in.W || out.H != in.H {
		t.Fatalf("rotate must preserve frame size, got %dx%d", out.W, out.H)
	}
}
