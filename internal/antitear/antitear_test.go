package antitear

import (
	"testing"

	"github.com/bryanchriswhite/vcsengine/internal/frame"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

func solidFrame(w, h int, r, g, b byte) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetBGRA(x, y, b, g, r, 255)
		}
	}
	return f
}

func TestOffModePassesThrough(t *testing.T) {
	a := New(Off, 0)
	in := solidFrame(4, 4, 10, 20, 30)
	out := a.Apply(in, modestore.Resolution{W: 4, H: 4, BPP: 32})
	if out != in {
		t.Fatal("expected Off mode to return the same frame unmodified")
	}
}

func TestNilInputSuppressed(t *testing.T) {
	a := New(MultiBuffered, 0)
	if out := a.Apply(nil, modestore.Resolution{}); out != nil {
		t.Fatal("expected nil input to produce a nil (suppressed) output")
	}
}

func TestFirstFrameAdoptedAsBaseline(t *testing.T) {
	a := New(MultiBuffered, 0)
	in := solidFrame(8, 8, 1, 2, 3)
	out := a.Apply(in, modestore.Resolution{W: 8, H: 8, BPP: 32})
	if out != in {
		t.Fatal("expected the first frame to pass through as the new baseline")
	}
}

func TestConsistentFrameNotReconstructed(t *testing.T) {
	a := New(MultiBuffered, 0)
	res := modestore.Resolution{W: 16, H: 16, BPP: 32}
	first := solidFrame(16, 16, 5, 5, 5)
	a.Apply(first, res)

	second := solidFrame(16, 16, 6, 6, 6)
	out := a.Apply(second, res)
	if out != second {
		t.Fatal("expected a uniformly-shifted but internally consistent frame to pass through unreconstructed")
	}
}

func TestTornFrameReconstructedFromPreviousRows(t *testing.T) {
	a := New(MultiBuffered, 0)
	res := modestore.Resolution{W: 16, H: 16, BPP: 32}

	prev := solidFrame(16, 16, 100, 100, 100)
	a.Apply(prev, res)

	torn := frame.New(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if y < 8 {
				torn.SetBGRA(x, y, 0, 0, 0, 255) // freshly captured top half
			} else {
				torn.SetBGRA(x, y, 100, 100, 100, 255) // stale bottom half, matches prev
			}
		}
	}

	out := a.Apply(torn, res)
	if out == nil {
		t.Fatal("expected a reconstructed frame, got suppression")
	}
	b, _, _, _ := out.PixelAt(0, 0)
	if b != 0 {
		t.Fatalf("expected top half to retain the freshly captured rows, got %d", b)
	}
}

func TestResolutionChangeResetsBaseline(t *testing.T) {
	a := New(MultiBuffered, 0)
	a.Apply(solidFrame(16, 16, 1, 1, 1), modestore.Resolution{W: 16, H: 16, BPP: 32})

	next := solidFrame(32, 32, 2, 2, 2)
	out := a.Apply(next, modestore.Resolution{W: 32, H: 32, BPP: 32})
	if out != next {
		t.Fatal("expected a resolution change to reset the baseline and pass the new frame through")
	}
}
