package scaler

import (
	"testing"

	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

func TestTargetSizeIdentityWhenNoForcing(t *testing.T) {
	c := DefaultConfig()
	got := c.TargetSize(640, 480, nil)
	if got.W != 640 || got.H != 480 || got.BPP != 32 {
		t.Fatalf("expected identity 640x480x32, got %+v", got)
	}
}

func TestTargetSizeRecordingPriorityWins(t *testing.T) {
	c := DefaultConfig()
	c.ForceBaseResolution = true
	c.BaseResolution = modestore.Resolution{W: 1920, H: 1080}
	rec := modestore.Resolution{W: 1280, H: 720}
	got := c.TargetSize(640, 480, &rec)
	if got.W != 1280 || got.H != 720 {
		t.Fatalf("expected recording resolution to override everything else, got %+v", got)
	}
}

func TestTargetSizeForceScalingRoundsHalfUp(t *testing.T) {
	c := DefaultConfig()
	c.ForceScaling = true
	c.OutputScaling = 1.5
	got := c.TargetSize(100, 100, nil)
	if got.W != 150 || got.H != 150 {
		t.Fatalf("expected 150x150, got %+v", got)
	}
}

func TestTargetSizeClampedToBounds(t *testing.T) {
	c := DefaultConfig()
	c.MinOut = modestore.Resolution{W: 64, H: 64}
	c.MaxOut = modestore.Resolution{W: 1024, H: 768}
	got := c.TargetSize(32, 32, nil)
	if got.W != 64 || got.H != 64 {
		t.Fatalf("expected clamp to min 64x64, got %+v", got)
	}
	got = c.TargetSize(4000, 4000, nil)
	if got.W != 1024 || got.H != 768 {
		t.Fatalf("expected clamp to max 1024x768, got %+v", got)
	}
}

func TestAspectPadTraditionalNoPaddingScenario(t *testing.T) {
	c := DefaultConfig()
	c.ForcedAspect = true
	c.AspectMode = AspectTraditional4x3

	target := modestore.Resolution{W: 800, H: 600}
	pad := c.AspectPad(720, 400, target)
	if pad.InnerW != 800 || pad.InnerH != 600 {
		t.Fatalf("expected inner rect to exactly fill 800x600, got %dx%d", pad.InnerW, pad.InnerH)
	}
	if pad.Top != 0 || pad.Left != 0 {
		t.Fatalf("expected no padding, got %+v", pad)
	}
}

func TestAspectPadTraditionalSecondScenario(t *testing.T) {
	c := DefaultConfig()
	c.ForcedAspect = true
	c.AspectMode = AspectTraditional4x3

	target := modestore.Resolution{W: 800, H: 600}
	pad := c.AspectPad(1024, 768, target)
	if pad.InnerW != 800 || pad.InnerH != 600 {
		t.Fatalf("expected inner rect to exactly fill 800x600 for a native 4:3 source, got %dx%d", pad.InnerW, pad.InnerH)
	}
}

func TestAspectPadCentersNonMatchingRatio(t *testing.T) {
	c := DefaultConfig()
	c.ForcedAspect = true
	c.AspectMode = AspectAlways4x3

	target := modestore.Resolution{W: 1000, H: 1000}
	pad := c.AspectPad(1920, 1080, target)
	if pad.InnerW == target.W && pad.InnerH == target.H {
		t.Fatal("expected padding to be introduced for a non-4:3 target square")
	}
	if pad.Top+pad.Bottom+pad.InnerH != target.H {
		t.Fatalf("expected vertical padding plus inner height to equal target height, got top=%d bottom=%d inner=%d", pad.Top, pad.Bottom, pad.InnerH)
	}
}

func TestNormalizeRGBA32PassesThroughChannels(t *testing.T) {
	data := []byte{10, 20, 30, 255}
	out := Normalize(data, 1, 1, 32, modestore.RGB888)
	b, g, r, a := out.PixelAt(0, 0)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Fatalf("expected RGBA->BGRA swap, got r=%d g=%d b=%d a=%d", r, g, b, a)
	}
}

func TestScaleProducesExactTargetDimensions(t *testing.T) {
	c := DefaultConfig()
	src := Normalize(make([]byte, 64*64*4), 64, 64, 32, modestore.RGB888)
	target := modestore.Resolution{W: 128, H: 96, BPP: 32}
	pad := c.AspectPad(64, 64, target)
	out := c.Scale(src, target, pad)
	if out.W != target.W || out.H != target.H {
		t.Fatalf("expected output to equal target dimensions exactly, got %dx%d", out.W, out.H)
	}
}
