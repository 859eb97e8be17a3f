package simulated

import (
	"testing"

	"github.com/bryanchriswhite/vcsengine/internal/capturedriver"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

func TestOpenInputRejectsOutOfRangeChannel(t *testing.T) {
	d := New()
	if err := d.OpenInput(capturedriver.MaxChannels); err == nil {
		t.Fatal("expected InvalidChannel error for out-of-range channel")
	}
}

func TestSetVerPosRejectsBelowFloor(t *testing.T) {
	d := New()
	if d.SetVerPos(modestore.MinVerPos - 1) {
		t.Fatal("expected SetVerPos to reject a value below MinVerPos")
	}
	if !d.SetVerPos(modestore.MinVerPos) {
		t.Fatal("expected SetVerPos to accept the floor value")
	}
}

func TestForceResolutionRefusesNoOp(t *testing.T) {
	d := New()
	cur := d.CaptureResolution()
	changed, err := d.ForceResolution(modestore.Resolution{W: cur.W, H: cur.H})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("expected ForceResolution to refuse when target equals current resolution")
	}
}

func TestInjectFrameInvokesRegisteredCallback(t *testing.T) {
	d := New()
	var gotWidth int
	d.RegisterCallbacks(capturedriver.Callbacks{
		OnFrame: func(e capturedriver.FrameEvent) { gotWidth = e.Width },
	})
	d.InjectFrame(1280, 720, 32, make([]byte, 10))
	if gotWidth != 1280 {
		t.Fatalf("expected callback to receive width 1280, got %d", gotWidth)
	}
}
