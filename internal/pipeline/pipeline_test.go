package pipeline

import (
	"testing"
	"time"

	"github.com/bryanchriswhite/vcsengine/internal/capturedriver/simulated"
	"github.com/bryanchriswhite/vcsengine/internal/engine"
	"github.com/bryanchriswhite/vcsengine/internal/frame"
	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

func allZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

func testBounds() modestore.DriverBounds {
	b := modestore.Bounds{Default: 0, Min: -100, Max: 100}
	return modestore.DriverBounds{
		Bright: b, Contr: b,
		RedBright: b, GreenBright: b, BlueBright: b,
		RedContr: b, GreenContr: b, BlueContr: b,
		Phase: b, BlackLevel: b,
		HorPos: b, VerPos: modestore.Bounds{Default: 0, Min: 0, Max: 100},
		HorScale: b,
	}
}

func newTestDriver(t *testing.T) (*engine.Engine, *simulated.Driver, *Driver) {
	t.Helper()
	drv := simulated.New()
	eng := engine.New(drv, testBounds(), 8*1024*1024)

	var published *frame.Frame
	pd := New(eng, time.Millisecond, func(out *frame.Frame) {
		published = out
	})
	_ = published
	return eng, drv, pd
}

func TestTickNewVideoModeUpdatesSignalState(t *testing.T) {
	eng, drv, pd := newTestDriver(t)
	drv.InjectModeChanged()
	pd.Tick()
	if eng.Ingress == nil {
		t.Fatal("expected ingress present")
	}
}

func TestTickNewFrameInvokesPublishCallback(t *testing.T) {
	eng, drv, _ := newTestDriver(t)

	var published *frame.Frame
	pd := New(eng, time.Millisecond, func(out *frame.Frame) {
		published = out
	})

	data := make([]byte, 64*64*4)
	drv.InjectFrame(64, 64, 32, data)
	pd.Tick()

	if published == nil {
		t.Fatal("expected a published frame after NewFrame event")
	}
}

func TestTickNoSignalPublishesBusSignal(t *testing.T) {
	eng, drv, pd := newTestDriver(t)
	ch := eng.Bus.Subscribe()
	defer eng.Bus.Unsubscribe(ch)

	drv.InjectNoSignal()
	pd.Tick()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a bus signal after NoSignal event")
	}
}

func TestTickNoSignalClearsPublishedOutput(t *testing.T) {
	eng, drv, _ := newTestDriver(t)

	var published *frame.Frame
	pd := New(eng, time.Millisecond, func(out *frame.Frame) {
		published = out
	})

	data := make([]byte, 64*64*4)
	for i := range data {
		data[i] = 0xAA
	}
	drv.InjectFrame(64, 64, 32, data)
	pd.Tick()

	if published == nil {
		t.Fatal("expected a published frame after NewFrame event")
	}
	if allZero(published.Pix) {
		t.Fatal("expected the captured frame to carry non-zero pixel data")
	}
	capturedW, capturedH := published.W, published.H

	drv.InjectNoSignal()
	pd.Tick()

	if published == nil {
		t.Fatal("expected a published frame after NoSignal event")
	}
	if published.W != capturedW || published.H != capturedH {
		t.Fatalf("expected cleared frame at %dx%d, got %dx%d", capturedW, capturedH, published.W, published.H)
	}
	if !allZero(published.Pix) {
		t.Fatal("expected the cleared frame to be blank after NoSignal")
	}
}

func TestTickInvalidSignalClearsPublishedOutput(t *testing.T) {
	eng, drv, _ := newTestDriver(t)

	var published *frame.Frame
	pd := New(eng, time.Millisecond, func(out *frame.Frame) {
		published = out
	})

	data := make([]byte, 64*64*4)
	for i := range data {
		data[i] = 0xAA
	}
	drv.InjectFrame(64, 64, 32, data)
	pd.Tick()

	drv.InjectInvalidSignal()
	pd.Tick()

	if published == nil {
		t.Fatal("expected a published frame after InvalidSignal event")
	}
	if !allZero(published.Pix) {
		t.Fatal("expected the cleared frame to be blank after InvalidSignal")
	}
}

func TestTickUnrecoverableErrorRequestsExit(t *testing.T) {
	eng, drv, pd := newTestDriver(t)
	drv.InjectError()
	pd.Tick()

	if !eng.ExitRequested() {
		t.Fatal("expected exit requested after unrecoverable error")
	}
}
