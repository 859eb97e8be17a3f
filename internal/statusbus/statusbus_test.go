package statusbus

import (
	"testing"
	"time"

	"github.com/bryanchriswhite/vcsengine/internal/modestore"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.NewKnownMode(modestore.Resolution{W: 640, H: 480, BPP: 32})

	select {
	case sig := <-ch:
		if sig.Kind != NewKnownMode {
			t.Fatalf("expected NewKnownMode, got %s", sig.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for signal")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.SetNoSignal()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}
