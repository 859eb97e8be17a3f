package ingress

import "testing"

func TestDropUnderBackPressure(t *testing.T) {
	// Scenario 2 (spec.md §8): four on_frame calls with no mark_processed
	// in between: first accepted, the rest dropped.
	in := New(64 * 64 * 4)

	frame := make([]byte, 64*64*4)
	for i := 0; i < 4; i++ {
		in.OnFrame(64, 64, 32, frame)
	}

	if got := in.Captured(); got != 4 {
		t.Fatalf("expected captured=4, got %d", got)
	}
	if got := in.Processed(); got != 0 {
		t.Fatalf("expected processed=0, got %d", got)
	}
	if got := in.MissedFrameCount(); got != 3 {
		t.Fatalf("expected skipped=3, got %d", got)
	}
}

func TestNextEventAndMarkProcessedRestoreEquality(t *testing.T) {
	in := New(16)
	in.OnFrame(2, 2, 32, make([]byte, 16))

	ev := in.NextEvent()
	if ev.Kind != NewFrame {
		t.Fatalf("expected NewFrame, got %v", ev.Kind)
	}
	in.MarkProcessed()

	if in.Captured() != in.Processed() {
		t.Fatalf("invariant violated: captured=%d processed=%d", in.Captured(), in.Processed())
	}
}

func TestOversizedBitDepthRejectedButStillCounted(t *testing.T) {
	in := New(16)
	in.OnFrame(2, 2, 64, make([]byte, 16))

	if in.Captured() != 1 {
		t.Fatalf("expected captured to still advance, got %d", in.Captured())
	}
	res, data := in.Frame()
	if res.BPP != 0 || len(data) != 0 {
		t.Fatalf("expected frame to be rejected (no resolution/data published), got %+v len=%d", res, len(data))
	}
}

func TestNextEventPriorityUnrecoverableErrorWins(t *testing.T) {
	in := New(16)
	in.OnFrame(2, 2, 32, make([]byte, 16))
	in.OnError()

	ev := in.NextEvent()
	if ev.Kind != UnrecoverableError {
		t.Fatalf("expected UnrecoverableError to take priority, got %v", ev.Kind)
	}
}

func TestNextEventNewVideoModeSetsReceiving(t *testing.T) {
	in := New(16)
	in.OnNoSignal()
	if ev := in.NextEvent(); ev.Kind != NoSignalEvent {
		t.Fatalf("expected NoSignal, got %v", ev.Kind)
	}
	if in.SignalState() != NoSignal {
		t.Fatalf("expected state NoSignal, got %v", in.SignalState())
	}

	in.OnModeChanged()
	ev := in.NextEvent()
	if ev.Kind != NewVideoMode {
		t.Fatalf("expected NewVideoMode, got %v", ev.Kind)
	}
	if in.SignalState() != Receiving {
		t.Fatalf("expected state Receiving after mode change, got %v", in.SignalState())
	}
}

func TestNextEventSleepsWhileNoSignal(t *testing.T) {
	in := New(16)
	in.OnNoSignal()
	in.NextEvent() // consumes the NoSignal event, sets state

	if ev := in.NextEvent(); ev.Kind != Sleep {
		t.Fatalf("expected Sleep while signal state is NoSignal, got %v", ev.Kind)
	}
}

func TestNextEventInvalidSignalSteadyState(t *testing.T) {
	in := New(16)
	in.OnInvalidSignal()

	ev := in.NextEvent()
	if ev.Kind != InvalidSignalEvent {
		t.Fatalf("expected InvalidSignal on first observation, got %v", ev.Kind)
	}
	if in.SignalState() != InvalidSignal {
		t.Fatalf("expected state InvalidSignal, got %v", in.SignalState())
	}

	// Steady state: subsequent ticks yield Sleep, not a repeated event.
	if ev := in.NextEvent(); ev.Kind != Sleep {
		t.Fatalf("expected Sleep on steady invalid signal, got %v", ev.Kind)
	}
}

func TestAddSkipNextDecrementsOnMarkProcessed(t *testing.T) {
	in := New(16)
	in.AddSkipNext(2)
	if !in.ShouldSkipDisplay() {
		t.Fatal("expected ShouldSkipDisplay true")
	}

	in.OnFrame(2, 2, 32, make([]byte, 16))
	in.NextEvent()
	in.MarkProcessed()
	if !in.ShouldSkipDisplay() {
		t.Fatal("expected ShouldSkipDisplay still true after one decrement")
	}

	in.OnFrame(2, 2, 32, make([]byte, 16))
	in.NextEvent()
	in.MarkProcessed()
	if in.ShouldSkipDisplay() {
		t.Fatal("expected ShouldSkipDisplay false after skip_next reaches zero")
	}
}

func TestExitRequestedRefusesFrameButAdvancesCaptured(t *testing.T) {
	in := New(16)
	in.RequestExit()
	in.OnFrame(2, 2, 32, make([]byte, 16))

	if in.Captured() != 1 {
		t.Fatalf("expected captured to still advance on exit, got %d", in.Captured())
	}
	_, data := in.Frame()
	if len(data) != 0 {
		t.Fatalf("expected frame data untouched while exiting, got len=%d", len(data))
	}
}
