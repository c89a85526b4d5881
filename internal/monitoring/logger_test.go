package monitoring

import (
	"fmt"
	"sync"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer SetLogger(original)

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestComponentPrefix(t *testing.T) {
	original := Logf
	defer SetLogger(original)

	var got string
	logf := Component("l1sync")
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	logf("resync after %d frames", 3)
	if got != "[l1sync] resync after 3 frames" {
		t.Errorf("got %q", got)
	}
}

func TestDiagnostics(t *testing.T) {
	d := NewDiagnostics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.IncResync()
				d.IncRejectedKickFit()
			}
		}()
	}
	wg.Wait()
	d.IncFilterReset()
	d.IncSkippedUpdate()
	d.IncDroppedFrame()
	d.IncAcceptedKickFit()

	snap := d.Snapshot()
	if snap.ResyncEvents != 800 {
		t.Errorf("ResyncEvents = %d, want 800", snap.ResyncEvents)
	}
	if snap.RejectedKickFits != 800 {
		t.Errorf("RejectedKickFits = %d, want 800", snap.RejectedKickFits)
	}
	if snap.FilterResets != 1 || snap.SkippedUpdates != 1 || snap.DroppedFrames != 1 || snap.AcceptedKickFits != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestDiagnostics_Nil(t *testing.T) {
	var d *Diagnostics
	// Must not panic.
	d.IncResync()
	d.IncFilterReset()
	if snap := d.Snapshot(); snap != (DiagnosticsSnapshot{}) {
		t.Errorf("nil diagnostics snapshot = %+v", snap)
	}
}
