package killtimer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_FiresAfterDeadline(t *testing.T) {
	var fired atomic.Bool
	New(time.Now().Add(30*time.Millisecond), func() { fired.Store(true) })

	time.Sleep(100 * time.Millisecond)
	if !fired.Load() {
		t.Fatal("expected timer to fire")
	}
}

func TestTimer_RenewPushesDeadlineBack(t *testing.T) {
	var fireCount atomic.Int32
	timer := New(time.Now().Add(30*time.Millisecond), func() { fireCount.Add(1) })

	// Renew before the original deadline elapses; the scheduled wakeup at
	// the old deadline must reschedule rather than fire.
	time.AfterFunc(10*time.Millisecond, func() {
		timer.Renew(80 * time.Millisecond)
	})

	time.Sleep(60 * time.Millisecond)
	if fireCount.Load() != 0 {
		t.Fatalf("expected no fire yet, got %d", fireCount.Load())
	}

	time.Sleep(80 * time.Millisecond)
	if fireCount.Load() != 1 {
		t.Fatalf("expected exactly one fire, got %d", fireCount.Load())
	}
}

func TestTimer_StopPreventsFiring(t *testing.T) {
	var fired atomic.Bool
	timer := New(time.Now().Add(20*time.Millisecond), func() { fired.Store(true) })
	timer.Stop()

	time.Sleep(60 * time.Millisecond)
	if fired.Load() {
		t.Fatal("expected stopped timer not to fire")
	}
}
