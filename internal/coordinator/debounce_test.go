// internal/coordinator/debounce_test.go
package coordinator

import (
	"testing"
	"time"
)

func TestDebouncer_CoalescesPerKey(t *testing.T) {
	batches := make(chan map[string]int32, 4)
	d := NewDebouncer(30*time.Millisecond, func(b map[string]int32) { batches <- b })

	d.Submit("a", 1)
	d.Submit("a", 2)
	d.Submit("b", 3)

	select {
	case b := <-batches:
		if len(b) != 2 || b["a"] != 2 || b["b"] != 3 {
			t.Fatalf("batch %v", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no flush")
	}

	select {
	case b := <-batches:
		t.Fatalf("unexpected second batch %v", b)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopFlushesAndIgnoresLater(t *testing.T) {
	batches := make(chan map[string]int32, 4)
	d := NewDebouncer(time.Hour, func(b map[string]int32) { batches <- b })

	d.Submit("a", 1)
	d.Stop()

	select {
	case b := <-batches:
		if b["a"] != 1 {
			t.Fatalf("batch %v", b)
		}
	default:
		t.Fatalf("Stop should flush")
	}

	d.Submit("a", 2)
	d.Flush()
	if len(batches) != 0 {
		t.Fatalf("submit after Stop must be ignored")
	}
}
