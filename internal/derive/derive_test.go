// internal/derive/derive_test.go
package derive

import (
	"testing"
	"time"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

func snapshotWith(calcs map[int]int32, at time.Time) luxtronik.Snapshot {
	c := make([]int32, 260)
	for i, v := range calcs {
		c[i] = v
	}
	return luxtronik.NewSnapshot(make([]int32, 10), c, nil, at, 1)
}

func TestCorrectOperationMode(t *testing.T) {
	for _, mode := range registry.OperationModes {
		for _, compressor := range []bool{false, true} {
			for _, add := range []bool{false, true} {
				got := CorrectOperationMode(mode, compressor, add)

				want := mode
				if mode == registry.ModeHeating && !compressor && !add {
					want = registry.ModeNoRequest
				}
				if got != want {
					t.Fatalf("mode=%s compressor=%v add=%v: got %s want %s", mode, compressor, add, got, want)
				}
			}
		}
	}
}

func TestOperationMode_FromSnapshot(t *testing.T) {
	s := snapshotWith(map[int]int32{registry.CalcOperationMode: 0}, time.Now())
	if got, ok := OperationMode(s); !ok || got != registry.ModeNoRequest {
		t.Fatalf("got %q ok=%v", got, ok)
	}

	s = snapshotWith(map[int]int32{registry.CalcOperationMode: 0, registry.CalcCompressor: 1}, time.Now())
	if got, _ := OperationMode(s); got != registry.ModeHeating {
		t.Fatalf("got %q", got)
	}

	s = snapshotWith(map[int]int32{registry.CalcOperationMode: 0, registry.CalcAdditionalHeatGenerator: 1}, time.Now())
	if got, _ := OperationMode(s); got != registry.ModeHeating {
		t.Fatalf("got %q", got)
	}

	s = snapshotWith(map[int]int32{registry.CalcOperationMode: 99}, time.Now())
	if got, _ := OperationMode(s); got != "unknown_99" {
		t.Fatalf("got %q", got)
	}

	if _, ok := OperationMode(luxtronik.Snapshot{}); ok {
		t.Fatalf("empty snapshot has no mode")
	}
}

func TestCorrectStatusLine1(t *testing.T) {
	cases := []struct {
		status string
		scbOn  int32
		scbOff int32
		heater bool
		want   string
	}{
		{registry.StatusHeatpumpComing, 5, 30, false, registry.StatusHeatpumpShutdown},
		{registry.StatusHeatpumpComing, 10, 30, false, registry.StatusHeatpumpComing},
		{registry.StatusHeatpumpComing, 5, 0, false, registry.StatusHeatpumpComing},
		{registry.StatusPumpForerun, 0, 0, true, registry.StatusCompressorHeater},
		{registry.StatusPumpForerun, 0, 0, false, registry.StatusPumpForerun},
		{registry.StatusHeatpumpRunning, 5, 30, true, registry.StatusHeatpumpRunning},
	}

	for _, tc := range cases {
		if got := CorrectStatusLine1(tc.status, tc.scbOn, tc.scbOff, tc.heater); got != tc.want {
			t.Fatalf("%+v: got %s", tc, got)
		}
	}
}

func TestStatusLine1_FromSnapshot(t *testing.T) {
	s := snapshotWith(map[int]int32{
		registry.CalcStatusLine1: 2, // heatpump_coming
		registry.CalcTimerSCBOn:  3,
		registry.CalcTimerSCBOff: 120,
	}, time.Now())

	if got, ok := StatusLine1(s); !ok || got != registry.StatusHeatpumpShutdown {
		t.Fatalf("got %q ok=%v", got, ok)
	}

	s = snapshotWith(map[int]int32{
		registry.CalcStatusLine1:      7, // pump_forerun
		registry.CalcCompressorHeater: 1,
	}, time.Now())
	if got, _ := StatusLine1(s); got != registry.StatusCompressorHeater {
		t.Fatalf("got %q", got)
	}
}

func TestApply(t *testing.T) {
	s := snapshotWith(map[int]int32{
		registry.CalcOperationMode: 3,
		registry.CalcStatusLine1:   1,
		registry.CalcStatusLine2:   1,
		registry.CalcStatusLine3:   17,
		registry.CalcCompressor:    0,
	}, time.Now())

	st := Apply(s)
	if st.OperationMode != registry.ModeEVU || !st.EVU {
		t.Fatalf("state %+v", st)
	}
	if st.StatusLine1 != registry.StatusHeatpumpIdle || st.StatusLine2 != "in" || st.StatusLine3 != "second_heat_generator_1_active" {
		t.Fatalf("state %+v", st)
	}
}

func at(day time.Weekday, hh, mm int) time.Time {
	// 2024-01-07 is a Sunday
	return time.Date(2024, 1, 7+int(day), hh, mm, 0, 0, time.UTC)
}

func TestEVUTracker_SlotAssignment(t *testing.T) {
	e := NewEVUTracker()

	e.Observe(at(time.Monday, 8, 0), registry.ModeEVU)
	e.Observe(at(time.Monday, 10, 0), "automatic")
	e.Observe(at(time.Monday, 18, 0), registry.ModeEVU)
	e.Observe(at(time.Monday, 20, 0), "automatic")

	w := e.Windows(time.Monday)
	if w.First != (Window{Start: 8 * 60, End: 10 * 60}) {
		t.Fatalf("first window %+v", w.First)
	}
	if w.Second != (Window{Start: 18 * 60, End: 20 * 60}) {
		t.Fatalf("second window %+v", w.Second)
	}

	if other := e.Windows(time.Tuesday); other.First.Start != Unset {
		t.Fatalf("other weekdays untouched, got %+v", other)
	}
}

func TestEVUTracker_NextWeekUpdatesFirstSlot(t *testing.T) {
	e := NewEVUTracker()
	e.Observe(at(time.Monday, 8, 0), registry.ModeEVU)
	e.Observe(at(time.Monday, 10, 0), registry.ModeHeating)

	next := at(time.Monday, 8, 5).AddDate(0, 0, 7)
	e.Observe(next, registry.ModeEVU)
	e.Observe(next.Add(2*time.Hour), registry.ModeHeating)

	w := e.Windows(time.Monday)
	if w.First != (Window{Start: 8*60 + 5, End: 10*60 + 5}) {
		t.Fatalf("first window %+v", w.First)
	}
	if w.Second.Start != Unset {
		t.Fatalf("second window should be untouched, got %+v", w.Second)
	}
}

func TestEVUTracker_RepeatedModeIgnored(t *testing.T) {
	e := NewEVUTracker()
	if e.Observe(at(time.Friday, 6, 0), registry.ModeHeating) {
		t.Fatalf("non-evu first sample is not a boundary")
	}
	if !e.Observe(at(time.Friday, 7, 0), registry.ModeEVU) {
		t.Fatalf("entering evu is a boundary")
	}
	if e.Observe(at(time.Friday, 7, 30), registry.ModeEVU) {
		t.Fatalf("staying in evu is not a boundary")
	}
	if !e.TakeChanged() || e.TakeChanged() {
		t.Fatalf("TakeChanged should report once")
	}
}

func TestEVUTracker_MinutesUntilNextEvent(t *testing.T) {
	e := NewEVUTracker()
	if _, ok := e.MinutesUntilNextEvent(at(time.Monday, 0, 0)); ok {
		t.Fatalf("nothing learned yet")
	}

	e.Observe(at(time.Monday, 8, 0), registry.ModeEVU)
	e.Observe(at(time.Monday, 10, 0), registry.ModeHeating)

	if m, ok := e.MinutesUntilNextEvent(at(time.Monday, 7, 30)); !ok || m != 30 {
		t.Fatalf("got %d ok=%v", m, ok)
	}
	if m, _ := e.MinutesUntilNextEvent(at(time.Monday, 9, 0)); m != 60 {
		t.Fatalf("got %d", m)
	}
	// after the last event of the week: wraps to next Monday 08:00
	if m, _ := e.MinutesUntilNextEvent(at(time.Monday, 11, 0)); m != 7*24*60-3*60 {
		t.Fatalf("got %d", m)
	}
	// searches across days
	if m, _ := e.MinutesUntilNextEvent(at(time.Sunday, 23, 0)); m != 9*60 {
		t.Fatalf("got %d", m)
	}
}

func TestEVUTracker_ExportImport(t *testing.T) {
	e := NewEVUTracker()
	e.Observe(at(time.Wednesday, 12, 0), registry.ModeEVU)
	e.Observe(at(time.Wednesday, 13, 0), registry.ModeHeating)

	f := NewEVUTracker()
	f.Import(e.Export())

	if f.Windows(time.Wednesday) != e.Windows(time.Wednesday) {
		t.Fatalf("import mismatch")
	}
}

func TestApplyWith(t *testing.T) {
	e := NewEVUTracker()
	e.Observe(at(time.Monday, 8, 0), registry.ModeEVU)

	s := snapshotWith(map[int]int32{registry.CalcOperationMode: 3}, at(time.Monday, 7, 0))
	st := ApplyWith(s, e)
	if st.NextEVUEventMinutes == nil || *st.NextEVUEventMinutes != 60 {
		t.Fatalf("next event %v", st.NextEVUEventMinutes)
	}
}
