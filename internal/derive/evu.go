// internal/derive/evu.go
package derive

import (
	"sync"
	"time"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = 7 * minutesPerDay

	// Unset marks a window boundary that has not been observed yet.
	Unset = -1
)

// Window is one EVU lock period in minutes after midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DayWindows holds the two lock periods learned for one weekday.
type DayWindows struct {
	First  Window `json:"first"`
	Second Window `json:"second"`
}

func emptyDay() DayWindows {
	return DayWindows{
		First:  Window{Start: Unset, End: Unset},
		Second: Window{Start: Unset, End: Unset},
	}
}

func (d *DayWindows) slot(i int) *Window {
	if i == 0 {
		return &d.First
	}
	return &d.Second
}

// EVUTracker learns the utility lock windows per weekday by watching the
// operation mode enter and leave "evu".
type EVUTracker struct {
	mu       sync.Mutex
	days     [7]DayWindows
	inEVU    bool
	openDay  time.Weekday
	openSlot int // -1 when no window is open
	changed  bool
}

func NewEVUTracker() *EVUTracker {
	t := &EVUTracker{openSlot: -1}
	for i := range t.days {
		t.days[i] = emptyDay()
	}
	return t
}

// Observe feeds one (time, mode) sample. It returns true when a window
// boundary was recorded.
func (e *EVUTracker) Observe(t time.Time, mode string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	isEVU := mode == registry.ModeEVU
	if isEVU == e.inEVU {
		return false
	}
	e.inEVU = isEVU

	day := t.Weekday()
	m := t.Hour()*60 + t.Minute()

	if isEVU {
		slot := e.slotFor(day, m)
		e.days[day].slot(slot).Start = m
		e.openDay, e.openSlot = day, slot
	} else {
		slot := e.openSlot
		if slot < 0 || e.openDay != day {
			slot = e.slotFor(day, m)
		}
		e.days[day].slot(slot).End = m
		e.openSlot = -1
	}

	e.changed = true
	return true
}

// ObserveSnapshot is Observe with the corrected mode and time of s.
func (e *EVUTracker) ObserveSnapshot(s luxtronik.Snapshot) bool {
	mode, ok := OperationMode(s)
	if !ok {
		return false
	}
	return e.Observe(s.At, mode)
}

// slotFor picks the first window unless m lies after its end.
func (e *EVUTracker) slotFor(day time.Weekday, m int) int {
	first := e.days[day].First
	if first.End != Unset && m > first.End {
		return 1
	}
	return 0
}

func (e *EVUTracker) Windows(day time.Weekday) DayWindows {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.days[day]
}

// MinutesUntilNextEvent searches forward from now across the whole week
// for the closest learned start or end.
func (e *EVUTracker) MinutesUntilNextEvent(now time.Time) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	nowMin := int(now.Weekday())*minutesPerDay + now.Hour()*60 + now.Minute()
	best, found := 0, false

	for d := 0; d < 7; d++ {
		w := e.days[d]
		for _, m := range []int{w.First.Start, w.First.End, w.Second.Start, w.Second.End} {
			if m == Unset {
				continue
			}
			delta := (d*minutesPerDay + m - nowMin + minutesPerWeek) % minutesPerWeek
			if delta == 0 {
				delta = minutesPerWeek
			}
			if !found || delta < best {
				best, found = delta, true
			}
		}
	}

	return best, found
}

// Export copies the learned windows, indexed by time.Weekday.
func (e *EVUTracker) Export() [7]DayWindows {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.days
}

// Import replaces the learned windows, e.g. after a restart.
func (e *EVUTracker) Import(days [7]DayWindows) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.days = days
}

// TakeChanged reports whether anything was recorded since the last call.
func (e *EVUTracker) TakeChanged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.changed
	e.changed = false
	return c
}

// ApplyWith is Apply plus the next EVU event learned by e.
func ApplyWith(s luxtronik.Snapshot, e *EVUTracker) State {
	st := Apply(s)
	if e == nil {
		return st
	}
	if m, ok := e.MinutesUntilNextEvent(s.At); ok {
		st.NextEVUEventMinutes = &m
	}
	return st
}
