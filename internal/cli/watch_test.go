// internal/cli/watch_test.go
package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tamzrod/luxtronik-replicator/internal/coordinator"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/status"
)

type fakeWatch struct {
	health    status.Snapshot
	refreshed int
}

func (f *fakeWatch) Refresh(context.Context) (luxtronik.Snapshot, error) {
	f.refreshed++
	return luxtronik.Snapshot{}, errors.New("link down")
}
func (f *fakeWatch) Health() status.Snapshot  { return f.health }
func (f *fakeWatch) Interval() time.Duration  { return 10 * time.Second }
func (f *fakeWatch) State() coordinator.State { return coordinator.StateIdle }

func TestWatchModel(t *testing.T) {
	ctl := &fakeWatch{health: status.Snapshot{Health: status.HealthError, LastErrorCode: 5, SecondsInError: 12}}
	var m tea.Model = newWatchModel(ctl, registry.Default(), "heatpump")

	if !strings.Contains(m.View(), "waiting for the first snapshot") {
		t.Fatalf("initial view:\n%s", m.View())
	}

	calcs := make([]int32, 260)
	calcs[registry.CalcFlowInTemperature] = 215
	calcs[registry.CalcCompressor] = 1
	m, _ = m.Update(snapMsg(luxtronik.NewSnapshot(make([]int32, 10), calcs, make([]int8, 10), time.Now(), 3)))
	m, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatalf("tick must schedule the next tick")
	}

	view := m.View()
	for _, want := range []string{"snapshot #3", "Compressor", "21.5", "link error 5 for 12s", "every 10s"} {
		if !strings.Contains(view, want) {
			t.Fatalf("missing %q in:\n%s", want, view)
		}
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatalf("r must refresh")
	}
	m, _ = m.Update(cmd())
	if ctl.refreshed != 1 || !strings.Contains(m.View(), "refresh failed: link down") {
		t.Fatalf("refresh not reported")
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || m.View() != "" {
		t.Fatalf("q must quit")
	}
}
