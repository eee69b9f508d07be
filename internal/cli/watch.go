// internal/cli/watch.go
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tamzrod/luxtronik-replicator/internal/coordinator"
	"github.com/tamzrod/luxtronik-replicator/internal/derive"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/status"
)

func newWatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of temperatures, state and link health",
		Long: `Poll the controller on the adaptive cadence and show the main
temperatures, the derived operating state and the link health.

Keys: r refresh now, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.settings(cmd, true)
			if err != nil {
				return err
			}
			// the TUI owns the terminal; only errors are logged
			cfg.Logging.Level = "error"
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			client := newClient(cfg, log)
			coord := coordinator.New(client, coordinator.Config{
				Fast:   cfg.Poll.Fast(),
				Normal: cfg.Poll.Normal(),
			}, log)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			runErr := make(chan error, 1)
			go func() { runErr <- coord.Run(ctx) }()
			defer func() {
				coord.Shutdown()
				<-runErr
			}()

			m := newWatchModel(coord, client.Registry(), cfg.Controller.Host)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

			sub := coord.Subscribe(func(snap luxtronik.Snapshot) { p.Send(snapMsg(snap)) })
			defer sub.Unsubscribe()

			_, err = p.Run()
			if err != nil && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

// ----------------------------------------------------------------
// Model
// ----------------------------------------------------------------

type (
	snapMsg    luxtronik.Snapshot
	tickMsg    time.Time
	refreshMsg struct{ err error }
)

// watchController is the part of the coordinator the view drives.
type watchController interface {
	Refresh(ctx context.Context) (luxtronik.Snapshot, error)
	Health() status.Snapshot
	Interval() time.Duration
	State() coordinator.State
}

type watchModel struct {
	ctl  watchController
	reg  *registry.Registry
	host string

	snap     luxtronik.Snapshot
	health   status.Snapshot
	interval time.Duration
	state    coordinator.State
	lastErr  error
	updated  time.Time

	width    int
	quitting bool
}

func newWatchModel(ctl watchController, reg *registry.Registry, host string) watchModel {
	return watchModel{ctl: ctl, reg: reg, host: host, width: 80}
}

func (m watchModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) refreshCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, err := ctl.Refresh(ctx)
		return refreshMsg{err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case snapMsg:
		m.snap = luxtronik.Snapshot(msg)
		m.updated = time.Now()
		m.lastErr = nil

	case refreshMsg:
		m.lastErr = msg.err

	case tickMsg:
		m.health = m.ctl.Health()
		m.interval = m.ctl.Interval()
		m.state = m.ctl.State()
		return m, tickCmd()
	}

	return m, nil
}

// ----------------------------------------------------------------
// View
// ----------------------------------------------------------------

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(22)
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

var watchFields = []struct {
	label string
	index int
}{
	{"Flow", registry.CalcFlowInTemperature},
	{"Return", registry.CalcFlowOutTemperature},
	{"Outdoor", registry.CalcOutdoorTemperature},
	{"Hot water", registry.CalcDHWTemperature},
	{"Heat output", registry.CalcHeatOutput},
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("LUXTRONIK - "+m.host) + "\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("state %s | every %s | r refresh | q quit",
		m.state, m.interval)) + "\n\n")

	if m.snap.IsZero() {
		s.WriteString(warnStyle.Render("waiting for the first snapshot..."))
		s.WriteString("\n" + m.healthLine())
		return s.String()
	}

	st := derive.Apply(m.snap)

	var body strings.Builder
	row := func(label, value string) {
		body.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Operation mode", st.OperationMode)
	row("Status", strings.TrimSpace(st.StatusLine1+" "+st.StatusLine2))
	row("Compressor", onOff(st.Compressor))
	row("Utility lock", onOff(st.EVU))
	for _, f := range watchFields {
		raw, ok := m.snap.Calculation(f.index)
		if !ok {
			continue
		}
		fv := luxtronik.FieldValue{Section: registry.Calculations, Index: f.index, Raw: raw}
		if d, ok := m.reg.Descriptor(registry.Calculations, f.index); ok {
			fv.Descriptor = d
		}
		row(f.label, fv.String())
	}
	s.WriteString(boxStyle.Render(strings.TrimRight(body.String(), "\n")) + "\n")

	s.WriteString(headerStyle.Render(fmt.Sprintf("snapshot #%d at %s", m.snap.Seq, m.updated.Format("15:04:05"))))
	if m.snap.Truncated {
		s.WriteString(" " + warnStyle.Render("(truncated)"))
	}
	s.WriteString("\n" + m.healthLine())
	return s.String()
}

func (m watchModel) healthLine() string {
	if m.lastErr != nil {
		return errorStyle.Render("refresh failed: " + m.lastErr.Error())
	}
	switch m.health.Health {
	case status.HealthOK:
		return valueStyle.Render("link ok")
	case status.HealthError:
		return errorStyle.Render(fmt.Sprintf("link error %d for %ds",
			m.health.LastErrorCode, m.health.SecondsInError))
	}
	return headerStyle.Render("link " + status.HealthText(m.health.Health))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
