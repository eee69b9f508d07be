// internal/cli/read.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

// session is one connected client for a one-shot command.
type session struct {
	client *luxtronik.Client
	log    *zap.Logger
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.settings(cmd, true)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &session{client: newClient(cfg, log), log: log}, nil
}

func (s *session) Close() {
	_ = s.client.Close()
	_ = s.log.Sync()
}

func (s *session) read(ctx context.Context) (luxtronik.Snapshot, error) {
	snap, err := s.client.Read(ctx)
	if err != nil {
		return luxtronik.Snapshot{}, fmt.Errorf("read: %w", err)
	}
	return snap, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ----------------------------------------------------------------
// read
// ----------------------------------------------------------------

func newReadCmd(o *options) *cobra.Command {
	var (
		sections []string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read every described field once and print it",
		Long: `Read parameters, calculations and visibilities once and print every
field the registry describes. On a terminal the output is grouped and
colored; otherwise one tab-separated line per field is printed:

  <section>.<index>	<name>	<value>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			want := make([]registry.Section, 0, len(sections))
			for _, name := range sections {
				s, err := registry.ParseSection(name)
				if err != nil {
					return err
				}
				want = append(want, s)
			}

			sess, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			snap, err := sess.read(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := fieldRows(snap, sess.client.Registry(), want, all)
			if isTerminal(out) {
				printStyled(out, rows)
			} else {
				printPlain(out, rows)
			}
			if snap.Truncated {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: the controller sent a truncated section")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sections, "section", "s",
		[]string{"parameters", "calculations", "visibilities"}, "Sections to print")
	cmd.Flags().BoolVar(&all, "all", false, "Also print slots the registry does not describe")
	return cmd
}

type fieldRow struct {
	section registry.Section
	field   luxtronik.FieldValue
}

func fieldRows(snap luxtronik.Snapshot, reg *registry.Registry, sections []registry.Section, all bool) []fieldRow {
	var rows []fieldRow
	for _, s := range sections {
		for i := 0; i < snap.Len(s); i++ {
			d, described := reg.Descriptor(s, i)
			if !described && !all {
				continue
			}
			raw, _ := snap.Field(s, i)
			rows = append(rows, fieldRow{s, luxtronik.FieldValue{Section: s, Index: i, Raw: raw, Descriptor: d}})
		}
	}
	return rows
}

func printPlain(w io.Writer, rows []fieldRow) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s.%d\t%s\t%s\n", r.section, r.field.Index, r.field.Name(), r.field.String())
	}
}

func printStyled(w io.Writer, rows []fieldRow) {
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	indexStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Width(6).
		Align(lipgloss.Right)
	nameStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Width(36)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	var b strings.Builder
	current := registry.Section(-1)
	for _, r := range rows {
		if r.section != current {
			current = r.section
			b.WriteString("\n" + sectionStyle.Render(strings.ToUpper(current.String())) + "\n")
		}
		b.WriteString(indexStyle.Render(fmt.Sprint(r.field.Index)) + "  ")
		b.WriteString(nameStyle.Render(r.field.Name()))
		b.WriteString(valueStyle.Render(r.field.String()) + "\n")
	}
	fmt.Fprint(w, b.String())
}
