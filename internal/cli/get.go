// internal/cli/get.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd(o *options) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "get <ref>...",
		Short: "Read one or more fields",
		Long: `Read the controller once and print the named fields.

A reference is a parameter index ("2"), a name ("ID_Einst_BWS_akt"), a key
("P0002_DHW_TARGET_TEMPERATURE") or a section-qualified form
("calculations.10", "calculations.ID_WEB_Temperatur_TVL").`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			for _, ref := range args {
				f, err := snap.Lookup(sess.client.Registry(), ref)
				if err != nil {
					return err
				}
				if raw {
					fmt.Fprintln(out, f.Raw)
					continue
				}
				fmt.Fprintf(out, "%s = %s\n", f.Name(), f.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw slot values only")
	return cmd
}
