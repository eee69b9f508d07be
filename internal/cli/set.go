// internal/cli/set.go
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

func newSetCmd(o *options) *cobra.Command {
	var scaled bool

	cmd := &cobra.Command{
		Use:   "set <ref> <value>",
		Short: "Write one parameter",
		Long: `Queue one parameter write, send it, and print the value the controller
reports afterwards.

The value is the raw slot value unless --scaled is given, in which case it
is in the field's unit (for example 48.5 for a temperature stored in
tenths of a degree). With --safe the value must be within the known range
of a writable parameter.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]

			sess, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			value, err := parseValue(sess.client.Registry(), ref, args[1], scaled)
			if err != nil {
				return err
			}

			if err := sess.client.Set(ref, value); err != nil {
				return err
			}
			return writeAndShow(cmd.Context(), cmd, sess, ref)
		},
	}

	cmd.Flags().BoolVar(&scaled, "scaled", false, "Value is in engineering units")
	return cmd
}

func parseValue(reg *registry.Registry, ref, text string, scaled bool) (int32, error) {
	if !scaled {
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("set: %q is not a 32-bit integer", text)
		}
		return int32(v), nil
	}

	r, err := reg.Resolve(ref)
	if err != nil {
		return 0, err
	}
	if r.Descriptor == nil {
		return 0, fmt.Errorf("set: %s has no unit, pass a raw value", r)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("set: %q is not a number", text)
	}
	return r.Descriptor.Encode(v), nil
}

func writeAndShow(ctx context.Context, cmd *cobra.Command, sess *session, ref string) error {
	snap, err := sess.client.Write(ctx)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	f, err := snap.Lookup(sess.client.Registry(), ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", f.Name(), f.String())
	return nil
}
