// internal/cli/discover.go
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/luxtronik-replicator/internal/discovery"
)

func newDiscoverCmd(o *options) *cobra.Command {
	var (
		timeout   time.Duration
		ports     []int
		broadcast string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find controllers on the local network",
		Long: `Broadcast the discovery request to every UDP port and list the
controllers that answer. Every reply is listed, so a controller that
answers on two ports shows up twice.

Exit codes:
  0 - at least one controller answered
  1 - nothing answered or the broadcast failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.settings(cmd, false)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			opts := discovery.Options{
				Timeout:       cfg.Discovery.Timeout(),
				Ports:         cfg.Discovery.Ports,
				BroadcastAddr: broadcast,
				Logger:        log,
			}
			if cmd.Flags().Changed("wait") {
				opts.Timeout = timeout
			}
			if cmd.Flags().Changed("udp-port") {
				opts.Ports = ports
			}

			results, err := discovery.Discover(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					fmt.Fprintln(out, r.String())
				}
			}

			if len(results) == 0 {
				return fmt.Errorf("discover: no controller answered on %v", opts.Ports)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "wait", discovery.DefaultTimeout, "How long to wait for answers")
	cmd.Flags().IntSliceVar(&ports, "udp-port", discovery.DefaultPorts, "UDP ports to probe")
	cmd.Flags().StringVar(&broadcast, "broadcast", discovery.DefaultBroadcastAddr, "Broadcast address")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}
