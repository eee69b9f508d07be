// internal/cli/root.go
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/luxtronik-replicator/internal/config"
	"github.com/tamzrod/luxtronik-replicator/internal/logging"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
)

var version = "dev"

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	host       string
	port       int
	timeout    time.Duration
	safe       bool
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "luxtronik",
		Short: "Luxtronik heat pump controller client",
		Long: `luxtronik talks to Luxtronik 2.x heat pump controllers over their
TCP protocol (port 8888 by default).

Settings come from --config (YAML), then LUXTRONIK_* environment variables,
then the flags below.

Examples:
  luxtronik discover
  luxtronik read --host 192.168.1.20
  luxtronik set ID_Einst_BWS_akt 480 --host 192.168.1.20 --safe
  luxtronik run --config /etc/luxtronik.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&o.host, "host", "H", "", "Controller host")
	f.IntVarP(&o.port, "port", "p", 0, "Controller TCP port (default 8888)")
	f.DurationVar(&o.timeout, "timeout", 0, "Socket timeout (default 30s)")
	f.BoolVar(&o.safe, "safe", false, "Only allow writes to known writable parameters within range")
	f.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&o.logFormat, "log-format", "", "console or json")

	root.AddCommand(
		newRunCmd(o),
		newDiscoverCmd(o),
		newReadCmd(o),
		newGetCmd(o),
		newSetCmd(o),
		newDumpCmd(o),
		newWatchCmd(o),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// ----------------------------------------------------------------
// Shared helpers
// ----------------------------------------------------------------

// settings loads the config file (or the environment alone), applies the
// persistent flags that were set, validates when a controller is needed,
// then fills defaults.
func (o *options) settings(cmd *cobra.Command, needHost bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Controller.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Controller.Port = o.port
	}
	if flags.Changed("timeout") {
		cfg.Controller.SocketTimeoutMs = int(o.timeout / time.Millisecond)
	}
	if flags.Changed("safe") {
		cfg.Controller.Safe = o.safe
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}

	if needHost {
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	config.Normalize(cfg)
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format)
}

func newClient(cfg *config.Config, log *zap.Logger) *luxtronik.Client {
	c := cfg.Controller
	return luxtronik.Connect(c.Host, c.Port, luxtronik.Options{
		Timeout:       c.SocketTimeout(),
		MaxDataLength: c.MaxDataLength,
		Safe:          c.Safe,
		WriteGrace:    c.WriteGrace(),
		Logger:        log,
	})
}
