// internal/cli/run.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/luxtronik-replicator/internal/api"
	"github.com/tamzrod/luxtronik-replicator/internal/config"
	"github.com/tamzrod/luxtronik-replicator/internal/coordinator"
	"github.com/tamzrod/luxtronik-replicator/internal/derive"
	"github.com/tamzrod/luxtronik-replicator/internal/evustore"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/metrics"
	"github.com/tamzrod/luxtronik-replicator/internal/mqtt"
	"github.com/tamzrod/luxtronik-replicator/internal/status"
	"github.com/tamzrod/luxtronik-replicator/internal/writer"
)

const shutdownGrace = 5 * time.Second

func newRunCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the controller and feed the mirror, MQTT, HTTP and metrics",
		Long: `run keeps one connection to the controller, refreshes it on the fast
cadence while the compressor runs (or right after a write) and on the
normal cadence otherwise, and hands every snapshot to:

  - mirror targets (Modbus or Raw Ingest), with the device status block
  - the MQTT bridge, which also accepts set/<ref> commands
  - the HTTP API and /metrics
  - the EVU window store

Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.settings(cmd, true)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runService(ctx, cfg, log)
		},
	}
}

// runService wires every configured component around one coordinator and
// blocks until ctx is done or a component fails.
func runService(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	client := newClient(cfg, log)

	// --------------------
	// Metrics
	// --------------------

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	col := metrics.New(client.Registry())
	if err := col.Register(promReg); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --------------------
	// Mirror targets
	// --------------------

	plan, err := writer.BuildPlan(cfg.Mirror.Targets)
	if err != nil {
		return err
	}
	clients, closeWriters, err := writer.BuildEndpointClients(cfg.Mirror.Targets)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeWriters(); err != nil {
			log.Warn("mirror close", zap.Error(err))
		}
	}()

	var mirror writer.Writer
	if len(plan.Targets) > 0 {
		mirror = writer.New(plan, clients)
	}
	statusWriter := writer.StatusWriters(plan, clients)

	// --------------------
	// Coordinator
	// --------------------

	coord := coordinator.New(client, coordinator.Config{
		Fast:     cfg.Poll.Fast(),
		Normal:   cfg.Poll.Normal(),
		Observer: col,
		StatusSink: func(s status.Snapshot) {
			if statusWriter == nil {
				return
			}
			if err := statusWriter.WriteStatus(s); err != nil {
				log.Warn("status write failed", zap.Error(err))
			}
		},
	}, log)

	// --------------------
	// EVU windows
	// --------------------

	tracker := derive.NewEVUTracker()

	var store *evustore.Store
	if cfg.EVUStore.Path != "" {
		store, err = evustore.Open(cfg.EVUStore.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.LoadInto(ctx, tracker); err != nil {
			return err
		}
	}

	// --------------------
	// MQTT
	// --------------------

	var bridge *mqtt.Bridge
	if cfg.MQTT.Enabled() {
		bridge, err = mqtt.Dial(cfg.MQTT, coord, mqtt.Options{
			Prefix:   cfg.MQTT.TopicPrefix,
			QoS:      cfg.MQTT.QoS,
			Retain:   cfg.MQTT.Retain,
			Debounce: cfg.Poll.Debounce(),
			Registry: client.Registry(),
			Tracker:  tracker,
		}, log)
		if err != nil {
			return err
		}
		defer bridge.Close()
	}

	// --------------------
	// Snapshot fan-out
	// --------------------

	sub := coord.Subscribe(func(snap luxtronik.Snapshot) {
		col.Observe(snap)
		tracker.ObserveSnapshot(snap)

		if mirror != nil {
			if err := mirror.Write(snap); err != nil {
				log.Warn("mirror write failed", zap.Uint64("seq", snap.Seq), zap.Error(err))
			}
		}
		if store != nil {
			if _, err := store.SaveIfChanged(context.Background(), tracker); err != nil {
				log.Warn("evu store save failed", zap.Error(err))
			}
		}
		if bridge != nil {
			if err := bridge.Publish(snap); err != nil {
				log.Debug("mqtt publish skipped", zap.Error(err))
			}
		}
	})
	defer func() {
		sub.Unsubscribe()
		<-sub.Done()
	}()

	// --------------------
	// Run
	// --------------------

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return coord.Run(gctx) })

	if cfg.HTTP.Listen != "" {
		ln, err := net.Listen("tcp", cfg.HTTP.Listen)
		if err != nil {
			coord.Shutdown()
			return fmt.Errorf("http: %w", err)
		}

		srv := &http.Server{
			Handler: api.NewRouter(coord, api.Options{
				Registry: client.Registry(),
				Tracker:  tracker,
				Gatherer: promReg,
			}, log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info("http listening", zap.String("addr", ln.Addr().String()))

		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	log.Info("running",
		zap.String("controller", cfg.Controller.Host),
		zap.Int("port", cfg.Controller.Port),
		zap.Int("mirror_targets", len(plan.Targets)),
		zap.Bool("mqtt", bridge != nil),
		zap.Bool("evu_store", store != nil),
	)

	err = g.Wait()
	coord.Shutdown()
	return err
}
