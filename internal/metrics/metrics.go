// internal/metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/luxtronik-replicator/internal/derive"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/transport"
)

const namespace = "luxtronik"

// Collector turns snapshots and cycle outcomes into Prometheus series.
// It satisfies coordinator.Observer.
type Collector struct {
	reg *registry.Registry

	calculation *prometheus.GaugeVec
	parameter   *prometheus.GaugeVec
	cycles      *prometheus.CounterVec
	cycleTime   *prometheus.HistogramVec
	lastSuccess prometheus.Gauge
	interval    prometheus.Gauge
	compressor  prometheus.Gauge
	evu         prometheus.Gauge
	truncated   prometheus.Counter
}

func New(reg *registry.Registry) *Collector {
	if reg == nil {
		reg = registry.Default()
	}

	labels := []string{"index", "name", "unit"}

	return &Collector{
		reg: reg,
		calculation: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calculation",
			Help:      "Decoded calculation value in engineering units.",
		}, labels),
		parameter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "parameter",
			Help:      "Decoded value of a writable parameter.",
		}, labels),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Controller exchanges by reason and result.",
		}, []string{"reason", "result"}),
		cycleTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one controller exchange.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"reason"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last published snapshot.",
		}),
		interval: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_interval_seconds",
			Help:      "Current delay between scheduled refreshes.",
		}),
		compressor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compressor_on",
			Help:      "1 while the compressor runs.",
		}),
		evu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evu_active",
			Help:      "1 while the utility lock is active.",
		}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_snapshots_total",
			Help:      "Snapshots published from a truncated read.",
		}),
	}
}

// Register adds every series to r.
func (c *Collector) Register(r prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.calculation,
		c.parameter,
		c.cycles,
		c.cycleTime,
		c.lastSuccess,
		c.interval,
		c.compressor,
		c.evu,
		c.truncated,
	} {
		if err := r.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ----------------------------------------------------------------
// Feeding
// ----------------------------------------------------------------

// Observe updates the value gauges from one published snapshot.
func (c *Collector) Observe(snap luxtronik.Snapshot) {
	if snap.IsZero() {
		return
	}

	c.lastSuccess.Set(float64(snap.At.UnixNano()) / 1e9)
	if snap.Truncated {
		c.truncated.Inc()
	}

	for _, d := range c.reg.Descriptors(registry.Calculations) {
		if !numeric(d.Kind) {
			continue
		}
		raw, ok := snap.Calculation(d.Index)
		if !ok {
			continue
		}
		c.calculation.WithLabelValues(strconv.Itoa(d.Index), d.Name, d.Unit).Set(d.Float(raw))
	}

	for _, d := range c.reg.Descriptors(registry.Parameters) {
		if !d.Writable || !numeric(d.Kind) {
			continue
		}
		raw, ok := snap.Parameter(d.Index)
		if !ok {
			continue
		}
		c.parameter.WithLabelValues(strconv.Itoa(d.Index), d.Name, d.Unit).Set(d.Float(raw))
	}

	st := derive.Apply(snap)
	c.compressor.Set(boolFloat(st.Compressor))
	c.evu.Set(boolFloat(st.EVU))
}

// CycleDone counts one exchange.
func (c *Collector) CycleDone(reason string, err error, took time.Duration) {
	c.cycles.WithLabelValues(reason, Result(err)).Inc()
	c.cycleTime.WithLabelValues(reason).Observe(took.Seconds())
}

func (c *Collector) IntervalChanged(d time.Duration) {
	c.interval.Set(d.Seconds())
}

// Result labels a cycle outcome.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, transport.ErrBusy):
		return "busy"
	case errors.Is(err, transport.ErrTransport):
		return "transport_error"
	}
	return "error"
}

func numeric(k registry.Kind) bool {
	switch k {
	case registry.KindBitfield, registry.KindFirmwareChars:
		return false
	}
	return true
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
