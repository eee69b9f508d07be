// internal/coordinator/coordinator.go
package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/status"
	"github.com/tamzrod/luxtronik-replicator/internal/transport"
)

const (
	DefaultFast   = 10 * time.Second
	DefaultNormal = 60 * time.Second
)

var ErrShutdown = errors.New("coordinator: shut down")

// Client is the part of luxtronik.Client the coordinator drives.
type Client interface {
	Read(ctx context.Context) (luxtronik.Snapshot, error)
	Write(ctx context.Context) (luxtronik.Snapshot, error)
	SetMany(values map[string]int32) error
	Reset()
	Close() error
}

// Observer is told about every finished cycle (metrics).
type Observer interface {
	CycleDone(reason string, err error, took time.Duration)
	IntervalChanged(d time.Duration)
}

type Config struct {
	Fast   time.Duration
	Normal time.Duration

	// StatusSink receives the health block whenever it changes and once
	// per second while not healthy. Called from the lane goroutine.
	StatusSink func(status.Snapshot)
	Observer   Observer
}

type State int

const (
	StateIdle State = iota
	StateRefreshing
	StateWriting
	StateFailed
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateWriting:
		return "writing"
	case StateFailed:
		return "failed"
	case StateShutdown:
		return "shutdown"
	}
	return "unknown"
}

type reason int

const (
	reasonTick reason = iota
	reasonRefresh
	reasonWrite
)

func (r reason) String() string {
	switch r {
	case reasonTick:
		return "tick"
	case reasonRefresh:
		return "refresh"
	case reasonWrite:
		return "write"
	}
	return "unknown"
}

type result struct {
	snap luxtronik.Snapshot
	err  error
}

type command struct {
	reason reason
	values map[string]int32
	reply  chan result
}

// Coordinator owns one Client and runs every exchange on a single lane.
type Coordinator struct {
	client Client
	cfg    Config
	log    *zap.Logger

	cmds     chan command
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	mu         sync.Mutex
	state      State
	last       luxtronik.Snapshot
	interval   time.Duration
	lastReason reason
	failures   int
	health     status.Snapshot
	subs       map[uint64]*Subscription
	nextSub    uint64
}

func New(client Client, cfg Config, log *zap.Logger) *Coordinator {
	if cfg.Fast <= 0 {
		cfg.Fast = DefaultFast
	}
	if cfg.Normal <= 0 {
		cfg.Normal = DefaultNormal
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Coordinator{
		client:   client,
		cfg:      cfg,
		log:      log,
		cmds:     make(chan command),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		interval: cfg.Normal,
		health:   status.Snapshot{Health: status.HealthUnknown},
		subs:     make(map[uint64]*Subscription),
	}
}

// ----------------------------------------------------------------
// Lane
// ----------------------------------------------------------------

// Run is the lane. The first refresh happens immediately; afterwards the
// cadence follows the last published snapshot. Run returns after ctx is
// cancelled or Shutdown is called; an exchange in progress is finished
// first.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("coordinator: already running")
	}
	defer c.stop()

	select {
	case <-c.quit:
		return nil
	default:
	}

	// exchanges are never cut short by cancellation
	exch := context.WithoutCancel(ctx)

	timer := time.NewTimer(0)
	defer timer.Stop()

	sec := time.NewTicker(time.Second)
	defer sec.Stop()

	c.emitStatus()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-c.quit:
			return nil

		case <-timer.C:
			c.cycle(exch, reasonTick, nil)
			timer.Reset(c.Interval())

		case cmd := <-c.cmds:
			snap, err := c.cycle(exch, cmd.reason, cmd.values)
			cmd.reply <- result{snap: snap, err: err}
			resetTimer(timer, c.Interval())

		case <-sec.C:
			c.tickHealth()
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// cycle runs one exchange on the lane.
func (c *Coordinator) cycle(ctx context.Context, r reason, values map[string]int32) (luxtronik.Snapshot, error) {
	start := time.Now()

	var snap luxtronik.Snapshot
	var err error

	if r == reasonWrite {
		c.setState(StateWriting)
		if err = c.client.SetMany(values); err != nil {
			// rejected locally, nothing was sent
			c.restoreState()
			return luxtronik.Snapshot{}, err
		}
		snap, err = c.client.Write(ctx)
		if err != nil {
			// a failed write is reported to its caller, not replayed later
			c.client.Reset()
		}
	} else {
		c.setState(StateRefreshing)
		snap, err = c.client.Read(ctx)
	}

	c.finish(r, snap, err, time.Since(start))
	if err != nil {
		return luxtronik.Snapshot{}, err
	}
	return snap, nil
}

func (c *Coordinator) finish(r reason, snap luxtronik.Snapshot, err error, took time.Duration) {
	if c.cfg.Observer != nil {
		c.cfg.Observer.CycleDone(r.String(), err, took)
	}

	c.mu.Lock()

	if err != nil {
		if errors.Is(err, transport.ErrBusy) {
			// socket already replaced; not counted as a failure
			c.log.Info("controller busy, skipping cycle", zap.Stringer("reason", r))
			c.state = c.idleState()
			c.mu.Unlock()
			return
		}

		c.failures++
		c.state = StateFailed
		c.log.Warn("cycle failed",
			zap.Stringer("reason", r),
			zap.Int("consecutive_failures", c.failures),
			zap.Error(err),
		)
		changed := c.setHealthLocked(status.HealthError, ErrorCode(err))
		c.mu.Unlock()

		if changed {
			c.emitStatus()
		}
		return
	}

	c.failures = 0
	c.state = StateIdle
	c.last = snap
	c.lastReason = r

	next := c.cfg.Normal
	if r == reasonWrite || snap.Compressor() {
		next = c.cfg.Fast
	}
	intervalChanged := next != c.interval
	c.interval = next

	changed := c.setHealthLocked(status.HealthOK, 0)
	c.publishLocked(snap)
	c.mu.Unlock()

	c.log.Debug("snapshot published",
		zap.Uint64("seq", snap.Seq),
		zap.Stringer("reason", r),
		zap.Duration("next", next),
	)

	if intervalChanged && c.cfg.Observer != nil {
		c.cfg.Observer.IntervalChanged(next)
	}
	if changed {
		c.emitStatus()
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Coordinator) restoreState() {
	c.mu.Lock()
	c.state = c.idleState()
	c.mu.Unlock()
}

// idleState is what the lane rests in: failed until a cycle succeeds.
func (c *Coordinator) idleState() State {
	if c.failures > 0 {
		return StateFailed
	}
	return StateIdle
}

// ----------------------------------------------------------------
// Commands
// ----------------------------------------------------------------

// Write queues one parameter write on the lane and returns the snapshot
// read right after it.
func (c *Coordinator) Write(ctx context.Context, ref string, raw int32) (luxtronik.Snapshot, error) {
	return c.WriteMany(ctx, map[string]int32{ref: raw})
}

// WriteMany writes several parameters in one exchange.
func (c *Coordinator) WriteMany(ctx context.Context, values map[string]int32) (luxtronik.Snapshot, error) {
	if len(values) == 0 {
		return luxtronik.Snapshot{}, errors.New("coordinator: nothing to write")
	}
	return c.submit(ctx, command{reason: reasonWrite, values: values})
}

// Refresh runs a read cycle now, out of schedule.
func (c *Coordinator) Refresh(ctx context.Context) (luxtronik.Snapshot, error) {
	return c.submit(ctx, command{reason: reasonRefresh})
}

func (c *Coordinator) submit(ctx context.Context, cmd command) (luxtronik.Snapshot, error) {
	cmd.reply = make(chan result, 1)

	select {
	case c.cmds <- cmd:
	case <-c.done:
		return luxtronik.Snapshot{}, ErrShutdown
	case <-c.quit:
		return luxtronik.Snapshot{}, ErrShutdown
	case <-ctx.Done():
		return luxtronik.Snapshot{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return luxtronik.Snapshot{}, ctx.Err()
	}
}

// Shutdown is one-way. It waits for the lane to finish its current
// exchange, then closes the client and every subscription.
func (c *Coordinator) Shutdown() {
	c.quitOnce.Do(func() { close(c.quit) })

	if c.running.Load() {
		<-c.done
		return
	}
	c.stop()
}

func (c *Coordinator) stop() {
	c.stopOnce.Do(func() {
		c.client.Reset()
		if err := c.client.Close(); err != nil {
			c.log.Debug("client close", zap.Error(err))
		}

		c.mu.Lock()
		c.state = StateShutdown
		subs := c.subs
		c.subs = make(map[uint64]*Subscription)
		c.mu.Unlock()

		for _, s := range subs {
			s.closeChan()
		}

		c.log.Info("coordinator stopped")
		close(c.done)
	})
}

// Done is closed once the coordinator has shut down.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

// ----------------------------------------------------------------
// Views
// ----------------------------------------------------------------

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the last published snapshot. Failed cycles keep it.
func (c *Coordinator) Last() (luxtronik.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, !c.last.IsZero()
}

// Interval is the delay before the next scheduled refresh.
func (c *Coordinator) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

func (c *Coordinator) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}
