// internal/coordinator/coordinator_test.go
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/tamzrod/luxtronik-replicator/internal/codec"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtest"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/status"
	"github.com/tamzrod/luxtronik-replicator/internal/transport"
)

// ----------------------------------------------------------------
// Fake client
// ----------------------------------------------------------------

type fakeClient struct {
	mu         sync.Mutex
	seq        uint64
	compressor bool
	readErr    error
	writeErr   error
	queued     map[string]int32
	written    []map[string]int32
	reads      int
	resets     int
	closed     bool
}

func newFake() *fakeClient {
	return &fakeClient{queued: make(map[string]int32)}
}

func (f *fakeClient) snapshotLocked() luxtronik.Snapshot {
	calcs := make([]int32, 260)
	if f.compressor {
		calcs[registry.CalcCompressor] = 1
	}
	f.seq++
	return luxtronik.NewSnapshot(make([]int32, 10), calcs, make([]int8, 10), time.Now(), f.seq)
}

func (f *fakeClient) Read(ctx context.Context) (luxtronik.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return luxtronik.Snapshot{}, f.readErr
	}
	return f.snapshotLocked(), nil
}

func (f *fakeClient) Write(ctx context.Context) (luxtronik.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return luxtronik.Snapshot{}, f.writeErr
	}
	f.written = append(f.written, f.queued)
	f.queued = make(map[string]int32)
	return f.snapshotLocked(), nil
}

func (f *fakeClient) SetMany(values map[string]int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range values {
		if k == "bad" {
			return registry.ErrUnknownName
		}
	}
	for k, v := range values {
		f.queued[k] = v
	}
	return nil
}

func (f *fakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.queued = make(map[string]int32)
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) set(fn func(f *fakeClient)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func start(t *testing.T, client Client, cfg Config) *Coordinator {
	t.Helper()

	if cfg.Fast == 0 {
		cfg.Fast = time.Minute
	}
	if cfg.Normal == 0 {
		cfg.Normal = time.Hour
	}

	c := New(client, cfg, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(context.Background()) }()

	t.Cleanup(func() {
		c.Shutdown()
		if err := <-errCh; err != nil {
			t.Errorf("Run err=%v", err)
		}
	})
	return c
}

func ctxT(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ----------------------------------------------------------------
// Cadence
// ----------------------------------------------------------------

func TestCadence_FollowsCompressorAndWrites(t *testing.T) {
	f := newFake()
	c := start(t, f, Config{})
	ctx := ctxT(t)

	f.set(func(f *fakeClient) { f.compressor = true })
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	if got := c.Interval(); got != time.Minute {
		t.Fatalf("compressor on: interval=%s", got)
	}

	f.set(func(f *fakeClient) { f.compressor = false })
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	if got := c.Interval(); got != time.Hour {
		t.Fatalf("compressor off: interval=%s", got)
	}

	if _, err := c.Write(ctx, "P0002_DHW_TARGET_TEMPERATURE", 480); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if got := c.Interval(); got != time.Minute {
		t.Fatalf("after write: interval=%s", got)
	}

	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	if got := c.Interval(); got != time.Hour {
		t.Fatalf("write boost should last one cycle, interval=%s", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(newFake(), Config{}, nil)
	if c.cfg.Fast != DefaultFast || c.cfg.Normal != DefaultNormal {
		t.Fatalf("cfg %+v", c.cfg)
	}
	if c.Interval() != DefaultNormal {
		t.Fatalf("initial interval %s", c.Interval())
	}
	if c.State() != StateIdle {
		t.Fatalf("initial state %s", c.State())
	}
	if c.Health().Health != status.HealthUnknown {
		t.Fatalf("initial health %+v", c.Health())
	}
}

// ----------------------------------------------------------------
// Failures
// ----------------------------------------------------------------

func TestFailure_KeepsLastSnapshot(t *testing.T) {
	f := newFake()
	c := start(t, f, Config{})
	ctx := ctxT(t)

	good, err := c.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh err=%v", err)
	}

	f.set(func(f *fakeClient) { f.readErr = fmt.Errorf("%w: boom", transport.ErrTransport) })
	if _, err := c.Refresh(ctx); !errors.Is(err, transport.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	if c.State() != StateFailed || c.Failures() != 1 {
		t.Fatalf("state=%s failures=%d", c.State(), c.Failures())
	}
	last, ok := c.Last()
	if !ok || last.Seq != good.Seq {
		t.Fatalf("last snapshot changed: %d vs %d", last.Seq, good.Seq)
	}
	if h := c.Health(); h.Health != status.HealthError || h.LastErrorCode != CodeGeneric {
		t.Fatalf("health %+v", h)
	}

	f.set(func(f *fakeClient) { f.readErr = nil })
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	if c.State() != StateIdle || c.Failures() != 0 {
		t.Fatalf("state=%s failures=%d", c.State(), c.Failures())
	}
	if h := c.Health(); h != (status.Snapshot{Health: status.HealthOK}) {
		t.Fatalf("health %+v", h)
	}
}

func TestBusy_IsNotAFailure(t *testing.T) {
	f := newFake()
	c := start(t, f, Config{})
	ctx := ctxT(t)

	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh err=%v", err)
	}

	f.set(func(f *fakeClient) { f.readErr = transport.ErrBusy })
	if _, err := c.Refresh(ctx); !errors.Is(err, transport.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if c.State() != StateIdle || c.Failures() != 0 {
		t.Fatalf("state=%s failures=%d", c.State(), c.Failures())
	}
	if c.Health().Health != status.HealthOK {
		t.Fatalf("health %+v", c.Health())
	}
}

func TestWrite_LocalRejectionSendsNothing(t *testing.T) {
	f := newFake()
	c := start(t, f, Config{})
	ctx := ctxT(t)

	if _, err := c.Write(ctx, "bad", 1); !errors.Is(err, registry.ErrUnknownName) {
		t.Fatalf("expected ErrUnknownName, got %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestWrite_FailureDropsQueued(t *testing.T) {
	f := newFake()
	c := start(t, f, Config{})
	ctx := ctxT(t)

	f.set(func(f *fakeClient) { f.writeErr = transport.ErrEchoMismatch })
	if _, err := c.Write(ctx, "P0002_DHW_TARGET_TEMPERATURE", 480); !errors.Is(err, transport.ErrEchoMismatch) {
		t.Fatalf("expected echo mismatch, got %v", err)
	}
	if h := c.Health(); h.LastErrorCode != CodeEchoMismatch {
		t.Fatalf("health %+v", h)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queued) != 0 || f.resets == 0 {
		t.Fatalf("failed write must not stay queued: %v resets=%d", f.queued, f.resets)
	}
}

func TestWriteMany_Empty(t *testing.T) {
	c := New(newFake(), Config{}, nil)
	if _, err := c.WriteMany(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

// ----------------------------------------------------------------
// Subscribers
// ----------------------------------------------------------------

func TestSubscribe_OrderedAndNewestKept(t *testing.T) {
	f := newFake()
	c := start(t, f, Config{})
	ctx := ctxT(t)

	var mu sync.Mutex
	var seen []uint64
	sub := c.Subscribe(func(s luxtronik.Snapshot) {
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		seen = append(seen, s.Seq)
		mu.Unlock()
	})

	var last luxtronik.Snapshot
	for i := 0; i < 50; i++ {
		s, err := c.Refresh(ctx)
		if err != nil {
			t.Fatalf("Refresh err=%v", err)
		}
		last = s
	}

	sub.Unsubscribe()
	<-sub.Done()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatalf("nothing delivered")
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("out of order delivery: %v", seen)
		}
	}
	if seen[len(seen)-1] != last.Seq {
		t.Fatalf("newest snapshot lost: got %d want %d", seen[len(seen)-1], last.Seq)
	}
}

func TestSubscribe_ReplaysLast(t *testing.T) {
	f := newFake()
	c := start(t, f, Config{})

	snap, err := c.Refresh(ctxT(t))
	if err != nil {
		t.Fatalf("Refresh err=%v", err)
	}

	got := make(chan uint64, 1)
	sub := c.Subscribe(func(s luxtronik.Snapshot) {
		select {
		case got <- s.Seq:
		default:
		}
	})
	defer sub.Unsubscribe()

	select {
	case seq := <-got:
		if seq < snap.Seq {
			t.Fatalf("replayed seq %d < %d", seq, snap.Seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no replay")
	}
}

// ----------------------------------------------------------------
// Shutdown
// ----------------------------------------------------------------

func TestShutdown_OneWay(t *testing.T) {
	f := newFake()
	c := New(f, Config{Fast: time.Minute, Normal: time.Hour}, zaptest.NewLogger(t))

	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(context.Background()) }()

	if _, err := c.Refresh(ctxT(t)); err != nil {
		t.Fatalf("Refresh err=%v", err)
	}

	sub := c.Subscribe(func(luxtronik.Snapshot) {})

	c.Shutdown()
	if err := <-runErr; err != nil {
		t.Fatalf("Run err=%v", err)
	}

	if c.State() != StateShutdown {
		t.Fatalf("state=%s", c.State())
	}
	if _, err := c.Refresh(ctxT(t)); !errors.Is(err, ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
	if _, err := c.Write(ctxT(t), "P0002_DHW_TARGET_TEMPERATURE", 480); !errors.Is(err, ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription not closed")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		t.Fatalf("client not closed")
	}

	// idempotent
	c.Shutdown()
}

func TestShutdown_WithoutRun(t *testing.T) {
	f := newFake()
	c := New(f, Config{}, nil)
	c.Shutdown()

	select {
	case <-c.Done():
	default:
		t.Fatalf("done not closed")
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run after shutdown err=%v", err)
	}
}

// ----------------------------------------------------------------
// Health
// ----------------------------------------------------------------

func TestHealth_SecondsInErrorCount(t *testing.T) {
	f := newFake()
	f.readErr = errors.New("down")

	var mu sync.Mutex
	var blocks []status.Snapshot
	start(t, f, Config{StatusSink: func(s status.Snapshot) {
		mu.Lock()
		blocks = append(blocks, s)
		mu.Unlock()
	}})

	deadline := time.Now().Add(4 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(blocks)
		var latest status.Snapshot
		if n > 0 {
			latest = blocks[n-1]
		}
		mu.Unlock()

		if latest.Health == status.HealthError && latest.SecondsInError >= 1 {
			if latest.LastErrorCode != CodeGeneric {
				t.Fatalf("code %d", latest.LastErrorCode)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("seconds in error never counted: %+v", blocks)
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want uint16
	}{
		{nil, 0},
		{errors.New("x"), CodeGeneric},
		{transport.ErrFramingOverflow, CodeFramingOverflow},
		{fmt.Errorf("wrap: %w", transport.ErrEchoMismatch), CodeEchoMismatch},
		{transport.ErrNoVisibilities, CodeNoVisibilities},
		{transport.ErrBusy, CodeBusy},
		{codec.ErrUnexpectedCommand, CodeUnexpectedAnswer},
		{codedErr(42), 42},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("ErrorCode(%v)=%d want %d", tc.err, got, tc.want)
		}
	}
}

type codedErr uint16

func (e codedErr) Error() string { return "coded" }
func (e codedErr) Code() uint16  { return uint16(e) }

// ----------------------------------------------------------------
// Against the fake controller
// ----------------------------------------------------------------

func newLuxClient(t *testing.T, srv *luxtest.Server) *luxtronik.Client {
	t.Helper()
	return luxtronik.Connect(srv.Host(), srv.Port(), luxtronik.Options{
		Timeout:    2 * time.Second,
		Safe:       true,
		WriteGrace: -1,
		Logger:     zaptest.NewLogger(t),
	})
}

func TestController_FirstTickDialsOnce(t *testing.T) {
	srv := luxtest.New(t)
	c := start(t, newLuxClient(t, srv), Config{})

	first := make(chan luxtronik.Snapshot, 1)
	sub := c.Subscribe(func(s luxtronik.Snapshot) {
		select {
		case first <- s:
		default:
		}
	})
	defer sub.Unsubscribe()

	var snap luxtronik.Snapshot
	select {
	case snap = <-first:
	case <-time.After(3 * time.Second):
		t.Fatalf("no snapshot from the first tick")
	}

	if snap.Len(registry.Parameters) == 0 || snap.Len(registry.Calculations) == 0 || snap.Len(registry.Visibilities) == 0 {
		t.Fatalf("incomplete snapshot")
	}

	ctx := ctxT(t)
	for i := 0; i < 3; i++ {
		if _, err := c.Refresh(ctx); err != nil {
			t.Fatalf("Refresh err=%v", err)
		}
	}
	if srv.Accepts() != 1 {
		t.Fatalf("connection should be reused, accepts=%d", srv.Accepts())
	}
}

func TestController_WriteThroughLane(t *testing.T) {
	srv := luxtest.New(t)
	c := start(t, newLuxClient(t, srv), Config{})
	ctx := ctxT(t)

	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	srv.ResetRequests()

	snap, err := c.Write(ctx, "P0002_DHW_TARGET_TEMPERATURE", 480)
	if err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if v, _ := snap.Parameter(2); v != 480 {
		t.Fatalf("parameters[2]=%d", v)
	}
	if srv.Parameter(2) != 480 {
		t.Fatalf("controller parameter=%d", srv.Parameter(2))
	}

	reqs := srv.Requests()
	if len(reqs) != 4 {
		t.Fatalf("expected 1 write + 3 reads, got %d", len(reqs))
	}
	want := []uint32{codec.CmdWriteParameter, codec.CmdReadParameters, codec.CmdReadCalculations, codec.CmdReadVisibilities}
	for i, r := range reqs {
		if r.Cmd != want[i] {
			t.Fatalf("frame %d cmd=%d want %d", i, r.Cmd, want[i])
		}
	}

	if _, err := c.Write(ctx, "P0002_DHW_TARGET_TEMPERATURE", 9999); !errors.Is(err, registry.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}
