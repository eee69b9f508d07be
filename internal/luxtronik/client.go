// internal/luxtronik/client.go
package luxtronik

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/luxtronik-replicator/internal/codec"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/transport"
)

const DefaultPort = 8888

var ErrNotParameter = errors.New("luxtronik: only parameters can be set")

type Options struct {
	Timeout       time.Duration
	MaxDataLength int
	Safe          bool
	WriteGrace    time.Duration

	Registry *registry.Registry
	Logger   *zap.Logger
	Dialer   transport.Dialer
}

type pendingEntry struct {
	value   int32
	version uint64
}

// Client owns the section stores and the pending-writes queue for one
// controller. No I/O happens until the first Read or Write.
type Client struct {
	tr   *transport.Transport
	reg  *registry.Registry
	safe bool
	log  *zap.Logger

	mu           sync.Mutex
	parameters   Store[int32]
	calculations Store[int32]
	visibilities Store[int8]
	status       int32

	// insertion ordered
	pendingOrder []int32
	pending      map[int32]pendingEntry
	version      uint64

	snap Snapshot
	seq  uint64

	identity    DeviceIdentity
	identityGen uint64
	hasIdentity bool
}

func Connect(host string, port int, opts Options) *Client {
	if port <= 0 {
		port = DefaultPort
	}
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	tr := transport.New(addr, transport.Config{
		Timeout:       opts.Timeout,
		MaxDataLength: opts.MaxDataLength,
		WriteGrace:    opts.WriteGrace,
		Dialer:        opts.Dialer,
	}, log)

	return &Client{
		tr:      tr,
		reg:     opts.Registry,
		safe:    opts.Safe,
		log:     log,
		pending: make(map[int32]pendingEntry),
	}
}

func (c *Client) Registry() *registry.Registry { return c.reg }
func (c *Client) Transport() *transport.Transport { return c.tr }

// Close drops queued writes and the socket.
func (c *Client) Close() error {
	c.Reset()
	return c.tr.Close()
}

// ----------------------------------------------------------------
// Exchanges
// ----------------------------------------------------------------

// Read refreshes all three sections. On error the previous snapshot stays.
func (c *Client) Read(ctx context.Context) (Snapshot, error) {
	p, err := c.tr.ReadAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(p), nil
}

// Write flushes the pending queue and reads back the result. Entries that
// were changed by Set while the exchange ran stay queued for the next call.
func (c *Client) Write(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	writes := make([]codec.Write, 0, len(c.pendingOrder))
	flushed := make(map[int32]uint64, len(c.pendingOrder))
	for _, idx := range c.pendingOrder {
		e := c.pending[idx]
		writes = append(writes, codec.Write{Index: idx, Value: e.value})
		flushed[idx] = e.version
	}
	c.mu.Unlock()

	p, err := c.tr.WriteQueued(ctx, writes)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	order := c.pendingOrder[:0:0]
	for _, idx := range c.pendingOrder {
		if e, ok := c.pending[idx]; ok && flushed[idx] == e.version {
			delete(c.pending, idx)
			continue
		}
		order = append(order, idx)
	}
	c.pendingOrder = order

	if len(writes) > 0 {
		c.log.Info("parameters written", zap.Int("count", len(writes)))
	}
	return c.apply(p), nil
}

// apply must be called with mu held.
func (c *Client) apply(p transport.Payload) Snapshot {
	// A section missing from a truncated payload is published empty,
	// never carried over from the previous cycle.
	c.parameters.Parse(p.Parameters)
	c.calculations.Parse(p.Calculations)
	c.status = p.CalculationsStatus
	c.visibilities.Parse(p.Visibilities)

	c.seq++
	c.snap = Snapshot{
		parameters:   c.parameters.view(),
		calculations: c.calculations.view(),
		visibilities: c.visibilities.view(),
		Status:       c.status,
		At:           time.Now(),
		Seq:          c.seq,
		Truncated:    p.Truncated,
	}

	if gen := c.tr.Generation(); !c.hasIdentity || gen != c.identityGen {
		if id, ok := DeriveIdentity(c.snap, c.reg); ok {
			c.identity = id
			c.identityGen = gen
			c.hasIdentity = true
			c.log.Info("device identified",
				zap.String("serial", id.SerialNumber),
				zap.String("model", id.ModelCode),
				zap.Stringer("firmware", id.FirmwareVersion),
			)
		}
	}

	return c.snap
}

// ----------------------------------------------------------------
// Pending queue
// ----------------------------------------------------------------

// Set queues a parameter write addressed by index, name or key.
func (c *Client) Set(ref string, raw int32) error {
	index, err := c.resolveParameter(ref)
	if err != nil {
		return err
	}
	return c.SetIndex(index, raw)
}

func (c *Client) SetIndex(index int, raw int32) error {
	if err := c.check(index, raw); err != nil {
		return err
	}

	c.mu.Lock()
	c.upsert(int32(index), raw)
	c.mu.Unlock()
	return nil
}

// SetMany validates every entry before queueing any of them.
func (c *Client) SetMany(values map[string]int32) error {
	type entry struct {
		index int
		raw   int32
	}

	entries := make([]entry, 0, len(values))
	for ref, raw := range values {
		index, err := c.resolveParameter(ref)
		if err != nil {
			return err
		}
		if err := c.check(index, raw); err != nil {
			return err
		}
		entries = append(entries, entry{index, raw})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	c.mu.Lock()
	for _, e := range entries {
		c.upsert(int32(e.index), e.raw)
	}
	c.mu.Unlock()
	return nil
}

func (c *Client) check(index int, raw int32) error {
	if index < 0 || index > int(^uint32(0)>>1) {
		return fmt.Errorf("%w: parameters.%d", registry.ErrUnknownIndex, index)
	}
	if c.safe {
		return c.reg.Validate(index, raw)
	}
	return nil
}

func (c *Client) resolveParameter(ref string) (int, error) {
	r, err := c.reg.Resolve(ref)
	if err != nil {
		return 0, err
	}
	if r.Section != registry.Parameters {
		return 0, fmt.Errorf("%w: %s", ErrNotParameter, r)
	}
	return r.Index, nil
}

// upsert must be called with mu held.
func (c *Client) upsert(index, raw int32) {
	c.version++
	if _, ok := c.pending[index]; !ok {
		c.pendingOrder = append(c.pendingOrder, index)
	}
	c.pending[index] = pendingEntry{value: raw, version: c.version}
}

// Pending lists queued writes in insertion order.
func (c *Client) Pending() []codec.Write {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]codec.Write, 0, len(c.pendingOrder))
	for _, idx := range c.pendingOrder {
		out = append(out, codec.Write{Index: idx, Value: c.pending[idx].value})
	}
	return out
}

// Reset drops every queued write.
func (c *Client) Reset() {
	c.mu.Lock()
	c.pendingOrder = nil
	c.pending = make(map[int32]pendingEntry)
	c.mu.Unlock()
}

// ----------------------------------------------------------------
// Views
// ----------------------------------------------------------------

func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Get reads a field from the current snapshot without touching the wire.
func (c *Client) Get(ref string) (FieldValue, bool) {
	f, err := c.Snapshot().Lookup(c.reg, ref)
	return f, err == nil
}

func (c *Client) Identity() (DeviceIdentity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.hasIdentity
}
