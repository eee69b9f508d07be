// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/luxtronik-replicator/internal/codec"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultWriteGrace = time.Second
)

var (
	ErrTransport = errors.New("transport: failed")

	ErrFramingOverflow = fmt.Errorf("%w: framing overflow", ErrTransport)
	ErrEchoMismatch    = fmt.Errorf("%w: write echo mismatch", ErrTransport)
	ErrNoVisibilities  = fmt.Errorf("%w: empty visibilities", ErrTransport)

	// ErrBusy is ENOBUFS from the controller side. The socket has been
	// replaced; the caller should simply try again next cycle.
	ErrBusy = errors.New("transport: no buffer space")

	ErrClosed = errors.New("transport: closed")
)

type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

type Config struct {
	// Timeout bounds the dial and every single read or write on the socket.
	Timeout time.Duration

	// MaxDataLength caps the declared length of a section.
	MaxDataLength int

	// WriteGrace is slept after the last write frame so the controller can
	// recompute derived values. Zero selects the default, negative disables.
	WriteGrace time.Duration

	Dialer Dialer
}

// Payload carries the raw sections of one read exchange.
// A nil section was not read (the exchange stopped after a truncation).
type Payload struct {
	Parameters         []int32
	CalculationsStatus int32
	Calculations       []int32
	Visibilities       []int8

	Truncated bool
}

// Transport owns one TCP socket to a controller. Every exchange holds the
// mutex from the first byte sent to the last byte read.
type Transport struct {
	addr string
	cfg  Config
	log  *zap.Logger

	mu     sync.Mutex
	conn   net.Conn
	closed bool

	dials atomic.Int64
	gen   atomic.Uint64
}

func New(addr string, cfg Config, log *zap.Logger) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxDataLength <= 0 {
		cfg.MaxDataLength = codec.DefaultMaxDataLength
	}
	if cfg.WriteGrace == 0 {
		cfg.WriteGrace = DefaultWriteGrace
	}
	if cfg.Dialer == nil {
		d := &net.Dialer{Timeout: cfg.Timeout}
		cfg.Dialer = d.DialContext
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Transport{
		addr: addr,
		cfg:  cfg,
		log:  log.With(zap.String("controller", addr)),
	}
}

func (t *Transport) Addr() string { return t.addr }

// Dials is the number of successful connects so far.
func (t *Transport) Dials() int { return int(t.dials.Load()) }

// Generation changes whenever a new socket is established.
func (t *Transport) Generation() uint64 { return t.gen.Load() }

// Close waits for any in-flight exchange, then drops the socket.
// Further calls return ErrClosed.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return t.drop()
}

// ----------------------------------------------------------------
// Exchanges
// ----------------------------------------------------------------

// ReadAll reads parameters, calculations and visibilities in that order.
func (t *Transport) ReadAll(ctx context.Context) (Payload, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	conn, err := t.ensure(ctx)
	if err != nil {
		return Payload{}, err
	}

	p, err := t.readAll(conn)
	if err != nil {
		return Payload{}, t.fail(err)
	}
	return p, nil
}

// WriteQueued sends every write in order, verifies each echo, sleeps the
// write grace and then performs a full read.
func (t *Transport) WriteQueued(ctx context.Context, writes []codec.Write) (Payload, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	conn, err := t.ensure(ctx)
	if err != nil {
		return Payload{}, err
	}

	for _, w := range writes {
		if err := t.writeOne(conn, w); err != nil {
			return Payload{}, t.fail(err)
		}
	}

	if len(writes) > 0 && t.cfg.WriteGrace > 0 {
		time.Sleep(t.cfg.WriteGrace)
	}

	p, err := t.readAll(conn)
	if err != nil {
		return Payload{}, t.fail(err)
	}
	return p, nil
}

func (t *Transport) writeOne(conn net.Conn, w codec.Write) error {
	if err := t.send(conn, codec.EncodeWriteParameter(w.Index, w.Value)); err != nil {
		return err
	}

	echo := make([]byte, codec.WriteEchoSize)
	if err := t.recv(conn, echo); err != nil {
		return err
	}

	cmd, v, err := codec.DecodeWriteEcho(echo)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if cmd != codec.CmdWriteParameter || v != w.Value {
		return fmt.Errorf("%w: index %d wrote %d, echo cmd=%d value=%d",
			ErrEchoMismatch, w.Index, w.Value, cmd, v)
	}

	t.log.Debug("parameter written", zap.Int32("index", w.Index), zap.Int32("value", w.Value))
	return nil
}

func (t *Transport) readAll(conn net.Conn) (Payload, error) {
	var p Payload
	var err error

	p.Parameters, err = t.readParameters(conn)
	if err != nil {
		return t.truncated(p, "parameters", err)
	}

	p.CalculationsStatus, p.Calculations, err = t.readCalculations(conn)
	if err != nil {
		return t.truncated(p, "calculations", err)
	}

	p.Visibilities, err = t.readVisibilities(conn)
	if err != nil {
		return t.truncated(p, "visibilities", err)
	}

	return p, nil
}

// truncated keeps a partially read section. The stream position is
// unknown afterwards, so the socket goes and the remaining sections are
// skipped for this cycle.
func (t *Transport) truncated(p Payload, section string, err error) (Payload, error) {
	if !errors.Is(err, codec.ErrTruncated) {
		return Payload{}, err
	}

	t.log.Debug("section truncated", zap.String("section", section), zap.Error(err))
	p.Truncated = true
	_ = t.drop()
	return p, nil
}

func (t *Transport) readParameters(conn net.Conn) ([]int32, error) {
	hdr := make([]byte, codec.ParametersHeaderSize)
	if err := t.request(conn, codec.EncodeReadParameters(), hdr); err != nil {
		return nil, err
	}

	h, _ := codec.DecodeParametersHeader(hdr)
	if err := h.Expect(codec.CmdReadParameters); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if err := t.checkLength("parameters", h.Length); err != nil {
		return nil, err
	}

	body, err := t.body(conn, h.Length, 4)
	if err != nil {
		return nil, err
	}
	return codec.DecodeValuesI32(h.Length, body)
}

func (t *Transport) readCalculations(conn net.Conn) (int32, []int32, error) {
	hdr := make([]byte, codec.CalculationsHeaderSize)
	if err := t.request(conn, codec.EncodeReadCalculations(), hdr); err != nil {
		return 0, nil, err
	}

	h, _ := codec.DecodeCalculationsHeader(hdr)
	if err := h.Expect(codec.CmdReadCalculations); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if err := t.checkLength("calculations", h.Length); err != nil {
		return 0, nil, err
	}

	body, err := t.body(conn, h.Length, 4)
	if err != nil {
		return 0, nil, err
	}
	values, err := codec.DecodeValuesI32(h.Length, body)
	return h.Status, values, err
}

func (t *Transport) readVisibilities(conn net.Conn) ([]int8, error) {
	hdr := make([]byte, codec.VisibilitiesHeaderSize)
	if err := t.request(conn, codec.EncodeReadVisibilities(), hdr); err != nil {
		return nil, err
	}

	h, _ := codec.DecodeVisibilitiesHeader(hdr)
	if err := h.Expect(codec.CmdReadVisibilities); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if h.Length <= 0 {
		// the controller's way of asking for a fresh connection
		t.log.Info("visibilities length not positive, reconnecting", zap.Int32("length", h.Length))
		return nil, fmt.Errorf("%w: length %d", ErrNoVisibilities, h.Length)
	}
	if err := t.checkLength("visibilities", h.Length); err != nil {
		return nil, err
	}

	body, err := t.body(conn, h.Length, 1)
	if err != nil {
		return nil, err
	}
	return codec.DecodeValuesI8(h.Length, body)
}

// checkLength treats length as the unsigned count sent on the wire, so a
// value with the top bit set is an overflow.
func (t *Transport) checkLength(section string, length int32) error {
	if n := uint32(length); uint64(n) > uint64(t.cfg.MaxDataLength) {
		t.log.Warn("declared length above cap, abandoning exchange",
			zap.String("section", section),
			zap.Uint32("length", n),
			zap.Int("max_data_length", t.cfg.MaxDataLength),
		)
		return fmt.Errorf("%w: %s length %d > %d", ErrFramingOverflow, section, n, t.cfg.MaxDataLength)
	}
	return nil
}

// ----------------------------------------------------------------
// Socket helpers
// ----------------------------------------------------------------

func (t *Transport) request(conn net.Conn, frame, hdr []byte) error {
	if err := t.send(conn, frame); err != nil {
		return err
	}
	return t.recv(conn, hdr)
}

func (t *Transport) send(conn net.Conn, b []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(t.cfg.Timeout))
	for len(b) > 0 {
		n, err := conn.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func (t *Transport) recv(conn net.Conn, b []byte) error {
	_ = conn.SetReadDeadline(time.Now().Add(t.cfg.Timeout))
	_, err := io.ReadFull(conn, b)
	return err
}

// body reads length values of width bytes. A peer hang-up part way
// through returns the bytes received so far; decoding reports truncation.
func (t *Transport) body(conn net.Conn, length int32, width int) ([]byte, error) {
	if length <= 0 {
		return nil, nil
	}

	buf := make([]byte, int(length)*width)
	_ = conn.SetReadDeadline(time.Now().Add(t.cfg.Timeout))
	n, err := io.ReadFull(conn, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return buf[:n], nil
		}
		return nil, err
	}
	return buf, nil
}

// ensure returns a live socket, dialing when there is none or the probe
// says the current one is dead.
func (t *Transport) ensure(ctx context.Context) (net.Conn, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if t.conn != nil {
		if alive(t.conn) {
			return t.conn, nil
		}
		t.log.Debug("socket probe failed, reconnecting")
		_ = t.drop()
	}

	return t.dial(ctx)
}

func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	conn, err := t.cfg.Dialer(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrTransport, t.addr, err)
	}

	t.conn = conn
	t.dials.Add(1)
	gen := t.gen.Add(1)
	t.log.Info("connected", zap.Uint64("generation", gen))
	return conn, nil
}

func (t *Transport) drop() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// fail tears the socket down and classifies err.
func (t *Transport) fail(err error) error {
	_ = t.drop()

	switch {
	case errors.Is(err, ErrTransport):
		return err

	case errors.Is(err, syscall.ENOBUFS):
		t.log.Warn("no buffer space, reconnecting", zap.Error(err))
		t.redial()
		return fmt.Errorf("%w: %w", ErrBusy, err)

	case errors.Is(err, syscall.EBADF):
		t.log.Warn("bad file descriptor, reconnecting", zap.Error(err))
		t.redial()
		return fmt.Errorf("%w: %w", ErrTransport, err)

	default:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}

func (t *Transport) redial() {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.Timeout)
	defer cancel()

	if _, err := t.dial(ctx); err != nil {
		t.log.Warn("redial failed", zap.Error(err))
	}
}
