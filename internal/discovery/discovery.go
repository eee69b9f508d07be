// internal/discovery/discovery.go
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	MagicRequest = "2000;111;1;\x00"
	replyPrefix  = "2500;111;"

	DefaultTimeout       = 2 * time.Second
	DefaultBroadcastAddr = "255.255.255.255"
)

var DefaultPorts = []int{4444, 47808}

type Options struct {
	Timeout       time.Duration
	Ports         []int
	BroadcastAddr string
	Logger        *zap.Logger
}

// Result is one responding controller. Port 0 means the reply did not
// carry a usable TCP port.
type Result struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

func (r Result) String() string {
	if r.Port == 0 {
		return r.Host + " (port unknown)"
	}
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Reply is a raw datagram received from addr.
type Reply struct {
	Addr    net.Addr
	Payload []byte
}

// ParseReply reports whether payload is a controller answer and, if so,
// the TCP port it announces (0 when absent or out of range).
func ParseReply(payload []byte) (int, bool) {
	s := string(payload)
	if !strings.HasPrefix(s, replyPrefix) {
		return 0, false
	}

	fields := strings.Split(s, ";")
	if len(fields) < 3 {
		return 0, true
	}

	field := strings.TrimSpace(strings.TrimRight(fields[2], "\x00"))
	port, err := strconv.Atoi(field)
	if err != nil || port < 1 || port > 65535 {
		return 0, true
	}
	return port, true
}

// Collect keeps the controller replies, in arrival order. No dedup.
func Collect(replies []Reply) []Result {
	out := make([]Result, 0, len(replies))
	for _, r := range replies {
		port, ok := ParseReply(r.Payload)
		if !ok {
			continue
		}
		out = append(out, Result{Host: hostOf(r.Addr), Port: port})
	}
	return out
}

// Discover broadcasts the magic request to every port from one socket and
// collects answers until the timeout runs out. No answer is not an error.
func Discover(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if len(opts.Ports) == 0 {
		opts.Ports = DefaultPorts
	}
	if opts.BroadcastAddr == "" {
		opts.BroadcastAddr = DefaultBroadcastAddr
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	replies, err := broadcast(ctx, opts.BroadcastAddr, opts.Ports, opts.Timeout)
	results := Collect(replies)
	log.Debug("discovery done", zap.Ints("ports", opts.Ports), zap.Int("found", len(results)))
	return results, err
}

func broadcast(ctx context.Context, bcast string, ports []int, timeout time.Duration) ([]Reply, error) {
	ip := net.ParseIP(bcast)
	if ip == nil {
		return nil, fmt.Errorf("discovery: bad broadcast address %q", bcast)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("discovery: listen: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	for _, port := range ports {
		dst := &net.UDPAddr{IP: ip, Port: port}
		if _, err := conn.WriteToUDP([]byte(MagicRequest), dst); err != nil {
			return nil, fmt.Errorf("discovery: send to %s: %w", dst, err)
		}
	}

	var replies []Reply
	buf := make([]byte, 512)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return replies, ctx.Err()
			}
			return replies, fmt.Errorf("discovery: read: %w", err)
		}
		replies = append(replies, Reply{Addr: addr, Payload: append([]byte(nil), buf[:n]...)})
	}
}

func hostOf(a net.Addr) string {
	switch v := a.(type) {
	case *net.UDPAddr:
		return v.IP.String()
	case nil:
		return ""
	}
	host, _, err := net.SplitHostPort(a.String())
	if err != nil {
		return a.String()
	}
	return host
}
