// internal/luxtest/server.go
//
// Package luxtest runs an in-process Luxtronik controller on a loopback
// TCP listener. It speaks the real wire protocol and records every frame
// it receives.
package luxtest

import (
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/luxtronik-replicator/internal/codec"
)

type Server struct {
	ln net.Listener

	mu           sync.Mutex
	parameters   []int32
	calcStatus   int32
	calculations []int32
	visibilities []int8

	requests []codec.Request
	accepts  int
	conns    map[net.Conn]struct{}

	// fault injection
	stall            bool
	zeroVisibilities int
	paramsLength     *uint32
	calcsLength      *uint32
	truncateParams   int
	echoDelta        int32
	respDelay        time.Duration

	wg     sync.WaitGroup
	closed chan struct{}
}

// New starts a controller with small default sections and registers
// Close with t.Cleanup.
func New(t testing.TB) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("luxtest: listen: %v", err)
	}

	s := &Server{
		ln:           ln,
		parameters:   make([]int32, 1200),
		calculations: make([]int32, 260),
		visibilities: make([]int8, 40),
		conns:        make(map[net.Conn]struct{}),
		closed:       make(chan struct{}),
	}
	s.parameters[2] = 450
	s.calculations[10] = 215
	s.calculations[80] = 5

	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(s.Close)
	return s
}

func (s *Server) Addr() string { return s.ln.Addr().String() }

func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.Addr())
	return host
}

func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.Addr())
	n, _ := strconv.Atoi(port)
	return n
}

func (s *Server) Close() {
	select {
	case <-s.closed:
		return
	default:
	}
	close(s.closed)
	_ = s.ln.Close()

	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// ----------------------------------------------------------------
// State
// ----------------------------------------------------------------

func (s *Server) SetParameter(index int, v int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parameters = grow32(s.parameters, index)
	s.parameters[index] = v
}

func (s *Server) SetCalculation(index int, v int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculations = grow32(s.calculations, index)
	s.calculations[index] = v
}

func (s *Server) SetVisibility(index int, v int8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.visibilities) <= index {
		s.visibilities = append(s.visibilities, 0)
	}
	s.visibilities[index] = v
}

func (s *Server) SetCalculationsStatus(v int32) {
	s.mu.Lock()
	s.calcStatus = v
	s.mu.Unlock()
}

func (s *Server) Parameter(index int) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= len(s.parameters) {
		return 0
	}
	return s.parameters[index]
}

// Accepts is the number of TCP connections accepted so far.
func (s *Server) Accepts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepts
}

// Requests returns a copy of every frame received, in arrival order.
func (s *Server) Requests() []codec.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]codec.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// ----------------------------------------------------------------
// Fault injection
// ----------------------------------------------------------------

// Stall makes the server read requests without ever answering.
func (s *Server) Stall(on bool) {
	s.mu.Lock()
	s.stall = on
	s.mu.Unlock()
}

// ZeroVisibilities answers the next n visibilities reads with length 0.
func (s *Server) ZeroVisibilities(n int) {
	s.mu.Lock()
	s.zeroVisibilities = n
	s.mu.Unlock()
}

// ForceParametersLength announces length in the parameters header and
// then sends the real values.
func (s *Server) ForceParametersLength(length uint32) {
	s.mu.Lock()
	s.paramsLength = &length
	s.mu.Unlock()
}

// ForceCalculationsLength does the same for the next calculations header.
func (s *Server) ForceCalculationsLength(length uint32) {
	s.mu.Lock()
	s.calcsLength = &length
	s.mu.Unlock()
}

// TruncateParameters sends only n parameter values and hangs up.
func (s *Server) TruncateParameters(n int) {
	s.mu.Lock()
	s.truncateParams = n
	s.mu.Unlock()
}

// EchoDelta is added to every echoed write value.
func (s *Server) EchoDelta(d int32) {
	s.mu.Lock()
	s.echoDelta = d
	s.mu.Unlock()
}

// ResponseDelay holds every answer back by d.
func (s *Server) ResponseDelay(d time.Duration) {
	s.mu.Lock()
	s.respDelay = d
	s.mu.Unlock()
}

// DropConnections closes every open client connection from the server side.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
}

// ----------------------------------------------------------------
// Connection handling
// ----------------------------------------------------------------

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.accepts++
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(c)
	}
}

func (s *Server) serve(c net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		_ = c.Close()
	}()

	for {
		head := make([]byte, codec.RequestSize)
		if _, err := io.ReadFull(c, head); err != nil {
			return
		}

		frame := head
		if req, _ := codec.DecodeRequest(head); req.Cmd == codec.CmdWriteParameter {
			tail := make([]byte, 4)
			if _, err := io.ReadFull(c, tail); err != nil {
				return
			}
			frame = append(head, tail...)
		}

		req, err := codec.DecodeRequest(frame)
		if err != nil {
			return
		}

		resp, hangup := s.handle(req)
		if resp == nil && !hangup {
			// stalled: keep reading so the client sees a timeout, not EOF
			continue
		}
		if err := s.send(c, resp); err != nil {
			return
		}
		if hangup {
			return
		}
	}
}

func (s *Server) handle(req codec.Request) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if s.stall {
		return nil, false
	}

	switch req.Cmd {
	case codec.CmdReadParameters:
		values := append([]int32(nil), s.parameters...)
		if s.truncateParams > 0 {
			n := s.truncateParams
			s.truncateParams = 0
			frame := codec.EncodeParametersResponse(values)
			return frame[:codec.ParametersHeaderSize+4*n], true
		}
		frame := codec.EncodeParametersResponse(values)
		if s.paramsLength != nil {
			be32(frame[4:8], int32(*s.paramsLength))
			s.paramsLength = nil
		}
		return frame, false

	case codec.CmdReadCalculations:
		frame := codec.EncodeCalculationsResponse(s.calcStatus, append([]int32(nil), s.calculations...))
		if s.calcsLength != nil {
			be32(frame[8:12], int32(*s.calcsLength))
			s.calcsLength = nil
		}
		return frame, false

	case codec.CmdReadVisibilities:
		if s.zeroVisibilities > 0 {
			s.zeroVisibilities--
			return codec.EncodeVisibilitiesResponse(nil), false
		}
		return codec.EncodeVisibilitiesResponse(append([]int8(nil), s.visibilities...)), false

	case codec.CmdWriteParameter:
		if req.Index >= 0 {
			s.parameters = grow32(s.parameters, int(req.Index))
			s.parameters[req.Index] = req.Value
		}
		return codec.EncodeWriteEcho(req.Value + s.echoDelta), false
	}

	return nil, true
}

func (s *Server) send(c net.Conn, b []byte) error {
	s.mu.Lock()
	delay := s.respDelay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-s.closed:
			return errors.New("luxtest: closed")
		case <-time.After(delay):
		}
	}
	_, err := c.Write(b)
	return err
}

func grow32(v []int32, index int) []int32 {
	for len(v) <= index {
		v = append(v, 0)
	}
	return v
}

func be32(dst []byte, v int32) {
	dst[0] = byte(uint32(v) >> 24)
	dst[1] = byte(uint32(v) >> 16)
	dst[2] = byte(uint32(v) >> 8)
	dst[3] = byte(uint32(v))
}
