// internal/coordinator/health.go
package coordinator

import (
	"errors"
	"os"

	"github.com/tamzrod/luxtronik-replicator/internal/codec"
	"github.com/tamzrod/luxtronik-replicator/internal/status"
	"github.com/tamzrod/luxtronik-replicator/internal/transport"
)

// Last error codes written into the status block.
const (
	CodeGeneric          uint16 = 1
	CodeFramingOverflow  uint16 = 2
	CodeEchoMismatch     uint16 = 3
	CodeNoVisibilities   uint16 = 4
	CodeTimeout          uint16 = 5
	CodeBusy             uint16 = 6
	CodeUnexpectedAnswer uint16 = 7
)

// ErrorCode maps a cycle error to a best-effort uint16 code.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }
	var cd coder
	if errors.As(err, &cd) {
		return cd.Code()
	}

	switch {
	case errors.Is(err, transport.ErrFramingOverflow):
		return CodeFramingOverflow
	case errors.Is(err, transport.ErrEchoMismatch):
		return CodeEchoMismatch
	case errors.Is(err, transport.ErrNoVisibilities):
		return CodeNoVisibilities
	case errors.Is(err, os.ErrDeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, transport.ErrBusy):
		return CodeBusy
	case errors.Is(err, codec.ErrUnexpectedCommand):
		return CodeUnexpectedAnswer
	}
	return CodeGeneric
}

// Health returns the current device status block values.
func (c *Coordinator) Health() status.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health
}

// setHealthLocked reports whether anything changed. Recovery clears the
// error code and the seconds counter.
func (c *Coordinator) setHealthLocked(health, code uint16) bool {
	next := c.health
	next.Health = health
	next.LastErrorCode = code
	if health == status.HealthOK {
		next.SecondsInError = 0
	}

	if next == c.health {
		return false
	}
	c.health = next
	return true
}

// tickHealth counts seconds while not healthy. Runs on the lane at 1 Hz.
func (c *Coordinator) tickHealth() {
	c.mu.Lock()
	if c.health.Health == status.HealthOK || c.health.SecondsInError == 65535 {
		c.mu.Unlock()
		return
	}
	c.health.SecondsInError++
	c.mu.Unlock()

	c.emitStatus()
}

func (c *Coordinator) emitStatus() {
	if c.cfg.StatusSink == nil {
		return
	}
	c.cfg.StatusSink(c.Health())
}
