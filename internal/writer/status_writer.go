// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/luxtronik-replicator/internal/status"
)

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter is the concrete implementation used by the mirror.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
}

// NewDeviceStatusWriter builds a status writer if status is enabled for
// the target. If t.Status is nil, status is disabled.
func NewDeviceStatusWriter(t TargetEndpoint, clients map[string]endpointClient) (*deviceStatusWriter, bool) {
	if t.Status == nil {
		return nil, false
	}

	sp := t.Status

	return &deviceStatusWriter{
		plan:     sp,
		cli:      clients[sp.Endpoint],
		needFull: true, // full re-assert on first successful write
		last: status.Snapshot{
			Health: status.HealthUnknown,
		},
	}, true
}

// StatusWriters returns one writer fanning out to every target with a
// status block, or nil when none has one.
func StatusWriters(plan Plan, clients map[string]endpointClient) StatusWriter {
	var out multiStatusWriter
	for _, t := range plan.Targets {
		if sw, ok := NewDeviceStatusWriter(t, clients); ok {
			out = append(out, sw)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type multiStatusWriter []StatusWriter

func (m multiStatusWriter) WriteStatus(s status.Snapshot) error {
	var errs []string
	for _, sw := range m {
		if err := sw.WriteStatus(s); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// WriteStatus delivers a device status snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	baseAddr := sw.baseAddr()
	unitID := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.Encode(s, sw.plan.DeviceName)

		if err := sw.cli.WriteRegisters(
			areaHoldingRegisters,
			unitID,
			baseAddr,
			regs,
		); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	slots := []struct {
		slot uint16
		name string
		prev *uint16
		next uint16
	}{
		{status.SlotHealthCode, "health", &sw.last.Health, s.Health},
		{status.SlotLastErrorCode, "last_error", &sw.last.LastErrorCode, s.LastErrorCode},
		{status.SlotSecondsInError, "seconds", &sw.last.SecondsInError, s.SecondsInError},
	}

	for _, sl := range slots {
		if *sl.prev == sl.next {
			continue
		}
		if err := sw.cli.WriteRegisters(
			areaHoldingRegisters,
			unitID,
			baseAddr+sl.slot,
			[]uint16{sl.next},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", sl.slot, sl.name, err))
			continue
		}
		*sl.prev = sl.next
	}

	if len(errs) > 0 {
		// partial failure: re-assert on next success
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each controller owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}
