// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

// MaxRegistersPerWrite bounds one FC16 request.
const MaxRegistersPerWrite = 120

// areaHoldingRegisters is the only area the mirror writes.
const areaHoldingRegisters byte = 3

// endpointClient is the exact contract the writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

type writerImpl struct {
	plan    Plan
	clients map[string]endpointClient

	mu sync.Mutex
	// last delivered chunk per target/address; cleared on failure
	last map[chunkKey][]uint16
}

type chunkKey struct {
	target int
	addr   uint16
}

func New(plan Plan, clients map[string]endpointClient) Writer {
	return &writerImpl{
		plan:    plan,
		clients: clients,
		last:    make(map[chunkKey][]uint16),
	}
}

// Write mirrors every planned section. Chunks identical to what was
// last delivered successfully are skipped.
func (w *writerImpl) Write(snap luxtronik.Snapshot) error {
	if snap.IsZero() {
		return errors.New("writer: empty snapshot")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []string

	for ti, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		for _, dest := range tgt.Sections {
			regs := SectionRegisters(snap, dest.Section, int(dest.Count))

			for start := 0; start < len(regs); start += MaxRegistersPerWrite {
				end := min(start+MaxRegistersPerWrite, len(regs))
				chunk := regs[start:end]
				addr := dest.Offset + uint16(start)
				key := chunkKey{target: ti, addr: addr}

				if prev, ok := w.last[key]; ok && slices.Equal(prev, chunk) {
					continue
				}

				if err := cli.WriteRegisters(areaHoldingRegisters, tgt.UnitID, addr, chunk); err != nil {
					delete(w.last, key)
					errs = append(errs, fmt.Sprintf(
						"writer: ep=%s unit=%d section=%s addr=%d err=%v",
						tgt.Endpoint, tgt.UnitID, dest.Section, addr, err,
					))
					continue
				}
				w.last[key] = chunk
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}

// SectionRegisters flattens up to count entries of a section into
// registers. Fewer entries are returned when the snapshot is shorter.
func SectionRegisters(snap luxtronik.Snapshot, s registry.Section, count int) []uint16 {
	n := min(count, snap.Len(s))
	if n <= 0 {
		return nil
	}

	if s == registry.Visibilities {
		out := make([]uint16, n)
		for i := 0; i < n; i++ {
			v, _ := snap.Visibility(i)
			out[i] = uint16(int16(v))
		}
		return out
	}

	out := make([]uint16, 2*n)
	for i := 0; i < n; i++ {
		v, _ := snap.Field(s, i)
		u := uint32(v)
		out[2*i] = uint16(u >> 16)
		out[2*i+1] = uint16(u)
	}
	return out
}
