// internal/writer/types.go
package writer

import (
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

// SectionDest places the first Count entries of one snapshot section at
// Offset. Parameters and calculations take two registers per entry
// (high word first), visibilities one.
type SectionDest struct {
	Section registry.Section
	Offset  uint16
	Count   uint16
}

// StatusPlan locates the device status block of one target.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// TargetEndpoint is one target endpoint (TCP) with its section layout.
type TargetEndpoint struct {
	TargetID uint32
	Endpoint string
	UnitID   uint8
	Sections []SectionDest
	Status   *StatusPlan
}

// Plan is the fully-built mirror plan.
type Plan struct {
	Targets []TargetEndpoint
}

// Writer writes snapshots into targets.
type Writer interface {
	Write(snap luxtronik.Snapshot) error
}
