// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/luxtronik-replicator/internal/status"
)

func statusTarget() TargetEndpoint {
	return TargetEndpoint{
		Endpoint: "status-endpoint",
		Status: &StatusPlan{
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   0,
			DeviceName: "DEV-01",
		},
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	tgt := statusTarget()

	sw, enabled := NewDeviceStatusWriter(tgt, map[string]endpointClient{"status-endpoint": cli})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf(
			"expected full block write (%d regs), got %d",
			status.SlotsPerDevice,
			len(cli.lastRegs),
		)
	}

	expectedNameRegs := status.EncodeDeviceName(tgt.Status.DeviceName)
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf(
				"device name slot %d mismatch: got=%d want=%d",
				slot,
				cli.lastRegs[slot],
				expectedNameRegs[i],
			)
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  7,
		SecondsInError: 1,
	}
	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.lastRegs) == status.SlotsPerDevice {
		t.Fatalf("device name should not be rewritten on incremental update")
	}
	// three single-slot writes after the full block
	if len(cli.writes) != 4 {
		t.Fatalf("expected 4 writes, got %d", len(cli.writes))
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	tgt := statusTarget()
	tgt.Status.BaseSlot = 3

	sw, _ := NewDeviceStatusWriter(tgt, map[string]endpointClient{"status-endpoint": cli})

	errSnap := status.Snapshot{Health: status.HealthError, LastErrorCode: 42, SecondsInError: 3}
	if err := sw.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	okSnap := status.Snapshot{Health: status.HealthOK}
	if err := sw.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	expectedAddr := tgt.Status.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError
	if cli.lastRegsAddr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastRegsAddr, expectedAddr)
	}
	if len(cli.lastRegs) != 1 || cli.lastRegs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: %v", cli.lastRegs)
	}
}

func TestStatusWriter_FailureReassertsFullBlock(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusTarget(), map[string]endpointClient{"status-endpoint": cli})

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatal(err)
	}

	cli.fail = errors.New("down")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 1}); err == nil {
		t.Fatalf("expected error")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 1}); err != nil {
		t.Fatal(err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert, got %d regs", len(cli.lastRegs))
	}
}

func TestStatusWriters_FanOut(t *testing.T) {
	a := &fakeEndpointClient{}
	b := &fakeEndpointClient{}

	plan := Plan{Targets: []TargetEndpoint{
		{Endpoint: "a", Status: &StatusPlan{Endpoint: "a", UnitID: 1}},
		{Endpoint: "b", Status: &StatusPlan{Endpoint: "b", UnitID: 2}},
		{Endpoint: "c"},
	}}

	sw := StatusWriters(plan, map[string]endpointClient{"a": a, "b": b})
	if sw == nil {
		t.Fatalf("expected a status writer")
	}
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatal(err)
	}
	if len(a.writes) != 1 || len(b.writes) != 1 {
		t.Fatalf("fan-out writes a=%d b=%d", len(a.writes), len(b.writes))
	}

	if StatusWriters(Plan{Targets: []TargetEndpoint{{Endpoint: "c"}}}, nil) != nil {
		t.Fatalf("no status targets should give nil")
	}
}
