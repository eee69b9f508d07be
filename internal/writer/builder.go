// internal/writer/builder.go
package writer

import (
	"fmt"
	"sort"
	"time"

	cfg "github.com/tamzrod/luxtronik-replicator/internal/config"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/writer/ingest"
	wmodbus "github.com/tamzrod/luxtronik-replicator/internal/writer/modbus"
)

// BuildPlan converts the mirror targets into a Writer Plan.
// Assumes config has already passed validation.
func BuildPlan(targets []cfg.MirrorTarget) (Plan, error) {
	var plan Plan

	for _, t := range targets {
		ep := TargetEndpoint{
			TargetID: t.ID,
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
		}

		for name, sm := range t.Sections {
			s, err := registry.ParseSection(name)
			if err != nil {
				return Plan{}, fmt.Errorf("writer: target %d: %w", t.ID, err)
			}
			ep.Sections = append(ep.Sections, SectionDest{
				Section: s,
				Offset:  sm.Offset,
				Count:   sm.Count,
			})
		}
		sort.Slice(ep.Sections, func(i, j int) bool {
			return ep.Sections[i].Section < ep.Sections[j].Section
		})

		if t.StatusSlot != nil {
			if t.StatusUnitID == nil {
				return Plan{}, fmt.Errorf("writer: target %d: status_unit_id required", t.ID)
			}
			ep.Status = &StatusPlan{
				Endpoint:   t.Endpoint,
				UnitID:     *t.StatusUnitID,
				BaseSlot:   *t.StatusSlot,
				DeviceName: t.DeviceName,
			}
		}

		plan.Targets = append(plan.Targets, ep)
	}

	return plan, nil
}

// BuildEndpointClients creates one client per unique endpoint.
// No connection is made here; clients dial on first write.
func BuildEndpointClients(targets []cfg.MirrorTarget) (map[string]endpointClient, func() error, error) {
	kinds := map[string]string{}
	timeouts := map[string]time.Duration{}

	for _, t := range targets {
		kind := t.Kind
		if kind == "" {
			kind = cfg.MirrorKindModbus
		}
		if prev, ok := kinds[t.Endpoint]; ok && prev != kind {
			return nil, nil, fmt.Errorf(
				"writer: endpoint %s used as both %s and %s",
				t.Endpoint,
				prev,
				kind,
			)
		}
		kinds[t.Endpoint] = kind
		timeouts[t.Endpoint] = t.Timeout()
	}

	clients := make(map[string]endpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for endpoint, kind := range kinds {
		timeout := timeouts[endpoint]

		switch kind {
		case cfg.MirrorKindIngest:
			c, err := ingest.NewEndpointClient(ingest.Config{
				Endpoint: endpoint,
				Timeout:  timeout,
			})
			if err != nil {
				_ = closeAll()
				return nil, nil, err
			}
			clients[endpoint] = c
			closers = append(closers, c.Close)

		default:
			c, err := wmodbus.NewEndpointClient(wmodbus.Config{
				Endpoint: endpoint,
				Timeout:  timeout,
			})
			if err != nil {
				_ = closeAll()
				return nil, nil, err
			}
			clients[endpoint] = c
			closers = append(closers, c.Close)
		}
	}

	return clients, closeAll, nil
}
