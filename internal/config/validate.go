// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

// registers per entry in a mirrored section
func sectionWidth(s registry.Section) int {
	if s == registry.Visibilities {
		return 1
	}
	return 2
}

// statusBlockSlots matches status.SlotsPerDevice.
const statusBlockSlots = 20

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// CONTROLLER / POLL
	// ------------------------------------------------------------

	c := cfg.Controller
	if c.Host == "" {
		return fmt.Errorf("controller.host is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("controller.port %d out of range", c.Port)
	}
	if c.SocketTimeoutMs < 0 {
		return fmt.Errorf("controller.socket_timeout_ms must not be negative")
	}
	if c.MaxDataLength < 0 {
		return fmt.Errorf("controller.max_data_length must not be negative")
	}

	p := cfg.Poll
	if p.UpdateIntervalFastMs < 0 || p.UpdateIntervalNormalMs < 0 || p.DebounceMs < 0 {
		return fmt.Errorf("poll: intervals must not be negative")
	}
	if p.UpdateIntervalFastMs > 0 && p.UpdateIntervalNormalMs > 0 &&
		p.UpdateIntervalFastMs > p.UpdateIntervalNormalMs {
		return fmt.Errorf(
			"poll: update_interval_fast_ms (%d) exceeds update_interval_normal_ms (%d)",
			p.UpdateIntervalFastMs,
			p.UpdateIntervalNormalMs,
		)
	}

	// ------------------------------------------------------------
	// DISCOVERY / LOGGING
	// ------------------------------------------------------------

	if cfg.Discovery.TimeoutMs < 0 {
		return fmt.Errorf("discovery.timeout_ms must not be negative")
	}
	for _, port := range cfg.Discovery.Ports {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("discovery.ports: %d out of range", port)
		}
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q unknown", cfg.Logging.Format)
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos %d out of range", cfg.MQTT.QoS)
	}
	if !cfg.MQTT.Enabled() && (cfg.MQTT.Username != "" || cfg.MQTT.Password != "") {
		return fmt.Errorf("mqtt: credentials set but no broker")
	}

	return validateMirror(cfg.Mirror)
}

func validateMirror(m MirrorConfig) error {
	type span struct {
		start int
		end   int
		owner string
	}

	ids := make(map[uint32]struct{})

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	claim := func(endpoint string, unitID uint8, start, end int, owner string) error {
		if end > 65535 {
			return fmt.Errorf(
				"mirror: %s range %d-%d exceeds the register space",
				owner,
				start,
				end,
			)
		}

		key := fmt.Sprintf("%s|%d", endpoint, unitID)
		for _, s := range spans[key] {
			// overlap check (inclusive)
			if !(end < s.start || start > s.end) {
				return fmt.Errorf(
					"memory overlap: endpoint=%s unit_id=%d range=%d-%d (%s) overlaps with %s range=%d-%d",
					endpoint,
					unitID,
					start,
					end,
					owner,
					s.owner,
					s.start,
					s.end,
				)
			}
		}
		spans[key] = append(spans[key], span{start: start, end: end, owner: owner})
		return nil
	}

	for _, t := range m.Targets {
		if _, dup := ids[t.ID]; dup {
			return fmt.Errorf("mirror: duplicate target id %d", t.ID)
		}
		ids[t.ID] = struct{}{}

		switch t.Kind {
		case "", MirrorKindModbus, MirrorKindIngest:
		default:
			return fmt.Errorf("mirror target %d: kind %q unknown", t.ID, t.Kind)
		}
		if t.Endpoint == "" {
			return fmt.Errorf("mirror target %d: endpoint required", t.ID)
		}
		if t.TimeoutMs < 0 {
			return fmt.Errorf("mirror target %d: timeout_ms must not be negative", t.ID)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(t.DeviceName); i++ {
			if t.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"mirror target %d: device_name must contain ASCII characters only",
					t.ID,
				)
			}
		}

		if len(t.Sections) == 0 && t.StatusSlot == nil {
			return fmt.Errorf("mirror target %d: nothing to mirror", t.ID)
		}

		for name, sm := range t.Sections {
			s, err := registry.ParseSection(name)
			if err != nil {
				return fmt.Errorf("mirror target %d: %w", t.ID, err)
			}
			if sm.Count == 0 {
				return fmt.Errorf("mirror target %d: %s count must be positive", t.ID, s)
			}

			start := int(sm.Offset)
			end := start + int(sm.Count)*sectionWidth(s) - 1
			owner := fmt.Sprintf("target %d %s", t.ID, s)
			if err := claim(t.Endpoint, t.UnitID, start, end, owner); err != nil {
				return err
			}
		}

		// status is opt-in
		if t.StatusSlot == nil {
			continue
		}
		if t.StatusUnitID == nil {
			return fmt.Errorf(
				"mirror target %d: status_slot is set but status_unit_id is not",
				t.ID,
			)
		}

		start := int(*t.StatusSlot) * statusBlockSlots
		end := start + statusBlockSlots - 1
		owner := fmt.Sprintf("target %d status", t.ID)
		if err := claim(t.Endpoint, *t.StatusUnitID, start, end, owner); err != nil {
			return err
		}
	}

	return nil
}
