// internal/config/validate_test.go
package config

import "testing"

func u8(v uint8) *uint8    { return &v }
func u16(v uint16) *uint16 { return &v }

// helper to build a mirror target quickly
func target(id uint32, endpoint string, section string, offset, count uint16) MirrorTarget {
	return MirrorTarget{
		ID:       id,
		Kind:     MirrorKindModbus,
		Endpoint: endpoint,
		UnitID:   1,
		Sections: map[string]SectionMap{
			section: {Offset: offset, Count: count},
		},
	}
}

func base(targets ...MirrorTarget) *Config {
	return &Config{
		Controller: ControllerConfig{Host: "192.168.1.20"},
		Mirror:     MirrorConfig{Targets: targets},
	}
}

// ---- tests ----

func TestValidate_Minimal(t *testing.T) {
	if err := Validate(base()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_HostRequired(t *testing.T) {
	cfg := base()
	cfg.Controller.Host = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	cases := map[string]func(c *Config){
		"port":          func(c *Config) { c.Controller.Port = 70000 },
		"timeout":       func(c *Config) { c.Controller.SocketTimeoutMs = -1 },
		"max length":    func(c *Config) { c.Controller.MaxDataLength = -1 },
		"fast > normal": func(c *Config) { c.Poll.UpdateIntervalFastMs, c.Poll.UpdateIntervalNormalMs = 5000, 1000 },
		"level":         func(c *Config) { c.Logging.Level = "verbose" },
		"format":        func(c *Config) { c.Logging.Format = "xml" },
		"qos":           func(c *Config) { c.MQTT.QoS = 3 },
		"mqtt creds":    func(c *Config) { c.MQTT.Username = "u" },
		"disc port":     func(c *Config) { c.Discovery.Ports = []int{0} },
	}

	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected error, got nil", name)
		}
	}
}

func TestValidate_NoOverlapDifferentEndpoints(t *testing.T) {
	cfg := base(
		target(1, "ep1", "parameters", 0, 100),
		target(2, "ep2", "parameters", 0, 100),
	)

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_TouchingRangesAllowed(t *testing.T) {
	// 0–19, 20–39, 40–49
	a := target(1, "ep1", "parameters", 0, 10)
	a.Sections["calculations"] = SectionMap{Offset: 20, Count: 10}
	a.Sections["visibilities"] = SectionMap{Offset: 40, Count: 10}

	if err := Validate(base(a)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_OverlapDetected(t *testing.T) {
	cfg := base(
		target(1, "ep1", "parameters", 0, 10),    // 0–19
		target(2, "ep1", "calculations", 19, 10), // 19–38 → overlap
	)

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected overlap error, got nil")
	}
}

func TestValidate_StatusBlockOverlapsData(t *testing.T) {
	// both 0–19
	a := target(1, "ep1", "parameters", 0, 10)
	a.StatusSlot = u16(0)
	a.StatusUnitID = u8(1)

	if err := Validate(base(a)); err == nil {
		t.Fatalf("expected overlap error, got nil")
	}

	a.StatusUnitID = u8(2)
	if err := Validate(base(a)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_StatusSlotCollision(t *testing.T) {
	a := MirrorTarget{ID: 1, Endpoint: "ep1", StatusSlot: u16(3), StatusUnitID: u8(9)}
	b := MirrorTarget{ID: 2, Endpoint: "ep1", StatusSlot: u16(3), StatusUnitID: u8(9)}

	if err := Validate(base(a, b)); err == nil {
		t.Fatalf("expected collision error, got nil")
	}
}

func TestValidate_StatusNeedsUnitID(t *testing.T) {
	a := MirrorTarget{ID: 1, Endpoint: "ep1", StatusSlot: u16(0)}
	if err := Validate(base(a)); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_MirrorTargetErrors(t *testing.T) {
	cases := map[string]MirrorTarget{
		"kind":       {ID: 1, Kind: "serial", Endpoint: "ep", Sections: map[string]SectionMap{"p": {Count: 1}}},
		"endpoint":   {ID: 1, Sections: map[string]SectionMap{"p": {Count: 1}}},
		"section":    {ID: 1, Endpoint: "ep", Sections: map[string]SectionMap{"holding": {Count: 1}}},
		"count":      {ID: 1, Endpoint: "ep", Sections: map[string]SectionMap{"p": {Count: 0}}},
		"empty":      {ID: 1, Endpoint: "ep"},
		"name":       {ID: 1, Endpoint: "ep", DeviceName: "Wärmepumpe", Sections: map[string]SectionMap{"p": {Count: 1}}},
		"past space": {ID: 1, Endpoint: "ep", Sections: map[string]SectionMap{"p": {Offset: 65000, Count: 1000}}},
	}

	for name, tgt := range cases {
		if err := Validate(base(tgt)); err == nil {
			t.Fatalf("%s: expected error, got nil", name)
		}
	}
}

func TestValidate_DuplicateTargetID(t *testing.T) {
	cfg := base(
		target(1, "ep1", "parameters", 0, 10),
		target(1, "ep2", "parameters", 0, 10),
	)
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected duplicate id error, got nil")
	}
}
