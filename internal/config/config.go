// internal/config/config.go
package config

import "time"

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Poll       PollConfig       `yaml:"poll"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Logging    LoggingConfig    `yaml:"logging"`
	Mirror     MirrorConfig     `yaml:"mirror"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	HTTP       HTTPConfig       `yaml:"http"`
	EVUStore   EVUStoreConfig   `yaml:"evu_store"`
}

// ---- CONTROLLER ----

type ControllerConfig struct {
	Host            string `yaml:"host" env:"LUXTRONIK_HOST"`
	Port            int    `yaml:"port" env:"LUXTRONIK_PORT"`
	SocketTimeoutMs int    `yaml:"socket_timeout_ms" env:"LUXTRONIK_SOCKET_TIMEOUT_MS"`
	MaxDataLength   int    `yaml:"max_data_length" env:"LUXTRONIK_MAX_DATA_LENGTH"`
	Safe            bool   `yaml:"safe" env:"LUXTRONIK_SAFE"`

	// negative disables the pause before the post-write read
	WriteGraceMs int `yaml:"write_grace_ms" env:"LUXTRONIK_WRITE_GRACE_MS"`
}

func (c ControllerConfig) SocketTimeout() time.Duration {
	return time.Duration(c.SocketTimeoutMs) * time.Millisecond
}

func (c ControllerConfig) WriteGrace() time.Duration {
	return time.Duration(c.WriteGraceMs) * time.Millisecond
}

// ---- POLL ----

type PollConfig struct {
	UpdateIntervalFastMs   int `yaml:"update_interval_fast_ms" env:"LUXTRONIK_UPDATE_INTERVAL_FAST_MS"`
	UpdateIntervalNormalMs int `yaml:"update_interval_normal_ms" env:"LUXTRONIK_UPDATE_INTERVAL_NORMAL_MS"`
	DebounceMs             int `yaml:"debounce_ms" env:"LUXTRONIK_DEBOUNCE_MS"`
}

func (p PollConfig) Fast() time.Duration {
	return time.Duration(p.UpdateIntervalFastMs) * time.Millisecond
}

func (p PollConfig) Normal() time.Duration {
	return time.Duration(p.UpdateIntervalNormalMs) * time.Millisecond
}

func (p PollConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}

// ---- DISCOVERY ----

type DiscoveryConfig struct {
	TimeoutMs int   `yaml:"timeout_ms" env:"LUXTRONIK_DISCOVERY_TIMEOUT_MS"`
	Ports     []int `yaml:"ports" env:"LUXTRONIK_DISCOVERY_PORTS" envSeparator:","`
}

func (d DiscoveryConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LUXTRONIK_LOG_LEVEL"`
	Format string `yaml:"format" env:"LUXTRONIK_LOG_FORMAT"`
}

// ---- MIRROR ----

type MirrorConfig struct {
	Targets []MirrorTarget `yaml:"targets"`
}

// MirrorTarget is one register memory the snapshot is replicated into.
type MirrorTarget struct {
	ID        uint32 `yaml:"id"`
	Kind      string `yaml:"kind"` // modbus | ingest
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// keyed by section name
	Sections map[string]SectionMap `yaml:"sections"`

	// Device status block (optional, opt-in)
	StatusUnitID *uint8  `yaml:"status_unit_id"`
	StatusSlot   *uint16 `yaml:"status_slot"`
	DeviceName   string  `yaml:"device_name"`
}

func (t MirrorTarget) Timeout() time.Duration {
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// SectionMap places the first Count entries of a section at Offset.
// Parameters and calculations take two registers per entry.
type SectionMap struct {
	Offset uint16 `yaml:"offset"`
	Count  uint16 `yaml:"count"`
}

const (
	MirrorKindModbus = "modbus"
	MirrorKindIngest = "ingest"
)

// ---- MQTT ----

type MQTTConfig struct {
	Broker      string `yaml:"broker" env:"LUXTRONIK_MQTT_BROKER"`
	ClientID    string `yaml:"client_id" env:"LUXTRONIK_MQTT_CLIENT_ID"`
	TopicPrefix string `yaml:"topic_prefix" env:"LUXTRONIK_MQTT_TOPIC_PREFIX"`
	Username    string `yaml:"username" env:"LUXTRONIK_MQTT_USERNAME"`
	Password    string `yaml:"password" env:"LUXTRONIK_MQTT_PASSWORD"`
	QoS         byte   `yaml:"qos" env:"LUXTRONIK_MQTT_QOS"`
	Retain      bool   `yaml:"retain" env:"LUXTRONIK_MQTT_RETAIN"`
}

func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

// ---- HTTP ----

type HTTPConfig struct {
	Listen string `yaml:"listen" env:"LUXTRONIK_HTTP_LISTEN"`
}

// ---- EVU STORE ----

type EVUStoreConfig struct {
	Path string `yaml:"path" env:"LUXTRONIK_EVU_STORE"`
}
