// internal/config/normalize.go
package config

import "strings"

const (
	DefaultPort                   = 8888
	DefaultSocketTimeoutMs        = 30000
	DefaultMaxDataLength          = 10000
	DefaultWriteGraceMs           = 1000
	DefaultUpdateIntervalFastMs   = 10000
	DefaultUpdateIntervalNormalMs = 60000
	DefaultDebounceMs             = 500
	DefaultDiscoveryTimeoutMs     = 2000
	DefaultMirrorTimeoutMs        = 2000
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "console"
	DefaultTopicPrefix            = "luxtronik"
)

var DefaultDiscoveryPorts = []int{4444, 47808}

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	c := &cfg.Controller
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.SocketTimeoutMs == 0 {
		c.SocketTimeoutMs = DefaultSocketTimeoutMs
	}
	if c.MaxDataLength == 0 {
		c.MaxDataLength = DefaultMaxDataLength
	}
	if c.WriteGraceMs == 0 {
		c.WriteGraceMs = DefaultWriteGraceMs
	}

	p := &cfg.Poll
	if p.UpdateIntervalFastMs == 0 {
		p.UpdateIntervalFastMs = DefaultUpdateIntervalFastMs
	}
	if p.UpdateIntervalNormalMs == 0 {
		p.UpdateIntervalNormalMs = DefaultUpdateIntervalNormalMs
	}
	if p.DebounceMs == 0 {
		p.DebounceMs = DefaultDebounceMs
	}

	d := &cfg.Discovery
	if d.TimeoutMs == 0 {
		d.TimeoutMs = DefaultDiscoveryTimeoutMs
	}
	if len(d.Ports) == 0 {
		d.Ports = append([]int(nil), DefaultDiscoveryPorts...)
	}

	l := &cfg.Logging
	l.Level = strings.ToLower(l.Level)
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	l.Format = strings.ToLower(l.Format)
	if l.Format == "" {
		l.Format = DefaultLogFormat
	}

	for i := range cfg.Mirror.Targets {
		t := &cfg.Mirror.Targets[i]

		t.Kind = strings.ToLower(t.Kind)
		if t.Kind == "" {
			t.Kind = MirrorKindModbus
		}
		if t.TimeoutMs == 0 {
			t.TimeoutMs = DefaultMirrorTimeoutMs
		}

		// ASCII already validated
		if len(t.DeviceName) > 16 {
			t.DeviceName = t.DeviceName[:16]
		}
	}

	m := &cfg.MQTT
	m.TopicPrefix = strings.TrimRight(m.TopicPrefix, "/")
	if m.TopicPrefix == "" {
		m.TopicPrefix = DefaultTopicPrefix
	}
}
