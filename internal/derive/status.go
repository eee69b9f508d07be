// internal/derive/status.go
package derive

import (
	"strconv"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

// The controller reports "heating" while neither heat source runs.
func CorrectOperationMode(mode string, compressor, additionalHeat bool) string {
	if mode == registry.ModeHeating && !compressor && !additionalHeat {
		return registry.ModeNoRequest
	}
	return mode
}

// CorrectStatusLine1 rewrites two misleading status texts:
// heatpump_coming during the switch-cycle lock countdown is really a
// shutdown, and pump_forerun with the compressor heater on is the heater.
func CorrectStatusLine1(status string, scbOn, scbOff int32, compressorHeater bool) string {
	switch {
	case status == registry.StatusHeatpumpComing && scbOn < 10 && scbOff > 0:
		return registry.StatusHeatpumpShutdown
	case status == registry.StatusPumpForerun && compressorHeater:
		return registry.StatusCompressorHeater
	}
	return status
}

// OperationMode returns the corrected operation mode of s.
func OperationMode(s luxtronik.Snapshot) (string, bool) {
	raw, ok := s.Calculation(registry.CalcOperationMode)
	if !ok {
		return "", false
	}
	mode := enumText(registry.OperationModes, raw)
	return CorrectOperationMode(mode,
		s.Flag(registry.CalcCompressor),
		s.Flag(registry.CalcAdditionalHeatGenerator),
	), true
}

// StatusLine1 returns the corrected first status line of s.
func StatusLine1(s luxtronik.Snapshot) (string, bool) {
	raw, ok := s.Calculation(registry.CalcStatusLine1)
	if !ok {
		return "", false
	}
	scbOn, _ := s.Calculation(registry.CalcTimerSCBOn)
	scbOff, _ := s.Calculation(registry.CalcTimerSCBOff)

	return CorrectStatusLine1(enumText(registry.StatusLine1Options, raw),
		scbOn, scbOff,
		s.Flag(registry.CalcCompressorHeater),
	), true
}

func enumText(options []string, raw int32) string {
	if raw >= 0 && int(raw) < len(options) && options[raw] != "" {
		return options[raw]
	}
	return "unknown_" + strconv.Itoa(int(raw))
}

// State bundles the derived values consumers publish next to a snapshot.
type State struct {
	Seq           uint64 `json:"seq"`
	OperationMode string `json:"operation_mode"`
	StatusLine1   string `json:"status_line_1"`
	StatusLine2   string `json:"status_line_2"`
	StatusLine3   string `json:"status_line_3"`
	Compressor    bool   `json:"compressor"`
	EVU           bool   `json:"evu"`

	// minutes until the next learned EVU start or end, if any
	NextEVUEventMinutes *int `json:"next_evu_event_minutes,omitempty"`
}

func Apply(s luxtronik.Snapshot) State {
	st := State{Seq: s.Seq, Compressor: s.Compressor()}
	st.OperationMode, _ = OperationMode(s)
	st.StatusLine1, _ = StatusLine1(s)
	if raw, ok := s.Calculation(registry.CalcStatusLine2); ok {
		st.StatusLine2 = enumText(registry.StatusLine2Options, raw)
	}
	if raw, ok := s.Calculation(registry.CalcStatusLine3); ok {
		st.StatusLine3 = enumText(registry.StatusLine3Options, raw)
	}
	st.EVU = st.OperationMode == registry.ModeEVU
	return st
}
