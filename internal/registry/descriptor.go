// internal/registry/descriptor.go
package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Section identifies one of the three controller data areas.
type Section int

const (
	Parameters Section = iota
	Calculations
	Visibilities
)

func (s Section) String() string {
	switch s {
	case Parameters:
		return "parameters"
	case Calculations:
		return "calculations"
	case Visibilities:
		return "visibilities"
	default:
		return "section(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSection accepts the long and short section spellings.
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parameters", "parameter", "p":
		return Parameters, nil
	case "calculations", "calculation", "c":
		return Calculations, nil
	case "visibilities", "visibility", "v":
		return Visibilities, nil
	}
	return 0, fmt.Errorf("registry: unknown section %q", s)
}

// Kind selects how a raw slot is decoded.
type Kind int

const (
	KindInt32 Kind = iota
	KindBool
	KindEnum
	KindCelsiusTenths
	KindSeconds
	KindMinutes
	KindBitfield
	KindFirmwareChars
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "i32"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindCelsiusTenths:
		return "celsius_tenths"
	case KindSeconds:
		return "seconds"
	case KindMinutes:
		return "minutes"
	case KindBitfield:
		return "bitfield"
	case KindFirmwareChars:
		return "firmware_version_chars"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Descriptor describes one known slot. Identity is (Section, Index).
type Descriptor struct {
	Section Section
	Index   int

	// Name is the controller's own symbolic name (ID_Einst_BWS_akt).
	// Key is the stable integration key (P0002_DHW_TARGET_TEMPERATURE).
	Name string
	Key  string

	Kind  Kind
	Scale float64 // 0 means kind default
	Unit  string
	Enum  []string

	// Write constraints (parameters only). Min/Max are raw values.
	Writable bool
	Ranged   bool
	Min      int32
	Max      int32
}

// Value is the decoded form of a raw slot.
type Value struct {
	Raw      int32
	Kind     Kind
	Number   float64
	Bool     bool
	Text     string
	Duration time.Duration
}

func (d *Descriptor) scale() float64 {
	if d.Scale != 0 {
		return d.Scale
	}
	if d.Kind == KindCelsiusTenths {
		return 0.1
	}
	return 1
}

// Float returns raw scaled to engineering units.
func (d *Descriptor) Float(raw int32) float64 {
	s := d.scale()
	// divide by 10, 100 ... so 215 decodes to exactly 21.5
	if s < 1 {
		if inv := math.Round(1 / s); math.Abs(inv*s-1) < 1e-9 {
			return float64(raw) / inv
		}
	}
	return float64(raw) * s
}

// Encode converts an engineering value back to the raw slot value.
func (d *Descriptor) Encode(v float64) int32 {
	return int32(math.Round(v / d.scale()))
}

// EnumText returns the option name for raw, or unknown_<raw>.
func (d *Descriptor) EnumText(raw int32) string {
	if raw >= 0 && int(raw) < len(d.Enum) && d.Enum[raw] != "" {
		return d.Enum[raw]
	}
	return "unknown_" + strconv.Itoa(int(raw))
}

// Decode materialises raw according to the descriptor kind.
func (d *Descriptor) Decode(raw int32) Value {
	v := Value{Raw: raw, Kind: d.Kind, Number: d.Float(raw)}

	switch d.Kind {
	case KindBool:
		v.Bool = raw != 0
		v.Text = strconv.FormatBool(v.Bool)
	case KindEnum:
		v.Text = d.EnumText(raw)
	case KindSeconds:
		v.Duration = time.Duration(raw) * time.Second
		v.Text = v.Duration.String()
	case KindMinutes:
		v.Duration = time.Duration(raw) * time.Minute
		v.Text = v.Duration.String()
	case KindBitfield:
		v.Text = fmt.Sprintf("%032b", uint32(raw))
	case KindFirmwareChars:
		if raw > 0x20 && raw < 0x7F {
			v.Text = string(rune(raw))
		}
	default:
		v.Text = strconv.FormatFloat(v.Number, 'f', -1, 64)
	}

	return v
}

// Format renders raw with its unit, for logs and the CLI.
func (d *Descriptor) Format(raw int32) string {
	v := d.Decode(raw)
	switch d.Kind {
	case KindBool, KindEnum, KindSeconds, KindMinutes, KindBitfield, KindFirmwareChars:
		return v.Text
	}
	if d.Unit == "" {
		return v.Text
	}
	return v.Text + " " + d.Unit
}

// ---- table builders ----

func field(index int, name string, kind Kind) Descriptor {
	return Descriptor{Index: index, Name: name, Kind: kind}
}

func (d Descriptor) as(key string) Descriptor {
	d.Key = key
	return d
}

func (d Descriptor) unit(u string, scale float64) Descriptor {
	d.Unit = u
	d.Scale = scale
	return d
}

func (d Descriptor) enum(options []string) Descriptor {
	d.Enum = options
	return d
}

func (d Descriptor) writable(min, max int32) Descriptor {
	d.Writable = true
	d.Ranged = true
	d.Min = min
	d.Max = max
	return d
}

func celsius(index int, name string) Descriptor {
	return field(index, name, KindCelsiusTenths).unit("°C", 0)
}

func kelvin(index int, name string) Descriptor {
	return field(index, name, KindCelsiusTenths).unit("K", 0)
}

func flag(index int, name string) Descriptor {
	return field(index, name, KindBool)
}
