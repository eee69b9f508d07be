// internal/luxtronik/snapshot.go
package luxtronik

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

// Snapshot is an immutable view of all three sections taken after one
// successful exchange. The zero value means "nothing read yet".
type Snapshot struct {
	parameters   []int32
	calculations []int32
	visibilities []int8

	Status    int32
	At        time.Time
	Seq       uint64
	Truncated bool
}

// NewSnapshot builds a snapshot from raw sections. The slices are copied.
func NewSnapshot(parameters, calculations []int32, visibilities []int8, at time.Time, seq uint64) Snapshot {
	return Snapshot{
		parameters:   append([]int32(nil), parameters...),
		calculations: append([]int32(nil), calculations...),
		visibilities: append([]int8(nil), visibilities...),
		At:           at,
		Seq:          seq,
	}
}

func (s Snapshot) IsZero() bool { return s.Seq == 0 }

func (s Snapshot) Parameter(index int) (int32, bool) {
	return at32(s.parameters, index)
}

func (s Snapshot) Calculation(index int) (int32, bool) {
	return at32(s.calculations, index)
}

func (s Snapshot) Visibility(index int) (int8, bool) {
	if index < 0 || index >= len(s.visibilities) {
		return 0, false
	}
	return s.visibilities[index], true
}

// Field reads any section, widening visibilities to int32.
func (s Snapshot) Field(section registry.Section, index int) (int32, bool) {
	switch section {
	case registry.Parameters:
		return s.Parameter(index)
	case registry.Calculations:
		return s.Calculation(index)
	case registry.Visibilities:
		v, ok := s.Visibility(index)
		return int32(v), ok
	}
	return 0, false
}

// Len returns the number of slots held for section.
func (s Snapshot) Len(section registry.Section) int {
	switch section {
	case registry.Parameters:
		return len(s.parameters)
	case registry.Calculations:
		return len(s.calculations)
	case registry.Visibilities:
		return len(s.visibilities)
	}
	return 0
}

func (s Snapshot) Parameters() []int32   { return append([]int32(nil), s.parameters...) }
func (s Snapshot) Calculations() []int32 { return append([]int32(nil), s.calculations...) }
func (s Snapshot) Visibilities() []int8  { return append([]int8(nil), s.visibilities...) }

// Compressor reports whether compressor 1 is running.
func (s Snapshot) Compressor() bool {
	v, ok := s.Calculation(registry.CalcCompressor)
	return ok && v != 0
}

// Flag reads a boolean calculation.
func (s Snapshot) Flag(index int) bool {
	v, ok := s.Calculation(index)
	return ok && v != 0
}

func at32(v []int32, index int) (int32, bool) {
	if index < 0 || index >= len(v) {
		return 0, false
	}
	return v[index], true
}

// ----------------------------------------------------------------
// Export
// ----------------------------------------------------------------

// Document is the serialisable form used by dump, MQTT and the API.
type Document struct {
	Seq          uint64    `json:"seq" yaml:"seq" cbor:"seq"`
	At           time.Time `json:"at" yaml:"at" cbor:"at"`
	Status       int32     `json:"status" yaml:"status" cbor:"status"`
	Truncated    bool      `json:"truncated,omitempty" yaml:"truncated,omitempty" cbor:"truncated,omitempty"`
	Parameters   []int32   `json:"parameters" yaml:"parameters" cbor:"parameters"`
	Calculations []int32   `json:"calculations" yaml:"calculations" cbor:"calculations"`
	Visibilities []int8    `json:"visibilities" yaml:"visibilities" cbor:"visibilities"`
}

func (s Snapshot) Document() Document {
	return Document{
		Seq:          s.Seq,
		At:           s.At,
		Status:       s.Status,
		Truncated:    s.Truncated,
		Parameters:   s.Parameters(),
		Calculations: s.Calculations(),
		Visibilities: s.Visibilities(),
	}
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

// ----------------------------------------------------------------
// FieldValue
// ----------------------------------------------------------------

// FieldValue is one slot read from a snapshot. Descriptor is nil for
// slots the registry does not describe.
type FieldValue struct {
	Section    registry.Section
	Index      int
	Raw        int32
	Descriptor *registry.Descriptor
}

var ErrFieldMissing = errors.New("luxtronik: field not in snapshot")

// Lookup resolves ref against reg and reads the slot from s.
func (s Snapshot) Lookup(reg *registry.Registry, ref string) (FieldValue, error) {
	r, err := reg.Resolve(ref)
	if err != nil {
		return FieldValue{}, err
	}
	raw, ok := s.Field(r.Section, r.Index)
	if !ok {
		return FieldValue{}, fmt.Errorf("%w: %s", ErrFieldMissing, r)
	}
	return FieldValue{Section: r.Section, Index: r.Index, Raw: raw, Descriptor: r.Descriptor}, nil
}

func (f FieldValue) Value() registry.Value {
	if f.Descriptor != nil {
		return f.Descriptor.Decode(f.Raw)
	}
	return registry.Value{
		Raw:    f.Raw,
		Kind:   registry.KindInt32,
		Number: float64(f.Raw),
		Text:   strconv.Itoa(int(f.Raw)),
	}
}

func (f FieldValue) Name() string {
	if f.Descriptor != nil && f.Descriptor.Name != "" {
		return f.Descriptor.Name
	}
	return f.Section.String() + "." + strconv.Itoa(f.Index)
}

func (f FieldValue) String() string {
	if f.Descriptor != nil {
		return f.Descriptor.Format(f.Raw)
	}
	return strconv.Itoa(int(f.Raw))
}
