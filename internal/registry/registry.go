// internal/registry/registry.go
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrUnknownIndex = errors.New("registry: unknown index")
	ErrUnknownName  = errors.New("registry: unknown name")
	ErrOutOfRange   = errors.New("registry: value out of range")
	ErrNotWritable  = errors.New("registry: parameter not writable")
)

// Registry holds the descriptor tables for all three sections.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	byIndex [3]map[int]*Descriptor
	byName  [3]map[string]*Descriptor
}

// Ref is a resolved field reference.
// Descriptor is nil for indices the tables do not describe.
type Ref struct {
	Section    Section
	Index      int
	Descriptor *Descriptor
}

func (r Ref) String() string {
	if r.Descriptor != nil {
		return r.Section.String() + "." + r.Descriptor.Name
	}
	return r.Section.String() + "." + strconv.Itoa(r.Index)
}

// New builds a registry from explicit tables.
func New(parameters, calculations, visibilities []Descriptor) (*Registry, error) {
	r := &Registry{}
	tables := [3][]Descriptor{parameters, calculations, visibilities}

	for s, table := range tables {
		r.byIndex[s] = make(map[int]*Descriptor, len(table))
		r.byName[s] = make(map[string]*Descriptor, 2*len(table))

		for i := range table {
			d := table[i]
			d.Section = Section(s)

			if d.Index < 0 {
				return nil, fmt.Errorf("registry: %s: negative index %d", d.Section, d.Index)
			}
			if _, dup := r.byIndex[s][d.Index]; dup {
				return nil, fmt.Errorf("registry: %s: duplicate index %d", d.Section, d.Index)
			}
			if d.Writable && d.Section != Parameters {
				return nil, fmt.Errorf("registry: %s.%d: only parameters are writable", d.Section, d.Index)
			}

			dp := &d
			r.byIndex[s][d.Index] = dp
			if d.Name != "" {
				r.byName[s][strings.ToLower(d.Name)] = dp
			}
			if d.Key != "" {
				r.byName[s][strings.ToLower(d.Key)] = dp
			}
		}
	}

	return r, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the built-in Luxtronik tables.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := New(parameterTable, calculationTable, visibilityTable)
		if err != nil {
			panic(err)
		}
		defaultReg = r
	})
	return defaultReg
}

// Descriptor looks up (section, index).
func (r *Registry) Descriptor(s Section, index int) (*Descriptor, bool) {
	if s < Parameters || s > Visibilities {
		return nil, false
	}
	d, ok := r.byIndex[s][index]
	return d, ok
}

// Lookup finds a descriptor by symbolic name or key (case-insensitive).
func (r *Registry) Lookup(s Section, name string) (*Descriptor, bool) {
	if s < Parameters || s > Visibilities {
		return nil, false
	}
	d, ok := r.byName[s][strings.ToLower(name)]
	return d, ok
}

// IsWritable reports whether parameter index may be written.
func (r *Registry) IsWritable(index int) bool {
	d, ok := r.Descriptor(Parameters, index)
	return ok && d.Writable
}

// Validate checks a parameter write in safe mode.
func (r *Registry) Validate(index int, raw int32) error {
	d, ok := r.Descriptor(Parameters, index)
	if !ok {
		return fmt.Errorf("%w: parameters.%d", ErrUnknownIndex, index)
	}
	if !d.Writable {
		return fmt.Errorf("%w: %s", ErrNotWritable, d.Name)
	}
	if d.Ranged && (raw < d.Min || raw > d.Max) {
		return fmt.Errorf("%w: %s=%d not in [%d, %d]", ErrOutOfRange, d.Name, raw, d.Min, d.Max)
	}

	switch d.Kind {
	case KindBool:
		if raw != 0 && raw != 1 {
			return fmt.Errorf("%w: %s=%d is not a boolean", ErrOutOfRange, d.Name, raw)
		}
	case KindEnum:
		if raw < 0 || int(raw) >= len(d.Enum) || d.Enum[raw] == "" {
			return fmt.Errorf("%w: %s=%d is not a known option", ErrOutOfRange, d.Name, raw)
		}
	}

	return nil
}

// Resolve turns a user reference into a field address.
//
// Accepted forms: "2", "ID_Einst_BWS_akt", "P0002_DHW_TARGET_TEMPERATURE",
// "calculations.10", "calculations.ID_WEB_Temperatur_TVL".
// Unqualified numbers address parameters; unqualified names are searched
// in parameters, then calculations, then visibilities.
func (r *Registry) Resolve(ref string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Ref{}, fmt.Errorf("%w: empty reference", ErrUnknownName)
	}

	sections := []Section{Parameters, Calculations, Visibilities}
	name := ref
	qualified := false

	if head, rest, ok := strings.Cut(ref, "."); ok {
		if s, err := ParseSection(head); err == nil {
			sections = []Section{s}
			name = rest
			qualified = true
		}
	}

	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 {
			return Ref{}, fmt.Errorf("%w: %d", ErrUnknownIndex, n)
		}
		s := Parameters
		if qualified {
			s = sections[0]
		}
		d, _ := r.Descriptor(s, n)
		return Ref{Section: s, Index: n, Descriptor: d}, nil
	}

	for _, s := range sections {
		if d, ok := r.Lookup(s, name); ok {
			return Ref{Section: s, Index: d.Index, Descriptor: d}, nil
		}
	}

	return Ref{}, fmt.Errorf("%w: %q", ErrUnknownName, ref)
}

// Descriptors lists a section's descriptors in index order.
func (r *Registry) Descriptors(s Section) []*Descriptor {
	if s < Parameters || s > Visibilities {
		return nil
	}
	out := make([]*Descriptor, 0, len(r.byIndex[s]))
	for _, d := range r.byIndex[s] {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
