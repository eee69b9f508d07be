// internal/luxtronik/store.go
package luxtronik

// Store is one dense section, index -> raw value. Unknown indices are
// kept so a newer firmware never loses data.
type Store[T int32 | int8] struct {
	values []T
}

// Parse replaces the contents. The previous slice is never mutated, so
// snapshots may keep referencing it.
func (s *Store[T]) Parse(v []T) {
	s.values = append([]T(nil), v...)
}

func (s *Store[T]) Get(index int) (T, bool) {
	if index < 0 || index >= len(s.values) {
		return 0, false
	}
	return s.values[index], true
}

func (s *Store[T]) Len() int { return len(s.values) }

func (s *Store[T]) view() []T { return s.values }
