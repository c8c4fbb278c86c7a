// Package objmap maintains the bijection between IR values and dense object
// ids, including the affiliated ids that stand for abstract memory objects
// (stack slots, heap blocks, function code, global storage) no IR value
// names directly.
package objmap

import (
	"errors"
	"fmt"

	"github.com/roach88/mayalias/internal/ir"
)

// NumSpecial is the number of reserved special object ids at the bottom of
// the id space.
const NumSpecial = 1

// Any is the special object id meaning "some unknown object".
const Any uint32 = 0

// ErrUnknownValue is returned when a value was never registered.
var ErrUnknownValue = errors.New("unknown value")

// Map assigns dense object ids to IR values.
//
// The i-th registered value gets id NumSpecial+cursor at registration time.
// A value registered with k affiliated slots reserves the k ids following its
// own; those ids map back to no value and are never repurposed.
type Map struct {
	valueToID map[ir.Value]uint32

	// values[i] holds the value with id NumSpecial+i; nil for affiliated
	// slots.
	values []ir.Value
}

// New returns an empty map.
func New() *Map {
	return &Map{valueToID: make(map[ir.Value]uint32)}
}

// AddValue registers a value and reserves affiliated slots after it.
//
// Registration is idempotent: a second call returns the existing id and
// ignores the affiliated count.
func (m *Map) AddValue(value ir.Value, affiliated int) uint32 {
	if id, ok := m.valueToID[value]; ok {
		return id
	}

	id := uint32(len(m.values)) + NumSpecial
	m.values = append(m.values, value)
	m.valueToID[value] = id

	for i := 0; i < affiliated; i++ {
		m.values = append(m.values, nil)
	}
	return id
}

// ObjectIDOfValue returns the id of a registered value, or ErrUnknownValue.
func (m *Map) ObjectIDOfValue(value ir.Value) (uint32, error) {
	id, ok := m.valueToID[value]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownValue, ir.UniqueName(value))
	}
	return id, nil
}

// MustObjectIDOfValue is ObjectIDOfValue for values the caller has already
// registered; an unknown value is a programming error and panics.
func (m *Map) MustObjectIDOfValue(value ir.Value) uint32 {
	id, err := m.ObjectIDOfValue(value)
	if err != nil {
		panic(err)
	}
	return id
}

// ValueOfObjectID returns the value behind an id. The second result is false
// for special ids, affiliated ids, and ids outside the allocated range.
func (m *Map) ValueOfObjectID(id uint32) (ir.Value, bool) {
	if id < NumSpecial {
		return nil, false
	}
	index := id - NumSpecial
	if index >= uint32(len(m.values)) || m.values[index] == nil {
		return nil, false
	}
	return m.values[index], true
}

// HasValue reports whether the value has been registered.
func (m *Map) HasValue(value ir.Value) bool {
	_, ok := m.valueToID[value]
	return ok
}

// IsValidObjectID reports whether the id is a special id or falls inside the
// allocated range.
func (m *Map) IsValidObjectID(id uint32) bool {
	return id < NumSpecial+uint32(len(m.values))
}

// AffiliatedObjectID returns the id of the idx-th affiliate of base; idx is
// 1-based (the 0th affiliate would be the base itself).
func (m *Map) AffiliatedObjectID(base uint32, idx int) uint32 {
	if idx < 1 {
		panic("objmap: affiliated index must be >= 1")
	}
	return base + uint32(idx)
}

// MainValueOfAffiliatedObjectID walks an id backwards to the nearest slot
// that holds a value, recovering the allocation site of an affiliated memory
// object. For a value id it returns that value itself.
//
// The second result is the distance walked (0 for a plain value id); the
// third is false when the id is special or out of range.
func (m *Map) MainValueOfAffiliatedObjectID(id uint32) (ir.Value, int, bool) {
	if id < NumSpecial || !m.IsValidObjectID(id) {
		return nil, 0, false
	}
	index := id - NumSpecial
	for {
		if value := m.values[index]; value != nil {
			return value, int(id - NumSpecial - index), true
		}
		// index 0 always holds a value: affiliated slots follow their base.
		index--
	}
}

// Len returns the number of allocated ids, specials excluded.
func (m *Map) Len() int { return len(m.values) }
