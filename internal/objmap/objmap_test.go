package objmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mayalias/internal/ir"
)

// makeValues builds a few distinct IR values to register.
func makeValues(t *testing.T) (*ir.Function, *ir.Instr, *ir.Instr) {
	t.Helper()

	m := ir.NewModule()
	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	p := b.NewInstr(ir.OpAlloca, "p", ir.PointerTo(ir.Int(32)))
	q := b.NewInstr(ir.OpAlloca, "q", ir.PointerTo(ir.Int(32)))
	return f, p, q
}

func TestAddValue_DenseAndIdempotent(t *testing.T) {
	f, p, q := makeValues(t)
	m := New()

	fID := m.AddValue(f, 1)
	pID := m.AddValue(p, 1)
	qID := m.AddValue(q, 0)

	assert.Equal(t, uint32(NumSpecial), fID)
	assert.Equal(t, fID+2, pID, "one affiliated slot reserved after the function")
	assert.Equal(t, pID+2, qID)

	// Re-registration returns the existing id; the affiliated count of the
	// second call is ignored.
	assert.Equal(t, pID, m.AddValue(p, 5))
	assert.Equal(t, qID, m.AddValue(q, 0))
	assert.Equal(t, qID+1, m.AddValue(makeExtra(t), 0), "no slots were repurposed")
}

func makeExtra(t *testing.T) ir.Value {
	t.Helper()
	m := ir.NewModule()
	return m.NewGlobal("extra", ir.Int(8))
}

func TestObjectIDOfValue_Unknown(t *testing.T) {
	_, p, _ := makeValues(t)
	m := New()

	_, err := m.ObjectIDOfValue(p)
	assert.ErrorIs(t, err, ErrUnknownValue)
	assert.False(t, m.HasValue(p))

	assert.Panics(t, func() { m.MustObjectIDOfValue(p) })
}

func TestInjectivityAndReverseMap(t *testing.T) {
	f, p, q := makeValues(t)
	m := New()

	ids := map[uint32]bool{}
	for _, v := range []ir.Value{f, p, q} {
		id := m.AddValue(v, 1)
		assert.False(t, ids[id], "ids must be injective")
		ids[id] = true

		got, ok := m.ValueOfObjectID(id)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}

	// Affiliated slots resolve to no value.
	pID := m.MustObjectIDOfValue(p)
	_, ok := m.ValueOfObjectID(m.AffiliatedObjectID(pID, 1))
	assert.False(t, ok)

	// Specials resolve to no value either.
	_, ok = m.ValueOfObjectID(Any)
	assert.False(t, ok)
}

func TestIsValidObjectID(t *testing.T) {
	_, p, _ := makeValues(t)
	m := New()

	assert.True(t, m.IsValidObjectID(Any), "specials are always valid")

	id := m.AddValue(p, 1)
	assert.True(t, m.IsValidObjectID(id))
	assert.True(t, m.IsValidObjectID(id+1), "the affiliated slot is allocated")
	assert.False(t, m.IsValidObjectID(id+2))
}

func TestAffiliatedObjectID(t *testing.T) {
	_, p, _ := makeValues(t)
	m := New()
	base := m.AddValue(p, 2)

	assert.Equal(t, base+1, m.AffiliatedObjectID(base, 1))
	assert.Equal(t, base+2, m.AffiliatedObjectID(base, 2))
	assert.Panics(t, func() { m.AffiliatedObjectID(base, 0) })
}

func TestMainValueOfAffiliatedObjectID(t *testing.T) {
	f, p, _ := makeValues(t)
	m := New()
	m.AddValue(f, 1)
	pID := m.AddValue(p, 1)

	main, distance, ok := m.MainValueOfAffiliatedObjectID(pID + 1)
	require.True(t, ok)
	assert.Equal(t, ir.Value(p), main)
	assert.Equal(t, 1, distance)

	// A plain value id recovers itself at distance zero.
	main, distance, ok = m.MainValueOfAffiliatedObjectID(pID)
	require.True(t, ok)
	assert.Equal(t, ir.Value(p), main)
	assert.Zero(t, distance)

	_, _, ok = m.MainValueOfAffiliatedObjectID(Any)
	assert.False(t, ok)
	_, _, ok = m.MainValueOfAffiliatedObjectID(9999)
	assert.False(t, ok)
}
