package analysis

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mayalias/internal/ir"
	"github.com/roach88/mayalias/internal/objmap"
)

func run(t *testing.T, m *ir.Module) *Analysis {
	t.Helper()

	a, err := New(m, DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func mustID(t *testing.T, a *Analysis, v ir.Value) uint32 {
	t.Helper()

	id, err := a.Objects().ObjectIDOfValue(v)
	require.NoError(t, err)
	return id
}

// storeLoadModule builds
//
//	f() { %p = alloca i32*; %q = alloca i32; store %q, %p; %r = load %p; ret }
func storeLoadModule() (*ir.Module, *ir.Instr, *ir.Instr, *ir.Instr) {
	m := ir.NewModule()
	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	p := b.NewInstr(ir.OpAlloca, "p", ir.PointerTo(ir.PointerTo(ir.Int(32))))
	q := b.NewInstr(ir.OpAlloca, "q", ir.PointerTo(ir.Int(32)))
	b.NewInstr(ir.OpStore, "", ir.Void(), q, p)
	r := b.NewInstr(ir.OpLoad, "r", ir.PointerTo(ir.Int(32)), p)
	b.NewInstr(ir.OpRet, "", ir.Void())
	return m, p, q, r
}

func TestStackSelfAlias(t *testing.T) {
	m := ir.NewModule()
	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	p := b.NewInstr(ir.OpAlloca, "p", ir.PointerTo(ir.Int(32)))
	b.NewInstr(ir.OpRet, "", ir.Void())

	a := run(t, m)

	result, err := a.Alias(p, p)
	require.NoError(t, err)
	assert.Equal(t, MustAlias, result)

	pID := mustID(t, a, p)
	assert.Contains(t, a.PointsToPairs(), [2]uint32{pID, pID + 1})
}

func TestStoreLoad(t *testing.T) {
	m, p, q, r := storeLoadModule()
	a := run(t, m)

	pID, qID, rID := mustID(t, a, p), mustID(t, a, q), mustID(t, a, r)
	pairs := a.PointsToPairs()
	assert.Contains(t, pairs, [2]uint32{pID, pID + 1})
	assert.Contains(t, pairs, [2]uint32{qID, qID + 1})
	assert.Contains(t, pairs, [2]uint32{pID + 1, qID + 1}, "the stored pointer flows into p's slot")
	assert.Contains(t, pairs, [2]uint32{rID, qID + 1}, "the load reads q's slot out again")

	result, err := a.Alias(q, r)
	require.NoError(t, err)
	assert.Equal(t, MayAlias, result)

	// p holds a different slot than q: no alias.
	result, err = a.Alias(p, q)
	require.NoError(t, err)
	assert.Equal(t, NoAlias, result)
}

func TestMallocIntrinsic(t *testing.T) {
	m := ir.NewModule()
	malloc := m.NewFunction("malloc", ir.PointerTo(ir.Int(8)), ir.NewParam("", ir.Int(64)))
	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	h := b.NewCall("h", ir.PointerTo(ir.Int(8)), malloc, ir.NewConstInt(ir.Int(64), 16))
	b.NewInstr(ir.OpRet, "", ir.Void())

	a := run(t, m)

	hID := mustID(t, a, h)
	assert.Contains(t, a.PointsToPairs(), [2]uint32{hID, hID + 1})

	set, err := a.PointsToSet(h)
	require.NoError(t, err)
	assert.Equal(t, []uint32{hID + 1}, set)
}

func TestDirectCallArgPassing(t *testing.T) {
	m := ir.NewModule()
	g := m.NewFunction("g", ir.Void(), ir.NewParam("x", ir.PointerTo(ir.Int(32))))
	g.NewBlock("entry").NewInstr(ir.OpRet, "", ir.Void())

	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	arg := b.NewInstr(ir.OpAlloca, "a", ir.PointerTo(ir.Int(32)))
	b.NewCall("", ir.Void(), g, arg)
	b.NewInstr(ir.OpRet, "", ir.Void())

	a := run(t, m)

	x := g.Params()[0]
	argID := mustID(t, a, arg)
	assert.Contains(t, a.PointsToPairs(), [2]uint32{mustID(t, a, x), argID + 1})

	result, err := a.Alias(x, arg)
	require.NoError(t, err)
	assert.Equal(t, MayAlias, result)
}

func TestCallReturnFlowsBack(t *testing.T) {
	m := ir.NewModule()
	g := m.NewFunction("g", ir.PointerTo(ir.Int(32)))
	gb := g.NewBlock("entry")
	p := gb.NewInstr(ir.OpAlloca, "p", ir.PointerTo(ir.Int(32)))
	gb.NewInstr(ir.OpRet, "", ir.Void(), p)

	f := m.NewFunction("f", ir.Void())
	fb := f.NewBlock("entry")
	c := fb.NewCall("c", ir.PointerTo(ir.Int(32)), g)
	fb.NewInstr(ir.OpRet, "", ir.Void())

	a := run(t, m)

	assert.Contains(t, a.PointsToPairs(), [2]uint32{mustID(t, a, c), mustID(t, a, p) + 1})

	result, err := a.Alias(c, p)
	require.NoError(t, err)
	assert.Equal(t, MayAlias, result)
}

func TestMemcpyCopiesContents(t *testing.T) {
	m := ir.NewModule()
	memcpy := m.NewFunction("llvm.memcpy.p0i8.p0i8.i64", ir.Void(),
		ir.NewParam("", ir.PointerTo(ir.Int(8))),
		ir.NewParam("", ir.PointerTo(ir.Int(8))),
		ir.NewParam("", ir.Int(64)),
	)

	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	obj := b.NewInstr(ir.OpAlloca, "obj", ir.PointerTo(ir.Int(8)))
	src := b.NewInstr(ir.OpAlloca, "src", ir.PointerTo(ir.PointerTo(ir.Int(8))))
	dst := b.NewInstr(ir.OpAlloca, "dst", ir.PointerTo(ir.PointerTo(ir.Int(8))))
	b.NewInstr(ir.OpStore, "", ir.Void(), obj, src)
	b.NewCall("", ir.Void(), memcpy, dst, src, ir.NewConstInt(ir.Int(64), 8))
	r := b.NewInstr(ir.OpLoad, "r", ir.PointerTo(ir.Int(8)), dst)
	b.NewInstr(ir.OpRet, "", ir.Void())

	a := run(t, m)

	// dst's slot received src's contents, so the load sees obj's slot.
	result, err := a.Alias(r, obj)
	require.NoError(t, err)
	assert.Equal(t, MayAlias, result)
}

func TestPointsToConstantMemory(t *testing.T) {
	m := ir.NewModule()
	c := m.NewGlobal("c", ir.Int(32)).SetConstant(true)
	c.SetInit(ir.NewConstInt(ir.Int(32), 7))
	v := m.NewGlobal("v", ir.Int(32))

	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	p := b.NewInstr(ir.OpAlloca, "p", ir.PointerTo(ir.Int(32)))
	phi := b.NewInstr(ir.OpPHI, "q", ir.PointerTo(ir.Int(32)), p)
	b.NewInstr(ir.OpRet, "", ir.Void())

	a := run(t, m)

	// Globals answer directly from their qualifier.
	ok, err := a.PointsToConstantMemory(c, false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.PointsToConstantMemory(v, false)
	require.NoError(t, err)
	assert.False(t, ok)

	// Functions are always constant memory.
	ok, err = a.PointsToConstantMemory(f, false)
	require.NoError(t, err)
	assert.True(t, ok)

	// A pointer to a stack slot is constant only when orLocal holds.
	ok, err = a.PointsToConstantMemory(phi, false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.PointsToConstantMemory(phi, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnknownExternalCall(t *testing.T) {
	m := ir.NewModule()
	ext := m.NewFunction("extern_unknown", ir.PointerTo(ir.Int(8)))
	f := m.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	u := b.NewCall("u", ir.PointerTo(ir.Int(8)), ext)
	p := b.NewInstr(ir.OpAlloca, "p", ir.PointerTo(ir.Int(8)))
	b.NewInstr(ir.OpRet, "", ir.Void())

	a := run(t, m)

	require.Len(t, a.Unsupported(), 1)

	// The unknown result points to ANY …
	set, err := a.PointsToSet(u)
	require.NoError(t, err)
	assert.Contains(t, set, objmap.Any)

	// … and therefore may alias any pointer; queries stay well-defined.
	result, err := a.Alias(u, p)
	require.NoError(t, err)
	assert.Equal(t, MayAlias, result)

	ok, err := a.PointsToConstantMemory(u, true)
	require.NoError(t, err)
	assert.False(t, ok, "ANY is never known-constant")
}

func TestMustAliasReflexivity(t *testing.T) {
	m, p, q, r := storeLoadModule()
	a := run(t, m)

	for _, v := range []ir.Value{p, q, r} {
		result, err := a.Alias(v, v)
		require.NoError(t, err)
		assert.Equal(t, MustAlias, result, "alias(%s, %s)", ir.UniqueName(v), ir.UniqueName(v))
	}
}

func TestAliasSymmetry(t *testing.T) {
	m, _, q, r := storeLoadModule()
	a := run(t, m)

	forward, err := a.Alias(q, r)
	require.NoError(t, err)
	backward, err := a.Alias(r, q)
	require.NoError(t, err)
	assert.Equal(t, forward, backward)
}

func TestUnknownValueFails(t *testing.T) {
	m, _, _, _ := storeLoadModule()
	a := run(t, m)

	other := ir.NewModule()
	stranger := other.NewGlobal("stranger", ir.Int(32))

	_, err := a.Alias(stranger, stranger)
	assert.ErrorIs(t, err, objmap.ErrUnknownValue)

	_, err = a.PointsToSet(stranger)
	assert.ErrorIs(t, err, objmap.ErrUnknownValue)
}

func TestDeterminism(t *testing.T) {
	m1, _, _, _ := storeLoadModule()
	m2, _, _, _ := storeLoadModule()

	a1 := run(t, m1)
	a2 := run(t, m2)

	assert.Equal(t, a1.PointsToPairs(), a2.PointsToPairs())

	var b1, b2 bytes.Buffer
	require.NoError(t, a1.PrintPointsTo(&b1))
	require.NoError(t, a2.PrintPointsTo(&b2))
	assert.Equal(t, b1.String(), b2.String())
}

func TestPrintPointsTo_Golden(t *testing.T) {
	m, _, _, _ := storeLoadModule()
	a := run(t, m)

	var buf bytes.Buffer
	require.NoError(t, a.PrintPointsTo(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "store_load_points_to", buf.Bytes())
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.PrintProgram)
	assert.True(t, opts.PrintPointsTo)
	assert.Equal(t, "andersen", opts.Algorithm)
}
