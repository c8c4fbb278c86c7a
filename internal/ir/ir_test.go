package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	cases := map[string]string{
		"i32":    "i32",
		"i8*":    "i8*",
		"i32**":  "i32**",
		"float":  "float",
		"double": "double",
		"void":   "void",
	}
	for input, want := range cases {
		typ, err := ParseType(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, typ.String())
	}

	for _, bad := range []string{"", "x32", "i0", "[4 x i8]"} {
		_, err := ParseType(bad)
		assert.Error(t, err, bad)
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, Int(32).IsInteger())
	assert.True(t, Float64().IsFloatingPoint())
	assert.True(t, PointerTo(Int(8)).IsPointer())
	assert.True(t, Void().IsVoid())
	assert.False(t, PointerTo(Int(8)).IsInteger())
}

func TestFunctionShape(t *testing.T) {
	m := NewModule()
	f := m.NewFunction("f", Void(), NewParam("x", PointerTo(Int(32))))

	assert.True(t, f.IsDeclaration(), "no body yet")
	f2 := m.NewFunction("malloc", PointerTo(Int(8)), NewParam("", Int(64)))
	assert.True(t, f2.IsDeclaration())
	assert.False(t, f2.IsIntrinsic())

	f3 := m.NewFunction("llvm.memcpy.p0i8.p0i8.i64", Void())
	assert.True(t, f3.IsIntrinsic())

	assert.Equal(t, f, m.Func("f"))
	assert.Nil(t, m.Func("g"))
	assert.Equal(t, "void (i32*)*", f.Type().String())

	b := f.NewBlock("entry")
	assert.False(t, f.IsDeclaration())
	p := b.NewInstr(OpAlloca, "p", PointerTo(Int(32)))
	assert.Equal(t, f, p.Parent().Parent())
}

func TestCallOperandLayout(t *testing.T) {
	m := NewModule()
	g := m.NewFunction("g", Void(), NewParam("x", PointerTo(Int(32))))
	f := m.NewFunction("f", Void())
	b := f.NewBlock("entry")

	a := b.NewInstr(OpAlloca, "a", PointerTo(Int(32)))
	call := b.NewCall("", Void(), g, a)

	assert.Equal(t, g, call.CalledFunction())
	assert.Equal(t, 1, call.NumArgOperands())
	assert.Equal(t, Value(a), call.ArgOperand(0))
	// The callee rides as the final operand.
	assert.Equal(t, 2, call.NumOperands())
	assert.Equal(t, Value(g), call.Operand(1))
}

func TestUniqueName(t *testing.T) {
	m := NewModule()
	g := m.NewGlobal("c", Int(32))
	anon := m.NewGlobal("", Int(8))
	f := m.NewFunction("f", Void(), NewParam("x", Int(32)), NewParam("", Int(32)))
	b := f.NewBlock("entry")
	named := b.NewInstr(OpAlloca, "p", PointerTo(Int(32)))
	b.NewInstr(OpStore, "", Void())
	unnamed := b.NewInstr(OpLoad, "", Int(32), named)

	assert.Equal(t, "@c", UniqueName(g))
	assert.Equal(t, "@0", UniqueName(anon))
	assert.Equal(t, "@f", UniqueName(f))
	assert.Equal(t, "%x", UniqueName(f.Params()[0]))
	assert.Equal(t, "@f::%0", UniqueName(f.Params()[1]))
	assert.Equal(t, "%p", UniqueName(named))
	// void store takes no slot; the load is the first unnamed result after
	// the unnamed parameter.
	assert.Equal(t, "@f::%1", UniqueName(unnamed))

	assert.Equal(t, "null", UniqueName(NewNull(PointerTo(Int(8)))))
	assert.Equal(t, "undef", UniqueName(NewUndef(PointerTo(Int(8)))))
	assert.Equal(t, "<i32 7>", UniqueName(NewConstInt(Int(32), 7)))
}

func TestConstantOperands(t *testing.T) {
	g := NewModule().NewGlobal("g", Int(32))
	agg := NewConstAggregate(StructOf(g.Type(), Int(32)), g, NewConstInt(Int(32), 1))
	expr := NewConstExpr(OpGetElementPtr, PointerTo(Int(32)), g)

	assert.Len(t, ConstantOperands(agg), 2)
	assert.Len(t, ConstantOperands(expr), 1)
	assert.Nil(t, ConstantOperands(NewConstInt(Int(32), 0)))
}

func TestOpcodeClasses(t *testing.T) {
	assert.True(t, OpAdd.IsBinaryOp())
	assert.True(t, OpXor.IsBinaryOp())
	assert.False(t, OpLoad.IsBinaryOp())
	assert.True(t, OpFNeg.IsUnaryOp())
	assert.True(t, OpZExt.IsNumericCast())
	assert.False(t, OpIntToPtr.IsNumericCast())

	op, ok := OpcodeByName("getelementptr")
	require.True(t, ok)
	assert.Equal(t, OpGetElementPtr, op)
	_, ok = OpcodeByName("frobnicate")
	assert.False(t, ok)
}
