package objmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/mayalias/internal/ir"
)

func TestPrintObjectID(t *testing.T) {
	mod := ir.NewModule()
	g := mod.NewGlobal("g", ir.Int(32))
	f := mod.NewFunction("f", ir.Void())
	b := f.NewBlock("entry")
	p := b.NewInstr(ir.OpAlloca, "p", ir.PointerTo(ir.Int(32)))

	m := New()
	gID := m.AddValue(g, 1)
	m.AddValue(f, 1)
	pID := m.AddValue(p, 1)

	assert.Equal(t, "any", m.PrintObjectID(Any))
	assert.Equal(t, "@g", m.PrintObjectID(gID))
	assert.Equal(t, "@g::aff(1)", m.PrintObjectID(gID+1))
	assert.Equal(t, "%p", m.PrintObjectID(pID))
	assert.Equal(t, "%p::aff(1)", m.PrintObjectID(pID+1))
	assert.Equal(t, "invalid(9999)", m.PrintObjectID(9999))
}
