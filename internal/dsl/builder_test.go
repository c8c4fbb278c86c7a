package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mayalias/internal/datalog"
)

func TestBuilder_TransitiveClosure(t *testing.T) {
	b := NewBuilder()

	v := b.Sort("V", 65535)
	vertex := b.Relation("vertex", v)
	edge := b.Relation("edge", v, v)
	path := b.Relation("path", v, v)

	x, y, z := b.Var("x"), b.Var("y"), b.Var("z")
	b.Rule(path.Of(x, x), vertex.Of(x))
	b.Rule(path.Of(x, y), edge.Of(x, y))
	b.Rule(path.Of(x, z), path.Of(x, y), path.Of(y, z))

	b.Fact(vertex.Of(1))
	b.Fact(vertex.Of(2))
	b.Fact(vertex.Of(3))
	b.Fact(edge.Of(1, 2))
	b.Fact(edge.Of(2, 3))

	program, err := b.Program()
	require.NoError(t, err)
	assert.Len(t, program.Formulas(), 8)
	assert.True(t, program.HasRelation("path"))
}

func TestBuilder_MixedArgumentKinds(t *testing.T) {
	b := NewBuilder()
	v := b.Sort("V", 16)
	edge := b.Relation("edge", v, v)

	// string ⇒ variable, int ⇒ constant, Term passes through.
	atom := edge.Of("x", 3)
	require.NoError(t, b.Err())
	assert.True(t, atom.Argument(0).IsVariable())
	assert.False(t, atom.Argument(1).IsVariable())
	assert.Equal(t, uint32(3), atom.Argument(1).Value())

	atom = edge.Of(datalog.Var("y"), datalog.Const(2))
	require.NoError(t, b.Err())
	assert.Equal(t, "edge(y, 2)", atom.String())
}

func TestBuilder_ReservedNames(t *testing.T) {
	b := NewBuilder()
	b.Sort("_V", 16)
	assert.ErrorIs(t, b.Err(), ErrReservedName)

	b = NewBuilder()
	v := b.Sort("V", 16)
	b.Relation("_edge", v, v)
	assert.ErrorIs(t, b.Err(), ErrReservedName)

	b = NewBuilder()
	b.Var("_x")
	assert.ErrorIs(t, b.Err(), ErrReservedName)
}

func TestBuilder_WildcardFreshness(t *testing.T) {
	b := NewBuilder()

	w1 := b.Wildcard()
	w2 := b.Wildcard()
	assert.NotEqual(t, w1.Variable(), w2.Variable(), "wildcards must never be reused")
	assert.Equal(t, byte('_'), w1.Variable()[0])
}

func TestBuilder_StickyError(t *testing.T) {
	b := NewBuilder()
	v := b.Sort("V", 16)
	b.Sort("V", 16) // duplicate

	// Everything after the failure is a no-op; the first error survives.
	edge := b.Relation("edge", v, v)
	b.Fact(edge.Of(1, 2))

	_, err := b.Program()
	assert.ErrorIs(t, err, datalog.ErrDuplicateSort)
}

func TestBuilder_RangeRestrictionSurfaces(t *testing.T) {
	b := NewBuilder()
	v := b.Sort("V", 16)
	vertex := b.Relation("vertex", v)
	path := b.Relation("path", v, v)

	b.Rule(path.Of("x", "y"), vertex.Of("x"))
	_, err := b.Program()
	assert.ErrorIs(t, err, datalog.ErrRangeUnrestricted)
}

func TestAddClause_Facts(t *testing.T) {
	b := NewBuilder()
	v := b.Sort("V", 65535)
	b.Relation("edge", v, v)

	require.NoError(t, b.AddClause("edge(1, 2)."))
	require.NoError(t, b.AddClause("edge(2, 3)"))

	program, err := b.Program()
	require.NoError(t, err)
	require.Len(t, program.Formulas(), 2)
	assert.Equal(t, "edge(1, 2)", program.Formulas()[0].String())
}

func TestAddClause_HornClause(t *testing.T) {
	b := NewBuilder()
	v := b.Sort("V", 65535)
	b.Relation("edge", v, v)
	b.Relation("path", v, v)

	require.NoError(t, b.AddClause("path(x, z) :- path(x, y), edge(y, z)."))

	program, err := b.Program()
	require.NoError(t, err)
	require.Len(t, program.Formulas(), 1)
	assert.Equal(t, "path(x, z) :- path(x, y), edge(y, z)", program.Formulas()[0].String())
}

func TestAddClause_WildcardIsFreshPerOccurrence(t *testing.T) {
	b := NewBuilder()
	v := b.Sort("V", 65535)
	b.Relation("edge", v, v)
	b.Relation("node", v)

	require.NoError(t, b.AddClause("node(x) :- edge(x, _), edge(_, x)."))

	program, err := b.Program()
	require.NoError(t, err)
	clause := program.Formulas()[0]
	first := clause.Body()[0].Argument(1).Variable()
	second := clause.Body()[1].Argument(0).Variable()
	assert.NotEqual(t, first, second)
}

func TestAddClause_Errors(t *testing.T) {
	b := NewBuilder()
	v := b.Sort("V", 65535)
	b.Relation("edge", v, v)

	assert.Error(t, b.AddClause("edge(1, 2) extra"))

	b = NewBuilder()
	v = b.Sort("V", 65535)
	b.Relation("edge", v, v)
	assert.ErrorIs(t, b.AddClause("edge(_x, 2)."), ErrReservedName)

	b = NewBuilder()
	b.Sort("V", 65535)
	assert.ErrorIs(t, b.AddClause("edge(1, 2)."), datalog.ErrUnknownRelation)
}
