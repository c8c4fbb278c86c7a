package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Andersen(t *testing.T) {
	program, err := Load(Andersen)
	require.NoError(t, err)

	object, ok := program.Sort(ObjectSort)
	require.True(t, ok)
	assert.Equal(t, uint32(65535), object.Size)

	for _, name := range []string{
		"instrAlloca", "instrLoad", "instrStore", "instrGetelementptr",
		"instrBitCast", "instrIntToPtr", "instrPHI", "instrCall", "instrRet",
		"hasOperand", "hasCallArgument", "hasInstr", "instrUnknown",
		"intrinsicMalloc", "intrinsicMemcpy",
		"hasAllocatedMemory", "hasInitializer", "hasNoInitializer",
		"hasConstantField", "immutable", "nonaddressable", "addressable",
		"nonpointer", "null", "undef",
		"mem", "global", "constant", "function", "instr",
		"pointsTo", "alias",
	} {
		assert.True(t, program.HasRelation(name), "missing relation %s", name)
	}

	store, ok := program.Relation("instrStore")
	require.True(t, ok)
	assert.Equal(t, 3, store.Arity())

	// Every clause in the fragment parsed and was admitted.
	assert.NotEmpty(t, program.Formulas())
	for _, f := range program.Formulas() {
		assert.False(t, f.IsAtom(), "the base fragment contains rules only, got fact %s", f)
	}
}

func TestLoad_DeterministicAcrossLoads(t *testing.T) {
	a, err := Load(Andersen)
	require.NoError(t, err)
	b, err := Load(Andersen)
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
}

func TestLoad_UnknownAlgorithm(t *testing.T) {
	_, err := Load("steensgaard")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown algorithm")
}
