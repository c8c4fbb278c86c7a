package datalog

import (
	"fmt"
	"strings"
)

// DefaultSortSize is the domain size used when a sort is declared without an
// explicit size.
const DefaultSortSize = 65535

// Sort is a named finite domain of non-negative integers [0, Size).
type Sort struct {
	Name string
	Size uint32
}

// NewSort declares a sort with an explicit size.
func NewSort(name string, size uint32) Sort {
	return Sort{Name: name, Size: size}
}

// String renders the sort declaration line: "<name> <size>".
func (s Sort) String() string {
	return fmt.Sprintf("%s %d", s.Name, s.Size)
}

// Relation is a named, arity-k typed schema: an ordered list of sort names.
type Relation struct {
	Name      string
	SortNames []string
}

// NewRelation declares a relation over the given argument sorts.
func NewRelation(name string, sortNames ...string) Relation {
	return Relation{Name: name, SortNames: sortNames}
}

// Arity returns the number of arguments of the relation.
func (r Relation) Arity() int { return len(r.SortNames) }

// SortName returns the sort name of argument position idx.
func (r Relation) SortName(idx int) string { return r.SortNames[idx] }

// Atom applies the relation to the given terms.
//
// The argument count is not checked here; Program.AddFormula verifies it
// against the schema when the atom is admitted.
func (r Relation) Atom(args ...Term) Formula {
	return Atom(r.Name, args...)
}

// String renders the engine-ingest schema line:
// "<name>(V0: s0, V1: s1, …) printtuples".
func (r Relation) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('(')
	for i, sort := range r.SortNames {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "V%d: %s", i, sort)
	}
	b.WriteString(") printtuples")
	return b.String()
}

// DebugString renders the plain schema form: "<name>(s0, s1, …)".
func (r Relation) DebugString() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('(')
	for i, sort := range r.SortNames {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sort)
	}
	b.WriteByte(')')
	return b.String()
}
