// Package dsl is the authoring façade for datalog programs.
//
// It offers two surfaces with the same semantics: a builder
// (Sort/Relation/Var/Rule/Fact, with mixed-kind atom arguments) for programs
// assembled in Go, and a clause-text parser (AddClause) for rule fragments
// carried as data. Names starting with an underscore are reserved for
// generated wildcard variables and are rejected on both surfaces.
package dsl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/mayalias/internal/datalog"
)

// ErrReservedName is returned when a sort, relation, or variable name starts
// with an underscore.
var ErrReservedName = errors.New("names starting with underscore are reserved")

// Builder accumulates declarations and formulas into a datalog.Program.
//
// Errors are sticky: the first failure is retained and every later call is a
// no-op, so construction code can stay free of per-call error plumbing and
// check Err (or Program) once at the end.
type Builder struct {
	program    *datalog.Program
	varCounter int
	err        error
}

// NewBuilder returns a builder over an empty program.
func NewBuilder() *Builder {
	return &Builder{program: datalog.NewProgram()}
}

// SortRef names a declared sort.
type SortRef struct {
	name string
}

// RelationRef names a declared relation and builds atoms over it.
type RelationRef struct {
	builder *Builder
	name    string
}

// Sort declares a sort and returns a reference usable in Relation calls.
func (b *Builder) Sort(name string, size uint32) SortRef {
	if b.err != nil {
		return SortRef{name: name}
	}
	if err := checkName(name); err != nil {
		b.err = err
		return SortRef{name: name}
	}
	b.err = b.program.AddSort(datalog.NewSort(name, size))
	return SortRef{name: name}
}

// Relation declares a relation over the given sorts and returns a callable
// schema reference.
func (b *Builder) Relation(name string, sorts ...SortRef) RelationRef {
	ref := RelationRef{builder: b, name: name}
	if b.err != nil {
		return ref
	}
	if err := checkName(name); err != nil {
		b.err = err
		return ref
	}
	sortNames := make([]string, len(sorts))
	for i, s := range sorts {
		sortNames[i] = s.name
	}
	b.err = b.program.AddRelation(datalog.NewRelation(name, sortNames...))
	return ref
}

// Var binds a variable name.
func (b *Builder) Var(name string) datalog.Term {
	if b.err == nil {
		if err := checkName(name); err != nil {
			b.err = err
		}
	}
	return datalog.Var(name)
}

// Wildcard yields a fresh, never-reused variable for "don't care" positions.
// Freshness is local to this builder.
func (b *Builder) Wildcard() datalog.Term {
	name := "_" + strconv.Itoa(b.varCounter)
	b.varCounter++
	return datalog.Var(name)
}

// Of builds an atom of the relation. Argument kinds are inferred: a string
// becomes a variable, an unsigned integer a constant, and a datalog.Term
// passes through unchanged.
func (r RelationRef) Of(args ...any) datalog.Formula {
	terms := make([]datalog.Term, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case datalog.Term:
			terms[i] = v
		case string:
			if r.builder != nil && r.builder.err == nil {
				if err := checkName(v); err != nil {
					r.builder.err = err
				}
			}
			terms[i] = datalog.Var(v)
		case int:
			terms[i] = datalog.Const(uint32(v))
		case uint32:
			terms[i] = datalog.Const(v)
		default:
			if r.builder != nil && r.builder.err == nil {
				r.builder.err = fmt.Errorf("atom %s: unsupported argument %v (%T)", r.name, arg, arg)
			}
		}
	}
	return datalog.Atom(r.name, terms...)
}

// Rule adds the Horn clause head :- body1, …, bodyN.
func (b *Builder) Rule(head datalog.Formula, body ...datalog.Formula) {
	if b.err != nil {
		return
	}
	b.err = b.program.AddFormula(datalog.Clause(head, body...))
}

// Fact adds a ground atom.
func (b *Builder) Fact(atom datalog.Formula) {
	if b.err != nil {
		return
	}
	b.err = b.program.AddFormula(atom)
}

// Err returns the first construction error, if any.
func (b *Builder) Err() error { return b.err }

// Program returns the built program, or the first construction error.
func (b *Builder) Program() (*datalog.Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.program, nil
}

func checkName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	if name[0] == '_' {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	return nil
}
