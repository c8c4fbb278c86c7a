package datalog

import "strings"

// Formula is either an atom (a fact when ground, a query pattern when not) or
// a Horn clause `head :- body1, …, bodyN` with a non-empty body of atoms.
type Formula struct {
	relation string
	args     []Term
	body     []Formula
}

// Atom builds an atomic formula R(args…).
func Atom(relation string, args ...Term) Formula {
	return Formula{relation: relation, args: args}
}

// Clause builds a Horn clause from an atomic head and a body of atoms.
//
// Body atoms that are themselves clauses are a construction error. Clause
// does not check for them; Program.AddFormula rejects such a formula with
// ErrNestedClause.
func Clause(head Formula, body ...Formula) Formula {
	return Formula{relation: head.relation, args: head.args, body: body}
}

// RelationName returns the relation symbol of the head atom.
func (f Formula) RelationName() string { return f.relation }

// Arity returns the argument count of the head atom.
func (f Formula) Arity() int { return len(f.args) }

// Argument returns the i-th head argument.
func (f Formula) Argument(i int) Term { return f.args[i] }

// Arguments returns the head argument list.
func (f Formula) Arguments() []Term { return f.args }

// Body returns the body atoms; empty for an atom.
func (f Formula) Body() []Formula { return f.body }

// IsAtom reports whether the formula has no body.
func (f Formula) IsAtom() bool { return len(f.body) == 0 }

// IsGround reports whether the formula is an atom with no variables.
func (f Formula) IsGround() bool {
	if !f.IsAtom() {
		return false
	}
	for _, arg := range f.args {
		if arg.IsVariable() {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two formulas.
func (f Formula) Equal(other Formula) bool {
	if f.relation != other.relation || len(f.args) != len(other.args) || len(f.body) != len(other.body) {
		return false
	}
	for i, arg := range f.args {
		if !arg.Equal(other.args[i]) {
			return false
		}
	}
	for i, sub := range f.body {
		if !sub.Equal(other.body[i]) {
			return false
		}
	}
	return true
}

// String renders the formula: atoms as `R(a, b, …)`, Horn clauses as
// `head :- b1, b2, …`.
func (f Formula) String() string {
	var b strings.Builder
	writeAtom(&b, f)
	if len(f.body) > 0 {
		b.WriteString(" :- ")
		for i, sub := range f.body {
			if i > 0 {
				b.WriteString(", ")
			}
			writeAtom(&b, sub)
		}
	}
	return b.String()
}

func writeAtom(b *strings.Builder, f Formula) {
	b.WriteString(f.relation)
	b.WriteByte('(')
	for i, arg := range f.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
}
