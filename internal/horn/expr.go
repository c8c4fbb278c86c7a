package horn

import (
	"fmt"
	"strings"
)

// Lit is a bit-vector literal.
type Lit struct {
	Value uint32
	Width uint
}

func (l Lit) String() string {
	return fmt.Sprintf("#b%0*b", l.Width, l.Value)
}

// Var is an answer variable of a fixed bit-vector width.
type Var struct {
	Name  string
	Width uint
}

func (v Var) String() string { return v.Name }

// Expr is the answer constraint language: equalities between answer
// variables and literals, conjunctions, and disjunctions. A query answer is
// DNF over equalities; consumers walk the shape with a type switch.
type Expr interface {
	isExpr()
	String() string
}

// Eq binds an answer variable to a literal.
type Eq struct {
	Var Var
	Lit Lit
}

func (Eq) isExpr() {}

func (e Eq) String() string {
	return fmt.Sprintf("(= %s %s)", e.Var, e.Lit)
}

// And is a conjunction of equalities (one answer tuple).
type And struct {
	Args []Expr
}

func (And) isExpr() {}

func (a And) String() string {
	parts := make([]string, len(a.Args))
	for i, e := range a.Args {
		parts[i] = e.String()
	}
	return "(and " + strings.Join(parts, " ") + ")"
}

// Or is a disjunction of tuples.
type Or struct {
	Args []Expr
}

func (Or) isExpr() {}

func (o Or) String() string {
	parts := make([]string, len(o.Args))
	for i, e := range o.Args {
		parts[i] = e.String()
	}
	return "(or " + strings.Join(parts, " ") + ")"
}
