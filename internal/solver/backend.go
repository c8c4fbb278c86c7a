// Package solver compiles a datalog program into the bit-vector Horn-clause
// engine and decodes answer constraints back into ground facts.
//
// Compilation follows the fixedpoint discipline: each sort of size s becomes
// a bit-vector width ⌊log₂ s⌋+1; each relation a predicate over those
// widths; each formula a rule named rule-<relation>-<counter>, with every
// variable replaced by a fresh V<n> constant assigned at its first
// occurrence. Answers come back as DNF over variable=literal equalities and
// are parsed positionally into tuples.
package solver

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/roach88/mayalias/internal/datalog"
	"github.com/roach88/mayalias/internal/horn"
)

const variablePrefix = "V"

// ErrSolverUnknown is returned when the engine reports neither sat nor
// unsat for a query.
var ErrSolverUnknown = errors.New("solver returned unknown")

// ErrSolverProtocol is returned when a decoded answer is not in the expected
// DNF-of-equalities shape.
var ErrSolverProtocol = errors.New("unexpected answer shape")

// Backend runs datalog programs on the horn engine.
//
// Load resets all state; a backend is single-use per load but reusable
// across loads. Close releases the engine.
type Backend struct {
	engine     *horn.Engine
	program    *datalog.Program
	sortWidths map[string]uint
	varCounter int
}

var _ datalog.Engine = (*Backend)(nil)

// New creates a backend with a fresh engine.
func New() (*Backend, error) {
	engine, err := horn.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return &Backend{engine: engine}, nil
}

// Close releases the engine.
func (b *Backend) Close() error {
	return b.engine.Close()
}

// Load replaces the loaded program: engine tables, predicate declarations,
// and counters all start over.
func (b *Backend) Load(program *datalog.Program) error {
	if err := b.engine.Reset(); err != nil {
		return fmt.Errorf("reset engine: %w", err)
	}
	b.program = program
	b.varCounter = 0

	b.sortWidths = make(map[string]uint)
	for _, s := range program.Sorts() {
		b.sortWidths[s.Name] = bitWidth(s.Size)
	}

	for _, relation := range program.Relations() {
		widths := make([]uint, relation.Arity())
		for i, sortName := range relation.SortNames {
			width, ok := b.sortWidths[sortName]
			if !ok {
				return fmt.Errorf("relation %s: %w: %s", relation.Name, datalog.ErrUnknownSort, sortName)
			}
			widths[i] = width
		}
		if err := b.engine.RegisterRelation(relation.Name, widths); err != nil {
			return fmt.Errorf("register %s: %w", relation.Name, err)
		}
	}

	for counter, formula := range program.Formulas() {
		rule := b.compileFormula(formula)
		name := fmt.Sprintf("rule-%s-%d", formula.RelationName(), counter)
		if err := b.engine.AddRule(rule, name); err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
	}
	return nil
}

// bitWidth picks the width that fits every element of a sort of the given
// size: ⌊log₂ size⌋ + 1.
func bitWidth(size uint32) uint {
	if size == 0 {
		return 1
	}
	return uint(bits.Len32(size))
}

// compileFormula renames variables to fresh V<n> constants in first-
// occurrence order (head first, then body) and lowers terms.
func (b *Backend) compileFormula(formula datalog.Formula) horn.Rule {
	varTable := make(map[string]string)

	fresh := func(name string) string {
		if renamed, ok := varTable[name]; ok {
			return renamed
		}
		renamed := fmt.Sprintf("%s%d", variablePrefix, b.varCounter)
		b.varCounter++
		varTable[name] = renamed
		return renamed
	}

	lower := func(atom datalog.Formula) horn.Atom {
		args := make([]horn.Term, atom.Arity())
		for i, term := range atom.Arguments() {
			if term.IsVariable() {
				args[i] = horn.V(fresh(term.Variable()))
			} else {
				args[i] = horn.L(term.Value())
			}
		}
		return horn.Atom{Pred: atom.RelationName(), Args: args}
	}

	rule := horn.Rule{Head: lower(formula)}
	for _, sub := range formula.Body() {
		rule.Body = append(rule.Body, lower(sub))
	}
	return rule
}

// Query returns all ground tuples of the named relation in the least fixed
// point. An unsat answer is an empty relation; unknown fails with
// ErrSolverUnknown and the engine's stated reason.
func (b *Backend) Query(relationName string) ([]datalog.Formula, error) {
	if b.program == nil {
		return nil, errors.New("no program loaded")
	}
	relation, ok := b.program.Relation(relationName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", datalog.ErrUnknownRelation, relationName)
	}

	result, err := b.engine.Query(relationName)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", relationName, err)
	}

	switch result.Status {
	case horn.Unsat:
		return nil, nil
	case horn.Unknown:
		return nil, fmt.Errorf("%w: %s", ErrSolverUnknown, result.Reason)
	}

	return b.decodeAnswer(relation, result.Answer)
}

// decodeAnswer walks the DNF constraint. A top-level equality or
// conjunction is a single tuple; a disjunction is one tuple per disjunct;
// anything else is a protocol error.
func (b *Backend) decodeAnswer(relation datalog.Relation, answer horn.Expr) ([]datalog.Formula, error) {
	var facts []datalog.Formula

	appendTuple := func(clause horn.Expr) error {
		args, err := parseAssignment(clause)
		if err != nil {
			return err
		}
		if len(args) != relation.Arity() {
			return fmt.Errorf("%w: got %d equalities for %s/%d",
				ErrSolverProtocol, len(args), relation.Name, relation.Arity())
		}
		facts = append(facts, datalog.Atom(relation.Name, args...))
		return nil
	}

	switch constraint := answer.(type) {
	case horn.Eq, horn.And:
		if err := appendTuple(answer); err != nil {
			return nil, err
		}
	case horn.Or:
		for _, clause := range constraint.Args {
			if err := appendTuple(clause); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: top-level %T", ErrSolverProtocol, answer)
	}
	return facts, nil
}

// parseAssignment reads a conjunction of equalities (or a single equality)
// positionally into a tuple. Each equality must bind a variable to a
// bit-vector literal.
func parseAssignment(clause horn.Expr) ([]datalog.Term, error) {
	var eqs []horn.Expr
	switch assignment := clause.(type) {
	case horn.And:
		eqs = assignment.Args
	case horn.Eq:
		eqs = []horn.Expr{assignment}
	default:
		return nil, fmt.Errorf("%w: assignment %T", ErrSolverProtocol, clause)
	}

	args := make([]datalog.Term, 0, len(eqs))
	for _, raw := range eqs {
		eq, ok := raw.(horn.Eq)
		if !ok {
			return nil, fmt.Errorf("%w: conjunct %T is not an equality", ErrSolverProtocol, raw)
		}
		if eq.Var.Name == "" {
			return nil, fmt.Errorf("%w: equality lhs is not a variable", ErrSolverProtocol)
		}
		if eq.Lit.Width == 0 {
			return nil, fmt.Errorf("%w: equality rhs is not a bit-vector literal", ErrSolverProtocol)
		}
		args = append(args, datalog.Const(eq.Lit.Value))
	}
	return args, nil
}
