package datalog

import "sort"

// Program is a triple of sort declarations, relation declarations, and an
// ordered formula sequence.
//
// Formula order is immaterial for semantics but preserved for printing and
// stable replay. Sort and relation declarations are keyed by name; rendering
// iterates them in lexicographic name order so two equal programs print
// identically.
type Program struct {
	sorts     map[string]Sort
	relations map[string]Relation
	formulas  []Formula
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{
		sorts:     make(map[string]Sort),
		relations: make(map[string]Relation),
	}
}

// AddSort declares a sort. Fails with ErrDuplicateSort if the name exists.
func (p *Program) AddSort(s Sort) error {
	if _, ok := p.sorts[s.Name]; ok {
		return duplicateSortError(s.Name)
	}
	p.sorts[s.Name] = s
	return nil
}

// AddRelation declares a relation. Fails with ErrDuplicateRelation if the
// name exists. The referenced sorts need not be declared yet; they must be by
// the time a formula over the relation is admitted.
func (p *Program) AddRelation(r Relation) error {
	if _, ok := p.relations[r.Name]; ok {
		return duplicateRelationError(r.Name)
	}
	p.relations[r.Name] = r
	return nil
}

// AddFormula admits a formula after checking it against the declared schemas:
//
//   - every atom's relation must be declared (ErrUnknownRelation)
//   - every atom's argument count must match its relation (ErrArityMismatch)
//   - every constant must fit the sort of its position (ErrConstantOutOfRange)
//   - body elements must be atoms, not nested clauses (ErrNestedClause)
//   - every head variable of a clause must occur in the body
//     (ErrRangeUnrestricted)
func (p *Program) AddFormula(f Formula) error {
	if err := p.checkAtom(f); err != nil {
		return err
	}

	bodyVars := make(map[string]bool)
	for _, sub := range f.Body() {
		if !sub.IsAtom() {
			return ErrNestedClause
		}
		if err := p.checkAtom(sub); err != nil {
			return err
		}
		for _, arg := range sub.Arguments() {
			if arg.IsVariable() {
				bodyVars[arg.Variable()] = true
			}
		}
	}

	if !f.IsAtom() {
		for _, arg := range f.Arguments() {
			if arg.IsVariable() && !bodyVars[arg.Variable()] {
				return rangeUnrestrictedError(f, arg.Variable())
			}
		}
	}

	p.formulas = append(p.formulas, f)
	return nil
}

// checkAtom verifies relation existence, arity, and constant ranges for a
// single atom (the head or one body element).
func (p *Program) checkAtom(f Formula) error {
	relation, ok := p.relations[f.RelationName()]
	if !ok {
		return unknownRelationError(f.RelationName())
	}
	if f.Arity() != relation.Arity() {
		return arityMismatchError(f, relation.Arity())
	}
	for i, arg := range f.Arguments() {
		if arg.IsVariable() {
			continue
		}
		sortDecl, ok := p.sorts[relation.SortName(i)]
		if !ok {
			return unknownSortError(relation.Name, relation.SortName(i))
		}
		if arg.Value() >= sortDecl.Size {
			return constantOutOfRangeError(f, i, sortDecl)
		}
	}
	return nil
}

// HasSort reports whether a sort with the given name is declared.
func (p *Program) HasSort(name string) bool {
	_, ok := p.sorts[name]
	return ok
}

// HasRelation reports whether a relation with the given name is declared.
func (p *Program) HasRelation(name string) bool {
	_, ok := p.relations[name]
	return ok
}

// Sort returns the declaration of the named sort.
func (p *Program) Sort(name string) (Sort, bool) {
	s, ok := p.sorts[name]
	return s, ok
}

// Relation returns the declaration of the named relation.
func (p *Program) Relation(name string) (Relation, bool) {
	r, ok := p.relations[name]
	return r, ok
}

// Sorts returns all sort declarations in lexicographic name order.
func (p *Program) Sorts() []Sort {
	names := make([]string, 0, len(p.sorts))
	for name := range p.sorts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Sort, len(names))
	for i, name := range names {
		out[i] = p.sorts[name]
	}
	return out
}

// Relations returns all relation declarations in lexicographic name order.
func (p *Program) Relations() []Relation {
	names := make([]string, 0, len(p.relations))
	for name := range p.relations {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Relation, len(names))
	for i, name := range names {
		out[i] = p.relations[name]
	}
	return out
}

// Formulas returns the admitted formulas in insertion order.
func (p *Program) Formulas() []Formula {
	return p.formulas
}

// Clone returns a deep-enough copy: declarations and the formula list are
// copied, so additions to the clone never leak into the original. Terms and
// formulas are immutable values and are shared.
func (p *Program) Clone() *Program {
	clone := NewProgram()
	for name, s := range p.sorts {
		clone.sorts[name] = s
	}
	for name, r := range p.relations {
		clone.relations[name] = r
	}
	clone.formulas = make([]Formula, len(p.formulas))
	copy(clone.formulas, p.formulas)
	return clone
}
