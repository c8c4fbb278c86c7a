package datalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for program construction and formula admission.
// Callers match with errors.Is.
var (
	// ErrDuplicateSort is returned when a sort name is declared twice.
	ErrDuplicateSort = errors.New("duplicate sort")

	// ErrDuplicateRelation is returned when a relation name is declared twice.
	ErrDuplicateRelation = errors.New("duplicate relation")

	// ErrUnknownRelation is returned when a formula references an undeclared
	// relation.
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrUnknownSort is returned when a relation schema references a sort that
	// has not been declared by formula-admission time.
	ErrUnknownSort = errors.New("unknown sort")

	// ErrArityMismatch is returned when an atom's argument count differs from
	// its relation's arity.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrRangeUnrestricted is returned when a head variable of a Horn clause
	// does not appear in the body.
	ErrRangeUnrestricted = errors.New("head variable not range-restricted")

	// ErrConstantOutOfRange is returned when a constant argument does not fit
	// the sort of its position.
	ErrConstantOutOfRange = errors.New("constant out of sort range")

	// ErrNestedClause is returned when a body element of a Horn clause is
	// itself a clause rather than an atom.
	ErrNestedClause = errors.New("body of a horn clause must be atoms")
)

func duplicateSortError(name string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateSort, name)
}

func duplicateRelationError(name string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateRelation, name)
}

func unknownRelationError(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownRelation, name)
}

func unknownSortError(relation, sort string) error {
	return fmt.Errorf("%w: relation %s references %s", ErrUnknownSort, relation, sort)
}

func arityMismatchError(f Formula, want int) error {
	return fmt.Errorf("%w: %s has %d arguments, relation %s expects %d",
		ErrArityMismatch, f.String(), f.Arity(), f.RelationName(), want)
}

func rangeUnrestrictedError(f Formula, variable string) error {
	return fmt.Errorf("%w: %s in %s", ErrRangeUnrestricted, variable, f.String())
}

func constantOutOfRangeError(f Formula, idx int, sort Sort) error {
	return fmt.Errorf("%w: argument %d of %s does not fit sort %s (size %d)",
		ErrConstantOutOfRange, idx, f.String(), sort.Name, sort.Size)
}
