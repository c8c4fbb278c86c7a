// Package rules carries the analysis rule fragments as data.
//
// Each algorithm is a CUE value validated against the #Fragment schema and
// lowered into a datalog.Program at load time. Facts are appended to a clone
// of that program by the fact generator; the fragment itself stays pristine
// for the lifetime of the process.
package rules

import (
	_ "embed"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/mayalias/internal/datalog"
	"github.com/roach88/mayalias/internal/dsl"
)

//go:embed andersen.cue
var andersenCUE string

// Andersen is the algorithm name of the inclusion-based points-to fragment.
const Andersen = "andersen"

// ObjectSort is the sort every analysis relation ranges over.
const ObjectSort = "object"

// fragment mirrors the decoded shape of a #Fragment CUE value.
type fragment struct {
	Algorithm string              `json:"algorithm"`
	Sorts     map[string]uint32   `json:"sorts"`
	Relations map[string][]string `json:"relations"`
	Clauses   []string            `json:"clauses"`
}

// Algorithms lists the known algorithm names.
func Algorithms() []string {
	return []string{Andersen}
}

// Load builds the base program for the named algorithm.
//
// The returned program holds the sort and relation declarations plus the
// rule clauses; callers clone it before appending facts.
func Load(algorithm string) (*datalog.Program, error) {
	if algorithm != Andersen {
		return nil, fmt.Errorf("unknown algorithm %q (known: %v)", algorithm, Algorithms())
	}

	ctx := cuecontext.New()
	value := ctx.CompileString(andersenCUE)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile rule fragment: %w", err)
	}

	fragVal := value.LookupPath(cue.ParsePath(Andersen))
	if !fragVal.Exists() {
		return nil, fmt.Errorf("rule fragment %q not found", Andersen)
	}
	if err := fragVal.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate rule fragment: %w", err)
	}

	var frag fragment
	if err := fragVal.Decode(&frag); err != nil {
		return nil, fmt.Errorf("decode rule fragment: %w", err)
	}
	if frag.Algorithm != algorithm {
		return nil, fmt.Errorf("rule fragment declares algorithm %q, want %q", frag.Algorithm, algorithm)
	}

	return lower(frag)
}

// lower turns a decoded fragment into a program. Declarations are emitted in
// lexicographic name order so loading is deterministic; clause order follows
// the fragment.
func lower(frag fragment) (*datalog.Program, error) {
	b := dsl.NewBuilder()

	sortRefs := make(map[string]dsl.SortRef, len(frag.Sorts))
	for _, name := range sortedKeys(frag.Sorts) {
		sortRefs[name] = b.Sort(name, frag.Sorts[name])
	}

	for _, name := range sortedKeys(frag.Relations) {
		argSorts := frag.Relations[name]
		refs := make([]dsl.SortRef, len(argSorts))
		for i, sortName := range argSorts {
			ref, ok := sortRefs[sortName]
			if !ok {
				return nil, fmt.Errorf("relation %s references undeclared sort %s", name, sortName)
			}
			refs[i] = ref
		}
		b.Relation(name, refs...)
	}

	for _, clause := range frag.Clauses {
		if err := b.AddClause(clause); err != nil {
			return nil, fmt.Errorf("clause %q: %w", clause, err)
		}
	}

	return b.Program()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
