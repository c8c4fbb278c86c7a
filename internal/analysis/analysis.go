// Package analysis is the façade over the whole pipeline: it loads the rule
// fragment, runs fact generation into a clone of it, hands the program to
// the solver backend, and materialises the answer relations into query
// structures for alias and points-to questions.
package analysis

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/mayalias/internal/datalog"
	"github.com/roach88/mayalias/internal/facts"
	"github.com/roach88/mayalias/internal/ir"
	"github.com/roach88/mayalias/internal/objmap"
	"github.com/roach88/mayalias/internal/rules"
	"github.com/roach88/mayalias/internal/solver"
)

// AliasResult is the three-valued answer to an alias query.
type AliasResult int

const (
	NoAlias AliasResult = iota
	MayAlias
	MustAlias
)

func (r AliasResult) String() string {
	switch r {
	case NoAlias:
		return "NoAlias"
	case MayAlias:
		return "MayAlias"
	case MustAlias:
		return "MustAlias"
	default:
		return fmt.Sprintf("AliasResult(%d)", int(r))
	}
}

// Options configures one analysis run.
type Options struct {
	// Algorithm selects the rule fragment. Default: rules.Andersen.
	Algorithm string

	// PrintProgram asks drivers to dump the generated program (debug form).
	PrintProgram bool

	// PrintPointsTo asks drivers to dump the materialised relation.
	PrintPointsTo bool
}

// DefaultOptions mirrors the documented defaults: print-program off,
// print-points-to on, algorithm andersen.
func DefaultOptions() Options {
	return Options{
		Algorithm:     rules.Andersen,
		PrintPointsTo: true,
	}
}

// Analysis holds the materialised results of one run. All queries after New
// are pure lookups; the solver is not consulted again.
type Analysis struct {
	opts    Options
	runID   string
	objects *objmap.Map
	program *datalog.Program
	backend *solver.Backend
	gen     *facts.Generator

	// pointsTo pairs sorted ascending; pointsToSet indexes the same data by
	// pointer id.
	pointsTo    [][2]uint32
	pointsToSet map[uint32][]uint32
	aliases     map[[2]uint32]bool
	addressable []uint32
}

// New runs the pipeline over the module and materialises the results.
func New(module *ir.Module, opts Options) (*Analysis, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = rules.Andersen
	}

	a := &Analysis{
		opts:  opts,
		runID: uuid.Must(uuid.NewV7()).String(),
	}
	logger := slog.With("run_id", a.runID, "algorithm", opts.Algorithm)
	logger.Info("analysis run started")

	base, err := rules.Load(opts.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	a.program = base.Clone()

	a.gen = facts.New(module)
	a.objects = a.gen.Objects()
	if err := a.gen.Generate(a.program); err != nil {
		return nil, fmt.Errorf("generate facts: %w", err)
	}
	logger.Debug("facts generated",
		"objects", a.objects.Len(),
		"formulas", len(a.program.Formulas()),
		"unsupported", len(a.gen.Unsupported()),
	)

	a.backend, err = solver.New()
	if err != nil {
		return nil, err
	}
	if err := a.backend.Load(a.program); err != nil {
		a.backend.Close()
		return nil, fmt.Errorf("load program: %w", err)
	}

	if err := a.materialise(); err != nil {
		a.backend.Close()
		return nil, err
	}
	logger.Info("analysis run finished",
		"points_to", len(a.pointsTo),
		"addressable", len(a.addressable),
	)
	return a, nil
}

// Close releases the solver resources. Queries keep working afterwards:
// they only touch materialised tables.
func (a *Analysis) Close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	return err
}

// materialise runs the three standing queries and indexes their answers.
func (a *Analysis) materialise() error {
	pointsToFacts, err := a.backend.Query("pointsTo")
	if err != nil {
		return fmt.Errorf("query pointsTo: %w", err)
	}
	a.pointsToSet = make(map[uint32][]uint32)
	for _, f := range pointsToFacts {
		src, dst := f.Argument(0).Value(), f.Argument(1).Value()
		a.pointsTo = append(a.pointsTo, [2]uint32{src, dst})
		a.pointsToSet[src] = append(a.pointsToSet[src], dst)
	}
	sortPairs(a.pointsTo)

	aliasFacts, err := a.backend.Query("alias")
	if err != nil {
		return fmt.Errorf("query alias: %w", err)
	}
	a.aliases = make(map[[2]uint32]bool, len(aliasFacts))
	for _, f := range aliasFacts {
		a.aliases[[2]uint32{f.Argument(0).Value(), f.Argument(1).Value()}] = true
	}

	addressableFacts, err := a.backend.Query("addressable")
	if err != nil {
		return fmt.Errorf("query addressable: %w", err)
	}
	for _, f := range addressableFacts {
		a.addressable = append(a.addressable, f.Argument(0).Value())
	}
	sort.Slice(a.addressable, func(i, j int) bool { return a.addressable[i] < a.addressable[j] })
	return nil
}

func sortPairs(pairs [][2]uint32) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}

// RunID identifies this run in logs.
func (a *Analysis) RunID() string { return a.runID }

// Options returns the options the run was started with.
func (a *Analysis) Options() Options { return a.opts }

// Program returns the combined rules+facts program of this run.
func (a *Analysis) Program() *datalog.Program { return a.program }

// Objects returns the run's object map.
func (a *Analysis) Objects() *objmap.Map { return a.objects }

// Unsupported returns the instructions lowered to instrUnknown.
func (a *Analysis) Unsupported() []*ir.Instr { return a.gen.Unsupported() }

// PointsToPairs returns the materialised pointsTo relation, sorted.
func (a *Analysis) PointsToPairs() [][2]uint32 { return a.pointsTo }

// PointsToSet returns the pointee ids of a pointer value.
func (a *Analysis) PointsToSet(value ir.Value) ([]uint32, error) {
	id, err := a.objects.ObjectIDOfValue(value)
	if err != nil {
		return nil, err
	}
	return a.pointsToSet[id], nil
}

// Alias answers whether two values may refer to overlapping memory.
//
// The same value trivially must-aliases itself; two distinct values may
// alias when the solved relation contains the pair; otherwise they do not.
func (a *Analysis) Alias(x, y ir.Value) (AliasResult, error) {
	idX, err := a.objects.ObjectIDOfValue(x)
	if err != nil {
		return NoAlias, err
	}
	idY, err := a.objects.ObjectIDOfValue(y)
	if err != nil {
		return NoAlias, err
	}

	if x == y {
		return MustAlias, nil
	}
	if a.aliases[[2]uint32{idX, idY}] {
		return MayAlias, nil
	}
	return NoAlias, nil
}

// PointsToConstantMemory reports whether every object a location can refer
// to is immutable. With orLocal, stack slots count as constant too.
func (a *Analysis) PointsToConstantMemory(loc ir.Value, orLocal bool) (bool, error) {
	switch v := loc.(type) {
	case *ir.Function:
		return true, nil
	case *ir.Global:
		return v.IsConstant(), nil
	}

	id, err := a.objects.ObjectIDOfValue(loc)
	if err != nil {
		return false, err
	}

	for _, pointee := range a.pointsToSet[id] {
		main, _, ok := a.objects.MainValueOfAffiliatedObjectID(pointee)
		if !ok {
			// ANY or another special: contents unknown.
			return false, nil
		}
		switch site := main.(type) {
		case *ir.Function:
			// code is immutable
		case *ir.Global:
			if !site.IsConstant() {
				return false, nil
			}
		case *ir.Instr:
			if !(orLocal && site.Op() == ir.OpAlloca) {
				return false, nil
			}
		default:
			return false, nil
		}
	}
	return true, nil
}
