package facts

import (
	"strings"

	"github.com/roach88/mayalias/internal/ir"
)

// The intrinsic table lowers recognised library and compiler calls into
// domain-specific facts instead of leaving them opaque. Matchers run in
// order and the first match wins, both when counting affiliated objects
// (phase 1) and when emitting (phase 2).
//
// To add an intrinsic, add a kind, extend both switches, and append to
// intrinsicTable.
type intrinsicKind int

const (
	intrinsicMalloc intrinsicKind = iota
	intrinsicMemcpy
	intrinsicNoEffect
)

type matchResult struct {
	matched    bool
	affiliated int
}

type intrinsicCall struct {
	kind intrinsicKind
}

var intrinsicTable = []intrinsicCall{
	{intrinsicMalloc},
	{intrinsicMemcpy},
	{intrinsicNoEffect},
}

// mallocNames are allocator entry points that return fresh memory.
var mallocNames = map[string]bool{
	"malloc":  true,
	"calloc":  true,
	"realloc": true,
	"fopen":   true,
}

// noEffectNames are calls assumed to neither create nor move pointers.
var noEffectNames = map[string]bool{
	"free":           true,
	"printf":         true,
	"fprintf":        true,
	"__isoc99_scanf": true,
	"scanf":          true,
	"fflush":         true,
	"feof":           true,
	"_IO_getc":       true,
	"tolower":        true,
	"fclose":         true,
	"exit":           true,
}

func (ic intrinsicCall) match(call *ir.Instr) matchResult {
	callee := call.CalledFunction()
	if callee == nil {
		return matchResult{}
	}

	switch ic.kind {
	case intrinsicMalloc:
		if mallocNames[callee.Name()] &&
			len(callee.Params()) > 0 &&
			callee.Params()[0].Type().IsInteger() &&
			callee.ReturnType().IsPointer() {
			return matchResult{matched: true, affiliated: 1}
		}

	case intrinsicMemcpy:
		name := callee.Name()
		nameMatch := strings.HasPrefix(name, "llvm.memcpy.") ||
			strings.HasPrefix(name, "llvm.memmove.") ||
			name == "strncpy" ||
			name == "strcpy"
		if nameMatch && len(callee.Params()) >= 2 {
			return matchResult{matched: true}
		}

	case intrinsicNoEffect:
		if noEffectNames[callee.Name()] {
			return matchResult{matched: true}
		}
	}
	return matchResult{}
}

func (ic intrinsicCall) emit(g *Generator, call *ir.Instr) {
	instrID := g.id(call)

	switch ic.kind {
	case intrinsicMalloc:
		memID := g.objects.AffiliatedObjectID(instrID, 1)
		g.emit("mem", memID)
		g.emit("intrinsicMalloc", instrID, memID)

	case intrinsicMemcpy:
		g.emit("intrinsicMemcpy", instrID, g.id(call.ArgOperand(0)), g.id(call.ArgOperand(1)))

	case intrinsicNoEffect:
		// nothing to say
	}
}
