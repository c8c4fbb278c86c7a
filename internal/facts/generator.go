// Package facts walks an input module and emits the datalog facts the
// analysis rules range over.
//
// Generation is two-phase. Phase 1 (at construction) numbers every value in
// a deterministic walk order and reserves affiliated ids for the abstract
// memory that allocation sites create: globals and functions get one
// affiliate each, alloca instructions one for the stack slot, and recognised
// allocator intrinsics one for the returned heap block. Phase 2 appends one
// fact per structural and semantic property to the program.
package facts

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/mayalias/internal/datalog"
	"github.com/roach88/mayalias/internal/ir"
	"github.com/roach88/mayalias/internal/objmap"
)

// Generator owns the object numbering of one module and emits its facts.
//
// A Generator is tied to its module; phase 2 may be run into more than one
// program, but the numbering never changes once built.
type Generator struct {
	module  *ir.Module
	objects *objmap.Map

	program     *datalog.Program
	initialized map[ir.Constant]bool
	unsupported []*ir.Instr
	err         error
}

// New numbers the module (phase 1) and returns the generator.
func New(module *ir.Module) *Generator {
	g := &Generator{
		module:  module,
		objects: objmap.New(),
	}
	g.numberModule()
	return g
}

// Objects returns the object map built in phase 1.
func (g *Generator) Objects() *objmap.Map { return g.objects }

// Unsupported returns the instructions that were lowered to instrUnknown,
// for diagnostics.
func (g *Generator) Unsupported() []*ir.Instr { return g.unsupported }

// Generate appends the module's facts to the program (phase 2).
func (g *Generator) Generate(program *datalog.Program) error {
	g.program = program
	g.initialized = make(map[ir.Constant]bool)
	g.unsupported = nil
	g.err = nil

	for _, global := range g.module.Globals() {
		g.globalFacts(global)
	}
	for _, fn := range g.module.Funcs() {
		g.functionFacts(fn)
	}
	return g.err
}

// phase 1 — object numbering

func (g *Generator) numberModule() {
	for _, global := range g.module.Globals() {
		// A global variable and its storage are distinct objects: the former
		// is a pointer to the latter.
		g.objects.AddValue(global, 1)
		if global.HasInitializer() {
			g.numberConstant(global.Initializer())
		}
	}
	for _, fn := range g.module.Funcs() {
		g.numberFunction(fn)
	}
}

func (g *Generator) numberFunction(fn *ir.Function) {
	// The function value is a pointer; its affiliate is the code object.
	g.objects.AddValue(fn, 1)

	for _, param := range fn.Params() {
		g.objects.AddValue(param, 0)
	}
	for _, block := range fn.Blocks() {
		g.numberBlock(block)
	}
}

func (g *Generator) numberBlock(block *ir.Block) {
	for _, instr := range block.Instrs() {
		g.objects.AddValue(instr, g.affiliatedCount(instr))

		for _, operand := range instr.Operands() {
			if constant, ok := operand.(ir.Constant); ok {
				g.numberConstant(constant)
			} else {
				g.objects.AddValue(operand, 0)
			}
		}
	}
}

func (g *Generator) numberConstant(constant ir.Constant) {
	g.objects.AddValue(constant, 0)
	for _, operand := range ir.ConstantOperands(constant) {
		g.numberConstant(operand)
	}
}

// affiliatedCount decides how many abstract memory objects an instruction
// allocates.
func (g *Generator) affiliatedCount(instr *ir.Instr) int {
	if instr.Op() == ir.OpCall {
		for _, candidate := range intrinsicTable {
			if result := candidate.match(instr); result.matched {
				return result.affiliated
			}
		}
	}
	if instr.Op() == ir.OpAlloca {
		return 1 // alloca creates a frame object
	}
	return 0
}

// phase 2 — fact emission

// emit admits one fact, holding the first admission error. A failure here is
// a schema/programming error, never an input-module property.
func (g *Generator) emit(relation string, args ...uint32) {
	if g.err != nil {
		return
	}
	terms := make([]datalog.Term, len(args))
	for i, arg := range args {
		terms[i] = datalog.Const(arg)
	}
	if err := g.program.AddFormula(datalog.Atom(relation, terms...)); err != nil {
		g.err = fmt.Errorf("emit %s: %w", relation, err)
	}
}

func (g *Generator) id(value ir.Value) uint32 {
	return g.objects.MustObjectIDOfValue(value)
}

// valueFacts emits the universal per-value annotations.
func (g *Generator) valueFacts(value ir.Value) {
	typ := value.Type()
	if typ.IsInteger() || typ.IsFloatingPoint() {
		g.emit("nonpointer", g.id(value))
	}
}

func (g *Generator) globalFacts(global *ir.Global) {
	g.valueFacts(global)

	globalID := g.id(global)
	memID := g.objects.AffiliatedObjectID(globalID, 1)

	g.emit("global", globalID)

	// The pointer to a global variable is immutable; the storage behind it
	// is a separate, addressable object.
	g.emit("immutable", globalID)
	g.emit("nonaddressable", globalID)

	g.emit("mem", memID)
	g.emit("hasAllocatedMemory", globalID, memID)

	if global.IsConstant() {
		g.emit("immutable", memID)
	}

	if global.HasInitializer() {
		init := global.Initializer()
		g.constantFacts(init)
		g.emit("hasInitializer", globalID, g.id(init))
	} else {
		// External storage: content unknown, not absent.
		g.emit("hasNoInitializer", globalID)
	}
}

func (g *Generator) functionFacts(fn *ir.Function) {
	g.valueFacts(fn)

	fnID := g.id(fn)
	memID := g.objects.AffiliatedObjectID(fnID, 1)

	g.emit("function", fnID)
	g.emit("mem", memID)
	g.emit("hasAllocatedMemory", fnID, memID)

	// Both the function pointer and the code object are immutable; only the
	// code object is addressable.
	g.emit("immutable", fnID)
	g.emit("immutable", memID)
	g.emit("nonaddressable", fnID)

	for _, param := range fn.Params() {
		g.valueFacts(param)
		paramID := g.id(param)
		g.emit("nonaddressable", paramID)
		g.emit("immutable", paramID)
	}

	for _, block := range fn.Blocks() {
		for _, instr := range block.Instrs() {
			g.valueFacts(instr)
			g.instructionFacts(instr)
		}
	}
}

// instructionFacts lowers one instruction. Constant expressions reuse the
// same lowering through constantFacts.
func (g *Generator) instructionFacts(instr *ir.Instr) {
	instrID := g.id(instr)
	fnID := g.id(instr.Parent().Parent())
	g.emit("hasInstr", fnID, instrID)
	g.userFacts(instrID, instr.Op(), instr.Operands(), instr)
}

// userFacts is shared between instructions and constant expressions: id and
// opcode plus the operand list, with instr non-nil only for real
// instructions (calls cannot occur in constant expressions).
func (g *Generator) userFacts(instrID uint32, op ir.Opcode, operands []ir.Value, instr *ir.Instr) {
	g.emit("instr", instrID)

	// SSA: the result of an instruction is immutable and non-addressable.
	g.emit("immutable", instrID)
	g.emit("nonaddressable", instrID)

	for _, operand := range operands {
		g.emit("hasOperand", instrID, g.id(operand))
		if constant, ok := operand.(ir.Constant); ok {
			g.constantFacts(constant)
		}
	}

	switch op {
	case ir.OpAlloca:
		memID := g.objects.AffiliatedObjectID(instrID, 1)
		g.emit("mem", memID)
		g.emit("instrAlloca", instrID, memID)

	case ir.OpGetElementPtr:
		g.emit("instrGetelementptr", instrID, g.id(operands[0]))

	case ir.OpLoad:
		g.emit("instrLoad", instrID, g.id(operands[0]))

	case ir.OpStore:
		g.emit("instrStore", instrID, g.id(operands[0]), g.id(operands[1]))

	case ir.OpRet:
		// ret void carries nothing.
		if len(operands) > 0 {
			g.emit("instrRet", instrID, g.id(operands[0]))
		}

	case ir.OpBitCast:
		g.emit("instrBitCast", instrID, g.id(operands[0]))

	case ir.OpIntToPtr:
		// The one place a pointer can appear out of an integer; the rules
		// treat the result as pointing to ANY.
		g.emit("instrIntToPtr", instrID, g.id(operands[0]))

	case ir.OpPHI:
		g.emit("instrPHI", instrID)

	case ir.OpBr:
		// flow-insensitive: control edges carry no points-to information

	case ir.OpCall:
		g.callFacts(instrID, instr)

	case ir.OpICmp, ir.OpFCmp, ir.OpUnreachable:

	default:
		if op.IsNumericCast() || op.IsBinaryOp() || op.IsUnaryOp() {
			break
		}
		g.unknownInstr(instrID, instr)
	}
}

func (g *Generator) callFacts(instrID uint32, instr *ir.Instr) {
	callee := instr.CalledFunction()
	if callee == nil {
		g.unknownInstr(instrID, instr)
		return
	}

	if callee.IsDeclaration() || callee.IsIntrinsic() {
		for _, candidate := range intrinsicTable {
			if candidate.match(instr).matched {
				candidate.emit(g, instr)
				return
			}
		}
		g.unknownInstr(instrID, instr)
		return
	}

	// Defined in this module: link actuals to formals.
	g.emit("instrCall", instrID, g.id(callee))
	for i, param := range callee.Params() {
		if i >= instr.NumArgOperands() {
			break
		}
		g.emit("hasCallArgument", instrID, g.id(instr.ArgOperand(i)), g.id(param))
	}
}

func (g *Generator) unknownInstr(instrID uint32, instr *ir.Instr) {
	g.emit("instrUnknown", instrID)
	if instr != nil {
		g.unsupported = append(g.unsupported, instr)
		slog.Debug("unsupported instruction",
			"instr", ir.UniqueName(instr),
			"op", instr.Op().String(),
		)
	}
}

func (g *Generator) constantFacts(constant ir.Constant) {
	if g.initialized[constant] {
		return
	}
	g.initialized[constant] = true

	g.valueFacts(constant)

	constantID := g.id(constant)

	// Equal constants share one object, so same constant implies same
	// memory location.
	g.emit("constant", constantID)
	g.emit("immutable", constantID)
	g.emit("nonaddressable", constantID)

	for _, operand := range ir.ConstantOperands(constant) {
		g.constantFacts(operand)
	}

	switch c := constant.(type) {
	case *ir.ConstAggregate:
		// The aggregate and its fields alias each other.
		for _, field := range c.Fields() {
			g.emit("hasConstantField", constantID, g.id(field))
		}

	case *ir.ConstExpr:
		// A constant expression is an instruction in all but position.
		operands := make([]ir.Value, len(c.Operands()))
		for i, operand := range c.Operands() {
			operands[i] = operand
		}
		g.userFacts(constantID, c.Op, operands, nil)

	case *ir.Global, *ir.Function:
		// handled by their own walks

	case *ir.Undef:
		if c.Type().IsPointer() {
			g.emit("undef", constantID)
		}

	case *ir.Null:
		if c.Type().IsPointer() {
			g.emit("null", constantID)
		}

	case *ir.ConstInt, *ir.ConstFloat:
		// nonpointer was emitted by valueFacts

	default:
		if g.err == nil {
			g.err = fmt.Errorf("%w: %T (%s)", ErrUnsupportedConstant, constant, ir.UniqueName(constant))
		}
	}
}

// ValueMapDump renders the value→id map as a delimited debug block.
func (g *Generator) ValueMapDump() string {
	var b strings.Builder
	b.WriteString("================== value map\n")
	for id := uint32(objmap.NumSpecial); g.objects.IsValidObjectID(id); id++ {
		if value, ok := g.objects.ValueOfObjectID(id); ok {
			fmt.Fprintf(&b, "value %s -> %d\n", ir.UniqueName(value), id)
		}
	}
	b.WriteString("================== value map\n")
	return b.String()
}
