package ir

import (
	"fmt"
	"strconv"
)

// UniqueName renders a value the way diagnostics and tests refer to it:
//
//   - named locals (arguments, instruction results) as %<name>
//   - named globals and functions as @<name>
//   - unnamed locals as <function>::%<slot>, unnamed globals as @<slot>
//   - constants in an angle-bracketed fallback form
//
// Slot numbers count unnamed values only, in layout order: a function's
// unnamed arguments first, then its unnamed non-void instruction results;
// module-level slots run over unnamed globals then unnamed functions.
func UniqueName(value Value) string {
	switch v := value.(type) {
	case *Global:
		if v.name != "" {
			return "@" + v.name
		}
		return "@" + strconv.Itoa(moduleSlot(v.module, value))
	case *Function:
		if v.name != "" {
			return "@" + v.name
		}
		return "@" + strconv.Itoa(moduleSlot(v.module, value))
	case *Param:
		if v.name != "" {
			return "%" + v.name
		}
		return UniqueName(v.fn) + "::%" + strconv.Itoa(localSlot(v.fn, value))
	case *Instr:
		if v.name != "" {
			return "%" + v.name
		}
		return UniqueName(v.block.fn) + "::%" + strconv.Itoa(localSlot(v.block.fn, value))
	case *Block:
		if v.name != "" {
			return "%" + v.name
		}
		return UniqueName(v.fn) + "::%block"
	case *ConstInt:
		return fmt.Sprintf("<%s %d>", v.typ, v.Value)
	case *ConstFloat:
		return fmt.Sprintf("<%s %g>", v.typ, v.Value)
	case *Null:
		return "null"
	case *Undef:
		return "undef"
	case *ConstAggregate:
		return fmt.Sprintf("<aggregate %s>", v.typ)
	case *ConstExpr:
		return fmt.Sprintf("<expr %s>", v.Op)
	default:
		return fmt.Sprintf("<value %T>", value)
	}
}

// moduleSlot numbers unnamed globals and functions in declaration order.
func moduleSlot(m *Module, value Value) int {
	slot := 0
	for _, g := range m.globals {
		if g.name != "" {
			continue
		}
		if Value(g) == value {
			return slot
		}
		slot++
	}
	for _, f := range m.funcs {
		if f.name != "" {
			continue
		}
		if Value(f) == value {
			return slot
		}
		slot++
	}
	return -1
}

// localSlot numbers a function's unnamed arguments and unnamed non-void
// instruction results in layout order.
func localSlot(f *Function, value Value) int {
	slot := 0
	for _, p := range f.params {
		if p.name != "" {
			continue
		}
		if Value(p) == value {
			return slot
		}
		slot++
	}
	for _, b := range f.blocks {
		for _, i := range b.instrs {
			if i.name != "" || i.typ.IsVoid() {
				continue
			}
			if Value(i) == value {
				return slot
			}
			slot++
		}
	}
	return -1
}
