package ir

import (
	"fmt"
	"strings"
)

// TypeKind discriminates the type variants.
type TypeKind int

const (
	VoidKind TypeKind = iota
	IntegerKind
	FloatKind
	PointerKind
	StructKind
	ArrayKind
	FunctionKind
)

// Type describes the static type of a value. Types are plain immutable
// values; two structurally equal types need not be pointer-identical.
type Type struct {
	Kind TypeKind

	// Bits is the width of an integer or float type (32 or 64 for floats).
	Bits int

	// Elem is the pointee of a pointer or the element of an array.
	Elem *Type

	// Len is the element count of an array.
	Len int

	// Fields are the member types of a struct, or the parameter types of a
	// function type.
	Fields []*Type

	// Ret is the return type of a function type.
	Ret *Type
}

// Void returns the void type.
func Void() *Type { return &Type{Kind: VoidKind} }

// Int returns the integer type of the given bit width.
func Int(bits int) *Type { return &Type{Kind: IntegerKind, Bits: bits} }

// Float32 returns the single-precision float type.
func Float32() *Type { return &Type{Kind: FloatKind, Bits: 32} }

// Float64 returns the double-precision float type.
func Float64() *Type { return &Type{Kind: FloatKind, Bits: 64} }

// PointerTo returns the pointer type to elem.
func PointerTo(elem *Type) *Type { return &Type{Kind: PointerKind, Elem: elem} }

// ArrayOf returns the array type [n x elem].
func ArrayOf(n int, elem *Type) *Type {
	return &Type{Kind: ArrayKind, Len: n, Elem: elem}
}

// StructOf returns the struct type over the given field types.
func StructOf(fields ...*Type) *Type {
	return &Type{Kind: StructKind, Fields: fields}
}

// FuncType returns the function type params → ret.
func FuncType(ret *Type, params ...*Type) *Type {
	return &Type{Kind: FunctionKind, Ret: ret, Fields: params}
}

// IsPointer reports whether the type is a pointer.
func (t *Type) IsPointer() bool { return t != nil && t.Kind == PointerKind }

// IsInteger reports whether the type is an integer.
func (t *Type) IsInteger() bool { return t != nil && t.Kind == IntegerKind }

// IsFloatingPoint reports whether the type is a float.
func (t *Type) IsFloatingPoint() bool { return t != nil && t.Kind == FloatKind }

// IsVoid reports whether the type is void.
func (t *Type) IsVoid() bool { return t == nil || t.Kind == VoidKind }

// String renders the type in the usual IR spelling.
func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case VoidKind:
		return "void"
	case IntegerKind:
		return fmt.Sprintf("i%d", t.Bits)
	case FloatKind:
		if t.Bits == 64 {
			return "double"
		}
		return "float"
	case PointerKind:
		return t.Elem.String() + "*"
	case ArrayKind:
		return fmt.Sprintf("[%d x %s]", t.Len, t.Elem)
	case StructKind:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case FunctionKind:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return fmt.Sprintf("%s (%s)", t.Ret, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("type(%d)", t.Kind)
	}
}

// ParseType parses the textual spelling produced by String for the scalar
// spellings used in module files: "void", "i<bits>", "float", "double", and
// any of those followed by one or more "*".
func ParseType(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	stars := 0
	for strings.HasSuffix(s, "*") {
		s = s[:len(s)-1]
		stars++
	}

	var t *Type
	switch {
	case s == "void":
		t = Void()
	case s == "float":
		t = Float32()
	case s == "double":
		t = Float64()
	case strings.HasPrefix(s, "i"):
		var bits int
		if _, err := fmt.Sscanf(s, "i%d", &bits); err != nil || bits <= 0 {
			return nil, fmt.Errorf("malformed type %q", s)
		}
		t = Int(bits)
	default:
		return nil, fmt.Errorf("malformed type %q", s)
	}

	for ; stars > 0; stars-- {
		t = PointerTo(t)
	}
	return t, nil
}
