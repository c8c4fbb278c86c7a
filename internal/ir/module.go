package ir

import "strings"

// Module is a translation unit: globals and functions, in declaration order.
type Module struct {
	globals []*Global
	funcs   []*Function
}

// NewModule returns an empty module.
func NewModule() *Module { return &Module{} }

// Globals returns the module's global variables in declaration order.
func (m *Module) Globals() []*Global { return m.globals }

// Funcs returns the module's functions in declaration order.
func (m *Module) Funcs() []*Function { return m.funcs }

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Function {
	for _, f := range m.funcs {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Global is a global variable. The value itself is a pointer to the
// variable's storage; Type() is therefore a pointer to the content type.
type Global struct {
	module   *Module
	name     string
	content  *Type
	constant bool
	init     Constant
}

// NewGlobal appends a global variable holding values of type content.
func (m *Module) NewGlobal(name string, content *Type) *Global {
	g := &Global{module: m, name: canonicalName(name), content: content}
	m.globals = append(m.globals, g)
	return g
}

func (g *Global) Name() string { return g.name }
func (g *Global) Type() *Type  { return PointerTo(g.content) }
func (g *Global) isValue()     {}
func (g *Global) isConstant()  {}

// ContentType returns the type of the pointed-to storage.
func (g *Global) ContentType() *Type { return g.content }

// Parent returns the owning module.
func (g *Global) Parent() *Module { return g.module }

// SetConstant marks the global's storage as immutable.
func (g *Global) SetConstant(constant bool) *Global {
	g.constant = constant
	return g
}

// IsConstant reports whether the global's storage is immutable.
func (g *Global) IsConstant() bool { return g.constant }

// SetInit installs the initialiser.
func (g *Global) SetInit(init Constant) *Global {
	g.init = init
	return g
}

// HasInitializer reports whether the global carries an initialiser.
func (g *Global) HasInitializer() bool { return g.init != nil }

// Initializer returns the initialiser, or nil.
func (g *Global) Initializer() Constant { return g.init }

// Param is a formal function argument.
type Param struct {
	fn   *Function
	name string
	typ  *Type
}

// NewParam builds a formal argument; it is attached to a function by
// Module.NewFunction.
func NewParam(name string, typ *Type) *Param {
	return &Param{name: canonicalName(name), typ: typ}
}

func (p *Param) Name() string { return p.name }
func (p *Param) Type() *Type  { return p.typ }
func (p *Param) isValue()     {}

// Parent returns the owning function.
func (p *Param) Parent() *Function { return p.fn }

// Function is a function definition or declaration. As a value it is a
// pointer to the function's code.
type Function struct {
	module *Module
	name   string
	ret    *Type
	params []*Param
	blocks []*Block
}

// NewFunction appends a function with the given return type and formal
// arguments. A function with no blocks is a declaration.
func (m *Module) NewFunction(name string, ret *Type, params ...*Param) *Function {
	f := &Function{module: m, name: canonicalName(name), ret: ret, params: params}
	for _, p := range params {
		p.fn = f
	}
	m.funcs = append(m.funcs, f)
	return f
}

func (f *Function) Name() string { return f.name }

func (f *Function) Type() *Type {
	paramTypes := make([]*Type, len(f.params))
	for i, p := range f.params {
		paramTypes[i] = p.typ
	}
	return PointerTo(FuncType(f.ret, paramTypes...))
}

func (f *Function) isValue()    {}
func (f *Function) isConstant() {}

// Parent returns the owning module.
func (f *Function) Parent() *Module { return f.module }

// ReturnType returns the declared return type.
func (f *Function) ReturnType() *Type { return f.ret }

// Params returns the formal arguments.
func (f *Function) Params() []*Param { return f.params }

// Blocks returns the basic blocks in layout order.
func (f *Function) Blocks() []*Block { return f.blocks }

// IsDeclaration reports whether the function has no body in this module.
func (f *Function) IsDeclaration() bool { return len(f.blocks) == 0 }

// IsIntrinsic reports whether the function is a compiler intrinsic.
func (f *Function) IsIntrinsic() bool { return strings.HasPrefix(f.name, "llvm.") }

// NewBlock appends a basic block.
func (f *Function) NewBlock(name string) *Block {
	b := &Block{fn: f, name: canonicalName(name)}
	f.blocks = append(f.blocks, b)
	return b
}

// Block is a basic block.
type Block struct {
	fn     *Function
	name   string
	instrs []*Instr
}

func (b *Block) Name() string { return b.name }
func (b *Block) Type() *Type  { return Void() }
func (b *Block) isValue()     {}

// Parent returns the owning function.
func (b *Block) Parent() *Function { return b.fn }

// Instrs returns the block's instructions in order.
func (b *Block) Instrs() []*Instr { return b.instrs }

// Instr is an instruction. An instruction with a non-void type is also the
// SSA value it computes.
type Instr struct {
	block    *Block
	name     string
	typ      *Type
	op       Opcode
	operands []Value
	callee   *Function
}

// NewInstr appends an instruction to the block. The name may be empty for
// void-typed or intentionally unnamed results.
func (b *Block) NewInstr(op Opcode, name string, typ *Type, operands ...Value) *Instr {
	i := &Instr{block: b, name: canonicalName(name), typ: typ, op: op, operands: operands}
	b.instrs = append(b.instrs, i)
	return i
}

// NewCall appends a direct call instruction. The callee is carried after the
// argument operands, mirroring how call instructions lay out their uses.
func (b *Block) NewCall(name string, typ *Type, callee *Function, args ...Value) *Instr {
	operands := make([]Value, 0, len(args)+1)
	operands = append(operands, args...)
	operands = append(operands, callee)
	i := &Instr{block: b, name: canonicalName(name), typ: typ, op: OpCall, operands: operands, callee: callee}
	b.instrs = append(b.instrs, i)
	return i
}

func (i *Instr) Name() string { return i.name }
func (i *Instr) Type() *Type  { return i.typ }
func (i *Instr) isValue()     {}

// Op returns the instruction opcode.
func (i *Instr) Op() Opcode { return i.op }

// Parent returns the containing block.
func (i *Instr) Parent() *Block { return i.block }

// Operands returns all operands, including the callee of a direct call
// (last position).
func (i *Instr) Operands() []Value { return i.operands }

// Operand returns the n-th operand.
func (i *Instr) Operand(n int) Value { return i.operands[n] }

// NumOperands returns the operand count.
func (i *Instr) NumOperands() int { return len(i.operands) }

// CalledFunction returns the statically-known callee of a call, or nil for
// indirect calls and non-calls.
func (i *Instr) CalledFunction() *Function { return i.callee }

// NumArgOperands returns the number of actual arguments of a call.
func (i *Instr) NumArgOperands() int {
	if i.callee != nil {
		return len(i.operands) - 1
	}
	return len(i.operands)
}

// ArgOperand returns the n-th actual argument of a call.
func (i *Instr) ArgOperand(n int) Value { return i.operands[n] }
