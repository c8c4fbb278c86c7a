package ir

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The YAML module form is the fixture/driver surface: a compact spelling of
// a module for tests and the CLI. The analysis core never sees it; loading
// produces an ordinary *Module.
//
//	globals:
//	  - name: c
//	    type: i32
//	    constant: true
//	    init: {int: 7, type: i32}
//	functions:
//	  - name: malloc            # declaration: no blocks
//	    ret: i8*
//	    params: [{type: i64}]
//	  - name: f
//	    ret: void
//	    blocks:
//	      - name: entry
//	        instrs:
//	          - {name: p, op: alloca, type: i32*}
//	          - {op: store, operands: ["%q", "%p"]}
//	          - {name: h, op: call, callee: malloc, type: i8*, operands: ["i64 16"]}
//	          - {op: ret}
//
// Operand references: "%name" for locals, "@name" for globals and functions,
// "null <type>" / "undef <type>" for pointer data constants, and
// "<type> <literal>" for integer or float immediates.
type moduleDoc struct {
	Globals   []globalDoc `yaml:"globals"`
	Functions []funcDoc   `yaml:"functions"`
}

type globalDoc struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Constant bool      `yaml:"constant"`
	Init     *constDoc `yaml:"init"`
}

type constDoc struct {
	Type      string     `yaml:"type"`
	Int       *int64     `yaml:"int"`
	Float     *float64   `yaml:"float"`
	Null      bool       `yaml:"nullptr"`
	Undef     bool       `yaml:"undef"`
	Global    string     `yaml:"global"`
	Aggregate []constDoc `yaml:"aggregate"`
}

type funcDoc struct {
	Name   string     `yaml:"name"`
	Ret    string     `yaml:"ret"`
	Params []paramDoc `yaml:"params"`
	Blocks []blockDoc `yaml:"blocks"`
}

type paramDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type blockDoc struct {
	Name   string     `yaml:"name"`
	Instrs []instrDoc `yaml:"instrs"`
}

type instrDoc struct {
	Name     string   `yaml:"name"`
	Op       string   `yaml:"op"`
	Type     string   `yaml:"type"`
	Callee   string   `yaml:"callee"`
	Operands []string `yaml:"operands"`
}

// LoadModule parses the YAML module form.
func LoadModule(data []byte) (*Module, error) {
	var doc moduleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse module: %w", err)
	}
	return buildModule(&doc)
}

// LoadModuleFile reads and parses a YAML module file.
func LoadModuleFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return LoadModule(data)
}

// loader resolves names and interns constants while a document is lowered.
type loader struct {
	module    *Module
	constants map[string]Constant
}

func buildModule(doc *moduleDoc) (*Module, error) {
	l := &loader{module: NewModule(), constants: make(map[string]Constant)}

	// Globals and function shells first so operands can reference them in
	// any order.
	for _, g := range doc.Globals {
		content, err := ParseType(g.Type)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name, err)
		}
		l.module.NewGlobal(g.Name, content).SetConstant(g.Constant)
	}

	for _, f := range doc.Functions {
		ret := Void()
		if f.Ret != "" {
			var err error
			if ret, err = ParseType(f.Ret); err != nil {
				return nil, fmt.Errorf("function %s: %w", f.Name, err)
			}
		}
		params := make([]*Param, len(f.Params))
		for i, p := range f.Params {
			typ, err := ParseType(p.Type)
			if err != nil {
				return nil, fmt.Errorf("function %s param %d: %w", f.Name, i, err)
			}
			params[i] = NewParam(p.Name, typ)
		}
		l.module.NewFunction(f.Name, ret, params...)
	}

	// Global initialisers may reference globals and functions.
	for gi, g := range doc.Globals {
		if g.Init == nil {
			continue
		}
		init, err := l.constant(g.Init)
		if err != nil {
			return nil, fmt.Errorf("global %s initialiser: %w", g.Name, err)
		}
		l.module.globals[gi].SetInit(init)
	}

	// Function bodies: create all instructions, then resolve operands, so
	// phi nodes can reference values defined later.
	for fi, f := range doc.Functions {
		if err := l.body(l.module.funcs[fi], &doc.Functions[fi]); err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
	}
	return l.module, nil
}

func (l *loader) body(fn *Function, doc *funcDoc) error {
	type pending struct {
		instr *Instr
		doc   *instrDoc
	}
	var todo []pending

	for bi := range doc.Blocks {
		bd := &doc.Blocks[bi]
		block := fn.NewBlock(bd.Name)
		for ii := range bd.Instrs {
			id := &bd.Instrs[ii]
			op, ok := OpcodeByName(id.Op)
			if !ok {
				return fmt.Errorf("unknown opcode %q", id.Op)
			}
			typ := Void()
			if id.Type != "" {
				var err error
				if typ, err = ParseType(id.Type); err != nil {
					return err
				}
			}

			var instr *Instr
			if op == OpCall && id.Callee != "" {
				callee := l.module.Func(id.Callee)
				if callee == nil {
					return fmt.Errorf("call to undeclared function %q", id.Callee)
				}
				instr = block.NewCall(id.Name, typ, callee)
			} else {
				instr = block.NewInstr(op, id.Name, typ)
			}
			todo = append(todo, pending{instr: instr, doc: id})
		}
	}

	for _, p := range todo {
		operands := make([]Value, 0, len(p.doc.Operands)+1)
		for _, ref := range p.doc.Operands {
			v, err := l.operand(fn, ref)
			if err != nil {
				return fmt.Errorf("instruction %s: %w", p.doc.Op, err)
			}
			operands = append(operands, v)
		}
		if p.instr.callee != nil {
			operands = append(operands, p.instr.callee)
		}
		p.instr.operands = operands
	}
	return nil
}

// operand resolves one operand reference.
func (l *loader) operand(fn *Function, ref string) (Value, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "%"):
		name := canonicalName(ref[1:])
		for _, p := range fn.params {
			if p.name == name {
				return p, nil
			}
		}
		for _, b := range fn.blocks {
			for _, i := range b.instrs {
				if i.name == name {
					return i, nil
				}
			}
		}
		return nil, fmt.Errorf("unknown local %q", ref)

	case strings.HasPrefix(ref, "@"):
		name := canonicalName(ref[1:])
		for _, g := range l.module.globals {
			if g.name == name {
				return g, nil
			}
		}
		if f := l.module.Func(name); f != nil {
			return f, nil
		}
		return nil, fmt.Errorf("unknown global %q", ref)

	default:
		return l.immediate(ref)
	}
}

// immediate parses "null <type>", "undef <type>", and "<type> <literal>"
// forms, interning the result so repeated spellings share one constant.
func (l *loader) immediate(ref string) (Constant, error) {
	if c, ok := l.constants[ref]; ok {
		return c, nil
	}

	fields := strings.Fields(ref)
	if len(fields) != 2 {
		return nil, fmt.Errorf("malformed operand %q", ref)
	}

	var c Constant
	switch fields[0] {
	case "null":
		typ, err := ParseType(fields[1])
		if err != nil {
			return nil, err
		}
		c = NewNull(typ)
	case "undef":
		typ, err := ParseType(fields[1])
		if err != nil {
			return nil, err
		}
		c = NewUndef(typ)
	default:
		typ, err := ParseType(fields[0])
		if err != nil {
			return nil, err
		}
		switch {
		case typ.IsInteger():
			value, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed integer operand %q", ref)
			}
			c = NewConstInt(typ, value)
		case typ.IsFloatingPoint():
			value, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("malformed float operand %q", ref)
			}
			c = NewConstFloat(typ, value)
		default:
			return nil, fmt.Errorf("unsupported immediate type in %q", ref)
		}
	}

	l.constants[ref] = c
	return c, nil
}

// constant lowers a constDoc, interning leaves by spelling.
func (l *loader) constant(doc *constDoc) (Constant, error) {
	switch {
	case doc.Int != nil:
		typ := Int(32)
		if doc.Type != "" {
			var err error
			if typ, err = ParseType(doc.Type); err != nil {
				return nil, err
			}
		}
		return l.immediate(fmt.Sprintf("%s %d", typ, *doc.Int))

	case doc.Float != nil:
		typ := Float64()
		if doc.Type != "" {
			var err error
			if typ, err = ParseType(doc.Type); err != nil {
				return nil, err
			}
		}
		return l.immediate(fmt.Sprintf("%s %g", typ, *doc.Float))

	case doc.Null:
		return l.immediate("null " + doc.Type)

	case doc.Undef:
		return l.immediate("undef " + doc.Type)

	case doc.Global != "":
		name := canonicalName(doc.Global)
		for _, g := range l.module.globals {
			if g.name == name {
				return g, nil
			}
		}
		if f := l.module.Func(name); f != nil {
			return f, nil
		}
		return nil, fmt.Errorf("unknown global %q in constant", doc.Global)

	case doc.Aggregate != nil:
		fields := make([]Constant, len(doc.Aggregate))
		fieldTypes := make([]*Type, len(doc.Aggregate))
		for i := range doc.Aggregate {
			c, err := l.constant(&doc.Aggregate[i])
			if err != nil {
				return nil, err
			}
			fields[i] = c
			fieldTypes[i] = c.Type()
		}
		return NewConstAggregate(StructOf(fieldTypes...), fields...), nil

	default:
		return nil, fmt.Errorf("empty constant")
	}
}
