package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/mayalias/internal/datalog"
)

// AddClause parses one clause of rule text and adds it to the program.
//
// Grammar:
//
//	clause := atom [ ":-" atom { "," atom } ] [ "." ]
//	atom   := name "(" term { "," term } ")"
//	term   := name | integer | "_"
//
// A bare "_" is replaced by a fresh wildcard variable; each occurrence gets
// its own. Term and relation names follow the builder's reservation rule.
func (b *Builder) AddClause(text string) error {
	if b.err != nil {
		return b.err
	}

	p := &clauseParser{input: text}
	head, err := p.atom(b)
	if err != nil {
		b.err = err
		return err
	}

	var body []datalog.Formula
	if p.accept(":-") {
		for {
			sub, err := p.atom(b)
			if err != nil {
				b.err = err
				return err
			}
			body = append(body, sub)
			if !p.accept(",") {
				break
			}
		}
	}
	p.accept(".")
	if rest := strings.TrimSpace(p.input[p.pos:]); rest != "" {
		b.err = fmt.Errorf("clause %q: trailing input %q", text, rest)
		return b.err
	}

	if len(body) == 0 {
		b.err = b.program.AddFormula(head)
	} else {
		b.err = b.program.AddFormula(datalog.Clause(head, body...))
	}
	return b.err
}

// clauseParser is a cursor over a single clause line.
type clauseParser struct {
	input string
	pos   int
}

func (p *clauseParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// accept consumes the literal token if it is next.
func (p *clauseParser) accept(token string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], token) {
		p.pos += len(token)
		return true
	}
	return false
}

func (p *clauseParser) ident() (string, bool) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos], p.pos > start) {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return p.input[start:p.pos], true
}

func isIdentByte(c byte, continuation bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9':
		return continuation
	default:
		return false
	}
}

func (p *clauseParser) atom(b *Builder) (datalog.Formula, error) {
	name, ok := p.ident()
	if !ok {
		return datalog.Formula{}, fmt.Errorf("clause %q: expected relation name at offset %d", p.input, p.pos)
	}
	if name[0] == '_' {
		return datalog.Formula{}, fmt.Errorf("%w: relation %s", ErrReservedName, name)
	}
	if !p.accept("(") {
		return datalog.Formula{}, fmt.Errorf("clause %q: expected ( after %s", p.input, name)
	}

	var args []datalog.Term
	if !p.accept(")") {
		for {
			term, err := p.term(b)
			if err != nil {
				return datalog.Formula{}, err
			}
			args = append(args, term)
			if p.accept(",") {
				continue
			}
			if p.accept(")") {
				break
			}
			return datalog.Formula{}, fmt.Errorf("clause %q: expected , or ) at offset %d", p.input, p.pos)
		}
	}
	return datalog.Atom(name, args...), nil
}

func (p *clauseParser) term(b *Builder) (datalog.Term, error) {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		value, err := strconv.ParseUint(p.input[start:p.pos], 10, 32)
		if err != nil {
			return datalog.Term{}, fmt.Errorf("clause %q: constant %q: %w", p.input, p.input[start:p.pos], err)
		}
		return datalog.Const(uint32(value)), nil
	}

	name, ok := p.ident()
	if !ok {
		return datalog.Term{}, fmt.Errorf("clause %q: expected term at offset %d", p.input, p.pos)
	}
	if name == "_" {
		return b.Wildcard(), nil
	}
	if name[0] == '_' {
		return datalog.Term{}, fmt.Errorf("%w: variable %s", ErrReservedName, name)
	}
	return datalog.Var(name), nil
}
