package datalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFact parses the printed form of a ground atom, e.g. "pointsTo(3, 4)."
// (the trailing period is optional), under this program's schema. The result
// satisfies the rendering round-trip: ParseFact(f.String()) equals f for any
// admitted ground atom f.
func (p *Program) ParseFact(text string) (Formula, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ".")

	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return Formula{}, fmt.Errorf("malformed fact %q: expected R(c1, …, ck)", text)
	}

	name := strings.TrimSpace(text[:open])
	if name == "" {
		return Formula{}, fmt.Errorf("malformed fact %q: empty relation name", text)
	}
	relation, ok := p.relations[name]
	if !ok {
		return Formula{}, unknownRelationError(name)
	}

	inner := strings.TrimSpace(text[open+1 : len(text)-1])
	var args []Term
	if inner != "" {
		for _, field := range strings.Split(inner, ",") {
			field = strings.TrimSpace(field)
			value, err := strconv.ParseUint(field, 10, 32)
			if err != nil {
				return Formula{}, fmt.Errorf("malformed fact %q: argument %q is not an unsigned integer", text, field)
			}
			args = append(args, Const(uint32(value)))
		}
	}

	fact := Atom(name, args...)
	if fact.Arity() != relation.Arity() {
		return Formula{}, arityMismatchError(fact, relation.Arity())
	}
	return fact, nil
}
