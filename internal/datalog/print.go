package datalog

import "strings"

// String renders the canonical engine-ingest form: one sort declaration per
// line, a blank line, one relation schema per line (with "printtuples"), a
// blank line, then one formula per line terminated by a period.
func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Sorts() {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, r := range p.Relations() {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, f := range p.formulas {
		b.WriteString(f.String())
		b.WriteString(".\n")
	}
	return b.String()
}

// DebugString renders the plain stream form: same layout as String but
// relation schemas omit "printtuples" and formulas have no terminating
// period.
func (p *Program) DebugString() string {
	var b strings.Builder
	for _, s := range p.Sorts() {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, r := range p.Relations() {
		b.WriteString(r.DebugString())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, f := range p.formulas {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}
