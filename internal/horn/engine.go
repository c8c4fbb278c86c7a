// Package horn is a fixed-point engine for Horn clauses over fixed-width
// bit-vector predicates.
//
// Relations live as tables in an in-memory SQLite database, one table per
// predicate with one INTEGER column per argument position and a primary key
// over the full tuple. Facts insert directly; rules compile once into
// INSERT OR IGNORE … SELECT DISTINCT joins and run in rounds until a full
// pass derives nothing new. Query answers come back as constraints in
// disjunctive-normal form over variable=literal equalities, which is the
// shape the solver backend decodes.
package horn

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultMaxRounds bounds the saturation loop. A round applies every rule
// once; the bound only triggers on runaway rule sets and surfaces as an
// Unknown result rather than an endless query.
const DefaultMaxRounds = 100000

// Status is the outcome of a query.
type Status int

const (
	// Sat: the relation is non-empty; Answer holds the tuples.
	Sat Status = iota
	// Unsat: the relation is empty.
	Unsat
	// Unknown: the engine gave up; Reason says why.
	Unknown
)

// Result is a query outcome.
type Result struct {
	Status Status
	Answer Expr
	Reason string
}

// Term is a rule-level term: a variable reference or a literal.
type Term struct {
	// Var is the variable name; empty for a literal.
	Var string
	Lit uint32
}

// V references a rule variable.
func V(name string) Term { return Term{Var: name} }

// L builds a literal term.
func L(value uint32) Term { return Term{Lit: value} }

// Atom applies a predicate to terms.
type Atom struct {
	Pred string
	Args []Term
}

// Rule is a Horn clause; an empty body makes it a fact.
type Rule struct {
	Head Atom
	Body []Atom
}

type predicate struct {
	name   string
	widths []uint
}

type compiledRule struct {
	name string
	sql  string
	args []any
}

// Engine holds one loaded rule set and its derived tables.
//
// Single-threaded: an Engine is owned by one analysis run and never shared.
// Close releases the database; Reset clears everything for a fresh load.
type Engine struct {
	db        *sql.DB
	preds     map[string]predicate
	rules     []compiledRule
	maxRounds int
	saturated bool
}

// NewEngine opens a fresh in-memory database.
func NewEngine() (*Engine, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open engine database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect engine database: %w", err)
	}

	// A single connection keeps the in-memory database alive and makes the
	// engine a strict single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Engine{
		db:        db,
		preds:     make(map[string]predicate),
		maxRounds: DefaultMaxRounds,
	}, nil
}

// Close releases the database.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// SetMaxRounds overrides the saturation bound; for tests.
func (e *Engine) SetMaxRounds(n int) { e.maxRounds = n }

// Reset drops all tables and rules so the engine can be loaded again.
func (e *Engine) Reset() error {
	for name := range e.preds {
		if _, err := e.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName(name))); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	e.preds = make(map[string]predicate)
	e.rules = nil
	e.saturated = false
	return nil
}

// RegisterRelation declares a predicate over the given bit-vector widths and
// creates its table.
func (e *Engine) RegisterRelation(name string, widths []uint) error {
	if _, ok := e.preds[name]; ok {
		return fmt.Errorf("predicate %s already registered", name)
	}
	if len(widths) == 0 {
		return fmt.Errorf("predicate %s: zero arity is not supported", name)
	}

	cols := make([]string, len(widths))
	for i := range widths {
		cols[i] = fmt.Sprintf("c%d INTEGER NOT NULL", i)
	}
	keys := make([]string, len(widths))
	for i := range widths {
		keys[i] = fmt.Sprintf("c%d", i)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s, PRIMARY KEY (%s)) WITHOUT ROWID",
		tableName(name),
		strings.Join(cols, ", "),
		strings.Join(keys, ", "))
	if _, err := e.db.Exec(ddl); err != nil {
		return fmt.Errorf("create table for %s: %w", name, err)
	}

	e.preds[name] = predicate{name: name, widths: widths}
	return nil
}

// AddRule registers a named rule. Facts (empty body) are inserted
// immediately; proper rules are compiled and run during saturation.
func (e *Engine) AddRule(r Rule, name string) error {
	if err := e.checkAtom(r.Head); err != nil {
		return fmt.Errorf("rule %s: head: %w", name, err)
	}
	for _, atom := range r.Body {
		if err := e.checkAtom(atom); err != nil {
			return fmt.Errorf("rule %s: body: %w", name, err)
		}
	}
	e.saturated = false

	if len(r.Body) == 0 {
		return e.insertFact(r, name)
	}

	compiled, err := e.compileRule(r, name)
	if err != nil {
		return err
	}
	e.rules = append(e.rules, compiled)
	return nil
}

// checkAtom verifies the predicate exists, the arity matches, and literals
// fit their column widths.
func (e *Engine) checkAtom(atom Atom) error {
	pred, ok := e.preds[atom.Pred]
	if !ok {
		return fmt.Errorf("unknown predicate %s", atom.Pred)
	}
	if len(atom.Args) != len(pred.widths) {
		return fmt.Errorf("predicate %s: got %d arguments, want %d", atom.Pred, len(atom.Args), len(pred.widths))
	}
	for i, arg := range atom.Args {
		if arg.Var != "" {
			continue
		}
		if pred.widths[i] < 32 && arg.Lit >= 1<<pred.widths[i] {
			return fmt.Errorf("predicate %s: literal %d does not fit %d bits", atom.Pred, arg.Lit, pred.widths[i])
		}
	}
	return nil
}

func (e *Engine) insertFact(r Rule, name string) error {
	cols := make([]string, len(r.Head.Args))
	marks := make([]string, len(r.Head.Args))
	args := make([]any, len(r.Head.Args))
	for i, arg := range r.Head.Args {
		if arg.Var != "" {
			return fmt.Errorf("rule %s: fact argument %d is an unbound variable %s", name, i, arg.Var)
		}
		cols[i] = fmt.Sprintf("c%d", i)
		marks[i] = "?"
		args[i] = int64(arg.Lit)
	}

	stmt := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		tableName(r.Head.Pred),
		strings.Join(cols, ", "),
		strings.Join(marks, ", "))
	if _, err := e.db.Exec(stmt, args...); err != nil {
		return fmt.Errorf("rule %s: insert fact: %w", name, err)
	}
	return nil
}

// compileRule lowers a Horn clause to one INSERT OR IGNORE … SELECT DISTINCT
// statement. Every variable binds to the table column of its first body
// occurrence; later occurrences and body literals become WHERE equalities.
// Values are parameterized, never interpolated.
func (e *Engine) compileRule(r Rule, name string) (compiledRule, error) {
	type binding struct {
		column string
	}
	bindings := make(map[string]binding)

	var from []string
	var where []string
	var whereParams []any

	for bi, atom := range r.Body {
		alias := fmt.Sprintf("t%d", bi)
		from = append(from, fmt.Sprintf("%s AS %s", tableName(atom.Pred), alias))

		for ai, arg := range atom.Args {
			column := fmt.Sprintf("%s.c%d", alias, ai)
			if arg.Var == "" {
				where = append(where, column+" = ?")
				whereParams = append(whereParams, int64(arg.Lit))
				continue
			}
			if bound, ok := bindings[arg.Var]; ok {
				where = append(where, column+" = "+bound.column)
			} else {
				bindings[arg.Var] = binding{column: column}
			}
		}
	}

	cols := make([]string, len(r.Head.Args))
	selects := make([]string, len(r.Head.Args))
	var selectParams []any
	for i, arg := range r.Head.Args {
		cols[i] = fmt.Sprintf("c%d", i)
		if arg.Var == "" {
			selects[i] = "?"
			selectParams = append(selectParams, int64(arg.Lit))
			continue
		}
		bound, ok := bindings[arg.Var]
		if !ok {
			return compiledRule{}, fmt.Errorf("rule %s: head variable %s is not bound by the body", name, arg.Var)
		}
		selects[i] = bound.column
	}

	// Placeholders bind positionally: SELECT literals appear in the
	// statement before WHERE literals.
	params := append(selectParams, whereParams...)

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT OR IGNORE INTO %s (%s) SELECT DISTINCT %s FROM %s",
		tableName(r.Head.Pred),
		strings.Join(cols, ", "),
		strings.Join(selects, ", "),
		strings.Join(from, ", "))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	return compiledRule{name: name, sql: b.String(), args: params}, nil
}

// saturate runs every rule until a full round changes nothing.
func (e *Engine) saturate() error {
	if e.saturated {
		return nil
	}
	for round := 0; round < e.maxRounds; round++ {
		changed := int64(0)
		for _, rule := range e.rules {
			result, err := e.db.Exec(rule.sql, rule.args...)
			if err != nil {
				return fmt.Errorf("rule %s: %w", rule.name, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("rule %s: rows affected: %w", rule.name, err)
			}
			changed += n
		}
		if changed == 0 {
			e.saturated = true
			return nil
		}
	}
	return errRoundLimit
}

var errRoundLimit = fmt.Errorf("saturation round limit reached")

// Query saturates and returns the predicate's tuples as an answer
// constraint: Unsat for an empty relation, otherwise DNF of equalities with
// one disjunct per tuple. Tuples come out in ascending column order.
func (e *Engine) Query(pred string) (Result, error) {
	decl, ok := e.preds[pred]
	if !ok {
		return Result{}, fmt.Errorf("unknown predicate %s", pred)
	}

	if err := e.saturate(); err != nil {
		if err == errRoundLimit {
			return Result{Status: Unknown, Reason: err.Error()}, nil
		}
		return Result{}, err
	}

	arity := len(decl.widths)
	cols := make([]string, arity)
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "),
		tableName(pred),
		strings.Join(cols, ", "))

	rows, err := e.db.Query(stmt)
	if err != nil {
		return Result{}, fmt.Errorf("query %s: %w", pred, err)
	}
	defer rows.Close()

	var disjuncts []Expr
	scan := make([]int64, arity)
	ptrs := make([]any, arity)
	for i := range scan {
		ptrs[i] = &scan[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, fmt.Errorf("scan %s: %w", pred, err)
		}
		disjuncts = append(disjuncts, tupleExpr(decl, scan))
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate %s: %w", pred, err)
	}

	switch len(disjuncts) {
	case 0:
		return Result{Status: Unsat}, nil
	case 1:
		return Result{Status: Sat, Answer: disjuncts[0]}, nil
	default:
		return Result{Status: Sat, Answer: Or{Args: disjuncts}}, nil
	}
}

// tupleExpr renders one tuple: a lone equality for arity 1, a conjunction of
// positional equalities otherwise.
func tupleExpr(decl predicate, tuple []int64) Expr {
	eqs := make([]Expr, len(tuple))
	for i, v := range tuple {
		eqs[i] = Eq{
			Var: Var{Name: fmt.Sprintf("V%d", i), Width: decl.widths[i]},
			Lit: Lit{Value: uint32(v), Width: decl.widths[i]},
		}
	}
	if len(eqs) == 1 {
		return eqs[0]
	}
	return And{Args: eqs}
}

// tableName quotes the predicate's table, keeping predicate names free of
// SQL keyword concerns.
func tableName(pred string) string {
	return `"rel_` + pred + `"`
}
