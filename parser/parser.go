// Package parser implements the recursive-descent predictive parser for
// RPAL source (spec §4.1). Each grammar rule below is one function that
// consumes tokens from a cursor and returns the subtree it built, instead of
// the original implementation's shared mutable stack: the result is a
// straightforward parameter-and-return-value tree build with no hidden
// global state, matching the one-node-per-call idiom used for a single
// pre-order build elsewhere in this codebase.
package parser

import (
	"strconv"

	"github.com/dekarrin/rpal/internal/rpalerrors"
	"github.com/dekarrin/rpal/lex"
	"github.com/dekarrin/rpal/syntax"
)

// Parse tokenizes and parses src as a complete RPAL program, returning the
// AST-1 root. A syntax error aborts at the first mismatch (spec §9 open
// question: stop on first error rather than print-and-continue).
func Parse(src string) (*syntax.Node, error) {
	toks, err := lex.Scan(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-scanned token stream. toks must end with an
// END token, as lex.Scan always produces.
func ParseTokens(toks []lex.Token) (*syntax.Node, error) {
	p := &parser{toks: toks}
	root, err := p.parseE()
	if err != nil {
		return nil, err
	}
	if p.peek().Class != lex.End {
		return nil, rpalerrors.Syntaxf(
			"line %d, col %d: expected end of input, found %s",
			p.peek().Line, p.peek().LinePos, p.peek(),
		)
	}
	return root, nil
}

type parser struct {
	toks []lex.Token
	pos  int
}

func (p *parser) peek() lex.Token {
	return p.toks[p.pos]
}

func (p *parser) next() lex.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(lexeme string) bool {
	return p.peek().Lexeme == lexeme
}

func (p *parser) src() *lex.Token {
	t := p.peek()
	return &t
}

func (p *parser) expect(lexeme string, construct string) error {
	if !p.at(lexeme) {
		t := p.peek()
		return rpalerrors.Syntaxf(
			"line %d, col %d: expected %s, found %s", t.Line, t.LinePos, construct, t,
		)
	}
	p.next()
	return nil
}

// E -> 'let' D 'in' E | 'fn' Vb+ '.' E | Ew
func (p *parser) parseE() (*syntax.Node, error) {
	src := p.src()
	switch {
	case p.peek().Class == lex.Keyword && p.at("let"):
		p.next()
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		if err := p.expect("in", "'in' after let-declaration"); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindLet, src, d, e), nil

	case p.peek().Class == lex.Keyword && p.at("fn"):
		p.next()
		var params []*syntax.Node
		for p.peek().Class == lex.Identifier || p.at("(") {
			v, err := p.parseVb()
			if err != nil {
				return nil, err
			}
			params = append(params, v)
		}
		if len(params) == 0 {
			t := p.peek()
			return nil, rpalerrors.Syntaxf(
				"line %d, col %d: expected at least one parameter after 'fn', found %s",
				t.Line, t.LinePos, t,
			)
		}
		if err := p.expect(".", "'.' after fn parameters"); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		children := append(params, e)
		return syntax.NewInterior(syntax.KindLambda, src, children...), nil

	default:
		return p.parseEw()
	}
}

// Ew -> T ('where' Dr)?
func (p *parser) parseEw() (*syntax.Node, error) {
	src := p.src()
	t, err := p.parseT()
	if err != nil {
		return nil, err
	}
	if p.at("where") {
		p.next()
		dr, err := p.parseDr()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindWhere, src, t, dr), nil
	}
	return t, nil
}

// T -> Ta (',' Ta)*
func (p *parser) parseT() (*syntax.Node, error) {
	src := p.src()
	first, err := p.parseTa()
	if err != nil {
		return nil, err
	}
	children := []*syntax.Node{first}
	for p.at(",") {
		p.next()
		next, err := p.parseTa()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return syntax.NewInterior(syntax.KindTau, src, children...), nil
}

// Ta -> Tc ('aug' Tc)*  (left-associative)
func (p *parser) parseTa() (*syntax.Node, error) {
	node, err := p.parseTc()
	if err != nil {
		return nil, err
	}
	for p.at("aug") {
		src := p.src()
		p.next()
		rhs, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		node = syntax.NewInterior(syntax.KindAug, src, node, rhs)
	}
	return node, nil
}

// Tc -> B ('->' Tc '|' Tc)?  (right-associative conditional)
func (p *parser) parseTc() (*syntax.Node, error) {
	src := p.src()
	b, err := p.parseB()
	if err != nil {
		return nil, err
	}
	if p.at("->") {
		p.next()
		thenE, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		if err := p.expect("|", "'|' in conditional expression"); err != nil {
			return nil, err
		}
		elseE, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindConditional, src, b, thenE, elseE), nil
	}
	return b, nil
}

// B -> Bt ('or' Bt)*
func (p *parser) parseB() (*syntax.Node, error) {
	node, err := p.parseBt()
	if err != nil {
		return nil, err
	}
	for p.at("or") {
		src := p.src()
		p.next()
		rhs, err := p.parseBt()
		if err != nil {
			return nil, err
		}
		node = syntax.NewInterior(syntax.KindOpOr, src, node, rhs)
	}
	return node, nil
}

// Bt -> Bs ('&' Bs)*
func (p *parser) parseBt() (*syntax.Node, error) {
	node, err := p.parseBs()
	if err != nil {
		return nil, err
	}
	for p.at("&") {
		src := p.src()
		p.next()
		rhs, err := p.parseBs()
		if err != nil {
			return nil, err
		}
		node = syntax.NewInterior(syntax.KindOpAnd, src, node, rhs)
	}
	return node, nil
}

// Bs -> 'not' Bp | Bp
func (p *parser) parseBs() (*syntax.Node, error) {
	if p.at("not") {
		src := p.src()
		p.next()
		operand, err := p.parseBp()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindOpNot, src, operand), nil
	}
	return p.parseBp()
}

var compareOpMap = map[string]string{
	">": "gr", ">=": "ge", "<": "ls", "<=": "le",
	"gr": "gr", "ge": "ge", "ls": "ls", "le": "le", "eq": "eq", "ne": "ne",
}

// Bp -> A (cmpop A)?
func (p *parser) parseBp() (*syntax.Node, error) {
	src := p.src()
	lhs, err := p.parseA()
	if err != nil {
		return nil, err
	}
	if mapped, ok := compareOpMap[p.peek().Lexeme]; ok {
		p.next()
		rhs, err := p.parseA()
		if err != nil {
			return nil, err
		}
		node := syntax.NewInterior(syntax.KindOpCompare, src, lhs, rhs)
		node.Lexeme = mapped
		return node, nil
	}
	return lhs, nil
}

// A -> ('+'|'-')? At (('+'|'-') At)*
func (p *parser) parseA() (*syntax.Node, error) {
	var node *syntax.Node

	if p.at("+") || p.at("-") {
		src := p.src()
		unary := p.next().Lexeme
		operand, err := p.parseAt()
		if err != nil {
			return nil, err
		}
		if unary == "-" {
			node = syntax.NewInterior(syntax.KindOpNeg, src, operand)
		} else {
			node = operand
		}
	} else {
		var err error
		node, err = p.parseAt()
		if err != nil {
			return nil, err
		}
	}

	for p.at("+") || p.at("-") {
		src := p.src()
		op := p.next().Lexeme
		rhs, err := p.parseAt()
		if err != nil {
			return nil, err
		}
		kind := syntax.KindOpPlus
		if op == "-" {
			kind = syntax.KindOpMinus
		}
		node = syntax.NewInterior(kind, src, node, rhs)
	}
	return node, nil
}

// At -> Af (('*'|'/') Af)*
func (p *parser) parseAt() (*syntax.Node, error) {
	node, err := p.parseAf()
	if err != nil {
		return nil, err
	}
	for p.at("*") || p.at("/") {
		src := p.src()
		op := p.next().Lexeme
		rhs, err := p.parseAf()
		if err != nil {
			return nil, err
		}
		kind := syntax.KindOpMul
		if op == "/" {
			kind = syntax.KindOpDiv
		}
		node = syntax.NewInterior(kind, src, node, rhs)
	}
	return node, nil
}

// Af -> Ap ('**' Af)?  (right-associative)
func (p *parser) parseAf() (*syntax.Node, error) {
	src := p.src()
	lhs, err := p.parseAp()
	if err != nil {
		return nil, err
	}
	if p.at("**") {
		p.next()
		rhs, err := p.parseAf()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindOpPow, src, lhs, rhs), nil
	}
	return lhs, nil
}

// Ap -> R ('@' identifier R)*
func (p *parser) parseAp() (*syntax.Node, error) {
	node, err := p.parseR()
	if err != nil {
		return nil, err
	}
	for p.at("@") {
		src := p.src()
		p.next()
		if p.peek().Class != lex.Identifier {
			t := p.peek()
			return nil, rpalerrors.Syntaxf(
				"line %d, col %d: expected identifier after '@', found %s", t.Line, t.LinePos, t,
			)
		}
		idTok := p.next()
		id := syntax.NewAtom(syntax.KindIdentifier, idTok.Lexeme, &idTok)
		rhs, err := p.parseR()
		if err != nil {
			return nil, err
		}
		node = syntax.NewInterior(syntax.KindAt, src, node, id, rhs)
	}
	return node, nil
}

func startsRn(t lex.Token) bool {
	switch t.Class {
	case lex.Identifier, lex.Integer, lex.String:
		return true
	}
	switch t.Lexeme {
	case "true", "false", "nil", "dummy", "(":
		return true
	}
	return false
}

// R -> Rn Rn*  (left-associative gamma application via juxtaposition)
func (p *parser) parseR() (*syntax.Node, error) {
	node, err := p.parseRn()
	if err != nil {
		return nil, err
	}
	for startsRn(p.peek()) {
		src := p.src()
		rhs, err := p.parseRn()
		if err != nil {
			return nil, err
		}
		node = syntax.NewInterior(syntax.KindGamma, src, node, rhs)
	}
	return node, nil
}

// Rn -> identifier | integer | string | 'true' | 'false' | 'nil' | 'dummy' | '(' E ')'
func (p *parser) parseRn() (*syntax.Node, error) {
	t := p.peek()
	switch {
	case t.Class == lex.Identifier:
		p.next()
		return syntax.NewAtom(syntax.KindIdentifier, t.Lexeme, &t), nil
	case t.Class == lex.Integer:
		p.next()
		if _, err := strconv.Atoi(t.Lexeme); err != nil {
			return nil, rpalerrors.Syntaxf("line %d, col %d: malformed integer literal %q", t.Line, t.LinePos, t.Lexeme)
		}
		return syntax.NewAtom(syntax.KindInteger, t.Lexeme, &t), nil
	case t.Class == lex.String:
		p.next()
		return syntax.NewAtom(syntax.KindString, t.Lexeme, &t), nil
	case t.Lexeme == "true":
		p.next()
		return syntax.NewAtom(syntax.KindTrue, t.Lexeme, &t), nil
	case t.Lexeme == "false":
		p.next()
		return syntax.NewAtom(syntax.KindFalse, t.Lexeme, &t), nil
	case t.Lexeme == "nil":
		p.next()
		return syntax.NewAtom(syntax.KindNil, t.Lexeme, &t), nil
	case t.Lexeme == "dummy":
		p.next()
		return syntax.NewAtom(syntax.KindDummy, t.Lexeme, &t), nil
	case t.Lexeme == "(":
		p.next()
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")", "')' to close parenthesized expression"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, rpalerrors.Syntaxf("line %d, col %d: unexpected token %s", t.Line, t.LinePos, t)
	}
}

// D -> Da ('within' D)?
func (p *parser) parseD() (*syntax.Node, error) {
	src := p.src()
	da, err := p.parseDa()
	if err != nil {
		return nil, err
	}
	if p.at("within") {
		p.next()
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindWithin, src, da, d), nil
	}
	return da, nil
}

// Da -> Dr ('and' Dr)*
func (p *parser) parseDa() (*syntax.Node, error) {
	src := p.src()
	first, err := p.parseDr()
	if err != nil {
		return nil, err
	}
	children := []*syntax.Node{first}
	for p.at("and") {
		p.next()
		next, err := p.parseDr()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return syntax.NewInterior(syntax.KindAndOp, src, children...), nil
}

// Dr -> 'rec'? Db
func (p *parser) parseDr() (*syntax.Node, error) {
	src := p.src()
	isRec := false
	if p.at("rec") {
		p.next()
		isRec = true
	}
	db, err := p.parseDb()
	if err != nil {
		return nil, err
	}
	if isRec {
		return syntax.NewInterior(syntax.KindRec, src, db), nil
	}
	return db, nil
}

// Db -> '(' D ')' | id Vb+ '=' E | id '=' E | Vl '=' E
func (p *parser) parseDb() (*syntax.Node, error) {
	if p.at("(") {
		p.next()
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")", "')' to close parenthesized definition"); err != nil {
			return nil, err
		}
		return d, nil
	}

	if p.peek().Class != lex.Identifier {
		t := p.peek()
		return nil, rpalerrors.Syntaxf("line %d, col %d: expected a definition, found %s", t.Line, t.LinePos, t)
	}

	// Lookahead to disambiguate id-vb-form / id=E / Vl=E without a shared
	// mutable token stack: a saved cursor position is cheap and exact.
	next := p.toks[p.pos+1]

	switch {
	case next.Lexeme == "(" || next.Class == lex.Identifier:
		src := p.src()
		idTok := p.next()
		id := syntax.NewAtom(syntax.KindIdentifier, idTok.Lexeme, &idTok)
		params := []*syntax.Node{id}
		for p.peek().Class == lex.Identifier || p.at("(") {
			v, err := p.parseVb()
			if err != nil {
				return nil, err
			}
			params = append(params, v)
		}
		if err := p.expect("=", "'=' after function-form parameters"); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		children := append(params, e)
		return syntax.NewInterior(syntax.KindFcnForm, src, children...), nil

	case next.Lexeme == "=":
		src := p.src()
		idTok := p.next()
		id := syntax.NewAtom(syntax.KindIdentifier, idTok.Lexeme, &idTok)
		p.next() // '='
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindEqual, src, id, e), nil

	case next.Lexeme == ",":
		src := p.src()
		vl, err := p.parseVl()
		if err != nil {
			return nil, err
		}
		if err := p.expect("=", "'=' after tuple-binding identifier list"); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return syntax.NewInterior(syntax.KindEqual, src, vl, e), nil

	default:
		t := p.peek()
		return nil, rpalerrors.Syntaxf(
			"line %d, col %d: malformed definition after identifier %q", t.Line, t.LinePos, p.peek().Lexeme,
		)
	}
}

// Vb -> '(' Vl? ')' | identifier
func (p *parser) parseVb() (*syntax.Node, error) {
	src := p.src()
	if p.at("(") {
		p.next()
		if p.peek().Class == lex.Identifier {
			vl, err := p.parseVl()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")", "')' to close parameter list"); err != nil {
				return nil, err
			}
			return vl, nil
		}
		if err := p.expect(")", "')' to close empty parameter list"); err != nil {
			return nil, err
		}
		return syntax.NewAtom(syntax.KindEmptyParams, "()", src), nil
	}
	if p.peek().Class == lex.Identifier {
		t := p.next()
		return syntax.NewAtom(syntax.KindIdentifier, t.Lexeme, &t), nil
	}
	t := p.peek()
	return nil, rpalerrors.Syntaxf("line %d, col %d: expected a parameter, found %s", t.Line, t.LinePos, t)
}

// Vl -> identifier (',' identifier)*
//
// The grammar table names this identifier (',' identifier)+, but a bound
// variable list also appears with exactly one name inside a parenthesized
// Vb (spec §4.1's Vb rule: '(' Vl? ')'); when only one identifier is
// present, Vl yields the bare identifier rather than a degenerate one-child
// comma node (mirrors the reference parser, which only wraps in a comma
// node when it collected more than one name).
func (p *parser) parseVl() (*syntax.Node, error) {
	src := p.src()
	if p.peek().Class != lex.Identifier {
		t := p.peek()
		return nil, rpalerrors.Syntaxf("line %d, col %d: expected an identifier, found %s", t.Line, t.LinePos, t)
	}
	firstTok := p.next()
	children := []*syntax.Node{syntax.NewAtom(syntax.KindIdentifier, firstTok.Lexeme, &firstTok)}
	for p.at(",") {
		p.next()
		if p.peek().Class != lex.Identifier {
			t := p.peek()
			return nil, rpalerrors.Syntaxf("line %d, col %d: expected an identifier after ',', found %s", t.Line, t.LinePos, t)
		}
		idTok := p.next()
		children = append(children, syntax.NewAtom(syntax.KindIdentifier, idTok.Lexeme, &idTok))
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return syntax.NewInterior(syntax.KindComma, src, children...), nil
}
