// Package flatten turns a standardized AST-2 tree into the Delta/B control
// structure forest the CSE machine executes (spec §4.3): a pre-order walk
// that special-cases lambda nodes (emit a Lambda symbol over a fresh Delta)
// and conditional nodes (emit the then/else branches as Deltas plus a Beta
// marker and a B-wrapped condition), and otherwise emits each node's own
// symbol followed by its flattened children.
package flatten

import (
	"strconv"

	"github.com/dekarrin/rpal/control"
	"github.com/dekarrin/rpal/internal/rpalerrors"
	"github.com/dekarrin/rpal/syntax"
)

// Flatten walks a standardized tree and returns the root Delta block (spec
// §4.3: "the machine's initial control is [E(0), Delta0]"). lambdaIndex and
// deltaIndex start fresh at 1 and 0 respectively, mirroring the reference
// flattener's counters; they exist only to give each block a stable
// identity for diagnostics; the CSE machine itself never branches on them.
func Flatten(root *syntax.Node) (*control.Symbol, error) {
	f := &flattener{lambdaIndex: 1, deltaIndex: 0}
	return f.delta(root)
}

type flattener struct {
	lambdaIndex int
	deltaIndex  int
}

func (f *flattener) delta(n *syntax.Node) (*control.Symbol, error) {
	idx := f.deltaIndex
	f.deltaIndex++
	symbols, err := f.preOrder(n)
	if err != nil {
		return nil, err
	}
	return control.NewDelta(idx, symbols), nil
}

func (f *flattener) b(n *syntax.Node) (*control.Symbol, error) {
	symbols, err := f.preOrder(n)
	if err != nil {
		return nil, err
	}
	return control.NewB(symbols), nil
}

func (f *flattener) lambda(n *syntax.Node) (*control.Symbol, error) {
	if n.Arity() != 2 {
		return nil, rpalerrors.Standardizef("lambda: expected 2 children after standardization, found %d", n.Arity())
	}
	params, err := paramNames(n.Children[0])
	if err != nil {
		return nil, err
	}
	body, err := f.delta(n.Children[1])
	if err != nil {
		return nil, err
	}
	idx := f.lambdaIndex
	f.lambdaIndex++
	return control.NewLambda(idx, params, body), nil
}

func paramNames(n *syntax.Node) ([]string, error) {
	if n.Kind == syntax.KindComma {
		names := make([]string, len(n.Children))
		for i, c := range n.Children {
			if c.Kind != syntax.KindIdentifier {
				return nil, rpalerrors.Standardizef("lambda parameter list: expected identifier, found %s", c.Kind)
			}
			names[i] = c.Lexeme
		}
		return names, nil
	}
	if n.Kind != syntax.KindIdentifier {
		return nil, rpalerrors.Standardizef("lambda parameter: expected identifier, found %s", n.Kind)
	}
	return []string{n.Lexeme}, nil
}

// preOrder implements CSEMachineFactory.get_pre_order_traverse: a lambda
// node contributes exactly one Lambda symbol (its body becomes a fresh
// nested Delta, not further symbols of the current sequence); a "->"
// conditional contributes its then/else Deltas, a Beta marker, and a
// B-wrapped condition, in that order; everything else contributes its own
// symbol followed by each child's flattened symbols in turn.
func (f *flattener) preOrder(n *syntax.Node) ([]*control.Symbol, error) {
	switch n.Kind {
	case syntax.KindLambda:
		l, err := f.lambda(n)
		if err != nil {
			return nil, err
		}
		return []*control.Symbol{l}, nil

	case syntax.KindConditional:
		if n.Arity() != 3 {
			return nil, rpalerrors.Standardizef("conditional: expected 3 children, found %d", n.Arity())
		}
		thenDelta, err := f.delta(n.Children[1])
		if err != nil {
			return nil, err
		}
		elseDelta, err := f.delta(n.Children[2])
		if err != nil {
			return nil, err
		}
		condB, err := f.b(n.Children[0])
		if err != nil {
			return nil, err
		}
		return []*control.Symbol{thenDelta, elseDelta, control.Beta(), condB}, nil

	default:
		sym, err := symbolFor(n)
		if err != nil {
			return nil, err
		}
		out := []*control.Symbol{sym}
		for _, c := range n.Children {
			childSyms, err := f.preOrder(c)
			if err != nil {
				return nil, err
			}
			out = append(out, childSyms...)
		}
		return out, nil
	}
}

// symbolFor converts a single AST-2 node (excluding lambda/conditional,
// handled structurally above) into its control symbol.
func symbolFor(n *syntax.Node) (*control.Symbol, error) {
	switch n.Kind {
	case syntax.KindOpNot:
		return control.Uop("not"), nil
	case syntax.KindOpNeg:
		return control.Uop("neg"), nil
	case syntax.KindOpPlus:
		return control.Bop("+"), nil
	case syntax.KindOpMinus:
		return control.Bop("-"), nil
	case syntax.KindOpMul:
		return control.Bop("*"), nil
	case syntax.KindOpDiv:
		return control.Bop("/"), nil
	case syntax.KindOpPow:
		return control.Bop("**"), nil
	case syntax.KindOpAnd:
		return control.Bop("&"), nil
	case syntax.KindOpOr:
		return control.Bop("or"), nil
	case syntax.KindAug:
		return control.Bop("aug"), nil
	case syntax.KindOpCompare:
		// KindOpCompare is the one binary-operator kind whose specific
		// lexeme (gr/ge/ls/le/eq/ne) the parser stamps onto the node,
		// since one Kind covers six distinct operators.
		return control.Bop(n.Lexeme), nil
	case syntax.KindGamma:
		return control.Gamma(), nil
	case syntax.KindTau:
		return control.TauMarker(n.Arity()), nil
	case syntax.KindYStar:
		return control.Ystar(), nil
	case syntax.KindIdentifier:
		return control.Id(n.Lexeme), nil
	case syntax.KindInteger:
		v, err := strconv.Atoi(n.Lexeme)
		if err != nil {
			return nil, rpalerrors.Standardizef("malformed integer literal %q", n.Lexeme)
		}
		return control.Int(v), nil
	case syntax.KindString:
		return control.Str(unquote(n.Lexeme)), nil
	case syntax.KindTrue:
		return control.Bool(true), nil
	case syntax.KindFalse:
		return control.Bool(false), nil
	case syntax.KindNil:
		return control.Tup(), nil
	case syntax.KindDummy:
		return control.Dummy(), nil
	default:
		return nil, rpalerrors.Standardizef("unexpected node kind %s after standardization", n.Kind)
	}
}

// unquote strips a string literal's surrounding single quotes. Escape
// sequences are left as literal backslash pairs (spec makes no mention of
// the CSE machine itself decoding them; only the lexer's grammar
// constrains which escapes are legal).
func unquote(lexeme string) string {
	if len(lexeme) >= 2 {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}
