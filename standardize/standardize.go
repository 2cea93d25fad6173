// Package standardize rewrites an AST-1 parse tree into AST-2 canonical
// form: only gamma, lambda, =, ",", tau, "->", aug, Y*, operators, and
// atoms remain (spec §4.2). Each of the eight rules below is applied
// post-order — children are standardized first — and returns a freshly
// built node rather than mutating the input in place, so the input tree
// (and any node within it still referenced elsewhere) is left untouched.
package standardize

import (
	"github.com/dekarrin/rpal/internal/rpalerrors"
	"github.com/dekarrin/rpal/syntax"
)

// Standardize rewrites n and all of its descendants into AST-2 form. It
// returns an error if n (or a standardized descendant) violates one of the
// fixed-arity shapes the rules below assume — this indicates a bug in the
// parser, since a syntactically valid parse never produces such a shape
// (spec §7, "Standardization" errors).
func Standardize(n *syntax.Node) (*syntax.Node, error) {
	children := make([]*syntax.Node, len(n.Children))
	for i, c := range n.Children {
		sc, err := Standardize(c)
		if err != nil {
			return nil, err
		}
		children[i] = sc
	}
	rewritten := &syntax.Node{Kind: n.Kind, Lexeme: n.Lexeme, Children: children, Source: n.Source}
	return applyRule(rewritten)
}

func applyRule(n *syntax.Node) (*syntax.Node, error) {
	switch n.Kind {
	case syntax.KindLet:
		return standardizeLet(n)
	case syntax.KindWhere:
		return standardizeWhere(n)
	case syntax.KindFcnForm:
		return standardizeFcnForm(n)
	case syntax.KindLambda:
		return standardizeLambda(n)
	case syntax.KindWithin:
		return standardizeWithin(n)
	case syntax.KindAt:
		return standardizeAt(n)
	case syntax.KindAndOp:
		return standardizeAndOp(n)
	case syntax.KindRec:
		return standardizeRec(n)
	default:
		return n, nil
	}
}

// Rule 1: let(=(X, E1), E2) -> gamma(lambda(X, E2), E1).
func standardizeLet(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() != 2 {
		return nil, rpalerrors.Standardizef("let: expected 2 children, found %d", n.Arity())
	}
	eq := n.Children[0]
	if eq.Kind != syntax.KindEqual || eq.Arity() != 2 {
		return nil, rpalerrors.Standardizef("let: first child must be a binding, found %s", eq.Kind)
	}
	x, e1 := eq.Children[0], eq.Children[1]
	e2 := n.Children[1]
	lambda := syntax.NewInterior(syntax.KindLambda, n.Source, x, e2)
	return syntax.NewInterior(syntax.KindGamma, n.Source, lambda, e1), nil
}

// Rule 2: where(P, =(X, E1)) -> let(=(X, E1), P), re-standardized.
func standardizeWhere(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() != 2 {
		return nil, rpalerrors.Standardizef("where: expected 2 children, found %d", n.Arity())
	}
	p, eq := n.Children[0], n.Children[1]
	letNode := syntax.NewInterior(syntax.KindLet, n.Source, eq, p)
	return standardizeLet(letNode)
}

// Rule 3: fcn_form(F, V1, ..., Vn, E) -> =(F, lambda(V1, ..., lambda(Vn, E))).
func standardizeFcnForm(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() < 3 {
		return nil, rpalerrors.Standardizef("fcn_form: expected at least 3 children, found %d", n.Arity())
	}
	f := n.Children[0]
	params := n.Children[1 : n.Arity()-1]
	body := n.Children[n.Arity()-1]
	lambda := nestLambdasImpl(params, body)
	return syntax.NewInterior(syntax.KindEqual, n.Source, f, lambda), nil
}

// Rule 4: lambda(V1, ..., Vn, E) with n>1 -> lambda(V1, lambda(V2, ..., lambda(Vn, E))).
func standardizeLambda(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() < 2 {
		return nil, rpalerrors.Standardizef("lambda: expected at least 2 children, found %d", n.Arity())
	}
	if n.Arity() == 2 {
		return n, nil
	}
	params := n.Children[:n.Arity()-1]
	body := n.Children[n.Arity()-1]
	return nestLambdasImpl(params, body), nil
}

func nestLambdasImpl(params []*syntax.Node, body *syntax.Node) *syntax.Node {
	if len(params) == 1 {
		return syntax.NewInterior(syntax.KindLambda, params[0].Source, params[0], body)
	}
	inner := nestLambdasImpl(params[1:], body)
	return syntax.NewInterior(syntax.KindLambda, params[0].Source, params[0], inner)
}

// Rule 5: within(=(X1, E1), =(X2, E2)) -> =(X2, gamma(lambda(X1, E2), E1)).
func standardizeWithin(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() != 2 {
		return nil, rpalerrors.Standardizef("within: expected 2 children, found %d", n.Arity())
	}
	eq1, eq2 := n.Children[0], n.Children[1]
	if eq1.Kind != syntax.KindEqual || eq2.Kind != syntax.KindEqual {
		return nil, rpalerrors.Standardizef("within: both children must be bindings")
	}
	x1, e1 := eq1.Children[0], eq1.Children[1]
	x2, e2 := eq2.Children[0], eq2.Children[1]
	lambda := syntax.NewInterior(syntax.KindLambda, n.Source, x1, e2)
	gamma := syntax.NewInterior(syntax.KindGamma, n.Source, lambda, e1)
	return syntax.NewInterior(syntax.KindEqual, n.Source, x2, gamma), nil
}

// Rule 6: @(E1, N, E2) -> gamma(gamma(N, E1), E2).
func standardizeAt(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() != 3 {
		return nil, rpalerrors.Standardizef("at: expected 3 children, found %d", n.Arity())
	}
	e1, idNode, e2 := n.Children[0], n.Children[1], n.Children[2]
	inner := syntax.NewInterior(syntax.KindGamma, n.Source, idNode, e1)
	return syntax.NewInterior(syntax.KindGamma, n.Source, inner, e2), nil
}

// Rule 7: and_op(=(X1,E1), ..., =(Xn,En)) -> =(,(X1,...,Xn), tau(E1,...,En)).
func standardizeAndOp(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() < 2 {
		return nil, rpalerrors.Standardizef("and_op: expected at least 2 children, found %d", n.Arity())
	}
	xs := make([]*syntax.Node, n.Arity())
	es := make([]*syntax.Node, n.Arity())
	for i, eq := range n.Children {
		if eq.Kind != syntax.KindEqual || eq.Arity() != 2 {
			return nil, rpalerrors.Standardizef("and_op: child %d must be a binding, found %s", i, eq.Kind)
		}
		xs[i] = eq.Children[0]
		es[i] = eq.Children[1]
	}
	comma := syntax.NewInterior(syntax.KindComma, n.Source, xs...)
	tau := syntax.NewInterior(syntax.KindTau, n.Source, es...)
	return syntax.NewInterior(syntax.KindEqual, n.Source, comma, tau), nil
}

// Rule 8: rec(=(X, E)) -> =(X, gamma(Y*, lambda(X, E))).
func standardizeRec(n *syntax.Node) (*syntax.Node, error) {
	if n.Arity() != 1 {
		return nil, rpalerrors.Standardizef("rec: expected 1 child, found %d", n.Arity())
	}
	eq := n.Children[0]
	if eq.Kind != syntax.KindEqual || eq.Arity() != 2 {
		return nil, rpalerrors.Standardizef("rec: child must be a binding, found %s", eq.Kind)
	}
	x, e := eq.Children[0], eq.Children[1]
	lambda := syntax.NewInterior(syntax.KindLambda, n.Source, x, e)
	ystar := syntax.NewAtom(syntax.KindYStar, "Y*", n.Source)
	gamma := syntax.NewInterior(syntax.KindGamma, n.Source, ystar, lambda)
	return syntax.NewInterior(syntax.KindEqual, n.Source, x, gamma), nil
}
