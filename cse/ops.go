package cse

import (
	"github.com/dekarrin/rpal/control"
	"github.com/dekarrin/rpal/internal/rpalerrors"
)

// applyUnary implements spec §4.4 rule 5's unary half: neg negates an
// integer, not inverts a boolean. Any other operand kind is a type error.
func applyUnary(op string, rand *control.Symbol) (*control.Symbol, error) {
	switch op {
	case "neg":
		if rand.Kind != control.KindInt {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "neg: operand must be an integer, got %s", rand.Kind)
		}
		return control.Int(-rand.IntVal), nil
	case "not":
		if rand.Kind != control.KindBool {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "not: operand must be a truth value, got %s", rand.Kind)
		}
		return control.Bool(!rand.BoolVal), nil
	default:
		return nil, rpalerrors.Runtimef("unknown unary operator %q", op)
	}
}

// applyBinary implements spec §4.4 rule 5's binary half. a is the first
// operand popped (the left-hand operand of the source expression), b the
// second (the right-hand operand) — confirmed by tracing how the flattener
// emits a Bop node's own symbol before its children's, so the left operand
// is evaluated last and therefore sits on top of the stack when the
// operator fires.
func applyBinary(op string, a, b *control.Symbol) (*control.Symbol, error) {
	switch op {
	case "+", "-", "*", "/", "**":
		if a.Kind != control.KindInt || b.Kind != control.KindInt {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "%s: both operands must be integers", op)
		}
		switch op {
		case "+":
			return control.Int(a.IntVal + b.IntVal), nil
		case "-":
			return control.Int(a.IntVal - b.IntVal), nil
		case "*":
			return control.Int(a.IntVal * b.IntVal), nil
		case "/":
			if b.IntVal == 0 {
				return nil, rpalerrors.WrapRuntime(rpalerrors.ErrDivisionByZero, "division by zero")
			}
			return control.Int(a.IntVal / b.IntVal), nil
		case "**":
			return control.Int(intPow(a.IntVal, b.IntVal)), nil
		}
	case "&", "or":
		if a.Kind != control.KindBool || b.Kind != control.KindBool {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "%s: both operands must be truth values", op)
		}
		if op == "&" {
			return control.Bool(a.BoolVal && b.BoolVal), nil
		}
		return control.Bool(a.BoolVal || b.BoolVal), nil

	case "eq", "ne":
		same := a.Kind == b.Kind && a.Data() == b.Data()
		if op == "eq" {
			return control.Bool(same), nil
		}
		return control.Bool(!same), nil

	case "ls", "le", "gr", "ge":
		if a.Kind != control.KindInt || b.Kind != control.KindInt {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "%s: both operands must be integers", op)
		}
		switch op {
		case "ls":
			return control.Bool(a.IntVal < b.IntVal), nil
		case "le":
			return control.Bool(a.IntVal <= b.IntVal), nil
		case "gr":
			return control.Bool(a.IntVal > b.IntVal), nil
		case "ge":
			return control.Bool(a.IntVal >= b.IntVal), nil
		}

	case "aug":
		if a.Kind != control.KindTup {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "aug: left operand must be a tuple")
		}
		elems := make([]*control.Symbol, len(a.Elements))
		copy(elems, a.Elements)
		if b.Kind == control.KindTup {
			elems = append(elems, b.Elements...)
		} else {
			elems = append(elems, b)
		}
		return control.Tup(elems...), nil
	}
	return nil, rpalerrors.Runtimef("unknown binary operator %q", op)
}

func intPow(base, exp int) int {
	if exp < 0 {
		return 0
	}
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
