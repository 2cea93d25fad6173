package cse

import (
	"fmt"
	"io"

	"github.com/dekarrin/rpal/control"
	"github.com/dekarrin/rpal/internal/rpalerrors"
)

// builtinArity is the dispatch table for the primitive environment's named
// functions (spec §3.4, §4.4 rule 3). Conc is the only multi-argument
// builtin; it is the reason control.Prim exists at all (spec §9 open
// question: implement it curried rather than inlined).
var builtinArity = map[string]int{
	"Stem":         1,
	"Stern":        1,
	"Conc":         2,
	"Order":        1,
	"Isinteger":    1,
	"Isstring":     1,
	"Istuple":      1,
	"Isdummy":      1,
	"Istruthvalue": 1,
	"Isfunction":   1,
	"Print":        1,
}

func isBuiltin(name string) bool {
	_, ok := builtinArity[name]
	return ok
}

// applyBuiltin runs a fully-saturated primitive call, modeled after the
// funcInfo/unaryImpl-style dispatch table idiom, but by name since RPAL's
// primitive environment resolves builtins lexically rather than through a
// typed opcode.
func (m *Machine) applyBuiltin(name string, args []*control.Symbol) (*control.Symbol, error) {
	switch name {
	case "Stem":
		s := args[0]
		if s.Kind != control.KindStr {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "Stem: argument must be a string")
		}
		if len(s.Str) == 0 {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "Stem: argument must be non-empty")
		}
		return control.Str(string(s.Str[0])), nil

	case "Stern":
		s := args[0]
		if s.Kind != control.KindStr {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "Stern: argument must be a string")
		}
		if len(s.Str) == 0 {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "Stern: argument must be non-empty")
		}
		return control.Str(s.Str[1:]), nil

	case "Conc":
		a, b := args[0], args[1]
		if a.Kind != control.KindStr || b.Kind != control.KindStr {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "Conc: both arguments must be strings")
		}
		return control.Str(a.Str + b.Str), nil

	case "Order":
		t := args[0]
		if t.Kind != control.KindTup {
			return nil, rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "Order: argument must be a tuple")
		}
		return control.Int(len(t.Elements)), nil

	case "Isinteger":
		return control.Bool(args[0].Kind == control.KindInt), nil
	case "Isstring":
		return control.Bool(args[0].Kind == control.KindStr), nil
	case "Istuple":
		return control.Bool(args[0].Kind == control.KindTup), nil
	case "Isdummy":
		return control.Bool(args[0].Kind == control.KindDummy), nil
	case "Istruthvalue":
		return control.Bool(args[0].Kind == control.KindBool), nil
	case "Isfunction":
		return control.Bool(args[0].Kind == control.KindLambda), nil

	case "Print":
		fmt.Fprint(m.output(), Sprint(args[0]))
		return args[0], nil

	default:
		return nil, rpalerrors.Runtimef("unknown primitive %q", name)
	}
}

func (m *Machine) output() io.Writer {
	if m.Output == nil {
		return io.Discard
	}
	return m.Output
}
