// Package control defines the control-stack symbols and environment frames
// the CSE machine operates on (spec §3.3, §3.4): a tagged Symbol type
// covering atoms, operators, and control markers, modeled after the
// vType-discriminated Value struct idiom used elsewhere in this codebase's
// lineage, plus the Environment frame type with parent-chained lookup.
package control

import "fmt"

// Kind is the closed set of control-symbol tags.
type Kind int

const (
	KindInt Kind = iota
	KindStr
	KindBool
	KindId
	KindDummy
	KindTup
	KindUop
	KindBop
	KindGamma
	KindLambda
	KindDelta
	KindB
	KindBeta
	KindTauMarker
	KindYstar
	KindEta
	KindEnv
	KindPrim
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindStr:
		return "Str"
	case KindBool:
		return "Bool"
	case KindId:
		return "Id"
	case KindDummy:
		return "Dummy"
	case KindTup:
		return "Tup"
	case KindUop:
		return "Uop"
	case KindBop:
		return "Bop"
	case KindGamma:
		return "Gamma"
	case KindLambda:
		return "Lambda"
	case KindDelta:
		return "Delta"
	case KindB:
		return "B"
	case KindBeta:
		return "Beta"
	case KindTauMarker:
		return "Tau"
	case KindYstar:
		return "Ystar"
	case KindEta:
		return "Eta"
	case KindEnv:
		return "E"
	case KindPrim:
		return "Prim"
	default:
		panic(fmt.Sprintf("unknown control symbol kind: %d", k))
	}
}

// Symbol is a tagged control-stack value. Which fields are meaningful
// depends on Kind; see the constructors below for the intended field set
// per kind, mirroring the one-struct-many-kinds idiom used for the syntax
// tree (package syntax) rather than a type per kind.
type Symbol struct {
	Kind Kind

	// Int, Bool
	IntVal  int
	BoolVal bool

	// Str, Id, Dummy (Dummy carries no data but is still a distinct kind),
	// Uop/Bop (operator name, e.g. "neg", "+"), and a free/primitive Id's
	// lexeme.
	Str string

	// Tup
	Elements []*Symbol

	// Lambda
	LambdaIndex    int
	Params         []string
	Body           *Symbol // Kind == KindDelta
	CapturedEnv    int
	CapturedEnvSet bool

	// Delta, B
	DeltaIndex int // only meaningful for Delta; B has no index
	Symbols    []*Symbol

	// Tau marker
	TauArity int

	// Eta
	EtaIndex  int
	EtaEnv    int
	EtaParam  string
	EtaLambda *Symbol // Kind == KindLambda

	// Env: a control-stack marker referencing an Environment by index.
	EnvIndex int

	// Prim: a partially-applied curried builtin (spec §9 decision on
	// Conc's currying, generalized to any multi-argument builtin).
	PrimName  string
	PrimArgs  []*Symbol
	PrimArity int
}

func Int(v int) *Symbol    { return &Symbol{Kind: KindInt, IntVal: v} }
func Bool(v bool) *Symbol  { return &Symbol{Kind: KindBool, BoolVal: v} }
func Str(v string) *Symbol { return &Symbol{Kind: KindStr, Str: v} }
func Id(name string) *Symbol { return &Symbol{Kind: KindId, Str: name} }
func Dummy() *Symbol       { return &Symbol{Kind: KindDummy} }
func Tup(elems ...*Symbol) *Symbol {
	return &Symbol{Kind: KindTup, Elements: elems}
}
func Uop(name string) *Symbol { return &Symbol{Kind: KindUop, Str: name} }
func Bop(name string) *Symbol { return &Symbol{Kind: KindBop, Str: name} }
func Gamma() *Symbol          { return &Symbol{Kind: KindGamma} }
func Beta() *Symbol           { return &Symbol{Kind: KindBeta} }
func Ystar() *Symbol          { return &Symbol{Kind: KindYstar} }
func TauMarker(n int) *Symbol { return &Symbol{Kind: KindTauMarker, TauArity: n} }

// NewLambda builds a Lambda symbol with the given unique index, parameter
// names (in positional order), and body Delta. Its captured environment is
// set later, when the Lambda symbol is pushed onto the stack (spec §4.4
// rule 2).
func NewLambda(index int, params []string, body *Symbol) *Symbol {
	return &Symbol{Kind: KindLambda, LambdaIndex: index, Params: params, Body: body}
}

// NewDelta builds a named control block with the given unique index.
func NewDelta(index int, symbols []*Symbol) *Symbol {
	return &Symbol{Kind: KindDelta, DeltaIndex: index, Symbols: symbols}
}

// NewB builds an inline (unnamed) control block.
func NewB(symbols []*Symbol) *Symbol {
	return &Symbol{Kind: KindB, Symbols: symbols}
}

// NewEnvMarker builds the control-stack marker for environment index k,
// pushed onto control when a Lambda is applied (spec §4.4 rule 3) so that
// its eventual pop signals the frame's exit.
func NewEnvMarker(index int) *Symbol {
	return &Symbol{Kind: KindEnv, EnvIndex: index}
}

// NewEta builds a suspended recursive closure from the Lambda that Ystar
// was applied to.
func NewEta(lambda *Symbol) *Symbol {
	return &Symbol{
		Kind:      KindEta,
		EtaIndex:  lambda.LambdaIndex,
		EtaEnv:    lambda.CapturedEnv,
		EtaParam:  lambda.Params[0],
		EtaLambda: lambda,
	}
}

// NewPrim builds a fresh partial application of the named primitive with no
// arguments bound yet.
func NewPrim(name string, arity int) *Symbol {
	return &Symbol{Kind: KindPrim, PrimName: name, PrimArity: arity}
}

// WithArg returns a copy of a Prim symbol with arg appended to its bound
// arguments, leaving the receiver unmodified.
func (s *Symbol) WithArg(arg *Symbol) *Symbol {
	args := make([]*Symbol, len(s.PrimArgs)+1)
	copy(args, s.PrimArgs)
	args[len(args)-1] = arg
	return &Symbol{Kind: KindPrim, PrimName: s.PrimName, PrimArgs: args, PrimArity: s.PrimArity}
}

// Ready reports whether a Prim has collected all the arguments it needs.
func (s *Symbol) Ready() bool {
	return len(s.PrimArgs) >= s.PrimArity
}

// Data returns the symbol's raw underlying value as a string, used for eq/ne
// comparison (spec §4.4 rule 5 decision: compare unquoted content, not the
// printed/quoted form that Lexeme produces).
func (s *Symbol) Data() string {
	switch s.Kind {
	case KindInt:
		return fmt.Sprintf("%d", s.IntVal)
	case KindBool:
		if s.BoolVal {
			return "true"
		}
		return "false"
	case KindStr, KindId:
		return s.Str
	case KindDummy:
		return "dummy"
	default:
		return s.Str
	}
}

// Lexeme renders the symbol the way it would appear as a leaf of a printed
// value (spec §6.3): strings include their quotes, booleans print
// true/false, integers and identifiers print verbatim.
func (s *Symbol) Lexeme() string {
	switch s.Kind {
	case KindInt:
		return fmt.Sprintf("%d", s.IntVal)
	case KindStr:
		return "'" + s.Str + "'"
	case KindBool:
		if s.BoolVal {
			return "true"
		}
		return "false"
	case KindId:
		return s.Str
	case KindDummy:
		return "dummy"
	case KindLambda:
		return "[lambda closure]"
	case KindEta:
		return "[eta closure]"
	default:
		return s.Str
	}
}
