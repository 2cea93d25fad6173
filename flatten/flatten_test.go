package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rpal/control"
	"github.com/dekarrin/rpal/parser"
	"github.com/dekarrin/rpal/standardize"
)

func flattenSrc(t *testing.T, src string) *control.Symbol {
	t.Helper()
	n, err := parser.Parse(src)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	std, err := standardize.Standardize(n)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	d, err := Flatten(std)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return d
}

func TestFlatten_simpleLet(t *testing.T) {
	// standardized: gamma(lambda(x, +(x,3)), 5)
	d := flattenSrc(t, "let x = 5 in x + 3")
	assert.Equal(t, control.KindDelta, d.Kind)

	// pre-order over gamma(lambda(x,+(x,3)),5):
	// [Gamma, Lambda(params=[x], body=Delta[+,Id(x),Int(3)]), Int(5)]
	syms := d.Symbols
	if !assert.Len(t, syms, 3) {
		return
	}
	assert.Equal(t, control.KindGamma, syms[0].Kind)
	assert.Equal(t, control.KindLambda, syms[1].Kind)
	assert.Equal(t, []string{"x"}, syms[1].Params)
	assert.Equal(t, control.KindInt, syms[2].Kind)
	assert.Equal(t, 5, syms[2].IntVal)

	body := syms[1].Body
	assert.Equal(t, control.KindDelta, body.Kind)
	if !assert.Len(t, body.Symbols, 3) {
		return
	}
	assert.Equal(t, control.KindBop, body.Symbols[0].Kind)
	assert.Equal(t, "+", body.Symbols[0].Str)
	assert.Equal(t, control.KindId, body.Symbols[1].Kind)
	assert.Equal(t, "x", body.Symbols[1].Str)
	assert.Equal(t, control.KindInt, body.Symbols[2].Kind)
	assert.Equal(t, 3, body.Symbols[2].IntVal)
}

func TestFlatten_conditional(t *testing.T) {
	d := flattenSrc(t, "x eq 0 -> 1 | 2")
	syms := d.Symbols
	// [Delta(then=1), Delta(else=2), Beta, B(cond)]
	if !assert.Len(t, syms, 4) {
		return
	}
	assert.Equal(t, control.KindDelta, syms[0].Kind)
	assert.Equal(t, control.KindDelta, syms[1].Kind)
	assert.Equal(t, control.KindBeta, syms[2].Kind)
	assert.Equal(t, control.KindB, syms[3].Kind)

	assert.Equal(t, control.KindInt, syms[0].Symbols[0].Kind)
	assert.Equal(t, 1, syms[0].Symbols[0].IntVal)
	assert.Equal(t, 2, syms[1].Symbols[0].IntVal)
}

func TestFlatten_tupleAndString(t *testing.T) {
	d := flattenSrc(t, "(1, 'hi')")
	syms := d.Symbols
	if !assert.Len(t, syms, 3) {
		return
	}
	assert.Equal(t, control.KindTauMarker, syms[0].Kind)
	assert.Equal(t, 2, syms[0].TauArity)
	assert.Equal(t, control.KindStr, syms[2].Kind)
	assert.Equal(t, "hi", syms[2].Str)
}

func TestFlatten_multiParamLambda(t *testing.T) {
	d := flattenSrc(t, "let f x y = x + y in f 2 3")
	// standardized: gamma(lambda(f, gamma(gamma(f,2),3)), lambda(x, lambda(y, +(x,y))))
	// just verify nested lambda params collapse to single-id lambdas
	var findLambdaParams func(s *control.Symbol) [][]string
	findLambdaParams = func(s *control.Symbol) [][]string {
		var out [][]string
		if s.Kind == control.KindLambda {
			out = append(out, s.Params)
			out = append(out, findLambdaParams(s.Body)...)
		}
		for _, c := range s.Symbols {
			out = append(out, findLambdaParams(c)...)
		}
		return out
	}
	all := findLambdaParams(d)
	for _, params := range all {
		assert.LessOrEqual(t, len(params), 1, "standardized lambdas must be single-parameter")
	}
}
