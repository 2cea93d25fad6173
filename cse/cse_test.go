package cse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rpal/control"
	"github.com/dekarrin/rpal/flatten"
	"github.com/dekarrin/rpal/parser"
	"github.com/dekarrin/rpal/standardize"
)

func run(t *testing.T, src string) string {
	t.Helper()
	n, err := parser.Parse(src)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	std, err := standardize.Standardize(n)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	d, err := flatten.Flatten(std)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	result, err := Execute(d, Options{})
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return Sprint(result)
}

func TestExecute_scenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"simple let", "let x = 5 in x + 3", "8"},
		{"recursive factorial", "let rec f n = n eq 0 -> 1 | n * f (n-1) in f 5", "120"},
		{"and-parallel binding", "let x = 1 and y = 2 in x + y", "3"},
		{"top-level tuple", "(1, 2, 3)", "(1, 2, 3)"},
		{"multi-param function", "let f x y = x + y in f 2 3", "5"},
		{"within", "let x = 10 within y = x+1 in y*2", "22"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, run(t, tc.src))
		})
	}
}

func TestExecute_conditionalFalseBranch(t *testing.T) {
	assert.Equal(t, "2", run(t, "1 eq 0 -> 1 | 2"))
}

func TestExecute_booleanAndComparison(t *testing.T) {
	assert.Equal(t, "true", run(t, "(3 gr 2) & (2 ls 3)"))
	assert.Equal(t, "false", run(t, "not (3 gr 2)"))
}

func TestExecute_stringBuiltins(t *testing.T) {
	assert.Equal(t, "'h'", run(t, "Stem 'hello'"))
	assert.Equal(t, "'ello'", run(t, "Stern 'hello'"))
	assert.Equal(t, "'foobar'", run(t, "Conc 'foo' 'bar'"))
}

func TestExecute_tupleBuiltins(t *testing.T) {
	assert.Equal(t, "3", run(t, "Order (1,2,3)"))
	assert.Equal(t, "nil", run(t, "nil"))
}

func TestExecute_typePredicates(t *testing.T) {
	assert.Equal(t, "true", run(t, "Isinteger 5"))
	assert.Equal(t, "false", run(t, "Isinteger 'x'"))
	assert.Equal(t, "true", run(t, "Isstring 'x'"))
	assert.Equal(t, "true", run(t, "Istuple (1,2)"))
	assert.Equal(t, "true", run(t, "Istruthvalue true"))
}

func TestExecute_negativeNumbers(t *testing.T) {
	assert.Equal(t, "-5", run(t, "-5"))
	assert.Equal(t, "3", run(t, "let x = -2 in x + 5"))
}

func TestExecute_aug(t *testing.T) {
	assert.Equal(t, "(1, 2, 3)", run(t, "(1, 2) aug 3"))
	assert.Equal(t, "(1, 2, 3, 4)", run(t, "(1, 2) aug (3, 4)"))
}

func TestExecute_divisionByZero(t *testing.T) {
	_, err := Execute(mustFlatten(t, "1 / 0"), Options{})
	assert.Error(t, err)
}

func TestExecute_stepLimit(t *testing.T) {
	// An unconditionally recursive function with no base case must trip the
	// step budget rather than hang forever.
	d := mustFlatten(t, "let rec loop x = loop x in loop 0")
	_, err := Execute(d, Options{MaxSteps: 1000})
	assert.Error(t, err)
}

func TestExecute_tauRoundTrip(t *testing.T) {
	// Indexing a freshly constructed tuple at positions 1..n reproduces the
	// original elements in order (spec §8.2).
	assert.Equal(t, "10", run(t, "(10, 20, 30) 1"))
	assert.Equal(t, "20", run(t, "(10, 20, 30) 2"))
	assert.Equal(t, "30", run(t, "(10, 20, 30) 3"))
}

func mustFlatten(t *testing.T, src string) *control.Symbol {
	t.Helper()
	n, err := parser.Parse(src)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	std, err := standardize.Standardize(n)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	d, err := flatten.Flatten(std)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return d
}
