package standardize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rpal/parser"
	"github.com/dekarrin/rpal/syntax"
)

func mustParse(t *testing.T, src string) *syntax.Node {
	t.Helper()
	n, err := parser.Parse(src)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return n
}

func TestStandardize_let(t *testing.T) {
	n := mustParse(t, "let x = 5 in x + 3")
	std, err := Standardize(n)
	if !assert.NoError(t, err) {
		return
	}
	expect := "gamma\n" +
		".lambda\n" +
		"..<ID:x>\n" +
		"..+\n" +
		"...<ID:x>\n" +
		"...<INT:3>\n" +
		".<INT:5>"
	assert.Equal(t, expect, std.String())
}

func TestStandardize_rec(t *testing.T) {
	n := mustParse(t, "let rec f n = n in f")
	std, err := Standardize(n)
	if !assert.NoError(t, err) {
		return
	}
	// let(rec(fcn_form(f,n,n)), f)
	// fcn_form -> =(f, lambda(n,n))
	// rec(=(f,lambda(n,n))) -> =(f, gamma(Y*, lambda(f, lambda(n,n))))
	// let(=(f, gamma(Y*,lambda(f,lambda(n,n)))), f) -> gamma(lambda(f,f), gamma(Y*,lambda(f,lambda(n,n))))
	expect := "gamma\n" +
		".lambda\n" +
		"..<ID:f>\n" +
		"..<ID:f>\n" +
		".gamma\n" +
		"..<YSTAR:Y*>\n" +
		"..lambda\n" +
		"...<ID:f>\n" +
		"...lambda\n" +
		"....<ID:n>\n" +
		"....<ID:n>"
	assert.Equal(t, expect, std.String())
}

func TestStandardize_within(t *testing.T) {
	n := mustParse(t, "let x = 10 within y = x+1 in y*2")
	std, err := Standardize(n)
	if !assert.NoError(t, err) {
		return
	}
	// within(=(x,10),=(y,x+1)) -> =(y, gamma(lambda(x,x+1),10))
	// let(that, y*2) -> gamma(lambda(y, y*2), gamma(lambda(x,x+1),10))
	expect := "gamma\n" +
		".lambda\n" +
		"..<ID:y>\n" +
		"..*\n" +
		"...<ID:y>\n" +
		"...<INT:2>\n" +
		".gamma\n" +
		"..lambda\n" +
		"...<ID:x>\n" +
		"...+\n" +
		"....<ID:x>\n" +
		"....<INT:1>\n" +
		"..<INT:10>"
	assert.Equal(t, expect, std.String())
}

func TestStandardize_andOp(t *testing.T) {
	n := mustParse(t, "let x = 1 and y = 2 in x + y")
	std, err := Standardize(n)
	if !assert.NoError(t, err) {
		return
	}
	// and_op(=(x,1),=(y,2)) -> =(,(x,y), tau(1,2))
	// let(that, x+y) -> gamma(lambda(,(x,y), x+y), tau(1,2))
	expect := "gamma\n" +
		".lambda\n" +
		"..,\n" +
		"...<ID:x>\n" +
		"...<ID:y>\n" +
		"..+\n" +
		"...<ID:x>\n" +
		"...<ID:y>\n" +
		".tau\n" +
		"..<INT:1>\n" +
		"..<INT:2>"
	assert.Equal(t, expect, std.String())
}

func TestStandardize_idempotent(t *testing.T) {
	n := mustParse(t, "let rec f n = n eq 0 -> 1 | n * f (n-1) in f 5")
	std1, err := Standardize(n)
	if !assert.NoError(t, err) {
		return
	}
	std2, err := Standardize(std1)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, std1.String(), std2.String())
}

func TestStandardize_at(t *testing.T) {
	n := mustParse(t, "1 @add 2")
	std, err := Standardize(n)
	if !assert.NoError(t, err) {
		return
	}
	expect := "gamma\n" +
		".gamma\n" +
		"..<ID:add>\n" +
		"..<INT:1>\n" +
		".<INT:2>"
	assert.Equal(t, expect, std.String())
}

func TestStandardize_closure(t *testing.T) {
	n := mustParse(t, "let x = 1 and y = 2 in x + y")
	std, err := Standardize(n)
	if !assert.NoError(t, err) {
		return
	}
	var walk func(*syntax.Node)
	forbidden := map[syntax.Kind]bool{
		syntax.KindLet: true, syntax.KindWhere: true, syntax.KindFcnForm: true,
		syntax.KindWithin: true, syntax.KindAndOp: true, syntax.KindRec: true,
		syntax.KindAt: true,
	}
	walk = func(node *syntax.Node) {
		assert.False(t, forbidden[node.Kind], "found forbidden kind %s after standardization", node.Kind)
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(std)
}
