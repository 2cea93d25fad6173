package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_Equal(t *testing.T) {
	testCases := []struct {
		name   string
		n1     *Node
		n2     *Node
		expect bool
	}{
		{
			name:   "identical atoms",
			n1:     NewAtom(KindInteger, "5", nil),
			n2:     NewAtom(KindInteger, "5", nil),
			expect: true,
		},
		{
			name:   "different lexeme",
			n1:     NewAtom(KindInteger, "5", nil),
			n2:     NewAtom(KindInteger, "6", nil),
			expect: false,
		},
		{
			name: "identical interior",
			n1: NewInterior(KindGamma, nil,
				NewAtom(KindIdentifier, "f", nil),
				NewAtom(KindInteger, "1", nil),
			),
			n2: NewInterior(KindGamma, nil,
				NewAtom(KindIdentifier, "f", nil),
				NewAtom(KindInteger, "1", nil),
			),
			expect: true,
		},
		{
			name: "different arity",
			n1: NewInterior(KindGamma, nil,
				NewAtom(KindIdentifier, "f", nil),
			),
			n2: NewInterior(KindGamma, nil,
				NewAtom(KindIdentifier, "f", nil),
				NewAtom(KindInteger, "1", nil),
			),
			expect: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.n1.Equal(tc.n2))
		})
	}
}

func TestNode_String_dump(t *testing.T) {
	n := NewInterior(KindGamma, nil,
		NewAtom(KindIdentifier, "f", nil),
		NewAtom(KindInteger, "1", nil),
	)
	expect := "gamma\n.<ID:f>\n.<INT:1>"
	assert.Equal(t, expect, n.String())
}
