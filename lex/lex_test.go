package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan_basic(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Token
	}{
		{
			name:  "let binding",
			input: "let x = 5 in x + 3",
			expect: []Token{
				{Class: Keyword, Lexeme: "let"},
				{Class: Identifier, Lexeme: "x"},
				{Class: Operator, Lexeme: "="},
				{Class: Integer, Lexeme: "5"},
				{Class: Keyword, Lexeme: "in"},
				{Class: Identifier, Lexeme: "x"},
				{Class: Operator, Lexeme: "+"},
				{Class: Integer, Lexeme: "3"},
				{Class: End, Lexeme: "EOF"},
			},
		},
		{
			name:  "string literal with escape",
			input: `'hi\n'`,
			expect: []Token{
				{Class: String, Lexeme: `'hi\n'`},
				{Class: End, Lexeme: "EOF"},
			},
		},
		{
			name:  "comment is skipped",
			input: "x // trailing\n+ 1",
			expect: []Token{
				{Class: Identifier, Lexeme: "x"},
				{Class: Operator, Lexeme: "+"},
				{Class: Integer, Lexeme: "1"},
				{Class: End, Lexeme: "EOF"},
			},
		},
		{
			name:  "arrow and bar",
			input: "n eq 0 -> 1 | 2",
			expect: []Token{
				{Class: Identifier, Lexeme: "n"},
				{Class: Keyword, Lexeme: "eq"},
				{Class: Integer, Lexeme: "0"},
				{Class: Operator, Lexeme: "->"},
				{Class: Integer, Lexeme: "1"},
				{Class: Operator, Lexeme: "|"},
				{Class: Integer, Lexeme: "2"},
				{Class: End, Lexeme: "EOF"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Scan(tc.input)
			if !assert.NoError(t, err) {
				return
			}
			if !assert.Equal(t, len(tc.expect), len(toks)) {
				return
			}
			for i := range tc.expect {
				assert.Equal(t, tc.expect[i].Class, toks[i].Class, "token %d class", i)
				assert.Equal(t, tc.expect[i].Lexeme, toks[i].Lexeme, "token %d lexeme", i)
			}
		})
	}
}

func TestScan_unexpectedChar(t *testing.T) {
	_, err := Scan("x ` y")
	assert.Error(t, err)
}
