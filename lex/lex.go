package lex

import (
	"regexp"

	"github.com/dekarrin/rpal/internal/rpalerrors"
)

var keywords = map[string]bool{
	"let": true, "in": true, "fn": true, "where": true, "aug": true,
	"or": true, "not": true, "gr": true, "ge": true, "ls": true, "le": true,
	"eq": true, "ne": true, "true": true, "false": true, "nil": true,
	"dummy": true, "within": true, "and": true, "rec": true,
}

// matcher is one entry of the ordered pattern table below; skip is true for
// patterns whose match is discarded rather than turned into a Token
// (whitespace and line comments).
type matcher struct {
	class Class
	skip  bool
	re    *regexp.Regexp
}

// Patterns are tried in order at each position and the first match wins,
// exactly as the reference tokenizer's COMPILED_PATTERNS list does: comments
// and whitespace before string/integer/keyword/identifier/operator/
// punctuation, so that e.g. a run of digits is never mistaken for part of an
// operator run.
var patterns = []matcher{
	{skip: true, re: regexp.MustCompile(`\A//[^\n]*`)},
	{skip: true, re: regexp.MustCompile(`\A[ \t\r\n]+`)},
	{class: String, re: regexp.MustCompile(`\A'(\\[nt\\'"]|[^\\'])*'`)},
	{class: Integer, re: regexp.MustCompile(`\A[0-9]+`)},
	{class: Identifier, re: regexp.MustCompile(`\A[A-Za-z][A-Za-z0-9_]*`)},
	{class: Operator, re: regexp.MustCompile(`\A[+\-*<>&.@/:=~|$!#%^_\[\]{}"'?]+`)},
	{class: Punctuation, re: regexp.MustCompile(`\A[();,]`)},
}

// Scan tokenizes src into a sequence of Tokens ending in a single End token.
// A lexical error (no pattern matches at some position) aborts scanning and
// returns an error wrapping rpalerrors.ErrSyntax.
func Scan(src string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	pos := 0

	for pos < len(src) {
		matched := false
		for _, m := range patterns {
			loc := m.re.FindStringIndex(src[pos:])
			if loc == nil || loc[0] != 0 {
				continue
			}
			text := src[pos : pos+loc[1]]
			matched = true

			if !m.skip {
				class := m.class
				if class == Identifier && keywords[text] {
					class = Keyword
				}
				tokens = append(tokens, Token{
					Class:   class,
					Lexeme:  text,
					Line:    line,
					LinePos: col,
				})
			}

			for _, r := range text {
				if r == '\n' {
					line++
					col = 1
				} else {
					col++
				}
			}
			pos += loc[1]
			break
		}

		if !matched {
			return nil, rpalerrors.Syntaxf(
				"line %d, col %d: unexpected character %q", line, col, string(src[pos]),
			)
		}
	}

	tokens = append(tokens, Token{Class: End, Lexeme: "EOF", Line: line, LinePos: col})
	return tokens, nil
}
