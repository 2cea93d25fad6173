package cse

import (
	"strings"

	"github.com/dekarrin/rpal/control"
)

// Sprint renders a final CSE-machine result the way the reference
// interpreter's REPL prints answers (spec §6.3): a tuple recurses into its
// own elements joined by ", " and wrapped in parens, with the empty tuple
// (RPAL's "nil") printing as the literal word nil; anything else prints its
// own lexeme.
func Sprint(v *control.Symbol) string {
	if v.Kind == control.KindTup {
		if len(v.Elements) == 0 {
			return "nil"
		}
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = Sprint(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return v.Lexeme()
}
