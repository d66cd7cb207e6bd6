// SPDX-License-Identifier: Apache-2.0
package smtlib

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// SExpr is a minimal parsed S-expression: either an Atom (identifier,
// number, "_"-prefixed indexed-symbol token, or #x/#b bit-vector literal)
// or a parenthesized List of SExprs. Its purpose is structural round-trip
// verification of TranslateSMTLIB's output (§8 property 6), not full
// SMT-LIB semantics — there is no solver in this module to hand the text
// to.
type SExpr struct {
	Atom *string  `parser:"  @(Ident | Number | BVLiteral)"`
	List []*SExpr `parser:"| \"(\" @@* \")\""`
}

var sexprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "BVLiteral", Pattern: `#(x[0-9a-fA-F]+|b[01]+)`},
	{Name: "Ident", Pattern: `=|[A-Za-z_][A-Za-z0-9_!.]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var sexprParser = participle.MustBuild[SExpr](
	participle.Lexer(sexprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseSExpr parses a single SMT-LIB S-expression. It round-trips the
// shape TranslateSMTLIB emits (nested function application and let), not
// arbitrary SMT-LIB syntax such as sorts or command scripts.
func ParseSExpr(src string) (*SExpr, error) {
	return sexprParser.ParseString("", src)
}

// NodeCount returns the total number of Atom and List nodes in the tree,
// a cheap structural fingerprint used to check that translating, then
// re-parsing, didn't silently drop or duplicate a subterm.
func (s *SExpr) NodeCount() int {
	if s == nil {
		return 0
	}
	n := 1
	for _, child := range s.List {
		n += child.NodeCount()
	}
	return n
}
