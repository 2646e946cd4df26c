package library

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SymbolLexer defines the lexical structure of .otsym library files.
// The format is a small s-expression dialect:
//
//	(symbol "Device:R"
//	  (body -1.27 -2.54 1.27 2.54)
//	  (pin "1" "~" (base 0 -2.54) (tip 0 -3.81) up))
var SymbolLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments - lisp style (; to end of line)
	{Name: "Comment", Pattern: `;[^\n]*`},

	// Whitespace
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// String literals with escape sequences
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},

	// Numbers
	{Name: "Number", Pattern: `[-+]?[0-9]+(\.[0-9]+)?`},

	// Keywords and pin directions
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	// Parentheses
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
})
