package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var MakefileLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `#[^\r\n]*`, nil},

		// Escaped newlines join physical lines
		{"Continuation", `\\\r?\n`, nil},

		// A recipe keeps the line break that introduces it (order matters)
		{"Recipe", `\r?\n\t(?:\\\r?\n|\\[^\r\n]|[^\r\n\\])*\\?`, nil},
		{"EOL", `\r?\n`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r]+`, nil},

		// Operators
		{"Assign", `::=|:=|\?=|!=|\+=|=`, nil},
		{"Colon", `::?`, nil},

		// Words, including whole $(...) references
		{"Text", `(?:\$\([^)\r\n]*\)|\$\{[^}\r\n]*\}|\$[^\r\n]|[?!+][^=\s]|[^\s:=#\\$?!+])+`, nil},

		// Anything left over
		{"Punct", `[?!+\\$]`, nil},
	},
})
