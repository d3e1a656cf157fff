package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type Makefile struct {
	Pos   lexer.Position
	Lines []*Line `@@*`
}

type Line struct {
	Pos       lexer.Position
	EndPos    lexer.Position
	Recipe    *string    `  @Recipe`
	Include   *Include   `| @@`
	Directive *Directive `| @@`
	Statement *Statement `| @@`
	Blank     bool       `| @EOL`
}

type Include struct {
	Pos     lexer.Position
	Keyword string   `@("include" | "-include" | "sinclude")`
	Files   []string `@(Text | Punct)*`
}

type Directive struct {
	Pos     lexer.Position
	Keyword string   `@("ifeq" | "ifneq" | "ifdef" | "ifndef" | "else" | "endif" | "define" | "endef")`
	Args    []string `@(Text | Punct | Colon | Assign)*`
}

// Statement is an assignment, a rule header, or a line that is neither.
type Statement struct {
	Pos     lexer.Position
	Names   []string `@(Text | Punct)+`
	Op      *string  `( @Assign`
	Value   []string `  @(Text | Punct | Colon | Assign)*`
	Rule    bool     `| @Colon`
	Prereqs []string `  @(Text | Punct | Colon | Assign)* )?`
}
