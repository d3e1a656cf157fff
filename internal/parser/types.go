package parser

// TokenKind classifies a token produced by the Scanner.
type TokenKind int

const (
	// Plain covers words, whitespace runs and single punctuation bytes.
	Plain TokenKind = iota
	// Assignment is one of `=`, `:=`, `?=`, `!=`, `+=`.
	Assignment
	// EndOfLine is `\n` or `\r\n`.
	EndOfLine
	// Escape is a backslash followed by a line terminator.
	Escape
	// Recipe is a whole line introduced by the recipe prefix character.
	Recipe
	// EndOfInput is returned once the buffer is exhausted.
	EndOfInput
)

var tokenKindNames = [...]string{
	Plain:      "Plain",
	Assignment: "Assignment",
	EndOfLine:  "EndOfLine",
	Escape:     "Escape",
	Recipe:     "Recipe",
	EndOfInput: "EndOfInput",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(?)"
	}
	return tokenKindNames[k]
}

// Token refers into a Source by offset and length; it never copies text.
type Token struct {
	Offset int
	Length int
	Kind   TokenKind
}

// End returns the offset one past the last byte of the token.
func (t Token) End() int {
	return t.Offset + t.Length
}

type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based absolute index in input
}
