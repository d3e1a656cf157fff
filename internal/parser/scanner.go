package parser

import (
	"fmt"
)

const defaultRecipePrefix = '\t'

type Scanner struct {
	source        *Source
	pos           int
	logicalLine   int
	recipePrefix  byte
	tokensEmitted int
	errors        []ScanError
	onError       func(ScanError)
}

type ScanError struct {
	Message  string
	Position Position // line, column, offset
	Length   int      // optional: how many bytes it covers
}

// Checkpoint is a scanner state captured by Mark and restored by Rewind.
type Checkpoint struct {
	pos         int
	logicalLine int
}

func NewScanner(source *Source) *Scanner {
	return &Scanner{
		source:      source,
		logicalLine: 1,
	}
}

// OnError installs a callback invoked for every lexical error as it is found.
func (s *Scanner) OnError(fn func(ScanError)) {
	s.onError = fn
}

func (s *Scanner) Source() *Source {
	return s.source
}

func (s *Scanner) Pos() int {
	return s.pos
}

func (s *Scanner) AtEnd() bool {
	return s.pos >= s.source.Len()
}

func (s *Scanner) LogicalLine() int {
	return s.logicalLine
}

func (s *Scanner) TokensEmitted() int {
	return s.tokensEmitted
}

func (s *Scanner) Errors() []ScanError {
	return s.errors
}

// RecipePrefix returns the active recipe prefix character.
func (s *Scanner) RecipePrefix() byte {
	if s.recipePrefix == 0 {
		return defaultRecipePrefix
	}
	return s.recipePrefix
}

// SetRecipePrefix changes the recipe prefix; 0 restores the default tab.
func (s *Scanner) SetRecipePrefix(c byte) {
	s.recipePrefix = c
}

func (s *Scanner) Mark() Checkpoint {
	return Checkpoint{pos: s.pos, logicalLine: s.logicalLine}
}

// Rewind moves the cursor back to a previously visited position.
func (s *Scanner) Rewind(cp Checkpoint) {
	if cp.pos < 0 || cp.pos > s.source.Len() {
		panic(fmt.Sprintf("parser: rewind to %d outside [0, %d]", cp.pos, s.source.Len()))
	}
	s.pos = cp.pos
	s.logicalLine = cp.logicalLine
}

// NextToken consumes and returns the next token.
func (s *Scanner) NextToken() Token {
	tok := s.scanToken()
	s.tokensEmitted++
	return tok
}

func (s *Scanner) scanToken() Token {
	for {
		if s.AtEnd() {
			return Token{Offset: s.source.Len(), Kind: EndOfInput}
		}
		start := s.pos
		c := s.source.At(s.pos)

		if c == s.RecipePrefix() && s.atLineStart() {
			s.consumeRecipe()
			return s.token(start, Recipe)
		}

		switch c {
		case '#':
			s.consumeLine()
			continue
		case '\\':
			return s.scanEscape()
		case ' ', '\t':
			for b := s.source.At(s.pos); b == ' ' || b == '\t'; b = s.source.At(s.pos) {
				s.pos++
			}
			return s.token(start, Plain)
		case '\n':
			s.pos++
			s.logicalLine++
			return s.token(start, EndOfLine)
		case '\r':
			s.pos++
			if s.source.At(s.pos) == '\n' {
				s.pos++
				s.logicalLine++
				return s.token(start, EndOfLine)
			}
			s.reportError(start, 1, "malformed windows-style end of line: expected LF after CR")
			return s.token(start, Plain)
		case ':':
			if s.source.At(s.pos+1) == '=' {
				s.pos += 2
				return s.token(start, Assignment)
			}
			s.pos++
			return s.token(start, Plain)
		case '?', '!', '+':
			if s.source.At(s.pos+1) == '=' {
				s.pos += 2
				return s.token(start, Assignment)
			}
			s.pos++
			return s.token(start, Plain)
		case '=':
			s.pos++
			return s.token(start, Assignment)
		case '$', '(', ')':
			s.pos++
			return s.token(start, Plain)
		}

		if isWordStart(c) {
			s.pos++
			for isWordChar(s.source.At(s.pos)) {
				s.pos++
			}
			return s.token(start, Plain)
		}

		s.pos++
		return s.token(start, Plain)
	}
}

func (s *Scanner) token(start int, kind TokenKind) Token {
	return Token{Offset: start, Length: s.pos - start, Kind: kind}
}

func (s *Scanner) scanEscape() Token {
	start := s.pos
	s.pos++ // backslash
	switch s.source.At(s.pos) {
	case '\n':
		s.pos++
		return s.token(start, Escape)
	case '\r':
		if s.source.At(s.pos+1) == '\n' {
			s.pos += 2
			return s.token(start, Escape)
		}
		s.pos++
		s.reportError(start, 2, "malformed windows-style end of line after escape: expected LF after CR")
		return s.token(start, Plain)
	}
	if s.AtEnd() {
		s.reportError(start, 1, "unterminated escape: expected end-of-line after backslash, got end of file")
		return s.token(start, Plain)
	}
	got := s.source.At(s.pos)
	s.pos++
	s.reportError(start, 2, fmt.Sprintf("unterminated escape: expected end-of-line after backslash, got %q", got))
	return s.token(start, Plain)
}

// atLineStart reports whether the cursor sits on the first byte of a
// physical line that does not continue an escaped one.
func (s *Scanner) atLineStart() bool {
	if s.pos == 0 {
		return true
	}
	if s.source.At(s.pos-1) != '\n' {
		return false
	}
	prev := s.pos - 2
	if s.source.At(prev) == '\r' {
		prev--
	}
	return prev < 0 || s.source.At(prev) != '\\'
}

// consumeLine advances to the next line terminator without consuming it.
func (s *Scanner) consumeLine() {
	for !s.AtEnd() {
		c := s.source.At(s.pos)
		if c == '\n' || (c == '\r' && s.source.At(s.pos+1) == '\n') {
			return
		}
		s.pos++
	}
}

// consumeRecipe takes the rest of the line, following escaped newlines.
func (s *Scanner) consumeRecipe() {
	for {
		s.consumeLine()
		if s.AtEnd() || s.pos == 0 || s.source.At(s.pos-1) != '\\' {
			return
		}
		if s.source.At(s.pos) == '\r' {
			s.pos++
		}
		s.pos++
	}
}

func (s *Scanner) reportError(start, length int, message string) {
	err := ScanError{
		Message:  message,
		Position: s.source.Position(start),
		Length:   length,
	}
	s.errors = append(s.errors, err)
	if s.onError != nil {
		s.onError(err)
	}
}

// Text returns the source text covered by tok.
func (s *Scanner) Text(tok Token) string {
	return s.source.Slice(tok.Offset, tok.End())
}

// IsChar reports whether tok is exactly the single byte c.
func (s *Scanner) IsChar(tok Token, c byte) bool {
	return tok.Kind == Plain && tok.Length == 1 && s.source.At(tok.Offset) == c
}

// IsSpace reports whether tok is a run of blanks.
func (s *Scanner) IsSpace(tok Token) bool {
	if tok.Kind != Plain || tok.Length == 0 {
		return false
	}
	c := s.source.At(tok.Offset)
	return c == ' ' || c == '\t'
}

// IsWord reports whether tok is a word token.
func (s *Scanner) IsWord(tok Token) bool {
	return tok.Kind == Plain && tok.Length > 0 && isWordStart(s.source.At(tok.Offset))
}

func (s *Scanner) IsKeyword(tok Token, keyword string) bool {
	return tok.Length == len(keyword) && s.Text(tok) == keyword
}

// Tokenize scans source to the end and returns every token, including the
// final EndOfInput token.
func Tokenize(source *Source) ([]Token, []ScanError) {
	s := NewScanner(source)
	var tokens []Token
	for {
		tok := s.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == EndOfInput {
			return tokens, s.errors
		}
	}
}

// Helper functions.

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isWordStart(c byte) bool {
	return isAlpha(c) || c == '.' || c == '_' || c == '-'
}

func isWordChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_' || c == '.' || c == '/' || c == '-'
}
