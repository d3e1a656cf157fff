package lsp

import (
	"strings"

	"ysr/internal/parser"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the semanticTokenTypes array
// TokenModifiers is a bitmask based on semanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into semanticTokenTypes
	TokenModifiers int // bitmask
}

// collectSemanticTokens classifies the scanner tokens of text: directive
// keywords, assigned and referenced variables, function names, operators
// and recipe lines.
func collectSemanticTokens(name, text string) []SemanticToken {
	src := parser.NewSource(name, []byte(text))
	toks, _ := parser.Tokenize(src)

	var tokens []SemanticToken
	lineStart := true
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		word := src.Slice(tok.Offset, tok.End())

		switch tok.Kind {
		case parser.EndOfLine:
			lineStart = true
			continue
		case parser.Escape, parser.EndOfInput:
			continue
		case parser.Recipe:
			tokens = append(tokens, makeToken(src, tok.Offset, firstLine(word), "string", 0)...)
		case parser.Assignment:
			tokens = append(tokens, makeToken(src, tok.Offset, word, "operator", 0)...)
		case parser.Plain:
			switch {
			case isBlank(word):
				continue
			case word == "$" && i+2 < len(toks) && isChar(src, toks[i+1], '('):
				ref := toks[i+2]
				refName := src.Slice(ref.Offset, ref.End())
				if isName(refName) {
					kind := "variable"
					if i+3 < len(toks) && isBlank(src.Slice(toks[i+3].Offset, toks[i+3].End())) {
						kind = "function"
					}
					tokens = append(tokens, makeToken(src, ref.Offset, refName, kind, 0)...)
					i += 2
				}
			case lineStart && parser.LookupDirective(word) != parser.NoDirective:
				tokens = append(tokens, makeToken(src, tok.Offset, word, "keyword", 0)...)
			case lineStart && isName(word) && nextIsAssignment(src, toks[i+1:]):
				tokens = append(tokens, makeToken(src, tok.Offset, word, "variable", 1)...)
			case word == ":":
				tokens = append(tokens, makeToken(src, tok.Offset, word, "operator", 0)...)
			}
		}
		lineStart = false
	}

	return tokens
}

func nextIsAssignment(src *parser.Source, rest []parser.Token) bool {
	for _, tok := range rest {
		if tok.Kind == parser.Plain && isBlank(src.Slice(tok.Offset, tok.End())) {
			continue
		}
		return tok.Kind == parser.Assignment
	}
	return false
}

func isChar(src *parser.Source, tok parser.Token, c byte) bool {
	return tok.Kind == parser.Plain && tok.Length == 1 && src.At(tok.Offset) == c
}

func isBlank(text string) bool {
	return text != "" && (text[0] == ' ' || text[0] == '\t')
}

func isName(text string) bool {
	if text == "" {
		return false
	}
	c := text[0]
	return c == '.' || c == '_' || c == '-' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func firstLine(text string) string {
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		return text[:i]
	}
	return text
}

// makeToken creates a semantic token for the text at offset
func makeToken(src *parser.Source, offset int, value, tokenType string, declModifier int) []SemanticToken {
	if value == "" {
		return nil
	}
	pos := src.Position(offset)

	return []SemanticToken{{
		Line:           uint32(pos.Line - 1),   // LSP uses 0-based line numbers
		StartChar:      uint32(pos.Column - 1), // LSP uses 0-based column numbers
		Length:         uint32(len(value)),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: declModifier << indexOf("declaration", SemanticTokenModifiers),
	}}
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
