package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"ysr/grammar"
)

var symbolKinds = map[grammar.SymbolKind]protocol.SymbolKind{
	grammar.VariableSymbol:  protocol.SymbolKindVariable,
	grammar.RuleSymbol:      protocol.SymbolKindFunction,
	grammar.IncludeSymbol:   protocol.SymbolKindFile,
	grammar.DirectiveSymbol: protocol.SymbolKindKey,
}

func documentSymbols(symbols []grammar.Symbol, text string) []protocol.DocumentSymbol {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	result := []protocol.DocumentSymbol{}
	for _, s := range symbols {
		ds := protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           symbolKinds[s.Kind],
			Range:          lineRange(lines, s.Line),
			SelectionRange: nameRange(s.Line, s.Column, s.Name),
		}
		if s.Detail != "" {
			ds.Detail = ptrString(s.Detail)
		}
		for _, r := range s.Recipes {
			ds.Children = append(ds.Children, protocol.DocumentSymbol{
				Name:           firstLine(r.Text),
				Kind:           protocol.SymbolKindString,
				Range:          lineRange(lines, r.Line),
				SelectionRange: lineRange(lines, r.Line),
			})
			ds.Range.End = lineRange(lines, r.Line).End
		}
		result = append(result, ds)
	}
	return result
}

func lineRange(lines []string, line int) protocol.Range {
	width := 0
	if line >= 1 && line <= len(lines) {
		width = len(lines[line-1])
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line - 1)},
		End:   protocol.Position{Line: uint32(line - 1), Character: uint32(width)},
	}
}

func nameRange(line, column int, name string) protocol.Range {
	start := protocol.Position{Line: uint32(line - 1), Character: uint32(column - 1)}
	end := start
	end.Character += uint32(len(name))
	return protocol.Range{Start: start, End: end}
}
