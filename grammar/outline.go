package grammar

import (
	"strings"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	RuleSymbol
	IncludeSymbol
	DirectiveSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case RuleSymbol:
		return "rule"
	case IncludeSymbol:
		return "include"
	case DirectiveSymbol:
		return "directive"
	default:
		return "unknown"
	}
}

// Symbol is one structural element of a makefile.
type Symbol struct {
	Kind    SymbolKind
	Name    string
	Detail  string
	Line    int // 1-based
	Column  int // 1-based
	Recipes []RecipeLine
}

type RecipeLine struct {
	Line int
	Text string
}

// Outline lists the variables, rules, includes and directives of m in
// source order. Recipe lines are attached to the rule they follow.
func (m *Makefile) Outline() []Symbol {
	var symbols []Symbol
	rule := -1
	for _, line := range m.Lines {
		switch {
		case line.Recipe != nil:
			if rule >= 0 {
				symbols[rule].Recipes = append(symbols[rule].Recipes, RecipeLine{
					Line: line.Pos.Line + 1,
					Text: recipeText(*line.Recipe),
				})
			}
			continue
		case line.Blank:
			continue
		}
		rule = -1

		switch {
		case line.Include != nil:
			for _, file := range line.Include.Files {
				symbols = append(symbols, Symbol{
					Kind:   IncludeSymbol,
					Name:   file,
					Detail: line.Include.Keyword,
					Line:   line.Include.Pos.Line,
					Column: line.Include.Pos.Column,
				})
			}
		case line.Directive != nil:
			symbols = append(symbols, Symbol{
				Kind:   DirectiveSymbol,
				Name:   line.Directive.Keyword,
				Detail: strings.Join(line.Directive.Args, " "),
				Line:   line.Directive.Pos.Line,
				Column: line.Directive.Pos.Column,
			})
		case line.Statement != nil:
			st := line.Statement
			sym := Symbol{
				Name:   strings.Join(st.Names, " "),
				Line:   st.Pos.Line,
				Column: st.Pos.Column,
			}
			switch {
			case st.Op != nil:
				sym.Kind = VariableSymbol
				sym.Detail = strings.TrimSpace(*st.Op + " " + strings.Join(st.Value, " "))
			case st.Rule:
				sym.Kind = RuleSymbol
				sym.Detail = strings.Join(st.Prereqs, " ")
			default:
				continue
			}
			symbols = append(symbols, sym)
			if sym.Kind == RuleSymbol {
				rule = len(symbols) - 1
			}
		}
	}
	return symbols
}

func recipeText(raw string) string {
	raw = strings.TrimPrefix(raw, "\r")
	raw = strings.TrimPrefix(raw, "\n")
	return strings.TrimPrefix(raw, "\t")
}
