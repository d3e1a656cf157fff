package grammar

import (
	"fmt"
	"strings"
)

func indent(level int) string {
	return strings.Repeat("    ", level)
}

// FormatOutline renders symbols one per line, recipes indented under their rule.
func FormatOutline(symbols []Symbol) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(s.StringWithIndent(0))
	}
	return b.String()
}

func (s Symbol) StringWithIndent(level int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s%d: %s %s", indent(level), s.Line, s.Kind, s.Name))
	switch s.Kind {
	case RuleSymbol:
		b.WriteString(":")
		if s.Detail != "" {
			b.WriteString(" " + s.Detail)
		}
	case IncludeSymbol:
		b.WriteString(fmt.Sprintf(" (%s)", s.Detail))
	default:
		if s.Detail != "" {
			b.WriteString(" " + s.Detail)
		}
	}
	b.WriteString("\n")
	for _, r := range s.Recipes {
		b.WriteString(fmt.Sprintf("%s%d: %s\n", indent(level+1), r.Line, r.Text))
	}
	return b.String()
}
