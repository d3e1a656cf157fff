package parser

// DirectiveKind identifies a keyword recognised at the start of a line.
type DirectiveKind int

const (
	NoDirective DirectiveKind = iota
	Include
	OptionalInclude
	Conditional
	Define
)

var KEYWORDS = map[string]DirectiveKind{
	"include":  Include,
	"-include": OptionalInclude,
	"sinclude": OptionalInclude,
	"ifeq":     Conditional,
	"ifneq":    Conditional,
	"ifdef":    Conditional,
	"ifndef":   Conditional,
	"else":     Conditional,
	"endif":    Conditional,
	"define":   Define,
	"endef":    Define,
}

// LookupDirective returns the directive a word introduces, if any.
func LookupDirective(word string) DirectiveKind {
	if k, ok := KEYWORDS[word]; ok {
		return k
	}
	return NoDirective
}
