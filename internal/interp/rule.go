package interp

import (
	"fmt"
	"strings"

	"ysr/internal/errors"
	"ysr/internal/parser"
)

// tryRule interprets the line at lineStart as `targets: prerequisites`
// followed by recipe lines. It returns false, with the scanner back at
// lineStart, when the line has no rule separator.
func (in *Interpreter) tryRule(lineStart parser.Checkpoint) bool {
	s := in.scanner()
	s.Rewind(lineStart)
	if !in.hasRuleSeparator() {
		s.Rewind(lineStart)
		return false
	}
	s.Rewind(lineStart)

	first := -1
	var targets []string
targets:
	for {
		cp := s.Mark()
		tok := s.NextToken()
		if first < 0 {
			first = tok.Offset
		}
		switch {
		case s.IsSpace(tok) || tok.Kind == parser.Escape:
			continue
		case s.IsChar(tok, ':'):
			break targets
		case tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput || tok.Kind == parser.Assignment:
			s.Rewind(lineStart)
			return false
		default:
			s.Rewind(cp)
			before := s.Pos()
			word, err := in.expandWord(true)
			if err != nil {
				in.skipLine()
				return true
			}
			if s.Pos() == before {
				s.Rewind(lineStart)
				return false
			}
			targets = append(targets, strings.Fields(string(word))...)
		}
	}
	if len(targets) == 0 {
		s.Rewind(lineStart)
		return false
	}

	// Prerequisites are not interpreted.
	in.skipLine()

	rule := Rule{
		Targets: targets,
		File:    s.Source().Name,
		Line:    s.Source().Position(first).Line,
	}
	for {
		cp := s.Mark()
		tok := s.NextToken()
		if tok.Kind != parser.Recipe {
			s.Rewind(cp)
			break
		}
		rule.Recipes = append(rule.Recipes, s.Text(tok)[1:])
		end := s.NextToken()
		if end.Kind != parser.EndOfLine && end.Kind != parser.EndOfInput {
			in.report(errors.NewError(errors.ErrorUnexpectedCharacter,
				fmt.Sprintf("expected end-of-line after recipe, got '%s'", s.Text(end)),
				s.Source().Name, s.Source().Position(end.Offset)).WithLength(end.Length).Build())
			in.skipLine()
		}
	}

	in.rules = append(in.rules, rule)
	in.tracef("rule %s (%d recipe lines)", strings.Join(targets, " "), len(rule.Recipes))
	return true
}

// hasRuleSeparator scans the rest of the line for a ':' outside of any
// reference, stopping at the first assignment operator. References are
// tracked the way expandReference reads them: `$$` is a literal dollar, a
// blank ends the name of a function call, and bare parentheses nest only
// inside call arguments.
func (in *Interpreter) hasRuleSeparator() bool {
	type reference struct {
		call   bool
		parens int
	}
	s := in.scanner()
	var refs []reference
	for {
		tok := s.NextToken()
		if tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput {
			return false
		}
		if s.IsChar(tok, '$') {
			cp := s.Mark()
			next := s.NextToken()
			switch {
			case s.IsChar(next, '$'):
			case s.IsChar(next, '('):
				refs = append(refs, reference{})
			default:
				s.Rewind(cp)
			}
			continue
		}
		if len(refs) == 0 {
			switch {
			case tok.Kind == parser.Assignment:
				return false
			case s.IsChar(tok, ':'):
				return true
			}
			continue
		}

		top := &refs[len(refs)-1]
		switch {
		case !top.call && s.IsChar(tok, ')'):
			refs = refs[:len(refs)-1]
		case !top.call && (s.IsSpace(tok) || tok.Kind == parser.Escape):
			top.call = true
		case top.call && s.IsChar(tok, '('):
			top.parens++
		case top.call && s.IsChar(tok, ')'):
			if top.parens == 0 {
				refs = refs[:len(refs)-1]
			} else {
				top.parens--
			}
		}
	}
}
