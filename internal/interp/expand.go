package interp

import (
	"fmt"
	"strings"

	"ysr/internal/errors"
	"ysr/internal/parser"
)

// knownFunctions are the function names recognised in $(name args) forms.
// None of them is evaluated; the call expands to nothing.
var knownFunctions = []string{"error", "info", "warning", "addprefix", "addsuffix", "patsubst", "call"}

// expandReference evaluates the reference introduced by the '$' token
// dollar, which has just been consumed. depth counts enclosing references.
func (in *Interpreter) expandReference(dollar parser.Token, depth int) ([]byte, error) {
	s := in.scanner()
	if depth > in.maxExpansionDepth {
		src := s.Source()
		in.report(errors.NewError(errors.ErrorExpansionDepth,
			fmt.Sprintf("references nested deeper than %d levels", in.maxExpansionDepth),
			src.Name, src.Position(dollar.Offset)).Build())
		return nil, &EvalError{Kind: DepthExceeded, File: src.Name, Offset: dollar.Offset}
	}

	cp := s.Mark()
	tok := s.NextToken()
	if s.IsChar(tok, '$') {
		return []byte{'$'}, nil
	}
	if !s.IsChar(tok, '(') {
		s.Rewind(cp)
		return nil, in.malformed(tok, "expecting ( at start of function or variable reference")
	}

	var name []byte
	for {
		cp = s.Mark()
		tok = s.NextToken()
		switch {
		case s.IsChar(tok, ')'):
			return in.lookupReference(dollar, string(name))
		case s.IsSpace(tok) || tok.Kind == parser.Escape:
			return in.callFunction(dollar, string(name), depth)
		case s.IsChar(tok, '$'):
			nested, err := in.expandReference(tok, depth+1)
			if err != nil {
				return nil, err
			}
			name = append(name, nested...)
		case tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput:
			s.Rewind(cp)
			return nil, in.malformed(tok, "expected ) at end of function or variable reference")
		default:
			name = append(name, s.Text(tok)...)
		}
	}
}

func (in *Interpreter) lookupReference(dollar parser.Token, name string) ([]byte, error) {
	s := in.scanner()
	if v, ok := in.vars.Lookup(name); ok {
		return []byte(v.Value), nil
	}
	src := s.Source()
	d := errors.UndefinedVariable(name, src.Name, src.Position(dollar.Offset), in.vars.Similar(name, 3))
	d.Length = s.Pos() - dollar.Offset
	in.report(d)
	return nil, &EvalError{Kind: UndefinedVariable, Name: name, File: src.Name, Offset: dollar.Offset}
}

// callFunction consumes the arguments of a function call form. The result
// is always empty.
func (in *Interpreter) callFunction(dollar parser.Token, name string, depth int) ([]byte, error) {
	args, err := in.consumeArguments(depth)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(strings.Join(args, ","))

	switch name {
	case "error":
		in.log.Errorf("$(error %s)", text)
		in.tracef("error: %s", text)
	case "warning":
		in.log.Warningf("$(warning %s)", text)
		in.tracef("warning: %s", text)
	case "info":
		in.log.Infof("$(info %s)", text)
		in.tracef("info: %s", text)
	case "addprefix", "addsuffix", "patsubst":
		in.tracef("function %s (not evaluated)", name)
	case "call":
		fn := ""
		if len(args) > 0 {
			fn = strings.TrimSpace(args[0])
		}
		in.log.Infof("$(call %s)", fn)
		in.tracef("call %s (not evaluated)", fn)
	default:
		src := in.scanner().Source()
		in.report(errors.UnknownFunction(name, src.Name, src.Position(dollar.Offset+2),
			similarNames(name, knownFunctions, 1)))
	}
	return []byte{}, nil
}

// consumeArguments reads comma separated arguments up to the ')' closing
// the current reference, expanding nested references on the way.
func (in *Interpreter) consumeArguments(depth int) ([]string, error) {
	s := in.scanner()
	var args []string
	var current []byte
	parens := 0
	for {
		cp := s.Mark()
		tok := s.NextToken()
		switch {
		case tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput:
			s.Rewind(cp)
			return nil, in.malformed(tok, "expected ) at end of function call")
		case s.IsChar(tok, '$'):
			nested, err := in.expandReference(tok, depth+1)
			if err != nil {
				return nil, err
			}
			current = append(current, nested...)
		case s.IsChar(tok, '('):
			parens++
			current = append(current, '(')
		case s.IsChar(tok, ')'):
			if parens == 0 {
				return append(args, string(current)), nil
			}
			parens--
			current = append(current, ')')
		case s.IsChar(tok, ',') && parens == 0:
			args = append(args, string(current))
			current = current[:0]
		case tok.Kind == parser.Escape:
			current = append(current, ' ')
		default:
			current = append(current, s.Text(tok)...)
		}
	}
}

func (in *Interpreter) malformed(tok parser.Token, message string) error {
	src := in.scanner().Source()
	got := in.scanner().Text(tok)
	if tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput {
		got = "end of line"
	}
	in.report(errors.NewError(errors.ErrorMalformedReference, fmt.Sprintf("%s, got '%s'", message, got),
		src.Name, src.Position(tok.Offset)).WithLength(tok.Length).Build())
	return &EvalError{Kind: MalformedReference, File: src.Name, Offset: tok.Offset}
}

// expandWord expands one whitespace-delimited word: plain text is copied and
// references are expanded. It stops before blanks, escapes and the end of
// the line; in rule context it also stops before ':' and assignments.
func (in *Interpreter) expandWord(ruleContext bool) ([]byte, error) {
	s := in.scanner()
	var buf []byte
	for {
		cp := s.Mark()
		tok := s.NextToken()
		switch {
		case tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput ||
			tok.Kind == parser.Escape || s.IsSpace(tok):
			s.Rewind(cp)
			return buf, nil
		case ruleContext && (s.IsChar(tok, ':') || tok.Kind == parser.Assignment):
			s.Rewind(cp)
			return buf, nil
		case s.IsChar(tok, '$'):
			value, err := in.expandReference(tok, 1)
			if err != nil {
				return nil, err
			}
			buf = append(buf, value...)
		default:
			buf = append(buf, s.Text(tok)...)
		}
	}
}

// expandLine expands the rest of the line and consumes its terminator.
func (in *Interpreter) expandLine() ([]byte, error) {
	s := in.scanner()
	var buf []byte
	for {
		tok := s.NextToken()
		switch {
		case tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput:
			return buf, nil
		case tok.Kind == parser.Escape:
			buf = append(buf, ' ')
		case s.IsChar(tok, '$'):
			value, err := in.expandReference(tok, 1)
			if err != nil {
				return nil, err
			}
			buf = append(buf, value...)
		default:
			buf = append(buf, s.Text(tok)...)
		}
	}
}

// rawLine returns the rest of the line verbatim and consumes its terminator.
func (in *Interpreter) rawLine() []byte {
	s := in.scanner()
	var buf []byte
	for {
		tok := s.NextToken()
		switch tok.Kind {
		case parser.EndOfLine, parser.EndOfInput:
			return buf
		case parser.Escape:
			buf = append(buf, ' ')
		default:
			buf = append(buf, s.Text(tok)...)
		}
	}
}
