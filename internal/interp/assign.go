package interp

import (
	"fmt"

	"ysr/internal/errors"
	"ysr/internal/parser"
)

const (
	recipePrefixVariable = ".RECIPEPREFIX"
	moduleFlagValue      = "1"
)

// tryAssignment interprets `NAME op value` where nameTok is the first word
// of the line. It returns false, with the scanner back at lineStart, when
// no assignment operator follows the name.
func (in *Interpreter) tryAssignment(lineStart parser.Checkpoint, nameTok parser.Token) bool {
	s := in.scanner()
	src := s.Source()

	op := s.NextToken()
	for s.IsSpace(op) {
		op = s.NextToken()
	}
	if op.Kind != parser.Assignment {
		s.Rewind(lineStart)
		return false
	}

	name := s.Text(nameTok)
	operator := s.Text(op)
	flavor := Recursive
	if operator[0] == ':' {
		flavor = Simple
	}

	// Leading blanks are not part of the value.
	cp := s.Mark()
	for tok := s.NextToken(); s.IsSpace(tok); tok = s.NextToken() {
		cp = s.Mark()
	}
	s.Rewind(cp)

	var value []byte
	if flavor == Simple {
		var err error
		value, err = in.expandLine()
		if err != nil {
			in.tracef("assignment to %s failed: %v", name, err)
			in.skipLine()
			return true
		}
	} else {
		value = in.rawLine()
	}

	v := in.vars.Set(name, string(value), flavor)
	in.tracef("assign %s %s %q (%s)", name, operator, v.Value, v.Flavor)

	if operator == "!=" {
		in.report(errors.NewWarning(errors.WarningShellAssignment,
			fmt.Sprintf("shell command for '%s' is not executed; the command text is stored", name),
			src.Name, src.Position(op.Offset)).WithLength(op.Length).Build())
	}
	if name == recipePrefixVariable {
		in.setRecipePrefix(v.Value)
	}
	if v.Value == moduleFlagValue {
		in.addModule(name, nameTok)
	}
	return true
}

// setRecipePrefix applies a .RECIPEPREFIX assignment to the current file
// and to every file opened later in the session.
func (in *Interpreter) setRecipePrefix(value string) {
	in.recipePrefix = 0
	if value != "" {
		in.recipePrefix = value[0]
	}
	in.scanner().SetRecipePrefix(in.recipePrefix)
}

func (in *Interpreter) addModule(name string, at parser.Token) {
	src := in.scanner().Source()
	added, err := in.modules.Add(name)
	if err != nil {
		in.report(errors.NewError(errors.ErrorArenaExhausted,
			fmt.Sprintf("cannot register module '%s': %v", name, err),
			src.Name, src.Position(at.Offset)).WithLength(at.Length).Build())
		panic(bailout{err: fmt.Errorf("%w: %w", ErrFatal, err)})
	}
	if !added {
		in.report(errors.DuplicateModule(name, src.Name, src.Position(at.Offset)))
		return
	}
	in.tracef("module %s", name)
}
