package interp

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"ysr/internal/errors"
	"ysr/internal/parser"
)

// interpretInclude handles `include names...` once the keyword kw has been
// consumed. Names are expanded and loaded one at a time, left to right; a
// file that cannot be loaded never stops the including file.
func (in *Interpreter) interpretInclude(kw parser.Token, optional bool) {
	s := in.scanner()
	src := s.Source()
	keyword := s.Text(kw)

	cp := s.Mark()
	sep := s.NextToken()
	if !s.IsSpace(sep) && sep.Kind != parser.Escape {
		got := s.Text(sep)
		if sep.Kind == parser.EndOfLine || sep.Kind == parser.EndOfInput {
			got = "end of line"
			s.Rewind(cp)
		}
		in.report(errors.NewError(errors.ErrorExpectedSpace,
			fmt.Sprintf("expected space after '%s', got '%s'", keyword, got),
			src.Name, src.Position(sep.Offset)).WithLength(sep.Length).Build())
		in.skipLine()
		return
	}

	for {
		cp = s.Mark()
		tok := s.NextToken()
		switch {
		case tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput:
			return
		case s.IsSpace(tok) || tok.Kind == parser.Escape:
			continue
		}
		s.Rewind(cp)
		// Each name is expanded only after the files named before it have
		// been read, so they may define variables it refers to.
		word, err := in.expandWord(false)
		if err != nil {
			in.tracef("%s: file name could not be expanded: %v", keyword, err)
			in.skipLine()
			return
		}
		for _, name := range strings.Fields(string(word)) {
			in.tracef("%s %s", keyword, name)
			in.includeFile(name, optional, tok)
		}
	}
}

// includeFile loads name and interprets it on a scanner of its own. The
// current scanner is restored whatever happens inside.
func (in *Interpreter) includeFile(name string, optional bool, at parser.Token) {
	src := in.scanner().Source()
	pos := src.Position(at.Offset)

	// frames holds the top-level file plus one entry per nested include, so
	// up to maxIncludeDepth includes may be open below the top-level file.
	if len(in.frames) > in.maxIncludeDepth {
		in.report(errors.NewError(errors.ErrorIncludeDepth,
			fmt.Sprintf("cannot include '%s': files nested deeper than %d levels", name, in.maxIncludeDepth),
			src.Name, pos).WithLength(at.Length).
			WithNote("an included file probably includes itself").Build())
		return
	}

	candidates := in.includeCandidates(name, src.Name)
	for _, path := range candidates {
		data, err := in.loader.ReadFile(path)
		if err == nil {
			in.run(path, data)
			return
		}
		if !stderrors.Is(err, fs.ErrNotExist) {
			in.report(errors.NewError(errors.ErrorIncludeRead,
				fmt.Sprintf("cannot read '%s': %v", path, err),
				src.Name, pos).WithLength(at.Length).Build())
			return
		}
	}

	if optional {
		in.log.Debugf("optional include %s not found", name)
		return
	}
	in.report(errors.IncludeNotFound(name, src.Name, pos, candidates))
}

// includeCandidates lists the paths tried for an include of name: the name
// as written, then relative to the including file, then each include
// directory.
func (in *Interpreter) includeCandidates(name, from string) []string {
	candidates := []string{name}
	if filepath.IsAbs(name) {
		return candidates
	}
	seen := map[string]bool{filepath.Clean(name): true}
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			candidates = append(candidates, path)
		}
	}
	if dir := filepath.Dir(from); dir != "." {
		add(filepath.Join(dir, name))
	}
	for _, dir := range in.includeDirs {
		add(filepath.Join(dir, name))
	}
	return candidates
}
