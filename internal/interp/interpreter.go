// Package interp implements the directive interpreter of the make dialect.
//
// An Interpreter is one build session: it owns the variable table, the
// module registry and a stack of scanners, one per file currently being
// read. Lines are processed one at a time; every problem is recorded as a
// diagnostic and processing resumes at the next line. Only exhaustion of
// the module arena ends a session early.
package interp

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"ysr/internal/errors"
	"ysr/internal/parser"
	"ysr/internal/registry"
)

const (
	DefaultMaxExpansionDepth = 64
	DefaultMaxIncludeDepth   = 32

	// DestPlaceholder is the value given to DEST when the project sets none.
	DestPlaceholder = "@DEST@"
)

// Project holds the seed variables injected before the first file is read.
type Project struct {
	Top          string
	ProjectFile  string
	LibDir       string
	HostConfigMK string
	Dest         string
	Variables    map[string]string
}

// Rule is a dependency rule recognised in a file.
type Rule struct {
	Targets []string
	Recipes []string
	File    string
	Line    int
}

// FileStats summarises the scan of one file.
type FileStats struct {
	Name   string
	Bytes  int
	Tokens int
}

func (s FileStats) AvgBytesPerToken() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(s.Bytes) / float64(s.Tokens)
}

type frame struct {
	scanner  *parser.Scanner
	reporter *errors.ErrorReporter
}

type Interpreter struct {
	vars    *Variables
	modules *registry.Registry

	frames      []*frame
	rules       []Rule
	diagnostics []errors.Diagnostic
	stats       []FileStats

	trace             io.Writer
	loader            Loader
	includeDirs       []string
	arenaSize         int
	maxExpansionDepth int
	maxIncludeDepth   int
	recipePrefix      byte

	log commonlog.Logger
}

type Option func(*Interpreter)

// WithTrace sets the writer receiving the human-readable trace.
func WithTrace(w io.Writer) Option {
	return func(in *Interpreter) { in.trace = w }
}

func WithLoader(l Loader) Option {
	return func(in *Interpreter) { in.loader = l }
}

// WithIncludeDirs adds directories searched for included files.
func WithIncludeDirs(dirs ...string) Option {
	return func(in *Interpreter) { in.includeDirs = append(in.includeDirs, dirs...) }
}

func WithArenaSize(n int) Option {
	return func(in *Interpreter) { in.arenaSize = n }
}

func WithMaxExpansionDepth(n int) Option {
	return func(in *Interpreter) { in.maxExpansionDepth = n }
}

func WithMaxIncludeDepth(n int) Option {
	return func(in *Interpreter) { in.maxIncludeDepth = n }
}

// New creates a session seeded with the project variables.
func New(project Project, opts ...Option) *Interpreter {
	in := &Interpreter{
		vars:              NewVariables(),
		trace:             io.Discard,
		loader:            OSLoader{},
		arenaSize:         registry.DefaultArenaSize,
		maxExpansionDepth: DefaultMaxExpansionDepth,
		maxIncludeDepth:   DefaultMaxIncludeDepth,
		log:               commonlog.GetLogger("ysr.interp"),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.modules = registry.New(in.arenaSize)
	in.seed(project)
	return in
}

func (in *Interpreter) seed(p Project) {
	dest := p.Dest
	if dest == "" {
		dest = DestPlaceholder
	}
	in.vars.Set("TOP", p.Top, Simple)
	in.vars.Set("YSR.project.file", p.ProjectFile, Simple)
	in.vars.Set("YSR.libdir", p.LibDir, Simple)
	in.vars.Set("HOST_CONFIG_MK", p.HostConfigMK, Simple)
	in.vars.Set("DEST", dest, Simple)

	names := make([]string, 0, len(p.Variables))
	for name := range p.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		in.vars.Set(name, p.Variables[name], Simple)
	}
}

// Process reads filename and interprets it together with everything it
// includes. It fails when the file cannot be read or when the session hits
// a fatal condition.
func (in *Interpreter) Process(filename string) (err error) {
	defer in.recoverFatal(&err)

	data, err := in.loader.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	in.run(filename, data)
	return nil
}

// EvalString interprets text as if it were the content of a file called
// name, sharing the session state.
func (in *Interpreter) EvalString(name, text string) (err error) {
	defer in.recoverFatal(&err)
	in.run(name, []byte(text))
	return nil
}

func (in *Interpreter) recoverFatal(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}

// run pushes a scanner for data, interprets it to the end and pops it again.
func (in *Interpreter) run(name string, data []byte) {
	src := parser.NewSource(name, data)
	sc := parser.NewScanner(src)
	sc.SetRecipePrefix(in.recipePrefix)
	sc.OnError(func(e parser.ScanError) {
		in.report(errors.NewError(errors.ErrorLexical, e.Message, name, e.Position).WithLength(e.Length).Build())
	})

	in.log.Debugf("loading %s (%d bytes, depth %d)", name, len(data), len(in.frames))
	in.frames = append(in.frames, &frame{scanner: sc})
	defer func() {
		in.frames = in.frames[:len(in.frames)-1]
	}()

	for in.Step() {
	}

	stats := FileStats{Name: name, Bytes: src.Len(), Tokens: sc.TokensEmitted()}
	in.stats = append(in.stats, stats)
	color.New(color.Faint).Fprintf(in.trace, "Stats for %s:\n", name)
	fmt.Fprintf(in.trace, "num_bytes: %d\nnum_tokens: %d\navg_byte_per_token: %f\n",
		stats.Bytes, stats.Tokens, stats.AvgBytesPerToken())
}

func (in *Interpreter) current() *frame {
	return in.frames[len(in.frames)-1]
}

func (in *Interpreter) scanner() *parser.Scanner {
	return in.current().scanner
}

// Step interprets one logical line of the current file. It returns false
// once the end of input has been reached.
func (in *Interpreter) Step() bool {
	s := in.scanner()
	if s.AtEnd() {
		return false
	}

	lineStart := s.Mark()
	tok := s.NextToken()
	for s.IsSpace(tok) {
		lineStart = s.Mark()
		tok = s.NextToken()
	}

	switch {
	case tok.Kind == parser.EndOfInput:
		return false
	case tok.Kind == parser.EndOfLine:
		return true
	case tok.Kind == parser.Recipe:
		in.report(errors.NewError(errors.ErrorRecipeWithoutRule, "recipe commences before first target",
			s.Source().Name, s.Source().Position(tok.Offset)).Build())
		in.skipLine()
		return true
	case s.IsWord(tok):
		word := s.Text(tok)
		switch parser.LookupDirective(word) {
		case parser.Include:
			in.interpretInclude(tok, false)
			return true
		case parser.OptionalInclude:
			in.interpretInclude(tok, true)
			return true
		case parser.Conditional:
			in.tracef("conditional %s (not evaluated)", word)
			in.report(errors.NewWarning(errors.WarningDirectiveNotEvaluated,
				fmt.Sprintf("directive '%s' is recognised but not evaluated", word),
				s.Source().Name, s.Source().Position(tok.Offset)).WithLength(tok.Length).Build())
			in.skipLine()
			return true
		case parser.Define:
			in.tracef("directive %s (unhandled)", word)
		default:
			if in.tryAssignment(lineStart, tok) || in.tryRule(lineStart) {
				return true
			}
		}
	case s.IsChar(tok, '$'):
		if in.tryRule(lineStart) {
			return true
		}
	}

	in.recoverLine(tok)
	return true
}

// recoverLine reports tok as the start of an unrecognised line and skips to
// the next one.
func (in *Interpreter) recoverLine(tok parser.Token) {
	s := in.scanner()
	src := s.Source()
	in.report(errors.UnrecognizedLine(s.Text(tok), src.Name, src.Position(tok.Offset)))
	in.skipLine()
}

// skipLine discards tokens through the next end of line.
func (in *Interpreter) skipLine() {
	s := in.scanner()
	for {
		tok := s.NextToken()
		if tok.Kind == parser.EndOfLine || tok.Kind == parser.EndOfInput {
			return
		}
	}
}

func (in *Interpreter) tracef(format string, args ...any) {
	fmt.Fprintf(in.trace, format+"\n", args...)
}

// report records d and prints it against the file it refers to.
func (in *Interpreter) report(d errors.Diagnostic) {
	in.diagnostics = append(in.diagnostics, d)
	if len(in.frames) == 0 {
		fmt.Fprintln(in.trace, d.String())
		return
	}
	f := in.current()
	if f.reporter == nil {
		f.reporter = errors.NewErrorReporter(f.scanner.Source().Name, string(f.scanner.Source().Bytes()))
	}
	fmt.Fprint(in.trace, f.reporter.FormatError(d))
}

// Variables returns the session's variable table.
func (in *Interpreter) Variables() *Variables {
	return in.vars
}

// Modules returns the declared module names in declaration order.
func (in *Interpreter) Modules() []string {
	return in.modules.Names()
}

func (in *Interpreter) Rules() []Rule {
	return in.rules
}

func (in *Interpreter) Diagnostics() []errors.Diagnostic {
	return in.diagnostics
}

func (in *Interpreter) Stats() []FileStats {
	return in.stats
}

// ErrorCount returns the number of error-level diagnostics.
func (in *Interpreter) ErrorCount() int {
	n := 0
	for _, d := range in.diagnostics {
		if d.Level == errors.Error {
			n++
		}
	}
	return n
}
