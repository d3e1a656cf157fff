package interp

import (
	"bytes"
	stderrors "errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ysr/internal/errors"
	"ysr/internal/parser"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newSession(t *testing.T, files MapLoader, opts ...Option) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var trace bytes.Buffer
	opts = append([]Option{WithLoader(files), WithTrace(&trace)}, opts...)
	return New(Project{Top: "/top"}, opts...), &trace
}

func eval(t *testing.T, text string, opts ...Option) *Interpreter {
	t.Helper()
	in, _ := newSession(t, MapLoader{"main.mk": text}, opts...)
	require.NoError(t, in.Process("main.mk"))
	return in
}

func codes(in *Interpreter) []string {
	var out []string
	for _, d := range in.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func value(t *testing.T, in *Interpreter, name string) string {
	t.Helper()
	v, ok := in.Variables().Lookup(name)
	require.True(t, ok, "variable %s not defined", name)
	return v.Value
}

func TestSeedVariables(t *testing.T) {
	in := New(Project{
		Top:          "/top",
		ProjectFile:  "/top/project.ysr",
		LibDir:       "/ysr/lib",
		HostConfigMK: "/top/local-config.mk",
		Variables:    map[string]string{"B": "2", "A": "1"},
	})

	assert.Equal(t, "/top", value(t, in, "TOP"))
	assert.Equal(t, "/top/project.ysr", value(t, in, "YSR.project.file"))
	assert.Equal(t, "/ysr/lib", value(t, in, "YSR.libdir"))
	assert.Equal(t, "/top/local-config.mk", value(t, in, "HOST_CONFIG_MK"))
	assert.Equal(t, DestPlaceholder, value(t, in, "DEST"))
	assert.Equal(t, []string{"TOP", "YSR.project.file", "YSR.libdir", "HOST_CONFIG_MK", "DEST", "A", "B"},
		in.Variables().Names())
	assert.Empty(t, in.Modules(), "seed values equal to 1 are not modules")
}

func TestAssignmentFlavors(t *testing.T) {
	in := eval(t, "S := a b\nR = $(S) c\nQ ?= q\nP += p\nX!=echo hi\n")

	s, _ := in.Variables().Lookup("S")
	assert.Equal(t, Simple, s.Flavor)
	assert.Equal(t, "a b", s.Value)

	r, _ := in.Variables().Lookup("R")
	assert.Equal(t, Recursive, r.Flavor)
	assert.Equal(t, "$(S) c", r.Value, "recursive values are stored unexpanded")

	assert.Equal(t, "q", value(t, in, "Q"))
	assert.Equal(t, "p", value(t, in, "P"))
	assert.Equal(t, "echo hi", value(t, in, "X"))
	assert.Equal(t, []string{errors.WarningShellAssignment}, codes(in))
}

func TestSimpleAssignmentExpandsAtDefinition(t *testing.T) {
	in := eval(t, "Y = v\nX := $(Y)\nY = w\n")
	assert.Equal(t, "v", value(t, in, "X"))
	assert.Equal(t, "w", value(t, in, "Y"))
}

func TestSimpleAssignmentFailsOnUndefinedReference(t *testing.T) {
	in := eval(t, "X := $(Y)\nZ := after\n")

	_, ok := in.Variables().Lookup("X")
	assert.False(t, ok, "a failed expansion must not store a partial value")
	assert.Equal(t, "after", value(t, in, "Z"))
	assert.Equal(t, []string{errors.ErrorUndefinedVariable}, codes(in))
}

func TestRedefinitionKeepsOneEntry(t *testing.T) {
	in := eval(t, strings.Repeat("A = same\n", 5)+"A := last\n")

	assert.Equal(t, 1, countName(in.Variables().Names(), "A"))
	v, _ := in.Variables().Lookup("A")
	assert.Equal(t, "last", v.Value)
	assert.Equal(t, Recursive, v.Flavor, "flavor is fixed by the first definition")
}

func TestNestedReference(t *testing.T) {
	in := eval(t, "A = hello\nB = A\nC := $($(B))\n")
	assert.Equal(t, "hello", value(t, in, "C"))
	assert.Empty(t, in.Diagnostics())
}

func TestDollarDollar(t *testing.T) {
	in := eval(t, "X := cost$$5\n")
	assert.Equal(t, "cost$5", value(t, in, "X"))
}

func TestEscapeJoinsValueLines(t *testing.T) {
	in := eval(t, "X := a\\\nb\nY = c\\\r\nd\n")
	assert.Equal(t, "a b", value(t, in, "X"))
	assert.Equal(t, "c d", value(t, in, "Y"))
}

func TestFunctionCallsExpandToNothing(t *testing.T) {
	in := eval(t, "X := a$(info hello, world)b\n"+
		"Y := $(addprefix p,$(X))\n"+
		"Z := $(call fn,1,2)z\n"+
		"W := $(patsubst %.c,%.o,(nested) x)w\n")

	assert.Equal(t, "ab", value(t, in, "X"))
	assert.Equal(t, "", value(t, in, "Y"))
	assert.Equal(t, "z", value(t, in, "Z"))
	assert.Equal(t, "w", value(t, in, "W"))
	assert.Empty(t, in.Diagnostics())
}

func TestUnknownFunctionIsAWarning(t *testing.T) {
	in := eval(t, "X := $(infoo text)done\n")

	assert.Equal(t, "done", value(t, in, "X"))
	require.Len(t, in.Diagnostics(), 1)
	d := in.Diagnostics()[0]
	assert.Equal(t, errors.WarningUnknownFunction, d.Code)
	assert.Equal(t, errors.Warning, d.Level)
	assert.Equal(t, 0, in.ErrorCount())
}

func TestMalformedReference(t *testing.T) {
	in := eval(t, "X := $(Y\nA := $Z\nB := ok\n")

	_, ok := in.Variables().Lookup("X")
	assert.False(t, ok)
	_, ok = in.Variables().Lookup("A")
	assert.False(t, ok)
	assert.Equal(t, "ok", value(t, in, "B"))
	assert.Equal(t, []string{errors.ErrorMalformedReference, errors.ErrorMalformedReference}, codes(in))
}

func TestExpansionDepthLimit(t *testing.T) {
	text := "X := " + strings.Repeat("$(", 6) + "A" + strings.Repeat(")", 6) + "\nY := ok\n"
	in := eval(t, text, WithMaxExpansionDepth(4))

	_, ok := in.Variables().Lookup("X")
	assert.False(t, ok)
	assert.Equal(t, "ok", value(t, in, "Y"))
	assert.Contains(t, codes(in), errors.ErrorExpansionDepth)
}

func TestModuleDetection(t *testing.T) {
	in := eval(t, "HAS_FOO = 1\nHAS_BAR := 1\nHAS_FOO = 1\nNOT_A_MODULE = 0\n")

	assert.Equal(t, []string{"HAS_FOO", "HAS_BAR"}, in.Modules())
	assert.Equal(t, []string{errors.WarningDuplicateModule}, codes(in))
	assert.Equal(t, 0, in.ErrorCount())
}

func TestModuleArenaExhaustionIsFatal(t *testing.T) {
	in, _ := newSession(t, MapLoader{"main.mk": "A_LONG_MODULE_NAME = 1\nX = 2\n"}, WithArenaSize(8))

	err := in.Process("main.mk")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrFatal))
	_, ok := in.Variables().Lookup("X")
	assert.False(t, ok, "processing stops at the fatal line")
	assert.Contains(t, codes(in), errors.ErrorArenaExhausted)
}

func TestRuleRecognition(t *testing.T) {
	in := eval(t, "out.o: in.c\n\techo hi\nX = 1\n")

	require.Len(t, in.Rules(), 1)
	rule := in.Rules()[0]
	assert.Equal(t, []string{"out.o"}, rule.Targets)
	assert.Equal(t, []string{"echo hi"}, rule.Recipes)
	assert.Equal(t, "main.mk", rule.File)
	assert.Equal(t, 1, rule.Line)
	assert.Equal(t, "1", value(t, in, "X"))
	assert.Empty(t, in.Diagnostics())
}

func TestRuleWithExpandedTargetsAndRecipes(t *testing.T) {
	in := eval(t, "OBJ := a.o b.o\n$(OBJ) all: $(OBJ)\n\tcc -c \\\n\t  more\n\tld\n\nclean:\n")

	require.Len(t, in.Rules(), 2)
	assert.Equal(t, []string{"a.o", "b.o", "all"}, in.Rules()[0].Targets)
	assert.Equal(t, []string{"cc -c \\\n\t  more", "ld"}, in.Rules()[0].Recipes)
	assert.Equal(t, []string{"clean"}, in.Rules()[1].Targets)
	assert.Empty(t, in.Rules()[1].Recipes)
}

func TestRecipeWithoutRule(t *testing.T) {
	in := eval(t, "\techo orphan\nX = 1\n")
	assert.Equal(t, []string{errors.ErrorRecipeWithoutRule}, codes(in))
	assert.Equal(t, "1", value(t, in, "X"))
}

func TestParenthesesInReferencesDoNotMakeRules(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bare parentheses in call arguments", "$(warning (note) about: x)"},
		{"dollar dollar before parenthesis", "x$$(y=z): w"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			done := make(chan *Interpreter, 1)
			go func() {
				in, _ := newSession(t, MapLoader{"main.mk": tc.line + "\nA = 1\n"})
				_ = in.Process("main.mk")
				done <- in
			}()

			select {
			case in := <-done:
				assert.Empty(t, in.Rules())
				assert.Equal(t, []string{errors.ErrorUnrecognizedLine}, codes(in))
				assert.Equal(t, "1", value(t, in, "A"), "the next line is still processed")
			case <-time.After(5 * time.Second):
				t.Fatal("interpreter did not finish")
			}
		})
	}
}

func TestRuleSeparatorOutsideReferences(t *testing.T) {
	in := eval(t, "$(info a:b) out.o: in.c\nx$$y: z\n")

	require.Len(t, in.Rules(), 2)
	assert.Equal(t, []string{"out.o"}, in.Rules()[0].Targets)
	assert.Equal(t, []string{"x$y"}, in.Rules()[1].Targets)
	assert.Empty(t, in.Diagnostics())
}

func TestRecipePrefixVariable(t *testing.T) {
	in := eval(t, ".RECIPEPREFIX := >\nall:\n>echo hi\n\tX = 1\n")

	require.Len(t, in.Rules(), 1)
	assert.Equal(t, []string{"echo hi"}, in.Rules()[0].Recipes)
	assert.Equal(t, "1", value(t, in, "X"), "tab is plain whitespace once the prefix changes")
}

func TestUnrecognizedLineRecovery(t *testing.T) {
	in := eval(t, "this is not make\n@ junk\nX = 1\n")

	assert.Equal(t, []string{errors.ErrorUnrecognizedLine, errors.ErrorUnrecognizedLine}, codes(in))
	assert.Equal(t, "1", value(t, in, "X"))
}

func TestConditionalsAreRecognisedAndSkipped(t *testing.T) {
	in := eval(t, "ifeq ($(A),1)\nX = 1\nelse\nX = 2\nendif\n")

	assert.Equal(t, "2", value(t, in, "X"), "conditional bodies are not evaluated")
	assert.Equal(t, []string{
		errors.WarningDirectiveNotEvaluated,
		errors.WarningDirectiveNotEvaluated,
		errors.WarningDirectiveNotEvaluated,
	}, codes(in))
}

func TestDefineFallsToRecovery(t *testing.T) {
	in := eval(t, "define BODY\nendef\n")
	assert.Equal(t, []string{errors.ErrorUnrecognizedLine, errors.ErrorUnrecognizedLine}, codes(in))
}

func TestCommentsAreIgnored(t *testing.T) {
	in := eval(t, "# header\nX = 1 # trailing\n")
	assert.Equal(t, "1 ", value(t, in, "X"))
	assert.Empty(t, in.Diagnostics())
}

func TestLexicalErrorsAreReported(t *testing.T) {
	in := eval(t, "X = a\rb\nY = 2\n")
	assert.Equal(t, []string{errors.ErrorLexical}, codes(in))
	assert.Equal(t, "a\rb", value(t, in, "X"))
	assert.Equal(t, "2", value(t, in, "Y"))
}

func TestIncludeSharesVariables(t *testing.T) {
	in, _ := newSession(t, MapLoader{
		"main.mk":      "NAME := lib\ninclude $(NAME).mk sub/other.mk\nAFTER := $(FROM_LIB)\n",
		"lib.mk":       "FROM_LIB := $(NAME)-seen\nHAS_LIB = 1\n",
		"sub/other.mk": "include near.mk\n",
		"sub/near.mk":  "NEAR = 1\n",
	})
	require.NoError(t, in.Process("main.mk"))

	assert.Equal(t, "lib-seen", value(t, in, "AFTER"))
	assert.Equal(t, []string{"HAS_LIB", "NEAR"}, in.Modules())
	assert.Empty(t, in.Diagnostics())

	var names []string
	for _, s := range in.Stats() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"lib.mk", "sub/near.mk", "sub/other.mk", "main.mk"}, names)
}

func TestIncludeMissingFile(t *testing.T) {
	in := eval(t, "include missing.mk\nX = 1\n")

	assert.Equal(t, []string{errors.ErrorIncludeNotFound}, codes(in))
	assert.Equal(t, "1", value(t, in, "X"))
}

func TestOptionalIncludeMissingFile(t *testing.T) {
	for _, kw := range []string{"-include", "sinclude"} {
		t.Run(kw, func(t *testing.T) {
			in := eval(t, kw+" missing.mk\nX = 1\n")
			assert.Empty(t, in.Diagnostics())
			assert.Equal(t, "1", value(t, in, "X"))
		})
	}
}

func TestIncludeDirs(t *testing.T) {
	in, _ := newSession(t, MapLoader{
		"main.mk":       "include common.mk\n",
		"lib/common.mk": "COMMON = yes\n",
	}, WithIncludeDirs("lib"))
	require.NoError(t, in.Process("main.mk"))
	assert.Equal(t, "yes", value(t, in, "COMMON"))
}

func TestIncludeRequiresSpace(t *testing.T) {
	in := eval(t, "include\nX = 1\n")
	assert.Equal(t, []string{errors.ErrorExpectedSpace}, codes(in))
	assert.Equal(t, "1", value(t, in, "X"))
}

// The limit counts includes nested below the top-level file.
func TestIncludeDepthLimit(t *testing.T) {
	tests := []struct {
		limit int
		files int
	}{
		{0, 1},
		{1, 2},
		{3, 4},
	}
	for _, tc := range tests {
		in := eval(t, "include main.mk\n", WithMaxIncludeDepth(tc.limit))
		assert.Equal(t, []string{errors.ErrorIncludeDepth}, codes(in))
		assert.Len(t, in.Stats(), tc.files, "limit %d", tc.limit)
	}
}

func TestIncludeNamesSeeEarlierFiles(t *testing.T) {
	in, _ := newSession(t, MapLoader{
		"main.mk": "include a.mk $(FROM_A)\n",
		"a.mk":    "FROM_A := b.mk\n",
		"b.mk":    "B = 1\n",
	})
	require.NoError(t, in.Process("main.mk"))

	assert.Empty(t, in.Diagnostics())
	assert.Equal(t, "1", value(t, in, "B"))
}

func TestIncludeStopsAtFailedName(t *testing.T) {
	in, _ := newSession(t, MapLoader{
		"main.mk": "include a.mk $(NOPE) c.mk\nX = 1\n",
		"a.mk":    "A = 1\n",
		"c.mk":    "C = 1\n",
	})
	require.NoError(t, in.Process("main.mk"))

	assert.Equal(t, []string{errors.ErrorUndefinedVariable}, codes(in))
	assert.Equal(t, "1", value(t, in, "A"), "files named before the failure are read")
	_, ok := in.Variables().Lookup("C")
	assert.False(t, ok)
	assert.Equal(t, "1", value(t, in, "X"))
}

func TestProcessMissingTopLevelFile(t *testing.T) {
	in, _ := newSession(t, MapLoader{})
	err := in.Process("nope.mk")
	require.Error(t, err)
	assert.False(t, stderrors.Is(err, ErrFatal))
}

func TestEvalStringSharesSession(t *testing.T) {
	in, _ := newSession(t, MapLoader{})
	require.NoError(t, in.EvalString("<1>", "A = 1\n"))
	require.NoError(t, in.EvalString("<2>", "B := $(A)2"))

	assert.Equal(t, "12", value(t, in, "B"))
	assert.Equal(t, []string{"A"}, in.Modules())
}

func TestTraceAndStats(t *testing.T) {
	in, trace := newSession(t, MapLoader{"main.mk": "X = 1\n"})
	require.NoError(t, in.Process("main.mk"))

	require.Len(t, in.Stats(), 1)
	stats := in.Stats()[0]
	assert.Equal(t, 6, stats.Bytes)
	assert.Equal(t, 7, stats.Tokens)
	assert.InDelta(t, 6.0/7.0, stats.AvgBytesPerToken(), 1e-9)

	out := trace.String()
	assert.Contains(t, out, `assign X = "1" (recursive)`)
	assert.Contains(t, out, "Stats for main.mk:\nnum_bytes: 6\nnum_tokens: 7\n")
}

func TestUndefinedVariableSuggestion(t *testing.T) {
	in := eval(t, "SOURCES = a.c\nX := $(SOURCE)\n")

	require.Len(t, in.Diagnostics(), 1)
	d := in.Diagnostics()[0]
	require.NotEmpty(t, d.Suggestions)
	assert.Contains(t, d.Suggestions[0].Message, "SOURCES")
	assert.Equal(t, 2, d.Position.Line)
}

func countName(names []string, name string) int {
	n := 0
	for _, candidate := range names {
		if candidate == name {
			n++
		}
	}
	return n
}

// expandText expands text as the rest of a line of its own file.
func expandText(in *Interpreter, text string) error {
	in.frames = append(in.frames, &frame{scanner: parser.NewScanner(parser.NewSource("t.mk", []byte(text)))})
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()
	_, err := in.expandLine()
	return err
}

func TestEvalErrorMatching(t *testing.T) {
	in := New(Project{}, WithMaxExpansionDepth(1))

	err := expandText(in, "$(NOPE)")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrUndefinedVariable))
	assert.True(t, stderrors.Is(err, &EvalError{Kind: UndefinedVariable, Name: "NOPE"}))
	assert.False(t, stderrors.Is(err, &EvalError{Kind: UndefinedVariable, Name: "OTHER"}))
	assert.False(t, stderrors.Is(err, ErrMalformedReference))

	err = expandText(in, "$(X")
	assert.True(t, stderrors.Is(err, ErrMalformedReference))

	err = expandText(in, "$($(X))")
	assert.True(t, stderrors.Is(err, ErrDepthExceeded))

	var evalErr *EvalError
	require.True(t, stderrors.As(err, &evalErr))
	assert.Equal(t, "t.mk", evalErr.File)
	assert.Equal(t, 2, evalErr.Offset)

	assert.Equal(t, []string{
		errors.ErrorUndefinedVariable,
		errors.ErrorMalformedReference,
		errors.ErrorExpansionDepth,
	}, codes(in))
}
