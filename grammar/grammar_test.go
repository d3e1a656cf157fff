package grammar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ysr/grammar"
)

const sample = `# header
CC := gcc
HAS_FOO = 1
include common.mk $(DIR)/x.mk
ifeq ($(A),1)
endif
all: main.o util.o
	$(CC) -o $@ $^

clean:
	rm -f *.o
`

func TestOutline(t *testing.T) {
	mk, err := grammar.ParseString("Makefile", sample)
	require.NoError(t, err)

	symbols := mk.Outline()
	require.Len(t, symbols, 8)

	checkSymbol(t, symbols[0], grammar.VariableSymbol, "CC", ":= gcc", 2)
	checkSymbol(t, symbols[1], grammar.VariableSymbol, "HAS_FOO", "= 1", 3)
	checkSymbol(t, symbols[2], grammar.IncludeSymbol, "common.mk", "include", 4)
	checkSymbol(t, symbols[3], grammar.IncludeSymbol, "$(DIR)/x.mk", "include", 4)
	checkSymbol(t, symbols[4], grammar.DirectiveSymbol, "ifeq", "($(A),1)", 5)
	checkSymbol(t, symbols[5], grammar.DirectiveSymbol, "endif", "", 6)
	checkSymbol(t, symbols[6], grammar.RuleSymbol, "all", "main.o util.o", 7)
	checkSymbol(t, symbols[7], grammar.RuleSymbol, "clean", "", 10)

	assert.Equal(t, []grammar.RecipeLine{{Line: 8, Text: "$(CC) -o $@ $^"}}, symbols[6].Recipes)
	assert.Equal(t, []grammar.RecipeLine{{Line: 11, Text: "rm -f *.o"}}, symbols[7].Recipes)
	assert.Equal(t, 1, symbols[0].Column)
}

func TestFormatOutline(t *testing.T) {
	mk, err := grammar.ParseString("Makefile", sample)
	require.NoError(t, err)

	expected := `2: variable CC := gcc
3: variable HAS_FOO = 1
4: include common.mk (include)
4: include $(DIR)/x.mk (include)
5: directive ifeq ($(A),1)
6: directive endif
7: rule all: main.o util.o
    8: $(CC) -o $@ $^
10: rule clean:
    11: rm -f *.o
`
	assert.Equal(t, expected, grammar.FormatOutline(mk.Outline()))
}

func TestContinuationsAndLineEndings(t *testing.T) {
	mk, err := grammar.ParseString("Makefile", "X = a \\\r\n  b # note\r\n-include opt.mk\r\nY?=1\n")
	require.NoError(t, err)

	symbols := mk.Outline()
	require.Len(t, symbols, 3)
	checkSymbol(t, symbols[0], grammar.VariableSymbol, "X", "= a b", 1)
	checkSymbol(t, symbols[1], grammar.IncludeSymbol, "opt.mk", "-include", 3)
	checkSymbol(t, symbols[2], grammar.VariableSymbol, "Y", "?= 1", 4)
}

func TestRecipeContinuation(t *testing.T) {
	mk, err := grammar.ParseString("Makefile", "all:\n\tcc \\\n\t  -o x\n\tld\n")
	require.NoError(t, err)

	symbols := mk.Outline()
	require.Len(t, symbols, 1)
	assert.Equal(t, []grammar.RecipeLine{
		{Line: 2, Text: "cc \\\n\t  -o x"},
		{Line: 4, Text: "ld"},
	}, symbols[0].Recipes)
}

func TestLinesWithoutStructureAreSkipped(t *testing.T) {
	mk, err := grammar.ParseString("Makefile", "\techo orphan\n$(info hello)\n")
	require.NoError(t, err)
	assert.Empty(t, mk.Outline())
}

func TestParseError(t *testing.T) {
	color.NoColor = true
	src := "X = 1\n= oops\n"
	_, err := grammar.ParseString("bad.mk", src)
	require.Error(t, err)

	msg := grammar.FormatParseError(src, err)
	assert.Contains(t, msg, "Syntax error in bad.mk at line 2, column 1")
	assert.Contains(t, msg, "= oops\n^\n")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Makefile")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	mk, err := grammar.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, mk.Outline(), 8)

	_, err = grammar.ParseFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func checkSymbol(t *testing.T, s grammar.Symbol, kind grammar.SymbolKind, name, detail string, line int) {
	t.Helper()
	assert.Equal(t, kind, s.Kind, "kind of %s", name)
	assert.Equal(t, name, s.Name)
	assert.Equal(t, detail, s.Detail, "detail of %s", name)
	assert.Equal(t, line, s.Line, "line of %s", name)
}
