package repl

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"ysr/internal/interp"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestEvaluateSharesState(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, interp.Project{Top: "/top"})

	assert.True(t, s.Evaluate("X := $(TOP)/src"))
	assert.True(t, s.Evaluate("HAS_NET = 1\nall: x\n\techo hi\n"))
	assert.True(t, s.Evaluate("Y := $(X)"))

	out.Reset()
	s.Evaluate(":vars")
	assert.Contains(t, out.String(), "X simple /top/src\n")
	assert.Contains(t, out.String(), "Y simple /top/src\n")

	out.Reset()
	s.Evaluate(":modules")
	assert.Equal(t, "HAS_NET\n", out.String())

	out.Reset()
	s.Evaluate(":rules")
	assert.Equal(t, "all: (1 recipe lines)\n", out.String())
}

func TestEvaluateReportsDiagnostics(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, interp.Project{})

	s.Evaluate("Y := $(MISSING)")
	assert.Contains(t, out.String(), "E0001")
	assert.Contains(t, out.String(), "<repl:1>")
}

func TestEvaluateFatal(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, interp.Project{}, interp.WithArenaSize(4))

	assert.True(t, s.Evaluate("HAS_LONG_NAME = 1"))
	assert.Contains(t, out.String(), "E0900")
}

func TestCommands(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, interp.Project{})

	assert.True(t, s.Evaluate("   "))
	assert.True(t, s.Evaluate(":help"))
	assert.Contains(t, out.String(), ":vars")
	assert.True(t, s.Evaluate(":nope"))
	assert.Contains(t, out.String(), "unknown command :nope")
	assert.False(t, s.Evaluate(":quit"))
	assert.False(t, s.Evaluate(" :Q "))
}

func TestComplete(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, interp.Project{})
	s.Evaluate("CFLAGS = -O2\nCC = gcc\nLD = ld\n")

	assert.Equal(t, []string{"X := $(CFLAGS", "X := $(CC"}, s.complete("X := $(C"))
	assert.Nil(t, s.complete("X := "))
}
