// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"ysr/internal/interp"
)

const (
	PROMPT      = ">> "
	CONTINUE    = ".. "
	historyFile = ".ysr_history"
)

// Session evaluates chunks of makefile text against one interpreter, so
// variables and modules defined by earlier chunks stay visible.
type Session struct {
	in     *interp.Interpreter
	out    io.Writer
	chunks int
}

func NewSession(out io.Writer, project interp.Project, opts ...interp.Option) *Session {
	opts = append(opts, interp.WithTrace(out))
	return &Session{in: interp.New(project, opts...), out: out}
}

// Evaluate runs a command or a chunk of text. It returns false once the
// user asked to leave.
func (s *Session) Evaluate(code string) bool {
	trimmed := strings.TrimSpace(code)
	switch {
	case trimmed == "":
		return true
	case strings.HasPrefix(trimmed, ":"):
		return s.command(trimmed)
	}

	s.chunks++
	name := fmt.Sprintf("<repl:%d>", s.chunks)
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if err := s.in.EvalString(name, code); err != nil {
		fmt.Fprintln(s.out, color.RedString(err.Error()))
	}
	return true
}

func (s *Session) command(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return false
	case ":vars":
		for _, v := range s.in.Variables().All() {
			fmt.Fprintf(s.out, "%s %s %s\n", color.CyanString(v.Name), v.Flavor, v.Value)
		}
	case ":modules":
		for _, name := range s.in.Modules() {
			fmt.Fprintln(s.out, name)
		}
	case ":rules":
		for _, r := range s.in.Rules() {
			fmt.Fprintf(s.out, "%s: (%d recipe lines)\n", strings.Join(r.Targets, " "), len(r.Recipes))
		}
	case ":help":
		fmt.Fprintln(s.out, "commands: :vars :modules :rules :quit")
		fmt.Fprintln(s.out, "end a line with \\ to continue it")
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for a list.\n", cmd)
	}
	return true
}

// complete offers variable names for the word under the cursor.
func (s *Session) complete(line string) []string {
	start := strings.LastIndexAny(line, " \t($") + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, name := range s.in.Variables().Names() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, line[:start]+name)
		}
	}
	return out
}

// Start runs an interactive session on the terminal until end of input or
// :quit.
func Start(project interp.Project, opts ...interp.Option) {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := NewSession(os.Stdout, project, opts...)
	ln.SetCompleter(session.complete)

	for {
		code, ok := readChunk(ln)
		if !ok {
			fmt.Println()
			return
		}
		if !session.Evaluate(code) {
			return
		}
		if strings.TrimSpace(code) != "" {
			ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		}
	}
}

// readChunk reads one logical line; a trailing backslash asks for more.
func readChunk(ln *liner.State) (string, bool) {
	var b strings.Builder
	prompt := PROMPT
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if !strings.HasSuffix(line, "\\") {
			return b.String(), true
		}
		prompt = CONTINUE
	}
}
