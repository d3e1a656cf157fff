package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"ysr/grammar"
	"ysr/internal/config"
	"ysr/internal/interp"
)

// ExitError carries the process exit code of a failed run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// dirList collects the values of a repeatable flag.
type dirList []string

func (d *dirList) String() string {
	return strings.Join(*d, ",")
}

func (d *dirList) Set(value string) error {
	*d = append(*d, value)
	return nil
}

// run processes the files named on the command line, or the project's
// files when none are named, writing the trace and a summary to out.
func run(out io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("ysr", flag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.Usage = func() {
		fmt.Fprint(out, `
ysr - interprets makefile directives: variables, includes, rules and modules.

Usage:
  ysr [options] [FILE...]

Arguments:
  FILE
    Makefiles to process. Defaults to the files listed in the project.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the HCL project file (default ./"+config.DefaultFile+" when present).")
	outlineFlag := flagSet.Bool("outline", false, "Print the outline of each file instead of interpreting it.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable coloured output.")
	verboseFlag := flagSet.Int("v", 0, "Log verbosity: 0 warnings, 1 info, 2 debug.")
	var includeDirs dirList
	flagSet.Var(&includeDirs, "I", "Directory searched for included files (repeatable).")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}

	if *noColorFlag {
		color.NoColor = true
	}
	commonlog.Configure(*verboseFlag, nil)
	log := commonlog.GetLogger("ysr.cli")

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	cfg.IncludeDirs = append(cfg.IncludeDirs, includeDirs...)

	files := flagSet.Args()
	if len(files) == 0 {
		files = cfg.Files
	}
	if len(files) == 0 {
		flagSet.Usage()
		return &ExitError{Code: 2, Message: "no files to process"}
	}
	log.Infof("processing %d files", len(files))

	startTime := time.Now()
	var failures int
	if *outlineFlag {
		failures = printOutlines(out, files)
	} else {
		failures = interpret(out, cfg, files)
	}
	formattedDuration := formatDuration(time.Since(startTime))

	if failures > 0 {
		color.New(color.FgRed).Fprintf(out, "Processing failed with %d errors after %s\n", failures, formattedDuration)
		return &ExitError{Code: 1}
	}
	color.New(color.FgGreen).Fprintf(out, "Successfully processed %d files in %s\n", len(files), formattedDuration)
	return nil
}

// loadConfig loads path, or the default project file when path is empty.
// Without a project file the built-in project is used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.DefaultFile)
	if stderrors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// interpret runs one session per file and returns the number of errors.
func interpret(out io.Writer, cfg *config.Config, files []string) int {
	failures := 0
	for _, file := range files {
		color.New(color.Bold).Fprintf(out, "Processing %s\n", file)

		opts := append(cfg.Options(), interp.WithTrace(out))
		in := interp.New(cfg.Project(), opts...)
		if err := in.Process(file); err != nil {
			fmt.Fprintf(out, "%s: %v\n", color.RedString("error"), err)
			failures++
		}
		failures += in.ErrorCount()

		if modules := in.Modules(); len(modules) > 0 {
			fmt.Fprintf(out, "modules: %s\n", strings.Join(modules, " "))
		}
	}
	return failures
}

// printOutlines prints the structure of each file and returns the number
// of files that could not be parsed.
func printOutlines(out io.Writer, files []string) int {
	failures := 0
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(out, "%s: failed to read file: %v\n", color.RedString("error"), err)
			failures++
			continue
		}
		mk, err := grammar.ParseString(file, string(source))
		if err != nil {
			fmt.Fprint(out, grammar.FormatParseError(string(source), err))
			failures++
			continue
		}
		color.New(color.Bold).Fprintf(out, "%s\n", file)
		fmt.Fprint(out, grammar.FormatOutline(mk.Outline()))
	}
	return failures
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
