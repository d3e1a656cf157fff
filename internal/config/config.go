// Package config loads the project description that drives a batch run:
// the seed variables, the files to process and the interpreter limits.
//
// Projects are written in HCL. Attribute expressions may read the process
// environment through the env object, for example
//
//	top   = env.YSR_TOP
//	files = ["${env.YSR_TOP}/Makefile"]
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"ysr/internal/interp"
	"ysr/internal/registry"
)

// DefaultFile is the project file looked up when none is named.
const DefaultFile = "ysr.hcl"

// Config is a decoded project.
type Config struct {
	Top          string
	ProjectFile  string
	LibDir       string
	HostConfigMK string
	Dest         string

	Files       []string
	IncludeDirs []string
	Variables   map[string]string

	ArenaSize         int
	MaxExpansionDepth int
	MaxIncludeDepth   int
}

// hclProjectFile mirrors the attributes of a project file. Pointers and nil
// slices mark attributes that were left out.
type hclProjectFile struct {
	Top          *string `hcl:"top,optional"`
	ProjectFile  *string `hcl:"project_file,optional"`
	LibDir       *string `hcl:"libdir,optional"`
	HostConfigMK *string `hcl:"host_config_mk,optional"`
	Dest         *string `hcl:"dest,optional"`

	Files       []string          `hcl:"files,optional"`
	IncludeDirs []string          `hcl:"include_dirs,optional"`
	Variables   map[string]string `hcl:"variables,optional"`

	ArenaSize         *int `hcl:"arena_size,optional"`
	MaxExpansionDepth *int `hcl:"max_expansion_depth,optional"`
	MaxIncludeDepth   *int `hcl:"max_include_depth,optional"`
}

// Default returns the built-in project used when no project file exists.
func Default() *Config {
	return &Config{
		Top:               "h:/ln2/trunk",
		ProjectFile:       "h:/ln2/trunk/project.ysr",
		LibDir:            "h:/ysr/lib",
		HostConfigMK:      "h:/ln2/trunk/ysr/local-config.mk",
		Files:             []string{"h:/ln2/trunk/plugins/Gordia/Makefile"},
		ArenaSize:         registry.DefaultArenaSize,
		MaxExpansionDepth: interp.DefaultMaxExpansionDepth,
		MaxIncludeDepth:   interp.DefaultMaxIncludeDepth,
	}
}

// Load parses the project file at path. Attributes it leaves out keep
// their Default values; relative entries of files and include_dirs are
// taken relative to the project file.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file %s: %w", path, err)
	}
	return Parse(path, src)
}

// Parse decodes src as a project file named filename.
func Parse(filename string, src []byte) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", filename, diags)
	}

	var parsed hclProjectFile
	diags = gohcl.DecodeBody(file.Body, evalContext(), &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", filename, diags)
	}

	cfg := Default()
	setString(&cfg.Top, parsed.Top)
	setString(&cfg.ProjectFile, parsed.ProjectFile)
	setString(&cfg.LibDir, parsed.LibDir)
	setString(&cfg.HostConfigMK, parsed.HostConfigMK)
	setString(&cfg.Dest, parsed.Dest)

	base := filepath.Dir(filename)
	if parsed.Files != nil {
		cfg.Files = resolve(base, parsed.Files)
	}
	if parsed.IncludeDirs != nil {
		cfg.IncludeDirs = resolve(base, parsed.IncludeDirs)
	}
	cfg.Variables = parsed.Variables

	for _, limit := range []struct {
		name   string
		value  *int
		target *int
	}{
		{"arena_size", parsed.ArenaSize, &cfg.ArenaSize},
		{"max_expansion_depth", parsed.MaxExpansionDepth, &cfg.MaxExpansionDepth},
		{"max_include_depth", parsed.MaxIncludeDepth, &cfg.MaxIncludeDepth},
	} {
		if limit.value == nil {
			continue
		}
		if *limit.value <= 0 {
			return nil, fmt.Errorf("invalid project file %s: %s must be positive, got %d", filename, limit.name, *limit.value)
		}
		*limit.target = *limit.value
	}

	return cfg, nil
}

// Project returns the seed variables of the configuration.
func (c *Config) Project() interp.Project {
	return interp.Project{
		Top:          c.Top,
		ProjectFile:  c.ProjectFile,
		LibDir:       c.LibDir,
		HostConfigMK: c.HostConfigMK,
		Dest:         c.Dest,
		Variables:    c.Variables,
	}
}

// Options returns the interpreter options matching the configured limits.
func (c *Config) Options() []interp.Option {
	opts := []interp.Option{
		interp.WithArenaSize(c.ArenaSize),
		interp.WithMaxExpansionDepth(c.MaxExpansionDepth),
		interp.WithMaxIncludeDepth(c.MaxIncludeDepth),
	}
	if len(c.IncludeDirs) > 0 {
		opts = append(opts, interp.WithIncludeDirs(c.IncludeDirs...))
	}
	return opts
}

// evalContext exposes the process environment as env.NAME. Variables
// whose names are not identifiers are left out.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !hclsyntax.ValidIdentifier(name) {
			continue
		}
		env[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func resolve(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) || strings.Contains(p, ":") || base == "." {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(base, p)
	}
	return out
}
