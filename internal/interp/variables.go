package interp

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Flavor records how a variable's value was produced.
type Flavor int

const (
	// Simple values were expanded when the variable was defined (:=).
	Simple Flavor = iota
	// Recursive values hold the raw text of the definition (=, ?=, +=, !=).
	Recursive
)

func (f Flavor) String() string {
	switch f {
	case Simple:
		return "simple"
	case Recursive:
		return "recursive"
	default:
		return "unknown"
	}
}

type Variable struct {
	Name   string
	Value  string
	Flavor Flavor
}

// Variables is the variable table of one session. Setting an existing name
// overwrites its value; the flavor stays the one of the first definition.
type Variables struct {
	entries map[string]*Variable
	order   []string
}

func NewVariables() *Variables {
	return &Variables{entries: make(map[string]*Variable)}
}

func (v *Variables) Set(name, value string, flavor Flavor) *Variable {
	if existing, ok := v.entries[name]; ok {
		existing.Value = value
		return existing
	}
	variable := &Variable{Name: name, Value: value, Flavor: flavor}
	v.entries[name] = variable
	v.order = append(v.order, name)
	return variable
}

func (v *Variables) Lookup(name string) (*Variable, bool) {
	variable, ok := v.entries[name]
	return variable, ok
}

func (v *Variables) Len() int {
	return len(v.entries)
}

// Names returns variable names in definition order.
func (v *Variables) Names() []string {
	return append([]string(nil), v.order...)
}

// All returns the variables in definition order.
func (v *Variables) All() []*Variable {
	all := make([]*Variable, len(v.order))
	for i, name := range v.order {
		all[i] = v.entries[name]
	}
	return all
}

// Similar returns up to limit defined names that look like a misspelling
// of name, closest first.
func (v *Variables) Similar(name string, limit int) []string {
	return similarNames(name, v.order, limit)
}

func similarNames(name string, candidates []string, limit int) []string {
	if len(name) < 2 {
		return nil
	}
	type match struct {
		name     string
		distance int
	}
	var matches []match
	lower := strings.ToLower(name)
	for _, candidate := range candidates {
		if candidate == name {
			continue
		}
		if !fuzzy.MatchFold(name, candidate) && !fuzzy.MatchFold(candidate, name) {
			continue
		}
		distance := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate))
		if distance <= 2 {
			matches = append(matches, match{candidate, distance})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].distance < matches[j].distance })

	var names []string
	for _, m := range matches {
		if len(names) == limit {
			break
		}
		names = append(names, m.name)
	}
	return names
}
