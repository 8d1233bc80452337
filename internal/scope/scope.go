// Package scope holds the two pieces of shared state the compiler passes
// read: per-page variable bindings created by def, and the read-only site
// globals loaded from config.
package scope

import (
	"strings"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/util/sets"
)

// Scope maps a page key to that page's variable bindings. It is append-only
// for the duration of a run.
type Scope struct {
	vars map[string]map[string]string
}

// New returns an empty Scope.
func New() *Scope {
	return &Scope{vars: make(map[string]map[string]string)}
}

// Define binds name to value for file. A second definition of the same name
// in the same file is an error.
func (s *Scope) Define(file, name, value string) error {
	bindings, ok := s.vars[file]
	if !ok {
		bindings = make(map[string]string)
		s.vars[file] = bindings
	}
	if _, exists := bindings[name]; exists {
		return serrors.DuplicateVariable(name).InFile(file)
	}
	bindings[name] = value
	return nil
}

// Lookup returns the value bound to name in file.
func (s *Scope) Lookup(file, name string) (string, bool) {
	v, ok := s.vars[file][name]
	return v, ok
}

// Bindings returns a copy of every binding for file.
func (s *Scope) Bindings(file string) map[string]string {
	src := s.vars[file]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Entry is one page's bindings as selected by a path prefix.
type Entry struct {
	File string
	Vars map[string]string
}

// Select returns every file whose key starts with prefix, treating the scope
// as a flat namespace, in lexicographic key order.
func (s *Scope) Select(prefix string) []Entry {
	var out []Entry
	for _, file := range sets.SortedKeys(s.vars) {
		if strings.HasPrefix(file, prefix) {
			out = append(out, Entry{File: file, Vars: s.Bindings(file)})
		}
	}
	return out
}
