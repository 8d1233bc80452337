package compiler

import (
	"regexp"
	"strings"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
)

// Interpolation delimiters inside a for body.
const (
	InterpOpen  = "{$"
	InterpClose = "$}"
)

var interpPattern = regexp.MustCompile(`(?s)\{\$(.*?)\$\}`)

// Interpolation prefixes besides the loop variable.
const (
	thisPrefix   = "this"
	globalPrefix = "_global"
)

// interpContext is what a single loop iteration can see.
type interpContext struct {
	loopVar  string
	item     map[string]string // nil for the empty-collection fallback
	file     string
	template bool // the loop lives in a template, which has no scope
	st       *State
}

// interpolate substitutes every {$ expr $} in body. Unknown prefixes are left
// as written.
func interpolate(body string, ic interpContext) (string, error) {
	var firstErr error
	out := interpPattern.ReplaceAllStringFunc(body, func(m string) string {
		if firstErr != nil {
			return m
		}
		expr := strings.TrimSpace(m[len(InterpOpen) : len(m)-len(InterpClose)])
		v, ok, err := ic.resolve(expr)
		if err != nil {
			firstErr = err
			return m
		}
		if !ok {
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// resolve evaluates one interpolation. ok is false when expr does not start
// with a known prefix.
func (ic interpContext) resolve(expr string) (string, bool, error) {
	head, field, dotted := strings.Cut(expr, ".")
	switch head {
	case ic.loopVar:
		if !dotted || field == "" {
			return "", false, serrors.LoopSyntax("interpolation of " + ic.loopVar + " needs a field")
		}
		if ic.item == nil {
			return "", true, nil
		}
		v, ok := ic.item[field]
		if !ok {
			return "", false, serrors.MissingLoopKey(expr)
		}
		return v, true, nil

	case thisPrefix:
		if err := singleField(expr, dotted, field); err != nil {
			return "", false, err
		}
		if ic.template {
			return "", false, serrors.IllegalUseInTemplate("for").WithContext("expr", expr)
		}
		v, ok := ic.st.Scope.Lookup(ic.file, field)
		if !ok {
			return "", false, serrors.UndefinedVariable(field).WithCommand("for")
		}
		return v, true, nil

	case globalPrefix:
		if err := singleField(expr, dotted, field); err != nil {
			return "", false, err
		}
		v, ok := ic.st.Globals.Lookup(field)
		if !ok {
			return "", false, serrors.UndefinedGlobal(field).WithCommand("for")
		}
		return v, true, nil
	}
	return "", false, nil
}

func singleField(expr string, dotted bool, field string) error {
	if !dotted || field == "" || strings.Contains(field, ".") {
		return serrors.LoopSyntax(expr + " takes exactly one field").WithContext("expr", expr)
	}
	return nil
}
