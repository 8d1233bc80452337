package compiler

import (
	"regexp"
	"strings"
	"unicode"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
)

// loop is a parsed {% for var in source body... %} tag.
type loop struct {
	Var     string
	Prefix  string
	SortKey string // empty when unsorted
	Desc    bool
	Body    string
}

var (
	// sort(prefix, key) and rsort(prefix, key)
	callSource = regexp.MustCompile(`^(r?sort)\(\s*([^,()\s]*)\s*,\s*([^,()\s]+)\s*\)$`)
	// prefix.sort(key) and prefix.rsort(key)
	methodSource = regexp.MustCompile(`^([^,()\s]+)\.(r?sort)\(\s*([^,()\s]+)\s*\)$`)
	bareSource   = regexp.MustCompile(`^[^,()\s]+$`)
)

// nextField splits the first whitespace-delimited token off s. rest starts
// immediately after the token.
func nextField(s string) (field, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

// parseLoop parses the raw interior of a for tag. The body is everything
// after the source with its leading separator removed; inner whitespace is
// kept as written.
func parseLoop(raw string) (*loop, error) {
	cmd, rest := nextField(raw)
	if cmd != "for" {
		return nil, serrors.LoopSyntax("not a for tag")
	}

	v, rest := nextField(rest)
	if v == "" || v == "in" {
		return nil, serrors.LoopSyntax("missing loop variable")
	}
	in, rest := nextField(rest)
	if in != "in" {
		return nil, serrors.LoopSyntax(`expected "in" after loop variable ` + v)
	}

	src, rest := nextField(rest)
	if src == "" {
		return nil, serrors.LoopSyntax("missing loop source")
	}
	// Rejoin a parenthesised source split across tokens, e.g. "sort(posts, date)".
	for strings.Count(src, "(") > strings.Count(src, ")") {
		var tok string
		tok, rest = nextField(rest)
		if tok == "" {
			return nil, serrors.LoopSyntax("unterminated loop source " + src)
		}
		src += " " + tok
	}

	l := &loop{Var: v, Body: strings.TrimLeftFunc(rest, unicode.IsSpace)}
	if err := l.parseSource(src); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *loop) parseSource(src string) error {
	switch {
	case callSource.MatchString(src):
		m := callSource.FindStringSubmatch(src)
		l.Desc, l.Prefix, l.SortKey = m[1] == "rsort", m[2], m[3]
	case methodSource.MatchString(src):
		m := methodSource.FindStringSubmatch(src)
		l.Prefix, l.Desc, l.SortKey = m[1], m[2] == "rsort", m[3]
	case bareSource.MatchString(src):
		l.Prefix = src
	default:
		return serrors.LoopSyntax("cannot parse loop source " + src).WithContext("source", src)
	}
	return nil
}
