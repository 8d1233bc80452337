package compiler

import (
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// replaceFunc returns the nodes that take the place of one tag. A nil result
// removes the tag.
type replaceFunc func(n node.Node) (node.Tree, error)

// rewrite returns a copy of t where every tag with the given command is
// replaced by fn's result. Other nodes keep their order.
func rewrite(t node.Tree, command string, fn replaceFunc) (node.Tree, error) {
	if t.Find(command) < 0 {
		return t, nil
	}
	out := make(node.Tree, 0, len(t))
	for _, n := range t {
		if !n.Is(command) {
			out = append(out, n)
			continue
		}
		repl, err := fn(n)
		if err != nil {
			return nil, err
		}
		out = append(out, repl...)
	}
	return out, nil
}

// rejectInTemplates fails with errFn for the first tag of command found in any
// template.
func rejectInTemplates(site *SiteTree, command string, errFn func() error) error {
	for _, name := range site.TemplateNames() {
		if site.Templates[name].Find(command) >= 0 {
			return withFile(errFn(), name)
		}
	}
	return nil
}

func text(s string) node.Tree { return node.Tree{node.Content(s)} }
