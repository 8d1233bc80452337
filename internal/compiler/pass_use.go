package compiler

import (
	"context"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// passUse replaces {% use name %} with the page's own binding.
func passUse(_ context.Context, st *State) error {
	if err := rejectInTemplates(st.Site, "use", func() error { return serrors.IllegalUseInTemplate("use") }); err != nil {
		return err
	}

	for _, page := range st.Site.PageKeys() {
		out, err := rewrite(st.Site.Pages[page], "use", func(n node.Node) (node.Tree, error) {
			if len(n.Args) != 1 {
				return nil, serrors.MalformedTag("use", "use takes exactly one variable name")
			}
			v, ok := st.Scope.Lookup(page, n.Args[0])
			if !ok {
				return nil, serrors.UndefinedVariable(n.Args[0]).WithCommand("use")
			}
			return text(v), nil
		})
		if err != nil {
			return withFile(err, page)
		}
		st.Site.Pages[page] = out
	}
	return nil
}
