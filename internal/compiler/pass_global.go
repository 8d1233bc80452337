package compiler

import (
	"context"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// passGlobal replaces {% global name %} in pages and templates with the
// site config value.
func passGlobal(_ context.Context, st *State) error {
	resolve := func(n node.Node) (node.Tree, error) {
		if len(n.Args) != 1 {
			return nil, serrors.MalformedTag("global", "global takes exactly one key")
		}
		v, ok := st.Globals.Lookup(n.Args[0])
		if !ok {
			return nil, serrors.UndefinedGlobal(n.Args[0]).WithCommand("global")
		}
		return text(v), nil
	}

	return eachTree(st.Site, func(_ string, _ bool, t node.Tree) (node.Tree, error) {
		return rewrite(t, "global", resolve)
	})
}
