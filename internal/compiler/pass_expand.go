package compiler

import (
	"context"
	"slices"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
	"git.home.luguber.info/inful/tagsite/internal/util/sets"
)

// passExpand inlines {% expand name %} in pages and templates. Expanded
// templates are expanded in turn, so partials may include partials.
func passExpand(_ context.Context, st *State) error {
	return eachTree(st.Site, func(file string, isTemplate bool, t node.Tree) (node.Tree, error) {
		var chain []string
		if isTemplate {
			chain = []string{file}
		}
		return expandTree(st, t, chain, sets.New(chain...))
	})
}

// expandTree resolves every expand tag in t. chain lists the templates
// currently being expanded, outermost first; visited holds the same names.
func expandTree(st *State, t node.Tree, chain []string, visited sets.Set[string]) (node.Tree, error) {
	return rewrite(t, "expand", func(n node.Node) (node.Tree, error) {
		if len(n.Args) != 1 {
			return nil, serrors.MalformedTag("expand", "expand takes exactly one template name")
		}
		name := n.Args[0]
		if visited.Has(name) {
			return nil, serrors.CyclicTemplateExpansion(append(slices.Clone(chain), name))
		}
		if len(chain) >= st.Opts.maxDepth() {
			return nil, serrors.TemplateDepthExceeded("expand", st.Opts.maxDepth())
		}
		tmpl, ok := st.Site.Templates[name]
		if !ok {
			return nil, serrors.UnknownTemplate("expand", name)
		}
		out, err := expandTree(st, tmpl.Clone(), append(slices.Clone(chain), name), visited.With(name))
		if err != nil {
			return nil, withFile(err, name)
		}
		return out, nil
	})
}
