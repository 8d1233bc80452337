package compiler

import (
	"context"
	"maps"
	"slices"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
	"git.home.luguber.info/inful/tagsite/internal/node"
	"git.home.luguber.info/inful/tagsite/internal/observability"
	"git.home.luguber.info/inful/tagsite/internal/util/sets"
)

// Commands handled by the inheritance passes.
const (
	cmdTemplate = "template"
	cmdContent  = "content"
	cmdProp     = "prop"
)

// passTemplateTemplates flattens template-extends-template chains. Props are
// left in place for the pages that will eventually fill them.
// Parents are read from the unflattened set so chain depth does not depend on
// the order templates are visited in.
func passTemplateTemplates(ctx context.Context, st *State) error {
	source := maps.Clone(st.Site.Templates)
	for _, name := range st.Site.TemplateNames() {
		out, _, err := inherit(ctx, st, source, source[name], []string{name})
		if err != nil {
			return withFile(err, name)
		}
		st.Site.Templates[name] = out
	}
	return nil
}

// passTemplatePages splices every page into its template chain, then fills
// the prop tags from the page's own bindings.
func passTemplatePages(ctx context.Context, st *State) error {
	for _, page := range st.Site.PageKeys() {
		out, declared, err := inherit(ctx, st, st.Site.Templates, st.Site.Pages[page], nil)
		if err != nil {
			return withFile(err, page)
		}
		if declared != nil {
			if out, err = fillProps(st, page, out, declared); err != nil {
				return withFile(err, page)
			}
		}
		st.Site.Pages[page] = out
	}
	return nil
}

// declaration validates the template tags of t and returns the index of the
// single one, or -1.
func declaration(t node.Tree) (int, error) {
	if c := t.Count(cmdTemplate); c > 1 {
		return -1, serrors.MultipleTemplateDeclarations(c)
	}
	idx := t.Find(cmdTemplate)
	if idx >= 0 && len(t[idx].Args) == 0 {
		return -1, serrors.MalformedTag(cmdTemplate, "template needs a template name")
	}
	return idx, nil
}

// inherit resolves the template chain starting at t. chain lists templates
// already on the path so cycles are caught. props is the prop list of t's own
// template tag, or nil when t declares none.
func inherit(ctx context.Context, st *State, templates map[string]node.Tree, t node.Tree, chain []string) (node.Tree, []string, error) {
	idx, err := declaration(t)
	if err != nil || idx < 0 {
		return t, nil, err
	}
	props := append([]string{}, t[idx].Args[1:]...)
	visited := sets.New(chain...)

	for idx >= 0 {
		name := t[idx].Args[0]
		if visited.Has(name) {
			return nil, nil, serrors.CyclicTemplateInheritance(append(slices.Clone(chain), name))
		}
		if len(chain) >= st.Opts.maxDepth() {
			return nil, nil, serrors.TemplateDepthExceeded(cmdTemplate, st.Opts.maxDepth())
		}
		parent, ok := templates[name]
		if !ok {
			return nil, nil, serrors.UnknownTemplate(cmdTemplate, name)
		}
		chain = append(chain, name)
		visited.Add(name)

		body := t.Splice(idx, nil)
		marker := parent.Find(cmdContent)
		if marker < 0 {
			observability.WarnContext(ctx, "Template has no content marker, page body used as is", logfields.Template(name))
			t = body
		} else {
			t = parent.Splice(marker, body)
		}

		if idx, err = declaration(t); err != nil {
			return nil, nil, withFile(err, name)
		}
	}
	return t, props, nil
}

// fillProps replaces every prop tag with the page's binding. The name must be
// declared on the page's template tag and defined by the page.
func fillProps(st *State, page string, t node.Tree, declared []string) (node.Tree, error) {
	return rewrite(t, cmdProp, func(n node.Node) (node.Tree, error) {
		if len(n.Args) != 1 {
			return nil, serrors.MalformedTag(cmdProp, "prop takes exactly one name")
		}
		name := n.Args[0]
		if !slices.Contains(declared, name) {
			return nil, serrors.PropNotDeclared(name)
		}
		v, ok := st.Scope.Lookup(page, name)
		if !ok {
			return nil, serrors.MissingPropValue(name)
		}
		return text(v), nil
	})
}
