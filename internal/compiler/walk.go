package compiler

import (
	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// withFile attaches file to a SiteError unless a deeper location is already
// recorded. Other errors are returned unchanged.
func withFile(err error, file string) error {
	if se, ok := serrors.As(err); ok {
		se.InFile(file)
	}
	return err
}

// eachTree applies fn to every template then every page, in key order, and
// stores the results back into the site.
func eachTree(site *SiteTree, fn func(file string, isTemplate bool, t node.Tree) (node.Tree, error)) error {
	for _, name := range site.TemplateNames() {
		out, err := fn(name, true, site.Templates[name])
		if err != nil {
			return withFile(err, name)
		}
		site.Templates[name] = out
	}
	for _, page := range site.PageKeys() {
		out, err := fn(page, false, site.Pages[page])
		if err != nil {
			return withFile(err, page)
		}
		site.Pages[page] = out
	}
	return nil
}
