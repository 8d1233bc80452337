package compiler

import (
	"context"
	"strings"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// passDefine records every {% def name value... %} into the scope and drops
// the tag. Templates have no scope of their own, so def there is fatal.
func passDefine(_ context.Context, st *State) error {
	if err := rejectInTemplates(st.Site, "def", func() error { return serrors.IllegalDefInTemplate() }); err != nil {
		return err
	}

	for _, page := range st.Site.PageKeys() {
		out, err := rewrite(st.Site.Pages[page], "def", func(n node.Node) (node.Tree, error) {
			if len(n.Args) < 2 {
				return nil, serrors.MalformedTag("def", "def needs a name and a value")
			}
			value := strings.TrimSpace(strings.Join(n.Args[1:], " "))
			if err := st.Scope.Define(page, n.Args[0], value); err != nil {
				return nil, err
			}
			st.Report.Bindings++
			return nil, nil
		})
		if err != nil {
			return withFile(err, page)
		}
		st.Site.Pages[page] = out
	}
	return nil
}
