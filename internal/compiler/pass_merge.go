package compiler

import (
	"context"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// passMerge reduces every page to one literal. A tag still present at this
// point has no pass left to resolve it.
func passMerge(_ context.Context, st *State) error {
	keys := st.Site.PageKeys()
	outputs := make([]Output, 0, len(keys))
	for _, page := range keys {
		merged := node.Merge(st.Site.Pages[page])
		s, leftover := node.Literal(merged)
		if leftover != nil {
			return serrors.UnresolvedTag(leftover.Command).
				InFile(page).
				WithContext("tag", leftover.String())
		}
		st.Site.Pages[page] = merged
		outputs = append(outputs, OutputFor(page, s))
	}
	st.Outputs = outputs
	return nil
}
