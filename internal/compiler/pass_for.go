package compiler

import (
	"context"
	"sort"
	"strings"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/markdown"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// PathKey is added to every loop item and holds the output path of the page
// the item was selected from.
const PathKey = "_path"

// passFor expands inline for tags in pages and templates.
func passFor(_ context.Context, st *State) error {
	return eachTree(st.Site, func(file string, isTemplate bool, t node.Tree) (node.Tree, error) {
		return rewrite(t, "for", func(n node.Node) (node.Tree, error) {
			out, err := expandLoop(st, file, isTemplate, n.Raw)
			if err != nil {
				return nil, err
			}
			return text(out), nil
		})
	})
}

func expandLoop(st *State, file string, inTemplate bool, raw string) (string, error) {
	l, err := parseLoop(raw)
	if err != nil {
		return "", err
	}

	items, err := selectItems(st, l)
	if err != nil {
		return "", err
	}

	ic := interpContext{loopVar: l.Var, file: file, template: inTemplate, st: st}
	if len(items) == 0 {
		return interpolate(l.Body, ic)
	}

	var b strings.Builder
	for _, item := range items {
		ic.item = item
		s, err := interpolate(l.Body, ic)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// selectItems collects the bindings of every page under the loop prefix in
// key order, then applies the requested stable sort.
func selectItems(st *State, l *loop) ([]map[string]string, error) {
	entries := st.Scope.Select(l.Prefix)
	items := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		item := e.Vars
		if _, ok := item[PathKey]; !ok {
			item[PathKey] = markdown.OutputPath(e.File)
		}
		items = append(items, item)
	}
	if l.SortKey == "" {
		return items, nil
	}

	for _, item := range items {
		if _, ok := item[l.SortKey]; !ok {
			return nil, serrors.MissingLoopKey(l.Var + "." + l.SortKey)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if l.Desc {
			return items[i][l.SortKey] > items[j][l.SortKey]
		}
		return items[i][l.SortKey] < items[j][l.SortKey]
	})
	return items, nil
}
