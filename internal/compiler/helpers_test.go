package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
	"git.home.luguber.info/inful/tagsite/internal/scope"
)

// siteOf parses page and template sources into a SiteTree.
func siteOf(t *testing.T, pages, templates map[string]string) *SiteTree {
	t.Helper()
	site := NewSiteTree()
	for k, src := range pages {
		tree, err := node.Parse(src)
		require.NoError(t, err)
		site.Pages[k] = tree
	}
	for k, src := range templates {
		tree, err := node.Parse(src)
		require.NoError(t, err)
		site.Templates[k] = tree
	}
	return site
}

// compile runs the full pipeline and returns page key to output text.
func compile(t *testing.T, pages, templates, globals map[string]string) (map[string]string, error) {
	t.Helper()
	res, err := New(Options{}).Compile(context.Background(), siteOf(t, pages, templates), scope.NewGlobals(globals))
	require.NotNil(t, res)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(res.Outputs))
	for _, o := range res.Outputs {
		out[o.Page] = o.Text
	}
	return out, nil
}

// requireKind asserts err is a SiteError of kind reported against file.
func requireKind(t *testing.T, err error, kind serrors.Kind, file string) *serrors.SiteError {
	t.Helper()
	require.Error(t, err)
	se, ok := serrors.As(err)
	require.True(t, ok, "expected SiteError, got %T: %v", err, err)
	require.Equal(t, kind, se.Kind, "error: %v", err)
	if file != "" {
		require.Equal(t, file, se.File, "error: %v", err)
	}
	return se
}
