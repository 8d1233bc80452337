package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
)

func TestParseLoop(t *testing.T) {
	tests := []struct {
		raw  string
		want loop
	}{
		{"for p in posts <li>{$ p.title $}</li>", loop{Var: "p", Prefix: "posts", Body: "<li>{$ p.title $}</li>"}},
		{"for p in posts.sort(date) x", loop{Var: "p", Prefix: "posts", SortKey: "date", Body: "x"}},
		{"for p in posts.rsort(date) x", loop{Var: "p", Prefix: "posts", SortKey: "date", Desc: true, Body: "x"}},
		{"for p in sort(blog/, date) x", loop{Var: "p", Prefix: "blog/", SortKey: "date", Body: "x"}},
		{"for p in rsort( blog/ , date ) x", loop{Var: "p", Prefix: "blog/", SortKey: "date", Desc: true, Body: "x"}},
		{"for p in blog/\n  <a>  {$ p.t $}  </a>", loop{Var: "p", Prefix: "blog/", Body: "<a>  {$ p.t $}  </a>"}},
		{"for p in blog/", loop{Var: "p", Prefix: "blog/"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseLoop(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseLoop_Errors(t *testing.T) {
	for _, raw := range []string{
		"for",
		"for p",
		"for p posts x",
		"for in posts",
		"for p in",
		"for p in sort(posts, date x",
		"for p in sort(posts) x",
		"for p in posts.sort() x",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := parseLoop(raw)
			require.Error(t, err)
			assert.True(t, serrors.IsKind(err, serrors.KindLoopSyntaxError), "got %v", err)
		})
	}
}

func TestCompile_ForEmptyCollection(t *testing.T) {
	out, err := compile(t, map[string]string{
		"index.html": "{% for post in posts.sort(date) <li>{$ post.title $}</li> %}",
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "<li></li>", out["index.html"])
}

func TestCompile_ForSorted(t *testing.T) {
	pages := map[string]string{
		"posts/first.md":  "{% def title First %}{% def date 2024-02-01 %}",
		"posts/second.md": "{% def title Second %}{% def date 2023-01-01 %}",
		"index.html":      "{% for post in posts.sort(date) <li>{$ post.title $}</li> %}",
		"desc.html":       "{% for post in posts.rsort(date) <li>{$ post.title $}</li> %}",
	}
	out, err := compile(t, pages, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "<li>Second</li><li>First</li>", out["index.html"])
	assert.Equal(t, "<li>First</li><li>Second</li>", out["desc.html"])
}

func TestCompile_ForSortTiesKeepKeyOrder(t *testing.T) {
	pages := map[string]string{
		"posts/c.md": "{% def title C %}{% def date 2024-01-01 %}",
		"posts/a.md": "{% def title A %}{% def date 2024-01-01 %}",
		"posts/b.md": "{% def title B %}{% def date 2023-06-01 %}",
		"posts/d.md": "{% def title D %}{% def date 2024-01-01 %}",
		"asc.html":   "{% for p in sort(posts/, date) {$ p.title $} %}",
		"desc.html":  "{% for p in posts/.rsort(date) {$ p.title $} %}",
	}
	for i := 0; i < 5; i++ {
		out, err := compile(t, pages, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "BACD", out["asc.html"])
		assert.Equal(t, "ACDB", out["desc.html"])
	}
}

func TestCompile_ForUnsortedIsLexicographic(t *testing.T) {
	pages := map[string]string{
		"blog/c.html": "{% def n c %}",
		"blog/a.html": "{% def n a %}",
		"blog/b.html": "{% def n b %}",
		"index.html":  "{% for e in blog/ [{$ e.n $}] %}",
	}
	out, err := compile(t, pages, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "[a][b][c]", out["index.html"])
}

func TestCompile_ForPathAndPrefixes(t *testing.T) {
	pages := map[string]string{
		"blog/post.md": "{% def title Post %}",
		"index.html":   "{% def heading Latest %}{% for e in blog/ <a href=\"/{$ e._path $}\">{$ e.title $}</a> {$ this.heading $} {$ _global.site $} {$ other.x $} %}",
	}
	out, err := compile(t, pages, nil, map[string]string{"site": "S"})
	require.NoError(t, err)
	assert.Equal(t, `<a href="/blog/post.html">Post</a> Latest S {$ other.x $}`, out["index.html"])
}

func TestCompile_ForInTemplate(t *testing.T) {
	pages := map[string]string{
		"blog/a.html": "{% def title A %}",
		"index.html":  "{% template base %}",
	}
	templates := map[string]string{"base": "<ul>{% for e in blog/ <li>{$ e.title $}</li> %}</ul>{% content %}"}
	out, err := compile(t, pages, templates, nil)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>A</li></ul>", out["index.html"])
}

func TestCompile_ForErrors(t *testing.T) {
	tests := []struct {
		name      string
		pages     map[string]string
		templates map[string]string
		kind      serrors.Kind
		file      string
	}{
		{
			"missing in",
			map[string]string{"i.html": "{% for p posts x %}"}, nil,
			serrors.KindLoopSyntaxError, "i.html",
		},
		{
			"missing loop key",
			map[string]string{"p/a.html": "{% def t A %}", "i.html": "{% for p in p/ {$ p.nope $} %}"}, nil,
			serrors.KindMissingLoopKey, "i.html",
		},
		{
			"missing sort key",
			map[string]string{"p/a.html": "{% def t A %}", "i.html": "{% for p in sort(p/, date) x %}"}, nil,
			serrors.KindMissingLoopKey, "i.html",
		},
		{
			"this with two dots",
			map[string]string{"i.html": "{% for p in p/ {$ this.a.b $} %}"}, nil,
			serrors.KindLoopSyntaxError, "i.html",
		},
		{
			"global with two dots",
			map[string]string{"i.html": "{% for p in p/ {$ _global.a.b $} %}"}, nil,
			serrors.KindLoopSyntaxError, "i.html",
		},
		{
			"undefined this",
			map[string]string{"i.html": "{% for p in p/ {$ this.a $} %}"}, nil,
			serrors.KindUndefinedVariable, "i.html",
		},
		{
			"undefined global",
			map[string]string{"i.html": "{% for p in p/ {$ _global.a $} %}"}, nil,
			serrors.KindUndefinedGlobal, "i.html",
		},
		{
			"this in template",
			nil, map[string]string{"base": "{% for p in p/ {$ this.a $} %}"},
			serrors.KindIllegalUseInTemplate, "base",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.pages, tt.templates, nil)
			requireKind(t, err, tt.kind, tt.file)
		})
	}
}
