package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/markdown"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestValidateDirs(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	require.NoError(t, ValidateDirs(in, out))

	tests := []struct {
		name    string
		in, out string
	}{
		{"missing input", filepath.Join(in, "nope"), out},
		{"missing output", in, filepath.Join(out, "nope")},
		{"empty input flag", "", out},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDirs(tt.in, tt.out)
			require.Error(t, err)
			assert.True(t, serrors.IsKind(err, serrors.KindInvalidInput), "got %v", err)
		})
	}

	file := filepath.Join(in, "file.txt")
	writeFile(t, file, "x")
	assert.True(t, serrors.IsKind(ValidateDirs(in, file), serrors.KindInvalidInput))

	writeFile(t, filepath.Join(out, "leftover.html"), "x")
	err := ValidateDirs(in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")
}

func TestCheckInputRoot(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"pages", "templates", "public", ".git", "drafts"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, d), 0o755))
	}
	writeFile(t, filepath.Join(root, "config.yml"), "a: b\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "x")

	unexpected, err := CheckInputRoot(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"drafts", "notes.txt"}, unexpected)
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "index.html"), "<p>{% use x %}</p>")
	writeFile(t, filepath.Join(root, "pages", "blog", "a.md"), "# A\n")
	writeFile(t, filepath.Join(root, "pages", "img", "logo.png"), "\x89PNG")
	writeFile(t, filepath.Join(root, "templates", "base.html"), "{% content %}")
	writeFile(t, filepath.Join(root, "templates", "partials", "nav.md"), "*nav*")
	writeFile(t, filepath.Join(root, "templates", "notes.txt"), "skipped")

	in, err := NewLoader(markdown.NewRenderer(markdown.Options{})).Load(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"blog/a.md", "index.html"}, in.Site.PageKeys())
	assert.Equal(t, []string{"base", "partials/nav"}, in.Site.TemplateNames())
	require.Len(t, in.Assets, 1)
	assert.Equal(t, "img/logo.png", in.Assets[0].Rel)

	assert.Contains(t, in.Site.Pages["blog/a.md"][0].Text, `<h1 id="a">A</h1>`)
	assert.Contains(t, in.Site.Templates["partials/nav"][0].Text, "<em>nav</em>")
	assert.Equal(t, "partials/nav.md", in.TemplateSources["partials/nav"])
}

func TestLoader_MissingDirectoriesAreEmpty(t *testing.T) {
	in, err := NewLoader(markdown.NewRenderer(markdown.Options{})).Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, in.Site.Pages)
	assert.Empty(t, in.Site.Templates)
}

func TestLoader_DuplicateTemplateName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "templates", "base.html"), "a")
	writeFile(t, filepath.Join(root, "templates", "base.md"), "b")

	_, err := NewLoader(markdown.NewRenderer(markdown.Options{})).Load(root)
	require.Error(t, err)
	assert.True(t, serrors.IsKind(err, serrors.KindInvalidInput))
}

func TestLoader_MalformedTagNamesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "bad.html"), "{%  %}")

	_, err := NewLoader(markdown.NewRenderer(markdown.Options{})).Load(root)
	se, ok := serrors.As(err)
	require.True(t, ok)
	assert.Equal(t, serrors.KindMalformedTag, se.Kind)
	assert.Equal(t, "bad.html", se.File)
}

func TestTemplateName(t *testing.T) {
	assert.Equal(t, "base", TemplateName("base.html"))
	assert.Equal(t, "partials/nav", TemplateName("partials/nav.md"))
	assert.Equal(t, "nb", TemplateName("nb.ipynb"))
}
