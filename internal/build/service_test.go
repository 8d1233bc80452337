package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/metrics"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	require.NoError(t, filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		files[filepath.ToSlash(rel)] = string(b)
		return nil
	}))
	return files
}

// sampleSite lays out a small blog exercising every tag.
func sampleSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config.yml"), "site_name: Demo\n")
	writeFile(t, filepath.Join(root, "templates", "base.html"),
		"<title>{% prop title %} | {% global site_name %}</title>\n<body>{% expand nav %}{% content %}</body>\n")
	writeFile(t, filepath.Join(root, "templates", "nav.html"), "<nav>home</nav>")
	writeFile(t, filepath.Join(root, "pages", "index.html"),
		"{% template base title %}{% def title Home %}<ul>{% for p in posts/.rsort(date) <li><a href=\"/{$ p._path $}\">{$ p.title $}</a></li> %}</ul>")
	writeFile(t, filepath.Join(root, "pages", "posts", "one.md"),
		"{% template base title %}{% def title One %}{% def date 2024-01-01 %}\n# One\n")
	writeFile(t, filepath.Join(root, "pages", "posts", "two.md"),
		"{% template base title %}{% def title Two %}{% def date 2024-02-01 %}\n# Two\n")
	writeFile(t, filepath.Join(root, "pages", "plain.html"), "<p>no tags</p>\n")
	writeFile(t, filepath.Join(root, "pages", "img", "pic.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "public", "robots.txt"), "User-agent: *\n")
	return root
}

func TestService_Run(t *testing.T) {
	in, out := sampleSite(t), t.TempDir()

	res, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.NotEmpty(t, res.BuildID)
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, 1, res.Assets)
	assert.Equal(t, 1, res.PublicFiles)

	files := readTree(t, out)
	assert.Equal(t, "User-agent: *\n", files["robots.txt"])
	assert.Equal(t, "<svg/>", files["img/pic.svg"])
	assert.Equal(t, "<p>no tags</p>\n", files["plain.html"])
	assert.Equal(t,
		"<title>Home | Demo</title>\n<body><nav>home</nav><ul>"+
			`<li><a href="/posts/two.html">Two</a></li>`+
			`<li><a href="/posts/one.html">One</a></li>`+
			"</ul></body>\n",
		files["index.html"])
	assert.Contains(t, files["posts/one.html"], "<title>One | Demo</title>")
	assert.Contains(t, files["posts/one.html"], `<h1 id="one">One</h1>`)
	assert.NotContains(t, files, "posts/one.md")
}

func TestService_Idempotent(t *testing.T) {
	in := sampleSite(t)
	out1, out2 := t.TempDir(), t.TempDir()

	_, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out1})
	require.NoError(t, err)
	_, err = NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out2})
	require.NoError(t, err)

	assert.Equal(t, readTree(t, out1), readTree(t, out2))
}

func TestService_FailureLeavesOutputEmpty(t *testing.T) {
	in, out := sampleSite(t), t.TempDir()
	writeFile(t, filepath.Join(in, "pages", "broken.html"), "{% use missing %}")

	res, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out})
	require.Error(t, err)
	assert.True(t, serrors.IsKind(err, serrors.KindUndefinedVariable))
	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, readTree(t, out))

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "_stage-", "staging directory must be cleaned up")
	}
}

func TestService_OutputConflictWithPublic(t *testing.T) {
	in, out := sampleSite(t), t.TempDir()
	writeFile(t, filepath.Join(in, "public", "plain.html"), "static")

	_, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out})
	require.Error(t, err)
	assert.True(t, serrors.IsKind(err, serrors.KindOutputConflict))
	assert.Empty(t, readTree(t, out))
}

func TestService_RejectsNonEmptyOutput(t *testing.T) {
	in, out := sampleSite(t), t.TempDir()
	writeFile(t, filepath.Join(out, "stale.html"), "x")

	_, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out})
	require.Error(t, err)
	assert.Equal(t, serrors.CategoryValidation, serrors.GetCategory(err))
	assert.Equal(t, map[string]string{"stale.html": "x"}, readTree(t, out))
}

func TestService_ReplaceOutput(t *testing.T) {
	in, out := sampleSite(t), t.TempDir()
	writeFile(t, filepath.Join(out, "stale.html"), "x")

	_, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out, ReplaceOutput: true})
	require.NoError(t, err)
	files := readTree(t, out)
	assert.NotContains(t, files, "stale.html")
	assert.Contains(t, files, "index.html")
}

func TestService_RecordsMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	_, err := NewService().WithRecorder(rec).Run(context.Background(), Request{InputDir: sampleSite(t), OutputDir: t.TempDir()})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "m.prom")
	require.NoError(t, metrics.WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tagsite_pages 4")
	assert.Contains(t, string(data), "tagsite_output_files 6")
	assert.Contains(t, string(data), `tagsite_build_outcomes_total{outcome="success"} 1`)
}

func TestReport_Persist(t *testing.T) {
	in, out := sampleSite(t), t.TempDir()
	res, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "build.json")
	rep := NewReport(res, nil)
	require.NoError(t, rep.Persist(path))

	var decoded Report
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, ReportSchemaVersion, decoded.SchemaVersion)
	assert.Equal(t, res.BuildID, decoded.BuildID)
	assert.Equal(t, StatusSuccess, decoded.Status)
	assert.Equal(t, 2, decoded.Templates)
	assert.Len(t, decoded.Passes, 8)
	require.Len(t, decoded.Outputs, 4)
	assert.Equal(t, "index.html", decoded.Outputs[0].Page)
	for _, o := range decoded.Outputs {
		assert.NotEmpty(t, o.Fingerprint)
	}
	assert.Nil(t, decoded.Error)
	assert.Contains(t, rep.Summary(), "status=success")
}

func TestReport_Error(t *testing.T) {
	in, out := sampleSite(t), t.TempDir()
	writeFile(t, filepath.Join(in, "pages", "x.html"), "{% prop stray %}")

	res, err := NewService().Run(context.Background(), Request{InputDir: in, OutputDir: out})
	require.Error(t, err)

	rep := NewReport(res, err)
	require.NotNil(t, rep.Error)
	assert.Equal(t, "UnresolvedTag", rep.Error.Kind)
	assert.Equal(t, "x.html", rep.Error.File)
	assert.Equal(t, "prop", rep.Error.Command)
	assert.Equal(t, "template", rep.Error.Category)
	assert.Equal(t, "merge", rep.FailedPass)
	assert.Contains(t, rep.Summary(), "error=UnresolvedTag")
}

func TestNewReport_UnclassifiedError(t *testing.T) {
	rep := NewReport(&Result{BuildID: "b1", Status: StatusFailed}, os.ErrPermission)
	require.NotNil(t, rep.Error)
	assert.Equal(t, "internal", rep.Error.Category)
	assert.Empty(t, rep.Error.Kind)
	assert.Equal(t, os.ErrPermission.Error(), rep.Error.Message)
}
