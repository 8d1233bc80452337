package site

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/tagsite/internal/compiler"
	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
	"git.home.luguber.info/inful/tagsite/internal/markdown"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// Asset is a file under pages/ copied to the output unchanged.
type Asset struct {
	Rel string // slash-separated path relative to pages/
	Src string
}

// Input is everything read from the input root.
type Input struct {
	Site   *compiler.SiteTree
	Assets []Asset
	// TemplateSources maps a template name to its file for error messages.
	TemplateSources map[string]string
}

// Loader reads and preprocesses source files.
type Loader struct {
	renderer *markdown.Renderer
}

// NewLoader creates a Loader that renders Markdown with r.
func NewLoader(r *markdown.Renderer) *Loader {
	return &Loader{renderer: r}
}

// Load reads pages/ and templates/ below inputDir. Both are optional.
func (l *Loader) Load(inputDir string) (*Input, error) {
	in := &Input{
		Site:            compiler.NewSiteTree(),
		TemplateSources: make(map[string]string),
	}

	err := walkFiles(filepath.Join(inputDir, PagesDir), func(rel, abs string) error {
		if markdown.FormatOf(rel) == markdown.FormatAsset {
			in.Assets = append(in.Assets, Asset{Rel: rel, Src: abs})
			return nil
		}
		tree, err := l.read(rel, abs)
		if err != nil {
			return err
		}
		in.Site.Pages[rel] = tree
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = walkFiles(filepath.Join(inputDir, TemplatesDir), func(rel, abs string) error {
		if markdown.FormatOf(rel) == markdown.FormatAsset {
			slog.Warn("Skipping unsupported file in templates", logfields.File(rel))
			return nil
		}
		name := TemplateName(rel)
		if prev, dup := in.TemplateSources[name]; dup {
			return serrors.InvalidInput("template " + name + " is defined by both " + prev + " and " + rel).
				WithContext("template", name)
		}
		tree, err := l.read(rel, abs)
		if err != nil {
			return err
		}
		in.Site.Templates[name] = tree
		in.TemplateSources[name] = rel
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded input",
		slog.Int("pages", len(in.Site.Pages)),
		slog.Int("templates", len(in.Site.Templates)),
		slog.Int("assets", len(in.Assets)))
	return in, nil
}

func (l *Loader) read(rel, abs string) (node.Tree, error) {
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, serrors.IOError("read", rel, err)
	}
	return markdown.Preprocess(l.renderer, rel, raw)
}

// TemplateName returns the logical name of a template file: its path relative
// to templates/ without extension.
func TemplateName(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// walkFiles calls fn for every regular file below root in lexical order with
// its slash-separated relative path. A missing root is skipped.
func walkFiles(root string, fn func(rel, abs string) error) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return serrors.IOError("walk", p, err)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return serrors.InternalError("relative path", err)
		}
		return fn(filepath.ToSlash(rel), p)
	})
}
