package markdown

import (
	"path"
	"strings"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/node"
)

// Format classifies a source file by extension.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatNotebook Format = "notebook"
	FormatAsset    Format = "asset" // copied through untouched
)

// FormatOf returns the source format for a slash-separated file path.
func FormatOf(file string) Format {
	switch strings.ToLower(path.Ext(file)) {
	case ".html", ".htm":
		return FormatHTML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".ipynb":
		return FormatNotebook
	default:
		return FormatAsset
	}
}

// OutputPath rewrites the extension of Markdown and notebook sources to .html.
func OutputPath(file string) string {
	switch FormatOf(file) {
	case FormatMarkdown, FormatNotebook:
		return strings.TrimSuffix(file, path.Ext(file)) + ".html"
	default:
		return file
	}
}

// Preprocess turns raw source into a node tree. Markdown is tokenized first
// and each Content node rendered on its own, so a block construct that
// straddles a tag boundary renders as two separate fragments.
func Preprocess(r *Renderer, file string, raw []byte) (node.Tree, error) {
	text := string(raw)
	format := FormatOf(file)

	if format == FormatNotebook {
		flat, err := FlattenNotebook(raw)
		if err != nil {
			return nil, serrors.ContentRenderError(file, err)
		}
		text = flat
	}

	tree, err := node.Parse(text)
	if err != nil {
		if se, ok := serrors.As(err); ok {
			return nil, se.InFile(file)
		}
		return nil, err
	}

	if format != FormatMarkdown && format != FormatNotebook {
		return tree, nil
	}
	for i, n := range tree {
		if n.IsTag() {
			continue
		}
		html, err := r.Render(n.Text)
		if err != nil {
			return nil, serrors.ContentRenderError(file, err)
		}
		tree[i] = node.Content(html)
	}
	return tree, nil
}
