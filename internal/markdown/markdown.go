// Package markdown converts secondary source formats (Markdown, notebooks)
// into node trees whose Content nodes are already HTML, so the compiler
// passes treat every page uniformly.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options controls how Markdown is rendered.
type Options struct {
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// XHTML emits self-closing void elements.
	XHTML bool
}

// Renderer converts Markdown fragments to HTML. Raw HTML in the source is
// passed through untouched since pages mix both freely.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a Renderer with GFM and automatic heading IDs enabled.
func NewRenderer(opts Options) *Renderer {
	htmlOpts := []renderer.Option{html.WithUnsafe()}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if opts.XHTML {
		htmlOpts = append(htmlOpts, html.WithXHTML())
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Renderer{md: md}
}

// Render converts one Markdown fragment to HTML.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
