package compiler

import (
	"git.home.luguber.info/inful/tagsite/internal/markdown"
	"git.home.luguber.info/inful/tagsite/internal/node"
	"git.home.luguber.info/inful/tagsite/internal/util/sets"
)

// SiteTree holds the node sequence of every page and template. Each pass
// replaces entries in place.
type SiteTree struct {
	// Pages are keyed by slash-separated path relative to pages/, extension kept.
	Pages map[string]node.Tree
	// Templates are keyed by logical name: path relative to templates/
	// without extension.
	Templates map[string]node.Tree
}

// NewSiteTree returns an empty SiteTree.
func NewSiteTree() *SiteTree {
	return &SiteTree{
		Pages:     make(map[string]node.Tree),
		Templates: make(map[string]node.Tree),
	}
}

// PageKeys returns the page keys in lexicographic order.
func (s *SiteTree) PageKeys() []string { return sets.SortedKeys(s.Pages) }

// TemplateNames returns the template names in lexicographic order.
func (s *SiteTree) TemplateNames() []string { return sets.SortedKeys(s.Templates) }

// Output is one compiled page ready for writing.
type Output struct {
	Page string // page key
	Path string // output path relative to the output root
	Text string
}

// OutputFor builds the Output of a page key, rewriting the extension of
// Markdown and notebook sources.
func OutputFor(page, text string) Output {
	return Output{Page: page, Path: markdown.OutputPath(page), Text: text}
}
