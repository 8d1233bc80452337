package node

import (
	"regexp"
	"strings"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
)

// Tag delimiters.
const (
	OpenDelim  = "{%"
	CloseDelim = "%}"
)

// tagPattern matches one delimiter-bounded region. Interiors are never scanned
// for further delimiters; inline constructs such as for carry their body as
// trailing tokens of the same tag.
var tagPattern = regexp.MustCompile(`(?s)\{%(.*?)%\}`)

// Parse tokenizes raw file text into a Tree. Gaps between tags become Content
// nodes (empty gaps are omitted); each tag interior is trimmed and split on
// whitespace into command and args.
func Parse(text string) (Tree, error) {
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	tree := make(Tree, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		if m[0] > last {
			tree = append(tree, Content(text[last:m[0]]))
		}
		raw := strings.TrimSpace(text[m[2]:m[3]])
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			return nil, serrors.MalformedTag("", "empty tag "+text[m[0]:m[1]]).
				WithContext("offset", m[0])
		}
		tree = append(tree, Node{
			Kind:    KindTag,
			Command: fields[0],
			Args:    fields[1:],
			Raw:     raw,
		})
		last = m[1]
	}
	if last < len(text) {
		tree = append(tree, Content(text[last:]))
	}
	return tree, nil
}
