package node

import "strings"

// Merge concatenates every consecutive run of Content nodes into one. Tags
// are kept in place, so the result alternates between Content and Tag nodes.
func Merge(t Tree) Tree {
	out := make(Tree, 0, len(t))
	var run strings.Builder
	inRun := false

	flush := func() {
		if inRun {
			out = append(out, Content(run.String()))
			run.Reset()
			inRun = false
		}
	}

	for _, n := range t {
		if n.Kind == KindContent {
			run.WriteString(n.Text)
			inRun = true
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}

// Literal reduces a fully resolved tree to its text. It returns the first
// leftover tag when the tree does not reduce to a single Content node.
func Literal(t Tree) (string, *Node) {
	merged := Merge(t)
	for i := range merged {
		if merged[i].IsTag() {
			return "", &merged[i]
		}
	}
	if len(merged) == 0 {
		return "", nil
	}
	return merged[0].Text, nil
}
