// Package node defines the flat node sequence every source file is tokenized
// into, and the two operations at either end of the compiler pipeline:
// Parse (text to nodes) and Merge (nodes back to a single literal).
package node

import (
	"strings"
)

// Kind discriminates the two node variants.
type Kind int

const (
	KindContent Kind = iota // literal, already-resolved text
	KindTag                 // pending {% command args %} directive
)

// Node is either a run of literal text or a tag awaiting resolution.
type Node struct {
	Kind    Kind
	Text    string   // KindContent only
	Command string   // KindTag only, never empty
	Args    []string // KindTag only, whitespace-split tokens after the command
	Raw     string   // KindTag only, trimmed interior with original spacing
}

// Content builds a literal node.
func Content(text string) Node {
	return Node{Kind: KindContent, Text: text}
}

// Tag builds a tag node from a command and its arguments.
func Tag(command string, args ...string) Node {
	raw := command
	if len(args) > 0 {
		raw += " " + strings.Join(args, " ")
	}
	return Node{Kind: KindTag, Command: command, Args: args, Raw: raw}
}

// IsTag reports whether n is a tag node.
func (n Node) IsTag() bool { return n.Kind == KindTag }

// Is reports whether n is a tag with the given command.
func (n Node) Is(command string) bool { return n.Kind == KindTag && n.Command == command }

// String renders the node back to source form.
func (n Node) String() string {
	if n.Kind == KindContent {
		return n.Text
	}
	return OpenDelim + " " + n.Raw + " " + CloseDelim
}

// Tree is the ordered node sequence of one source file.
type Tree []Node

// Clone returns a copy whose backing array can be spliced without touching t.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	copy(out, t)
	return out
}

// Find returns the index of the first tag with the given command, or -1.
func (t Tree) Find(command string) int {
	for i, n := range t {
		if n.Is(command) {
			return i
		}
	}
	return -1
}

// Count returns how many tags carry the given command.
func (t Tree) Count(command string) int {
	c := 0
	for _, n := range t {
		if n.Is(command) {
			c++
		}
	}
	return c
}

// Splice returns a new tree with the node at index i replaced by repl.
func (t Tree) Splice(i int, repl Tree) Tree {
	out := make(Tree, 0, len(t)-1+len(repl))
	out = append(out, t[:i]...)
	out = append(out, repl...)
	out = append(out, t[i+1:]...)
	return out
}
