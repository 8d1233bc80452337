// Package build provides the canonical build execution path. The CLI build
// command and every watch-triggered rebuild route through Service.Run.
package build

import (
	"time"

	"git.home.luguber.info/inful/tagsite/internal/compiler"
	"git.home.luguber.info/inful/tagsite/internal/markdown"
)

// Request contains all inputs required to execute a build.
type Request struct {
	InputDir  string
	OutputDir string

	// ReplaceOutput allows a non-empty output directory. Watch mode sets it
	// for rebuilds after the first one.
	ReplaceOutput bool

	Options Options
}

// Options provides optional build behavior modifiers.
type Options struct {
	// GitInfo adds git_commit, git_short_commit and git_commit_date globals.
	GitInfo bool

	// MaxDepth caps template nesting (0 = compiler default).
	MaxDepth int

	// Markdown tunes the Markdown renderer.
	Markdown markdown.Options
}

// Status represents the outcome of a build execution.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Result contains the outcome of a build execution.
type Result struct {
	BuildID string
	Status  Status

	// Compile is the compiler's own report; nil when the run failed before
	// compiling.
	Compile *compiler.Report

	Pages       int
	Assets      int
	PublicFiles int
	// Outputs lists every compiled page in output path order.
	Outputs []compiler.Output

	ConfigPath string
	Warnings   []string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
