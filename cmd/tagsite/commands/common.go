// Package commands holds the kong command tree of the tagsite binary.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/tagsite/internal/build"
	"git.home.luguber.info/inful/tagsite/internal/compiler"
	"git.home.luguber.info/inful/tagsite/internal/markdown"
)

// LogLevelEnv overrides the log level when -v is not given.
const LogLevelEnv = "TAGSITE_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Compile the input directory into the output directory (default command)"`
	Watch WatchCmd `cmd:"" help:"Build once, then rebuild whenever the input directory changes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SiteFlags are the flags shared by build and watch.
type SiteFlags struct {
	InputDir  string `short:"i" name:"inputdir" required:"" type:"path" help:"Input directory containing pages/, templates/ and public/"`
	OutputDir string `short:"o" name:"outputdir" required:"" type:"path" help:"Output directory; must exist and be empty"`
	GitInfo   bool   `name:"git-info" help:"Expose git_commit, git_short_commit and git_commit_date as globals"`
	MaxDepth  int    `name:"max-depth" default:"64" help:"Maximum template nesting depth"`
	HardWraps bool   `name:"hard-wraps" help:"Render soft line breaks in Markdown as <br>"`
	XHTML     bool   `name:"xhtml" help:"Emit self-closing void elements in rendered Markdown"`
}

// Request converts the flags into a build request.
func (f SiteFlags) Request() build.Request {
	maxDepth := f.MaxDepth
	if maxDepth <= 0 {
		maxDepth = compiler.DefaultMaxDepth
	}
	return build.Request{
		InputDir:  f.InputDir,
		OutputDir: f.OutputDir,
		Options: build.Options{
			GitInfo:  f.GitInfo,
			MaxDepth: maxDepth,
			Markdown: markdown.Options{HardWraps: f.HardWraps, XHTML: f.XHTML},
		},
	}
}
