package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/tagsite/cmd/tagsite/commands"
	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("tagsite"),
		kong.Description("Compile a tree of tagged pages and templates into a static site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default()}
	if err := parser.Run(global, cli); err != nil {
		serrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
