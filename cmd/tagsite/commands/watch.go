package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/tagsite/internal/build"
	"git.home.luguber.info/inful/tagsite/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SiteFlags `embed:""`

	Debounce time.Duration `name:"debounce" default:"300ms" help:"Quiet period after the last change before rebuilding"`
	MaxDelay time.Duration `name:"max-delay" default:"5s" help:"Upper bound on how long continuous changes can postpone a rebuild"`
}

func (w *WatchCmd) Run(_ *Global, _ *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, build.NewService())
}

func (w *WatchCmd) run(ctx context.Context, b watch.Builder) error {
	req := w.Request()
	watcher, err := watch.New(b, watch.Config{
		InputDir:    req.InputDir,
		OutputDir:   req.OutputDir,
		Options:     req.Options,
		QuietWindow: w.Debounce,
		MaxDelay:    w.MaxDelay,
	})
	if err != nil {
		return err
	}

	slog.Info("Starting watch mode, press Ctrl+C to stop", "input", req.InputDir, "output", req.OutputDir)
	if err := watcher.Run(ctx); err != nil {
		return err
	}
	slog.Info("Watch mode stopped")
	return nil
}
