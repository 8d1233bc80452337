package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/tagsite/internal/build"
	"git.home.luguber.info/inful/tagsite/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SiteFlags `embed:""`

	Report      string `name:"report" type:"path" help:"Write a JSON build report to this file"`
	MetricsFile string `name:"metrics-file" type:"path" help:"Write Prometheus metrics in textfile-collector format to this file"`
}

func (b *BuildCmd) Run(_ *Global, _ *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return b.run(ctx)
}

func (b *BuildCmd) run(ctx context.Context) error {
	var reg *prom.Registry
	svc := build.NewService()
	if b.MetricsFile != "" {
		reg = prom.NewRegistry()
		svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
	}

	res, err := svc.Run(ctx, b.Request())

	if b.Report != "" {
		rep := build.NewReport(res, err)
		if perr := rep.Persist(b.Report); perr != nil {
			slog.Warn("Failed to write build report", "path", b.Report, "error", perr)
		} else {
			slog.Info("Build report written", "path", b.Report, "summary", rep.Summary())
		}
	}
	if reg != nil {
		if merr := metrics.WriteTextfile(b.MetricsFile, reg); merr != nil {
			slog.Warn("Failed to write metrics file", "path", b.MetricsFile, "error", merr)
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("Built %d pages into %s\n", len(res.Outputs), b.OutputDir)
	return nil
}
