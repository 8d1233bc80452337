package build

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/tagsite/internal/compiler"
	"git.home.luguber.info/inful/tagsite/internal/config"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
	"git.home.luguber.info/inful/tagsite/internal/markdown"
	"git.home.luguber.info/inful/tagsite/internal/metrics"
	"git.home.luguber.info/inful/tagsite/internal/observability"
	"git.home.luguber.info/inful/tagsite/internal/site"
)

// Service runs full builds.
type Service struct {
	recorder metrics.Recorder
}

// NewService creates a Service with a no-op recorder.
func NewService() *Service {
	return &Service{recorder: metrics.NoopRecorder{}}
}

// WithRecorder injects a metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// Run executes the whole pipeline: validate, load config and sources,
// compile, stage output and commit it. The result is never nil. On any
// error the output directory is left as it was.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result := &Result{BuildID: uuid.NewString(), StartTime: start}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	err := s.run(ctx, req, result)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)
	switch {
	case err == nil:
		result.Status = StatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result.Status = StatusCancelled
	default:
		result.Status = StatusFailed
	}
	if result.Compile == nil {
		// The compiler records its own outcome; failures before it get one here.
		s.recorder.IncBuildOutcome(string(result.Status))
	}

	if err != nil {
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
		return result, err
	}
	observability.InfoContext(ctx, "Build complete",
		logfields.Count(len(result.Outputs)),
		slog.Int("assets", result.Assets),
		slog.Int("public_files", result.PublicFiles),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return result, nil
}

func (s *Service) run(ctx context.Context, req Request, result *Result) error {
	if !req.ReplaceOutput {
		if err := site.ValidateDirs(req.InputDir, req.OutputDir); err != nil {
			return err
		}
	}

	unexpected, err := site.CheckInputRoot(req.InputDir)
	if err != nil {
		return err
	}
	for _, name := range unexpected {
		result.Warnings = append(result.Warnings, "unexpected input entry "+name)
	}

	cfg, err := config.Load(req.InputDir)
	if err != nil {
		return err
	}
	if req.Options.GitInfo {
		cfg = cfg.WithGitInfo(req.InputDir)
	}
	result.ConfigPath = cfg.Path

	loader := site.NewLoader(markdown.NewRenderer(req.Options.Markdown))
	in, err := loader.Load(req.InputDir)
	if err != nil {
		return err
	}
	result.Pages = len(in.Site.Pages)
	result.Assets = len(in.Assets)

	comp := compiler.New(compiler.Options{MaxDepth: req.Options.MaxDepth}).SetRecorder(s.recorder)
	res, err := comp.Compile(ctx, in.Site, cfg.Globals())
	result.Compile = res.Report
	if err != nil {
		return err
	}
	result.Outputs = res.Outputs

	return s.commit(ctx, req, in, res.Outputs, result)
}

// commit stages public files, page assets and compiled pages, then promotes
// the staging directory. A page output that collides with a public file is
// an OutputConflict.
func (s *Service) commit(ctx context.Context, req Request, in *site.Input, outputs []compiler.Output, result *Result) error {
	stage, err := site.NewStage(req.OutputDir)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			stage.Abort()
		}
	}()

	n, err := stage.CopyTree(filepath.Join(req.InputDir, site.PublicDir))
	if err != nil {
		return err
	}
	result.PublicFiles = n

	for _, a := range in.Assets {
		if err := stage.CopyFile(a.Rel, a.Src); err != nil {
			return err
		}
	}
	for _, o := range outputs {
		if err := stage.WriteFile(o.Path, filepath.ToSlash(filepath.Join(site.PagesDir, o.Page)), []byte(o.Text)); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := stage.Commit(); err != nil {
		return err
	}
	committed = true
	s.recorder.SetOutputFiles(stage.Files())
	observability.DebugContext(ctx, "Committed output", logfields.Path(req.OutputDir), logfields.Count(stage.Files()))
	return nil
}
