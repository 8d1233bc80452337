// Package watch rebuilds a site whenever its input tree changes. Every
// rebuild is a full build through build.Service; bursts of file events are
// coalesced into one rebuild.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/tagsite/internal/build"
	"git.home.luguber.info/inful/tagsite/internal/config"
	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
	"git.home.luguber.info/inful/tagsite/internal/site"
)

// Defaults for Config.
const (
	DefaultQuietWindow = 300 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

// Builder runs one full build. *build.Service implements it.
type Builder interface {
	Run(ctx context.Context, req build.Request) (*build.Result, error)
}

// Config controls a Watcher.
type Config struct {
	InputDir  string
	OutputDir string
	Options   build.Options

	// QuietWindow is how long the tree must stay unchanged before a rebuild.
	QuietWindow time.Duration
	// MaxDelay bounds how long a steady stream of events can postpone one.
	MaxDelay time.Duration

	// OnBuild, when set, is called after every build with its outcome.
	OnBuild func(*build.Result, error)
}

// Watcher serialises rebuilds on the goroutine that calls Run.
type Watcher struct {
	builder Builder
	cfg     Config

	inputAbs  string
	outputAbs string

	readyOnce sync.Once
	ready     chan struct{}

	committed bool
	builds    int
}

// New validates cfg and creates a Watcher.
func New(builder Builder, cfg Config) (*Watcher, error) {
	if builder == nil {
		return nil, serrors.InvalidInput("builder is required")
	}
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = DefaultQuietWindow
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.MaxDelay < cfg.QuietWindow {
		return nil, serrors.InvalidInput("max delay must not be shorter than the quiet window")
	}
	in, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		return nil, serrors.InvalidInput(fmt.Sprintf("resolve input directory: %v", err))
	}
	out, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, serrors.InvalidInput(fmt.Sprintf("resolve output directory: %v", err))
	}
	return &Watcher{builder: builder, cfg: cfg, inputAbs: in, outputAbs: out, ready: make(chan struct{})}, nil
}

// Ready is closed once the initial build finished and the input tree is
// being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Builds returns how many builds Run has started. Only safe to call from
// OnBuild or after Run returned.
func (w *Watcher) Builds() int { return w.builds }

// Run performs an initial build, then rebuilds after each settled burst of
// changes until ctx is done. Build failures are logged and do not stop the
// loop; the previous output stays in place.
func (w *Watcher) Run(ctx context.Context) error {
	if err := site.ValidateDirs(w.cfg.InputDir, w.cfg.OutputDir); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if cerr := fsw.Close(); cerr != nil {
			slog.Error("Error closing file watcher", logfields.Error(cerr))
		}
	}()

	if err := w.addTree(fsw, w.inputAbs); err != nil {
		return err
	}
	slog.Info("Watching input directory", logfields.Path(w.inputAbs))

	w.rebuild(ctx, "initial")
	w.readyOnce.Do(func() { close(w.ready) })

	quiet := newStoppedTimer()
	maxWait := newStoppedTimer()
	var (
		quietC   <-chan time.Time
		maxC     <-chan time.Time
		pending  int
		lastFile string
	)

	fire := func(reason string) {
		quietC, maxC = nil, nil
		stopTimer(quiet)
		stopTimer(maxWait)
		slog.Debug("Change burst settled", slog.String("reason", reason), logfields.Count(pending), logfields.File(lastFile))
		pending = 0
		w.rebuild(ctx, lastFile)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, serr := os.Stat(ev.Name); serr == nil && info.IsDir() {
					if aerr := w.addTree(fsw, ev.Name); aerr != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(aerr))
					}
				}
			}
			lastFile = w.rel(ev.Name)
			pending++
			resetTimer(quiet, w.cfg.QuietWindow)
			quietC = quiet.C
			if pending == 1 {
				resetTimer(maxWait, w.cfg.MaxDelay)
				maxC = maxWait.C
			}

		case <-quietC:
			fire("quiet")

		case <-maxC:
			fire("max_delay")

		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(werr))
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	w.builds++
	req := build.Request{
		InputDir:      w.cfg.InputDir,
		OutputDir:     w.cfg.OutputDir,
		ReplaceOutput: w.committed,
		Options:       w.cfg.Options,
	}
	res, err := w.builder.Run(ctx, req)
	if err == nil {
		w.committed = true
		slog.Info("Rebuilt site", slog.String("trigger", trigger), logfields.Count(w.builds))
	} else {
		slog.Error("Rebuild failed, keeping previous output", slog.String("trigger", trigger), logfields.Error(err))
	}
	if w.cfg.OnBuild != nil {
		w.cfg.OnBuild(res, err)
	}
}

// relevant filters out events that cannot change the build: hidden files
// (staging directories included), the output directory when it lives inside
// the input root, and pure permission changes.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if within(abs, w.outputAbs) {
		return false
	}
	rel, err := filepath.Rel(w.inputAbs, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	if rel == config.EnvFileName {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

func (w *Watcher) rel(path string) string {
	if rel, err := filepath.Rel(w.inputAbs, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// addTree watches root and every non-hidden directory below it. fsnotify
// does not recurse on its own.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		abs, aerr := filepath.Abs(path)
		if aerr != nil {
			return aerr
		}
		if path != root && strings.HasPrefix(d.Name(), ".") || within(abs, w.outputAbs) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return serrors.IOError("watch directory", path, err)
		}
		return nil
	})
}

func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	stopTimer(t)
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, after time.Duration) {
	stopTimer(t)
	t.Reset(after)
}
