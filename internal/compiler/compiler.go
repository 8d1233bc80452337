// Package compiler resolves the tag language over a whole site. Every pass
// rewrites all pages and templates before the next one starts:
//
//	def -> use -> for -> global -> expand -> template (templates) -> template (pages) -> merge
//
// Passes share one Scope of def bindings and the read-only site globals.
package compiler

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/tagsite/internal/logfields"
	"git.home.luguber.info/inful/tagsite/internal/metrics"
	"git.home.luguber.info/inful/tagsite/internal/observability"
	"git.home.luguber.info/inful/tagsite/internal/scope"
)

// DefaultMaxDepth bounds template inheritance chains and nested expand.
const DefaultMaxDepth = 64

// Options tune a compile run.
type Options struct {
	// MaxDepth caps template nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Compiler runs the pass pipeline.
type Compiler struct {
	opts     Options
	recorder metrics.Recorder
}

// New creates a Compiler.
func New(opts Options) *Compiler {
	return &Compiler{opts: opts, recorder: metrics.NoopRecorder{}}
}

// SetRecorder injects a metrics recorder (optional). Returns the compiler for chaining.
func (c *Compiler) SetRecorder(r metrics.Recorder) *Compiler {
	if r == nil {
		c.recorder = metrics.NoopRecorder{}
		return c
	}
	c.recorder = r
	return c
}

// Result is the outcome of a successful compile.
type Result struct {
	// Outputs are sorted by page key.
	Outputs []Output
	Report  *Report
}

// Compile resolves every tag in site. The site trees are rewritten in place.
// The result is never nil: on error it carries the report and no outputs.
func (c *Compiler) Compile(ctx context.Context, site *SiteTree, globals scope.Globals) (*Result, error) {
	st := newState(site, globals, c.opts)
	st.Report.Pages = len(site.Pages)
	st.Report.Templates = len(site.Templates)

	err := runPasses(ctx, st, pipeline(), c.recorder)
	st.Report.finish()
	c.recorder.ObserveBuildDuration(st.Report.Duration())
	c.recorder.IncBuildOutcome(string(st.Report.Outcome))
	if err != nil {
		return &Result{Report: st.Report}, err
	}

	c.recorder.SetPages(len(st.Outputs))
	observability.InfoContext(ctx, "Compiled site",
		logfields.Count(len(st.Outputs)),
		slog.Int("templates", st.Report.Templates),
		logfields.DurationMS(float64(st.Report.Duration().Microseconds())/1000))
	return &Result{Outputs: st.Outputs, Report: st.Report}, nil
}
