package compiler

import (
	"context"
	"errors"
	"fmt"
	"time"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
	"git.home.luguber.info/inful/tagsite/internal/metrics"
	"git.home.luguber.info/inful/tagsite/internal/observability"
	"git.home.luguber.info/inful/tagsite/internal/scope"
)

// Pass is one whole-site rewrite step.
type Pass func(ctx context.Context, st *State) error

// PassErrorKind enumerates structured pass error categories.
type PassErrorKind string

const (
	PassErrorFatal    PassErrorKind = "fatal"    // Build must abort.
	PassErrorCanceled PassErrorKind = "canceled" // Context cancellation.
)

// PassError records which pass failed and why.
type PassError struct {
	Kind PassErrorKind
	Pass PassName
	Err  error
}

func (e *PassError) Error() string { return fmt.Sprintf("%s pass %s: %v", e.Kind, e.Pass, e.Err) }
func (e *PassError) Unwrap() error { return e.Err }

// State carries the site and shared lookup tables across passes.
type State struct {
	Site    *SiteTree
	Scope   *scope.Scope
	Globals scope.Globals
	Opts    Options
	Report  *Report

	// Outputs is filled by the merge pass.
	Outputs []Output
}

func newState(site *SiteTree, globals scope.Globals, opts Options) *State {
	return &State{
		Site:    site,
		Scope:   scope.New(),
		Globals: globals,
		Opts:    opts,
		Report:  newReport(),
	}
}

// runPasses executes passes in order, recording timings and stopping on the
// first error.
func runPasses(ctx context.Context, st *State, passes []passDef, rec metrics.Recorder) error {
	for _, p := range passes {
		select {
		case <-ctx.Done():
			pe := &PassError{Kind: PassErrorCanceled, Pass: p.Name, Err: ctx.Err()}
			st.Report.recordFailure(p.Name, pe)
			rec.IncPassResult(string(p.Name), metrics.ResultCanceled)
			return pe
		default:
		}

		pctx := observability.WithPass(ctx, string(p.Name))
		t0 := time.Now()
		err := p.Fn(pctx, st)
		dur := time.Since(t0)
		st.Report.PassDurations[p.Name] = dur
		st.Report.PassOrder = append(st.Report.PassOrder, p.Name)
		rec.ObservePassDuration(string(p.Name), dur)

		if err != nil {
			var pe *PassError
			if !errors.As(err, &pe) {
				pe = &PassError{Kind: PassErrorFatal, Pass: p.Name, Err: err}
			}
			st.Report.recordFailure(p.Name, pe)
			rec.IncPassResult(string(p.Name), metrics.ResultFatal)
			if se, ok := serrors.As(err); ok {
				rec.IncErrorKind(string(se.Kind))
			}
			observability.DebugContext(pctx, "Pass failed", logfields.Error(err))
			return pe
		}

		rec.IncPassResult(string(p.Name), metrics.ResultSuccess)
		observability.DebugContext(pctx, "Pass complete", logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}
