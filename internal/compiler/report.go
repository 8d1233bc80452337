package compiler

import "time"

// Outcome is the final state of a compile run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures what a compile run did.
type Report struct {
	Start         time.Time
	End           time.Time
	Pages         int
	Templates     int
	Bindings      int // def bindings across all pages
	PassOrder     []PassName
	PassDurations map[PassName]time.Duration
	FailedPass    PassName
	Outcome       Outcome
	Err           error
}

func newReport() *Report {
	return &Report{
		Start:         time.Now(),
		PassDurations: make(map[PassName]time.Duration),
	}
}

func (r *Report) recordFailure(pass PassName, pe *PassError) {
	r.FailedPass = pass
	r.Err = pe
	if pe.Kind == PassErrorCanceled {
		r.Outcome = OutcomeCanceled
		return
	}
	r.Outcome = OutcomeFailed
}

func (r *Report) finish() {
	r.End = time.Now()
	if r.Outcome == "" {
		r.Outcome = OutcomeSuccess
	}
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }
