package metrics

import "time"

// ResultLabel enumerates pass result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for build and pass metrics.
type Recorder interface {
	ObservePassDuration(pass string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncPassResult(pass string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|failed|canceled
	IncErrorKind(kind string)
	SetPages(n int)
	SetOutputFiles(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)        {}
func (NoopRecorder) IncPassResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                    {}
func (NoopRecorder) IncErrorKind(string)                       {}
func (NoopRecorder) SetPages(int)                              {}
func (NoopRecorder) SetOutputFiles(int)                        {}
