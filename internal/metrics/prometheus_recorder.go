package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "tagsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	passDuration  *prom.HistogramVec
	buildDuration prom.Histogram
	passResults   *prom.CounterVec
	buildOutcome  *prom.CounterVec
	errorKinds    *prom.CounterVec
	pages         prom.Gauge
	outputFiles   prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		passDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of individual compiler passes",
			Buckets:   prom.DefBuckets,
		}, []string{"pass"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		passResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pass_results_total",
			Help:      "Pass result counts by outcome",
		}, []string{"pass", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		errorKinds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_errors_total",
			Help:      "Fatal build errors by kind",
		}, []string{"kind"}),
		pages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages",
			Help:      "Pages compiled by the last build",
		}),
		outputFiles: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "output_files",
			Help:      "Files written by the last build, public assets included",
		}),
	}
	reg.MustRegister(pr.passDuration, pr.buildDuration, pr.passResults, pr.buildOutcome, pr.errorKinds, pr.pages, pr.outputFiles)
	return pr
}

func (p *PrometheusRecorder) ObservePassDuration(pass string, d time.Duration) {
	if p == nil {
		return
	}
	p.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPassResult(pass string, result ResultLabel) {
	if p == nil {
		return
	}
	p.passResults.WithLabelValues(pass, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncErrorKind(kind string) {
	if p == nil {
		return
	}
	p.errorKinds.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetPages(n int) {
	if p == nil {
		return
	}
	p.pages.Set(float64(n))
}

func (p *PrometheusRecorder) SetOutputFiles(n int) {
	if p == nil {
		return
	}
	p.outputFiles.Set(float64(n))
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format read by the node exporter textfile collector.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
