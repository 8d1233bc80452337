// Package metrics provides build observability hooks for the compiler.
//
// Components receive a Recorder and default to NoopRecorder, so callers never
// need nil checks. The CLI swaps in a PrometheusRecorder when --metrics-file
// is given and writes the gathered families as a node-exporter textfile once
// the run finishes:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	c := compiler.New(opts, compiler.WithRecorder(rec))
//	...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
