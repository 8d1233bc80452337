package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inful/mdfp"
	"github.com/natefinch/atomic"

	"git.home.luguber.info/inful/tagsite/internal/compiler"
	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
)

// ReportSchemaVersion is bumped whenever a field changes meaning.
const ReportSchemaVersion = 1

// Report is the JSON form of a build result written by --report.
type Report struct {
	SchemaVersion int            `json:"schema_version"`
	BuildID       string         `json:"build_id"`
	Status        Status         `json:"status"`
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	DurationMS    float64        `json:"duration_ms"`
	ConfigPath    string         `json:"config_path,omitempty"`
	Pages         int            `json:"pages"`
	Templates     int            `json:"templates"`
	Bindings      int            `json:"bindings"`
	Assets        int            `json:"assets"`
	PublicFiles   int            `json:"public_files"`
	Passes        []PassTiming   `json:"passes,omitempty"`
	FailedPass    string         `json:"failed_pass,omitempty"`
	Error         *ReportError   `json:"error,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	Outputs       []OutputRecord `json:"outputs,omitempty"`
}

// PassTiming is one pass duration.
type PassTiming struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
}

// ReportError describes the failure that ended the run.
type ReportError struct {
	Kind     string `json:"kind,omitempty"`
	Category string `json:"category,omitempty"`
	File     string `json:"file,omitempty"`
	Command  string `json:"command,omitempty"`
	Message  string `json:"message"`
}

// OutputRecord identifies one compiled page and the fingerprint of its text.
type OutputRecord struct {
	Page        string `json:"page"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

func millis(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// NewReport converts a build result and its error into a Report.
func NewReport(r *Result, err error) *Report {
	rep := &Report{
		SchemaVersion: ReportSchemaVersion,
		BuildID:       r.BuildID,
		Status:        r.Status,
		Start:         r.StartTime,
		End:           r.EndTime,
		DurationMS:    millis(r.Duration),
		ConfigPath:    r.ConfigPath,
		Pages:         r.Pages,
		Assets:        r.Assets,
		PublicFiles:   r.PublicFiles,
		Warnings:      r.Warnings,
	}

	if c := r.Compile; c != nil {
		rep.Templates = c.Templates
		rep.Bindings = c.Bindings
		rep.FailedPass = string(c.FailedPass)
		for _, p := range c.PassOrder {
			rep.Passes = append(rep.Passes, PassTiming{Name: string(p), DurationMS: millis(c.PassDurations[p])})
		}
	}

	for _, o := range r.Outputs {
		rep.Outputs = append(rep.Outputs, OutputRecord{Page: o.Page, Path: o.Path, Fingerprint: Fingerprint(o)})
	}

	if err != nil {
		rep.Error = &ReportError{Message: err.Error(), Category: string(serrors.GetCategory(err))}
		if se, ok := serrors.As(err); ok {
			rep.Error.Kind = string(se.Kind)
			rep.Error.File = se.File
			rep.Error.Command = se.Command
		}
	}
	return rep
}

// Fingerprint returns the content fingerprint of a compiled page. The output
// path takes the place of front matter so identical text at two paths
// differs.
func Fingerprint(o compiler.Output) string {
	return mdfp.CalculateFingerprintFromParts("path: "+o.Path, o.Text)
}

// Persist writes the report as indented JSON to path atomically.
func (r *Report) Persist(path string) error {
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(append(jb, '\n'))); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Summary returns a one-line human readable digest.
func (r *Report) Summary() string {
	s := fmt.Sprintf("build=%s status=%s pages=%d templates=%d assets=%d public=%d duration=%.1fms",
		r.BuildID, r.Status, r.Pages, r.Templates, r.Assets, r.PublicFiles, r.DurationMS)
	if r.Error != nil {
		s += " error=" + r.Error.Kind
	}
	return s
}
