// Package report accumulates per-element diagnostics during a conversion run.
//
// Structural failures abort a run and travel as errors; everything smaller
// (a skipped edge, a dropped column, an attribute conflict) lands here and is
// returned to the caller alongside the artifact.
package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/topotab/topotab/pkg/errors"
)

// Severity grades a diagnostic entry.
type Severity string

const (
	// SeverityError marks an element that was skipped.
	SeverityError Severity = "error"
	// SeverityWarning marks a degradation that lost nothing structural.
	SeverityWarning Severity = "warning"
)

// Entry is one diagnostic: which element, what happened, how bad.
type Entry struct {
	Code     errors.Code
	Severity Severity
	Element  string // Element identifier (cell id, row number, device key)
	Message  string
}

// String formats the entry for logs.
func (e Entry) String() string {
	if e.Element == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Element, e.Message)
}

// Report collects the diagnostics of one conversion run.
type Report struct {
	// RunID uniquely identifies the run across log lines and artifacts.
	RunID   string
	Entries []Entry
}

// New returns an empty report with a fresh run id.
func New() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Error records a skipped element.
func (r *Report) Error(code errors.Code, element, format string, args ...any) {
	r.Entries = append(r.Entries, Entry{
		Code:     code,
		Severity: SeverityError,
		Element:  element,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warn records a non-fatal degradation.
func (r *Report) Warn(code errors.Code, element, format string, args ...any) {
	r.Entries = append(r.Entries, Entry{
		Code:     code,
		Severity: SeverityWarning,
		Element:  element,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors returns the entries with error severity.
func (r *Report) Errors() []Entry {
	return r.filter(SeverityError)
}

// Warnings returns the entries with warning severity.
func (r *Report) Warnings() []Entry {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(sev Severity) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

// Merge appends another report's entries, keeping this report's run id.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Entries = append(r.Entries, other.Entries...)
}

// Summary returns a one-line digest for status output.
func (r *Report) Summary() string {
	errs := len(r.Errors())
	warns := len(r.Warnings())
	if errs == 0 && warns == 0 {
		return "clean"
	}

	var parts []string
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", errs))
	}
	if warns > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", warns))
	}
	return strings.Join(parts, ", ")
}
