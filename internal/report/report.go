// Package report collects per-file results of an operation and renders
// the end-of-run summary. Every operation keeps going after individual
// failures; the summary and the process exit code carry the outcome.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Status of one file after an operation.
type Status int

const (
	// StatusOK means the file was modified.
	StatusOK Status = iota
	// StatusSkipped means the file was already in the desired state.
	StatusSkipped
	// StatusFailed means the operation on the file failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult is the outcome for one file.
type FileResult struct {
	File   string
	Status Status
	Detail string // applied action, e.g. the new name
	Err    error
}

// Summary is the aggregate result of one operation run.
type Summary struct {
	Op              string
	Results         []FileResult
	UnmatchedTracks []string
	UnmatchedFiles  []string
}

// New creates a Summary for the named operation.
func New(op string) *Summary {
	return &Summary{Op: op}
}

// AddOK records a modified file.
func (s *Summary) AddOK(file, detail string) {
	s.Results = append(s.Results, FileResult{File: file, Status: StatusOK, Detail: detail})
}

// AddSkipped records a file that was already up to date.
func (s *Summary) AddSkipped(file string) {
	s.Results = append(s.Results, FileResult{File: file, Status: StatusSkipped})
}

// AddFailed records a per-file failure.
func (s *Summary) AddFailed(file string, err error) {
	s.Results = append(s.Results, FileResult{File: file, Status: StatusFailed, Err: err})
}

// Changed returns the files that were actually modified.
func (s *Summary) Changed() []FileResult {
	var out []FileResult
	for _, r := range s.Results {
		if r.Status == StatusOK {
			out = append(out, r)
		}
	}
	return out
}

// HasFailures reports whether any per-file operation failed.
func (s *Summary) HasFailures() bool {
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// ExitCode maps the summary to the process exit code: 0 when everything
// succeeded, 1 when any file failed.
func (s *Summary) ExitCode() int {
	if s.HasFailures() {
		return 1
	}
	return 0
}

// Render writes the human-readable summary table to w.
func (s *Summary) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"file", "status", "detail"})

	for _, r := range s.Results {
		detail := r.Detail
		if r.Err != nil {
			detail = r.Err.Error()
		}
		tw.AppendRow(table.Row{r.File, r.Status.String(), detail})
	}
	for _, track := range s.UnmatchedTracks {
		tw.AppendRow(table.Row{track, "no file", ""})
	}
	for _, file := range s.UnmatchedFiles {
		tw.AppendRow(table.Row{file, "no track", ""})
	}

	tw.Render()

	ok, skipped, failed := s.counts()
	fmt.Fprintf(w, "%s: %d changed, %d up to date, %d failed\n", s.Op, ok, skipped, failed)
}

func (s *Summary) counts() (ok, skipped, failed int) {
	for _, r := range s.Results {
		switch r.Status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return ok, skipped, failed
}
