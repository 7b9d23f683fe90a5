// Package pipeline drives the extract → build → normalize → serialize →
// render pipeline over a directory of LaTeX tsumego sources.
//
// The pipeline is strictly sequential and carries no state across files:
// each .tex file is read, its diagram blocks are parsed into boards, and
// every board is written as one SGF file. Failures are scoped as narrowly
// as possible: a malformed diagram is recorded and skipped without
// touching its siblings, render failures never remove SGF output, and only
// problems with the input or output directories abort the run.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    InputDir:  "problems/",
//	    OutputDir: "out/",
//	    Normalize: true,
//	}
//	result, err := runner.Execute(ctx, &opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gotsumego/tasuki2sgf/pkg/errors"
	"github.com/gotsumego/tasuki2sgf/pkg/render"
)

// Options configure one pipeline run.
type Options struct {
	// InputDir holds the .tex source files. Required.
	InputDir string

	// OutputDir receives one subdirectory per source file. Required.
	OutputDir string

	// Only restricts the run to these base names inside InputDir. Empty
	// means every .tex file.
	Only []string

	// Normalize rewrites every problem so black is the side to move.
	Normalize bool

	// Render invokes sgf-render for every written SGF file.
	Render bool

	// Merge additionally writes one collection SGF per source file.
	Merge bool

	// CommentsFile is an optional TOML file with per-collection comments
	// used as the merged SGF root comment.
	CommentsFile string

	// RenderBinary overrides the renderer executable name. Defaults to
	// render.DefaultBinary.
	RenderBinary string

	// RenderOptions configure the renderer invocation.
	RenderOptions render.Options

	validated bool
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.InputDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input directory is required")
	}
	if o.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "output directory is required")
	}
	if o.RenderBinary == "" {
		o.RenderBinary = render.DefaultBinary
	}
	if o.RenderOptions.Style == "" {
		o.RenderOptions = render.DefaultOptions()
	}
	o.validated = true
	return nil
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Files holds one entry per processed source file, in directory order.
	Files []FileResult

	// Stats aggregates counts and timings across all files.
	Stats Stats
}

// FileResult is the outcome for a single source file.
type FileResult struct {
	// Source is the .tex file path.
	Source string

	// Diagrams is the number of diagram blocks found.
	Diagrams int

	// Written lists the SGF files produced, in diagram order.
	Written []string

	// Merged is the path of the collection SGF, when merging was on.
	Merged string

	// Rendered counts successfully rendered images.
	Rendered int

	// Failures holds the per-diagram and per-render errors for this file.
	// A failure here never aborts the remaining diagrams or files.
	Failures []error
}

// Stats aggregates pipeline execution statistics.
type Stats struct {
	FilesSeen    int
	Diagrams     int
	Converted    int
	Failed       int
	Rendered     int
	RenderFailed int

	// CacheHits counts renders served from the artifact cache without
	// invoking the renderer. Always <= Rendered.
	CacheHits int
	ConvertTime  time.Duration
	RenderTime   time.Duration
}

// Failed reports whether any diagram or render failed. Used by the CLI to
// reflect partial failure in the exit code without discarding output.
func (r *Result) Failed() bool {
	return r.Stats.Failed > 0 || r.Stats.RenderFailed > 0
}

// nopLogger discards everything; used when no logger is injected.
func nopLogger() *log.Logger {
	return log.New(io.Discard)
}
