// Package pipeline provides the core conversion pipeline for topotab.
//
// This package implements the complete load → convert → serialize pipeline
// shared by every entry point. Centralizing it keeps single-file and batch
// conversions behaving identically.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the input file and decide the conversion direction
//  2. Convert: Extract a topology from a diagram, or synthesize one from a
//     table
//  3. Serialize: Write the opposite representation next to the input
//
// Structural problems in the input abort the file; per-element problems are
// collected in the result's report and the rest of the file still converts.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cfg, logger)
//	result, err := runner.Execute(ctx, "topology.drawio", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Outputs, result.Report.Summary())
//
// Convert many files concurrently:
//
//	batch := runner.ExecuteBatch(ctx, paths, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/topotab/topotab/pkg/detect"
	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/topology"
)

// =============================================================================
// Direction
// =============================================================================

// Direction selects which way a conversion runs.
type Direction string

const (
	// DirectionAuto decides per file from extension and content.
	DirectionAuto Direction = "auto"
	// DirectionToTable forces diagram -> table.
	DirectionToTable Direction = "to-table"
	// DirectionToDiagram forces table -> diagram.
	DirectionToDiagram Direction = "to-diagram"
)

// ValidDirections is the set of supported conversion directions.
var ValidDirections = map[Direction]bool{
	DirectionAuto:      true,
	DirectionToTable:   true,
	DirectionToDiagram: true,
}

// ValidateDirection checks that a direction is valid.
func ValidateDirection(d Direction) error {
	if !ValidDirections[d] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid direction: %q (must be one of: auto, to-table, to-diagram)", d)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for a conversion run.
type Options struct {
	// Direction forces the conversion direction; auto decides per file.
	Direction Direction

	// OutputPath overrides the derived output path. Only valid for
	// single-file runs.
	OutputPath string

	// OutputDir redirects outputs into a directory, keeping derived names.
	OutputDir string

	// Encoding overrides the configured table output encoding.
	Encoding string

	// Template is a table whose header row fixes the output column order
	// for diagram -> table runs.
	Template string

	// Config supplies prefixes, keywords, styles, and the default encoding.
	// Nil means built-in defaults.
	Config *schema.Config

	// Logger receives stage progress. Nil discards.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks fields and applies defaults. This method is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Direction == "" {
		o.Direction = DirectionAuto
	}
	if err := ValidateDirection(o.Direction); err != nil {
		return err
	}
	if o.Config == nil {
		o.Config = schema.Default()
	}
	if o.Encoding != "" {
		if err := errors.ValidateEncodingName(o.Encoding); err != nil {
			return err
		}
	}
	if o.OutputPath != "" {
		if err := errors.ValidateOutputPath(o.OutputPath); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// encoding resolves the output table encoding: explicit option first, then
// the config, then universal.
func (o *Options) encoding() string {
	if o.Encoding != "" {
		return o.Encoding
	}
	if o.Config != nil && o.Config.Encoding != "" {
		return o.Config.Encoding
	}
	return "universal"
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of converting one file.
type Result struct {
	// Input is the converted file.
	Input string

	// Kind is the detected input flavor.
	Kind detect.Kind

	// Topology is the intermediate model the conversion went through.
	Topology *topology.Topology

	// Detection describes how a table header was classified; nil for
	// diagram inputs.
	Detection *schema.Detection

	// Report carries per-element diagnostics.
	Report *report.Report

	// Outputs lists every file written.
	Outputs []string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains conversion statistics for one file.
type Stats struct {
	Regions int
	Devices int
	Links   int

	LoadTime      time.Duration
	ConvertTime   time.Duration
	SerializeTime time.Duration
}

// BatchResult aggregates a multi-file run. Failures are per file; one broken
// input never stops the others.
type BatchResult struct {
	Results  []*Result
	Failures map[string]error
}

// Converted returns how many files succeeded.
func (b *BatchResult) Converted() int {
	return len(b.Results)
}

// Failed returns how many files failed.
func (b *BatchResult) Failed() int {
	return len(b.Failures)
}
