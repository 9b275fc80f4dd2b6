// Package cli implements the topotab command-line interface.
//
// This package provides commands for converting between draw.io topology
// diagrams and connection-record tables, previewing topologies, and emitting
// blank table templates. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Convert diagrams to tables and tables to diagrams
//   - preview: Render a quick SVG/PNG preview of a topology
//   - template: Write a blank connection table with the configured header
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/topotab/topotab/pkg/buildinfo"
	"github.com/topotab/topotab/pkg/pipeline"
	"github.com/topotab/topotab/pkg/schema"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "topotab"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Topotab converts topology diagrams to connection tables and back",
		Long:         `Topotab is a CLI tool for lossless, bidirectional conversion between draw.io network topology diagrams and flat connection-record tables (CSV).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(configPath string) (*pipeline.Runner, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cfg, c.Logger), nil
}

// loadConfig reads the config file, or returns built-in defaults when no path
// is given.
func loadConfig(path string) (*schema.Config, error) {
	if path == "" {
		return schema.Default(), nil
	}
	return schema.Load(path)
}
