package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/pipeline"
)

// convertCommand creates the convert command, the main entry point of the tool.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		direction  string
		output     string
		outputDir  string
		encoding   string
		template   string
		configPath string
		plain      bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert between topology diagrams and connection tables",
		Long: `Convert between draw.io topology diagrams and connection tables.

The conversion direction is decided per file from the extension and content:
.drawio and .xml inputs become CSV tables, .csv inputs become diagrams.
Use --direction to force one way.

Multiple inputs convert concurrently and fail independently; a broken file
never stops the others. Structural problems (unreadable XML, ambiguous
headers) abort that file, while per-element problems (an edge with a missing
endpoint, a row without a device name) skip the element and are reported
after conversion.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateDirection(pipeline.Direction(direction)); err != nil {
				return err
			}
			runner, err := c.newRunner(configPath)
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Direction:  pipeline.Direction(direction),
				OutputPath: output,
				OutputDir:  outputDir,
				Encoding:   encoding,
				Template:   template,
				Logger:     c.Logger,
			}
			if len(args) == 1 {
				return c.runConvert(cmd.Context(), runner, args[0], opts)
			}
			return c.runConvertBatch(cmd.Context(), runner, args, opts, plain)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", string(pipeline.DirectionAuto),
		"conversion direction: auto (default), to-table, to-diagram")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single input only)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for outputs, keeping derived names")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "",
		"table output encoding: utf-8, utf-8-sig, gbk, universal")
	cmd.Flags().StringVarP(&template, "template", "t", "",
		"table whose header fixes the output column order")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (TOML or YAML)")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable the interactive progress display")

	return cmd
}

// runConvert converts a single file with a spinner.
func (c *CLI) runConvert(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s...", input))
	spinner.Start()

	res, err := runner.Execute(ctx, input, opts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Conversion failed: %s", errors.UserMessage(err)))
		return err
	}
	spinner.Stop()

	printResult(res)
	return nil
}

// runConvertBatch converts several files concurrently and summarizes.
func (c *CLI) runConvertBatch(ctx context.Context, runner *pipeline.Runner, inputs []string, opts pipeline.Options, plain bool) error {
	p := newProgress(c.Logger)

	var batch *pipeline.BatchResult
	if plain {
		batch = runner.ExecuteBatch(ctx, inputs, opts)
	} else {
		batch = runBatchTUI(ctx, runner, inputs, opts)
	}

	for _, res := range batch.Results {
		printResult(res)
	}
	for _, path := range sortedKeys(batch.Failures) {
		printError("%s: %s", path, errors.UserMessage(batch.Failures[path]))
	}

	p.done(fmt.Sprintf("Converted %d of %d files", batch.Converted(), len(inputs)))
	if batch.Failed() > 0 {
		return fmt.Errorf("%d of %d files failed", batch.Failed(), len(inputs))
	}
	return nil
}

// printResult shows one conversion outcome: outputs, counts, diagnostics.
func printResult(res *pipeline.Result) {
	printSuccess("Converted %s", res.Input)
	for _, out := range res.Outputs {
		printFile(out)
	}
	printStats(res.Stats.Regions, res.Stats.Devices, res.Stats.Links)

	for _, entry := range res.Report.Errors() {
		printWarning("skipped %s", entry.String())
	}
	for _, entry := range res.Report.Warnings() {
		printDetail("%s", entry.String())
	}
	if res.Detection != nil && res.Detection.Confidence < 1 {
		printDetail("header matched with confidence %.2f", res.Detection.Confidence)
	}
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
