package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topotab/topotab/pkg/detect"
	"github.com/topotab/topotab/pkg/drawio"
	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/extract"
	"github.com/topotab/topotab/pkg/render"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/synth"
	"github.com/topotab/topotab/pkg/tabular"
	"github.com/topotab/topotab/pkg/topology"
)

// previewFormats are the supported preview output formats.
var previewFormats = map[string]bool{"svg": true, "png": true, "dot": true}

// previewCommand creates the preview command for rendering a topology image.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		format     string
		output     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a quick image of a topology",
		Long: `Render a quick image of a topology.

The input can be either side of a conversion: a draw.io diagram or a
connection table. The topology is laid out with Graphviz, with one cluster
per region, and written as SVG (default), PNG, or raw DOT. The preview is
for eyeballing a conversion result; the draw.io document stays the
authoritative diagram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !previewFormats[format] {
				return errors.New(errors.ErrCodeInvalidInput,
					"invalid format: %q (must be one of: svg, png, dot)", format)
			}
			return c.runPreview(cmd.Context(), args[0], format, output, configPath)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg (default), png, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (TOML or YAML)")

	return cmd
}

// runPreview loads the topology from either representation and renders it.
func (c *CLI) runPreview(ctx context.Context, input, format, output, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	topo, rep, err := loadTopology(input, cfg)
	if err != nil {
		return err
	}
	regions, devices, links := topo.Counts()
	loggerFromContext(ctx).Debug("loaded topology",
		"input", input, "regions", regions, "devices", devices, "links", links)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s preview...", format))
	spinner.Start()

	dot := render.ToDOT(topo)
	var data []byte
	switch format {
	case "svg":
		data, err = render.SVG(ctx, dot)
	case "png":
		data, err = render.PNG(ctx, dot)
	case "dot":
		data = []byte(dot)
	}
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Preview failed: %s", errors.UserMessage(err)))
		return err
	}
	spinner.Stop()

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write preview %s", output)
	}

	printSuccess("Preview written")
	printFile(output)
	printStats(regions, devices, links)
	for _, entry := range rep.Errors() {
		printWarning("skipped %s", entry.String())
	}
	return nil
}

// loadTopology builds the intermediate model from whichever representation
// the input holds.
func loadTopology(input string, cfg *schema.Config) (*topology.Topology, *report.Report, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s", input)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input %s", input)
	}

	rep := report.New()
	switch detect.Classify(input, data) {
	case detect.KindDiagram:
		file, err := drawio.Parse(data)
		if err != nil {
			return nil, nil, err
		}
		topo, err := extract.FromFile(file, cfg, rep)
		if err != nil {
			return nil, nil, err
		}
		return topo, rep, nil
	default:
		doc, err := tabular.ReadBytes(data, tabular.EncodingAuto)
		if err != nil {
			return nil, nil, err
		}
		res, err := synth.FromDocument(doc, cfg, rep)
		if err != nil {
			return nil, nil, err
		}
		return res.Topology, rep, nil
	}
}
