package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/tabular"
)

// templateCommand creates the template command for emitting a blank table.
func (c *CLI) templateCommand() *cobra.Command {
	var (
		output     string
		encoding   string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank connection table with the configured header",
		Long: `Write a blank connection table with the configured header.

The emitted CSV carries only the header row in the configured column order.
Fill it in by hand or export and convert it later; a diagram converted with
--template uses the same mechanism to pin its column order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTemplate(output, encoding, configPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "template.csv", "output file")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", "",
		"table encoding: utf-8, utf-8-sig, gbk, universal")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (TOML or YAML)")

	return cmd
}

// runTemplate writes the header-only table in the requested encoding.
func (c *CLI) runTemplate(output, encoding, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if encoding == "" {
		encoding = cfg.Encoding
	}
	enc, err := tabular.ParseEncoding(encoding)
	if err != nil {
		return err
	}
	if err := errors.ValidateOutputPath(output); err != nil {
		return err
	}

	doc := tabular.NewDocument(cfg.Schema().Headers())
	artifacts, err := tabular.EncodeAll(doc, output, enc)
	if err != nil {
		return err
	}

	printSuccess("Template written")
	for _, artifact := range artifacts {
		if err := os.WriteFile(artifact.Path, artifact.Data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", artifact.Path)
		}
		printFile(artifact.Path)
	}
	return nil
}
