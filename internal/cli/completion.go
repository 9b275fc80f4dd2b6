package cli

import "github.com/spf13/cobra"

// completionCommand generates a completion script for the chosen shell.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Generate a completion script for topotab and print it to stdout.

Load it into the current shell:

  source <(topotab completion bash)
  topotab completion fish | source

Or install it permanently:

  topotab completion bash > /etc/bash_completion.d/topotab
  topotab completion zsh > "${fpath[1]}/_topotab"
  topotab completion fish > ~/.config/fish/completions/topotab.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
