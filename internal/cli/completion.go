package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/template"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell and source it, e.g.

  $ source <(bedforge completion bash)
  $ bedforge completion zsh > "${fpath[1]}/_bedforge"
  $ bedforge completion fish > ~/.config/fish/completions/bedforge.fish
  PS> bedforge completion powershell | Out-String | Invoke-Expression

Template arguments also complete to the built-in preset names.`,
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
}

// completeTemplates completes the first positional argument to preset names,
// falling back to file completion.
func completeTemplates(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return template.PresetNames(), cobra.ShellCompDirectiveDefault
}
