package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionShells lists the shells cobra can generate scripts for.
var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for pypilink's commands and flags.

The script completes subcommands (lookup, say, chat, serve, config) and
flags such as --config, --registry and --no-search. Package names are not
completed: they are looked up on PyPI only when a command runs.

Load it for the current session, or write it where your shell picks it up.`,
		Example: `  source <(pypilink completion bash)
  pypilink completion zsh > "${fpath[1]}/_pypilink"
  pypilink completion fish > ~/.config/fish/completions/pypilink.fish
  pypilink completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}

	return cmd
}
