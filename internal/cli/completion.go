package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts for Bash, Zsh, Fish, and
// PowerShell. When run without arguments, it displays installation
// instructions for each supported shell.
var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion scripts",
	Long:      completionLongHelp,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runCompletion,
}

const completionLongHelp = `Generate shell completion scripts for guardscan.

To load completions:

Bash:
  $ source <(guardscan completion bash)
  $ guardscan completion bash > /etc/bash_completion.d/guardscan

Zsh:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ guardscan completion zsh > "${fpath[1]}/_guardscan"

Fish:
  $ guardscan completion fish > ~/.config/fish/completions/guardscan.fish

PowerShell:
  PS> guardscan completion powershell | Out-String | Invoke-Expression
  PS> guardscan completion powershell >> $PROFILE
`

// runCompletion generates a shell completion script for the specified
// shell. If no shell argument is provided, it prints help text with
// installation instructions and returns nil.
func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	out := cmd.OutOrStdout()

	switch args[0] {
	case "bash":
		return cmd.Root().GenBashCompletionV2(out, true)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell: %s", args[0])
	}
}
