package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tasuki2sgf.

To load completions:

Bash:
  $ source <(tasuki2sgf completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tasuki2sgf completion bash > /etc/bash_completion.d/tasuki2sgf
  # macOS:
  $ tasuki2sgf completion bash > $(brew --prefix)/etc/bash_completion.d/tasuki2sgf

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tasuki2sgf completion zsh > "${fpath[1]}/_tasuki2sgf"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tasuki2sgf completion fish | source

  # To load completions for each session, execute once:
  $ tasuki2sgf completion fish > ~/.config/fish/completions/tasuki2sgf.fish

PowerShell:
  PS> tasuki2sgf completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> tasuki2sgf completion powershell > tasuki2sgf.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
