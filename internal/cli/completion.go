package cli

import (
	"strings"

	"github.com/jakenelson/ampbox/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(completionCmd)

	configGetCmd.ValidArgsFunction = completeConfigKeys
	configSetCmd.ValidArgsFunction = completeConfigKeys
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a completion script for ampbox. Besides commands and flags it
completes configuration keys for "ampbox config get" and "ampbox config set".

Bash:
  $ source <(ampbox completion bash)
  $ ampbox completion bash > /etc/bash_completion.d/ampbox

Zsh:
  $ ampbox completion zsh > "${fpath[1]}/_ampbox"

Fish:
  $ ampbox completion fish > ~/.config/fish/completions/ampbox.fish

PowerShell:
  PS> ampbox completion powershell | Out-String | Invoke-Expression

Arguments after "--" belong to claude and are not completed.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}

// completeConfigKeys offers configuration keys for the first argument only.
func completeConfigKeys(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []string
	for _, k := range config.Keys() {
		if strings.HasPrefix(k, toComplete) {
			keys = append(keys, k)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}
