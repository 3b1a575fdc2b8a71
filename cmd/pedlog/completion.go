package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for pedlog.

To load completions:

Bash:
  $ source <(pedlog completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pedlog completion bash > /etc/bash_completion.d/pedlog
  # macOS:
  $ pedlog completion bash > $(brew --prefix)/etc/bash_completion.d/pedlog

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pedlog completion zsh > "${fpath[1]}/_pedlog"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ pedlog completion fish | source

  # To load completions for each session, execute once:
  $ pedlog completion fish > ~/.config/fish/completions/pedlog.fish

PowerShell:
  PS> pedlog completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> pedlog completion powershell > pedlog.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Usage()
		}

		root := cmd.Root()
		out := cmd.OutOrStdout()

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
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeEventKinds returns a completion function for the
// comma-separated kind flags. Kinds already present in the input, or
// already set by an earlier use of the flag, are not offered again.
// Candidates carry the full prefix so every shell replaces the whole
// word correctly.
func completeEventKinds(flagName string) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		parts := strings.Split(toComplete, ",")
		prefix := strings.Join(parts[:len(parts)-1], ",")
		if prefix != "" {
			prefix += ","
		}
		current := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))

		used := make(map[string]struct{})
		earlier := parts[:len(parts)-1]
		if vals, err := cmd.Flags().GetStringSlice(flagName); err == nil {
			earlier = append(earlier, vals...)
		}
		for _, v := range earlier {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				used[v] = struct{}{}
			}
		}

		var candidates []string
		for _, k := range ValidEventKindNames() {
			if _, ok := used[k]; ok {
				continue
			}
			if strings.HasPrefix(k, current) {
				candidates = append(candidates, prefix+k)
			}
		}

		return candidates, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	}
}

// registerEventKindCompletion registers completion for an event kind flag.
func registerEventKindCompletion(cmd *cobra.Command, flagName string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, completeEventKinds(flagName))
}

// completeActivities completes the session activity flags.
func completeActivities(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(ValidActivityNames(), toComplete)
}

// completeFormats completes the output format flags.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return matchPrefix(names, toComplete)
}

func matchPrefix(names []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	current := strings.ToLower(strings.TrimSpace(toComplete))
	var candidates []string
	for _, n := range names {
		if strings.HasPrefix(n, current) {
			candidates = append(candidates, n)
		}
	}
	return candidates, cobra.ShellCompDirectiveNoFileComp
}

// registerActivityCompletion registers completion for an activity flag.
func registerActivityCompletion(cmd *cobra.Command, flagName string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, completeActivities)
}

// registerFormatCompletion registers completion for a format flag.
func registerFormatCompletion(cmd *cobra.Command, flagName string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, completeFormats)
}
