package cmd

import (
	"github.com/crytic/solir/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rootCmd is the root CLI command; every sub-command attaches to it in its own init.
var rootCmd = &cobra.Command{
	Use:   "solir",
	Short: "Smart contract intermediate representation interchange tooling",
	Long:  "solir converts compiler trees, assembly, and position maps between their in-memory and interchange forms",
}

// cmdLogger is the logger for CLI-level events, shared by all sub-commands.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true)

func Execute() error {
	return rootCmd.Execute()
}

// cmdValidArgs suggests the flags of the command which have not been used yet, alongside ordinary file
// completion for the positional document argument.
func cmdValidArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveDefault
}
