// ====================================
// File: cmd/spl-transfer/main.go
// ====================================
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/spl-transfer/internal/app"
)

const (
	FlagConfig    = "config"
	FlagYes       = "yes"
	FlagDryRun    = "dry-run"
	FlagDebug     = "debug"
	FlagExitDelay = "exit-delay"
)

func main() {
	var opts app.Options

	rootCmd := &cobra.Command{
		Use:   "spl-transfer",
		Short: "Send one SPL token transfer described by a JSON config",
		Long: `Loads the transfer settings from a JSON config, creates the receiver's associated
token account when it is missing, and submits a single signed v0 transaction with a
compute budget and a memo.

Example:
  spl-transfer -c ./config.json
  spl-transfer -c ./config.json --dry-run --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			runner := app.NewRunner(opts)
			if err := runner.Run(cmd.Context()); err != nil {
				runner.Fail(err)
				os.Exit(1)
			}
			runner.Shutdown()
		},
	}

	rootCmd.Flags().StringVarP(&opts.ConfigPath, FlagConfig, "c", "config.json", "Path to the transfer configuration file")
	rootCmd.Flags().BoolVarP(&opts.AssumeYes, FlagYes, "y", false, "Send without the confirmation prompt")
	rootCmd.Flags().BoolVar(&opts.DryRun, FlagDryRun, false, "Build and sign the transaction but do not submit it")
	rootCmd.Flags().BoolVar(&opts.Debug, FlagDebug, false, "Enable debug logging")
	rootCmd.Flags().DurationVar(&opts.ExitDelay, FlagExitDelay, 3*time.Second, "Pause before exiting after an error")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
