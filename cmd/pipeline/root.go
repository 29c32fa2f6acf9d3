package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCommand(app *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pipeline <input-file>",
		Short:         "Extract audio from a recording and transcribe it per language",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.configChanged = cmd.Flags().Changed("config")
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			proc, err := app.newProcessor()
			if err != nil {
				return err
			}
			// The processor has already logged the failure.
			_, err = proc.Run(ctx, args[0])
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.configFlag, "config", "c", "config.yaml", "Configuration file path")
	// Only single-file runs take a pinned timestamp; watched jobs each get their own.
	rootCmd.Flags().StringVar(&app.timestampFlag, "timestamp", "", "Job timestamp as YYYY-MM-DD-HH-MM instead of the configured source")

	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newUnifyCommand(app))
	rootCmd.AddCommand(newSummarizeCommand(app))
	rootCmd.AddCommand(newSplitCommand(app))
	rootCmd.AddCommand(newCheckCommand(app))

	return rootCmd
}
