// Package cmd implements the CLI commands for ldpipe using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	flagVerbose bool

	cfg    Config
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "ldpipe",
	Short: "ldpipe — extract Schema.org JSON-LD objects from web pages",
	Long: `ldpipe reads the <script type="application/ld+json"> blocks of HTML pages,
flattens @graph containers and arrays, and filters the objects by Schema.org type.

Usage:
  ldpipe extract <url|file|-> [flags]`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfg, err = loadConfig(); err != nil {
			return err
		}
		if flagVerbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ldpipe version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "ldpipe", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug messages")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}
