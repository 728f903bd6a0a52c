package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	walog "github.com/nao1215/walinks/internal/log"
)

// NewRootCmd creates the root command for walinks.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walinks",
		Short: "Collect WhatsApp group invite links from a website",
		Long: `walinks crawls a website breadth-first, staying on the start URL's host,
and collects every WhatsApp group invite link found in the pages it visits.

Requests are sent one at a time with a polite delay between them. Finished
crawls are archived locally so that results can be listed and compared later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records as JSON")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewRobotsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, so a running crawl stops at its next page and still reports
// what it found.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger builds the logger for cmd from the persistent logging flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs = false
	}
	if jsonLogs {
		return walog.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return walog.NewLogger(cmd.ErrOrStderr(), verbose)
}

// commandContext returns the command's context, or Background when the
// command runs without one (as in tests calling RunE directly).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
