package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/walinks/internal/config"
	"github.com/nao1215/walinks/internal/robots"
)

// NewRobotsCmd creates the robots command.
func NewRobotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "robots URL",
		Short: "Show what robots.txt says about a URL",
		Long: `Robots fetches robots.txt for the site of URL and reports whether the
crawler's user agent may fetch that URL, the requested crawl delay and the
listed sitemaps.

The result is informational: walinks crawl does not enforce robots.txt.

Examples:
  walinks robots https://example.com/groups/
  walinks robots -A "MyBot/1.0" https://example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: runRobotsCmd,
	}

	cmd.Flags().StringP("user-agent", "A", config.DefaultUserAgent,
		"User agent to evaluate the rules for")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for the robots.txt request")

	return cmd
}

// runRobotsCmd executes the robots command.
func runRobotsCmd(cmd *cobra.Command, args []string) error {
	ua, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	if timeout <= 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidTimeout)
	}

	logger := newLogger(cmd)

	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	checker := robots.NewChecker(robots.WithUserAgent(ua), robots.WithLogger(logger))
	res, err := checker.Check(ctx, args[0])
	if err != nil {
		return err
	}

	printRobotsReport(cmd.OutOrStdout(), args[0], res)
	return nil
}

// printRobotsReport writes a robots.Report in aligned columns.
func printRobotsReport(w io.Writer, target string, res *robots.Report) {
	fmt.Fprintf(w, "robots.txt:   %s (HTTP %d)\n", res.RobotsURL, res.StatusCode)
	if !res.Found {
		fmt.Fprintln(w, "              not found; every path is treated as allowed")
	}
	fmt.Fprintf(w, "User agent:   %s\n", res.Agent)

	verdict := "allowed"
	if !res.Allowed {
		verdict = "disallowed"
	}
	fmt.Fprintf(w, "URL:          %s (%s)\n", target, verdict)

	if res.CrawlDelay > 0 {
		fmt.Fprintf(w, "Crawl-delay:  %s\n", res.CrawlDelay)
	} else {
		fmt.Fprintln(w, "Crawl-delay:  not set")
	}

	if len(res.Sitemaps) == 0 {
		fmt.Fprintln(w, "Sitemaps:     none")
	} else {
		fmt.Fprintln(w, "Sitemaps:")
		for _, s := range res.Sitemaps {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	fmt.Fprintln(w, "\nwalinks reports these rules but does not enforce them while crawling.")
}
