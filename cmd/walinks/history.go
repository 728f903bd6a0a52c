package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nao1215/walinks/internal/config"
	"github.com/nao1215/walinks/internal/database"
	"github.com/nao1215/walinks/internal/report"
)

// dateLayout is how archive timestamps are shown.
const dateLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "List archived crawls",
		Long: `History shows crawls saved in the local archive.

Without flags it lists the most recent runs, optionally for one domain.
The archive lives in the XDG data directory unless --db-dir or
WALINKS_DB_DIR says otherwise.

Examples:
  # Latest runs across all domains
  walinks history

  # Runs for one domain
  walinks history example.com

  # Every invite link ever found on a domain
  walinks history --links example.com

  # Print the links of run 12 as CSV
  walinks history --show 12 --format csv

  # List archived domains
  walinks history --list-domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().Int64P("show", "s", 0,
		"Print the report of the run with this ID")
	cmd.Flags().StringP("format", "f", report.FormatText,
		"Report format for --show: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().BoolP("links", "l", false,
		"List every invite link archived for the domain")
	cmd.Flags().BoolP("list-domains", "L", false,
		"List all archived domains")
	cmd.Flags().Int64("delete", 0,
		"Delete the run with this ID from the archive")
	cmd.Flags().String("db-dir", "",
		"Archive directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	showID, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	deleteID, err := flags.GetInt64("delete")
	if err != nil {
		return err
	}
	listDomains, err := flags.GetBool("list-domains")
	if err != nil {
		return err
	}
	listLinks, err := flags.GetBool("links")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}

	var domain string
	if len(args) > 0 {
		domain = args[0]
	}

	// Validate arguments before opening the database.
	if listLinks && domain == "" {
		return errors.New("a domain is required with --links (use --list-domains to see archived domains)")
	}
	if showID != 0 && !report.ValidFormat(format) {
		return fmt.Errorf("%w: %q", report.ErrUnknownFormat, format)
	}

	dbDir, err := archiveDir(cmd)
	if err != nil {
		return err
	}
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	switch {
	case deleteID != 0:
		return deleteRun(ctx, out, db, deleteID)
	case showID != 0:
		return showRun(ctx, out, db, showID, format)
	case listDomains:
		return listArchivedDomains(ctx, out, db)
	case listLinks:
		return listDomainLinks(ctx, out, db, domain)
	default:
		return listRuns(ctx, out, db, domain, limit)
	}
}

// archiveDir resolves the archive directory: --db-dir, then
// WALINKS_DB_DIR, then the XDG data directory.
func archiveDir(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("db-dir") {
		return cmd.Flags().GetString("db-dir")
	}
	cfg := config.NewConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		return "", err
	}
	return cfg.DBDir, nil
}

func newListTable(w io.Writer, header ...any) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	return table
}

// listRuns prints archived runs, newest first.
func listRuns(ctx context.Context, w io.Writer, db *database.CrawlDB, domain string, limit int) error {
	runs, err := db.ListRuns(ctx, domain, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		if domain != "" {
			fmt.Fprintf(w, "No archived crawls found for %s\n", domain)
		} else {
			fmt.Fprintln(w, "No archived crawls found.")
		}
		fmt.Fprintln(w, "\nUse 'walinks crawl <url>' to crawl a site.")
		return nil
	}

	table := newListTable(w, "ID", "Date", "Start URL", "Depth", "Pages", "Links", "Status")
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = run.Error
		}
		if err := table.Append([]string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Local().Format(dateLayout),
			run.StartURL,
			strconv.Itoa(run.MaxDepth),
			strconv.Itoa(run.PagesCrawled),
			strconv.Itoa(run.LinkCount),
			status,
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nUse 'walinks history --show <id>' to print the links of a run.")
	return nil
}

// showRun prints one archived run as a report.
func showRun(ctx context.Context, w io.Writer, db *database.CrawlDB, id int64, format string) error {
	r, err := db.GetReportByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", id, err)
	}
	if r == nil {
		return fmt.Errorf("run with ID %d not found", id)
	}

	writer, err := report.NewWriter(format, w)
	if err != nil {
		return err
	}
	_, err = writer.Write(r)
	return err
}

// listArchivedDomains prints every domain in the archive.
func listArchivedDomains(ctx context.Context, w io.Writer, db *database.CrawlDB) error {
	domains, err := db.ListDomains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	if len(domains) == 0 {
		fmt.Fprintln(w, "No archived domains found.")
		fmt.Fprintln(w, "\nUse 'walinks crawl <url>' to crawl a site.")
		return nil
	}

	fmt.Fprintf(w, "Archived domains (%d):\n\n", len(domains))
	for _, d := range domains {
		fmt.Fprintf(w, "  • %s\n", d)
	}
	fmt.Fprintln(w, "\nUse 'walinks history <domain>' to see the runs of a domain.")
	return nil
}

// listDomainLinks prints every link archived for domain with when it was
// first and last seen.
func listDomainLinks(ctx context.Context, w io.Writer, db *database.CrawlDB, domain string) error {
	records, err := db.ListDomainLinks(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintf(w, "No invite links archived for %s\n", domain)
		return nil
	}

	table := newListTable(w, report.LinkColumn, "First Seen", "Last Seen", "Runs")
	for _, rec := range records {
		if err := table.Append([]string{
			rec.Link,
			rec.FirstSeen.Local().Format(dateLayout),
			rec.LastSeen.Local().Format(dateLayout),
			strconv.Itoa(rec.Runs),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// deleteRun removes one run from the archive.
func deleteRun(ctx context.Context, w io.Writer, db *database.CrawlDB, id int64) error {
	deleted, err := db.DeleteRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("run with ID %d not found", id)
	}
	fmt.Fprintf(w, "Deleted run %d\n", id)
	return nil
}
