package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/walinks/internal/database"
	"github.com/nao1215/walinks/internal/model"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare DOMAIN",
		Short: "Compare the invite links of two archived crawls",
		Long: `Compare shows which invite links appeared or disappeared between two
crawls of the same domain.

By default the latest two runs are compared. Use 'walinks history DOMAIN'
to see the available run IDs.

Examples:
  # Compare the latest two crawls
  walinks compare example.com

  # Compare the latest crawl with run 5
  walinks compare --with-run-id 5 example.com

  # Output the comparison as JSON
  walinks compare --json example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with the run of this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output the comparison in JSON format")
	cmd.Flags().String("db-dir", "",
		"Archive directory (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	domain := strings.TrimSpace(args[0])
	if domain == "" {
		return errors.New("domain is required (use 'walinks history --list-domains' to see archived domains)")
	}

	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
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

	result, err := compareRuns(commandContext(cmd), db, domain, withRunID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputComparisonJSON(cmd.OutOrStdout(), result)
	}
	return outputComparisonText(cmd.OutOrStdout(), result)
}

// ComparisonResult holds the difference between two crawls of a domain.
type ComparisonResult struct {
	// Domain is the crawled host.
	Domain string `json:"domain"`

	// PreviousRun describes the older crawl.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun describes the newer crawl.
	CurrentRun RunSummary `json:"current_run"`

	// Added are links found only by the current run.
	Added []string `json:"added"`

	// Removed are links found only by the previous run.
	Removed []string `json:"removed"`

	// UnchangedCount is the number of links found by both runs.
	UnchangedCount int `json:"unchanged_count"`
}

// RunSummary is the part of an archived run shown in a comparison.
type RunSummary struct {
	ID           int64     `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	PagesCrawled int       `json:"pages_crawled"`
	LinkCount    int       `json:"link_count"`
}

// compareRuns diffs the latest run of domain against withRunID, or against
// the run before it when withRunID is zero.
func compareRuns(ctx context.Context, db *database.CrawlDB, domain string, withRunID int64) (*ComparisonResult, error) {
	runs, err := db.ListRuns(ctx, domain, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no archived crawls found for %s", domain)
	}
	if len(runs) < 2 && withRunID == 0 {
		return nil, fmt.Errorf("at least 2 crawls are required for comparison (found %d)", len(runs))
	}

	current, err := loadRun(ctx, db, runs[0].ID)
	if err != nil {
		return nil, err
	}

	previousID := withRunID
	if previousID == 0 {
		previousID = runs[1].ID
	}
	if previousID == current.ID {
		return nil, fmt.Errorf("run %d is the latest crawl; pick an older run", previousID)
	}
	previous, err := loadRun(ctx, db, previousID)
	if err != nil {
		return nil, err
	}
	if previous.Domain != domain {
		return nil, fmt.Errorf("run %d belongs to %s, not %s", previousID, previous.Domain, domain)
	}

	return newComparisonResult(previous, current), nil
}

func loadRun(ctx context.Context, db *database.CrawlDB, id int64) (*model.CrawlReport, error) {
	r, err := db.GetReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	if r == nil {
		return nil, fmt.Errorf("run with ID %d not found", id)
	}
	return r, nil
}

func newComparisonResult(previous, current *model.CrawlReport) *ComparisonResult {
	diff := model.DiffLinks(previous.Links, current.Links)
	return &ComparisonResult{
		Domain:         current.Domain,
		PreviousRun:    summarizeRun(previous),
		CurrentRun:     summarizeRun(current),
		Added:          diff.Added,
		Removed:        diff.Removed,
		UnchangedCount: len(diff.Unchanged),
	}
}

func summarizeRun(r *model.CrawlReport) RunSummary {
	return RunSummary{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		PagesCrawled: r.PagesCrawled,
		LinkCount:    len(r.Links),
	}
}

// outputComparisonJSON writes the comparison as indented JSON.
func outputComparisonJSON(w io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText writes the comparison in human-readable form.
func outputComparisonText(w io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(w, "Crawl Comparison: %s\n", result.Domain)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nPrevious crawl: #%d %s\n", result.PreviousRun.ID,
		result.PreviousRun.StartedAt.Local().Format(dateLayout))
	fmt.Fprintf(w, "Current crawl:  #%d %s\n", result.CurrentRun.ID,
		result.CurrentRun.StartedAt.Local().Format(dateLayout))

	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "  %-8s  %-10s  %-10s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 44))
	fmt.Fprintf(w, "  %-8s  %-10d  %-10d  %-10s\n", "Pages",
		result.PreviousRun.PagesCrawled, result.CurrentRun.PagesCrawled,
		formatDelta(result.CurrentRun.PagesCrawled-result.PreviousRun.PagesCrawled))
	fmt.Fprintf(w, "  %-8s  %-10d  %-10d  %-10s\n", "Links",
		result.PreviousRun.LinkCount, result.CurrentRun.LinkCount,
		formatDelta(result.CurrentRun.LinkCount-result.PreviousRun.LinkCount))

	if len(result.Added) == 0 && len(result.Removed) == 0 {
		fmt.Fprintln(w, "\nNo changes in invite links.")
	}
	if len(result.Added) > 0 {
		fmt.Fprintf(w, "\nNew Links (%d):\n", len(result.Added))
		for _, l := range result.Added {
			fmt.Fprintf(w, "  [+] %s\n", l)
		}
	}
	if len(result.Removed) > 0 {
		fmt.Fprintf(w, "\nRemoved Links (%d):\n", len(result.Removed))
		for _, l := range result.Removed {
			fmt.Fprintf(w, "  [-] %s\n", l)
		}
	}
	if result.UnchangedCount > 0 {
		fmt.Fprintf(w, "\nUnchanged: %d links\n", result.UnchangedCount)
	}
	return nil
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
