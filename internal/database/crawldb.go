package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/walinks/internal/invite"
	"github.com/nao1215/walinks/internal/model"
)

// DBFileName is the archive file name inside the database directory.
const DBFileName = "walinks.db"

// ErrInvalidLink is returned by SaveReport when a report carries something
// other than a canonical invite link.
var ErrInvalidLink = errors.New("invalid invite link")

// CrawlDB is the SQLite archive of finished crawls. It records what each
// crawl found; the crawler never reads it back, so no crawl state survives
// between runs.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging, so batch crawls can save while
	// the history command reads.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive in dbDir.
// With CreateIfNotExists false, a missing database is an error.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite: mode=rw refuses to create a file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per finished crawl
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		domain TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		pages_crawled INTEGER NOT NULL,
		link_count INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_domain ON crawl_runs(domain);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);

	-- Invite links found by each crawl
	CREATE TABLE IF NOT EXISTS invite_links (
		run_id INTEGER NOT NULL REFERENCES crawl_runs(id),
		link TEXT NOT NULL,
		PRIMARY KEY (run_id, link)
	);

	CREATE INDEX IF NOT EXISTS idx_links_link ON invite_links(link);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores report and its links in one transaction, sets
// report.ID and returns it. Nothing is stored when any link is not a
// canonical invite link.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) (id int64, err error) {
	for _, link := range report.Links {
		if !invite.IsLink(link) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLink, link)
		}
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_runs (start_url, domain, max_depth, pages_crawled, link_count, started_at, finished_at, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.StartURL,
		report.Domain,
		report.MaxDepth,
		report.PagesCrawled,
		len(report.Links),
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO invite_links (run_id, link) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for _, link := range report.Links {
		if _, err = stmt.ExecContext(ctx, id, link); err != nil {
			return 0, fmt.Errorf("failed to insert invite link: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl run: %w", err)
	}

	report.ID = id
	return id, nil
}

// RunMetadata summarizes an archived crawl without its links.
type RunMetadata struct {
	ID           int64
	StartURL     string
	Domain       string
	MaxDepth     int
	PagesCrawled int
	LinkCount    int
	StartedAt    time.Time
	FinishedAt   time.Time
	Error        string
}

// ListRuns returns archived runs, newest first. An empty domain lists every
// domain; limit <= 0 means no limit.
func (cdb *CrawlDB) ListRuns(ctx context.Context, domain string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, start_url, domain, max_depth, pages_crawled, link_count, started_at, finished_at, error
	FROM crawl_runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if domain != "" {
		query += " AND domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var run RunMetadata
		var started, finished string
		if err := rows.Scan(
			&run.ID,
			&run.StartURL,
			&run.Domain,
			&run.MaxDepth,
			&run.PagesCrawled,
			&run.LinkCount,
			&started,
			&finished,
			&run.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetReportByID loads one archived crawl with its links.
// It returns nil, nil when no run has that id.
func (cdb *CrawlDB) GetReportByID(ctx context.Context, id int64) (*model.CrawlReport, error) {
	var report model.CrawlReport
	var started, finished string

	err := cdb.db.QueryRowContext(ctx, `
	SELECT id, start_url, domain, max_depth, pages_crawled, started_at, finished_at, error
	FROM crawl_runs
	WHERE id = ?
	`, id).Scan(
		&report.ID,
		&report.StartURL,
		&report.Domain,
		&report.MaxDepth,
		&report.PagesCrawled,
		&started,
		&finished,
		&report.Error,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}
	report.StartedAt = parseTimestamp(started)
	report.FinishedAt = parseTimestamp(finished)

	rows, err := cdb.db.QueryContext(ctx, `SELECT link FROM invite_links WHERE run_id = ? ORDER BY link`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invite links: %w", err)
	}
	defer rows.Close()

	report.Links = []string{}
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("failed to scan invite link: %w", err)
		}
		report.Links = append(report.Links, link)
	}

	return &report, rows.Err()
}

// ListDomains returns every archived domain in alphabetical order.
func (cdb *CrawlDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT domain FROM crawl_runs ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// LinkRecord aggregates one invite link across the archived runs of a domain.
type LinkRecord struct {
	Link      string
	FirstSeen time.Time
	LastSeen  time.Time
	Runs      int
}

// ListDomainLinks returns every invite link ever archived for domain, sorted
// by link.
func (cdb *CrawlDB) ListDomainLinks(ctx context.Context, domain string) ([]LinkRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT l.link, MIN(r.started_at), MAX(r.started_at), COUNT(*)
	FROM invite_links l
	JOIN crawl_runs r ON r.id = l.run_id
	WHERE r.domain = ?
	GROUP BY l.link
	ORDER BY l.link
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list domain links: %w", err)
	}
	defer rows.Close()

	var records []LinkRecord
	for rows.Next() {
		var rec LinkRecord
		var first, last string
		if err := rows.Scan(&rec.Link, &first, &last, &rec.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan link record: %w", err)
		}
		rec.FirstSeen = parseTimestamp(first)
		rec.LastSeen = parseTimestamp(last)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeleteRun removes a run and its links. It reports whether the run existed.
func (cdb *CrawlDB) DeleteRun(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM invite_links WHERE run_id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete invite links: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM crawl_runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete crawl run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}

	return n > 0, nil
}

// timestampLayout is how timestamps are stored: UTC, fixed width, so that
// lexical order in SQL matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats parseTimestamp accepts.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s using each known format in turn and returns the
// zero time if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
