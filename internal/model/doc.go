// Package model defines the data structures shared by the crawler, the
// report writers and the result archive.
//
//   - CrawlResult: the terminal output of one crawl (invite links and the
//     number of pages visited)
//   - CrawlReport: a finished crawl together with its start URL, depth and
//     timing, as written to reports and to the archive
//   - LinkDiff: the links added and removed between two archived crawls
//
// The models are serializable to JSON for report output and database storage.
package model
