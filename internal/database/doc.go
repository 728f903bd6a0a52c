// Package database provides the SQLite result archive for walinks.
//
// Every finished crawl is stored as a run (start URL, domain, depth, page
// count, timing) plus the invite links it found. The archive backs the
// history command. It is write-only from the crawler's point of view:
// frontier and visited state are never persisted or resumed.
//
// The driver is modernc.org/sqlite, a CGO-free SQLite, and the archive is a
// single file in the XDG data directory.
package database
