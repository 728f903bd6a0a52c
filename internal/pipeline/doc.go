// Package pipeline runs the per-target stages of a walinks crawl.
//
// A target goes through a sequence of steps that share one
// model.CrawlReport: an informational robots.txt check, the crawl itself,
// and saving the finished report to the archive. DefaultPipeline assembles
// these from the configuration.
//
// BatchProcessor runs the pipelines of several start URLs concurrently
// with errgroup, bounded by the configured batch size.
package pipeline
