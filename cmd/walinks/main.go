// Package main provides the entry point for the walinks CLI.
//
// walinks crawls a website within its own domain, up to a bounded link
// depth, and collects every WhatsApp group invite link
// (https://chat.whatsapp.com/<code>) found in the page HTML.
//
// Usage:
//
//	walinks crawl https://example.com
//	walinks crawl --depth 2 --format csv -o links.csv https://example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
