// Package fetch retrieves single pages for the crawler.
//
// A Fetcher performs one paced GET per call and classifies the response into
// an Outcome. Every failure mode is an Outcome variant; Fetch never returns a
// Go error and never panics, so the caller can switch over the result
// exhaustively:
//
//	switch o := f.Fetch(ctx, pageURL).(type) {
//	case fetch.Success:
//		// o.Body holds the decoded HTML
//	case fetch.SkippedNonHTML:
//	case fetch.HTTPError:
//	case fetch.NetworkError:
//	}
//
// # Politeness
//
// Each Fetcher owns a Pacer. The pacer blocks before every request until the
// configured delay has passed since the previous request finished, so a slow
// response never shortens the wait. The first request waits too.
package fetch
