// Package log provides slog loggers that mask credentials.
//
// Crawls can be configured with cookies and custom headers per site, and
// start URLs sometimes carry tokens in their query string. RedactingHandler
// removes these values from every record before it is written, in verbose
// mode too.
//
//	logger := log.NewLogger(os.Stderr, verbose, "X-Member-Token")
//	logger.Debug("request", "cookie", "session=abc") // cookie=***REDACTED***
//	slog.SetDefault(logger)
package log
