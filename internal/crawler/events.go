package crawler

import (
	"context"
	"log/slog"
)

// EventKind classifies a crawl event.
type EventKind int

const (
	// EventInfo reports normal progress such as the page being crawled.
	EventInfo EventKind = iota
	// EventWarning reports a recoverable per-page failure.
	EventWarning
	// EventError reports input that prevented the crawl from starting.
	EventError
	// EventProgress carries an estimated completion fraction.
	EventProgress
)

// String returns the lower case name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventInfo:
		return "info"
	case EventWarning:
		return "warning"
	case EventError:
		return "error"
	case EventProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Event is a single observation emitted while crawling.
type Event struct {
	Kind EventKind

	// Message is set for every kind except EventProgress.
	Message string

	// Fraction is the estimated completion in [0, 1]. Only EventProgress
	// sets it. Successive values within one crawl never decrease and the
	// last one is 1.0.
	Fraction float64

	// URL and Depth identify the frontier entry the event is about, when
	// there is one.
	URL   string
	Depth int
}

// Sink receives crawl events. Sinks are purely observational; the crawler
// ignores anything they do.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) {
	f(e)
}

// Discard is a Sink that drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans events out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}

// LogSink writes events to logger. Progress fractions are logged at debug
// level; the other kinds map onto the matching slog levels.
func LogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return SinkFunc(func(e Event) {
		attrs := make([]slog.Attr, 0, 3)
		if e.URL != "" {
			attrs = append(attrs, slog.String("url", e.URL), slog.Int("depth", e.Depth))
		}

		level := slog.LevelInfo
		msg := e.Message
		switch e.Kind {
		case EventWarning:
			level = slog.LevelWarn
		case EventError:
			level = slog.LevelError
		case EventProgress:
			level = slog.LevelDebug
			msg = "progress"
			attrs = append(attrs, slog.Float64("fraction", e.Fraction))
		}
		logger.LogAttrs(context.Background(), level, msg, attrs...)
	})
}
