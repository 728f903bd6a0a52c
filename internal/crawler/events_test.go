package crawler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	walog "github.com/nao1215/walinks/internal/log"
)

func TestEventKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind EventKind
		want string
	}{
		{EventInfo, "info"},
		{EventWarning, "warning"},
		{EventError, "error"},
		{EventProgress, "progress"},
		{EventKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := LogSink(logger)

	sink.Emit(Event{Kind: EventInfo, Message: "Crawling (Depth 0): https://example.com", URL: "https://example.com"})
	sink.Emit(Event{Kind: EventWarning, Message: "Failed to fetch https://example.com/x: HTTP status 404 Not Found"})
	sink.Emit(Event{Kind: EventError, Message: "Invalid starting URL: nope"})
	sink.Emit(Event{Kind: EventProgress, Fraction: 0.5})

	out := buf.String()
	for _, want := range []string{
		"level=INFO",
		"url=https://example.com",
		"depth=0",
		"level=WARN",
		"level=ERROR",
		"level=DEBUG msg=progress fraction=0.5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogSinkRedactsQueries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := LogSink(walog.NewLogger(&buf, true))

	const page = "https://example.com/members?session=s3cr3t"
	sink.Emit(Event{Kind: EventInfo, Message: "Crawling (Depth 0): " + page, URL: page})
	sink.Emit(Event{Kind: EventWarning, Message: "Failed to fetch " + page + ": HTTP status 500"})

	out := buf.String()
	if strings.Contains(out, "s3cr3t") {
		t.Errorf("query value leaked into the log:\n%s", out)
	}
	if strings.Count(out, "https://example.com/members?session=") < 3 {
		t.Errorf("expected the redacted URL in messages and attributes:\n%s", out)
	}
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var a, b int
	sink := Multi(
		SinkFunc(func(Event) { a++ }),
		nil,
		SinkFunc(func(Event) { b++ }),
	)
	sink.Emit(Event{Kind: EventInfo})
	sink.Emit(Event{Kind: EventWarning})

	if a != 2 || b != 2 {
		t.Errorf("expected both sinks to see 2 events, got %d and %d", a, b)
	}

	Discard.Emit(Event{Kind: EventError})
}
