package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys whose values are always masked.
// Most of them are request headers a site config may carry.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"x-csrf-token":        true,
	"password":            true,
	"session":             true,
	"sessionid":           true,
	"session_id":          true,
}

// sensitiveKeywords mask any key that contains them.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "cookie",
}

// sensitivePatterns mask string values regardless of their key.
var sensitivePatterns = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// Long opaque keys. Invite codes are shorter and stay readable.
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

// embeddedURL finds absolute URLs inside free text such as log messages and
// wrapped error strings.
var embeddedURL = regexp.MustCompile(`https?://[^\s"'<>]+`)

// RedactingHandler wraps an slog.Handler and masks credentials before a
// record reaches the underlying handler:
//
//   - values of sensitive keys (cookie, authorization, configured headers)
//   - values that look like bearer tokens, JWTs or long API keys
//   - query parameter values of URLs, which often carry session tokens,
//     both in attribute values and inside the record message
type RedactingHandler struct {
	handler slog.Handler

	// extraKeys are lower-cased keys masked in addition to sensitiveKeys.
	extraKeys map[string]bool
}

// NewRedactingHandler creates a RedactingHandler around handler. extraKeys
// names additional attribute keys to mask, typically the custom header
// names from the site configuration. A nil handler falls back to
// slog.Default().Handler().
func NewRedactingHandler(handler slog.Handler, extraKeys ...string) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	extra := make(map[string]bool, len(extraKeys))
	for _, k := range extraKeys {
		extra[strings.ToLower(k)] = true
	}
	return &RedactingHandler{handler: handler, extraKeys: extra}
}

// Enabled delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's message and attributes and passes it on.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, redactText(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// WithAttrs masks attrs before attaching them.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.redactAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(clean), extraKeys: h.extraKeys}
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name), extraKeys: h.extraKeys}
}

func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, ga := range group {
			clean[i] = h.redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	if h.isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if isSensitiveValue(s) {
		return slog.String(a.Key, MaskValue)
	}
	if redacted, ok := redactURLQuery(s); ok {
		return slog.String(a.Key, redacted)
	}
	if redacted := redactText(s); redacted != s {
		return slog.String(a.Key, redacted)
	}
	return a
}

// redactText masks the query parameter values of every URL embedded in s.
func redactText(s string) string {
	if !strings.Contains(s, "://") || !strings.Contains(s, "?") {
		return s
	}
	return embeddedURL.ReplaceAllStringFunc(s, func(raw string) string {
		// Sentence punctuation after a URL is not part of it.
		trimmed := strings.TrimRight(raw, ".,;:!)")
		redacted, _ := redactURLQuery(trimmed)
		return redacted + raw[len(trimmed):]
	})
}

func (h *RedactingHandler) isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if sensitiveKeys[k] || h.extraKeys[k] {
		return true
	}
	return containsSensitiveKeyword(k)
}

func containsSensitiveKeyword(key string) bool {
	return slices.ContainsFunc(sensitiveKeywords, func(kw string) bool {
		return strings.Contains(key, kw)
	})
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// redactURLQuery masks every query parameter value of an absolute URL and
// reports whether anything changed. Parameter names stay visible.
func redactURLQuery(s string) (string, bool) {
	if !strings.Contains(s, "://") || !strings.Contains(s, "?") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.RawQuery == "" {
		return s, false
	}

	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = url.QueryEscape(k) + "=" + MaskValue
	}
	u.RawQuery = strings.Join(parts, "&")
	return u.String(), true
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger returns a text logger writing to w through a RedactingHandler.
// verbose lowers the level from Warn to Debug.
func NewLogger(w io.Writer, verbose bool, extraKeys ...string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(verbose)}
	return slog.New(NewRedactingHandler(slog.NewTextHandler(w, opts), extraKeys...))
}

// NewJSONLogger is NewLogger with JSON output, for log aggregation.
func NewJSONLogger(w io.Writer, verbose bool, extraKeys ...string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(verbose)}
	return slog.New(NewRedactingHandler(slog.NewJSONHandler(w, opts), extraKeys...))
}
