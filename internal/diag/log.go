package diag

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rs/xid"
	"github.com/tidwall/gjson"

	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/redact"
	"github.com/dshills/codelens/internal/store"
)

// Log owns the error and success rings. It is safe for concurrent use.
type Log struct {
	errors    *Ring[ErrorEntry]
	successes *Ring[SuccessEntry]
	now       func() time.Time
}

// New creates a Log over s.
func New(s store.Store) *Log {
	return &Log{
		errors:    NewRing[ErrorEntry](s, ErrorLogKey, ErrorLogSize),
		successes: NewRing[SuccessEntry](s, SuccessLogKey, SuccessLogSize),
		now:       time.Now,
	}
}

// WithClock replaces the timestamp source, for tests.
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

// RecordError appends a dispatched provider failure. apiKey is scrubbed from
// every field before anything is written.
func (l *Log) RecordError(ctx context.Context, e *providers.Error, apiKey string) error {
	entry := ErrorEntry{
		ID:         xid.New().String(),
		Timestamp:  l.now().UTC(),
		Provider:   string(e.Provider),
		Kind:       string(e.Kind),
		Status:     e.Status,
		StatusText: e.StatusText,
		Data:       rawData(redact.APIKey(e.Body, apiKey)),
		Message:    redact.APIKey(e.Message, apiKey),
	}
	if e.Err != nil && e.Kind == providers.KindNetworkError {
		entry.Message += " (" + redact.APIKey(e.Err.Error(), apiKey) + ")"
	}
	if e.Request != nil {
		entry.Request = &RequestInfo{
			URL:     redact.APIKey(redact.URL(e.Request.URL), apiKey),
			Method:  e.Request.Method,
			Headers: redact.Headers(e.Request.Headers),
		}
	}
	return l.errors.Push(ctx, entry)
}

// RecordParseFailure appends a ParsingProvider entry for model output that
// could not be turned into a review. position < 0 means unknown.
func (l *Log) RecordParseFailure(ctx context.Context, raw, message string, position int) error {
	pos := "unknown"
	if position >= 0 {
		pos = strconv.Itoa(position)
	}
	data, err := json.Marshal(ParseFailure{
		OriginalContent: truncate(raw, RawContentLimit),
		ContentLength:   len(raw),
		ErrorMessage:    message,
		ErrorPosition:   pos,
	})
	if err != nil {
		return err
	}
	return l.errors.Push(ctx, ErrorEntry{
		ID:        xid.New().String(),
		Timestamp: l.now().UTC(),
		Provider:  ParsingProvider,
		Kind:      string(providers.KindResponseParseFailure),
		Data:      data,
		Message:   message,
	})
}

// RecordSuccess appends a preview of content.
func (l *Log) RecordSuccess(ctx context.Context, content string) error {
	preview := truncate(content, PreviewLimit)
	if len(preview) < len(content) {
		preview += "..."
	}
	return l.successes.Push(ctx, SuccessEntry{
		ID:             xid.New().String(),
		Timestamp:      l.now().UTC(),
		Type:           "successful_response",
		ContentLength:  len(content),
		ContentPreview: preview,
	})
}

// Errors returns the error log, newest first.
func (l *Log) Errors(ctx context.Context) ([]ErrorEntry, error) {
	return l.errors.List(ctx)
}

// ClearErrors empties the error log.
func (l *Log) ClearErrors(ctx context.Context) error {
	return l.errors.Clear(ctx)
}

// Successes returns the success log, newest first.
func (l *Log) Successes(ctx context.Context) ([]SuccessEntry, error) {
	return l.successes.List(ctx)
}

// ClearSuccesses empties the success log.
func (l *Log) ClearSuccesses(ctx context.Context) error {
	return l.successes.Clear(ctx)
}

// rawData keeps a JSON body as-is and quotes anything else.
func rawData(body string) json.RawMessage {
	if body == "" {
		return nil
	}
	if gjson.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
