package diag

import (
	"encoding/json"
	"time"
)

// Store keys and capacities of the persisted logs.
const (
	ErrorLogKey   = "aiService_rawErrors"
	SuccessLogKey = "aiService_successfulResponses"

	ErrorLogSize   = 10
	SuccessLogSize = 5

	// PreviewLimit caps SuccessEntry.ContentPreview before the ellipsis.
	PreviewLimit = 500
	// RawContentLimit caps the model text kept for a parse failure.
	RawContentLimit = 4000
)

// ParsingProvider is the provider name on entries for unparseable model output.
const ParsingProvider = "parsing"

// ErrorEntry is one failed interaction, redacted before it is stored.
type ErrorEntry struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Provider   string          `json:"provider"`
	Kind       string          `json:"kind,omitempty"`
	Status     int             `json:"status,omitempty"`
	StatusText string          `json:"statusText,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message"`
	Request    *RequestInfo    `json:"request,omitempty"`
}

// RequestInfo is the redacted outbound request.
type RequestInfo struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ParseFailure is the Data payload of a ParsingProvider entry.
type ParseFailure struct {
	OriginalContent string `json:"originalContent"`
	ContentLength   int    `json:"contentLength"`
	ErrorMessage    string `json:"errorMessage"`
	// ErrorPosition is the byte offset of a syntax error, or "unknown".
	ErrorPosition string `json:"errorPosition"`
}

// SuccessEntry previews a model response that normalized cleanly.
type SuccessEntry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Type           string    `json:"type"`
	ContentLength  int       `json:"contentLength"`
	ContentPreview string    `json:"contentPreview"`
}
