package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrorKind classifies a failed provider interaction.
type ErrorKind string

const (
	KindRateLimited               ErrorKind = "rate_limited"
	KindInvalidAPIKey             ErrorKind = "invalid_api_key"
	KindQuotaExhausted            ErrorKind = "quota_exhausted"
	KindForbidden                 ErrorKind = "forbidden"
	KindProviderRateLimited       ErrorKind = "provider_rate_limited"
	KindBadRequest                ErrorKind = "bad_request"
	KindServiceUnavailable        ErrorKind = "service_unavailable"
	KindModelNotFound             ErrorKind = "model_not_found"
	KindMalformedProviderResponse ErrorKind = "malformed_provider_response"
	KindNetworkError              ErrorKind = "network_error"
	KindUnsupportedProvider       ErrorKind = "unsupported_provider"
	// KindResponseParseFailure is recorded in diagnostics only. It is never
	// returned to callers; the normalizer substitutes a fallback review.
	KindResponseParseFailure ErrorKind = "response_parse_failure"
)

// RequestMeta describes the outbound request that failed. Headers and URL are
// stored as sent; callers must redact before persisting.
type RequestMeta struct {
	URL     string
	Method  string
	Headers http.Header
}

// Error is the typed failure returned by every Caller and by the rate limiter.
type Error struct {
	Kind       ErrorKind
	Provider   ID
	Status     int
	StatusText string
	Body       string
	// RetryAfter is the suggested wait in whole seconds, zero when unknown.
	RetryAfter int
	Message    string
	Request    *RequestMeta
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Dispatched reports whether the failure happened after a request was put on
// the wire. Only dispatched failures belong in the diagnostic error log.
func (e *Error) Dispatched() bool {
	switch e.Kind {
	case KindRateLimited, KindUnsupportedProvider:
		return false
	}
	return e.Request != nil
}

// KindOf extracts the ErrorKind from err.
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// AsError returns the *Error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var pe *Error
	ok := errors.As(err, &pe)
	return pe, ok
}

// IsAuthError checks if an error is a credential or billing problem.
func IsAuthError(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case KindInvalidAPIKey, KindQuotaExhausted, KindForbidden:
		return true
	}
	return false
}

// IsRateLimited checks for either the local cooldown or a provider 429.
func IsRateLimited(err error) bool {
	kind, ok := KindOf(err)
	return ok && (kind == KindRateLimited || kind == KindProviderRateLimited)
}

const quotaMarker = "insufficient_quota"

// classifyStatus maps a non-2xx response to an Error.
func classifyStatus(cfg Config, status int, header http.Header, body []byte) *Error {
	e := &Error{
		Provider:   cfg.ID,
		Status:     status,
		StatusText: http.StatusText(status),
		Body:       string(body),
	}
	providerMsg := providerMessage(body)
	lowerMsg := strings.ToLower(providerMsg)
	quota := strings.Contains(string(body), quotaMarker)

	switch {
	case status == http.StatusUnauthorized && quota,
		status == http.StatusTooManyRequests && quota:
		e.Kind = KindQuotaExhausted
		e.Message = fmt.Sprintf("%s quota exceeded! Your credits are exhausted. Add billing to your %s account or switch to %s.",
			cfg.Name, cfg.Name, alternative(cfg.ID))
	case status == http.StatusUnauthorized:
		e.Kind = KindInvalidAPIKey
		e.Message = fmt.Sprintf("Invalid %s API key. Please check your API key in settings and ensure it's valid.", cfg.Name)
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
		e.Message = fmt.Sprintf("%s access forbidden. Your API key may not have the required permissions, or you may need to add billing to your account.", cfg.Name)
	case status == http.StatusTooManyRequests:
		e.Kind = KindProviderRateLimited
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"), time.Now())
		wait := "a few minutes"
		if e.RetryAfter > 0 {
			wait = fmt.Sprintf("%d seconds", e.RetryAfter)
		}
		e.Message = fmt.Sprintf("%s rate limit exceeded. Please wait %s before trying again.", cfg.Name, wait)
	case status == http.StatusBadRequest && cfg.ID == Gemini && strings.Contains(lowerMsg, "api key"):
		e.Kind = KindInvalidAPIKey
		e.Message = fmt.Sprintf("Invalid %s API key. Please check your API key in settings.", cfg.Name)
	case status == http.StatusBadRequest && mentionsLength(lowerMsg):
		e.Kind = KindBadRequest
		e.Message = fmt.Sprintf("Request too large for %s. Try a smaller file (under %d characters).", cfg.Name, cfg.MaxPromptChars)
	case status == http.StatusBadRequest && cfg.ID == Gemini && strings.Contains(lowerMsg, "model"):
		e.Kind = KindModelNotFound
		e.Message = modelNotFoundMessage(cfg)
	case status == http.StatusNotFound:
		e.Kind = KindModelNotFound
		e.Message = modelNotFoundMessage(cfg)
	case status >= 500:
		e.Kind = KindServiceUnavailable
		e.Message = fmt.Sprintf("%s service temporarily unavailable (status %d). Please try again later.", cfg.Name, status)
	default:
		e.Kind = KindBadRequest
		if providerMsg == "" {
			providerMsg = e.StatusText
		}
		e.Message = fmt.Sprintf("%s API error: %s", cfg.Name, providerMsg)
	}
	return e
}

func modelNotFoundMessage(cfg Config) string {
	return fmt.Sprintf("%s model %s not found. This could be a regional availability issue. Try switching to %s.",
		cfg.Name, cfg.Model, alternative(cfg.ID))
}

// networkError wraps a transport failure where no response was received.
func networkError(cfg Config, err error) *Error {
	msg := fmt.Sprintf("Network error contacting %s. Please check your internet connection.", cfg.Name)
	if isTimeout(err) {
		msg = fmt.Sprintf("%s did not respond in time. Please check your internet connection and try again.", cfg.Name)
	}
	return &Error{
		Kind:     KindNetworkError,
		Provider: cfg.ID,
		Message:  msg,
		Err:      err,
	}
}

// providerMessage pulls error.message out of an OpenAI or Gemini error body.
func providerMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	return ""
}

func mentionsLength(lowerMsg string) bool {
	for _, marker := range []string{"token", "too long", "maximum context", "length"} {
		if strings.Contains(lowerMsg, marker) {
			return true
		}
	}
	return false
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return int((d + time.Second - 1) / time.Second)
		}
	}
	return 0
}

func alternative(id ID) string {
	if id == OpenAI {
		return "Google Gemini"
	}
	return "OpenAI"
}
