package redact

import (
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// OpenAI API keys, including sk-proj- style
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),
	// Google API keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
}

// keyParam matches a key= query parameter anywhere in a URL or message.
var keyParam = regexp.MustCompile(`([?&]key=)[^&\s"']+`)

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, Placeholder)
	}
	return result
}

// APIKey removes every occurrence of key from text, along with any key=
// query parameter and recognizable secrets.
func APIKey(text, key string) string {
	if key != "" {
		text = strings.ReplaceAll(text, key, Placeholder)
		if esc := url.QueryEscape(key); esc != key {
			text = strings.ReplaceAll(text, esc, Placeholder)
		}
	}
	text = keyParam.ReplaceAllString(text, "${1}"+Placeholder)
	return Secrets(text)
}

// URL redacts the key query parameter of raw. Unparseable input falls back to
// pattern replacement.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return keyParam.ReplaceAllString(raw, "${1}"+Placeholder)
	}
	q := u.Query()
	if !q.Has("key") {
		return raw
	}
	q.Set("key", Placeholder)
	u.RawQuery = q.Encode()
	// Keep the brackets readable instead of percent-encoded.
	return strings.Replace(u.String(), url.QueryEscape(Placeholder), Placeholder, 1)
}

// Headers flattens h into a map with credential headers replaced.
func Headers(h http.Header) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, values := range h {
		switch http.CanonicalHeaderKey(name) {
		case "Authorization", "X-Goog-Api-Key", "Api-Key":
			out[name] = Placeholder
		default:
			out[name] = strings.Join(values, ", ")
		}
	}
	return out
}

// ShouldRedactPath checks if a file path matches any of the given glob
// patterns. A leading "**/" matches the file name at any depth.
func ShouldRedactPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		cleanPattern := strings.TrimPrefix(pattern, "**/")
		if cleanPattern != pattern {
			base := filepath.Base(path)
			matched, err = filepath.Match(cleanPattern, base)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}
