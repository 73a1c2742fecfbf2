package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ID identifies a supported provider.
type ID string

const (
	OpenAI ID = "openai"
	Gemini ID = "gemini"
)

const (
	defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
	defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// RequestTimeout bounds a single review round-trip.
	RequestTimeout = 30 * time.Second
	// PingTimeout bounds a connection test.
	PingTimeout = 10 * time.Second
)

// Config is the immutable description of one provider.
type Config struct {
	ID             ID
	Name           string
	BaseURL        string
	Model          string
	Cooldown       time.Duration
	MaxPromptChars int
	MaxTokens      int
}

// Endpoint returns the request URL for the given key. Gemini carries the key
// as a query parameter; OpenAI uses the base URL as-is.
func (c Config) Endpoint(apiKey string) string {
	switch c.ID {
	case Gemini:
		return fmt.Sprintf("%s/%s:generateContent?key=%s",
			strings.TrimRight(c.BaseURL, "/"), c.Model, url.QueryEscape(apiKey))
	default:
		return c.BaseURL
	}
}

// Headers builds the request headers for the given key.
func (c Config) Headers(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if c.ID == OpenAI {
		h.Set("Authorization", "Bearer "+apiKey)
	}
	return h
}

// Defaults returns the built-in provider table.
func Defaults() []Config {
	return []Config{
		{
			ID:             OpenAI,
			Name:           "OpenAI",
			BaseURL:        defaultOpenAIURL,
			Model:          "gpt-3.5-turbo",
			Cooldown:       60 * time.Second,
			MaxPromptChars: 2500,
			MaxTokens:      1500,
		},
		{
			ID:             Gemini,
			Name:           "Google Gemini",
			BaseURL:        defaultGeminiURL,
			Model:          "gemini-1.5-flash",
			Cooldown:       15 * time.Second,
			MaxPromptChars: 30000,
			MaxTokens:      2000,
		},
	}
}

// Registry holds exactly one Config per supported provider.
type Registry struct {
	configs map[ID]Config
}

// NewRegistry builds a registry from the defaults, replacing any entry whose
// ID matches one of the given overrides. Overrides for unknown IDs are
// rejected.
func NewRegistry(overrides ...Config) (*Registry, error) {
	r := &Registry{configs: make(map[ID]Config)}
	for _, c := range Defaults() {
		r.configs[c.ID] = c
	}
	for _, o := range overrides {
		if _, ok := r.configs[o.ID]; !ok {
			return nil, fmt.Errorf("unknown provider: %s", o.ID)
		}
		r.configs[o.ID] = o
	}
	return r, nil
}

// Lookup resolves a provider name. Unknown names fail with UnsupportedProvider.
func (r *Registry) Lookup(name string) (Config, error) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	if id == "google" {
		id = Gemini
	}
	c, ok := r.configs[id]
	if !ok {
		return Config{}, &Error{
			Kind:     KindUnsupportedProvider,
			Provider: id,
			Message:  fmt.Sprintf("Unsupported AI provider: %s", name),
		}
	}
	return c, nil
}

// IDs returns the registered provider IDs in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CallOptions tunes a single Call.
type CallOptions struct {
	SystemPrompt string
	Temperature  *float64
	MaxTokens    int
	Timeout      time.Duration
}

// Caller performs one blocking round-trip against a provider.
type Caller interface {
	// Call sends prompt and returns the model's raw text.
	Call(ctx context.Context, prompt, apiKey string, opts CallOptions) (string, error)
	// Ping issues the cheapest possible request and reports only transport
	// and status failures.
	Ping(ctx context.Context, apiKey string) error
	Config() Config
}

// New creates a Caller for cfg. A nil client gets a default with
// RequestTimeout.
func New(cfg Config, client *http.Client) (Caller, error) {
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}
	switch cfg.ID {
	case OpenAI:
		return NewOpenAI(cfg, client), nil
	case Gemini:
		return NewGemini(cfg, client), nil
	default:
		return nil, &Error{
			Kind:     KindUnsupportedProvider,
			Provider: cfg.ID,
			Message:  fmt.Sprintf("Unsupported AI provider: %s", cfg.ID),
		}
	}
}

// Float returns a pointer to v, for CallOptions.Temperature.
func Float(v float64) *float64 { return &v }
