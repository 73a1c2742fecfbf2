package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/codelens/internal/diag"
	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/ratelimit"
	"github.com/dshills/codelens/internal/redact"
	"github.com/dshills/codelens/internal/store"
)

// History ring settings.
const (
	HistoryKey  = "reviewHistory"
	HistorySize = 20
)

// reviewTemperature is the sampling temperature for review calls.
const reviewTemperature = 0.3

// Options configures a Client.
type Options struct {
	// Registry defaults to the built-in provider table.
	Registry *providers.Registry
	// Store is required; it holds cooldowns, logs and history.
	Store      store.Store
	HTTPClient *http.Client
	Logger     *slog.Logger
	// RedactCode scrubs recognizable secrets from code before upload.
	RedactCode bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Client reviews code through the configured providers. It is safe for
// concurrent use.
type Client struct {
	registry   *providers.Registry
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	diag       *diag.Log
	history    *diag.Ring[HistoryEntry]
	normalizer *Normalizer
	logger     *slog.Logger
	redactCode bool
	now        func() time.Time
}

// NewClient creates a Client from opts.
func NewClient(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("review client requires a store")
	}
	if opts.Registry == nil {
		r, err := providers.NewRegistry()
		if err != nil {
			return nil, err
		}
		opts.Registry = r
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: providers.RequestTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	log := diag.New(opts.Store).WithClock(opts.Now)
	return &Client{
		registry:   opts.Registry,
		httpClient: opts.HTTPClient,
		limiter:    ratelimit.New(opts.Store).WithClock(opts.Now),
		diag:       log,
		history:    diag.NewRing[HistoryEntry](opts.Store, HistoryKey, HistorySize),
		normalizer: NewNormalizer(log, opts.Logger),
		logger:     opts.Logger,
		redactCode: opts.RedactCode,
		now:        opts.Now,
	}, nil
}

// Registry returns the provider registry in use.
func (c *Client) Registry() *providers.Registry { return c.registry }

// ReviewCode runs one review. Failures are *providers.Error values; a model
// answer that does not parse is not a failure and yields FallbackReview.
func (c *Client) ReviewCode(ctx context.Context, req Request) (Review, error) {
	cfg, err := c.registry.Lookup(req.Provider)
	if err != nil {
		return Review{}, err
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return Review{}, missingKey(cfg)
	}
	if err := c.limiter.CheckAndRecord(ctx, cfg, req.APIKey); err != nil {
		c.logger.Info("request blocked by cooldown", "provider", cfg.ID, "error", err)
		return Review{}, err
	}

	code := req.Code
	if c.redactCode {
		code = redact.Secrets(code)
	}
	rules := req.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	prompt := Truncate(BuildPromptWithPolicy(code, req.FileName, rules, req.Policy), cfg.MaxPromptChars)

	caller, err := providers.New(cfg, c.httpClient)
	if err != nil {
		return Review{}, err
	}

	c.logger.Debug("dispatching review",
		"provider", cfg.ID, "model", cfg.Model, "file", req.FileName, "prompt_chars", len(prompt))
	start := c.now()
	raw, err := caller.Call(ctx, prompt, req.APIKey, providers.CallOptions{
		SystemPrompt: SystemInstruction,
		Temperature:  providers.Float(reviewTemperature),
		Timeout:      providers.RequestTimeout,
	})
	if err != nil {
		c.recordFailure(ctx, err, req.APIKey)
		return Review{}, err
	}
	c.logger.Debug("review response received",
		"provider", cfg.ID, "chars", len(raw), "elapsed", c.now().Sub(start))

	r := c.normalizer.Normalize(ctx, raw)
	r.Issues = ApplyTypeOverrides(r.Issues, req.Policy)
	c.addHistory(ctx, req.FileName, string(cfg.ID), r)
	return r, nil
}

// Demo returns DemoReview and records it in the history like a real review.
func (c *Client) Demo(ctx context.Context, fileName string) Review {
	r := DemoReview()
	c.addHistory(ctx, fileName, DemoProvider, r)
	return r
}

// ConnectionResult is the outcome of TestConnection.
type ConnectionResult struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

// TestConnection sends the cheapest possible request to the provider. It never
// returns an error and does not consume the cooldown slot.
func (c *Client) TestConnection(ctx context.Context, provider, apiKey string) ConnectionResult {
	res := ConnectionResult{Provider: provider}

	cfg, err := c.registry.Lookup(provider)
	if err != nil {
		res.Message = err.Error()
		return res
	}
	res.Provider = string(cfg.ID)
	if strings.TrimSpace(apiKey) == "" {
		res.Message = missingKey(cfg).Message
		return res
	}

	caller, err := providers.New(cfg, c.httpClient)
	if err != nil {
		res.Message = err.Error()
		return res
	}
	if err := caller.Ping(ctx, apiKey); err != nil {
		c.recordFailure(ctx, err, apiKey)
		res.Message = connectionFailure(cfg, err)
		return res
	}

	res.Success = true
	switch cfg.ID {
	case providers.OpenAI:
		res.Message = "OpenAI connection successful! Warning: Free tier is very limited."
	case providers.Gemini:
		res.Message = "Google Gemini connection successful! Good choice for free usage."
	default:
		res.Message = cfg.Name + " connection successful!"
	}
	return res
}

// TestAll runs TestConnection for every provider in keys concurrently. Results
// are in the order of the registry's IDs; providers without a key are
// reported as such.
func (c *Client) TestAll(ctx context.Context, keys map[providers.ID]string) []ConnectionResult {
	ids := c.registry.IDs()
	results := make([]ConnectionResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = c.TestConnection(gctx, string(id), keys[id])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ErrorLog returns the diagnostic error log, newest first.
func (c *Client) ErrorLog(ctx context.Context) ([]diag.ErrorEntry, error) {
	return c.diag.Errors(ctx)
}

// ClearErrorLog empties the diagnostic error log.
func (c *Client) ClearErrorLog(ctx context.Context) error {
	return c.diag.ClearErrors(ctx)
}

// SuccessLog returns previews of recent parseable responses, newest first.
func (c *Client) SuccessLog(ctx context.Context) ([]diag.SuccessEntry, error) {
	return c.diag.Successes(ctx)
}

// ClearSuccessLog empties the success log.
func (c *Client) ClearSuccessLog(ctx context.Context) error {
	return c.diag.ClearSuccesses(ctx)
}

// History returns past reviews, newest first.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	return c.history.List(ctx)
}

// ClearHistory removes every history entry.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.history.Clear(ctx)
}

// Cooldown reports how long until apiKey may be used with provider again.
func (c *Client) Cooldown(ctx context.Context, provider, apiKey string) (time.Duration, error) {
	cfg, err := c.registry.Lookup(provider)
	if err != nil {
		return 0, err
	}
	return c.limiter.Remaining(ctx, cfg, apiKey)
}

// ResetCooldown forgets the last request time for apiKey with provider.
func (c *Client) ResetCooldown(ctx context.Context, provider, apiKey string) error {
	cfg, err := c.registry.Lookup(provider)
	if err != nil {
		return err
	}
	return c.limiter.Reset(ctx, cfg, apiKey)
}

// recordFailure appends dispatched provider failures to the error log.
func (c *Client) recordFailure(ctx context.Context, err error, apiKey string) {
	pe, ok := providers.AsError(err)
	if !ok {
		c.logger.Warn("provider call failed", "error", redact.APIKey(err.Error(), apiKey))
		return
	}
	c.logger.Warn("provider call failed",
		"provider", pe.Provider, "kind", pe.Kind, "status", pe.Status)
	if !pe.Dispatched() {
		return
	}
	if lerr := c.diag.RecordError(ctx, pe, apiKey); lerr != nil {
		c.logger.Warn("recording provider error", "error", lerr)
	}
}

func (c *Client) addHistory(ctx context.Context, fileName, provider string, r Review) {
	entry := HistoryEntry{
		ID:        xid.New().String(),
		Timestamp: c.now().UTC(),
		FileName:  fileName,
		Provider:  provider,
		Review:    r,
	}
	if err := c.history.Push(ctx, entry); err != nil {
		c.logger.Warn("saving review history", "error", err)
	}
}

func missingKey(cfg providers.Config) *providers.Error {
	return &providers.Error{
		Kind:     providers.KindInvalidAPIKey,
		Provider: cfg.ID,
		Message:  fmt.Sprintf("No %s API key configured. Please add your API key in settings.", cfg.Name),
	}
}

// connectionFailure phrases a Ping failure for the connection test.
func connectionFailure(cfg providers.Config, err error) string {
	pe, ok := providers.AsError(err)
	if !ok {
		return "Connection failed: " + err.Error()
	}
	switch pe.Kind {
	case providers.KindProviderRateLimited:
		if cfg.ID == providers.OpenAI {
			return "Rate limit hit during test! OpenAI free tier is extremely limited. Consider switching to Google Gemini or adding billing credit."
		}
		return "Rate limit exceeded. Please wait and try again."
	case providers.KindQuotaExhausted:
		return pe.Message
	case providers.KindInvalidAPIKey:
		return "Invalid API key. Please check your key."
	case providers.KindForbidden:
		return fmt.Sprintf("Access forbidden. Free trial ended? Add billing to your %s account or switch to another provider.", cfg.Name)
	default:
		return "Connection failed: " + pe.Message
	}
}
