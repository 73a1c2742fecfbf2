package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/store"
)

// fingerprintLen is how many trailing key characters identify a key.
const fingerprintLen = 8

// Limiter is a per (provider, key fingerprint) cooldown gate.
type Limiter struct {
	store store.Store
	now   func() time.Time

	mu sync.Mutex
}

// New creates a Limiter over s.
func New(s store.Store) *Limiter {
	return &Limiter{store: s, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Key returns the store key for a provider and API key.
func Key(provider providers.ID, apiKey string) string {
	fp := apiKey
	if len(fp) > fingerprintLen {
		fp = fp[len(fp)-fingerprintLen:]
	}
	return fmt.Sprintf("rateLimit_%s_%s", provider, fp)
}

// CheckAndRecord fails with a RateLimited *providers.Error while cfg's
// cooldown is running for apiKey. Otherwise it records now as the last
// request time and returns nil; the slot is consumed even if the request
// that follows fails.
func (l *Limiter) CheckAndRecord(ctx context.Context, cfg providers.Config, apiKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	remaining, err := l.remaining(ctx, cfg, apiKey, now)
	if err != nil {
		return err
	}
	if remaining > 0 {
		secs := int(math.Ceil(remaining.Seconds()))
		msg := fmt.Sprintf("Rate limit protection: Please wait %d seconds before making another request.", secs)
		if cfg.ID == providers.OpenAI {
			msg += " OpenAI free tier has very strict limits."
		}
		return &providers.Error{
			Kind:       providers.KindRateLimited,
			Provider:   cfg.ID,
			RetryAfter: secs,
			Message:    msg,
		}
	}

	key := Key(cfg.ID, apiKey)
	if err := l.store.Set(ctx, key, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("recording request time: %w", err)
	}
	return nil
}

// Remaining reports how long until apiKey may be used with cfg again. It
// never records anything.
func (l *Limiter) Remaining(ctx context.Context, cfg providers.Config, apiKey string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining(ctx, cfg, apiKey, l.now())
}

// Reset forgets the last request time for apiKey.
func (l *Limiter) Reset(ctx context.Context, cfg providers.Config, apiKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(ctx, Key(cfg.ID, apiKey))
}

func (l *Limiter) remaining(ctx context.Context, cfg providers.Config, apiKey string, now time.Time) (time.Duration, error) {
	raw, ok, err := l.store.Get(ctx, Key(cfg.ID, apiKey))
	if err != nil {
		return 0, fmt.Errorf("reading request time: %w", err)
	}
	if !ok {
		return 0, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Unreadable records do not block requests.
		return 0, nil
	}
	elapsed := now.Sub(time.UnixMilli(ms))
	if elapsed < 0 {
		// Clock moved backwards: wait a full window from now.
		elapsed = 0
	}
	if elapsed >= cfg.Cooldown {
		return 0, nil
	}
	return cfg.Cooldown - elapsed, nil
}
