package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/store"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setup(t *testing.T) (*Limiter, *fakeClock, store.Store, providers.Config, providers.Config) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	s := store.NewMemory()
	defs := providers.Defaults()
	return New(s).WithClock(clock.Now), clock, s, defs[0], defs[1]
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rateLimit_openai_abcdefgh", Key(providers.OpenAI, "sk-0000abcdefgh"))
	assert.Equal(t, "rateLimit_gemini_short", Key(providers.Gemini, "short"))
}

func TestCheckAndRecord_Window(t *testing.T) {
	ctx := context.Background()
	l, clock, _, openai, _ := setup(t)

	require.NoError(t, l.CheckAndRecord(ctx, openai, "sk-key-11111111"))

	clock.Advance(10 * time.Second)
	err := l.CheckAndRecord(ctx, openai, "sk-key-11111111")
	require.Error(t, err)

	var pe *providers.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, providers.KindRateLimited, pe.Kind)
	assert.Equal(t, 50, pe.RetryAfter)
	assert.Contains(t, pe.Message, "Please wait 50 seconds")
	assert.False(t, pe.Dispatched())

	clock.Advance(50 * time.Second)
	assert.NoError(t, l.CheckAndRecord(ctx, openai, "sk-key-11111111"), "window is exactly the cooldown")
}

func TestCheckAndRecord_RoundsUp(t *testing.T) {
	ctx := context.Background()
	l, clock, _, _, gemini := setup(t)

	require.NoError(t, l.CheckAndRecord(ctx, gemini, "g-key"))
	clock.Advance(14*time.Second + 100*time.Millisecond)

	err := l.CheckAndRecord(ctx, gemini, "g-key")
	pe, ok := providers.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 1, pe.RetryAfter)
	assert.NotContains(t, pe.Message, "OpenAI")
}

func TestCheckAndRecord_IndependentKeysAndProviders(t *testing.T) {
	ctx := context.Background()
	l, _, _, openai, gemini := setup(t)

	require.NoError(t, l.CheckAndRecord(ctx, openai, "sk-aaaaaaaa11111111"))
	assert.NoError(t, l.CheckAndRecord(ctx, openai, "sk-aaaaaaaa22222222"), "different fingerprint")
	assert.NoError(t, l.CheckAndRecord(ctx, gemini, "sk-aaaaaaaa11111111"), "different provider")
	assert.Error(t, l.CheckAndRecord(ctx, openai, "sk-bbbbbbbb11111111"), "same last 8 characters share a slot")
}

func TestCheckAndRecord_PersistsMillis(t *testing.T) {
	ctx := context.Background()
	l, clock, s, openai, _ := setup(t)

	require.NoError(t, l.CheckAndRecord(ctx, openai, "sk-12345678"))
	raw, ok, err := s.Get(ctx, "rateLimit_openai_12345678")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(clock.Now().UnixMilli(), 10), raw)

	// A second limiter over the same store sees the cooldown.
	other := New(s).WithClock(clock.Now)
	assert.Error(t, other.CheckAndRecord(ctx, openai, "sk-12345678"))
}

func TestRemaining(t *testing.T) {
	ctx := context.Background()
	l, clock, s, _, gemini := setup(t)

	d, err := l.Remaining(ctx, gemini, "k")
	require.NoError(t, err)
	assert.Zero(t, d)

	require.NoError(t, l.CheckAndRecord(ctx, gemini, "k"))
	clock.Advance(5 * time.Second)
	d, err = l.Remaining(ctx, gemini, "k")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	before, _, _ := s.Get(ctx, Key(gemini.ID, "k"))
	clock.Advance(20 * time.Second)
	l.Remaining(ctx, gemini, "k")
	after, _, _ := s.Get(ctx, Key(gemini.ID, "k"))
	assert.Equal(t, before, after, "Remaining must not record")
}

func TestRemaining_CorruptAndFuture(t *testing.T) {
	ctx := context.Background()
	l, clock, s, openai, _ := setup(t)

	require.NoError(t, s.Set(ctx, Key(openai.ID, "k"), "garbage"))
	d, err := l.Remaining(ctx, openai, "k")
	require.NoError(t, err)
	assert.Zero(t, d)

	future := clock.Now().Add(time.Hour).UnixMilli()
	require.NoError(t, s.Set(ctx, Key(openai.ID, "k"), strconv.FormatInt(future, 10)))
	d, _ = l.Remaining(ctx, openai, "k")
	assert.Equal(t, openai.Cooldown, d)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	l, _, _, openai, _ := setup(t)

	require.NoError(t, l.CheckAndRecord(ctx, openai, "k"))
	require.NoError(t, l.Reset(ctx, openai, "k"))
	assert.NoError(t, l.CheckAndRecord(ctx, openai, "k"))
}

func TestCheckAndRecord_Concurrent(t *testing.T) {
	ctx := context.Background()
	l, _, _, openai, _ := setup(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.CheckAndRecord(ctx, openai, "same-key") == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, allowed, "exactly one caller may take the slot")
}
