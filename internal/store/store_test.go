package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFile(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)
	peb, err := NewPebble(filepath.Join(t.TempDir(), "pebble"))
	require.NoError(t, err)
	t.Cleanup(func() { peb.Close() })

	return map[string]Store{
		BackendMemory: NewMemory(),
		BackendFile:   file,
		BackendPebble: peb,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "rateLimit_openai_12345678")
			require.NoError(t, err)
			assert.False(t, ok, "expected miss before Set")

			require.NoError(t, s.Set(ctx, "rateLimit_openai_12345678", "1700000000000"))
			got, ok, err := s.Get(ctx, "rateLimit_openai_12345678")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "1700000000000", got)

			require.NoError(t, s.Set(ctx, "rateLimit_openai_12345678", "1700000001000"))
			got, _, _ = s.Get(ctx, "rateLimit_openai_12345678")
			assert.Equal(t, "1700000001000", got, "Set should overwrite")

			require.NoError(t, s.Delete(ctx, "rateLimit_openai_12345678"))
			_, ok, err = s.Get(ctx, "rateLimit_openai_12345678")
			require.NoError(t, err)
			assert.False(t, ok, "expected miss after Delete")

			assert.NoError(t, s.Delete(ctx, "never-set"), "deleting a missing key is not an error")
		})
	}
}

func TestStore_JSONHelpers(t *testing.T) {
	ctx := context.Background()
	type entry struct {
		ID    string `json:"id"`
		Score int    `json:"score"`
	}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var got []entry
			ok, err := GetJSON(ctx, s, "reviewHistory", &got)
			require.NoError(t, err)
			assert.False(t, ok)

			in := []entry{{ID: "a", Score: 72}, {ID: "b", Score: 50}}
			require.NoError(t, SetJSON(ctx, s, "reviewHistory", in))

			ok, err = GetJSON(ctx, s, "reviewHistory", &got)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, in, got)
		})
	}
}

func TestGetJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "aiService_rawErrors", "{not json"))

	var v []string
	ok, err := GetJSON(ctx, s, "aiService_rawErrors", &v)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "aiService_rawErrors")
}

func TestPebble_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "pebble")

	p, err := NewPebble(dir)
	require.NoError(t, err)
	require.NoError(t, p.Set(ctx, "k", "v"))
	require.NoError(t, p.Close())

	p, err = NewPebble(dir)
	require.NoError(t, err)
	defer p.Close()

	got, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestFile_TornEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(f.path("k"), []byte("{"), 0o600))
	_, ok, err := f.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set(ctx, "k", "v"))
	got, ok, _ := f.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := Open(Options{Backend: BackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, s)
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Open(Options{Backend: BackendFile, Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, s.(*File).Dir())
	})

	t.Run("pebble is the default", func(t *testing.T) {
		s, err := Open(Options{Dir: t.TempDir()})
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &Pebble{}, s)
	})

	t.Run("redis requires URL", func(t *testing.T) {
		_, err := Open(Options{Backend: BackendRedis})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis URL required")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(Options{Backend: "bolt"})
		assert.ErrorContains(t, err, "unknown storage backend")
	})
}

func TestDefaultDir_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "codelens"), dir)
}
