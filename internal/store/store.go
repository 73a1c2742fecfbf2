package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendPebble = "pebble"
	BackendRedis  = "redis"
)

// Store is a string-keyed value store.
type Store interface {
	// Get returns the value for key. A missing key is ("", false, nil).
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string
	RedisURL string
}

// Open creates the Store described by opts. An empty backend means pebble.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		dir, err := dirOrDefault(opts.Dir, "kv")
		if err != nil {
			return nil, err
		}
		return NewFile(dir)
	case "", BackendPebble:
		dir, err := dirOrDefault(opts.Dir, "pebble")
		if err != nil {
			return nil, err
		}
		return NewPebble(dir)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis URL required for %s backend", BackendRedis)
		}
		return NewRedis(opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q (use memory, file, pebble or redis)", opts.Backend)
	}
}

// GetJSON decodes the value under key into v. It reports false when the key
// is missing.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

func dirOrDefault(dir, sub string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	base, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, sub), nil
}

// DefaultDir returns the per-user data directory for codelens.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "codelens"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "codelens"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "codelens"), nil
		}
		return filepath.Join(home, "AppData", "Local", "codelens"), nil
	default:
		return filepath.Join(home, ".local", "share", "codelens"), nil
	}
}
