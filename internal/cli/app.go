package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dshills/codelens/internal/config"
	"github.com/dshills/codelens/internal/logger"
	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/review"
	"github.com/dshills/codelens/internal/store"
)

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg      config.Config
	registry *providers.Registry
	store    store.Store
	client   *review.Client
	logger   *slog.Logger
	closeLog func() error
}

// configPath is the --config flag or the default location.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.ConfigPath()
}

// globalOverrides maps global flags onto config keys.
func globalOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	return m
}

func loadConfig(extra map[string]string) (config.Config, error) {
	path, err := configPath()
	if err != nil {
		return config.Config{}, err
	}
	overrides := globalOverrides()
	for k, v := range extra {
		overrides[k] = v
	}
	cfg, err := config.LoadFrom(path, overrides)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openApp loads configuration and opens the store. Callers must Close it.
func openApp(extra map[string]string) (*app, error) {
	cfg, err := loadConfig(extra)
	if err != nil {
		return nil, err
	}
	log, closeLog := logger.NewLogger(cfg.Log, nil)

	reg, err := cfg.Registry()
	if err != nil {
		closeLog()
		return nil, err
	}
	s, err := store.Open(cfg.StoreOptions())
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening %s store: %w", backendName(cfg), err)
	}
	log.Debug("store opened", "backend", backendName(cfg))

	client, err := review.NewClient(review.Options{
		Registry:   reg,
		Store:      s,
		Logger:     log,
		RedactCode: cfg.Privacy.RedactSecrets,
	})
	if err != nil {
		s.Close()
		closeLog()
		return nil, err
	}
	return &app{cfg: cfg, registry: reg, store: s, client: client, logger: log, closeLog: closeLog}, nil
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.closeLog())
}

func backendName(cfg config.Config) string {
	if cfg.Storage.Backend == "" {
		return store.BackendPebble
	}
	return cfg.Storage.Backend
}

// exitFor maps an error onto an exit code and prints it.
func exitFor(err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	switch {
	case providers.IsRateLimited(err):
		return ExitRateLimited
	case providers.IsAuthError(err):
		return ExitAuthError
	default:
		return ExitRuntimeError
	}
}

// displayName is the file name shown in reports and history.
func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}
