package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dshills/codelens/internal/logger"
	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. CODELENS_PROVIDER.
const EnvPrefix = "CODELENS"

// Output formats accepted by Config.Format.
var formats = []string{"text", "json", "markdown", "pretty"}

// Config represents the codelens configuration.
type Config struct {
	Provider  string         `mapstructure:"provider" yaml:"provider"`
	Format    string         `mapstructure:"format" yaml:"format"`
	RulesFile string         `mapstructure:"rules_file" yaml:"rules_file"`
	Rules     []string       `mapstructure:"rules" yaml:"rules"`
	OpenAI    ProviderConfig `mapstructure:"openai" yaml:"openai"`
	Gemini    ProviderConfig `mapstructure:"gemini" yaml:"gemini"`
	Storage   StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Log       logger.Config  `mapstructure:"log" yaml:"log"`
	Privacy   PrivacyConfig  `mapstructure:"privacy" yaml:"privacy"`
}

// ProviderConfig tunes one provider. Zero values keep the built-in defaults.
type ProviderConfig struct {
	APIKey          string `mapstructure:"api_key" yaml:"api_key"`
	Model           string `mapstructure:"model" yaml:"model"`
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	CooldownSeconds int    `mapstructure:"cooldown_seconds" yaml:"cooldown_seconds"`
	MaxPromptChars  int    `mapstructure:"max_prompt_chars" yaml:"max_prompt_chars"`
	MaxTokens       int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// StorageConfig selects where cooldowns, logs and history live.
type StorageConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Dir      string `mapstructure:"dir" yaml:"dir"`
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
}

// PrivacyConfig controls redaction of code before upload.
type PrivacyConfig struct {
	RedactSecrets bool     `mapstructure:"redact_secrets" yaml:"redact_secrets"`
	SkipPaths     []string `mapstructure:"skip_paths" yaml:"skip_paths"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider: string(providers.Gemini),
		Format:   "text",
		Storage:  StorageConfig{Backend: store.BackendPebble},
		Log:      logger.Default(),
		Privacy:  PrivacyConfig{RedactSecrets: true},
	}
}

// ConfigDir returns the platform-appropriate config directory for codelens.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
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
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codelens"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "codelens"), nil
	default:
		return filepath.Join(home, ".config", "codelens"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// defaults registers every non-secret key so that env overrides and
// Unmarshal see the full key set.
func defaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("format", d.Format)
	v.SetDefault("rules_file", "")
	v.SetDefault("rules", []string{})
	for _, id := range []providers.ID{providers.OpenAI, providers.Gemini} {
		p := string(id)
		v.SetDefault(p+".model", "")
		v.SetDefault(p+".base_url", "")
		v.SetDefault(p+".cooldown_seconds", 0)
		v.SetDefault(p+".max_prompt_chars", 0)
		v.SetDefault(p+".max_tokens", 0)
	}
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", "")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("privacy.redact_secrets", d.Privacy.RedactSecrets)
	v.SetDefault("privacy.skip_paths", []string{})
}

// bindEnv wires CODELENS_* overrides plus the conventional key variables.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return err
	}
	return v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
}

// Load builds the effective config from the default config file. See LoadFrom.
func Load(overrides map[string]string) (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path, overrides)
}

// LoadFrom builds the effective config by merging:
// defaults <- file at path <- env <- overrides. A missing file is not an error.
// The overrides map comes from CLI flags; empty values are ignored.
func LoadFrom(path string, overrides map[string]string) (Config, error) {
	v := viper.New()
	defaults(v)
	if err := bindEnv(v); err != nil {
		return Config{}, fmt.Errorf("binding environment: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	for key, val := range overrides {
		if val == "" {
			continue
		}
		if _, ok := settable[key]; !ok {
			return Config{}, fmt.Errorf("unknown config key: %s", key)
		}
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.provider(); err != nil {
		return err
	}
	if !contains(formats, c.Format) {
		return fmt.Errorf("invalid format %q (use %s)", c.Format, strings.Join(formats, ", "))
	}
	switch c.Storage.Backend {
	case "", store.BackendMemory, store.BackendFile, store.BackendPebble:
	case store.BackendRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend %q", c.Storage.Backend)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	for name, p := range map[string]ProviderConfig{"openai": c.OpenAI, "gemini": c.Gemini} {
		if p.CooldownSeconds < 0 || p.MaxPromptChars < 0 || p.MaxTokens < 0 {
			return fmt.Errorf("%s: limits must not be negative", name)
		}
	}
	return nil
}

// provider resolves the default provider name.
func (c Config) provider() (providers.ID, error) {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "openai":
		return providers.OpenAI, nil
	case "gemini", "google":
		return providers.Gemini, nil
	default:
		return "", fmt.Errorf("unsupported provider %q (use openai or gemini)", c.Provider)
	}
}

// Registry returns a provider registry with this config's overrides applied.
func (c Config) Registry() (*providers.Registry, error) {
	var overrides []providers.Config
	for _, def := range providers.Defaults() {
		overrides = append(overrides, c.section(def.ID).apply(def))
	}
	return providers.NewRegistry(overrides...)
}

func (c Config) section(id providers.ID) ProviderConfig {
	if id == providers.OpenAI {
		return c.OpenAI
	}
	return c.Gemini
}

func (p ProviderConfig) apply(cfg providers.Config) providers.Config {
	if p.Model != "" {
		cfg.Model = p.Model
	}
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	if p.CooldownSeconds > 0 {
		cfg.Cooldown = time.Duration(p.CooldownSeconds) * time.Second
	}
	if p.MaxPromptChars > 0 {
		cfg.MaxPromptChars = p.MaxPromptChars
	}
	if p.MaxTokens > 0 {
		cfg.MaxTokens = p.MaxTokens
	}
	return cfg
}

// APIKey returns the configured key for provider, or "".
func (c Config) APIKey(provider string) string {
	id, err := (Config{Provider: provider}).provider()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.section(id).APIKey)
}

// APIKeys returns every configured key by provider.
func (c Config) APIKeys() map[providers.ID]string {
	return map[providers.ID]string{
		providers.OpenAI: strings.TrimSpace(c.OpenAI.APIKey),
		providers.Gemini: strings.TrimSpace(c.Gemini.APIKey),
	}
}

// StoreOptions maps the storage section onto store.Options.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  c.Storage.Backend,
		Dir:      c.Storage.Dir,
		RedisURL: c.Storage.RedisURL,
	}
}

// Masked returns a copy safe to print: API keys keep only their last four
// characters.
func (c Config) Masked() Config {
	c.OpenAI.APIKey = MaskKey(c.OpenAI.APIKey)
	c.Gemini.APIKey = MaskKey(c.Gemini.APIKey)
	if c.Storage.RedisURL != "" {
		c.Storage.RedisURL = maskURL(c.Storage.RedisURL)
	}
	return c
}

// MaskKey hides all but the last four characters of key.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}

func maskURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	return raw[:scheme+3] + "****" + raw[at:]
}

// keyKind describes how SetField parses a value.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindList
)

var settable = map[string]keyKind{
	"provider":                kindString,
	"format":                  kindString,
	"rules_file":              kindString,
	"rules":                   kindList,
	"storage.backend":         kindString,
	"storage.dir":             kindString,
	"storage.redis_url":       kindString,
	"log.level":               kindString,
	"log.format":              kindString,
	"log.output":              kindString,
	"privacy.redact_secrets":  kindBool,
	"privacy.skip_paths":      kindList,
	"openai.api_key":          kindString,
	"openai.model":            kindString,
	"openai.base_url":         kindString,
	"openai.cooldown_seconds": kindInt,
	"openai.max_prompt_chars": kindInt,
	"openai.max_tokens":       kindInt,
	"gemini.api_key":          kindString,
	"gemini.model":            kindString,
	"gemini.base_url":         kindString,
	"gemini.cooldown_seconds": kindInt,
	"gemini.max_prompt_chars": kindInt,
	"gemini.max_tokens":       kindInt,
}

// Keys lists every key accepted by SetField, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseValue converts value according to the key's kind.
func parseValue(key, value string) (any, error) {
	kind, ok := settable[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("%s must not be negative", key)
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false: %w", key, err)
		}
		return b, nil
	case kindList:
		var items []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}

// Init writes a config file holding the defaults. It refuses to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	v := viper.New()
	defaults(v)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// SetField sets one key in the config file at path, creating the file if
// needed. Environment variables are not consulted, so they never leak into
// the file.
func SetField(path, key, value string) error {
	parsed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file: %w", err)
	}
	v.Set(key, parsed)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	// Key material should not be world readable.
	return os.Chmod(path, 0o600)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
