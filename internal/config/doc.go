// Package config loads and merges codelens configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CODELENS_PROVIDER, CODELENS_GEMINI_MODEL, etc.,
//     plus OPENAI_API_KEY, GEMINI_API_KEY and GOOGLE_API_KEY)
//  3. Config file ($XDG_CONFIG_HOME/codelens/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Init] to write a default config
// file, and [SetField] to update a single key in the config file.
package config
