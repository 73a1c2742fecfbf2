// CodeLens is a command-line client for AI code review with OpenAI and
// Google Gemini.
//
// It sends a single source file to the configured provider, normalizes the
// model's JSON answer into a scored review, and exits with deterministic
// codes suitable for scripts: 0 ok, 1 issues at or above --fail-on,
// 2 usage, 3 credentials, 4 runtime, 5 rate limited.
//
// Usage:
//
//	codelens review main.go            # review a file
//	cat app.js | codelens review - --name app.js
//	codelens demo                      # sample review, no API key needed
//	codelens test                      # check every configured API key
//	codelens doctor                    # config, storage and key checks
//	codelens status                    # cooldown per provider
//	codelens logs errors               # last failed provider calls
//	codelens history                   # recent reviews
package main
