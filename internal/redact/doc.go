// Package redact scrubs credentials from anything codelens writes down or
// sends away.
//
// Diagnostic log entries pass through APIKey, URL and Headers so the raw key
// never reaches storage. When privacy.redact_secrets is on, Secrets also runs
// over source code before it is put into a prompt. ShouldRedactPath backs the
// privacy.skip_paths policy that refuses to upload matching files at all.
package redact
