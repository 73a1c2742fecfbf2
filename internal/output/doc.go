// Package output formats review reports for display or machine consumption.
//
// Four formats are supported:
//   - text    : colored terminal output (default)
//   - json    : full structured JSON report
//   - markdown: PR-comment-friendly markdown
//   - pretty  : the markdown report rendered for the terminal
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*Report]. The Write* helpers
// render history, diagnostic logs and connection results.
package output
