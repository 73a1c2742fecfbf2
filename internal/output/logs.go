package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dshills/codelens/internal/diag"
	"github.com/dshills/codelens/internal/review"
)

// The helpers below render diagnostics for the CLI. Any format other than
// json falls back to text.

const timeLayout = "2006-01-02 15:04:05"

// WriteHistory lists past reviews, newest first.
func WriteHistory(w io.Writer, entries []review.HistoryEntry, format string) error {
	if format == "json" {
		return WriteJSON(w, entries)
	}
	ew := &errWriter{w: w}
	if len(entries) == 0 {
		ew.println("No reviews yet.")
		return ew.err
	}
	for _, e := range entries {
		c := e.Review.Counts()
		ew.colorf(dimColor, "%s  ", e.Timestamp.Local().Format(timeLayout))
		ew.colorf(scoreColor(e.Review.OverallScore), "%3d", e.Review.OverallScore)
		ew.printf("  %-8s %s", e.Provider, e.FileName)
		ew.colorf(dimColor, "  (%d errors, %d warnings, %d suggestions)\n", c.Errors, c.Warnings, c.Suggestions)
	}
	return ew.err
}

// WriteErrorLog prints the diagnostic error log.
func WriteErrorLog(w io.Writer, entries []diag.ErrorEntry, format string) error {
	if format == "json" {
		return WriteJSON(w, entries)
	}
	ew := &errWriter{w: w}
	if len(entries) == 0 {
		ew.colorf(successColor, "No errors recorded.\n")
		return ew.err
	}
	for i, e := range entries {
		if i > 0 {
			ew.colorf(dimColor, "%s\n", strings.Repeat("─", 40))
		}
		ew.colorf(dimColor, "%s  ", e.Timestamp.Local().Format(timeLayout))
		ew.colorf(errorColor, "%s", e.Provider)
		if e.Kind != "" {
			ew.printf(" [%s]", e.Kind)
		}
		if e.Status != 0 {
			ew.printf(" %d %s", e.Status, e.StatusText)
		}
		ew.println("")
		for _, line := range wrapText(e.Message, 70) {
			ew.printf("    %s\n", line)
		}
		if e.Request != nil {
			ew.colorf(dimColor, "    %s %s\n", e.Request.Method, e.Request.URL)
		}
		if len(e.Data) > 0 {
			ew.colorf(dimColor, "    data: %s\n", preview(string(e.Data), 200))
		}
	}
	return ew.err
}

// WriteSuccessLog prints previews of recent successful responses.
func WriteSuccessLog(w io.Writer, entries []diag.SuccessEntry, format string) error {
	if format == "json" {
		return WriteJSON(w, entries)
	}
	ew := &errWriter{w: w}
	if len(entries) == 0 {
		ew.println("No successful responses recorded.")
		return ew.err
	}
	for _, e := range entries {
		ew.colorf(dimColor, "%s  ", e.Timestamp.Local().Format(timeLayout))
		ew.printf("%s  %d chars\n", e.Type, e.ContentLength)
		ew.printf("    %s\n", preview(e.ContentPreview, 200))
	}
	return ew.err
}

// WriteConnections prints connection test results.
func WriteConnections(w io.Writer, results []review.ConnectionResult, format string) error {
	if format == "json" {
		return WriteJSON(w, results)
	}
	ew := &errWriter{w: w}
	for _, r := range results {
		if r.Success {
			ew.colorf(successColor, "✓ %-8s", r.Provider)
		} else {
			ew.colorf(errorColor, "✗ %-8s", r.Provider)
		}
		ew.printf(" %s\n", r.Message)
	}
	return ew.err
}

// ProviderStatus is one row of the status command.
type ProviderStatus struct {
	Provider      string        `json:"provider"`
	Model         string        `json:"model"`
	KeyConfigured bool          `json:"keyConfigured"`
	Cooldown      time.Duration `json:"cooldown"`
	Remaining     time.Duration `json:"remaining"`
}

// WriteStatus prints key and cooldown state per provider.
func WriteStatus(w io.Writer, rows []ProviderStatus, format string) error {
	if format == "json" {
		return WriteJSON(w, rows)
	}
	ew := &errWriter{w: w}
	for _, s := range rows {
		ew.colorf(boldColor, "%-8s", s.Provider)
		ew.colorf(dimColor, " %-20s", s.Model)
		switch {
		case !s.KeyConfigured:
			ew.colorf(warnColor, " no API key\n")
		case s.Remaining > 0:
			ew.colorf(warnColor, " cooling down, %s left (of %s)\n", ceilSeconds(s.Remaining), s.Cooldown)
		default:
			ew.colorf(successColor, " ready")
			ew.colorf(dimColor, " (cooldown %s)\n", s.Cooldown)
		}
	}
	return ew.err
}

func ceilSeconds(d time.Duration) string {
	return fmt.Sprintf("%ds", int((d+time.Second-1)/time.Second))
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
