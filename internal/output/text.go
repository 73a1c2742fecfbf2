package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/codelens/internal/review"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

// TextWriter outputs a human-readable text report. Colors follow
// color.NoColor, which is set automatically when stdout is not a terminal.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	r := report.Review
	c := report.Counts

	ew.colorf(titleColor, "CodeLens Review: %s\n", report.File)
	ew.colorf(dimColor, "Provider: %s\n", report.Provider)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Score: ")
	ew.colorf(scoreColor(r.OverallScore), "%d/100\n", r.OverallScore)
	ew.printf("Issues: %d total", len(r.Issues))
	if len(r.Issues) > 0 {
		ew.printf(" (%d errors, %d warnings, %d suggestions)", c.Errors, c.Warnings, c.Suggestions)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	ew.println("")
	for _, line := range wrapText(r.Summary, 70) {
		ew.println(line)
	}

	if len(r.Issues) == 0 {
		ew.println("")
		ew.colorf(successColor, "No issues found. Looks good!\n")
	}

	for _, is := range r.SortedIssues() {
		ew.printf("\n")
		ew.colorf(typeColor(is.Type), "%s %s", typeIcon(is.Type), strings.ToUpper(string(is.Type)))
		ew.colorf(dimColor, "  %s", is.Category)
		if is.Line > 0 {
			ew.colorf(dimColor, "  line %d", is.Line)
		}
		ew.println("")

		for _, line := range wrapText(is.Message, 70) {
			ew.printf("    %s\n", line)
		}
		if is.Suggestion != "" {
			ew.colorf(boldColor, "  Suggestion:\n")
			for _, line := range wrapText(is.Suggestion, 70) {
				ew.printf("    %s\n", line)
			}
		}
		if is.CodeExample != "" {
			ew.colorf(boldColor, "  Example:\n")
			for _, line := range strings.Split(strings.TrimRight(is.CodeExample, "\n"), "\n") {
				ew.colorf(dimColor, "    %s\n", line)
			}
		}
	}

	writeList(ew, "Strengths", r.Strengths)
	writeList(ew, "Recommendations", r.Recommendations)

	return ew.err
}

func writeList(ew *errWriter, title string, items []string) {
	if len(items) == 0 {
		return
	}
	ew.printf("\n")
	ew.colorf(boldColor, "%s\n", title)
	for _, item := range items {
		lines := wrapText(item, 68)
		ew.printf("  • %s\n", lines[0])
		for _, line := range lines[1:] {
			ew.printf("    %s\n", line)
		}
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func (ew *errWriter) colorf(c *color.Color, format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = c.Fprintf(ew.w, format, args...)
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 80:
		return successColor
	case score >= 60:
		return warnColor
	default:
		return errorColor
	}
}

func typeColor(t review.IssueType) *color.Color {
	switch t {
	case review.TypeError:
		return errorColor
	case review.TypeWarning:
		return warnColor
	default:
		return titleColor
	}
}

func typeIcon(t review.IssueType) string {
	switch t {
	case review.TypeError:
		return "[!!]"
	case review.TypeWarning:
		return "[!]"
	case review.TypeSuggestion:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
