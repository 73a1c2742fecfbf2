package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/codelens/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	var b strings.Builder
	renderMarkdown(&b, report)
	_, err := io.WriteString(w, b.String())
	return err
}

func renderMarkdown(b *strings.Builder, report *Report) {
	r := report.Review
	c := report.Counts

	fmt.Fprintf(b, "## CodeLens Review: `%s`\n\n", report.File)
	fmt.Fprintf(b, "**Score:** %d/100 · **Provider:** %s\n\n", r.OverallScore, report.Provider)
	fmt.Fprintf(b, "%s\n\n", r.Summary)

	fmt.Fprintf(b, "| Type | Count |\n")
	fmt.Fprintf(b, "|------|-------|\n")
	fmt.Fprintf(b, "| Error | %d |\n", c.Errors)
	fmt.Fprintf(b, "| Warning | %d |\n", c.Warnings)
	fmt.Fprintf(b, "| Suggestion | %d |\n", c.Suggestions)
	fmt.Fprintf(b, "| **Total** | **%d** |\n\n", len(r.Issues))

	if len(r.Issues) == 0 {
		fmt.Fprintln(b, "No issues found. :white_check_mark:")
		b.WriteString("\n")
	} else {
		fmt.Fprintf(b, "### Issues\n\n")
		lang := review.FileLanguage(report.File)
		for _, is := range r.SortedIssues() {
			loc := ""
			if is.Line > 0 {
				loc = fmt.Sprintf(" (line %d)", is.Line)
			}
			fmt.Fprintf(b, "#### %s %s: %s%s\n\n", mdTypeIcon(is.Type), strings.ToUpper(string(is.Type)), is.Category, loc)
			fmt.Fprintf(b, "%s\n\n", is.Message)
			if is.Suggestion != "" {
				fmt.Fprintf(b, "> **Suggestion:** %s\n\n", strings.ReplaceAll(is.Suggestion, "\n", "\n> "))
			}
			if is.CodeExample != "" {
				fmt.Fprintf(b, "```%s\n%s\n```\n\n", lang, strings.TrimRight(is.CodeExample, "\n"))
			}
		}
	}

	mdList(b, "Strengths", r.Strengths)
	mdList(b, "Recommendations", r.Recommendations)
}

func mdList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func mdTypeIcon(t review.IssueType) string {
	switch t {
	case review.TypeError:
		return ":red_circle:"
	case review.TypeWarning:
		return ":orange_circle:"
	case review.TypeSuggestion:
		return ":large_blue_circle:"
	default:
		return ":white_circle:"
	}
}
