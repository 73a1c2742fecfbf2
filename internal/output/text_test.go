package output

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/dshills/codelens/internal/review"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleReport() *Report {
	return NewReport("1.0", "main.go", "gemini", review.Review{
		OverallScore: 64,
		Summary:      "Mostly fine, one risky nil dereference.",
		Issues: []review.Issue{
			{
				Type:       review.TypeSuggestion,
				Category:   review.CategoryStyle,
				Line:       5,
				Message:    "Line exceeds 120 characters",
				Suggestion: "Break it up",
			},
			{
				Type:        review.TypeError,
				Category:    review.CategoryBugs,
				Line:        10,
				Message:     "x could be nil here",
				Suggestion:  "Add a nil check",
				CodeExample: "if x == nil {\n\treturn errNil\n}",
			},
		},
		Strengths:       []string{"Clear naming"},
		Recommendations: []string{"Add tests for the nil path"},
	}, testTime)
}

func TestTextWriter_NoIssues(t *testing.T) {
	report := NewReport("1.0", "ok.py", "openai", review.Review{
		OverallScore: 95,
		Summary:      "Clean.",
		Issues:       []review.Issue{},
	}, testTime)

	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ok.py") {
		t.Error("Output should mention the file")
	}
	if !strings.Contains(out, "Issues: 0 total") {
		t.Error("Output should show zero issues")
	}
	if !strings.Contains(out, "No issues found") {
		t.Error("Output should say no issues found")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Output should not contain escape codes when color is disabled")
	}
}

func TestTextWriter_WithIssues(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Score: 64/100") {
		t.Error("Output should show the score")
	}
	if !strings.Contains(out, "1 errors, 0 warnings, 1 suggestions") {
		t.Error("Output should show counts by type")
	}
	if !strings.Contains(out, "line 10") {
		t.Error("Output should show the line")
	}
	if !strings.Contains(out, "Suggestion:") || !strings.Contains(out, "return errNil") {
		t.Error("Output should show suggestion and example")
	}
	if strings.Index(out, "ERROR") > strings.Index(out, "SUGGESTION") {
		t.Error("Errors should be listed before suggestions")
	}
	if !strings.Contains(out, "Strengths") || !strings.Contains(out, "Clear naming") {
		t.Error("Output should list strengths")
	}
	if !strings.Contains(out, "Recommendations") {
		t.Error("Output should list recommendations")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if got := wrapText("", 20); len(got) != 1 {
		t.Errorf("wrapText(empty) = %v", got)
	}
}

func TestGetWriter(t *testing.T) {
	for _, f := range Formats {
		if _, err := GetWriter(f); err != nil {
			t.Errorf("GetWriter(%q) error: %v", f, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
