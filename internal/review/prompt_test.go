package review

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	code := "func main() {}\n"
	prompt := BuildPrompt(code, "main.go", DefaultRules())

	if !strings.Contains(prompt, "analyze the following go code") {
		t.Error("Prompt should name the language")
	}
	if !strings.Contains(prompt, "File: main.go") {
		t.Error("Prompt should contain the file name")
	}
	if !strings.Contains(prompt, "```go\n"+code+"\n```") {
		t.Error("Prompt should fence the code with the language tag")
	}
	if !strings.Contains(prompt, `"overall_score": 85`) {
		t.Error("Prompt should include the example JSON shape")
	}
	want := "Focus areas: bugs, codestyle, complexity, documentation, performance, security\n"
	if !strings.Contains(prompt, want) {
		t.Errorf("Prompt focus line missing; want %q in:\n%s", want, prompt)
	}
}

func TestBuildPrompt_OnlyEnabledRules(t *testing.T) {
	rules := RuleSet{
		"checkSecurity":      true,
		"checkPerformance":   false,
		"checkDocumentation": true,
		"checkCodeStyle":     false,
	}
	prompt := BuildPrompt("x", "a.py", rules)

	line := focusLine(t, prompt)
	if line != "Focus areas: documentation, security" {
		t.Errorf("focus line = %q", line)
	}
	for _, disabled := range []string{"performance", "codestyle"} {
		if strings.Contains(line, disabled) {
			t.Errorf("disabled rule %q should be omitted", disabled)
		}
	}
}

func TestBuildPrompt_NoRules(t *testing.T) {
	prompt := BuildPrompt("x", "a.py", RuleSet{})
	if line := focusLine(t, prompt); line != "Focus areas: " {
		t.Errorf("focus line = %q, want empty list", line)
	}
}

func TestBuildPromptWithPolicy(t *testing.T) {
	policy := &Policy{Required: []RequiredCheck{{ID: "go-errors", Text: "Ensure errors are wrapped with context"}}}
	prompt := BuildPromptWithPolicy("x", "a.go", DefaultRules(), policy)
	if !strings.Contains(prompt, "- [go-errors] Ensure errors are wrapped with context") {
		t.Error("Prompt should list required checks")
	}
	if strings.Index(prompt, "Required checks") > strings.Index(prompt, "Code to review") {
		t.Error("Required checks should come before the code")
	}
}

func focusLine(t *testing.T, prompt string) string {
	t.Helper()
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Focus areas:") {
			return line
		}
	}
	t.Fatal("no focus line in prompt")
	return ""
}

func TestFileLanguage(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"app.js", "javascript"},
		{"App.jsx", "javascript"},
		{"index.ts", "typescript"},
		{"view.tsx", "typescript"},
		{"main.py", "python"},
		{"Main.java", "java"},
		{"vec.cpp", "cpp"},
		{"lib.c", "c"},
		{"Program.cs", "csharp"},
		{"index.php", "php"},
		{"app.rb", "ruby"},
		{"main.go", "go"},
		{"lib.rs", "rust"},
		{"View.swift", "swift"},
		{"Main.kt", "kotlin"},
		{"App.scala", "scala"},
		{"index.html", "html"},
		{"site.css", "css"},
		{"theme.scss", "scss"},
		{"schema.sql", "sql"},
		{"build.sh", "bash"},
		{"ci.yml", "yaml"},
		{"ci.yaml", "yaml"},
		{"package.json", "json"},
		{"pom.xml", "xml"},
		{"MAIN.GO", "go"},
		{"README", "text"},
		{"notes.txt", "text"},
		{"header.h", "text"},
		{"", "text"},
	}
	for _, tt := range tests {
		if got := FileLanguage(tt.file); got != tt.want {
			t.Errorf("FileLanguage(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Errorf("Truncate with no limit = %q", got)
	}

	got := Truncate(strings.Repeat("a", 50), 10)
	if got != strings.Repeat("a", 10)+TruncationMarker {
		t.Errorf("Truncate = %q", got)
	}

	// "é" is two bytes; cutting between them must back off.
	got = Truncate("aé"+strings.Repeat("b", 10), 2)
	if got != "a"+TruncationMarker {
		t.Errorf("Truncate on rune boundary = %q", got)
	}
}
