package review

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SystemInstruction is sent as the system message to providers that accept
// one.
const SystemInstruction = "You are an expert code reviewer. Always respond with valid JSON only. Keep responses concise."

// TruncationMarker is appended to a prompt that was cut to fit a provider.
const TruncationMarker = "\n\n[content truncated]"

const responseFormat = `Please provide your review in the following JSON format:
{
  "overall_score": 85,
  "summary": "Brief summary of code quality",
  "issues": [
    {
      "type": "error|warning|suggestion",
      "category": "performance|security|style|bugs|complexity|documentation",
      "line": 5,
      "message": "Description of the issue",
      "suggestion": "How to fix it",
      "code_example": "Example of improved code"
    }
  ],
  "strengths": ["List of good practices found"],
  "recommendations": ["General recommendations for improvement"]
}

Focus on practical, actionable feedback. Be specific about line numbers when possible.`

// BuildPrompt constructs the single instruction string sent to a provider.
func BuildPrompt(code, fileName string, rules RuleSet) string {
	return BuildPromptWithPolicy(code, fileName, rules, nil)
}

// BuildPromptWithPolicy is BuildPrompt plus the required checks of policy.
func BuildPromptWithPolicy(code, fileName string, rules RuleSet, policy *Policy) string {
	lang := FileLanguage(fileName)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert code reviewer. Please analyze the following %s code and provide a comprehensive review.\n\n", lang)
	fmt.Fprintf(&b, "File: %s\n", fileName)
	fmt.Fprintf(&b, "Focus areas: %s\n", strings.Join(rules.FocusAreas(), ", "))

	if section := policy.PromptSection(); section != "" {
		b.WriteString(section)
	}

	fmt.Fprintf(&b, "\nCode to review:\n```%s\n%s\n```\n\n", lang, code)
	b.WriteString(responseFormat)
	return b.String()
}

var languageMap = map[string]string{
	"js":    "javascript",
	"jsx":   "javascript",
	"ts":    "typescript",
	"tsx":   "typescript",
	"py":    "python",
	"java":  "java",
	"cpp":   "cpp",
	"c":     "c",
	"cs":    "csharp",
	"php":   "php",
	"rb":    "ruby",
	"go":    "go",
	"rs":    "rust",
	"swift": "swift",
	"kt":    "kotlin",
	"scala": "scala",
	"html":  "html",
	"css":   "css",
	"scss":  "scss",
	"sql":   "sql",
	"sh":    "bash",
	"yml":   "yaml",
	"yaml":  "yaml",
	"json":  "json",
	"xml":   "xml",
}

// FileLanguage maps a file name's extension to a language tag. Unknown
// extensions are "text".
func FileLanguage(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if lang, ok := languageMap[ext]; ok {
		return lang
	}
	return "text"
}

// Truncate cuts prompt to max bytes and appends TruncationMarker. A prompt
// that fits, or a non-positive max, is returned unchanged.
func Truncate(prompt string, max int) string {
	if max <= 0 || len(prompt) <= max {
		return prompt
	}
	return cutRunes(prompt, max) + TruncationMarker
}

// cutRunes returns at most n bytes of s, backing off to a rune boundary.
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
