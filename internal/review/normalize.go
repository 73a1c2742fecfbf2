package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/codelens/internal/diag"
)

// FallbackScore is the overall_score of the review returned when the model
// output cannot be parsed.
const FallbackScore = 50

const noSummary = "No summary provided."

var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

var knownTypes = map[IssueType]bool{
	TypeError:      true,
	TypeWarning:    true,
	TypeSuggestion: true,
}

var knownCategories = map[Category]bool{
	CategoryPerformance:   true,
	CategorySecurity:      true,
	CategoryStyle:         true,
	CategoryBugs:          true,
	CategoryComplexity:    true,
	CategoryDocumentation: true,
	CategoryParsing:       true,
}

var categoryAliases = map[string]Category{
	"bug":             CategoryBugs,
	"correctness":     CategoryBugs,
	"error":           CategoryBugs,
	"docs":            CategoryDocumentation,
	"doc":             CategoryDocumentation,
	"comments":        CategoryDocumentation,
	"perf":            CategoryPerformance,
	"efficiency":      CategoryPerformance,
	"maintainability": CategoryComplexity,
	"design":          CategoryComplexity,
	"readability":     CategoryStyle,
	"formatting":      CategoryStyle,
	"naming":          CategoryStyle,
	"vulnerability":   CategorySecurity,
	"safety":          CategorySecurity,
}

// ParseError explains why model output is not a review.
type ParseError struct {
	Message string
	// Position is the byte offset of a JSON syntax error, or -1.
	Position int
}

func (e *ParseError) Error() string { return e.Message }

// ExtractJSON returns the candidate JSON text inside raw: the body of the
// first ```json fence, else the span from the first '{' to the last '}',
// else raw itself, trimmed.
func ExtractJSON(raw string) string {
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		return strings.TrimSpace(raw[start : end+1])
	}
	return strings.TrimSpace(raw)
}

// Parse extracts and validates a review from raw model output. The error is
// always a *ParseError.
func Parse(raw string) (Review, error) {
	candidate := ExtractJSON(raw)

	if !gjson.Valid(candidate) {
		return Review{}, syntaxError(candidate)
	}
	doc := gjson.Parse(candidate)
	score := doc.Get("overall_score")
	issues := doc.Get("issues")
	if !doc.IsObject() || score.Type != gjson.Number || !issues.IsArray() {
		return Review{}, &ParseError{
			Message:  "Invalid response format - missing required fields",
			Position: -1,
		}
	}

	r := Review{
		OverallScore:    clampScore(score.Float()),
		Summary:         strings.TrimSpace(doc.Get("summary").String()),
		Issues:          []Issue{},
		Strengths:       stringList(doc.Get("strengths")),
		Recommendations: stringList(doc.Get("recommendations")),
	}
	if r.Summary == "" {
		r.Summary = noSummary
	}
	for _, item := range issues.Array() {
		if is, ok := coerceIssue(item); ok {
			r.Issues = append(r.Issues, is)
		}
	}
	return r, nil
}

func syntaxError(candidate string) *ParseError {
	var v any
	err := json.Unmarshal([]byte(candidate), &v)
	if err == nil {
		// gjson and encoding/json disagree; report without a position.
		return &ParseError{Message: "invalid JSON", Position: -1}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &ParseError{
			Message:  fmt.Sprintf("%s at position %d", se.Error(), se.Offset),
			Position: int(se.Offset),
		}
	}
	return &ParseError{Message: err.Error(), Position: -1}
}

func clampScore(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(f))))
}

func coerceIssue(v gjson.Result) (Issue, bool) {
	if !v.IsObject() {
		return Issue{}, false
	}
	is := Issue{
		Type:        coerceType(v.Get("type").String()),
		Category:    coerceCategory(v.Get("category").String()),
		Message:     strings.TrimSpace(v.Get("message").String()),
		Suggestion:  strings.TrimSpace(v.Get("suggestion").String()),
		CodeExample: v.Get("code_example").String(),
	}
	if is.Message == "" && is.Suggestion == "" && is.CodeExample == "" {
		return Issue{}, false
	}
	if line := v.Get("line"); line.Exists() {
		if n := line.Int(); n > 0 {
			is.Line = int(n)
		}
	}
	return is, true
}

func coerceType(s string) IssueType {
	t := IssueType(strings.ToLower(strings.TrimSpace(s)))
	if knownTypes[t] {
		return t
	}
	return TypeSuggestion
}

func coerceCategory(s string) Category {
	c := strings.ToLower(strings.TrimSpace(s))
	if knownCategories[Category(c)] {
		return Category(c)
	}
	if alias, ok := categoryAliases[c]; ok {
		return alias
	}
	return CategoryStyle
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.IsObject() || item.IsArray() {
			continue
		}
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FallbackReview is returned in place of model output that failed to parse.
func FallbackReview(reason string) Review {
	return Review{
		OverallScore: FallbackScore,
		Summary:      fmt.Sprintf("Failed to parse AI response: %s. Raw response stored in the error log (codelens logs errors).", reason),
		Issues: []Issue{{
			Type:       TypeError,
			Category:   CategoryParsing,
			Line:       1,
			Message:    "Could not parse AI response: " + reason,
			Suggestion: "Run `codelens logs errors` to inspect the full response content",
		}},
		Strengths: []string{},
		Recommendations: []string{
			"Check the error log (codelens logs errors) for raw response details",
			"The AI response may contain malformed JSON - this is logged for debugging",
		},
	}
}

// Normalizer turns raw model text into a Review and records the outcome in
// the diagnostic logs.
type Normalizer struct {
	log    *diag.Log
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. log may be nil.
func NewNormalizer(log *diag.Log, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{log: log, logger: logger}
}

// Normalize never fails: unparseable output becomes FallbackReview. Success
// is appended to the success log; failure to the error log under provider
// "parsing".
func (n *Normalizer) Normalize(ctx context.Context, raw string) Review {
	r, err := Parse(raw)
	if err == nil {
		if n.log != nil {
			if lerr := n.log.RecordSuccess(ctx, raw); lerr != nil {
				n.logger.Warn("recording successful response", "error", lerr)
			}
		}
		return r
	}

	pe := err.(*ParseError)
	n.logger.Warn("model response did not parse", "error", pe.Message, "length", len(raw))
	if n.log != nil {
		if lerr := n.log.RecordParseFailure(ctx, raw, pe.Message, pe.Position); lerr != nil {
			n.logger.Warn("recording parse failure", "error", lerr)
		}
	}
	return FallbackReview(pe.Message)
}
