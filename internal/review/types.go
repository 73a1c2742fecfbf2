package review

import (
	"sort"
	"strings"
	"time"
)

// IssueType is how serious an issue is.
type IssueType string

const (
	TypeError      IssueType = "error"
	TypeWarning    IssueType = "warning"
	TypeSuggestion IssueType = "suggestion"
)

// TypeRank returns a numeric rank for sorting (higher = more severe).
func TypeRank(t IssueType) int {
	switch t {
	case TypeError:
		return 3
	case TypeWarning:
		return 2
	case TypeSuggestion:
		return 1
	default:
		return 0
	}
}

// Category is the area an issue belongs to.
type Category string

const (
	CategoryPerformance   Category = "performance"
	CategorySecurity      Category = "security"
	CategoryStyle         Category = "style"
	CategoryBugs          Category = "bugs"
	CategoryComplexity    Category = "complexity"
	CategoryDocumentation Category = "documentation"
	CategoryParsing       Category = "parsing"
)

// Issue is a single finding in a Review.
type Issue struct {
	Type        IssueType `json:"type"`
	Category    Category  `json:"category"`
	Line        int       `json:"line,omitempty"`
	Message     string    `json:"message"`
	Suggestion  string    `json:"suggestion,omitempty"`
	CodeExample string    `json:"code_example,omitempty"`
}

// Review is the validated result of one code review.
type Review struct {
	OverallScore    int      `json:"overall_score"`
	Summary         string   `json:"summary"`
	Issues          []Issue  `json:"issues"`
	Strengths       []string `json:"strengths"`
	Recommendations []string `json:"recommendations"`
}

// TypeCounts holds issue counts by type.
type TypeCounts struct {
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
	Suggestions int `json:"suggestions"`
}

// Counts tallies r's issues by type.
func (r Review) Counts() TypeCounts {
	var c TypeCounts
	for _, is := range r.Issues {
		switch is.Type {
		case TypeError:
			c.Errors++
		case TypeWarning:
			c.Warnings++
		default:
			c.Suggestions++
		}
	}
	return c
}

// SortedIssues returns the issues ordered by type rank, then line.
func (r Review) SortedIssues() []Issue {
	out := make([]Issue, len(r.Issues))
	copy(out, r.Issues)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := TypeRank(out[i].Type), TypeRank(out[j].Type)
		if ri != rj {
			return ri > rj
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// RuleSet enables or disables review focus areas by rule name.
type RuleSet map[string]bool

// RuleNames are the known rule identifiers.
var RuleNames = []string{
	"checkBugs",
	"checkCodeStyle",
	"checkComplexity",
	"checkDocumentation",
	"checkPerformance",
	"checkSecurity",
}

// DefaultRules enables every known rule.
func DefaultRules() RuleSet {
	rs := make(RuleSet, len(RuleNames))
	for _, name := range RuleNames {
		rs[name] = true
	}
	return rs
}

// FocusAreas returns the enabled rule names with the "check" prefix removed,
// lower-cased and sorted.
func (rs RuleSet) FocusAreas() []string {
	var areas []string
	for name, enabled := range rs {
		if !enabled {
			continue
		}
		areas = append(areas, strings.ToLower(strings.TrimPrefix(name, "check")))
	}
	sort.Strings(areas)
	return areas
}

// Request is the input to Client.ReviewCode.
type Request struct {
	Code     string
	FileName string
	Provider string
	APIKey   string
	Rules    RuleSet
	// Policy adds required checks and type overrides from a rules file.
	Policy *Policy
}

// HistoryEntry is a past review kept for the history command.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	FileName  string    `json:"fileName"`
	Provider  string    `json:"provider"`
	Review    Review    `json:"review"`
}
