package review

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules_Empty(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != nil {
		t.Error("expected nil rules for empty path")
	}
}

func TestLoadRules_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  checkCodeStyle: false
  documentation: false
required:
  - id: go-errors
    text: Ensure errors are wrapped with context
typeOverrides:
  security: error
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rf, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rf.Rules["checkCodeStyle"] {
		t.Error("checkCodeStyle should be disabled")
	}
	if rf.Rules["checkDocumentation"] {
		t.Error("bare name documentation should disable checkDocumentation")
	}
	if !rf.Rules["checkSecurity"] {
		t.Error("unmentioned rules keep their default")
	}
	if len(rf.Required) != 1 || rf.Required[0].ID != "go-errors" {
		t.Errorf("Required = %+v", rf.Required)
	}
	if rf.TypeOverrides["security"] != "error" {
		t.Errorf("TypeOverrides = %v", rf.TypeOverrides)
	}
}

func TestLoadRules_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{"rules": {"checkPerformance": false}, "required": [{"id": "r1", "text": "t"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rf, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rf.Rules["checkPerformance"] {
		t.Error("checkPerformance should be disabled")
	}
	if len(rf.Required) != 1 {
		t.Errorf("Required = %d, want 1", len(rf.Required))
	}
}

func TestLoadRules_BadTypeOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	os.WriteFile(path, []byte("typeOverrides:\n  style: critical\n"), 0o644)
	if _, err := LoadRules(path); err == nil {
		t.Error("expected error for unknown issue type")
	}
}

func TestLoadRules_Missing(t *testing.T) {
	if _, err := LoadRules("/nonexistent/rules.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	os.WriteFile(path, []byte("rules: [unclosed"), 0o644)
	if _, err := LoadRules(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestRulesFromList(t *testing.T) {
	rs, err := RulesFromList([]string{"security", "checkBugs", "Style"})
	if err != nil {
		t.Fatalf("RulesFromList error: %v", err)
	}
	got := rs.FocusAreas()
	want := []string{"bugs", "codestyle", "security"}
	if len(got) != len(want) {
		t.Fatalf("FocusAreas = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FocusAreas[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := RulesFromList([]string{"typos"}); err == nil {
		t.Error("expected error for unknown rule")
	}
}

func TestApplyTypeOverrides(t *testing.T) {
	issues := []Issue{
		{Type: TypeSuggestion, Category: CategorySecurity, Message: "a"},
		{Type: TypeWarning, Category: CategoryStyle, Message: "b"},
		{Type: TypeError, Category: CategoryParsing, Message: "c"},
	}
	p := &Policy{TypeOverrides: map[string]string{"security": "error", "parsing": "suggestion"}}

	got := ApplyTypeOverrides(issues, p)
	if got[0].Type != TypeError {
		t.Errorf("security issue type = %q, want error", got[0].Type)
	}
	if got[1].Type != TypeWarning {
		t.Errorf("style issue type = %q, want unchanged", got[1].Type)
	}
	if got[2].Type != TypeError {
		t.Error("parsing issues must not be overridden")
	}

	if out := ApplyTypeOverrides(issues, nil); len(out) != 3 {
		t.Error("nil policy should be a no-op")
	}
}
