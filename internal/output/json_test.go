package output

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if parsed.Tool != "codelens" {
		t.Errorf("Tool = %q, want %q", parsed.Tool, "codelens")
	}
	if parsed.Review.OverallScore != 64 {
		t.Errorf("OverallScore = %d, want 64", parsed.Review.OverallScore)
	}
	if len(parsed.Review.Issues) != 2 {
		t.Errorf("Issues count = %d, want 2", len(parsed.Review.Issues))
	}
	if parsed.Counts.Errors != 1 || parsed.Counts.Suggestions != 1 {
		t.Errorf("Counts = %+v", parsed.Counts)
	}
	if !parsed.Timestamp.Equal(testTime) {
		t.Errorf("Timestamp = %v", parsed.Timestamp)
	}

	// The review keeps its wire field names.
	var raw map[string]map[string]any
	json.Unmarshal(buf.Bytes(), &raw)
	if _, ok := raw["review"]["overall_score"]; !ok {
		t.Error("review.overall_score missing from JSON")
	}
}
