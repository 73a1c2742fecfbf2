package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrettyWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &PrettyWriter{Style: "notty", Width: 100}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"CodeLens Review", "64/100", "could be nil", "Clear naming"} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty output missing %q:\n%s", want, out)
		}
	}
}

func TestPrettyWriter_UnknownStyle(t *testing.T) {
	var buf bytes.Buffer
	w := &PrettyWriter{Style: "no-such-style"}
	if err := w.Write(&buf, sampleReport()); err == nil {
		t.Error("expected error for unknown glamour style")
	}
}
