package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dshills/codelens/internal/review"
)

// Report is one review plus the context it was produced in.
type Report struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version"`
	File      string            `json:"file"`
	Provider  string            `json:"provider"`
	Timestamp time.Time         `json:"timestamp"`
	Counts    review.TypeCounts `json:"counts"`
	Review    review.Review     `json:"review"`
}

// NewReport wraps r for output.
func NewReport(version, file, provider string, r review.Review, at time.Time) *Report {
	return &Report{
		Tool:      "codelens",
		Version:   version,
		File:      file,
		Provider:  provider,
		Timestamp: at.UTC(),
		Counts:    r.Counts(),
		Review:    r,
	}
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// Formats lists the names accepted by GetWriter.
var Formats = []string{"text", "json", "markdown", "pretty"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "pretty":
		return &PrettyWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}
