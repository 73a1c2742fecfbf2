package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// PrettyWriter renders the markdown report for the terminal.
type PrettyWriter struct {
	// Style is a glamour standard style name. Empty picks one from the
	// terminal background.
	Style string
	// Width wraps output; zero means 80 columns.
	Width int
}

func (p *PrettyWriter) Write(w io.Writer, report *Report) error {
	width := p.Width
	if width <= 0 {
		width = 80
	}
	styleOpt := glamour.WithAutoStyle()
	if p.Style != "" {
		styleOpt = glamour.WithStandardStyle(p.Style)
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	var b strings.Builder
	renderMarkdown(&b, report)
	out, err := renderer.Render(b.String())
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
