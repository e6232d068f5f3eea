// Package render converts letter bodies from Markdown to HTML for display.
//
// Rendering is presentation only. The stored letter content is always the
// author's raw text; the rendered form is computed once at submission and
// carried alongside it. Raw HTML in the source is escaped, not passed
// through, so rendered output is safe to inline.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown letter content to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a letter renderer with hard line breaks, since letters are
// prose where a single newline means a new line.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render converts content to HTML. Page delimiters pass through untouched so
// the client can still split the rendered form.
func (r *Renderer) Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
