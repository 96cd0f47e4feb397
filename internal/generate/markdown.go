package generate

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var htmlBlockRe = regexp.MustCompile(`(?i)<(h[1-6]|p|ul|ol|li|div|table|blockquote)\b`)

// EnsureHTML normalizes a generation response to HTML. Responses that already
// contain block-level tags pass through; anything else is treated as markdown
// and converted, so downstream state tracking and merging see one format.
func EnsureHTML(text string) string {
	if htmlBlockRe.MatchString(text) {
		return strings.TrimSpace(text)
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		// Conversion failing means the text is plain; paragraph-wrap it.
		return Fallback(text)
	}
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return strings.TrimSpace(text)
	}
	return out
}
