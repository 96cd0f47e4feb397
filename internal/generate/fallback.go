package generate

import (
	"regexp"
	"strings"
	"unicode"
)

// Fallback deterministically formats a unit's own source text when the
// generation service fails. It is intentionally crude: short capitalized
// lines become headings, everything else becomes paragraphs with ALL-CAPS
// keywords bolded. The one guarantee is non-empty output for non-empty input,
// so the merge step never sees a hole.
func Fallback(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "<p></p>"
	}

	var sb strings.Builder
	for _, block := range splitBlocks(text) {
		lines := strings.Split(block, "\n")
		if len(lines) == 1 && looksLikeHeading(lines[0]) {
			tag := "h3"
			if isShoutCase(lines[0]) {
				tag = "h2"
			}
			sb.WriteString("<" + tag + ">" + escapeText(lines[0]) + "</" + tag + ">\n")
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(boldKeywords(escapeText(strings.Join(lines, " "))))
		sb.WriteString("</p>\n")
	}
	return strings.TrimSpace(sb.String())
}

// splitBlocks separates text on blank lines, dropping empty blocks.
func splitBlocks(text string) []string {
	var blocks []string
	for _, b := range regexp.MustCompile(`\n\s*\n`).Split(text, -1) {
		b = strings.TrimSpace(b)
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func looksLikeHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 70 {
		return false
	}
	if strings.ContainsAny(string(line[len(line)-1]), ".,;!?") {
		return false
	}
	r := []rune(line)[0]
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

func isShoutCase(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			letters++
		}
	}
	return letters >= 4
}

var capsWordRe = regexp.MustCompile(`\b[A-Z][A-Z0-9]{3,}\b`)

func boldKeywords(s string) string {
	return capsWordRe.ReplaceAllString(s, "<strong>$0</strong>")
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return escaper.Replace(s)
}
