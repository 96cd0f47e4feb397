package generate

import "strings"

// FormatInstructions is the fixed task description sent with every unit. The
// per-run continuation context travels separately as the system prompt.
const FormatInstructions = `Reformat the following OCR-extracted text into clean, well-structured HTML.

Rules:
- Preserve ALL content. Do not summarize, drop, or reorder anything.
- Fix obvious OCR artifacts (broken words, stray hyphenation, duplicated characters) but never rewrite meaning.
- Use h1 only for the document's main title, h2 for sections, h3 for sub-sections.
- Wrap body text in p tags; rebuild lists with ul/ol where the source clearly enumerates.
- Keep existing numbering exactly as written in the source.
- Do not invent headings the source does not have.
- Respond with HTML only, no commentary and no code fences.`

// BuildUnitPrompt assembles the user message for one unit.
func BuildUnitPrompt(unitText string) string {
	var sb strings.Builder
	sb.WriteString(FormatInstructions)
	sb.WriteString("\n\n---\n")
	sb.WriteString(unitText)
	return sb.String()
}
