// Package merger reassembles processed fragments into one document:
// deterministic ordinal ordering, duplicate-title removal, and idempotent
// whitespace normalization.
package merger

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Fragment is one processed unit's contribution to the final document.
type Fragment struct {
	ID      string // chunk-<g> or chunk-<g>-<s>
	Content string
	Success bool
}

// MinSaneLength is the output length under which, given several non-trivial
// inputs, a diagnostic marker is appended. Purely observability.
const MinSaneLength = 1000

// Merge concatenates fragments into the final document. Pure and
// deterministic given its input.
func Merge(fragments []Fragment) string {
	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		gi, si := ordinals(sorted[i].ID)
		gj, sj := ordinals(sorted[j].ID)
		if gi != gj {
			return gi < gj
		}
		return si < sj
	})

	seenTitles := map[string]bool{}
	var parts []string
	for i, frag := range sorted {
		content := strings.TrimSpace(frag.Content)
		if content == "" {
			continue
		}
		if i == 0 {
			for _, t := range titlesIn(content) {
				seenTitles[t] = true
			}
			parts = append(parts, content)
			continue
		}
		content = stripDuplicateTitles(content, seenTitles)
		for _, t := range titlesIn(content) {
			seenTitles[t] = true
		}
		if content != "" {
			parts = append(parts, content)
		}
	}

	merged := Normalize(strings.Join(parts, "\n\n"))

	if len(merged) < MinSaneLength && nonTrivialCount(sorted) > 1 {
		succeeded := 0
		for _, f := range sorted {
			if f.Success {
				succeeded++
			}
		}
		merged += fmt.Sprintf("\n<!-- merged %d units, %d succeeded; output shorter than expected -->", len(sorted), succeeded)
	}
	return merged
}

var h1Re = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)

// titlesIn returns the trimmed inner text of every top-level title block.
func titlesIn(content string) []string {
	var titles []string
	for _, m := range h1Re.FindAllStringSubmatch(content, -1) {
		t := strings.TrimSpace(m[1])
		if t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// stripDuplicateTitles removes h1 blocks whose inner text byte-identically
// repeats an already-emitted title. Only exact repeats are stripped; this is
// duplicate removal, not pattern-based removal.
func stripDuplicateTitles(content string, seen map[string]bool) string {
	out := h1Re.ReplaceAllStringFunc(content, func(block string) string {
		m := h1Re.FindStringSubmatch(block)
		if len(m) > 1 && seen[strings.TrimSpace(m[1])] {
			return ""
		}
		return block
	})
	return strings.TrimSpace(out)
}

var (
	blankRunRe   = regexp.MustCompile(`\n[ \t]*\n([ \t]*\n)+`)
	blockBoundRe = regexp.MustCompile(`(?i)(</(?:p|h[1-6]|ul|ol|table|blockquote|div)>)[ \t]*\n?[ \t]*(<(?:h[1-6]|p|ul|ol)\b)`)
)

// Normalize collapses runs of three or more blank lines to exactly one blank
// line and guarantees one blank line between a closing block tag and the next
// opening heading/paragraph/list tag. Idempotent: applying it twice equals
// applying it once.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	s = blockBoundRe.ReplaceAllString(s, "$1\n\n$2")
	return s
}

// ordinals parses the numeric position out of a chunk ID. Unknown IDs sort
// last in original order.
func ordinals(id string) (group, sub int) {
	var g, s int
	if n, _ := fmt.Sscanf(id, "chunk-%d-%d", &g, &s); n >= 1 {
		return g, s
	}
	return 1 << 30, 0
}

func nonTrivialCount(fragments []Fragment) int {
	n := 0
	for _, f := range fragments {
		if len(strings.TrimSpace(f.Content)) > 50 {
			n++
		}
	}
	return n
}
