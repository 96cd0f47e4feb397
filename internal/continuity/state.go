// Package continuity threads formatting/numbering state across sequentially
// processed units so numbering and style conventions never restart
// mid-document. State is an explicit accumulator: unit i's state derives only
// from unit i-1's output plus its own prior value.
package continuity

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Levels is how many heading levels the tracker follows (h1..h3).
const Levels = 3

// styleSampleLen bounds the verbatim sample of prior output carried forward
// as a style exemplar.
const styleSampleLen = 400

// State is the accumulator for one run. The zero value is the initial state.
type State struct {
	Headings    [Levels]string // last seen heading text per level
	Counters    [Levels]int    // last seen numbering per level, monotonic
	StyleSample string         // tail of the most recent output
}

var leadingNumberRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s`)

// Advance folds one unit's output into the state. Heading text fields are
// replaced by the last heading of each level in the output; counters only
// ever move up via max. Output with no headings, or that is not parseable
// HTML, leaves the corresponding fields untouched.
func Advance(s State, output string) State {
	next := s
	if strings.TrimSpace(output) != "" {
		next.StyleSample = sampleTail(output)
	}

	for level, text := range lastHeadings(output) {
		if text == "" {
			continue
		}
		next.Headings[level] = text
		if n := extractCounter(text, level+1); n > next.Counters[level] {
			next.Counters[level] = n
		}
	}
	return next
}

// lastHeadings scans output HTML in document order and keeps the last
// occurrence of each heading level. The tokenizer never fails on malformed
// input, it just stops, which degrades to a no-op.
func lastHeadings(output string) [Levels]string {
	var found [Levels]string
	tk := html.NewTokenizer(strings.NewReader(output))

	current := -1
	var text strings.Builder
	for {
		tt := tk.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken:
			name, _ := tk.TagName()
			if lvl := headingLevel(string(name)); lvl > 0 {
				current = lvl - 1
				text.Reset()
			}
		case html.TextToken:
			if current >= 0 {
				text.Write(tk.Text())
			}
		case html.EndTagToken:
			name, _ := tk.TagName()
			if lvl := headingLevel(string(name)); lvl > 0 && current == lvl-1 {
				if t := strings.TrimSpace(text.String()); t != "" {
					found[current] = t
				}
				current = -1
			}
		}
	}
	return found
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	}
	return 0
}

// extractCounter reads the numeric counter a heading implies at its level:
// "3.2 Methods" at level 2 yields 2, "Chapter 4" style leading numbers yield
// the deepest component available.
func extractCounter(text string, level int) int {
	m := leadingNumberRe.FindStringSubmatch(text + " ")
	if len(m) < 2 {
		return 0
	}
	comps := strings.Split(m[1], ".")
	idx := level - 1
	if idx >= len(comps) {
		idx = len(comps) - 1
	}
	n, err := strconv.Atoi(comps[idx])
	if err != nil {
		return 0
	}
	return n
}

// sampleTail keeps the last styleSampleLen bytes of output, advanced to the
// next tag start so the sample never opens mid-tag.
func sampleTail(output string) string {
	if len(output) <= styleSampleLen {
		return output
	}
	tail := output[len(output)-styleSampleLen:]
	if i := strings.Index(tail, "<"); i > 0 {
		tail = tail[i:]
	}
	return tail
}
