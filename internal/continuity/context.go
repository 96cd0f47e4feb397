package continuity

import (
	"fmt"
	"strings"
)

// RenderContext renders the instruction block carried into the next unit's
// generation request: the position in the run, the heading and numbering
// state so far, and a verbatim sample of prior output as a style exemplar.
func RenderContext(s State, unitIndex, totalUnits int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are formatting part %d of %d of one continuous document.\n", unitIndex+1, totalUnits)
	sb.WriteString("Produce clean HTML using h1/h2/h3, p, ul/ol and strong tags only.\n")

	if unitIndex == 0 {
		sb.WriteString("This is the first part: establish the document's heading hierarchy and numbering.\n")
		return sb.String()
	}

	sb.WriteString("Earlier parts already established the following context. Continue it; never restart numbering or repeat the document title.\n")
	for level := 0; level < Levels; level++ {
		if s.Headings[level] != "" {
			fmt.Fprintf(&sb, "Current h%d: %s\n", level+1, s.Headings[level])
		}
	}
	if s.Counters != ([Levels]int{}) {
		fmt.Fprintf(&sb, "Numbering reached: h1=%d h2=%d h3=%d. New numbered headings must continue from these values.\n",
			s.Counters[0], s.Counters[1], s.Counters[2])
	}
	if s.StyleSample != "" {
		sb.WriteString("Match the formatting conventions of the previous output, which ended:\n")
		sb.WriteString(s.StyleSample)
		sb.WriteString("\n")
	}
	return sb.String()
}
