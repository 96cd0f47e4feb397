package analyzer

import (
	"fmt"
	"strings"

	"docweave/internal/pagetext"
)

// Analyze runs one analysis pass over page-marked OCR text. It never fails:
// if no headings are detected, sections fall back to one pseudo-section per
// page, which covers the source completely by construction.
func Analyze(source string) *DocumentStructure {
	structure := &DocumentStructure{
		TotalLength: len(source),
		PageBreaks:  pagetext.PageOffsets(source),
	}
	if strings.TrimSpace(source) == "" {
		return structure
	}

	structure.Headings = detectHeadings(source)
	if len(structure.Headings) > 0 {
		structure.Sections = sliceSections(source, structure)
	} else {
		structure.Headings, structure.Sections = pageSections(source, structure.PageBreaks)
	}
	return structure
}

// detectHeadings scans non-empty lines in order, classifying each against the
// pattern table. Every line advances the running offset by len(line)+1 so
// heading offsets stay consistent with the original text including newlines.
func detectHeadings(source string) []Heading {
	var headings []Heading
	offset := 0

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		lineStart := offset + leadingSpace(line)
		offset += len(line) + 1

		if trimmed == "" || pagetext.MarkerPattern.MatchString(trimmed) {
			continue
		}

		level := classifyLine(trimmed)
		if level == 0 {
			continue
		}

		h := Heading{
			Level:      level,
			Text:       trimmed,
			StartIndex: lineStart,
			EndIndex:   lineStart + len(trimmed),
			Parent:     -1,
		}

		// Attach to the nearest preceding heading with strictly smaller level.
		idx := len(headings)
		for j := idx - 1; j >= 0; j-- {
			if headings[j].Level < level {
				h.Parent = j
				break
			}
		}
		headings = append(headings, h)
		if h.Parent >= 0 {
			headings[h.Parent].Children = append(headings[h.Parent].Children, idx)
		}
	}
	return headings
}

// sliceSections gives each heading everything up to the next heading of any
// level. Sections partition the tail of the source from the first heading on;
// any preamble before the first heading is folded into the first section so
// nothing is dropped.
func sliceSections(source string, structure *DocumentStructure) []Section {
	headings := structure.Headings
	sections := make([]Section, 0, len(headings))

	for i, h := range headings {
		start := h.StartIndex
		if i == 0 {
			start = 0
		}
		end := len(source)
		if i+1 < len(headings) {
			end = headings[i+1].StartIndex
		}
		sections = append(sections, Section{
			Heading:    i,
			Content:    source[start:end],
			StartIndex: start,
			EndIndex:   end,
			PageNumber: pagetext.PageNumberAt(structure.PageBreaks, h.StartIndex),
		})
	}
	return sections
}

// pageSections builds one level-1 pseudo-section per page when no headings
// were detected. Coverage is 100% by construction.
func pageSections(source string, pageBreaks []int) ([]Heading, []Section) {
	var headings []Heading
	var sections []Section

	for i, start := range pageBreaks {
		end := len(source)
		if i+1 < len(pageBreaks) {
			end = pageBreaks[i+1]
		}
		h := Heading{
			Level:      1,
			Text:       fmt.Sprintf("Page %d", i+1),
			StartIndex: start,
			EndIndex:   start,
			Parent:     -1,
			Synthetic:  true,
		}
		headings = append(headings, h)
		sections = append(sections, Section{
			Heading:    i,
			Content:    source[start:end],
			StartIndex: start,
			EndIndex:   end,
			PageNumber: i + 1,
		})
	}
	return headings, sections
}

func leadingSpace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
