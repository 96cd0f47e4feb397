// Package pagetext owns the page-marker convention that segments OCR text
// into pages, and converts uploaded files into marked plain text.
package pagetext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MarkerPattern matches a page marker on its own line, e.g. "--- Page 3 ---".
var MarkerPattern = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*Page[ \t]+(\d+)[ \t]*-{3,}[ \t]*$`)

// Marker renders the canonical marker line for a 1-based page number.
func Marker(n int) string {
	return fmt.Sprintf("--- Page %d ---", n)
}

// JoinPages concatenates page texts with marker lines between them.
// Page 1 gets no leading marker: offsets stay aligned with the first page's text.
func JoinPages(pages []string) string {
	var sb strings.Builder
	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
			sb.WriteString(Marker(i + 1))
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimRight(page, "\n"))
	}
	return sb.String()
}

// PageOffsets returns the byte offsets where each page's content begins.
// Offset 0 is always present (page 1). For every marker found, the offset is
// the first byte after the marker line's trailing newline.
func PageOffsets(text string) []int {
	offsets := []int{0}
	for _, loc := range MarkerPattern.FindAllStringIndex(text, -1) {
		end := loc[1]
		// Skip the newline(s) terminating the marker line.
		for end < len(text) && (text[end] == '\n' || text[end] == '\r') {
			end++
		}
		offsets = append(offsets, end)
	}
	return offsets
}

// PageNumberAt returns the 1-based page containing the given byte offset.
func PageNumberAt(offsets []int, pos int) int {
	page := 1
	for i, off := range offsets {
		if off <= pos {
			page = i + 1
		} else {
			break
		}
	}
	return page
}

// SplitPages slices text into per-page content using PageOffsets. Marker lines
// are stripped from the returned pages; offsets index into the original text.
func SplitPages(text string) []string {
	offsets := PageOffsets(text)
	pages := make([]string, 0, len(offsets))
	markers := MarkerPattern.FindAllStringIndex(text, -1)
	for i, start := range offsets {
		end := len(text)
		if i < len(markers) {
			end = markers[i][0]
		}
		if start > end {
			// Adjacent markers with no content between them.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimRight(text[start:end], " \t\n\r"))
	}
	return pages
}

// ParseMarkerNumber extracts the page number from a marker line, or 0.
func ParseMarkerNumber(line string) int {
	m := MarkerPattern.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
