package analyzer

import (
	"strings"
	"testing"

	"docweave/internal/pagetext"
)

const structuredDoc = `ANNUAL REPORT

Introduction text that sets the stage for the document and runs long enough
to look like a real paragraph of body content.

1.1 Revenue Overview

revenue details with ordinary sentence text that should not classify as a
heading because it is long and ends with punctuation.

1.1.1 Quarterly Breakdown

more detail lines here.
`

func TestAnalyzeDetectsHeadingHierarchy(t *testing.T) {
	structure := Analyze(structuredDoc)

	if len(structure.Headings) < 3 {
		t.Fatalf("expected at least 3 headings, got %d: %+v", len(structure.Headings), structure.Headings)
	}

	first := structure.Headings[0]
	if first.Level != 1 || first.Text != "ANNUAL REPORT" {
		t.Errorf("first heading = level %d %q, want level 1 \"ANNUAL REPORT\"", first.Level, first.Text)
	}

	var h2, h3 *Heading
	for i := range structure.Headings {
		switch structure.Headings[i].Text {
		case "1.1 Revenue Overview":
			h2 = &structure.Headings[i]
		case "1.1.1 Quarterly Breakdown":
			h3 = &structure.Headings[i]
		}
	}
	if h2 == nil || h2.Level != 2 {
		t.Fatalf("expected level-2 heading for \"1.1 Revenue Overview\", got %+v", h2)
	}
	if h3 == nil || h3.Level != 3 {
		t.Fatalf("expected level-3 heading for \"1.1.1 Quarterly Breakdown\", got %+v", h3)
	}

	// Parent links go to the nearest preceding heading of smaller level.
	if h2.Parent < 0 || structure.Headings[h2.Parent].Level >= h2.Level {
		t.Errorf("level-2 parent invalid: %+v", h2)
	}
	if h3.Parent < 0 || structure.Headings[h3.Parent].Level >= h3.Level {
		t.Errorf("level-3 parent invalid: %+v", h3)
	}
}

func TestAnalyzeSectionsPartitionSource(t *testing.T) {
	structure := Analyze(structuredDoc)

	if len(structure.Sections) == 0 {
		t.Fatal("expected sections")
	}

	// Sections must tile the entire source: start at 0, end at len, no gaps.
	if structure.Sections[0].StartIndex != 0 {
		t.Errorf("first section starts at %d, want 0", structure.Sections[0].StartIndex)
	}
	last := structure.Sections[len(structure.Sections)-1]
	if last.EndIndex != len(structuredDoc) {
		t.Errorf("last section ends at %d, want %d", last.EndIndex, len(structuredDoc))
	}
	for i := 1; i < len(structure.Sections); i++ {
		if structure.Sections[i].StartIndex != structure.Sections[i-1].EndIndex {
			t.Errorf("gap between section %d and %d", i-1, i)
		}
	}

	// Content is the exact substring of the source.
	for i, sec := range structure.Sections {
		if sec.Content != structuredDoc[sec.StartIndex:sec.EndIndex] {
			t.Errorf("section %d content is not the source substring", i)
		}
	}
}

func TestAnalyzeNoHeadingsFallsBackToPages(t *testing.T) {
	pages := []string{
		"lowercase text that never looks like a heading. it just continues on and on.",
		"another page of plain sentence text without any structure to find here.",
	}
	source := pagetext.JoinPages(pages)

	structure := Analyze(source)

	if len(structure.Sections) != 2 {
		t.Fatalf("expected 2 page sections, got %d", len(structure.Sections))
	}
	for i, sec := range structure.Sections {
		if sec.PageNumber != i+1 {
			t.Errorf("section %d page = %d, want %d", i, sec.PageNumber, i+1)
		}
		h := structure.HeadingAt(sec.Heading)
		if !h.Synthetic || h.Level != 1 {
			t.Errorf("section %d pseudo-heading = %+v", i, h)
		}
	}

	// 100% coverage by construction.
	total := 0
	for _, sec := range structure.Sections {
		total += len(sec.Content)
	}
	if total != len(source) {
		t.Errorf("page sections cover %d of %d bytes", total, len(source))
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	structure := Analyze("   \n  \n")
	if len(structure.Headings) != 0 || len(structure.Sections) != 0 {
		t.Errorf("expected empty structure, got %+v", structure)
	}
}

func TestAnalyzePageNumbersMonotonic(t *testing.T) {
	source := pagetext.JoinPages([]string{
		"CHAPTER ONE\n\nbody text on the first page that reads like a sentence.",
		"CHAPTER TWO\n\nbody text on the second page that reads like a sentence.",
	})
	structure := Analyze(source)

	prev := 0
	for i, sec := range structure.Sections {
		if sec.PageNumber < prev {
			t.Errorf("section %d page %d regressed below %d", i, sec.PageNumber, prev)
		}
		prev = sec.PageNumber
	}
	if prev != 2 {
		t.Errorf("expected final section on page 2, got %d", prev)
	}
}

func TestAncestryChain(t *testing.T) {
	structure := Analyze(structuredDoc)

	var leaf int = -1
	for i, h := range structure.Headings {
		if h.Level == 3 {
			leaf = i
			break
		}
	}
	if leaf < 0 {
		t.Fatal("no level-3 heading found")
	}

	chain := structure.Ancestry(leaf)
	if len(chain) < 2 {
		t.Fatalf("expected ancestry chain, got %d entries", len(chain))
	}
	for i := 1; i < len(chain); i++ {
		if chain[i-1].Level >= chain[i].Level {
			t.Errorf("ancestry not strictly deepening: %v", chain)
		}
	}
	if chain[len(chain)-1].Level != 3 {
		t.Errorf("chain should end at the leaf, got level %d", chain[len(chain)-1].Level)
	}
}

func TestClassifyLinePrecedence(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"EXECUTIVE SUMMARY", 1},
		{"Chapter 3 The Journey", 1},
		{"IV. Methods", 1},
		{"2.1 Data Collection", 2},
		{"B. Secondary Sources", 2},
		{"3.2.1 Outliers", 3},
		{"[Appendix]", 3},
		{"ordinary sentence that ends with a period.", 0},
		{"this line is lowercase and long enough not to be a heading at all, honestly", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := classifyLine(tt.line); got != tt.want {
			t.Errorf("classifyLine(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestMarkerLinesNeverClassify(t *testing.T) {
	source := "some text\n\n--- Page 2 ---\n\nmore text"
	structure := Analyze(source)
	for _, h := range structure.Headings {
		if strings.Contains(h.Text, "--- Page") {
			t.Errorf("page marker classified as heading: %+v", h)
		}
	}
}
