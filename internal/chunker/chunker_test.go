package chunker

import (
	"strings"
	"testing"

	"docweave/internal/analyzer"
	"docweave/internal/pagetext"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 4000), 1000},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(len %d) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestBuildChunksSinglePageUnderBudget(t *testing.T) {
	source := "short document that fits the budget comfortably."
	structure := analyzer.Analyze(source)

	result := BuildChunks(source, structure, 4000)

	if result.TotalChunks != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", result.TotalChunks)
	}
	c := result.Chunks[0]
	if !c.IsComplete {
		t.Error("single chunk should be complete")
	}
	if c.Content != source {
		t.Error("single chunk should carry the entire text")
	}
	want := (len(source) + CharsPerToken - 1) / CharsPerToken
	if c.TokenCount != want {
		t.Errorf("token count = %d, want ceil(len/%d) = %d", c.TokenCount, CharsPerToken, want)
	}
	if c.ID != "chunk-1" {
		t.Errorf("chunk ID = %q, want chunk-1", c.ID)
	}
}

func TestBuildChunksPageFallbackPartitionsPages(t *testing.T) {
	// 3 pages without detectable headings, each under budget individually
	// but not all three combined.
	page := strings.ToLower(strings.Repeat("plain sentence text without structure here. ", 20))
	source := pagetext.JoinPages([]string{page, page, page})
	structure := analyzer.Analyze(source)

	budget := EstimateTokens(page) + EstimateTokens(page)/2 // fits 1, not 2
	result := BuildChunks(source, structure, budget)

	if result.TotalChunks < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", result.TotalChunks)
	}

	// Every chunk is a whole number of consecutive pages and the page
	// numbers partition {1,2,3} exactly.
	var all []int
	prev := 0
	for _, c := range result.Chunks {
		if len(c.PageNumbers) == 0 {
			t.Fatalf("chunk %s has no page numbers", c.ID)
		}
		for _, p := range c.PageNumbers {
			if p != prev+1 {
				t.Fatalf("pages not consecutive: %v after %d", c.PageNumbers, prev)
			}
			prev = p
			all = append(all, p)
		}
	}
	if len(all) != 3 {
		t.Fatalf("pages covered = %v, want exactly {1,2,3}", all)
	}

	// Page path is coverage-complete: every byte in exactly one chunk.
	total := 0
	for _, c := range result.Chunks {
		total += len(c.Content)
	}
	if total != len(source) {
		t.Errorf("chunks cover %d of %d bytes", total, len(source))
	}
}

func TestBuildChunksSectionGroupsRespectBudget(t *testing.T) {
	var sb strings.Builder
	for _, title := range []string{"FIRST PART", "SECOND PART", "THIRD PART"} {
		sb.WriteString(title)
		sb.WriteString("\n\n")
		sb.WriteString(strings.ToLower(strings.Repeat("body sentence that carries enough text to matter. ", 30)))
		sb.WriteString("\n\n")
	}
	source := sb.String()
	structure := analyzer.Analyze(source)
	if len(structure.TopLevelHeadings()) != 3 {
		t.Fatalf("setup: expected 3 level-1 headings, got %d", len(structure.TopLevelHeadings()))
	}

	budget := EstimateTokens(source) / 2
	result := BuildChunks(source, structure, budget)

	if result.TotalChunks < 2 {
		t.Fatalf("expected multiple chunks, got %d", result.TotalChunks)
	}
	for _, c := range result.Chunks {
		// Budget holds for everything except an explicitly oversized
		// single section.
		if len(c.Sections) > 1 && c.TokenCount > budget {
			t.Errorf("chunk %s: %d tokens exceeds budget %d", c.ID, c.TokenCount, budget)
		}
	}

	// Coverage: the section walk is complete by construction.
	total := 0
	for _, c := range result.Chunks {
		total += len(c.Content)
	}
	if float64(total) < 0.95*float64(len(source)) {
		t.Errorf("coverage %.2f below 0.95", float64(total)/float64(len(source)))
	}
}

func TestBuildChunksHeadingContextPropagates(t *testing.T) {
	source := "MAIN TITLE\n\n" +
		strings.ToLower(strings.Repeat("introductory sentence with plenty of words inside it. ", 40)) +
		"\n\n1.1 Sub Topic\n\n" +
		strings.ToLower(strings.Repeat("sub topic sentence with plenty of words inside it. ", 40))
	structure := analyzer.Analyze(source)

	budget := EstimateTokens(source) / 3
	result := BuildChunks(source, structure, budget)

	for _, c := range result.Chunks {
		if len(c.HeadingContext) == 0 {
			t.Errorf("chunk %s carries no heading context", c.ID)
		}
	}
}

func TestBuildChunksOversizedSectionSplitsWithinGroup(t *testing.T) {
	// A single section larger than the budget: the group cannot fit one
	// chunk and is split, and the sub-chunk keeps the group's ancestry and
	// the chunk-<g>-<s> ID form.
	source := "ONLY CHAPTER\n\n" +
		strings.ToLower(strings.Repeat("first block sentence that goes on and on for a while. ", 60)) +
		"\n\nFINAL NOTES\n\n" +
		strings.ToLower(strings.Repeat("closing sentence text here. ", 5))
	structure := analyzer.Analyze(source)

	oversized := EstimateTokens(structure.Sections[0].Content)
	budget := oversized - 10
	result := BuildChunks(source, structure, budget)

	if result.TotalChunks < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", result.TotalChunks)
	}

	first := result.Chunks[0]
	if first.ID != "chunk-1-1" {
		t.Errorf("oversized group sub-chunk ID = %q, want chunk-1-1", first.ID)
	}
	if len(first.HeadingContext) == 0 || first.HeadingContext[0].Text != "ONLY CHAPTER" {
		t.Errorf("sub-chunk lost group ancestry: %+v", first.HeadingContext)
	}
	// The oversized single section is the one sanctioned budget breach.
	if first.TokenCount <= budget {
		t.Errorf("setup expected an oversized section, got %d <= %d", first.TokenCount, budget)
	}
}

func TestBuildChunksOrderIsDocumentOrder(t *testing.T) {
	page := strings.ToLower(strings.Repeat("page words keep flowing along here without headings. ", 15))
	source := pagetext.JoinPages([]string{page + " alpha", page + " beta", page + " gamma"})
	structure := analyzer.Analyze(source)

	result := BuildChunks(source, structure, EstimateTokens(page)+10)

	joined := ""
	for _, c := range result.Chunks {
		joined += c.Content
	}
	a, b, g := strings.Index(joined, "alpha"), strings.Index(joined, "beta"), strings.Index(joined, "gamma")
	if !(a < b && b < g) {
		t.Errorf("chunk order broke document order: alpha=%d beta=%d gamma=%d", a, b, g)
	}
}
