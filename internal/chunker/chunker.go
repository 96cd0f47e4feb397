// Package chunker partitions analyzed OCR text into token-budgeted chunks
// that carry heading-ancestry context and page provenance.
package chunker

import (
	"fmt"
	"sort"
	"strings"

	"docweave/internal/analyzer"
)

// ContentChunk is one unit of work for the generation service.
type ContentChunk struct {
	ID             string
	Content        string
	HeadingContext []analyzer.Heading // root→leaf ancestry
	Sections       []analyzer.Section
	TokenCount     int
	IsComplete     bool
	PageNumbers    []int
}

// ChunkingResult is the ordered chunk list plus totals used by the coverage
// check and progress reporting.
type ChunkingResult struct {
	Chunks             []ContentChunk
	TotalChunks        int
	TotalContentLength int
}

// MinRecoveryChars is the floor below which a residual coverage chunk is not
// worth appending.
const MinRecoveryChars = 100

// coverageFloor is the fraction of source length the emitted chunks must reach.
const coverageFloor = 0.95

// BuildChunks partitions the source into ordered, budgeted chunks. The fast
// path emits a single chunk; documents without detected headings chunk by
// page; otherwise sections are grouped at level-1 boundaries and oversized
// groups are split section by section. A final coverage check appends a
// best-effort residual chunk if content went missing.
func BuildChunks(source string, structure *analyzer.DocumentStructure, maxTokens int) ChunkingResult {
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	var chunks []ContentChunk
	switch {
	case EstimateTokens(source) <= maxTokens:
		chunks = wholeDocumentChunk(source, structure)
	case !hasDetectedHeadings(structure):
		chunks = pageChunks(source, structure, maxTokens)
	default:
		chunks = sectionGroupChunks(structure, maxTokens)
	}

	chunks = ensureCoverage(source, chunks)

	total := 0
	for _, c := range chunks {
		total += len(c.Content)
	}
	return ChunkingResult{
		Chunks:             chunks,
		TotalChunks:        len(chunks),
		TotalContentLength: total,
	}
}

// hasDetectedHeadings reports whether the analyzer found real structure, as
// opposed to the synthetic per-page sectioning it degrades to.
func hasDetectedHeadings(structure *analyzer.DocumentStructure) bool {
	if structure == nil || len(structure.Sections) == 0 {
		return false
	}
	for _, h := range structure.Headings {
		if !h.Synthetic {
			return true
		}
	}
	return false
}

func wholeDocumentChunk(source string, structure *analyzer.DocumentStructure) []ContentChunk {
	chunk := ContentChunk{
		ID:         "chunk-1",
		Content:    source,
		TokenCount: EstimateTokens(source),
		IsComplete: true,
	}
	if structure != nil {
		chunk.HeadingContext = structure.TopLevelHeadings()
		chunk.Sections = structure.Sections
		chunk.PageNumbers = pagesOf(structure.Sections)
		if len(chunk.PageNumbers) == 0 && len(source) > 0 {
			chunk.PageNumbers = []int{1}
		}
	}
	return []ContentChunk{chunk}
}

// pageChunks accumulates whole pages into chunks, flushing whenever the next
// page would overflow a non-empty buffer. Every page lands in exactly one
// chunk, so this path is coverage-complete trivially.
func pageChunks(source string, structure *analyzer.DocumentStructure, maxTokens int) []ContentChunk {
	breaks := structure.PageBreaks
	if len(breaks) == 0 {
		breaks = []int{0}
	}

	var chunks []ContentChunk
	var buf strings.Builder
	var pages []int
	ordinal := 1

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, ContentChunk{
			ID:          fmt.Sprintf("chunk-%d", ordinal),
			Content:     buf.String(),
			TokenCount:  EstimateTokens(buf.String()),
			IsComplete:  true,
			PageNumbers: append([]int(nil), pages...),
		})
		ordinal++
		buf.Reset()
		pages = pages[:0]
	}

	for i, start := range breaks {
		end := len(source)
		if i+1 < len(breaks) {
			end = breaks[i+1]
		}
		pageText := source[start:end]
		if buf.Len() > 0 && EstimateTokens(buf.String())+EstimateTokens(pageText) > maxTokens {
			flush()
		}
		buf.WriteString(pageText)
		pages = append(pages, i+1)
	}
	flush()
	return chunks
}

// sectionGroup is a run of sections owned by one level-1 boundary. The
// ancestry chain starts at the group's real level-1 heading or a synthetic
// one created on overflow.
type sectionGroup struct {
	ancestry []analyzer.Heading
	sections []analyzer.Section
	tokens   int
}

// sectionGroupChunks walks sections in order, grouping at level-1 boundaries
// and starting an overflow group (with a synthetic heading) whenever the open
// group's estimate would exceed the budget. Each group emits one chunk when it
// fits, or one sub-chunk per accumulated run of sections otherwise.
func sectionGroupChunks(structure *analyzer.DocumentStructure, maxTokens int) []ContentChunk {
	var groups []sectionGroup
	open := -1
	syntheticCount := 0

	for i, sec := range structure.Sections {
		h := structure.HeadingAt(sec.Heading)
		secTokens := EstimateTokens(sec.Content)

		switch {
		case h.Level == 1 || open < 0:
			groups = append(groups, sectionGroup{
				ancestry: structure.Ancestry(sec.Heading),
			})
			open = len(groups) - 1
		case groups[open].tokens+secTokens > maxTokens && len(groups[open].sections) > 0:
			// Overflow: a new group starts here, tagged with a synthetic
			// level-1 heading so grouping semantics hold without losing
			// content to a real boundary that does not exist.
			syntheticCount++
			synthetic := analyzer.Heading{
				Level:      1,
				Text:       fmt.Sprintf("Section Group %d", syntheticCount),
				StartIndex: sec.StartIndex,
				EndIndex:   sec.StartIndex,
				Parent:     -1,
				Synthetic:  true,
			}
			groups = append(groups, sectionGroup{
				ancestry: []analyzer.Heading{synthetic},
			})
			open = len(groups) - 1
		}

		groups[open].sections = append(groups[open].sections, structure.Sections[i])
		groups[open].tokens += secTokens
	}

	var chunks []ContentChunk
	for g, group := range groups {
		if group.tokens <= maxTokens {
			chunks = append(chunks, groupChunk(group, fmt.Sprintf("chunk-%d", g+1)))
			continue
		}
		chunks = append(chunks, splitGroup(group, g+1, maxTokens)...)
	}
	return chunks
}

func groupChunk(group sectionGroup, id string) ContentChunk {
	var sb strings.Builder
	for _, sec := range group.sections {
		sb.WriteString(sec.Content)
	}
	return ContentChunk{
		ID:             id,
		Content:        sb.String(),
		HeadingContext: group.ancestry,
		Sections:       group.sections,
		TokenCount:     EstimateTokens(sb.String()),
		IsComplete:     true,
		PageNumbers:    pagesOf(group.sections),
	}
}

// splitGroup flushes an oversized group into sub-chunks section by section.
// Sub-chunks retain the parent group's heading ancestry, not their own.
func splitGroup(group sectionGroup, ordinal, maxTokens int) []ContentChunk {
	var chunks []ContentChunk
	var run []analyzer.Section
	runTokens := 0
	sub := 1

	flush := func() {
		if len(run) == 0 {
			return
		}
		chunk := groupChunk(sectionGroup{
			ancestry: group.ancestry,
			sections: append([]analyzer.Section(nil), run...),
		}, fmt.Sprintf("chunk-%d-%d", ordinal, sub))
		chunks = append(chunks, chunk)
		sub++
		run = run[:0]
		runTokens = 0
	}

	for _, sec := range group.sections {
		secTokens := EstimateTokens(sec.Content)
		if runTokens+secTokens > maxTokens && len(run) > 0 {
			flush()
		}
		run = append(run, sec)
		runTokens += secTokens
	}
	flush()
	return chunks
}

func pagesOf(sections []analyzer.Section) []int {
	seen := map[int]bool{}
	var pages []int
	for _, sec := range sections {
		if sec.PageNumber > 0 && !seen[sec.PageNumber] {
			seen[sec.PageNumber] = true
			pages = append(pages, sec.PageNumber)
		}
	}
	sort.Ints(pages)
	return pages
}
