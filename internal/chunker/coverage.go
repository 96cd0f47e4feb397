package chunker

import (
	"fmt"
	"strings"
)

// ensureCoverage appends a best-effort residual chunk when the emitted chunks
// cover less than 95% of the source. The residual is a line-level set
// difference; it makes no ordering guarantees and exists only as a safety net
// behind the coverage-complete construction paths.
func ensureCoverage(source string, chunks []ContentChunk) []ContentChunk {
	if len(source) == 0 {
		return chunks
	}

	covered := 0
	for _, c := range chunks {
		covered += len(c.Content)
	}
	if float64(covered) >= coverageFloor*float64(len(source)) {
		return chunks
	}

	missing := missingLines(source, chunks)
	if len(strings.TrimSpace(missing)) <= MinRecoveryChars {
		return chunks
	}

	nextOrdinal := maxOrdinal(chunks) + 1
	return append(chunks, ContentChunk{
		ID:         fmt.Sprintf("chunk-%d", nextOrdinal),
		Content:    missing,
		TokenCount: EstimateTokens(missing),
		IsComplete: true,
	})
}

// missingLines returns source lines absent from every emitted chunk, in
// source order.
func missingLines(source string, chunks []ContentChunk) string {
	present := map[string]bool{}
	for _, c := range chunks {
		for _, line := range strings.Split(c.Content, "\n") {
			present[strings.TrimSpace(line)] = true
		}
	}

	var sb strings.Builder
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || present[trimmed] {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// maxOrdinal finds the highest leading ordinal across chunk IDs so the
// recovery chunk sorts after everything else.
func maxOrdinal(chunks []ContentChunk) int {
	max := 0
	for _, c := range chunks {
		var g, s int
		if n, _ := fmt.Sscanf(c.ID, "chunk-%d-%d", &g, &s); n >= 1 && g > max {
			max = g
		}
	}
	return max
}
