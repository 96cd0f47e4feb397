// Package analyzer infers a heading tree and page-anchored sections from raw
// OCR text. Detection is heuristic and best effort; absence of structure
// degrades to page-based sectioning, never to empty output.
package analyzer

// Heading is one detected heading. Parent/Children are indices into the
// DocumentStructure.Headings arena, not pointers, so the tree carries no
// ownership cycles. Parent is -1 for roots.
type Heading struct {
	Level      int    // 1 = document/main, 2 = section, 3 = sub-section
	Text       string
	StartIndex int
	EndIndex   int
	Parent     int
	Children   []int
	Synthetic  bool // true for pseudo-headings the analyzer invented
}

// Section is the exact source substring between one heading's start and the
// next heading's start (or the document end). Heading indexes into the
// structure's arena.
type Section struct {
	Heading    int
	Content    string
	StartIndex int
	EndIndex   int
	PageNumber int
}

// DocumentStructure is the immutable result of one analysis pass.
type DocumentStructure struct {
	Headings    []Heading // document order
	Sections    []Section // document order
	TotalLength int
	PageBreaks  []int // byte offsets where each page's content begins
}

// HeadingAt returns the heading record for an index, or a zero Heading for -1.
func (d *DocumentStructure) HeadingAt(i int) Heading {
	if i < 0 || i >= len(d.Headings) {
		return Heading{Parent: -1}
	}
	return d.Headings[i]
}

// Ancestry returns the root→leaf chain of headings ending at index i.
func (d *DocumentStructure) Ancestry(i int) []Heading {
	var chain []Heading
	for i >= 0 && i < len(d.Headings) {
		chain = append([]Heading{d.Headings[i]}, chain...)
		i = d.Headings[i].Parent
	}
	return chain
}

// TopLevelHeadings returns all level-1 headings in document order.
func (d *DocumentStructure) TopLevelHeadings() []Heading {
	var out []Heading
	for _, h := range d.Headings {
		if h.Level == 1 {
			out = append(out, h)
		}
	}
	return out
}
