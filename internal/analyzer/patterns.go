package analyzer

import (
	"regexp"
	"strings"
	"unicode"
)

// Heading classification is an ordered table of (predicate, level) pairs.
// Tiers are checked level 1 first, then 2, then 3, then the generic fallback;
// the first predicate that matches wins and no backtracking happens.

type headingRule struct {
	level int
	match func(line string) bool
}

var (
	chapterRe  = regexp.MustCompile(`^(?:Chapter|CHAPTER|Part|PART)\s+\d+\b`)
	romanRe    = regexp.MustCompile(`^[IVXLCDM]{1,7}\.\s+\S`)
	numNNRe    = regexp.MustCompile(`^\d+\.\d+\s+\S`)
	numNNNRe   = regexp.MustCompile(`^\d+\.\d+\.\d+\s*\S`)
	letteredRe = regexp.MustCompile(`^[A-Z][.)]\s+\S`)
	numberedRe = regexp.MustCompile(`^\d+[.)]\s+\S`)
	bracketRe  = regexp.MustCompile(`^\[[^\[\]]{2,60}\]$`)
	bulletRe   = regexp.MustCompile(`^[-•*]\s+[A-Z0-9]`)
)

var headingRules = []headingRule{
	// Tier 1: document / main headings.
	{1, func(l string) bool { return chapterRe.MatchString(l) }},
	{1, func(l string) bool { return romanRe.MatchString(l) && len(l) <= 80 }},
	{1, func(l string) bool { return isAllCaps(l) && len(l) >= 4 && len(l) <= 80 }},

	// Tier 2: section headings.
	{2, func(l string) bool { return !numNNNRe.MatchString(l) && numNNRe.MatchString(l) && len(l) <= 90 }},
	{2, func(l string) bool { return letteredRe.MatchString(l) && len(l) <= 80 }},
	{2, func(l string) bool { return isTitleCase(l) && wordCount(l) >= 2 && wordCount(l) <= 6 && len(l) <= 60 && !endsLikeSentence(l) }},

	// Tier 3: sub-section headings.
	{3, func(l string) bool { return numNNNRe.MatchString(l) && len(l) <= 90 }},
	{3, func(l string) bool { return bracketRe.MatchString(l) }},
	{3, func(l string) bool { return bulletRe.MatchString(l) && len(l) <= 50 && !endsLikeSentence(l) }},
	{3, func(l string) bool { return isTitleCase(l) && wordCount(l) == 1 && len(l) <= 30 }},

	// Generic fallback: short, capitalized, unpunctuated line.
	{3, func(l string) bool {
		return wordCount(l) <= 8 && len(l) <= 60 && startsUpper(l) && !endsLikeSentence(l) && !strings.Contains(l, ",")
	}},
}

// classifyLine returns the heading level for a line, or 0 for body text.
func classifyLine(line string) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0
	}
	for _, rule := range headingRules {
		if rule.match(trimmed) {
			return rule.level
		}
	}
	return 0
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			letters++
		}
	}
	return letters >= 4
}

func isTitleCase(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		// Connector words are allowed lowercase.
		if unicode.IsLetter(r) && !unicode.IsUpper(r) && !isConnector(w) {
			return false
		}
	}
	// First word must be capitalized regardless.
	first := []rune(words[0])[0]
	return unicode.IsUpper(first)
}

var connectors = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "by": true, "for": true,
	"in": true, "of": true, "on": true, "or": true, "the": true, "to": true,
	"with": true,
}

func isConnector(w string) bool {
	return connectors[strings.ToLower(strings.Trim(w, ".,:;"))]
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

var pureNumberingRe = regexp.MustCompile(`^\d+(\.\d+)*\.$`)

func endsLikeSentence(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', ',', ';', '!', '?':
		// Trailing period is fine on pure numbering like "3.1.".
		return !pureNumberingRe.MatchString(s)
	}
	return false
}
