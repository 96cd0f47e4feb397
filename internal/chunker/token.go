package chunker

// CharsPerToken is the fixed estimator constant. Every size decision in the
// pipeline goes through EstimateTokens so chunk and page continuity math stays
// comparable across calls.
const CharsPerToken = 4

// EstimateTokens approximates token count as ceil(len/CharsPerToken).
// Exact tokenization is not required; the budget only needs one consistent
// estimator.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + CharsPerToken - 1) / CharsPerToken
}
