package pipeline

import (
	"regexp"
	"strings"
)

var paragraphSplit = regexp.MustCompile(`\n\n+`)

// WordCount counts whitespace-delimited tokens. A coarse proxy for length,
// but it matches what the reviewer model is instructed to count.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ParagraphCount counts blocks separated by blank lines.
func ParagraphCount(s string) int {
	count := 0
	for _, p := range paragraphSplit.Split(strings.TrimSpace(s), -1) {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count
}

// stripCodeFence removes optional surrounding markdown code-fence markers
// from a model response.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// splitTokens re-tokenizes text on single spaces for progressive reveal.
// Each token keeps its trailing space except the last, so concatenating
// them reconstructs the text exactly.
func splitTokens(text string) []string {
	if text == "" {
		return nil
	}
	words := strings.Split(text, " ")
	tokens := make([]string, len(words))
	for i, w := range words {
		if i == len(words)-1 {
			tokens[i] = w
		} else {
			tokens[i] = w + " "
		}
	}
	return tokens
}
