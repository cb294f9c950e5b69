package badger

import "strings"

// Stop words excluded from the full-text index
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenize splits text into words, lowercases, trims punctuation, and removes stop words.
// Interior colons split the word: the posting keys use ':' as separator, so a
// term carrying one would prefix-collide with shorter terms.
func tokenize(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		for _, part := range strings.Split(cleaned, ":") {
			if part != "" && !stopWords[part] {
				filtered = append(filtered, part)
			}
		}
	}

	return filtered
}

// termFrequencies counts occurrences of each distinct term in the token stream.
func termFrequencies(tokens []string) map[string]uint32 {
	freqs := make(map[string]uint32, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}
	return freqs
}
