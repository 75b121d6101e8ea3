// Package keyword pulls a single salient term out of a shopper's query.
package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenRunes drops single letters left over from contractions ("don't" -> "t").
const minTokenRunes = 2

// StopWords is a set of lower-case words ignored by Extract.
type StopWords map[string]struct{}

// NewStopWords builds a set from words, lower-cased.
func NewStopWords(words ...string) StopWords {
	set := make(StopWords, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Contains reports whether word is a stop word.
func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

var defaultStopWords = []string{
	"i", "im", "me", "my", "we", "us", "our", "you", "your", "it", "its", "they", "them",
	"a", "an", "the", "this", "that", "these", "those", "some", "any", "one",
	"need", "needs", "want", "wants", "wanted", "show", "find", "get", "give", "buy", "purchase",
	"looking", "look", "search", "searching", "recommend", "suggest", "tell", "see", "like", "love",
	"please", "pls", "thanks", "can", "could", "would", "will", "should", "do", "does", "did",
	"is", "are", "am", "was", "were", "be", "been", "have", "has", "had",
	"for", "to", "of", "in", "on", "at", "by", "with", "from", "about", "under", "over", "below", "above",
	"and", "or", "but", "not", "no", "so", "if", "than", "then", "very", "really", "just",
	"what", "which", "where", "when", "who", "how", "there", "here",
	"something", "anything", "good", "best", "great", "nice", "new", "cheap", "cheapest",
	"product", "products", "item", "items", "store", "shop", "stuff", "thing", "things",
	"don", "doesn", "isn", "ll", "re", "ve",
}

// DefaultStopWords returns the English stop-word set used for shopping queries.
func DefaultStopWords() StopWords {
	return NewStopWords(defaultStopWords...)
}

// Extract lower-cases query, splits it on anything but letters and digits,
// drops stop words and returns the longest remaining token. Ties go to the
// first occurrence. It reports false when no token remains.
func Extract(query string, stopWords StopWords) (string, bool) {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	best, bestLen := "", 0
	for _, tok := range tokens {
		n := utf8.RuneCountInString(tok)
		if n < minTokenRunes || stopWords.Contains(tok) {
			continue
		}
		if n > bestLen {
			best, bestLen = tok, n
		}
	}
	return best, bestLen > 0
}

// Forms returns keyword plus its likely singular forms, so "shoes" also
// matches "shoe" and "batteries" matches "battery". Stems shorter than
// three letters are not produced.
func Forms(keyword string) []string {
	forms := []string{keyword}
	add := func(stem string) {
		if utf8.RuneCountInString(stem) >= 3 {
			forms = append(forms, stem)
		}
	}

	switch {
	case strings.HasSuffix(keyword, "ies"):
		add(strings.TrimSuffix(keyword, "ies") + "y")
	case strings.HasSuffix(keyword, "sses"), strings.HasSuffix(keyword, "ches"),
		strings.HasSuffix(keyword, "shes"), strings.HasSuffix(keyword, "xes"),
		strings.HasSuffix(keyword, "zes"):
		add(strings.TrimSuffix(keyword, "es"))
	case strings.HasSuffix(keyword, "ss"):
	case strings.HasSuffix(keyword, "s"):
		add(strings.TrimSuffix(keyword, "s"))
	}
	return forms
}
