package services

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// maxKeyConcepts bounds the concept list attached to a query analysis
const maxKeyConcepts = 5

// KeyConceptExtractor pulls the content-bearing words out of a query using
// POS tagging. Nouns and named entities survive; stop words and short
// tokens are dropped.
type KeyConceptExtractor struct {
	stopWords map[string]bool
	minLength int
}

// NewKeyConceptExtractor creates a new key concept extractor
func NewKeyConceptExtractor() *KeyConceptExtractor {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
		"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
		"this": true, "that": true, "these": true, "those": true, "i": true, "you": true,
		"he": true, "she": true, "it": true, "we": true, "they": true, "my": true,
		"your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
		"what": true, "which": true, "who": true, "how": true, "when": true, "where": true,
	}

	return &KeyConceptExtractor{
		stopWords: stopWords,
		minLength: 3,
	}
}

// Extract returns up to maxKeyConcepts concepts from the text, in order of
// first appearance
func (e *KeyConceptExtractor) Extract(text string) ([]string, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var concepts []string

	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if e.shouldSkipWord(word, tok.Tag) || seen[word] {
			continue
		}
		seen[word] = true
		concepts = append(concepts, word)
		if len(concepts) == maxKeyConcepts {
			break
		}
	}

	// Named entities take priority if we have room left
	for _, ent := range doc.Entities() {
		if len(concepts) == maxKeyConcepts {
			break
		}
		word := strings.ToLower(ent.Text)
		if len(word) >= e.minLength && !seen[word] {
			seen[word] = true
			concepts = append(concepts, word)
		}
	}

	return concepts, nil
}

// shouldSkipWord filters stop words, short tokens, non-alphabetic tokens and
// non-content POS tags
func (e *KeyConceptExtractor) shouldSkipWord(word, posTag string) bool {
	if len(word) < e.minLength {
		return true
	}
	if e.stopWords[word] {
		return true
	}

	for _, r := range word {
		if !unicode.IsLetter(r) && r != '-' {
			return true
		}
	}

	// Keep nouns, proper nouns and adjectives
	switch {
	case strings.HasPrefix(posTag, "NN"):
		return false
	case strings.HasPrefix(posTag, "JJ"):
		return false
	default:
		return true
	}
}
