package dedup

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinSignificantWordLength is the shortest token the rule-based pass treats as significant.
const MinSignificantWordLength = 3

var (
	titlePunctuation     = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	organizerPunctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

var stopWords = map[string]struct{}{
	// articles
	"a": {}, "an": {}, "the": {},
	// conjunctions and prepositions
	"and": {}, "or": {}, "but": {}, "nor": {}, "for": {}, "yet": {}, "with": {}, "without": {},
	"at": {}, "in": {}, "on": {}, "of": {}, "to": {}, "from": {}, "by": {}, "into": {}, "onto": {},
	"via": {}, "vs": {}, "per": {}, "about": {}, "after": {}, "before": {}, "during": {},
	// common verbs
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "will": {}, "has": {},
	"have": {}, "had": {}, "can": {}, "join": {}, "come": {}, "get": {}, "see": {}, "presents": {},
	"present": {}, "featuring": {}, "feat": {},
	// pronouns and determiners
	"you": {}, "your": {}, "yours": {}, "our": {}, "ours": {}, "we": {}, "us": {}, "they": {},
	"their": {}, "them": {}, "its": {}, "his": {}, "her": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "who": {}, "what": {}, "all": {},
	// symbols
	"-": {}, "&": {}, "+": {}, "@": {},
}

// WordSet is an unordered set of normalized tokens.
type WordSet map[string]struct{}

// Sorted returns the set members in lexical order.
func (w WordSet) Sorted() []string {
	words := make([]string, 0, len(w))
	for word := range w {
		words = append(words, word)
	}

	sort.Strings(words)

	return words
}

// Intersect returns the members present in both sets.
func (w WordSet) Intersect(other WordSet) WordSet {
	small, large := w, other
	if len(small) > len(large) {
		small, large = large, small
	}

	shared := make(WordSet)

	for word := range small {
		if _, ok := large[word]; ok {
			shared[word] = struct{}{}
		}
	}

	return shared
}

func lower(s string) string {
	// Casers are stateful; one per call keeps the parallel sweep safe.
	return cases.Lower(language.Und).String(s)
}

// SignificantWords tokenizes a title into its significant words.
func SignificantWords(title string) WordSet {
	return significantWords(title, MinSignificantWordLength)
}

func significantWords(title string, minLength int) WordSet {
	words := make(WordSet)

	cleaned := titlePunctuation.ReplaceAllString(lower(title), "")

	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) < minLength {
			continue
		}

		if _, stop := stopWords[token]; stop {
			continue
		}

		words[token] = struct{}{}
	}

	return words
}

// NormalizeOrganizer lowercases an organizer and strips everything but words and single spaces.
func NormalizeOrganizer(organizer string) string {
	if organizer == "" {
		return ""
	}

	cleaned := organizerPunctuation.ReplaceAllString(lower(organizer), "")

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
}

// NormalizeTitle folds case and collapses whitespace for exact-title comparison.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(lower(title)), " ")
}
