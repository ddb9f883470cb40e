package knowledge

import (
	"strings"
	"unicode"
)

// stopWords are excluded from keyword extraction (English + common
// Indonesian, matching the bilingual corpus the store typically holds).
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "by": true, "from": true, "about": true, "as": true,
	"it": true, "its": true, "this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "we": true, "they": true,
	"my": true, "your": true, "his": true, "her": true, "our": true, "their": true,
	"what": true, "which": true, "who": true, "how": true, "when": true, "where": true,
	"can": true, "could": true, "would": true, "should": true, "will": true,
	"do": true, "does": true, "did": true, "not": true, "no": true, "so": true,
	"please": true, "me": true, "us": true,

	"apa": true, "yang": true, "saya": true, "aku": true, "kamu": true,
	"ini": true, "itu": true, "di": true, "ke": true, "dari": true,
	"dan": true, "atau": true, "dengan": true, "untuk": true, "pada": true,
	"adalah": true, "tentang": true, "bagaimana": true, "tolong": true,
	"buat": true, "buatkan": true,
}

// ExtractKeywords tokenizes text into lowercase keywords: tokens longer
// than one rune, stop words removed, deduplicated.
func ExtractKeywords(text string) map[string]bool {
	keywords := make(map[string]bool)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	for _, token := range tokens {
		if len([]rune(token)) <= 1 {
			continue
		}
		if stopWords[token] {
			continue
		}
		keywords[token] = true
	}
	return keywords
}

// KeywordList is ExtractKeywords with a stable-ish slice result for
// logging and intent payloads.
func KeywordList(text string) []string {
	set := ExtractKeywords(text)
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
