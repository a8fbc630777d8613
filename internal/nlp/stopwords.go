package nlp

import (
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/french"
	"github.com/kljensen/snowball/hungarian"
	"github.com/kljensen/snowball/norwegian"
	"github.com/kljensen/snowball/russian"
	"github.com/kljensen/snowball/spanish"
	"github.com/kljensen/snowball/swedish"
)

var stopWordFuncs = map[string]func(string) bool{
	"en": english.IsStopWord,
	"es": spanish.IsStopWord,
	"fr": french.IsStopWord,
	"ru": russian.IsStopWord,
	"sv": swedish.IsStopWord,
	"no": norwegian.IsStopWord,
	"hu": hungarian.IsStopWord,
}

// Job-posting filler that carries no requirement signal in any language.
var postingFiller = []string{
	"experience", "years", "year", "required", "requirements", "preferred", "plus",
	"strong", "ability", "excellent", "good", "knowledge", "skills", "work", "working",
	"team", "including", "etc", "must", "will", "role", "candidate", "position", "job",
}

// StopWords combines the snowball per-language lists with extra words that
// apply to every language.
type StopWords struct {
	extra map[string]struct{}
}

// NewStopWords creates the set with the given extra words.
func NewStopWords(extra []string) *StopWords {
	s := &StopWords{extra: make(map[string]struct{}, len(extra)+len(postingFiller))}
	for _, w := range postingFiller {
		s.extra[w] = struct{}{}
	}
	for _, w := range extra {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			s.extra[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word is a stop word in lang.
func (s *StopWords) Contains(lang, word string) bool {
	w := strings.ToLower(word)
	if _, ok := s.extra[w]; ok {
		return true
	}
	if fn, ok := stopWordFuncs[lang]; ok && fn(w) {
		return true
	}
	// English stop words leak into postings written in other languages.
	return lang != "en" && english.IsStopWord(w)
}
