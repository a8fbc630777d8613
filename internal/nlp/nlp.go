// Package nlp is the text analysis pipeline used by requirement extraction:
// language detection, sentence segmentation, tokenization, POS tagging,
// named entities and stemming.
package nlp

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
)

// Token is one word of the analyzed text. Tag is a Penn Treebank tag and is
// empty for languages without a tagger.
type Token struct {
	Text  string
	Lemma string
	Tag   string
}

// Entity is a named entity span.
type Entity struct {
	Text  string
	Label string
}

// Document is the analysis result for one text.
type Document struct {
	Language  string
	Sentences []string
	Tokens    []Token
	Entities  []Entity
}

// Pipeline analyzes text. Implementations must be safe for concurrent use.
type Pipeline interface {
	Analyze(ctx context.Context, text string) (Document, error)
}

// snowballNames maps ISO 639-1 codes to snowball stemmer names.
var snowballNames = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"ru": "russian",
	"sv": "swedish",
	"no": "norwegian",
	"hu": "hungarian",
}

// Service is the default Pipeline: prose for English, regexp tokenization
// plus snowball stemming for the other supported languages.
type Service struct {
	detector  *Detector
	stopWords *StopWords
}

// New creates the pipeline. defaultLang is used when detection is unreliable.
func New(defaultLang string, extraStopWords []string) *Service {
	return &Service{
		detector:  NewDetector(defaultLang),
		stopWords: NewStopWords(extraStopWords),
	}
}

// StopWords exposes the stop-word set used by the pipeline.
func (s *Service) StopWords() *StopWords { return s.stopWords }

// Analyze detects the language and runs the matching pipeline.
func (s *Service) Analyze(ctx context.Context, text string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("analyze: %w", err)
	}
	lang := s.detector.Detect(text)
	if lang == "en" {
		return analyzeEnglish(text)
	}
	return analyzeGeneric(text, lang), nil
}

func analyzeEnglish(text string) (Document, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return Document{}, fmt.Errorf("prose document: %w", err)
	}

	out := Document{Language: "en"}
	for _, sent := range doc.Sentences() {
		out.Sentences = append(out.Sentences, sent.Text)
	}
	for _, tok := range doc.Tokens() {
		out.Tokens = append(out.Tokens, Token{
			Text:  tok.Text,
			Lemma: Lemma("en", tok.Text),
			Tag:   tok.Tag,
		})
	}
	for _, ent := range doc.Entities() {
		out.Entities = append(out.Entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	return out, nil
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?;]+\s+|\n+`)
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}+#]*(?:[.\-/][\p{L}\p{N}]+[+#]*)*`)
)

func analyzeGeneric(text, lang string) Document {
	out := Document{Language: lang}
	for _, s := range sentenceSplit.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out.Sentences = append(out.Sentences, s)
		}
	}
	for _, w := range wordPattern.FindAllString(text, -1) {
		out.Tokens = append(out.Tokens, Token{Text: w, Lemma: Lemma(lang, w)})
	}
	return out
}

// Tokenize splits text into words without tagging. Words keep inner
// characters common in technology names: c++, c#, node.js, ci/cd.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// Lemma returns the lowercased snowball stem of word. Unsupported languages
// and stemmer failures return the lowercased word.
func Lemma(lang, word string) string {
	lower := strings.ToLower(word)
	name, ok := snowballNames[lang]
	if !ok {
		return lower
	}
	stem, err := snowball.Stem(lower, name, true)
	if err != nil || stem == "" {
		return lower
	}
	return stem
}
