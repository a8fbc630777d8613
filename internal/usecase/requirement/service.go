// Package requirement extracts structured hiring requirements from free job
// text. Extraction is best effort: every sub-step degrades to its empty value.
package requirement

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	domreq "github.com/kailas-cloud/shortlist/internal/domain/requirement"
	"github.com/kailas-cloud/shortlist/internal/logger"
	"github.com/kailas-cloud/shortlist/internal/nlp"
)

// Service is the requirement extractor.
type Service struct {
	analyzer Analyzer
	stop     nlp.StopList
	rules    *compiledRules
	failures FailureCounter
	logger   *zap.Logger
}

// New compiles rules and creates the extractor. failures can be nil.
func New(analyzer Analyzer, stop nlp.StopList, rules Rules, failures FailureCounter, l *zap.Logger) (*Service, error) {
	compiled, err := rules.compile()
	if err != nil {
		return nil, fmt.Errorf("compile extraction rules: %w", err)
	}
	return &Service{
		analyzer: analyzer,
		stop:     stop,
		rules:    compiled,
		failures: failures,
		logger:   l,
	}, nil
}

// Extract parses jobText into a JobRequirement. It never fails: a broken
// sub-step leaves its fields empty and is logged.
func (s *Service) Extract(ctx context.Context, jobText string) domreq.JobRequirement {
	log := logger.FromContextOr(ctx, s.logger)
	req := domreq.Empty()
	req.Language = s.rules.DefaultLanguage

	text := jobText
	s.step(log, "html", func() error {
		clean, err := nlp.CleanHTML(jobText)
		if err != nil {
			return err
		}
		text = clean
		return nil
	})

	var doc nlp.Document
	analyzed := false
	s.step(log, "analyze", func() error {
		d, err := s.analyzer.Analyze(ctx, text)
		if err != nil {
			return err
		}
		doc, analyzed = d, true
		return nil
	})
	if !analyzed {
		doc = fallbackDocument(text, s.rules.DefaultLanguage)
	}
	if doc.Language != "" {
		req.Language = doc.Language
	}

	s.step(log, "years", func() error {
		req.YearsExperience = s.years(strings.ToLower(text))
		return nil
	})

	var ranked []string
	s.step(log, "keywords", func() error {
		ranked = s.rankTerms(doc)
		if len(ranked) > s.rules.KeywordTopK {
			req.Keywords = ranked[:s.rules.KeywordTopK]
		} else if ranked != nil {
			req.Keywords = ranked
		}
		return nil
	})

	s.step(log, "skills", func() error {
		req.Skills = s.skills(text, doc, ranked)
		return nil
	})

	s.step(log, "education", func() error {
		mentioned, level := s.education(text, doc)
		req.SetEducation(mentioned, level)
		return nil
	})

	s.step(log, "languages", func() error {
		req.Languages = s.languages(doc)
		return nil
	})

	s.step(log, "certifications", func() error {
		req.Certifications = s.certifications(text, doc.Language)
		return nil
	})

	return req
}

func (s *Service) step(log *zap.Logger, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("Requirement extraction step panicked", zap.String("step", name), zap.Any("panic", r))
			s.fail(name)
		}
	}()
	if err := fn(); err != nil {
		log.Warn("Requirement extraction step failed", zap.String("step", name), zap.Error(err))
		s.fail(name)
	}
}

func (s *Service) fail(step string) {
	if s.failures != nil {
		s.failures.Inc(step)
	}
}

// fallbackDocument is used when the NLP pipeline fails: untagged tokens,
// the whole text as one sentence.
func fallbackDocument(text, lang string) nlp.Document {
	doc := nlp.Document{Language: lang, Sentences: []string{text}}
	for _, w := range nlp.Tokenize(text) {
		doc.Tokens = append(doc.Tokens, nlp.Token{Text: w, Lemma: nlp.Lemma(lang, w)})
	}
	return doc
}

func (s *Service) years(lower string) int {
	best := 0
	for _, re := range s.rules.years {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if len(m) < 2 || m[1] == "" {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil && n > best {
				best = n
			}
		}
	}
	return best
}

// dedup collects strings case-insensitively in first-seen order.
type dedup struct {
	seen map[string]struct{}
	out  []string
}

func newDedup() *dedup { return &dedup{seen: map[string]struct{}{}, out: []string{}} }

func (d *dedup) add(v string) bool {
	v = strings.Trim(strings.TrimSpace(v), ",;:-()")
	key := strings.ToLower(v)
	if key == "" {
		return false
	}
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	d.out = append(d.out, v)
	return true
}

var fragmentEnd = regexp.MustCompile(`[.;!?](?:\s|$)|\n`)

func (s *Service) skills(text string, doc nlp.Document, ranked []string) []string {
	found := newDedup()

	if s.rules.skillAnchor != nil {
		offsets := locate(text, doc.Tokens)
		for _, m := range s.rules.skillAnchor.FindAllStringSubmatchIndex(text, -1) {
			start := m[3]
			end := start + s.rules.AnchorWindow
			if end > len(text) {
				end = len(text)
			}
			for end < len(text) && !utf8.RuneStart(text[end]) {
				end--
			}
			if loc := fragmentEnd.FindStringIndex(text[start:end]); loc != nil {
				end = start + loc[0]
			}
			var frag []nlp.Token
			for i, tok := range doc.Tokens {
				if offsets[i] >= start && offsets[i]+len(tok.Text) <= end {
					frag = append(frag, tok)
				}
			}
			for _, p := range nlp.NounPhrases(frag, doc.Language, s.stop) {
				found.add(p)
			}
		}
	}

	added := 0
	for _, term := range ranked {
		if added >= s.rules.KeywordTopK {
			break
		}
		if found.add(term) {
			added++
		}
	}
	return found.out
}

// locate maps each token to its byte offset in text, or -1 when the token
// text does not appear verbatim.
func locate(text string, tokens []nlp.Token) []int {
	offsets := make([]int, len(tokens))
	cursor := 0
	for i, tok := range tokens {
		j := -1
		if tok.Text != "" {
			j = strings.Index(text[cursor:], tok.Text)
		}
		if j < 0 {
			offsets[i] = -1
			continue
		}
		offsets[i] = cursor + j
		cursor += j + len(tok.Text)
	}
	return offsets
}

type term struct {
	surface string
	count   int
	first   int
}

// rankTerms counts 1-3 word n-grams of content words by lemma and returns
// their surface forms by descending frequency, ties by first occurrence.
func (s *Service) rankTerms(doc nlp.Document) []string {
	terms := map[string]*term{}
	order := 0
	var run []nlp.Token

	flush := func() {
		for i := range run {
			for n := 1; n <= 3 && i+n <= len(run); n++ {
				lemmas := make([]string, n)
				words := make([]string, n)
				for k, tok := range run[i : i+n] {
					lemmas[k] = tok.Lemma
					if lemmas[k] == "" {
						lemmas[k] = strings.ToLower(tok.Text)
					}
					words[k] = strings.ToLower(tok.Text)
				}
				key := strings.Join(lemmas, " ")
				t, ok := terms[key]
				if !ok {
					t = &term{surface: strings.Join(words, " "), first: order}
					terms[key] = t
					order++
				}
				t.count++
			}
		}
		run = run[:0]
	}

	for _, tok := range doc.Tokens {
		if s.contentWord(tok, doc.Language) {
			run = append(run, tok)
			continue
		}
		flush()
	}
	flush()

	list := make([]*term, 0, len(terms))
	for _, t := range terms {
		if utf8.RuneCountInString(t.surface) >= s.rules.MinKeywordLength {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].first < list[j].first
	})

	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.surface
	}
	return out
}

func (s *Service) contentWord(tok nlp.Token, lang string) bool {
	first, _ := utf8.DecodeRuneInString(tok.Text)
	if !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return false
	}
	hasLetter := false
	for _, r := range tok.Text {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	return s.stop == nil || !s.stop.Contains(lang, tok.Text)
}

func (s *Service) education(text string, doc nlp.Document) (bool, domreq.Level) {
	sentences := doc.Sentences
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	mentioned := false
	level := domreq.LevelNone
	for _, sent := range sentences {
		hit := (s.rules.eduIndicate != nil && s.rules.eduIndicate.MatchString(sent)) ||
			(s.rules.eduPhrase != nil && s.rules.eduPhrase.MatchString(sent))
		if !hit {
			continue
		}
		mentioned = true
		if l := domreq.LevelFromText(sent); l > level {
			level = l
		}
	}
	if mentioned && level == domreq.LevelNone {
		level = domreq.LevelOther
	}
	return mentioned, level
}

func (s *Service) languages(doc nlp.Document) []string {
	found := newDedup()
	for _, ent := range doc.Entities {
		if name, ok := s.rules.languages[strings.ToLower(strings.TrimSpace(ent.Text))]; ok {
			found.add(name)
		}
	}
	for _, tok := range doc.Tokens {
		if name, ok := s.rules.languages[strings.ToLower(tok.Text)]; ok {
			found.add(name)
		}
	}
	return found.out
}

var listSplit = regexp.MustCompile(`\s*(?:,|/|\bor\b|\band\b)\s*`)

func (s *Service) certifications(text, lang string) []string {
	found := newDedup()

	for _, re := range s.rules.certAround {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if strings.TrimSpace(m[1]) == "" && strings.TrimSpace(m[2]) == "" {
				continue
			}
			found.add(s.trimLeadingStopWords(m[0], lang))
		}
	}
	for _, re := range s.rules.certAfter {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			for _, part := range listSplit.Split(m[1], -1) {
				part = s.trimLeadingStopWords(part, lang)
				if utf8.RuneCountInString(part) >= 2 {
					found.add(part)
				}
			}
		}
	}
	if s.rules.certAcronym != nil {
		for _, m := range s.rules.certAcronym.FindAllStringSubmatch(text, -1) {
			found.add(m[1])
		}
	}
	return found.out
}

func (s *Service) trimLeadingStopWords(phrase, lang string) string {
	words := strings.Fields(phrase)
	for len(words) > 1 && s.stop != nil && s.stop.Contains(lang, words[0]) {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
