package requirement

import (
	"fmt"
	"regexp"
	"strings"
)

// Rules is the lexicon driving extraction. Every list can be replaced from
// configuration without code changes.
type Rules struct {
	DefaultLanguage       string
	SkillAnchors          []string
	YearsPatterns         []string
	EducationIndicators   []string
	EducationPhrases      []string
	LanguageLexicon       []string
	CertificationAnchors  []string
	CertificationAcronyms []string
	AnchorWindow          int
	KeywordTopK           int
	MinKeywordLength      int
}

// DefaultRules returns the built-in English-first lexicon.
func DefaultRules() Rules {
	return Rules{
		DefaultLanguage: "en",
		SkillAnchors: []string{
			"experience in", "experience with", "knowledge of", "proficient in", "proficient with",
			"proficiency in", "familiar with", "familiarity with", "expertise in", "skilled in",
			"skills in", "background in", "understanding of", "hands-on experience with",
			"working knowledge of", "strong knowledge of", "competence in",
			"experiencia en", "experiencia con", "conocimientos de", "expérience en", "connaissance de",
			"опыт работы с", "знание",
		},
		YearsPatterns: []string{
			`(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`,
			`(\d{1,2})\s*\+?\s*(?:años|ans|лет|года|год|år|év)`,
			`(?:minimum|at least|min\.?)\s+(?:of\s+)?(\d{1,2})\s+(?:years?|yrs?)`,
		},
		EducationIndicators: []string{
			"degree", "bachelor", "master", "phd", "ph.d", "doctorate", "diploma",
			"certification", "graduated", "graduate", "university", "college", "bsc", "msc", "mba",
		},
		EducationPhrases: []string{
			"degree required", "degree in", "degree or equivalent", "bs/ms", "ba/bs", "ms/phd",
			"educational background", "academic background",
		},
		LanguageLexicon: []string{
			"English", "Spanish", "French", "German", "Italian", "Portuguese", "Dutch", "Russian",
			"Ukrainian", "Polish", "Czech", "Swedish", "Norwegian", "Danish", "Finnish", "Hungarian",
			"Romanian", "Greek", "Turkish", "Arabic", "Hebrew", "Hindi", "Bengali", "Urdu",
			"Chinese", "Mandarin", "Cantonese", "Japanese", "Korean", "Vietnamese", "Thai",
			"Indonesian", "Malay", "Tagalog", "Swahili",
			"Español", "Français", "Deutsch", "Русский", "Svenska", "Norsk", "Magyar",
		},
		CertificationAnchors: []string{"certified", "certification", "certificate"},
		CertificationAcronyms: []string{
			"PMP", "CISSP", "CISM", "CISA", "CCNA", "CCNP", "CKA", "CKAD", "CKS", "CPA", "CFA",
			"OSCP", "CEH", "ITIL", "PRINCE2", "CSM", "PSM", "RHCE", "RHCSA", "MCSE", "TOGAF",
		},
		AnchorWindow:     100,
		KeywordTopK:      20,
		MinKeywordLength: 4,
	}
}

// Merge overrides the defaults with every non-empty field of o.
func (r Rules) Merge(o Rules) Rules {
	if o.DefaultLanguage != "" {
		r.DefaultLanguage = o.DefaultLanguage
	}
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	pick(&r.SkillAnchors, o.SkillAnchors)
	pick(&r.YearsPatterns, o.YearsPatterns)
	pick(&r.EducationIndicators, o.EducationIndicators)
	pick(&r.EducationPhrases, o.EducationPhrases)
	pick(&r.LanguageLexicon, o.LanguageLexicon)
	pick(&r.CertificationAnchors, o.CertificationAnchors)
	pick(&r.CertificationAcronyms, o.CertificationAcronyms)
	if o.AnchorWindow > 0 {
		r.AnchorWindow = o.AnchorWindow
	}
	if o.KeywordTopK > 0 {
		r.KeywordTopK = o.KeywordTopK
	}
	if o.MinKeywordLength > 0 {
		r.MinKeywordLength = o.MinKeywordLength
	}
	return r
}

type compiledRules struct {
	Rules
	years       []*regexp.Regexp
	skillAnchor *regexp.Regexp
	eduIndicate *regexp.Regexp
	eduPhrase   *regexp.Regexp
	certAround  []*regexp.Regexp
	certAfter   []*regexp.Regexp
	certAcronym *regexp.Regexp
	languages   map[string]string
}

// alternation builds a case-insensitive word-bounded alternation of literals.
func alternation(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(quoted, "|") + `)(?:[^\p{L}\p{N}]|$)`)
}

func (r Rules) compile() (*compiledRules, error) {
	c := &compiledRules{
		Rules:       r,
		skillAnchor: alternation(r.SkillAnchors),
		eduIndicate: alternation(r.EducationIndicators),
		eduPhrase:   alternation(r.EducationPhrases),
		languages:   make(map[string]string, len(r.LanguageLexicon)),
	}
	for _, p := range r.YearsPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("years pattern %q: %w", p, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("years pattern %q: needs a capture group", p)
		}
		c.years = append(c.years, re)
	}
	for _, a := range r.CertificationAnchors {
		q := regexp.QuoteMeta(strings.TrimSpace(a))
		if q == "" {
			continue
		}
		c.certAround = append(c.certAround, regexp.MustCompile(
			`((?:[A-Z][\w+\-]*\s+){0,3})\b(?i:`+q+`)s?\b((?:\s+[A-Z][\w+\-]*){0,4})`))
		c.certAfter = append(c.certAfter, regexp.MustCompile(
			`(?i)\b`+q+`s?\s+(?:in|of|such as|like)\s+([^.;:\n(]{2,60})`))
	}
	if len(r.CertificationAcronyms) > 0 {
		quoted := make([]string, len(r.CertificationAcronyms))
		for i, a := range r.CertificationAcronyms {
			quoted[i] = regexp.QuoteMeta(a)
		}
		c.certAcronym = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	for _, l := range r.LanguageLexicon {
		c.languages[strings.ToLower(l)] = l
	}
	return c, nil
}
