package nlp

import "strings"

const maxPhraseWords = 4

// StopList reports stop words per language.
type StopList interface {
	Contains(lang, word string) bool
}

func isNounTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || tag == "FW"
}

func isModifierTag(tag string) bool {
	return strings.HasPrefix(tag, "JJ") || tag == "VBG"
}

// isTechToken catches names the tagger tends to mislabel: c++, c#, node.js.
func isTechToken(text string) bool {
	return strings.ContainsAny(text, "+#") || (strings.Contains(text, ".") && len(text) > 2 && !strings.HasSuffix(text, "."))
}

// NounPhrases chunks tagged tokens into noun phrases: a run of modifiers
// followed by one or more nouns. Untagged tokens (non-English pipelines) are
// grouped into runs of non-stop words instead. Phrases are returned in text
// order and may repeat.
func NounPhrases(tokens []Token, lang string, stop StopList) []string {
	var (
		out     []string
		current []Token
	)
	flush := func() {
		// Drop trailing modifiers: "experienced" alone is not a phrase.
		end := len(current)
		for end > 0 && current[end-1].Tag != "" && !isNounTag(current[end-1].Tag) && !isTechToken(current[end-1].Text) {
			end--
		}
		if end > 0 {
			words := make([]string, 0, end)
			for _, t := range current[:end] {
				words = append(words, t.Text)
			}
			if len(words) > maxPhraseWords {
				words = words[len(words)-maxPhraseWords:]
			}
			out = append(out, strings.Join(words, " "))
		}
		current = current[:0]
	}

	for _, tok := range tokens {
		switch {
		case stop != nil && stop.Contains(lang, tok.Text):
			flush()
		case tok.Tag == "":
			current = append(current, tok)
		case isNounTag(tok.Tag) || isTechToken(tok.Text):
			current = append(current, tok)
		case isModifierTag(tok.Tag):
			// A modifier after a noun starts a new phrase.
			if len(current) > 0 && isNounTag(current[len(current)-1].Tag) {
				flush()
			}
			current = append(current, tok)
		default:
			flush()
		}
	}
	flush()
	return out
}
