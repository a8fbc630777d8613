package nlp

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanHTML converts a job description pasted as HTML into plain text, one
// line per block element. Text without markup is returned unchanged.
func CleanHTML(text string) (string, error) {
	if !strings.Contains(text, "<") || !strings.Contains(text, ">") {
		return text, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer").Remove()
	doc.Find("br, p, li, div, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(doc.Text()), nil
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
