package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const maxExtractedRunes = 10000

var (
	tcoLinkRe      = regexp.MustCompile(`https?://t\.co/\S+`)
	manyNewlinesRe = regexp.MustCompile(`\n{3,}`)
	manyDotsRe     = regexp.MustCompile(`\.{3,}`)
	seeMoreRe      = regexp.MustCompile(`(?i)(…|â€¦|\.\.\.)see more$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

func cleanTwitter(text string) string {
	text = tcoLinkRe.ReplaceAllString(text, "")
	return strings.TrimSpace(manyNewlinesRe.ReplaceAllString(text, "\n\n"))
}

func cleanLinkedIn(text string) string {
	text = seeMoreRe.ReplaceAllString(strings.TrimSpace(text), "")
	text = manyDotsRe.ReplaceAllString(text, "...")
	return strings.TrimSpace(manyNewlinesRe.ReplaceAllString(text, "\n\n"))
}

func joinFacebook(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	text := strings.Join(kept, "\n\n")
	return strings.TrimSpace(manyNewlinesRe.ReplaceAllString(text, "\n\n"))
}

// cleanExtractedText схлопывает пробелы и обрезает текст до maxExtractedRunes рун.
func cleanExtractedText(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(stripMarkup(text), " "))
	runes := []rune(text)
	if len(runes) > maxExtractedRunes {
		return string(runes[:maxExtractedRunes])
	}
	return text
}

// stripMarkup убирает HTML-теги, если скрейпер вернул разметку вместо текста.
func stripMarkup(text string) string {
	if !strings.Contains(text, "<") || !strings.Contains(text, ">") {
		return text
	}
	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skip++
			case "br", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
