package problem

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// previewLen caps rendered descriptions so they fit in a Discord embed.
const previewLen = 1500

var blankLines = regexp.MustCompile(`\n\s*\n`)

// RenderDescription converts a problem's HTML description into plain text
// with lightweight markdown markup, truncated to an embed-sized preview.
// Expensive; call once per problem at fetch time, never per display.
func RenderDescription(html string) string {
	if strings.TrimSpace(html) == "" {
		return "No description available."
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "No description available."
	}

	doc.Find("sup").Each(func(_ int, s *goquery.Selection) {
		s.SetText("^" + s.Text())
	})
	doc.Find("code").Each(func(_ int, s *goquery.Selection) {
		s.SetText("`" + s.Text() + "`")
	})
	doc.Find("em").Each(func(_ int, s *goquery.Selection) {
		s.SetText("*" + s.Text() + "*")
	})
	doc.Find("strong").Each(func(_ int, s *goquery.Selection) {
		s.SetText("**" + s.Text() + "**")
	})

	text := strings.TrimSpace(doc.Text())
	text = blankLines.ReplaceAllString(text, "\n\n")

	if runes := []rune(text); len(runes) > previewLen {
		return string(runes[:previewLen]) + "..."
	}
	return text
}
