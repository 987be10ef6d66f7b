package mapper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextFromHTML returns the visible text of an HTML document, one block per
// line, with scripts and styles removed.
func TextFromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td, th, dt, dd, pre").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			lines = append(lines, text)
		}
	})

	if len(lines) == 0 {
		text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
		if text == "" {
			text = strings.Join(strings.Fields(doc.Text()), " ")
		}
		return text, nil
	}
	return strings.Join(lines, "\n"), nil
}
