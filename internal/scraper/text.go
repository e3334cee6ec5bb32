package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText returns the non-empty text of h1, h2 and p elements in
// document order, ignoring page chrome. maxBlocks <= 0 means no cap.
func ExtractText(body []byte, maxBlocks int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, header, footer, nav, form").Remove()

	var blocks []string
	doc.Find("h1, h2, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return true
		}
		blocks = append(blocks, text)
		return maxBlocks <= 0 || len(blocks) < maxBlocks
	})
	return blocks, nil
}
