package report

import (
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
)

// Document is a titled run of plain paragraphs.
type Document struct {
	Title      string
	Paragraphs []string
}

// SaveDOCX writes doc to path as a Word document. The title becomes a
// level 0 (Title style) heading; paragraph text containing newlines is split
// into separate paragraphs.
func SaveDOCX(path string, doc Document) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new docx: %w", err)
	}

	if doc.Title != "" {
		if _, err := d.AddHeading(doc.Title, 0); err != nil {
			return fmt.Errorf("docx title: %w", err)
		}
	}
	for _, para := range doc.Paragraphs {
		for _, line := range strings.Split(para, "\n") {
			d.AddParagraph(strings.TrimRight(line, "\r"))
		}
	}

	if err := d.SaveTo(path); err != nil {
		return fmt.Errorf("save docx %s: %w", path, err)
	}
	return nil
}
