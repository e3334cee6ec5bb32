package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
)

// FAQEntry is one question with its drafted answer.
type FAQEntry struct {
	Question string
	Answer   string
}

type faqItem struct {
	Question string
	Answer   template.HTML
}

type faqPage struct {
	Business string
	Items    []faqItem
}

const faqTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Business}} - FAQs</title>
    <style>
        body { font-family: Arial, sans-serif; background: #f9f9f9; padding: 20px; }
        .accordion { background-color: #fff; border-radius: 10px; padding: 20px; box-shadow: 0 0 10px rgba(0,0,0,0.1); }
        .accordion-item { margin-bottom: 10px; }
        .accordion-header { background-color: #eee; cursor: pointer; padding: 10px; border-radius: 6px; transition: 0.3s; }
        .accordion-header:hover { background-color: #ddd; }
        .accordion-content { display: none; padding: 10px; margin-top: 5px; }
    </style>
</head>
<body>
    <h1>{{.Business}} - People Also Ask</h1>
    <div class="accordion">
{{- range $i, $item := .Items}}
        <div class="accordion-item">
            <div class="accordion-header" onclick="toggleContent('content{{$i}}')">{{$item.Question}}</div>
            <div class="accordion-content" id="content{{$i}}">{{$item.Answer}}</div>
        </div>
{{- end}}
    </div>
    <script>
        function toggleContent(id) {
            var x = document.getElementById(id);
            x.style.display = (x.style.display === "block") ? "none" : "block";
        }
    </script>
</body>
</html>
`

var faqTemplate = template.Must(template.New("faq").Parse(faqTmpl))

// RenderAnswer converts a Markdown answer to an HTML fragment. Raw HTML in
// the source is dropped.
func RenderAnswer(md string) template.HTML {
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML,
	})
	out := markdown.ToHTML([]byte(strings.TrimSpace(md)), nil, renderer)
	return template.HTML(strings.TrimSpace(string(out)))
}

// WriteFAQHTML writes a self-contained accordion page for the entries.
func WriteFAQHTML(w io.Writer, business string, entries []FAQEntry) error {
	page := faqPage{Business: business, Items: make([]faqItem, len(entries))}
	for i, e := range entries {
		page.Items[i] = faqItem{Question: e.Question, Answer: RenderAnswer(e.Answer)}
	}

	if err := faqTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render faq page: %w", err)
	}
	return nil
}

// WriteKeywords writes one keyword per line.
func WriteKeywords(w io.Writer, keywords []string) error {
	for _, kw := range keywords {
		if _, err := io.WriteString(w, kw+"\n"); err != nil {
			return fmt.Errorf("write keywords: %w", err)
		}
	}
	return nil
}
