package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/rankrocket/internal/storage"
)

// Summary contains aggregated figures over a set of ledger records.
type Summary struct {
	TotalEntries    int
	Runs            int
	Clients         map[string]int
	Keywords        map[string]int
	AvgAnswerLength int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// GenerateSummary processes FAQ ledger records into summary figures.
func GenerateSummary(records []*storage.FAQRecord) Summary {
	s := Summary{
		Clients:  make(map[string]int),
		Keywords: make(map[string]int),
	}

	if len(records) == 0 {
		return s
	}

	s.StartTime = records[0].CreatedAt
	s.EndTime = records[0].CreatedAt

	runs := make(map[string]struct{})
	answerChars := 0
	for _, r := range records {
		s.TotalEntries++
		runs[r.RunID] = struct{}{}
		if r.Client != "" {
			s.Clients[r.Client]++
		}
		if r.Keyword != "" {
			s.Keywords[r.Keyword]++
		}
		answerChars += len([]rune(r.Answer))

		if r.CreatedAt.Before(s.StartTime) {
			s.StartTime = r.CreatedAt
		}
		if r.CreatedAt.After(s.EndTime) {
			s.EndTime = r.CreatedAt
		}
	}

	s.Runs = len(runs)
	s.AvgAnswerLength = answerChars / s.TotalEntries
	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

const textTmpl = `FAQ History Summary
-------------------
Time:           {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Entries:        {{.TotalEntries}} across {{.Runs}} runs
Avg answer:     {{.AvgAnswerLength}} chars

Clients:
{{- range $name, $count := .Clients}}
  {{$name}}: {{$count}}
{{- else}}
  None
{{- end}}

Keywords:
{{- range $kw, $count := .Keywords}}
  {{$kw}}: {{$count}}
{{- else}}
  None
{{- end}}
`

var textTemplate = template.Must(template.New("textSummary").Parse(textTmpl))

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	if err := textTemplate.Execute(w, summary); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}
