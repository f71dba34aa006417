package importer

import (
	"strings"

	"github.com/reelistapp/reelist/internal/model"
)

// maxSampleRows caps how many raw rows an inspection returns.
const maxSampleRows = 5

// Inspection is the result of decoding a file without importing it:
// the headers, a detected starting-point mapping for the user to edit,
// and a small sample of rows for the mapping-review screen.
type Inspection struct {
	Headers  []string `json:"headers"`
	Mapping  Mapping  `json:"mapping"`
	RowCount int      `json:"rowCount"`
	Sample   []Row    `json:"sample"`
}

// Inspect decodes the file and guesses a column mapping. Read-only.
func Inspect(data []byte) (*Inspection, error) {
	table, err := Decode(data)
	if err != nil {
		return nil, err
	}

	sample := table.Rows
	if len(sample) > maxSampleRows {
		sample = sample[:maxSampleRows]
	}

	return &Inspection{
		Headers:  table.Headers,
		Mapping:  DetectMapping(table.Headers),
		RowCount: len(table.Rows),
		Sample:   sample,
	}, nil
}

// Preview summarizes what an import run would do, without mutating
// anything: how many rows would create new entries, merge onto existing
// ones, or be skipped for a blank title.
type Preview struct {
	Total   int `json:"total"`
	Creates int `json:"creates"`
	Merges  int `json:"merges"`
	Skipped int `json:"skipped"`
}

// Analyze performs a read-only dry pass of the normalizer over the file,
// matching titles against the given entries the same way the reconciler
// will, including titles introduced earlier in the same file.
func Analyze(data []byte, m Mapping, entries []model.Entry, opts Options) (*Preview, error) {
	table, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(table.Headers); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[titleKey(e.Title)] = true
	}

	p := &Preview{Total: len(table.Rows)}
	for _, row := range table.Rows {
		intent := NormalizeRow(row, m, opts)
		if intent == nil {
			p.Skipped++
			continue
		}
		key := titleKey(intent.Title)
		if known[key] {
			p.Merges++
		} else {
			p.Creates++
			known[key] = true
		}
	}

	return p, nil
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
