// Package importer implements the bulk-import reconciliation engine: it
// decodes an arbitrary delimited-text file, guesses a column mapping,
// normalizes each row into a typed intent, and merges the intents into a
// list's persisted entries without duplicating titles.
//
// The package has no HTTP dependencies and is driven entirely through the
// Store and Catalog capability interfaces, so it can be hosted by a batch
// job or a service endpoint alike.
package importer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"
)

// Row is one data row, keyed by cleaned header name.
// Missing trailing fields read as the empty string.
type Row map[string]string

// Table is the decoded form of an uploaded file: the ordered header list
// plus the ordered data rows.
type Table struct {
	Headers []string
	Rows    []Row
}

// Decode parses raw delimited text into a Table.
//
// The decoder is quote-aware with doubled-quote escaping, tolerates CRLF
// and LF line endings and short rows, and skips blank lines. It returns a
// *DecodeError when no data rows remain after decoding, which covers both
// empty files and header-only files.
func Decode(data []byte) (*Table, error) {
	data = sanitizeUTF8(stripBOM(data))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &DecodeError{Reason: err.Error()}
	}

	// Drop blank lines before splitting header from data.
	kept := records[:0]
	for _, rec := range records {
		if !isEmptyRow(rec) {
			kept = append(kept, rec)
		}
	}

	if len(kept) == 0 {
		return nil, &DecodeError{Reason: "empty file"}
	}

	headers := make([]string, len(kept[0]))
	for i, h := range kept[0] {
		headers[i] = CleanCell(h)
	}

	rows := make([]Row, 0, len(kept)-1)
	for _, rec := range kept[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &DecodeError{Reason: "no data rows after header"}
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// stripBOM removes a leading UTF-8 byte order mark (common in files saved
// by Excel on Windows).
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune
// so the CSV reader never chokes on mixed encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func isEmptyRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="..."), and stray
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
