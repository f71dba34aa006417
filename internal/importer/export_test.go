package importer

import (
	"strings"
	"testing"

	"github.com/reelistapp/reelist/internal/model"
)

func TestExportCSV(t *testing.T) {
	entries := []model.Entry{
		{
			Title:     "Inception",
			MediaType: model.MediaMovie,
			CatalogID: 27205,
			Rating:    model.RatingLoved,
			Watches: []model.Watch{
				{Status: model.StatusFinished, StartDate: "2024-01-05", EndDate: "2024-01-05", Platform: "Netflix"},
				{Status: model.StatusFinished, StartDate: "2024-06-01", EndDate: "2024-06-01", Platform: "Hulu"},
			},
		},
		{
			Title:     "Dark",
			MediaType: model.MediaTV,
			// No watches: exported as a single planned row.
		},
	}

	table, err := Decode(ExportCSV(entries))
	if err != nil {
		t.Fatalf("Decode(export) error = %v", err)
	}

	// One row per watch plus one planned row for the watchless entry.
	if len(table.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(table.Rows))
	}

	first := table.Rows[0]
	if first["title"] != "Inception" || first["status"] != "finished" {
		t.Errorf("row 1 = %v", first)
	}
	if first["catalogId"] != "27205" || first["rating"] != "loved" {
		t.Errorf("row 1 catalog/rating = %q/%q", first["catalogId"], first["rating"])
	}

	planned := table.Rows[2]
	if planned["title"] != "Dark" || planned["status"] != "planned" {
		t.Errorf("watchless row = %v", planned)
	}
	if planned["startDate"] != "" || planned["catalogId"] != "" {
		t.Errorf("watchless row carries dates or catalog id: %v", planned)
	}
}

// An exported file must import cleanly: every export column name is a
// recognized synonym, so detection rebinds all of them.
func TestExportCSV_RoundTripsThroughDetection(t *testing.T) {
	entries := []model.Entry{{
		Title:     "Inception",
		MediaType: model.MediaMovie,
		Watches:   []model.Watch{{Status: model.StatusFinished, StartDate: "2024-01-05"}},
	}}

	table, err := Decode(ExportCSV(entries))
	if err != nil {
		t.Fatalf("Decode(export) error = %v", err)
	}

	m := DetectMapping(table.Headers)
	for _, field := range []Field{
		FieldTitle, FieldMediaType, FieldStatus, FieldStartDate,
		FieldEndDate, FieldPlatform, FieldNotes, FieldRating, FieldCatalogID,
	} {
		if _, ok := m[field]; !ok {
			t.Errorf("field %s not detected from export headers %v", field, table.Headers)
		}
	}
	if err := m.Validate(table.Headers); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestExportCSV_QuotesSpecialCharacters(t *testing.T) {
	entries := []model.Entry{{
		Title:     `Lock, "Stock"`,
		MediaType: model.MediaMovie,
		Watches: []model.Watch{{
			Status: model.StatusFinished,
			Notes:  "line one\nline two",
		}},
	}}

	out := string(ExportCSV(entries))
	if !strings.Contains(out, `"Lock, ""Stock"""`) {
		t.Errorf("title not quote-escaped:\n%s", out)
	}

	table, err := Decode([]byte(out))
	if err != nil {
		t.Fatalf("Decode(export) error = %v", err)
	}
	if got := table.Rows[0]["notes"]; got != "line one\nline two" {
		t.Errorf("notes = %q, want embedded newline preserved", got)
	}
}
