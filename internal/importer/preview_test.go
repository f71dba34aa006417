package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/reelistapp/reelist/internal/model"
)

func TestInspect(t *testing.T) {
	var rows []string
	rows = append(rows, "Movie Title,Watched,Began")
	for i := 0; i < 10; i++ {
		rows = append(rows, "Some Film,yes,2024-01-01")
	}

	insp, err := Inspect([]byte(strings.Join(rows, "\n")))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if insp.RowCount != 10 {
		t.Errorf("RowCount = %d, want 10", insp.RowCount)
	}
	if len(insp.Sample) != maxSampleRows {
		t.Errorf("len(Sample) = %d, want %d", len(insp.Sample), maxSampleRows)
	}
	if insp.Mapping[FieldTitle] != "Movie Title" {
		t.Errorf("detected title = %q, want Movie Title", insp.Mapping[FieldTitle])
	}
	if insp.Mapping[FieldStartDate] != "Began" {
		t.Errorf("detected start date = %q, want Began", insp.Mapping[FieldStartDate])
	}
}

func TestInspect_DecodeError(t *testing.T) {
	_, err := Inspect([]byte(""))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Inspect() error = %v, want *DecodeError", err)
	}
}

func TestAnalyze(t *testing.T) {
	data := strings.Join([]string{
		"title,status",
		"Inception,watched", // merges onto the existing entry
		"Dark,watching",     // creates
		"DARK,watched",      // merges onto the create above
		",watched",          // skipped
	}, "\n")

	existing := []model.Entry{{Title: "Inception"}}
	m := Mapping{FieldTitle: "title", FieldStatus: "status"}

	preview, err := Analyze([]byte(data), m, existing, Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	want := Preview{Total: 4, Creates: 1, Merges: 2, Skipped: 1}
	if *preview != want {
		t.Errorf("Analyze() = %+v, want %+v", *preview, want)
	}
}

func TestAnalyze_InvalidMapping(t *testing.T) {
	_, err := Analyze([]byte("title\nInception\n"), Mapping{}, nil, Options{})
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("Analyze() error = %v, want *MappingError", err)
	}
}
