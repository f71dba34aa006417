package importer

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/reelistapp/reelist/internal/model"
)

// exportColumns is the fixed column layout of the export format. The
// import synonym tables recognize every column name here, so a file
// exported from one list can be imported into another unchanged.
var exportColumns = []string{
	"catalogId",
	"title",
	"mediaType",
	"status",
	"startDate",
	"endDate",
	"platform",
	"notes",
	"rating",
}

// ExportCSV renders entries as delimited text: one row per watch, or a
// single planned row for an entry with no watches. Fields containing a
// comma, quote, or newline are quote-wrapped with internal quotes
// doubled, per standard CSV rules.
func ExportCSV(entries []model.Entry) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write(exportColumns)

	for _, e := range entries {
		if len(e.Watches) == 0 {
			_ = w.Write(exportRow(e, model.Watch{Status: model.StatusPlanned}))
			continue
		}
		for _, watch := range e.Watches {
			_ = w.Write(exportRow(e, watch))
		}
	}

	w.Flush()
	return buf.Bytes()
}

func exportRow(e model.Entry, watch model.Watch) []string {
	catalogID := ""
	if e.CatalogID > 0 {
		catalogID = strconv.FormatInt(e.CatalogID, 10)
	}

	return []string{
		catalogID,
		e.Title,
		string(e.MediaType),
		string(watch.Status),
		watch.StartDate,
		watch.EndDate,
		watch.Platform,
		watch.Notes,
		string(e.Rating),
	}
}
