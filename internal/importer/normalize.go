package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/reelistapp/reelist/internal/model"
)

// isoDate is the canonical date layout used throughout the data model.
const isoDate = "2006-01-02"

// Options tunes row normalization.
type Options struct {
	// DayFirst interprets slash dates as DD/MM/YYYY instead of the
	// default MM/DD/YYYY. Slash dates are genuinely ambiguous, so the
	// interpretation is explicit rather than guessed.
	DayFirst bool
}

// Intent is the typed, per-row result of normalization. Zero values mean
// "not provided": empty strings for dates/platform/notes, empty Status
// and Rating, zero CatalogID.
type Intent struct {
	Title     string
	MediaType model.MediaType
	Status    model.Status
	StartDate string
	EndDate   string
	Platform  string
	Notes     string
	Rating    model.Rating
	CatalogID int64
}

// NormalizeRow coerces one raw row into an Intent using the current
// mapping. Returns nil when the bound title value is blank; such rows are
// excluded from the run without counting as failures. Every coercion is
// total: unparseable values become their zero value, never an error.
func NormalizeRow(row Row, m Mapping, opts Options) *Intent {
	title := CleanCell(boundValue(row, m, FieldTitle))
	if title == "" {
		return nil
	}

	start := parseDate(boundValue(row, m, FieldStartDate), opts)
	end := parseDate(boundValue(row, m, FieldEndDate), opts)
	// An end date can never precede the start date. Like every other
	// coercion this is total: the offending end date is dropped, the row
	// still imports.
	if start != "" && end != "" && end < start {
		end = ""
	}

	return &Intent{
		Title:     title,
		MediaType: parseMediaType(boundValue(row, m, FieldMediaType)),
		Status:    parseStatus(boundValue(row, m, FieldStatus)),
		StartDate: start,
		EndDate:   end,
		Platform:  CleanCell(boundValue(row, m, FieldPlatform)),
		Notes:     strings.TrimSpace(boundValue(row, m, FieldNotes)),
		Rating:    parseRating(boundValue(row, m, FieldRating)),
		CatalogID: parseCatalogID(boundValue(row, m, FieldCatalogID)),
	}
}

// InferStatus resolves the effective status for a row: an explicit status
// wins, otherwise a present end date means finished, a present start date
// means watching, and nothing at all means planned.
func InferStatus(explicit model.Status, startDate, endDate string) model.Status {
	if explicit != "" {
		return explicit
	}
	if endDate != "" {
		return model.StatusFinished
	}
	if startDate != "" {
		return model.StatusWatching
	}
	return model.StatusPlanned
}

func boundValue(row Row, m Mapping, field Field) string {
	header, ok := m[field]
	if !ok {
		return ""
	}
	return row[header]
}

var mediaTypeSynonyms = map[string]model.MediaType{
	"movie":      model.MediaMovie,
	"movies":     model.MediaMovie,
	"film":       model.MediaMovie,
	"feature":    model.MediaMovie,
	"tv":         model.MediaTV,
	"tv show":    model.MediaTV,
	"tvshow":     model.MediaTV,
	"show":       model.MediaTV,
	"series":     model.MediaTV,
	"season":     model.MediaTV,
	"television": model.MediaTV,
}

// parseMediaType maps a raw value onto movie/tv. Unrecognized or unbound
// values default to movie.
func parseMediaType(raw string) model.MediaType {
	key := strings.ToLower(CleanCell(raw))
	if mt, ok := mediaTypeSynonyms[key]; ok {
		return mt
	}
	return model.MediaMovie
}

var statusSynonyms = map[string]model.Status{
	"planned":            model.StatusPlanned,
	"plan to watch":      model.StatusPlanned,
	"plantowatch":        model.StatusPlanned,
	"want to watch":      model.StatusPlanned,
	"to watch":           model.StatusPlanned,
	"wishlist":           model.StatusPlanned,
	"backlog":            model.StatusPlanned,
	"ptw":                model.StatusPlanned,
	"watching":           model.StatusWatching,
	"in progress":        model.StatusWatching,
	"in-progress":        model.StatusWatching,
	"inprogress":         model.StatusWatching,
	"started":            model.StatusWatching,
	"currently watching": model.StatusWatching,
	"current":            model.StatusWatching,
	"finished":           model.StatusFinished,
	"watched":            model.StatusFinished,
	"completed":          model.StatusFinished,
	"complete":           model.StatusFinished,
	"done":               model.StatusFinished,
	"seen":               model.StatusFinished,
}

// parseStatus maps a raw value onto a known status. Unrecognized or
// unbound values yield the empty status, deferring to InferStatus.
func parseStatus(raw string) model.Status {
	key := strings.ToLower(CleanCell(raw))
	return statusSynonyms[key]
}

// genericDateLayouts are tried after the ISO and slash forms, in order.
var genericDateLayouts = []string{
	"2006/01/02",
	"2006.01.02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"20060102",
}

// parseDate coerces a raw value to an ISO date string, or "" when the
// value is blank or unparseable. Slash dates follow opts.DayFirst;
// invalid calendar dates (e.g. "31/02/2024") fail every layout and come
// back empty rather than raising.
func parseDate(raw string, opts Options) string {
	s := CleanCell(raw)
	if s == "" {
		return ""
	}

	if t, err := time.Parse(isoDate, s); err == nil {
		return t.Format(isoDate)
	}

	if strings.Count(s, "/") == 2 {
		layout := "1/2/2006"
		if opts.DayFirst {
			layout = "2/1/2006"
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}

	return ""
}

var ratingSynonyms = map[string]model.Rating{
	"disliked":    model.RatingDisliked,
	"dislike":     model.RatingDisliked,
	"bad":         model.RatingDisliked,
	"thumbs down": model.RatingDisliked,
	"thumbsdown":  model.RatingDisliked,
	"1":           model.RatingDisliked,
	"liked":       model.RatingLiked,
	"like":        model.RatingLiked,
	"good":        model.RatingLiked,
	"thumbs up":   model.RatingLiked,
	"thumbsup":    model.RatingLiked,
	"2":           model.RatingLiked,
	"loved":       model.RatingLoved,
	"love":        model.RatingLoved,
	"favorite":    model.RatingLoved,
	"favourite":   model.RatingLoved,
	"great":       model.RatingLoved,
	"3":           model.RatingLoved,
}

// parseRating maps a raw value onto a rating tier. Unrecognized or
// unbound values yield the empty rating.
func parseRating(raw string) model.Rating {
	key := strings.ToLower(CleanCell(raw))
	return ratingSynonyms[key]
}

// parseCatalogID parses a positive integer catalog ID, or 0 when the
// value is blank, non-numeric, or non-positive.
func parseCatalogID(raw string) int64 {
	s := CleanCell(raw)
	if s == "" {
		return 0
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
