package importer

import (
	"fmt"
	"strings"
)

// Field is one of the semantic fields a column can be bound to.
type Field string

const (
	FieldTitle     Field = "title"
	FieldMediaType Field = "mediaType"
	FieldStatus    Field = "status"
	FieldStartDate Field = "startDate"
	FieldEndDate   Field = "endDate"
	FieldPlatform  Field = "platform"
	FieldNotes     Field = "notes"
	FieldRating    Field = "rating"
	FieldCatalogID Field = "catalogId"
)

// fieldPriority is the order in which fields claim headers during
// detection. Earlier fields win contested headers.
var fieldPriority = []Field{
	FieldTitle,
	FieldMediaType,
	FieldStatus,
	FieldStartDate,
	FieldEndDate,
	FieldPlatform,
	FieldNotes,
	FieldRating,
	FieldCatalogID,
}

// fieldSynonyms maps each field to the header spellings it recognizes.
// Matching is case-insensitive on trimmed headers; there is no fuzzy or
// partial matching.
var fieldSynonyms = map[Field][]string{
	FieldTitle:     {"title", "name", "movie", "film", "show", "movie title", "show title"},
	FieldMediaType: {"media type", "mediatype", "type", "media", "format", "category"},
	FieldStatus:    {"status", "state", "watch status", "watched"},
	FieldStartDate: {"start", "start date", "startdate", "started", "began", "date started"},
	FieldEndDate:   {"end", "end date", "enddate", "ended", "completed", "date finished", "date completed", "finish date"},
	FieldPlatform:  {"platform", "service", "source", "where", "streaming service", "app"},
	FieldNotes:     {"notes", "note", "comment", "comments", "review", "remarks"},
	FieldRating:    {"rating", "rate", "score", "stars", "verdict"},
	FieldCatalogID: {"catalog id", "catalogid", "tmdb id", "tmdbid", "tmdb", "external id", "externalid", "id"},
}

// Mapping binds semantic fields to headers. A field absent from the map
// is unbound; a header appears under at most one field.
type Mapping map[Field]string

// DetectMapping guesses a mapping from the decoded headers. Fields claim
// headers in priority order, first synonym match wins, and each header is
// claimable by at most one field. The result is a starting point for the
// user to review, not a final answer.
func DetectMapping(headers []string) Mapping {
	m := make(Mapping)
	claimed := make(map[string]bool, len(headers))

	for _, field := range fieldPriority {
		for _, h := range headers {
			if claimed[h] {
				continue
			}
			if matchesField(field, h) {
				m[field] = h
				claimed[h] = true
				break
			}
		}
	}

	return m
}

func matchesField(field Field, header string) bool {
	needle := strings.ToLower(strings.TrimSpace(header))
	for _, syn := range fieldSynonyms[field] {
		if needle == syn {
			return true
		}
	}
	return false
}

// Bind binds field to header, unbinding the header from any field that
// previously held it. Binding to the empty header unbinds the field.
func (m Mapping) Bind(field Field, header string) {
	if header == "" {
		delete(m, field)
		return
	}
	for f, h := range m {
		if h == header && f != field {
			delete(m, f)
		}
	}
	m[field] = header
}

// Validate checks that the mapping can drive an import against the given
// headers. Title must be bound, and every bound header must exist in the
// file. Returns a *MappingError on violation.
func (m Mapping) Validate(headers []string) error {
	title, ok := m[FieldTitle]
	if !ok || title == "" {
		return &MappingError{Reason: "title field is not bound to a column"}
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}
	for field, h := range m {
		if h == "" {
			// Empty binding means unbound; clients often send it that
			// way instead of omitting the field.
			continue
		}
		if !known[h] {
			return &MappingError{Reason: fmt.Sprintf("field %s is bound to unknown column %q", field, h)}
		}
	}

	return nil
}
