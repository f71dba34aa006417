package web

import (
	"net/http"
	"strings"

	"github.com/reelistapp/reelist/internal/catalog"
	"github.com/reelistapp/reelist/internal/logging"
	"github.com/reelistapp/reelist/internal/model"
)

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "catalog lookups are not configured",
		})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondBadRequest(w, "query parameter q is required")
		return
	}

	mediaType := model.MediaType(r.URL.Query().Get("mediaType"))
	if mediaType == "" {
		mediaType = model.MediaMovie
	}
	if !model.ValidMediaType(mediaType) {
		respondBadRequest(w, "mediaType must be movie or tv")
		return
	}

	candidates, err := s.catalog.SearchTitle(r.Context(), query, mediaType)
	if err != nil {
		respondError(r.Context(), w, http.StatusBadGateway, err)
		return
	}
	if candidates == nil {
		candidates = []catalog.Candidate{}
	}
	respondJSON(w, http.StatusOK, candidates)
}

// lookupDetails resolves catalog metadata for a manually added entry,
// preferring an explicit catalog ID over a title search. Failure means
// the entry stays a stub; it never fails the request.
func (s *Server) lookupDetails(r *http.Request, catalogID int64, mediaType model.MediaType, title string) *catalog.Details {
	id := catalogID
	if id == 0 {
		candidates, err := s.catalog.SearchTitle(r.Context(), title, mediaType)
		if err != nil || len(candidates) == 0 {
			if err != nil {
				logging.FromContext(r.Context()).Warn("catalog search failed", "title", title, "error", err)
			}
			return nil
		}
		id = candidates[0].ID
	}

	details, err := s.catalog.GetDetails(r.Context(), mediaType, id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("catalog details failed", "catalog_id", id, "error", err)
		return nil
	}
	return details
}
