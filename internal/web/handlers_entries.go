package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reelistapp/reelist/internal/importer"
	"github.com/reelistapp/reelist/internal/model"
)

type createEntryRequest struct {
	Title     string          `json:"title"`
	MediaType model.MediaType `json:"mediaType"`
	CatalogID int64           `json:"catalogId"`
}

type updateEntryRequest struct {
	Rating *model.Rating `json:"rating"`
}

type watchRequest struct {
	Status    model.Status `json:"status"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Platform  string       `json:"platform"`
	Notes     string       `json:"notes"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.requireMember(w, r, listID); !ok {
		return
	}

	entries, err := s.store.EntriesByList(r.Context(), listID)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if !s.requireEditor(w, r, listID) {
		return
	}
	user, _ := userFrom(r.Context())

	var req createEntryRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondBadRequest(w, "title is required")
		return
	}
	if req.MediaType == "" {
		req.MediaType = model.MediaMovie
	}
	if !model.ValidMediaType(req.MediaType) {
		respondBadRequest(w, "mediaType must be movie or tv")
		return
	}

	// Adding a title the list already tracks merges into the existing
	// entry instead of creating a duplicate.
	existing, err := s.store.EntriesByList(r.Context(), listID)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	for _, e := range existing {
		if strings.EqualFold(strings.TrimSpace(e.Title), req.Title) {
			respondJSON(w, http.StatusOK, e)
			return
		}
	}

	entry := model.Entry{
		ID:        uuid.NewString(),
		ListID:    listID,
		CatalogID: req.CatalogID,
		MediaType: req.MediaType,
		Title:     req.Title,
		Stub:      true,
		Watches:   []model.Watch{},
		Meta:      model.EntryMeta{Status: model.StatusPlanned},
		AddedBy:   user.ID,
	}

	if s.catalog != nil {
		if details := s.lookupDetails(r, req.CatalogID, req.MediaType, req.Title); details != nil {
			entry.CatalogID = details.ID
			entry.Title = details.Title
			entry.Year = details.Year
			entry.Overview = details.Overview
			entry.PosterURL = details.PosterURL
			entry.Stub = false
		}
	}

	entry, err = s.store.CreateEntry(r.Context(), entry)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.entryForEdit(w, r)
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Rating == nil {
		respondBadRequest(w, "nothing to update")
		return
	}
	if *req.Rating != "" && !model.ValidRating(*req.Rating) {
		respondBadRequest(w, "rating must be disliked, liked, or loved")
		return
	}

	if err := s.store.UpdateEntryRating(r.Context(), entry.ID, *req.Rating); err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	entry.Rating = *req.Rating
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.entryForEdit(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteEntry(r.Context(), entry.ID); err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.entryForEdit(w, r)
	if !ok {
		return
	}
	user, _ := userFrom(r.Context())

	var req watchRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	watch, errMsg := buildWatch(req, user.ID)
	if errMsg != "" {
		respondBadRequest(w, errMsg)
		return
	}

	entry.Watches = append(entry.Watches, watch)
	if ok := s.saveWatches(w, r, &entry); !ok {
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleUpdateWatch(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.entryForEdit(w, r)
	if !ok {
		return
	}
	watchID := chi.URLParam(r, "watchID")

	idx := -1
	for i := range entry.Watches {
		if entry.Watches[i].ID == watchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "watch not found"})
		return
	}

	var req watchRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	watch := entry.Watches[idx]
	if req.Status != "" {
		if !model.ValidStatus(req.Status) {
			respondBadRequest(w, "status must be planned, watching, or finished")
			return
		}
		watch.Status = req.Status
	}
	if req.StartDate != "" {
		watch.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		watch.EndDate = req.EndDate
	}
	if req.Platform != "" {
		watch.Platform = req.Platform
	}
	if req.Notes != "" {
		watch.Notes = req.Notes
	}
	if msg := validateDates(watch.StartDate, watch.EndDate); msg != "" {
		respondBadRequest(w, msg)
		return
	}

	entry.Watches[idx] = watch
	if ok := s.saveWatches(w, r, &entry); !ok {
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteWatch(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.entryForEdit(w, r)
	if !ok {
		return
	}
	watchID := chi.URLParam(r, "watchID")

	remaining, msg := removeWatch(entry.Watches, watchID)
	if msg != "" {
		status := http.StatusBadRequest
		if msg == "watch not found" {
			status = http.StatusNotFound
		}
		respondJSON(w, status, map[string]string{"error": msg})
		return
	}

	entry.Watches = remaining
	if ok := s.saveWatches(w, r, &entry); !ok {
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// removeWatch returns the watch set without the given watch. An entry's
// last watch cannot be removed on its own; deleting the entry is the way
// to drop its whole history.
func removeWatch(watches []model.Watch, watchID string) ([]model.Watch, string) {
	idx := -1
	for i := range watches {
		if watches[i].ID == watchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, "watch not found"
	}
	if len(watches) == 1 {
		return nil, "an entry's last watch cannot be deleted; delete the entry instead"
	}

	out := make([]model.Watch, 0, len(watches)-1)
	out = append(out, watches[:idx]...)
	out = append(out, watches[idx+1:]...)
	return out, ""
}

// entryForEdit loads the entry from the URL and checks the caller can edit
// its list. Writes the error response itself on failure.
func (s *Server) entryForEdit(w http.ResponseWriter, r *http.Request) (model.Entry, bool) {
	entryID := chi.URLParam(r, "entryID")
	entry, err := s.store.EntryByID(r.Context(), entryID)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return model.Entry{}, false
	}
	if !s.requireEditor(w, r, entry.ListID) {
		return model.Entry{}, false
	}
	return entry, true
}

// saveWatches recomputes the entry's summary from the full watch set and
// persists both in one write.
func (s *Server) saveWatches(w http.ResponseWriter, r *http.Request, entry *model.Entry) bool {
	entry.Meta = importer.ComputeEntryMeta(entry.Watches)
	if err := s.store.UpdateEntryWatches(r.Context(), entry.ID, entry.Watches, entry.Meta); err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return false
	}
	return true
}

func buildWatch(req watchRequest, userID string) (model.Watch, string) {
	if req.Status == "" {
		req.Status = model.StatusPlanned
	}
	if !model.ValidStatus(req.Status) {
		return model.Watch{}, "status must be planned, watching, or finished"
	}
	if msg := validateDates(req.StartDate, req.EndDate); msg != "" {
		return model.Watch{}, msg
	}
	return model.Watch{
		ID:        uuid.NewString(),
		Status:    req.Status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Platform:  strings.TrimSpace(req.Platform),
		Notes:     strings.TrimSpace(req.Notes),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}, ""
}

// validateDates checks ISO format and that end does not precede start.
func validateDates(start, end string) string {
	const iso = "2006-01-02"
	var startT, endT time.Time
	var err error
	if start != "" {
		if startT, err = time.Parse(iso, start); err != nil {
			return "startDate must be YYYY-MM-DD"
		}
	}
	if end != "" {
		if endT, err = time.Parse(iso, end); err != nil {
			return "endDate must be YYYY-MM-DD"
		}
	}
	if start != "" && end != "" && endT.Before(startT) {
		return "endDate cannot be before startDate"
	}
	return ""
}
