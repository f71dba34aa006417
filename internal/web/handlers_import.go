package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reelistapp/reelist/internal/importer"
	"github.com/reelistapp/reelist/internal/logging"
)

// readImportFile extracts the uploaded file from a multipart request,
// enforcing the configured size cap.
func (s *Server) readImportFile(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("file exceeds the %d byte limit", s.cfg.Import.MaxFileSize),
			})
			return nil, false
		}
		respondBadRequest(w, "expected a multipart form upload")
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondBadRequest(w, "form field 'file' is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return nil, false
	}
	return data, true
}

// importOptions reads the per-request normalizer options from the form,
// falling back to the configured defaults.
func (s *Server) importOptions(r *http.Request) importer.Options {
	opts := importer.Options{DayFirst: s.cfg.Import.DayFirstDates}
	if v := r.FormValue("dayFirst"); v != "" {
		if dayFirst, err := strconv.ParseBool(v); err == nil {
			opts.DayFirst = dayFirst
		}
	}
	return opts
}

// parseMapping reads a mapping override from the "mapping" form field.
// A missing field returns nil, meaning auto-detect.
func parseMapping(r *http.Request) (importer.Mapping, error) {
	raw := r.FormValue("mapping")
	if raw == "" {
		return nil, nil
	}
	var m importer.Mapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("mapping field is not valid JSON: %w", err)
	}
	return m, nil
}

type inspectResponse struct {
	*importer.Inspection
	Preview *importer.Preview `json:"preview"`
}

// handleImportInspect decodes the uploaded file without importing it:
// headers, detected (or overridden) mapping, sample rows, and a dry-run
// preview of what a run with that mapping would do.
func (s *Server) handleImportInspect(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if !s.requireEditor(w, r, listID) {
		return
	}

	data, ok := s.readImportFile(w, r)
	if !ok {
		return
	}

	inspection, err := s.imports.Inspect(data)
	if err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	mapping, err := parseMapping(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if mapping != nil {
		inspection.Mapping = mapping
	}

	entries, err := s.store.EntriesByList(r.Context(), listID)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	preview, err := importer.Analyze(data, inspection.Mapping, entries, s.importOptions(r))
	if err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, inspectResponse{
		Inspection: inspection,
		Preview:    preview,
	})
}

// handleImportStart kicks off an asynchronous import run and returns its
// run ID for progress polling.
func (s *Server) handleImportStart(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if !s.requireEditor(w, r, listID) {
		return
	}
	user, _ := userFrom(r.Context())

	data, ok := s.readImportFile(w, r)
	if !ok {
		return
	}

	mapping, err := parseMapping(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if mapping == nil {
		inspection, err := s.imports.Inspect(data)
		if err != nil {
			respondError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		mapping = inspection.Mapping
	}

	runID, err := s.imports.StartRun(r.Context(), importer.RunSpec{
		ListID:  listID,
		UserID:  user.ID,
		Data:    data,
		Mapping: mapping,
		Options: s.importOptions(r),
	})
	if err != nil {
		var mapErr *importer.MappingError
		switch {
		case errors.As(err, &mapErr):
			respondBadRequest(w, mapErr.Error())
		case errors.Is(err, importer.ErrTooManyRuns):
			respondError(r.Context(), w, http.StatusTooManyRequests, err)
		default:
			respondError(r.Context(), w, http.StatusInternalServerError, err)
		}
		return
	}

	logging.FromContext(r.Context()).Info("import run started",
		"run_id", runID,
		"list_id", listID,
		"user_id", user.ID,
		"bytes", len(data),
	)
	respondJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

// handleImportProgress reports run progress. Plain requests get a JSON
// snapshot; clients that accept text/event-stream get live updates until
// the run finishes.
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	if r.Header.Get("Accept") == "text/event-stream" {
		s.streamProgress(w, r, runID)
		return
	}

	progress, err := s.imports.RunProgress(runID)
	if err != nil {
		respondError(r.Context(), w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// streamProgress pushes progress updates as server-sent events.
func (s *Server) streamProgress(w http.ResponseWriter, r *http.Request, runID string) {
	updates, err := s.imports.SubscribeProgress(runID)
	if err != nil {
		respondError(r.Context(), w, http.StatusNotFound, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(r.Context(), w, http.StatusInternalServerError,
			fmt.Errorf("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case p, open := <-updates:
			if !open {
				return
			}
			payload, err := json.Marshal(p)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// handleImportResult returns the final result of a finished run.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	result, err := s.imports.RunResult(runID)
	if err != nil {
		if errors.Is(err, importer.ErrRunNotFound) {
			respondError(r.Context(), w, http.StatusNotFound, err)
			return
		}
		respondJSON(w, http.StatusConflict, map[string]string{
			"error": "run is still in progress",
		})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleExport streams the list's entries as a CSV download in the
// layout the importer's column detection recognizes.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.requireMember(w, r, listID); !ok {
		return
	}

	entries, err := s.store.EntriesByList(r.Context(), listID)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	data := importer.ExportCSV(entries)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"list-%s.csv\"", listID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
