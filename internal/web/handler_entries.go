package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/moments/internal/service"
)

const maxTitleLen = 200

type entryRequest struct {
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	ImagePath string   `json:"image_path"`
	Tags      []string `json:"tags"`
}

func (s *Server) handleEntriesByDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		s.badRequest(w, "date is required")
		return
	}

	entries, err := s.moments.EntriesByDate(r.Context(), userID(r), date, q.Get("tz"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": toEntriesJSON(entries)}, s.logger)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Title) > maxTitleLen {
		s.badRequest(w, "title too long")
		return
	}

	entry, err := s.moments.CreateEntry(r.Context(), userID(r), service.CreateEntryInput{
		Title:     req.Title,
		Text:      req.Text,
		ImagePath: req.ImagePath,
		Tags:      req.Tags,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": toEntryJSON(entry)}, s.logger)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.moments.GetEntry(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": toEntryJSON(entry)}, s.logger)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Title) > maxTitleLen {
		s.badRequest(w, "title too long")
		return
	}

	entry, err := s.moments.UpdateEntry(r.Context(), userID(r), r.PathValue("id"), service.UpdateEntryInput{
		Title: req.Title,
		Text:  req.Text,
		Tags:  req.Tags,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": toEntryJSON(entry)}, s.logger)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.moments.DeleteEntry(r.Context(), userID(r), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorite, err := s.moments.ToggleFavorite(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_favorite": favorite}, s.logger)
}

// handleSearch accepts tag ids either comma separated or as repeated
// ?tags= parameters.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var tagIDs []string
	for _, v := range q["tags"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				tagIDs = append(tagIDs, id)
			}
		}
	}

	entries, err := s.moments.Search(r.Context(), userID(r), q.Get("q"), tagIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": toEntriesJSON(entries)}, s.logger)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.moments.ListTags(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": toTagsJSON(tags)}, s.logger)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	days, err := s.moments.Calendar(r.Context(), userID(r), r.URL.Query().Get("tz"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": toEntryDaysJSON(days)}, s.logger)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	favoritesOnly := false
	if v := r.URL.Query().Get("favorites"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.badRequest(w, "favorites must be a boolean")
			return
		}
		favoritesOnly = b
	}

	entries, err := s.moments.Gallery(r.Context(), userID(r), favoritesOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": toEntriesJSON(entries)}, s.logger)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.moments.Dashboard(r.Context(), userID(r), r.URL.Query().Get("tz"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardJSON(dash), s.logger)
}
