package web

import (
	"net/http"
)

const maxNameLen = 100

type profileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.GetProfile(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": toProfileJSON(p)}, s.logger)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if tooLong(req.FirstName, maxNameLen) || tooLong(req.LastName, maxNameLen) {
		s.badRequest(w, "name too long")
		return
	}

	p, err := s.profiles.UpdateNames(r.Context(), userID(r), req.FirstName, req.LastName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": toProfileJSON(p)}, s.logger)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}

	p, err := s.profiles.UploadAvatar(r.Context(), userID(r), imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": toProfileJSON(p)}, s.logger)
}

func tooLong(s *string, n int) bool {
	return s != nil && len(*s) > n
}
