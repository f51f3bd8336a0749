package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/moments/internal/domain"
	"github.com/vbonduro/moments/internal/signedurl"
)

// maxBatchPaths bounds a single batch request.
const maxBatchPaths = 200

// signedRequest carries either a single filePath or a batch of filePaths.
type signedRequest struct {
	FilePath  string          `json:"filePath"`
	FilePaths json.RawMessage `json:"filePaths"`
}

type signedResultJSON struct {
	Path  string  `json:"path"`
	URL   *string `json:"url"`
	Error *string `json:"error"`
}

func (s *Server) handleGenerateSigned(w http.ResponseWriter, r *http.Request) {
	var req signedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	switch {
	case req.FilePath != "":
		s.signSingle(w, r, req.FilePath)
	case len(req.FilePaths) > 0 && string(req.FilePaths) != "null":
		var paths []string
		if err := json.Unmarshal(req.FilePaths, &paths); err != nil {
			s.badRequest(w, "filePaths must be an array of strings")
			return
		}
		if len(paths) > maxBatchPaths {
			s.badRequest(w, "too many filePaths")
			return
		}
		s.signBatch(w, r, paths)
	default:
		s.badRequest(w, "either filePath or filePaths is required")
	}
}

func (s *Server) signSingle(w http.ResponseWriter, r *http.Request, path string) {
	url, err := s.moments.SignedURL(r.Context(), userID(r), path)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"}, s.logger)
			return
		}
		s.logger.Error("signed url failed", "path", path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate signed url"}, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url}, s.logger)
}

// signBatch always answers 200; each path carries its own url or error.
func (s *Server) signBatch(w http.ResponseWriter, r *http.Request, paths []string) {
	results := s.moments.SignedURLs(r.Context(), userID(r), paths)

	out := make([]signedResultJSON, 0, len(results))
	for _, res := range results {
		item := signedResultJSON{Path: res.Path}
		switch {
		case res.Err == nil:
			item.URL = optional(res.URL)
		case errors.Is(res.Err, signedurl.ErrForbiddenPath):
			item.Error = optional("forbidden")
		default:
			item.Error = optional("failed to generate signed url")
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"urls": out}, s.logger)
}
