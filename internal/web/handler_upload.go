package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/vbonduro/moments/internal/photostore"
)

const maxPhotoSize = 20 * 1024 * 1024 // 20 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readImage pulls the "image" field out of a multipart form and sniffs its
// type. On failure it writes the response and returns ok=false.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) (data []byte, mimeType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024*1024)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.badRequest(w, "failed to parse form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.badRequest(w, "image file required")
		return nil, "", false
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err = io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil {
		s.logger.Error("read upload failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read file"}, s.logger)
		return nil, "", false
	}
	if len(data) > maxPhotoSize {
		s.badRequest(w, "image too large")
		return nil, "", false
	}

	mimeType, ok = allowedImageMIME(data)
	if !ok {
		s.badRequest(w, "unsupported image format")
		return nil, "", false
	}
	return data, mimeType, true
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}

	path, url, err := s.moments.UploadPhoto(r.Context(), userID(r), imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"path": path, "url": optional(url)}, s.logger)
}

func (s *Server) handleSuggestTags(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}

	tags, err := s.moments.SuggestTags(r.Context(), imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags}, s.logger)
}

// handleMedia serves an object from the local photo store to holders of a
// valid media token.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("path")
	if err := s.media.VerifyToken(key, r.URL.Query().Get("token")); err != nil {
		s.logger.Debug("rejected media token", "key", key, "error", err)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	reader, mimeType, err := s.photoStore.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, photostore.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("get media failed", "key", key, "error", err)
		http.Error(w, "failed to read media", http.StatusInternalServerError)
		return
	}
	defer closeWithLog(reader, "media reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write media failed", "key", key, "error", err)
	}
}
