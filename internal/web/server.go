package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/moments/internal/photostore"
	"github.com/vbonduro/moments/internal/service"
)

// MediaVerifier checks tokens on locally served media URLs. Backends that
// hand out their own signed URLs (S3) do not need one.
type MediaVerifier interface {
	VerifyToken(key, token string) error
}

type Server struct {
	moments    *service.MomentService
	profiles   *service.ProfileService
	photoStore photostore.PhotoStore
	media      MediaVerifier
	jwtSecret  []byte
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer builds the HTTP API. media may be nil, in which case /media/ is
// not served.
func NewServer(
	moments *service.MomentService,
	profiles *service.ProfileService,
	ps photostore.PhotoStore,
	media MediaVerifier,
	jwtSecret []byte,
	logger *slog.Logger,
) *Server {
	s := &Server{
		moments:    moments,
		profiles:   profiles,
		photoStore: ps,
		media:      media,
		jwtSecret:  jwtSecret,
		mux:        http.NewServeMux(),
		logger:     logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.media != nil {
		s.mux.HandleFunc("GET /media/{path...}", s.handleMedia)
	}

	api := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, s.requireAuth(h))
	}
	api("GET /api/entries", s.handleEntriesByDate)
	api("POST /api/entries", s.handleCreateEntry)
	api("GET /api/entries/{id}", s.handleGetEntry)
	api("PUT /api/entries/{id}", s.handleUpdateEntry)
	api("DELETE /api/entries/{id}", s.handleDeleteEntry)
	api("PATCH /api/entries/{id}/favorite", s.handleToggleFavorite)
	api("GET /api/search", s.handleSearch)
	api("GET /api/tags", s.handleListTags)
	api("POST /api/tags/suggest", s.handleSuggestTags)
	api("GET /api/calendar", s.handleCalendar)
	api("GET /api/gallery", s.handleGallery)
	api("GET /api/dashboard", s.handleDashboard)
	api("GET /api/profile", s.handleGetProfile)
	api("PUT /api/profile", s.handleUpdateProfile)
	api("POST /api/profile/avatar", s.handleUploadAvatar)
	api("POST /api/photos", s.handleUploadPhoto)
	api("POST /api/generate-signed", s.handleGenerateSigned)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const shutdownTimeout = 15 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}
