package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vbonduro/moments/internal/config"
	"github.com/vbonduro/moments/internal/db"
	"github.com/vbonduro/moments/internal/logging"
	"github.com/vbonduro/moments/internal/photostore"
	"github.com/vbonduro/moments/internal/photostore/local"
	"github.com/vbonduro/moments/internal/photostore/s3store"
	"github.com/vbonduro/moments/internal/service"
	"github.com/vbonduro/moments/internal/signedurl"
	"github.com/vbonduro/moments/internal/store"
	"github.com/vbonduro/moments/internal/vision"
	claudevision "github.com/vbonduro/moments/internal/vision/claude"
	ollamavision "github.com/vbonduro/moments/internal/vision/ollama"
	"github.com/vbonduro/moments/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("database ready", "dialect", database.Dialect)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	photos, media, err := newPhotoStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	urls := signedurl.New(photos,
		signedurl.WithIssueTimeout(cfg.SignedURLTimeout),
		signedurl.WithLogger(logger),
	)

	profiles := service.NewProfileService(store.NewProfileStore(database), photos, urls, logger)
	moments := service.NewMomentService(
		store.NewEntryStore(database),
		store.NewTagStore(database),
		profiles,
		photos,
		urls,
		newTagSuggester(cfg, logger),
		logger,
	)

	server := web.NewServer(moments, profiles, photos, media, []byte(cfg.JWTSecret), logger)
	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newPhotoStore returns the configured backend. The verifier is non-nil only
// for the local backend, whose URLs point back at this server.
func newPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, web.MediaVerifier, error) {
	switch cfg.PhotoBackend {
	case "s3":
		ps, err := s3store.NewS3PhotoStore(ctx, s3store.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize s3 photo store: %w", err)
		}
		logger.Info("using s3 photo store", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return ps, nil, nil
	default:
		ps, err := local.NewLocalPhotoStore(cfg.PhotoPath, cfg.PublicBaseURL, mediaSecret(cfg.JWTSecret))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize photo store: %w", err)
		}
		logger.Info("using local photo store", "path", cfg.PhotoPath)
		return ps, ps, nil
	}
}

// mediaSecret keeps media tokens from ever verifying as API bearer tokens.
func mediaSecret(jwtSecret string) []byte {
	return []byte("media:" + jwtSecret)
}

func newTagSuggester(cfg *config.Config, logger *slog.Logger) vision.TagSuggester {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeSuggester(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaSuggester(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("tag suggestions disabled")
		return nil
	}
}
