package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/moments/internal/domain"
	"github.com/vbonduro/moments/internal/photostore"
)

// profileRepository is the subset of store.ProfileStore that ProfileService requires.
type profileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateNames(ctx context.Context, userID string, firstName, lastName *string, now time.Time) (*domain.Profile, error)
	SetAvatar(ctx context.Context, userID, avatarPath string, now time.Time) (string, error)
}

type ProfileService struct {
	profiles profileRepository
	photoStg photostore.PhotoStore
	urls     urlResolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewProfileService(profiles profileRepository, photoStg photostore.PhotoStore, urls urlResolver, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		photoStg: photoStg,
		urls:     urls,
		logger:   logger,
		now:      time.Now,
	}
}

// GetProfile returns the user's profile. A user who never saved one gets an
// empty profile rather than an error.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return &domain.Profile{ID: userID}, nil
	}
	s.resolveAvatar(ctx, p)
	return p, nil
}

// UpdateNames sets first and last name. Blank names are stored as NULL.
func (s *ProfileService) UpdateNames(ctx context.Context, userID string, firstName, lastName *string) (*domain.Profile, error) {
	p, err := s.profiles.UpdateNames(ctx, userID, blankToNil(firstName), blankToNil(lastName), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.resolveAvatar(ctx, p)
	return p, nil
}

// UploadAvatar stores a new avatar and removes the one it replaces. Removal
// of the old object is best-effort.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, imageData []byte, mimeType string) (*domain.Profile, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	key := photostore.AvatarKey(userID, s.now(), mimeType)
	if err := s.photoStg.Put(ctx, key, mimeType, bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	previous, err := s.profiles.SetAvatar(ctx, userID, key, s.now())
	if err != nil {
		if delErr := s.photoStg.Delete(ctx, key); delErr != nil {
			s.logger.Error("failed to clean up avatar after save error", "avatar_path", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	if previous != "" && previous != key {
		if err := s.photoStg.Delete(ctx, previous); err != nil && !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Error("failed to delete previous avatar", "avatar_path", previous, "error", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *ProfileService) resolveAvatar(ctx context.Context, p *domain.Profile) {
	if p == nil || p.AvatarPath == "" {
		return
	}
	if url, err := s.urls.Get(ctx, p.AvatarPath); err == nil {
		p.AvatarURL = url
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
