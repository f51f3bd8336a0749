package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/moments/internal/calendar"
	"github.com/vbonduro/moments/internal/domain"
	"github.com/vbonduro/moments/internal/photostore"
	"github.com/vbonduro/moments/internal/signedurl"
	"github.com/vbonduro/moments/internal/store"
	"github.com/vbonduro/moments/internal/vision"
)

// SearchLimit caps the number of search results.
const SearchLimit = 50

var ErrSuggestionsDisabled = errors.New("tag suggestions are not configured")

// entryRepository is the subset of store.EntryStore that MomentService requires.
type entryRepository interface {
	Create(ctx context.Context, in store.NewEntry) (*domain.Entry, error)
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	ListByRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Entry, error)
	ListWithImages(ctx context.Context, userID string, favoritesOnly bool) ([]*domain.Entry, error)
	Search(ctx context.Context, userID, query string, tagIDs []string, limit int) ([]*domain.Entry, error)
	Update(ctx context.Context, id, userID, title, text string, tagNames []string) error
	Delete(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	ListStamps(ctx context.Context, userID string) ([]store.Stamp, error)
	Counts(ctx context.Context, userID string) (store.EntryCounts, error)
}

// tagRepository is the subset of store.TagStore that MomentService requires.
type tagRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Tag, error)
	Count(ctx context.Context, userID string) (int, error)
}

// urlResolver is the subset of signedurl.Cache the services require.
type urlResolver interface {
	Get(ctx context.Context, path string) (string, error)
	Batch(ctx context.Context, paths []string, ownerUserID string) []signedurl.BatchResult
}

type profileReader interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

type MomentService struct {
	entries   entryRepository
	tags      tagRepository
	profiles  profileReader
	photoStg  photostore.PhotoStore
	urls      urlResolver
	suggester vision.TagSuggester
	logger    *slog.Logger
	now       func() time.Time
}

// NewMomentService wires the entry workflows. suggester may be nil, in which
// case SuggestTags reports ErrSuggestionsDisabled.
func NewMomentService(
	entries entryRepository,
	tags tagRepository,
	profiles profileReader,
	photoStg photostore.PhotoStore,
	urls urlResolver,
	suggester vision.TagSuggester,
	logger *slog.Logger,
) *MomentService {
	return &MomentService{
		entries:   entries,
		tags:      tags,
		profiles:  profiles,
		photoStg:  photoStg,
		urls:      urls,
		suggester: suggester,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateEntryInput struct {
	Title     string
	Text      string
	ImagePath string
	Tags      []string
}

type UpdateEntryInput struct {
	Title string
	Text  string
	Tags  []string
}

// Dashboard is the summary shown on the user's home screen.
type Dashboard struct {
	Profile  *domain.Profile
	Stats    domain.Stats
	// Activity maps each local date with entries to its entry count.
	Activity map[string]int
}

func (s *MomentService) CreateEntry(ctx context.Context, userID string, in CreateEntryInput) (*domain.Entry, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if in.ImagePath != "" {
		if err := signedurl.Authorize(in.ImagePath, userID); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrForbidden, err)
		}
	}

	entry, err := s.entries.Create(ctx, store.NewEntry{
		UserID:    userID,
		Title:     title,
		Text:      in.Text,
		ImagePath: in.ImagePath,
		TagNames:  in.Tags,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	s.resolveImage(ctx, entry)
	return entry, nil
}

// EntriesByDate returns the user's entries for one local calendar day,
// newest first.
func (s *MomentService) EntriesByDate(ctx context.Context, userID, date, timezone string) ([]*domain.Entry, error) {
	window, err := calendar.ResolveDayWindow(date, timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	entries, err := s.entries.ListByRange(ctx, userID, window.StartUTC, window.EndUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	s.resolveImages(ctx, entries)
	return entries, nil
}

func (s *MomentService) GetEntry(ctx context.Context, userID, id string) (*domain.Entry, error) {
	entry, err := s.ownedEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.resolveImage(ctx, entry)
	return entry, nil
}

// UpdateEntry replaces title, text and the full tag set.
func (s *MomentService) UpdateEntry(ctx context.Context, userID, id string, in UpdateEntryInput) (*domain.Entry, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if _, err := s.ownedEntry(ctx, userID, id); err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, id, userID, title, in.Text, in.Tags); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return s.GetEntry(ctx, userID, id)
}

// DeleteEntry removes the entry and then its image. Image removal failures
// are logged and do not fail the call.
func (s *MomentService) DeleteEntry(ctx context.Context, userID, id string) error {
	entry, err := s.ownedEntry(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if entry.ImagePath != "" {
		if err := s.photoStg.Delete(ctx, entry.ImagePath); err != nil && !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Error("failed to delete entry image", "entry_id", id, "image_path", entry.ImagePath, "error", err)
		}
	}
	return nil
}

func (s *MomentService) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	if _, err := s.ownedEntry(ctx, userID, id); err != nil {
		return false, err
	}
	favorite, err := s.entries.ToggleFavorite(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return favorite, nil
}

func (s *MomentService) Search(ctx context.Context, userID, query string, tagIDs []string) ([]*domain.Entry, error) {
	entries, err := s.entries.Search(ctx, userID, query, tagIDs, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	s.resolveImages(ctx, entries)
	return entries, nil
}

func (s *MomentService) ListTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	tags, err := s.tags.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Calendar groups the user's entries by local date in timezone, most recent
// date first. Each day's image is the newest entry on that date whose image
// could be resolved.
func (s *MomentService) Calendar(ctx context.Context, userID, timezone string) ([]domain.EntryDay, error) {
	loc, err := calendar.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	stamps, err := s.entries.ListStamps(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}

	days := []domain.EntryDay{}
	index := make(map[string]int)
	for _, st := range stamps {
		date := calendar.LocalDate(st.CreatedAt, loc)
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, domain.EntryDay{Date: date})
		}
		days[i].Count++

		if days[i].ImageURL == "" && st.ImagePath != "" {
			if url, err := s.urls.Get(ctx, st.ImagePath); err == nil {
				days[i].ImageURL = url
			}
		}
	}
	return days, nil
}

// Gallery returns entries with a displayable image, newest first. Entries
// whose URL cannot be issued are left out.
func (s *MomentService) Gallery(ctx context.Context, userID string, favoritesOnly bool) ([]*domain.Entry, error) {
	entries, err := s.entries.ListWithImages(ctx, userID, favoritesOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}
	s.resolveImages(ctx, entries)

	shown := make([]*domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ImageURL != "" {
			shown = append(shown, e)
		}
	}
	return shown, nil
}

func (s *MomentService) Dashboard(ctx context.Context, userID, timezone string) (*Dashboard, error) {
	loc, err := calendar.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.entries.Counts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	tagCount, err := s.tags.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	stamps, err := s.entries.ListStamps(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	times := make([]time.Time, len(stamps))
	for i, st := range stamps {
		times[i] = st.CreatedAt
	}

	return &Dashboard{
		Profile: profile,
		Stats: domain.Stats{
			TotalEntries:   counts.Total,
			TotalFavorites: counts.Favorites,
			TotalTags:      tagCount,
			CurrentStreak:  calendar.Streak(times, s.now(), loc),
		},
		Activity: calendar.CountByDate(times, loc),
	}, nil
}

// UploadPhoto stores an entry image under the user's prefix and returns its
// path with a signed URL. The URL is empty if issuance fails.
func (s *MomentService) UploadPhoto(ctx context.Context, userID string, imageData []byte, mimeType string) (path, url string, err error) {
	key := photostore.EntryKey(userID, s.now(), mimeType)
	if err := s.photoStg.Put(ctx, key, mimeType, bytes.NewReader(imageData)); err != nil {
		return "", "", fmt.Errorf("failed to store photo: %w", err)
	}

	url, err = s.urls.Get(ctx, key)
	if err != nil {
		s.logger.Warn("uploaded photo has no signed url", "image_path", key, "error", err)
		url = ""
	}
	return key, url, nil
}

// SignedURL resolves a single path owned by userID.
func (s *MomentService) SignedURL(ctx context.Context, userID, path string) (string, error) {
	if err := signedurl.Authorize(path, userID); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrForbidden, err)
	}
	url, err := s.urls.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	return url, nil
}

// SignedURLs resolves paths independently; results are in request order.
func (s *MomentService) SignedURLs(ctx context.Context, userID string, paths []string) []signedurl.BatchResult {
	return s.urls.Batch(ctx, paths, userID)
}

func (s *MomentService) SuggestTags(ctx context.Context, imageData []byte, mimeType string) ([]string, error) {
	if s.suggester == nil {
		return nil, ErrSuggestionsDisabled
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	suggestion, err := s.suggester.SuggestTags(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tags: %w", err)
	}
	s.logger.Debug("tag suggestion", "raw", suggestion.RawResponse, "tags", suggestion.Tags)
	return suggestion.Tags, nil
}

func (s *MomentService) ownedEntry(ctx context.Context, userID, id string) (*domain.Entry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	if err := AssertOwnership(entry, userID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *MomentService) resolveImages(ctx context.Context, entries []*domain.Entry) {
	for _, e := range entries {
		s.resolveImage(ctx, e)
	}
}

// resolveImage fills ImageURL; any issuance error leaves it empty.
func (s *MomentService) resolveImage(ctx context.Context, e *domain.Entry) {
	if e.ImagePath == "" {
		return
	}
	url, err := s.urls.Get(ctx, e.ImagePath)
	if err != nil {
		return
	}
	e.ImageURL = url
}
