package web

import (
	"time"

	"github.com/vbonduro/moments/internal/domain"
	"github.com/vbonduro/moments/internal/service"
)

type tagJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type entryJSON struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	ImagePath  string    `json:"image_path,omitempty"`
	ImageURL   *string   `json:"image_url"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	Tags       []tagJSON `json:"tags"`
}

type profileJSON struct {
	ID        string     `json:"id"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	AvatarURL *string    `json:"avatar_url"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type entryDayJSON struct {
	Date     string  `json:"date"`
	Count    int     `json:"count"`
	ImageURL *string `json:"image_url"`
}

type statsJSON struct {
	TotalEntries   int `json:"total_entries"`
	TotalFavorites int `json:"total_favorites"`
	TotalTags      int `json:"total_tags"`
	CurrentStreak  int `json:"current_streak"`
}

type dashboardJSON struct {
	Profile  profileJSON    `json:"profile"`
	Stats    statsJSON      `json:"stats"`
	Activity map[string]int `json:"activity"`
}

// optional turns an empty string into a JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toTagsJSON(tags []domain.Tag) []tagJSON {
	out := make([]tagJSON, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagJSON{ID: t.ID, Name: t.Name})
	}
	return out
}

func toEntryJSON(e *domain.Entry) entryJSON {
	return entryJSON{
		ID:         e.ID,
		UserID:     e.UserID,
		Title:      e.Title,
		Text:       e.Text,
		ImagePath:  e.ImagePath,
		ImageURL:   optional(e.ImageURL),
		IsFavorite: e.IsFavorite,
		CreatedAt:  e.CreatedAt,
		Tags:       toTagsJSON(e.Tags),
	}
}

func toEntriesJSON(entries []*domain.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryJSON(e))
	}
	return out
}

func toProfileJSON(p *domain.Profile) profileJSON {
	out := profileJSON{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		AvatarURL: optional(p.AvatarURL),
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

func toEntryDaysJSON(days []domain.EntryDay) []entryDayJSON {
	out := make([]entryDayJSON, 0, len(days))
	for _, d := range days {
		out = append(out, entryDayJSON{Date: d.Date, Count: d.Count, ImageURL: optional(d.ImageURL)})
	}
	return out
}

func toDashboardJSON(d *service.Dashboard) dashboardJSON {
	return dashboardJSON{
		Profile: toProfileJSON(d.Profile),
		Stats: statsJSON{
			TotalEntries:   d.Stats.TotalEntries,
			TotalFavorites: d.Stats.TotalFavorites,
			TotalTags:      d.Stats.TotalTags,
			CurrentStreak:  d.Stats.CurrentStreak,
		},
		Activity: d.Activity,
	}
}
