package domain

import "time"

// Entry is a single journal moment.
type Entry struct {
	ID         string
	UserID     string
	Title      string
	Text       string
	ImagePath  string
	IsFavorite bool
	CreatedAt  time.Time
	Tags       []Tag

	// ImageURL is resolved at read time; empty means no displayable image.
	ImageURL string
}

type Tag struct {
	ID     string
	UserID string
	Name   string
}

type Profile struct {
	ID         string
	FirstName  *string
	LastName   *string
	AvatarPath string
	AvatarURL  string
	UpdatedAt  time.Time
}

// EntryDay summarises one local calendar date.
type EntryDay struct {
	Date     string
	Count    int
	ImageURL string
}

type Stats struct {
	TotalEntries   int
	TotalFavorites int
	TotalTags      int
	CurrentStreak  int
}
