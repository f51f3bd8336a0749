package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/moments/internal/db"
	"github.com/vbonduro/moments/internal/domain"
)

type TagStore struct {
	db *db.DB
}

func NewTagStore(d *db.DB) *TagStore {
	return &TagStore{db: d}
}

// ListByUser returns the user's tags ordered by name.
func (s *TagStore) ListByUser(ctx context.Context, userID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, user_id, name FROM tags WHERE user_id = ? ORDER BY name ASC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer closeRows(rows)

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func (s *TagStore) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT COUNT(*) FROM tags WHERE user_id = ?`), userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return n, nil
}

// NormalizeTagNames trims names, drops empties and removes duplicates while
// keeping first-seen order. Case is preserved.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func upsertTags(ctx context.Context, d *db.DB, q db.DBTX, userID string, names []string) ([]domain.Tag, error) {
	names = NormalizeTagNames(names)
	tags := make([]domain.Tag, 0, len(names))
	now := time.Now().UnixMilli()

	for _, name := range names {
		_, err := q.ExecContext(ctx, d.Rebind(`
			INSERT INTO tags (id, user_id, name, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, name) DO NOTHING
		`), uuid.NewString(), userID, name, now)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}

		t := domain.Tag{UserID: userID, Name: name}
		err = q.QueryRowContext(ctx, d.Rebind(`SELECT id FROM tags WHERE user_id = ? AND name = ?`), userID, name).Scan(&t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read tag %q: %w", name, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func linkTags(ctx context.Context, d *db.DB, q db.DBTX, entryID string, tags []domain.Tag) error {
	for _, t := range tags {
		_, err := q.ExecContext(ctx, d.Rebind(`INSERT INTO entry_tags (entry_id, tag_id) VALUES (?, ?)`), entryID, t.ID)
		if err != nil {
			return fmt.Errorf("failed to link tag %q: %w", t.Name, err)
		}
	}
	return nil
}

// loadTags fills Tags on every entry with a single query.
func loadTags(ctx context.Context, d *db.DB, q db.DBTX, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Entry, len(entries))
	args := make([]any, 0, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		args = append(args, e.ID)
	}

	rows, err := q.QueryContext(ctx, d.Rebind(`
		SELECT et.entry_id, t.id, t.user_id, t.name
		FROM entry_tags et JOIN tags t ON t.id = et.tag_id
		WHERE et.entry_id IN (`+placeholders(len(args))+`)
		ORDER BY t.name ASC
	`), args...)
	if err != nil {
		return fmt.Errorf("failed to load entry tags: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var entryID string
		var t domain.Tag
		if err := rows.Scan(&entryID, &t.ID, &t.UserID, &t.Name); err != nil {
			return fmt.Errorf("failed to scan entry tag: %w", err)
		}
		if e := byID[entryID]; e != nil {
			e.Tags = append(e.Tags, t)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating entry tags: %w", err)
	}
	return nil
}
