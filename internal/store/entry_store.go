package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/moments/internal/db"
	"github.com/vbonduro/moments/internal/domain"
)

const entryColumns = `id, user_id, title, text, image_path, is_favorite, created_at`

// NewEntry holds the caller-supplied fields of an entry to be created.
type NewEntry struct {
	UserID    string
	Title     string
	Text      string
	ImagePath string
	TagNames  []string
	CreatedAt time.Time
}

// Stamp is the minimal projection used for calendar and streak views.
type Stamp struct {
	CreatedAt time.Time
	ImagePath string
}

type EntryCounts struct {
	Total     int
	Favorites int
}

type EntryStore struct {
	db *db.DB
}

func NewEntryStore(d *db.DB) *EntryStore {
	return &EntryStore{db: d}
}

// Create inserts the entry, upserts its tags and links them in one transaction.
func (s *EntryStore) Create(ctx context.Context, in NewEntry) (*domain.Entry, error) {
	e := &domain.Entry{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Title:     in.Title,
		Text:      in.Text,
		ImagePath: in.ImagePath,
		CreatedAt: in.CreatedAt.UTC().Truncate(time.Millisecond),
	}

	err := s.db.WithTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO entries (id, user_id, title, text, image_path, is_favorite, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), e.ID, e.UserID, e.Title, e.Text, e.ImagePath, false, e.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		tags, err := upsertTags(ctx, s.db, tx, in.UserID, in.TagNames)
		if err != nil {
			return err
		}
		if err := linkTags(ctx, s.db, tx, e.ID, tags); err != nil {
			return err
		}
		e.Tags = tags
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID returns the entry with its tags, or nil if it does not exist.
func (s *EntryStore) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+entryColumns+` FROM entries WHERE id = ?`), id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	if err := loadTags(ctx, s.db, s.db, []*domain.Entry{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByRange returns the user's entries created within [start, end],
// newest first.
func (s *EntryStore) ListByRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Entry, error) {
	return s.list(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC
	`, userID, start.UnixMilli(), end.UnixMilli())
}

// ListWithImages returns the user's entries that carry an image, newest first.
func (s *EntryStore) ListWithImages(ctx context.Context, userID string, favoritesOnly bool) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? AND image_path <> ''`
	args := []any{userID}
	if favoritesOnly {
		query += ` AND is_favorite = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC`
	return s.list(ctx, query, args...)
}

// Search matches query case-insensitively against title or text. When tagIDs
// is non-empty an entry must carry at least one of them.
func (s *EntryStore) Search(ctx context.Context, userID, query string, tagIDs []string, limit int) ([]*domain.Entry, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + entryColumns + ` FROM entries WHERE user_id = ?`)
	args := []any{userID}

	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		b.WriteString(` AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(text) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(tagIDs) > 0 {
		b.WriteString(` AND EXISTS (SELECT 1 FROM entry_tags et WHERE et.entry_id = entries.id AND et.tag_id IN (`)
		b.WriteString(placeholders(len(tagIDs)))
		b.WriteString(`))`)
		for _, id := range tagIDs {
			args = append(args, id)
		}
	}
	b.WriteString(` ORDER BY created_at DESC LIMIT ?`)
	args = append(args, limit)

	return s.list(ctx, b.String(), args...)
}

func (s *EntryStore) Update(ctx context.Context, id, userID, title, text string, tagNames []string) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		result, err := tx.ExecContext(ctx, s.db.Rebind(`
			UPDATE entries SET title = ?, text = ? WHERE id = ? AND user_id = ?
		`), title, text, id, userID)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		if err := requireAffected(result, "entry"); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM entry_tags WHERE entry_id = ?`), id); err != nil {
			return fmt.Errorf("failed to clear entry tags: %w", err)
		}

		tags, err := upsertTags(ctx, s.db, tx, userID, tagNames)
		if err != nil {
			return err
		}
		return linkTags(ctx, s.db, tx, id, tags)
	})
}

// Delete removes the entry and its tag links. Tags themselves are kept.
func (s *EntryStore) Delete(ctx context.Context, id string) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM entry_tags WHERE entry_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete entry tags: %w", err)
		}

		result, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM entries WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		return requireAffected(result, "entry")
	})
}

// ToggleFavorite flips is_favorite and returns the new value.
func (s *EntryStore) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var favorite bool
	err := s.db.WithTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		result, err := tx.ExecContext(ctx, s.db.Rebind(`UPDATE entries SET is_favorite = NOT is_favorite WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to toggle favorite: %w", err)
		}
		if err := requireAffected(result, "entry"); err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, s.db.Rebind(`SELECT is_favorite FROM entries WHERE id = ?`), id).Scan(&favorite)
		if err != nil {
			return fmt.Errorf("failed to read favorite: %w", err)
		}
		return nil
	})
	return favorite, err
}

// ListStamps returns creation time and image path of every entry of the
// user, newest first.
func (s *EntryStore) ListStamps(ctx context.Context, userID string) ([]Stamp, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT created_at, image_path FROM entries WHERE user_id = ? ORDER BY created_at DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry dates: %w", err)
	}
	defer closeRows(rows)

	var stamps []Stamp
	for rows.Next() {
		var ms int64
		var st Stamp
		if err := rows.Scan(&ms, &st.ImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan entry date: %w", err)
		}
		st.CreatedAt = time.UnixMilli(ms).UTC()
		stamps = append(stamps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry dates: %w", err)
	}
	return stamps, nil
}

func (s *EntryStore) Counts(ctx context.Context, userID string) (EntryCounts, error) {
	var c EntryCounts
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_favorite THEN 1 ELSE 0 END), 0)
		FROM entries WHERE user_id = ?
	`), userID).Scan(&c.Total, &c.Favorites)
	if err != nil {
		return EntryCounts{}, fmt.Errorf("failed to count entries: %w", err)
	}
	return c, nil
}

func (s *EntryStore) list(ctx context.Context, query string, args ...any) ([]*domain.Entry, error) {
	entries, err := queryEntries(ctx, s.db, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, s.db, s.db, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// queryEntries scans all rows before returning so the connection is free for
// follow-up queries.
func queryEntries(ctx context.Context, q db.DBTX, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer closeRows(rows)

	var entries []*domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*domain.Entry, error) {
	e := &domain.Entry{}
	var createdAt int64
	if err := sc.Scan(&e.ID, &e.UserID, &e.Title, &e.Text, &e.ImagePath, &e.IsFavorite, &createdAt); err != nil {
		return nil, err
	}
	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	return e, nil
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
