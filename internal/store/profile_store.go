package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vbonduro/moments/internal/db"
	"github.com/vbonduro/moments/internal/domain"
)

type ProfileStore struct {
	db *db.DB
}

func NewProfileStore(d *db.DB) *ProfileStore {
	return &ProfileStore{db: d}
}

// Get returns the profile for userID, or nil if none has been saved yet.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return getProfile(ctx, s.db, s.db, userID)
}

// UpdateNames creates or updates the profile's names.
func (s *ProfileStore) UpdateNames(ctx context.Context, userID string, firstName, lastName *string, now time.Time) (*domain.Profile, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO profiles (id, first_name, last_name, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = excluded.updated_at
	`), userID, nullString(firstName), nullString(lastName), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Get(ctx, userID)
}

// SetAvatar stores a new avatar path and returns the one it replaced, if any.
func (s *ProfileStore) SetAvatar(ctx context.Context, userID, avatarPath string, now time.Time) (previous string, err error) {
	err = s.db.WithTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := getProfile(ctx, s.db, tx, userID)
		if err != nil {
			return err
		}
		if p != nil {
			previous = p.AvatarPath
		}

		_, err = tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO profiles (id, avatar_path, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				avatar_path = excluded.avatar_path,
				updated_at = excluded.updated_at
		`), userID, avatarPath, now.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to set avatar: %w", err)
		}
		return nil
	})
	return previous, err
}

func getProfile(ctx context.Context, d *db.DB, q db.DBTX, userID string) (*domain.Profile, error) {
	var (
		p         domain.Profile
		first     sql.NullString
		last      sql.NullString
		updatedAt int64
	)
	err := q.QueryRowContext(ctx, d.Rebind(`
		SELECT id, first_name, last_name, avatar_path, updated_at FROM profiles WHERE id = ?
	`), userID).Scan(&p.ID, &first, &last, &p.AvatarPath, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if first.Valid {
		p.FirstName = &first.String
	}
	if last.Valid {
		p.LastName = &last.String
	}
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
