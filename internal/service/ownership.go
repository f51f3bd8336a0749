package service

import (
	"fmt"

	"github.com/vbonduro/moments/internal/domain"
)

// OwnershipError reports an attempt to act on another user's entry.
type OwnershipError struct {
	EntryID string
	UserID  string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("user %q does not own entry %q", e.UserID, e.EntryID)
}

func (e *OwnershipError) Unwrap() error {
	return domain.ErrForbidden
}

// AssertOwnership returns an *OwnershipError unless entry belongs to userID.
// A nil entry is reported as not found.
func AssertOwnership(entry *domain.Entry, userID string) error {
	if entry == nil {
		return fmt.Errorf("entry: %w", domain.ErrNotFound)
	}
	if userID == "" || entry.UserID != userID {
		return &OwnershipError{EntryID: entry.ID, UserID: userID}
	}
	return nil
}
