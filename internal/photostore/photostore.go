// Package photostore abstracts where uploaded images live and how clients
// are given temporary access to them.
package photostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrNotFound = errors.New("photo not found")

type PhotoStore interface {
	Put(ctx context.Context, key, mimeType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	// IssueSignedURL returns a URL granting read access to key for ttl.
	IssueSignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// EntryKey is the object key for an entry photo uploaded by userID at t.
func EntryKey(userID string, t time.Time, mimeType string) string {
	return fmt.Sprintf("%s/%s-%d%s", userID, userID, t.UnixMilli(), ExtForMIME(mimeType))
}

// AvatarKey is the object key for an avatar uploaded by userID at t.
func AvatarKey(userID string, t time.Time, mimeType string) string {
	return "avatars/" + EntryKey(userID, t, mimeType)
}

func ExtForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func MIMEForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
