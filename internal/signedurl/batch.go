package signedurl

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxBatchIssuers caps concurrent issuance calls within one batch.
const maxBatchIssuers = 8

var ErrForbiddenPath = errors.New("path is not owned by the requesting user")

// BatchResult is the outcome for one requested path. Exactly one of URL and
// Err is set.
type BatchResult struct {
	Path string
	URL  string
	Err  error
}

// OwnerPrefix is the key prefix every object uploaded by userID starts with.
func OwnerPrefix(userID string) string {
	return userID + "/" + userID + "-"
}

// Authorize checks that p is a canonical key under userID's prefix. Keys that
// would resolve elsewhere once cleaned by a backend are rejected outright.
func Authorize(p, userID string) error {
	if userID == "" || !IsCanonicalKey(p) || !strings.HasPrefix(p, OwnerPrefix(userID)) {
		return fmt.Errorf("%w: %q", ErrForbiddenPath, p)
	}
	return nil
}

// IsCanonicalKey reports whether p is a relative slash-separated key with no
// empty, "." or ".." segments, no backslashes and no surrounding whitespace.
func IsCanonicalKey(p string) bool {
	if p == "" || p != strings.TrimSpace(p) || strings.ContainsAny(p, "\\\x00") {
		return false
	}
	if path.IsAbs(p) || path.Clean(p) != p {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// Batch resolves every path for ownerUserID. Paths outside the owner's prefix
// are rejected individually without any issuance; the rest are resolved
// through Get concurrently. One failing path never affects the others.
// Results are returned in request order.
func (c *Cache) Batch(ctx context.Context, paths []string, ownerUserID string) []BatchResult {
	results := make([]BatchResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchIssuers)

	for i, p := range paths {
		results[i].Path = p
		if err := Authorize(p, ownerUserID); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			url, err := c.Get(ctx, p)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].URL = url
			return nil
		})
	}
	// Workers never return an error, so the group error is always nil.
	_ = g.Wait()

	return results
}
