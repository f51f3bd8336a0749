package signedurl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		userID  string
		wantErr bool
	}{
		{"own photo", "u1/u1-1710000000000.jpg", "u1", false},
		{"other user's photo", "u2/u2-1710000000000.jpg", "u1", true},
		{"prefix confusion", "u1/u10-1710000000000.jpg", "u1", true},
		{"folder only", "u1/other.jpg", "u1", true},
		{"avatar path", "avatars/u1/u1-1.png", "u1", true},
		{"empty path", "", "u1", true},
		{"empty user", "/-x.jpg", "", true},
		{"dot-dot escape", "u1/u1-x/../../u2/u2-b.png", "u1", true},
		{"dot-dot back into own folder", "u1/u1-x/../u1-1.jpg", "u1", true},
		{"dot segment", "u1/./u1-1.jpg", "u1", true},
		{"double slash", "u1//u1-1.jpg", "u1", true},
		{"trailing slash", "u1/u1-1.jpg/", "u1", true},
		{"leading slash", "/u1/u1-1.jpg", "u1", true},
		{"backslash", "u1/u1-x\\..\\..\\u2\\u2-b.png", "u1", true},
		{"nul byte", "u1/u1-1.jpg\x00.png", "u1", true},
		{"trailing space", "u1/u1-1.jpg ", "u1", true},
		{"leading space", " u1/u1-1.jpg", "u1", true},
		{"dots inside a name", "u1/u1-1..jpg", "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.path, tt.userID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForbiddenPath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBatchRejectsForeignPathsPerPath(t *testing.T) {
	issuer := newFakeIssuer()
	cache, _ := newTestCache(t, issuer)

	results := cache.Batch(context.Background(), []string{
		"u1/u1-1.jpg",
		"u2/u2-1.jpg",
		"u1/u1-2.jpg",
	}, "u1")

	require.Len(t, results, 3)

	assert.Equal(t, "u1/u1-1.jpg", results[0].Path)
	assert.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].URL)

	assert.Equal(t, "u2/u2-1.jpg", results[1].Path)
	assert.ErrorIs(t, results[1].Err, ErrForbiddenPath)
	assert.Empty(t, results[1].URL)
	assert.Equal(t, 0, issuer.callCount("u2/u2-1.jpg"))

	assert.Equal(t, "u1/u1-2.jpg", results[2].Path)
	assert.NoError(t, results[2].Err)
	assert.NotEmpty(t, results[2].URL)
}

func TestBatchNeverIssuesNonCanonicalPaths(t *testing.T) {
	issuer := newFakeIssuer()
	cache, _ := newTestCache(t, issuer)

	hostile := []string{
		"u1/u1-x/../../u2/u2-b.png",
		"u1/./u1-1.jpg",
		"u1//u1-1.jpg",
		"/u1/u1-1.jpg",
		"u1/u1-1.jpg ",
	}
	results := cache.Batch(context.Background(), hostile, "u1")
	require.Len(t, results, len(hostile))

	for i, r := range results {
		assert.Equal(t, hostile[i], r.Path)
		assert.ErrorIs(t, r.Err, ErrForbiddenPath, r.Path)
		assert.Empty(t, r.URL)
	}
	assert.Equal(t, 0, issuer.totalCalls())
	assert.Equal(t, 0, cache.Len())
}

func TestBatchPartialFailure(t *testing.T) {
	issuer := newFakeIssuer()
	issuer.failFor["u1/u1-2.jpg"] = errors.New("object missing")
	cache, _ := newTestCache(t, issuer)

	results := cache.Batch(context.Background(), []string{"u1/u1-1.jpg", "u1/u1-2.jpg", "u1/u1-3.jpg"}, "u1")
	require.Len(t, results, 3)

	assert.NotEmpty(t, results[0].URL)
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[1].URL)
	assert.NotEmpty(t, results[2].URL)

	// The failure was not cached; the successes were.
	assert.Equal(t, 2, cache.Len())
}

func TestBatchSharesCacheWithGet(t *testing.T) {
	issuer := newFakeIssuer()
	cache, _ := newTestCache(t, issuer)
	ctx := context.Background()

	single, err := cache.Get(ctx, "u1/u1-1.jpg")
	require.NoError(t, err)

	results := cache.Batch(ctx, []string{"u1/u1-1.jpg", "u1/u1-1.jpg"}, "u1")
	for _, r := range results {
		assert.Equal(t, single, r.URL)
	}
	assert.Equal(t, 1, issuer.callCount("u1/u1-1.jpg"))
}

func TestBatchEmpty(t *testing.T) {
	cache, _ := newTestCache(t, newFakeIssuer())
	assert.Empty(t, cache.Batch(context.Background(), nil, "u1"))
}
