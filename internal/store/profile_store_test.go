package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProfileStoreGetMissing(t *testing.T) {
	s := NewProfileStore(openTestDB(t))

	p, err := s.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileStoreUpdateNames(t *testing.T) {
	s := NewProfileStore(openTestDB(t))
	ctx := context.Background()

	p, err := s.UpdateNames(ctx, "u1", strPtr("Ada"), nil, baseTime)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.FirstName)
	assert.Equal(t, "Ada", *p.FirstName)
	assert.Nil(t, p.LastName)
	assert.True(t, baseTime.Equal(p.UpdatedAt))

	later := baseTime.Add(time.Hour)
	p, err = s.UpdateNames(ctx, "u1", strPtr("Ada"), strPtr("Lovelace"), later)
	require.NoError(t, err)
	require.NotNil(t, p.LastName)
	assert.Equal(t, "Lovelace", *p.LastName)
	assert.True(t, later.Equal(p.UpdatedAt))
}

func TestProfileStoreSetAvatar(t *testing.T) {
	s := NewProfileStore(openTestDB(t))
	ctx := context.Background()

	prev, err := s.SetAvatar(ctx, "u1", "avatars/u1/u1-1.png", baseTime)
	require.NoError(t, err)
	assert.Empty(t, prev)

	_, err = s.UpdateNames(ctx, "u1", strPtr("Ada"), nil, baseTime)
	require.NoError(t, err)

	prev, err = s.SetAvatar(ctx, "u1", "avatars/u1/u1-2.png", baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1/u1-1.png", prev)

	p, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1/u1-2.png", p.AvatarPath)
	require.NotNil(t, p.FirstName, "avatar update must not clear names")
	assert.Equal(t, "Ada", *p.FirstName)
}
