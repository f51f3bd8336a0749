package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTagNames(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trims and drops empty", []string{" a ", "", "  ", "b"}, []string{"a", "b"}},
		{"dedupes keeping order", []string{"b", "a", "b", " a"}, []string{"b", "a"}},
		{"case preserved", []string{"Beach", "beach"}, []string{"Beach", "beach"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTagNames(tt.in))
		})
	}
}

func TestTagStoreListByUser(t *testing.T) {
	d := openTestDB(t)
	entries := NewEntryStore(d)
	tags := NewTagStore(d)
	ctx := context.Background()

	createEntry(t, entries, "u1", "one", baseTime, "zebra", "apple")
	createEntry(t, entries, "u2", "two", baseTime, "mango")

	got, err := tags.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "apple", got[0].Name)
	assert.Equal(t, "zebra", got[1].Name)
	for _, tag := range got {
		assert.Equal(t, "u1", tag.UserID)
	}

	none, err := tags.ListByUser(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)
}
