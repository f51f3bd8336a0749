package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "beach", "beach"},
		{"trims and lowercases", "  Sunset ", "sunset"},
		{"bullet", "- family", "family"},
		{"numbered", "2. road trip", "road trip"},
		{"hashtag", "#Coffee", "coffee"},
		{"quoted", `"hiking"`, "hiking"},
		{"collapses spaces", "old   town", "old town"},
		{"leading number kept", "4th of july", "4th of july"},
		{"sentence rejected", "a photo of a dog on the beach", ""},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTag(tt.in))
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "one per line",
			raw:  "beach\nsunset\nfamily",
			want: []string{"beach", "sunset", "family"},
		},
		{
			name: "comma separated",
			raw:  "beach, sunset, Beach",
			want: []string{"beach", "sunset"},
		},
		{
			name: "skips preamble",
			raw:  "Here are some tags:\n- coffee\n- morning",
			want: []string{"coffee", "morning"},
		},
		{
			name: "caps at max",
			raw:  "a\nb\nc\nd\ne\nf\ng",
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "empty response",
			raw:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.raw))
		})
	}
}
